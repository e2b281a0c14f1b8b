package main

import (
	"context"
	"fmt"

	"github.com/geo-martino/musify-cli/internal/server"
	"github.com/geo-martino/musify-cli/internal/shared"
	"github.com/urfave/cli/v3"
)

// Auth runs the OAuth2 authorization code flow against the remote library.
//
// Starts a localhost callback server, prints the authorization URL for the
// user to open, and persists the exchanged token for later runs.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	p, err := r.setup(cmd)
	if err != nil {
		return err
	}
	defer r.teardown()

	remote := p.Remote()
	state := shared.GenerateID()

	r.writePlain("Open this URL in your browser to authorize:\n\n%s\n\n", remote.AuthURL(state))
	r.writePlain("Waiting for the authorization callback...\n")

	handler := server.NewOAuthHandler(remote.OAuthConfig(), state)
	result, err := server.Listen(ctx, cmd.String("addr"), "/callback", handler)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if result.Error() != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}

	remote.SetToken(ctx, result.Token)
	r.logger.Info("authentication successful", "library", remote.Name())
	return r.writePlain("✓ Authentication successful\n")
}
