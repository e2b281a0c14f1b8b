package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/geo-martino/musify-cli/internal/config"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config validates the config file and prints the resolved configuration,
// including the names of every configured function.
func (r *Runner) Config(ctx context.Context, cmd *cli.Command) error {
	base, functions, err := config.FromFile(cmd.String("config"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(base, true)
	}

	data, err := yaml.Marshal(base)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	r.writePlain("%s", data)

	if len(functions) > 0 {
		names := make([]string, 0, len(functions))
		for name := range functions {
			names = append(names, name)
		}
		sort.Strings(names)

		r.writePlain("\nConfigured functions:\n")
		for _, name := range names {
			r.writePlain("  %s\n", name)
		}
	}
	return nil
}
