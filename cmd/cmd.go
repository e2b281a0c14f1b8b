// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// commonFlags returns the flags every operational command accepts.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "musify.yml",
		},
		&cli.BoolFlag{
			Name:    "execute",
			Aliases: []string{"x"},
			Usage:   "Write changes instead of reporting what would change",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Report what would change without writing (overrides --execute)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
		},
	}
}

// backupCommand snapshots both libraries to JSON files.
func backupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Write a JSON snapshot of the local and remote libraries",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:    "key",
				Aliases: []string{"k"},
				Usage:   "Key to file this backup under",
			},
		),
		Action: r.Backup,
	}
}

// restoreCommand merges a previous backup back into the libraries.
func restoreCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "restore",
		Usage: "Restore library data from a previous backup",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Backup run directory to restore from (interactive picker when unset)",
			},
			&cli.StringFlag{
				Name:    "key",
				Aliases: []string{"k"},
				Usage:   "Key of the backup to restore",
			},
			&cli.StringSliceFlag{
				Name:    "tags",
				Aliases: []string{"t"},
				Usage:   "Tag fields to restore on local tracks (all writable tags when unset)",
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Use plain prompts instead of the interactive picker",
			},
		),
		Action: r.Restore,
	}
}

// reportCommand runs the enabled reports over the libraries.
func reportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Report playlist differences and missing tags",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (text, json, csv, markdown)",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the report to a file instead of stdout",
			},
		),
		Action: r.Report,
	}
}

// syncCommand pushes local playlists to the remote library.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "sync",
		Usage:  "Sync local playlists to the remote library",
		Flags:  commonFlags(),
		Action: r.Sync,
	}
}

// searchCommand matches unmatched local tracks against the remote library.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "search",
		Usage:  "Match local tracks without a URI against the remote library and save the results",
		Flags:  commonFlags(),
		Action: r.Search,
	}
}

// pullTagsCommand merges remote track metadata into local tracks.
func pullTagsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "pull-tags",
		Usage:  "Pull track metadata from the remote library into local tracks",
		Flags:  commonFlags(),
		Action: r.PullTags,
	}
}

// tagCommand applies the configured tagging rules to local tracks.
func tagCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tag",
		Usage:  "Apply configured tagging rules to local tracks",
		Flags:  commonFlags(),
		Action: r.Tag,
	}
}

// compilationsCommand normalises album tags on compilation folders.
func compilationsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "compilations",
		Usage:  "Set compilation album tags on local folders",
		Flags:  commonFlags(),
		Action: r.Compilations,
	}
}

// newMusicCommand builds a playlist of recent releases from followed artists.
func newMusicCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "new-music",
		Usage:  "Build a playlist of new releases from followed artists",
		Flags:  commonFlags(),
		Action: r.NewMusic,
	}
}

// downloadCommand opens download search pages for unmatched tracks.
func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "download",
		Usage:  "Open download search pages for tracks in batches",
		Flags:  commonFlags(),
		Action: r.Download,
	}
}

// authCommand runs the OAuth2 authorization code flow for the remote library.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with the remote library using OAuth2",
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Address for the callback server",
				Value: ":8080",
			},
		),
		Action: r.Auth,
	}
}

// configCommand prints the resolved configuration.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Validate and print the resolved configuration",
		Flags: append(commonFlags(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON instead of YAML",
			},
		),
		Action: r.Config,
	}
}

// runCommand executes named functions with their config overlays applied.
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run configured functions in order, each with its config overlay",
		Arguments: []cli.Argument{
			&cli.StringArgs{
				Name: "functions",
				Max:  -1,
			},
		},
		Flags:  commonFlags(),
		Action: r.Run,
	}
}
