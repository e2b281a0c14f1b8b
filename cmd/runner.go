package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/geo-martino/musify-cli/internal/cache"
	"github.com/geo-martino/musify-cli/internal/config"
	"github.com/geo-martino/musify-cli/internal/library"
	"github.com/geo-martino/musify-cli/internal/shared"
	"github.com/geo-martino/musify-cli/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *config.Config
	functions map[string]*config.Config
	logger    *log.Logger
	input     io.Reader
	output    io.Writer
	processor *tasks.Processor
	closers   []func() error
	now       func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger *log.Logger
	Input  io.Reader
	Output io.Writer
	Now    func() time.Time
}

// NewRunner creates a new Runner with the provided options.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Runner{
		logger: opts.Logger,
		input:  opts.Input,
		output: opts.Output,
		now:    opts.Now,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		backupCommand, restoreCommand, reportCommand, syncCommand, searchCommand,
		pullTagsCommand, tagCommand, compilationsCommand, newMusicCommand,
		downloadCommand, authCommand, configCommand, runCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// setup loads the config file named by the command's flags and builds the
// processor over the configured libraries.
func (r *Runner) setup(cmd *cli.Command) (*tasks.Processor, error) {
	base, functions, err := config.FromFile(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	r.functions = functions
	return r.build(cmd, base)
}

// build resolves paths and logging for the given config and wires the
// libraries into a processor. Command flags override the file's execute and
// log level settings.
func (r *Runner) build(cmd *cli.Command, cfg *config.Config) (*tasks.Processor, error) {
	if cmd.Bool("execute") {
		cfg.Execute = true
	}
	if cmd.Bool("dry-run") {
		cfg.Execute = false
	}
	if level := cmd.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	cfg.Paths.Resolve(r.now())
	if err := cfg.Paths.Create(); err != nil {
		return nil, err
	}

	logger, closeLog, err := cfg.Logging.Configure(&cfg.Paths)
	if err != nil {
		return nil, err
	}
	r.logger = logger
	r.closers = append(r.closers, closeLog)

	localName, localCfg, err := cfg.TargetLocal()
	if err != nil {
		return nil, err
	}
	remoteName, remoteCfg, err := cfg.TargetRemote()
	if err != nil {
		return nil, err
	}

	var responseCache *cache.Cache
	if cacheCfg := remoteCfg.API.Cache; cacheCfg.Type == "sqlite" {
		db := cacheCfg.DB
		if db == "" {
			db = filepath.Join(cfg.Paths.Cache, "musify.db")
		}
		responseCache, err = cache.Open(db, cacheCfg.ExpireAfter.Std())
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, responseCache.Close)
	}

	local := library.NewLocal(localName, localCfg, cfg.Execute, logger)
	remote := library.NewSpotify(remoteName, remoteCfg, cfg.Paths.Token, responseCache, logger)

	processor := tasks.NewProcessor(cfg, local, remote, logger)
	processor.SetIO(r.input, r.output)

	r.config = cfg
	r.processor = processor
	return processor, nil
}

// teardown removes the run's backup directory if nothing was written to it
// and closes everything setup opened.
func (r *Runner) teardown() {
	if r.config != nil {
		r.config.Paths.RemoveEmpty()
	}
	for _, closer := range r.closers {
		if err := closer(); err != nil {
			r.logger.Warn("failed to close resource", "err", err)
		}
	}
	r.closers = nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// watchProgress prints progress updates until the channel closes. The
// returned function closes the channel and waits for the printer to drain.
// With logging.bars disabled, updates are drained silently.
func (r *Runner) watchProgress() (chan tasks.ProgressUpdate, func()) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	bars := r.config == nil || r.config.Logging.Bars

	go func() {
		defer close(done)
		for update := range progressCh {
			if !bars {
				continue
			}
			if update.Total > 0 {
				r.writePlain("%s (%d/%d)\n", update.Message, update.Step, update.Total)
			} else {
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	return progressCh, func() {
		close(progressCh)
		<-done
	}
}

// runOperation executes one named operation with the processor's pre and
// post hooks around it.
func (r *Runner) runOperation(ctx context.Context, p *tasks.Processor, name string) error {
	progressCh, stop := r.watchProgress()
	defer stop()

	if err := p.Pre(ctx, progressCh); err != nil {
		return err
	}
	if err := r.dispatch(ctx, p, name, progressCh); err != nil {
		return err
	}
	return p.Post(ctx)
}

// dispatch maps an operation name to its processor method and prints the
// outcome.
func (r *Runner) dispatch(ctx context.Context, p *tasks.Processor, name string, progress chan tasks.ProgressUpdate) error {
	switch name {
	case "backup":
		result, err := p.Backup(ctx, progress, "")
		if err != nil {
			return err
		}
		return r.writePlain("Wrote %d backup files to %s\n", len(result.Files), result.Dir)

	case "report":
		result, err := p.Report(ctx, progress)
		if err != nil {
			return err
		}
		return r.printReport(result)

	case "sync":
		results, err := p.SyncRemote(ctx, progress)
		if err != nil {
			return err
		}
		return r.printSyncResults(results)

	case "search":
		result, err := p.Search(ctx, progress)
		if err != nil {
			return err
		}
		return r.writePlain(
			"Matched %d tracks (%d unmatched), saved %d\n",
			result.Matched, result.Unmatched, result.Saved,
		)

	case "pull_tags", "pull-tags":
		count, err := p.PullTags(ctx, progress)
		if err != nil {
			return err
		}
		return r.writePlain("Updated tags on %d tracks\n", count)

	case "tag":
		count, err := p.Tag(ctx, progress)
		if err != nil {
			return err
		}
		return r.writePlain("Tagged %d tracks\n", count)

	case "compilations", "process_compilations":
		count, err := p.ProcessCompilations(ctx, progress)
		if err != nil {
			return err
		}
		return r.writePlain("Processed %d compilation tracks\n", count)

	case "new_music", "new-music":
		result, err := p.NewMusic(ctx, progress)
		if err != nil {
			return err
		}
		return r.writePlain(
			"Built playlist %q from %d artists, %d albums, %d tracks\n",
			result.Playlist, result.Artists, result.Albums, result.Tracks,
		)

	case "download":
		count, err := p.Download(ctx, progress)
		if err != nil {
			return err
		}
		return r.writePlain("Opened download pages for %d tracks\n", count)

	default:
		return fmt.Errorf("%w: unknown operation %q", shared.ErrInvalidArgument, name)
	}
}

func (r *Runner) printSyncResults(results []library.SyncResult) error {
	r.writePlainHeader("Playlist Sync")
	for _, result := range results {
		status := "updated"
		if result.Created {
			status = "created"
		}
		r.writePlain("%s (%s): %s (+%d / -%d)\n",
			result.Name, shared.VisibilityString(result.Public), status, result.Added, result.Removed)
	}
	return r.writePlain("Synced %d playlists\n", len(results))
}
