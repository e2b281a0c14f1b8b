package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/geo-martino/musify-cli/internal/formatter"
	"github.com/geo-martino/musify-cli/internal/shared"
	"github.com/geo-martino/musify-cli/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Report runs the enabled reports and renders them in the requested format.
func (r *Runner) Report(ctx context.Context, cmd *cli.Command) error {
	p, err := r.setup(cmd)
	if err != nil {
		return err
	}
	defer r.teardown()

	progressCh, stop := r.watchProgress()
	defer stop()

	if err := p.Pre(ctx, progressCh); err != nil {
		return err
	}
	result, err := p.Report(ctx, progressCh)
	if err != nil {
		return err
	}
	if err := p.Post(ctx); err != nil {
		return err
	}

	data, err := r.renderReport(result, cmd.String("format"))
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return r.writePlain("Wrote report to %s\n", path)
	}
	return r.writePlain("%s", data)
}

func (r *Runner) renderReport(result *tasks.ReportResult, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return formatter.ToText(result), nil
	case "markdown", "md":
		return formatter.ToMarkdown(result), nil
	case "csv":
		return formatter.ToCSV(result)
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidArgument, format)
	}
}

// printReport writes the text rendering of a report to the output.
func (r *Runner) printReport(result *tasks.ReportResult) error {
	r.writePlainHeader("Library Report")
	return r.writePlain("%s", formatter.ToText(result))
}
