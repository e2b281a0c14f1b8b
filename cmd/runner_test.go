package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/geo-martino/musify-cli/internal/config"
	"github.com/geo-martino/musify-cli/internal/library"
	"github.com/geo-martino/musify-cli/internal/models"
	"github.com/geo-martino/musify-cli/internal/shared"
	"github.com/geo-martino/musify-cli/internal/tasks"
	tu "github.com/geo-martino/musify-cli/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			logger := shared.NewLogger(nil)
			input := strings.NewReader("")
			output := &bytes.Buffer{}
			now := func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

			runner := NewRunner(RunnerOpts{
				Logger: logger,
				Input:  input,
				Output: output,
				Now:    now,
			})

			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.input != input {
				t.Error("expected input to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if !runner.now().Equal(now()) {
				t.Error("expected now to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil input uses stdin", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.input != os.Stdin {
				t.Error("expected input to default to os.Stdin")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			if err := runner.writeJSON(data, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			if err := runner.writeJSON(data, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limited := tu.NewLimitedWriter(&bytes.Buffer{}, 1)
			runner := NewRunner(RunnerOpts{Output: limited})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 13 {
			t.Errorf("expected 13 commands, got %d", len(commands))
		}

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{
			"backup", "restore", "report", "sync", "search", "pull-tags", "tag",
			"compilations", "new-music", "download", "auth", "config", "run",
		} {
			if !names[want] {
				t.Errorf("expected command %q to be registered", want)
			}
		}
	})

	t.Run("watchProgress", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		progressCh, stop := runner.watchProgress()
		progressCh <- tasks.ProgressUpdate{Message: "Loading library..."}
		progressCh <- tasks.ProgressUpdate{Message: "Syncing", Step: 2, Total: 5}
		stop()

		result := output.String()
		if !strings.Contains(result, "Loading library...\n") {
			t.Errorf("expected plain update in output, got %q", result)
		}
		if !strings.Contains(result, "Syncing (2/5)\n") {
			t.Errorf("expected counted update in output, got %q", result)
		}
	})

	t.Run("watchProgress with bars disabled drains silently", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})
		runner.config = &config.Config{}

		progressCh, stop := runner.watchProgress()
		progressCh <- tasks.ProgressUpdate{Message: "Loading library..."}
		stop()

		if got := output.String(); got != "" {
			t.Errorf("expected no progress output, got %q", got)
		}
	})

	t.Run("printSyncResults renders status and visibility", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		err := runner.printSyncResults([]library.SyncResult{
			{Name: "Mix", Public: true, Created: true, Added: 3},
			{Name: "Quiet", Added: 1, Removed: 2},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Mix (Public): created (+3 / -0)") {
			t.Errorf("expected public created line, got %q", result)
		}
		if !strings.Contains(result, "Quiet (Private): updated (+1 / -2)") {
			t.Errorf("expected private updated line, got %q", result)
		}
	})

	t.Run("dispatch rejects unknown operations", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		err := runner.dispatch(context.Background(), nil, "transmogrify", nil)
		if err == nil {
			t.Fatal("expected error for unknown operation")
		}
		if !strings.Contains(err.Error(), "transmogrify") {
			t.Errorf("expected operation name in error, got %v", err)
		}
	})
}

func TestRenderReport(t *testing.T) {
	result := &tasks.ReportResult{
		MissingTags: []tasks.MissingTagsEntry{
			{Track: models.Track{Title: "Untitled", Artist: "Unknown"}, Tags: []string{"album"}},
		},
	}
	runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

	t.Run("text", func(t *testing.T) {
		data, err := runner.renderReport(result, "text")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(data), "Unknown - Untitled: album") {
			t.Errorf("unexpected text output: %s", data)
		}
	})

	t.Run("json", func(t *testing.T) {
		data, err := runner.renderReport(result, "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(data), `"Title": "Untitled"`) {
			t.Errorf("unexpected JSON output: %s", data)
		}
	})

	t.Run("csv", func(t *testing.T) {
		data, err := runner.renderReport(result, "csv")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(string(data), "Section,Name,Artist,Title,Detail") {
			t.Errorf("unexpected CSV output: %s", data)
		}
	})

	t.Run("markdown", func(t *testing.T) {
		data, err := runner.renderReport(result, "markdown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(string(data), "# Library Report") {
			t.Errorf("unexpected Markdown output: %s", data)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := runner.renderReport(result, "pdf"); err == nil {
			t.Fatal("expected error for unknown format")
		}
	})
}

func TestPromptIndex(t *testing.T) {
	t.Run("valid selection", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Input:  strings.NewReader("2\n"),
			Output: &bytes.Buffer{},
		})

		index, err := promptIndex(runner, "Select", 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if index != 1 {
			t.Errorf("expected index 1, got %d", index)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Input:  strings.NewReader("7\n"),
			Output: &bytes.Buffer{},
		})

		if _, err := promptIndex(runner, "Select", 3); err == nil {
			t.Fatal("expected error for out of range selection")
		}
	})

	t.Run("not a number", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Input:  strings.NewReader("abc\n"),
			Output: &bytes.Buffer{},
		})

		if _, err := promptIndex(runner, "Select", 3); err == nil {
			t.Fatal("expected error for non-numeric selection")
		}
	})
}
