package formatter

import (
	"strings"
	"testing"

	"github.com/geo-martino/musify-cli/internal/models"
	"github.com/geo-martino/musify-cli/internal/tasks"
)

func testResult() *tasks.ReportResult {
	return &tasks.ReportResult{
		PlaylistDifferences: []tasks.PlaylistDifference{
			{
				Name:          "Mix",
				MatchedCount:  2,
				MissingRemote: []models.Track{{Title: "Only Local", Artist: "The Artist", Duration: 245}},
				ExtraRemote:   []models.Track{{Title: "Only Remote", Artist: "Other"}},
			},
		},
		MissingTags: []tasks.MissingTagsEntry{
			{
				Track: models.Track{Title: "Untitled", Artist: "Unknown"},
				Tags:  []string{"album", "year"},
			},
		},
	}
}

func TestToText(t *testing.T) {
	t.Run("renders all sections", func(t *testing.T) {
		text := string(ToText(testResult()))
		for _, want := range []string{
			"Mix: 2 matched, 1 missing remotely, 1 extra remotely",
			"The Artist - Only Local [4:05]",
			"Other - Only Remote",
			"Unknown - Untitled: album, year",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("missing %q in output:\n%s", want, text)
			}
		}
	})

	t.Run("empty result", func(t *testing.T) {
		text := string(ToText(&tasks.ReportResult{}))
		if !strings.Contains(text, "Nothing to report") {
			t.Errorf("unexpected output for empty result: %s", text)
		}
	})
}

func TestToMarkdown(t *testing.T) {
	text := string(ToMarkdown(testResult()))
	for _, want := range []string{
		"# Library Report",
		"| Mix | 2 | 1 | 1 |",
		"- missing remotely: The Artist - Only Local [4:05]",
		"- Unknown - Untitled: album, year",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in output:\n%s", want, text)
		}
	}
}

func TestToCSV(t *testing.T) {
	data, err := ToCSV(testResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 records, got %d lines:\n%s", len(lines), data)
	}
	if lines[0] != "Section,Name,Artist,Title,Detail" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "playlist_differences,Mix,The Artist,Only Local,missing remotely") {
		t.Errorf("unexpected first record: %s", lines[1])
	}
	if !strings.Contains(lines[3], "missing_tags,,Unknown,Untitled,album; year") {
		t.Errorf("unexpected missing tags record: %s", lines[3])
	}
}
