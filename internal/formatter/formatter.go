// package formatter renders report results to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/geo-martino/musify-cli/internal/models"
	"github.com/geo-martino/musify-cli/internal/shared"
	"github.com/geo-martino/musify-cli/internal/tasks"
)

// ToText renders a report as plain text.
func ToText(result *tasks.ReportResult) []byte {
	var buf bytes.Buffer

	if len(result.PlaylistDifferences) > 0 {
		buf.WriteString("Playlist differences\n\n")
		for _, diff := range result.PlaylistDifferences {
			buf.WriteString(fmt.Sprintf("%s: %d matched, %d missing remotely, %d extra remotely\n",
				diff.Name, diff.MatchedCount, len(diff.MissingRemote), len(diff.ExtraRemote)))
			writeTrackLines(&buf, "  missing: ", diff.MissingRemote)
			writeTrackLines(&buf, "  extra:   ", diff.ExtraRemote)
		}
		buf.WriteString("\n")
	}

	if len(result.MissingTags) > 0 {
		buf.WriteString("Missing tags\n\n")
		for _, entry := range result.MissingTags {
			buf.WriteString(fmt.Sprintf("%s - %s: %s\n",
				entry.Track.Artist, entry.Track.Title, strings.Join(entry.Tags, ", ")))
		}
	}

	if buf.Len() == 0 {
		buf.WriteString("Nothing to report\n")
	}
	return buf.Bytes()
}

func writeTrackLines(buf *bytes.Buffer, prefix string, tracks []models.Track) {
	for _, track := range tracks {
		buf.WriteString(prefix + trackLine(track) + "\n")
	}
}

// trackLine renders a track as "Artist - Title", with the duration appended
// when known.
func trackLine(track models.Track) string {
	line := fmt.Sprintf("%s - %s", track.Artist, track.Title)
	if track.Duration > 0 {
		line += fmt.Sprintf(" [%s]", shared.FormatDuration(track.Duration))
	}
	return line
}

// ToMarkdown renders a report as a Markdown document.
func ToMarkdown(result *tasks.ReportResult) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Library Report\n\n")

	if len(result.PlaylistDifferences) > 0 {
		buf.WriteString("## Playlist differences\n\n")
		buf.WriteString("| Playlist | Matched | Missing remotely | Extra remotely |\n")
		buf.WriteString("| --- | --- | --- | --- |\n")
		for _, diff := range result.PlaylistDifferences {
			buf.WriteString(fmt.Sprintf("| %s | %d | %d | %d |\n",
				diff.Name, diff.MatchedCount, len(diff.MissingRemote), len(diff.ExtraRemote)))
		}
		buf.WriteString("\n")
		for _, diff := range result.PlaylistDifferences {
			if len(diff.MissingRemote) == 0 && len(diff.ExtraRemote) == 0 {
				continue
			}
			buf.WriteString(fmt.Sprintf("### %s\n\n", diff.Name))
			for _, track := range diff.MissingRemote {
				buf.WriteString("- missing remotely: " + trackLine(track) + "\n")
			}
			for _, track := range diff.ExtraRemote {
				buf.WriteString("- extra remotely: " + trackLine(track) + "\n")
			}
			buf.WriteString("\n")
		}
	}

	if len(result.MissingTags) > 0 {
		buf.WriteString("## Missing tags\n\n")
		for _, entry := range result.MissingTags {
			buf.WriteString(fmt.Sprintf("- %s - %s: %s\n",
				entry.Track.Artist, entry.Track.Title, strings.Join(entry.Tags, ", ")))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// ToCSV renders a report as CSV with columns: Section, Name, Artist, Title, Detail.
func ToCSV(result *tasks.ReportResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Section", "Name", "Artist", "Title", "Detail"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, diff := range result.PlaylistDifferences {
		for _, track := range diff.MissingRemote {
			record := []string{"playlist_differences", diff.Name, track.Artist, track.Title, "missing remotely"}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		for _, track := range diff.ExtraRemote {
			record := []string{"playlist_differences", diff.Name, track.Artist, track.Title, "extra remotely"}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	for _, entry := range result.MissingTags {
		record := []string{"missing_tags", "", entry.Track.Artist, entry.Track.Title, strings.Join(entry.Tags, "; ")}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}
