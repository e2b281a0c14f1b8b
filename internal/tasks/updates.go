package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	LoadLibraries Phase = iota
	WriteBackup
	RestoreBackup
	BuildReport
	SyncPlaylists
	MergeTags
	SetCompilations
	FindNewMusic
	OpenDownloads
	ApplyRules
	MatchTracks
	SaveTracks
)

func (p Phase) String() string {
	switch p {
	case LoadLibraries:
		return "load_libraries"
	case WriteBackup:
		return "write_backup"
	case RestoreBackup:
		return "restore_backup"
	case BuildReport:
		return "build_report"
	case SyncPlaylists:
		return "sync_playlists"
	case MergeTags:
		return "merge_tags"
	case SetCompilations:
		return "set_compilations"
	case FindNewMusic:
		return "find_new_music"
	case OpenDownloads:
		return "open_downloads"
	case ApplyRules:
		return "apply_rules"
	case MatchTracks:
		return "match_tracks"
	case SaveTracks:
		return "save_tracks"
	default:
		return ""
	}
}

func loadUpdate(source string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadLibraries,
		Message: fmt.Sprintf("Loading %s library...", source),
	}
}

func backupUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteBackup,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Writing backup (%s)...", name),
	}
}

func syncUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Syncing playlist (%s)...", name),
	}
}

func saveUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveTracks,
		Message: fmt.Sprintf("Saving %d tracks...", count),
	}
}
