package tasks

import (
	"fmt"

	"github.com/desertthunder/listify/internal/services"
)

// ProgressUpdate represents a progress event during a playlist generation run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSimilar Phase = iota
	ResolveTracks
	CreatePlaylist
	PopulateTracks
	RunComplete
)

func (p Phase) String() string {
	switch p {
	case FetchSimilar:
		return "fetch_similar"
	case ResolveTracks:
		return "resolve_tracks"
	case CreatePlaylist:
		return "create_playlist"
	case PopulateTracks:
		return "populate_tracks"
	case RunComplete:
		return "run_complete"
	default:
		return ""
	}
}

func fetchSimilarUpdate(seed services.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSimilar,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching recommendations for %s - %s...", seed.Title, seed.PrimaryArtist()),
	}
}

func similarFoundUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSimilar,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d similar tracks", count),
	}
}

func resolveUpdate(step, total int, cand services.SimilarTrack) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, cand.Artist, cand.Title),
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist: %s", name),
	}
}

func populateUpdate(count int, pl *services.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PopulateTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d tracks to %s...", count, pl.Name),
		Data:    pl,
	}
}

func doneUpdate(pl *services.Playlist, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RunComplete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist ready: %s (%d tracks)", pl.URL, count),
		Data:    pl,
	}
}
