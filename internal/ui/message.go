package ui

import (
	"github.com/desertthunder/listify/internal/services"
	"github.com/desertthunder/listify/internal/tasks"
)

// debounceMsg fires once the debounce window for a query generation elapses.
// Stale generations are discarded in Update.
type debounceMsg struct {
	gen int
}

// searchResultsMsg carries catalog search results for a query generation.
type searchResultsMsg struct {
	gen    int
	tracks []services.Track
	err    error
}

// progressUpdateMsg wraps a [tasks.ProgressUpdate] from the running Builder.
type progressUpdateMsg tasks.ProgressUpdate

// runCompleteMsg signals the end of a generation run.
type runCompleteMsg struct {
	result *tasks.RunResult
	err    error
}
