// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist generation:
//  1. [SearchView] : Type a seed song, pick from live search results
//  2. [GenerateView] : Monitor real-time progress while the playlist is built
//  3. [ResultView] : Display the created playlist and resolution stats
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Search requests are debounced with a generation counter so only the latest
// query's results are applied, and progress updates flow through a channel from
// the Builder, providing non-blocking status reporting during generation.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
