package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/listify/internal/services"
	"github.com/desertthunder/listify/internal/shared"
	"github.com/desertthunder/listify/internal/tasks"
)

// debounceWindow is how long typing must pause before a search fires.
const debounceWindow = 400 * time.Millisecond

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	GenerateView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	catalog services.CatalogService
	builder *tasks.Builder
	width   int
	height  int

	input      textinput.Model
	resultList list.Model
	listReady  bool
	searchGen  int
	searching  bool
	notice     string

	seed         *services.Track
	progressChan chan tasks.ProgressUpdate
	runDone      chan runCompleteMsg
	progress     tasks.ProgressUpdate
	result       *tasks.RunResult
	err          error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, catalog services.CatalogService, builder *tasks.Builder) *Model {
	input := textinput.New()
	input.Placeholder = "Search for a song..."
	input.CharLimit = 120
	input.Focus()

	return &Model{
		ctx:     ctx,
		view:    SearchView,
		catalog: catalog,
		builder: builder,
		input:   input,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the cursor blink in the search input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.resultList.SetSize(msg.Width-4, msg.Height-10)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		default:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

	case debounceMsg:
		// Only the latest generation's timer is allowed to fire a search.
		if msg.gen != m.searchGen || m.searching {
			return m, nil
		}
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			m.listReady = false
			return m, nil
		}
		m.searching = true
		return m, m.search(msg.gen, query)

	case searchResultsMsg:
		m.searching = false
		if msg.gen != m.searchGen {
			// The query changed while this search was in flight. Re-fire
			// for the current text instead of applying stale results.
			query := strings.TrimSpace(m.input.Value())
			if query == "" {
				m.listReady = false
				return m, nil
			}
			m.searching = true
			return m, m.search(m.searchGen, query)
		}
		if msg.err != nil {
			m.notice = styles.err.Render(fmt.Sprintf("Search failed: %v", msg.err))
			return m, nil
		}
		m.notice = ""
		items := make([]list.Item, len(msg.tracks))
		for i, track := range msg.tracks {
			items[i] = trackItem{track: track}
		}
		m.resultList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-10)
		m.resultList.Title = "Results"
		m.resultList.SetShowHelp(false)
		m.resultList.SetFilteringEnabled(false)
		m.listReady = true
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case runCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.progressChan = nil

		if errors.Is(msg.err, shared.ErrUnknownSeedTrack) {
			// Recoverable: let the user pick another seed.
			m.view = SearchView
			m.err = nil
			m.notice = styles.warn.Render("We don't know that song yet. Try another.")
			return m, nil
		}
		m.view = ResultView
		return m, nil
	}

	return m.updateControls(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress ctrl+c to quit", m.err))
	}

	switch m.view {
	case SearchView:
		return m.renderSearch()
	case GenerateView:
		return m.renderGenerate()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if !m.listReady {
			return m, nil
		}
		selected := m.resultList.SelectedItem()
		if item, ok := selected.(trackItem); ok {
			m.seed = &item.track
			m.view = GenerateView
			m.progress = tasks.ProgressUpdate{}
			return m, m.startRun()
		}
		return m, nil
	case key.Matches(msg, m.keys.up), key.Matches(msg, m.keys.down):
		if m.listReady {
			var cmd tea.Cmd
			m.resultList, cmd = m.resultList.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.searchGen++
		gen := m.searchGen
		debounce := tea.Tick(debounceWindow, func(time.Time) tea.Msg {
			return debounceMsg{gen: gen}
		})
		return m, tea.Batch(cmd, debounce)
	}
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart), key.Matches(msg, m.keys.back):
		m.view = SearchView
		m.seed = nil
		m.result = nil
		m.err = nil
		m.notice = ""
		m.input.SetValue("")
		m.input.Focus()
		m.listReady = false
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) updateControls(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == SearchView {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *Model) search(gen int, query string) tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.catalog.Search(m.ctx, query, 10)
		return searchResultsMsg{gen: gen, tracks: tracks, err: err}
	}
}

func (m *Model) startRun() tea.Cmd {
	progressChan := make(chan tasks.ProgressUpdate, 50)
	m.progressChan = progressChan
	seed := *m.seed

	done := make(chan runCompleteMsg, 1)
	go func() {
		result, err := m.builder.Run(m.ctx, progressChan, seed)
		done <- runCompleteMsg{result: result, err: err}
		close(progressChan)
	}()
	m.runDone = done

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progressChan := m.progressChan
	done := m.runDone
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}
		update, ok := <-progressChan
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Listify")

	var body string
	switch {
	case m.listReady:
		body = m.resultList.View()
	case m.searching:
		body = styles.help.Render("Searching...")
	default:
		body = styles.help.Render("Type to search the catalog")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})

	sections := []string{title, m.input.View(), "", body}
	if m.notice != "" {
		sections = append(sections, "", m.notice)
	}
	sections = append(sections, "", helpView)
	return strings.Join(sections, "\n")
}

func (m *Model) renderGenerate() string {
	title := styles.title.Render(fmt.Sprintf("Generating playlist for '%s'", m.seed.Title))

	var phase string
	switch m.progress.Phase {
	case tasks.FetchSimilar:
		phase = "Fetching similar tracks..."
	case tasks.ResolveTracks:
		phase = fmt.Sprintf("Resolving tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.CreatePlaylist:
		phase = "Creating playlist..."
	case tasks.PopulateTracks:
		phase = "Adding tracks..."
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		header := styles.err.Render(fmt.Sprintf("Generation failed: %v", m.err))
		if m.result != nil && m.result.Playlist != nil {
			header += "\n" + styles.warn.Render(
				fmt.Sprintf("Playlist '%s' was created but is empty.", m.result.Playlist.Name))
		}
		return fmt.Sprintf("%s\n\n%s", header, helpView)
	}

	if m.result == nil || m.result.Playlist == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	title := styles.ok.Render("✓ Playlist created")
	info := fmt.Sprintf(
		"\nName: %s\nTracks: %d\nResolved: %d/%d candidates",
		m.result.Playlist.Name,
		m.result.SeedCount,
		m.result.Resolved,
		m.result.Candidates,
	)
	if m.result.Playlist.URL != "" {
		info += fmt.Sprintf("\nURL: %s", m.result.Playlist.URL)
	}

	var failed string
	if len(m.result.Failures) > 0 {
		failed = "\n\n" + styles.warn.Render(fmt.Sprintf("%d candidates failed to resolve:", len(m.result.Failures)))
		for _, failure := range m.result.Failures {
			failed += fmt.Sprintf("\n  • %s - %s", failure.Candidate.Artist, failure.Candidate.Title)
		}
	}

	return fmt.Sprintf("%s%s%s\n\n%s", title, info, failed, helpView)
}
