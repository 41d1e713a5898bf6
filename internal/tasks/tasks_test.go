package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/listify/internal/services"
	"github.com/desertthunder/listify/internal/shared"
	tu "github.com/desertthunder/listify/internal/testing"
)

// fastOpts keeps the resolution pool from throttling test runs.
var fastOpts = BuilderOpts{Workers: 5, RateLimit: 100000, MaxTracks: 100, FailureThreshold: 0.5}

var beatlesSeed = services.Track{
	ID:      "seed1",
	URI:     "spotify:track:seed1",
	Title:   "Yesterday",
	Artists: []string{"The Beatles"},
}

// candidateCatalog resolves every "<title> <artist>" query to a URI derived
// from the candidate, mirroring a fuzzy match in the real catalog.
func candidateCatalog(candidates []services.SimilarTrack) *tu.MockCatalog {
	byQuery := make(map[string]services.Track, len(candidates))
	for i, c := range candidates {
		byQuery[c.Title+" "+c.Artist] = services.Track{
			ID:      fmt.Sprintf("id%d", i),
			URI:     fmt.Sprintf("spotify:track:id%d", i),
			Title:   c.Title,
			Artists: []string{c.Artist},
		}
	}

	return &tu.MockCatalog{
		SearchFunc: func(ctx context.Context, query string, limit int) ([]services.Track, error) {
			if track, ok := byQuery[query]; ok {
				return []services.Track{track}, nil
			}
			return []services.Track{}, nil
		},
	}
}

func similarityFor(candidates []services.SimilarTrack) *tu.MockSimilarity {
	return &tu.MockSimilarity{
		SimilarTracksFunc: func(ctx context.Context, title, artist string, limit int) ([]services.SimilarTrack, error) {
			return candidates, nil
		},
	}
}

func makeCandidates(n int) []services.SimilarTrack {
	candidates := make([]services.SimilarTrack, n)
	for i := range candidates {
		candidates[i] = services.SimilarTrack{
			Title:  fmt.Sprintf("Song %d", i),
			Artist: fmt.Sprintf("Artist %d", i),
			Match:  1.0 - float64(i)/float64(n),
		}
	}
	return candidates
}

func TestBuilder_Run(t *testing.T) {
	t.Run("successful run", func(t *testing.T) {
		candidates := []services.SimilarTrack{
			{Title: "Let It Be", Artist: "The Beatles", Match: 0.95},
			{Title: "Hey Jude", Artist: "The Beatles", Match: 0.90},
			{Title: "Blackbird", Artist: "The Beatles", Match: 0.85},
			{Title: "Something", Artist: "The Beatles", Match: 0.80},
			{Title: "In My Life", Artist: "The Beatles", Match: 0.75},
		}

		catalog := candidateCatalog(candidates)
		var gotDraft services.PlaylistDraft
		var gotURIs []string
		catalog.CreatePlaylistFunc = func(ctx context.Context, userID string, draft services.PlaylistDraft) (*services.Playlist, error) {
			gotDraft = draft
			return &services.Playlist{ID: "pl1", Name: draft.Name, URL: "https://open.spotify.com/playlist/pl1"}, nil
		}
		catalog.AddTracksFunc = func(ctx context.Context, playlistID string, uris []string) error {
			gotURIs = uris
			return nil
		}

		builder := NewBuilder(catalog, similarityFor(candidates), nil, fastOpts)

		progress := make(chan ProgressUpdate, 100)
		result, err := builder.Run(context.Background(), progress, beatlesSeed)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.State != StateDone {
			t.Errorf("expected StateDone, got %s", result.State)
		}
		if result.SeedCount != 5 {
			t.Errorf("expected 5 tracks added, got %d", result.SeedCount)
		}
		if result.Playlist == nil || result.Playlist.ID != "pl1" {
			t.Errorf("expected created playlist in result, got %+v", result.Playlist)
		}

		wantName := "Listification for song: Yesterday - The Beatles"
		if gotDraft.Name != wantName {
			t.Errorf("playlist name = %q, want %q", gotDraft.Name, wantName)
		}
		wantDesc := `Recommended songs based on "Yesterday" - The Beatles`
		if gotDraft.Description != wantDesc {
			t.Errorf("playlist description = %q, want %q", gotDraft.Description, wantDesc)
		}
		if gotDraft.Public {
			t.Error("playlist should be private")
		}

		// URIs must follow similarity rank, not resolution completion order.
		want := []string{
			"spotify:track:id0",
			"spotify:track:id1",
			"spotify:track:id2",
			"spotify:track:id3",
			"spotify:track:id4",
		}
		if len(gotURIs) != len(want) {
			t.Fatalf("expected %d URIs, got %d", len(want), len(gotURIs))
		}
		for i, uri := range want {
			if gotURIs[i] != uri {
				t.Errorf("URI %d = %s, want %s", i, gotURIs[i], uri)
			}
		}

		if len(progress) == 0 {
			t.Error("expected progress updates")
		}
	})

	t.Run("unknown seed creates nothing", func(t *testing.T) {
		catalog := candidateCatalog(nil)
		created := false
		catalog.CreatePlaylistFunc = func(ctx context.Context, userID string, draft services.PlaylistDraft) (*services.Playlist, error) {
			created = true
			return nil, nil
		}

		builder := NewBuilder(catalog, similarityFor(nil), nil, fastOpts)

		result, err := builder.Run(context.Background(), nil, beatlesSeed)
		if !errors.Is(err, shared.ErrUnknownSeedTrack) {
			t.Errorf("expected ErrUnknownSeedTrack, got %v", err)
		}
		if result.State != StateFailed {
			t.Errorf("expected StateFailed, got %s", result.State)
		}
		if created {
			t.Error("playlist must not be created for an unknown seed")
		}
	})

	t.Run("requires authentication before any network call", func(t *testing.T) {
		catalog := candidateCatalog(nil)
		catalog.AuthenticatedFunc = func() bool { return false }

		similarityCalled := false
		similarity := &tu.MockSimilarity{
			SimilarTracksFunc: func(ctx context.Context, title, artist string, limit int) ([]services.SimilarTrack, error) {
				similarityCalled = true
				return nil, nil
			},
		}

		builder := NewBuilder(catalog, similarity, nil, fastOpts)

		_, err := builder.Run(context.Background(), nil, beatlesSeed)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if similarityCalled {
			t.Error("similarity source must not be called without a session")
		}
	})

	t.Run("caps playlist at 100 tracks", func(t *testing.T) {
		candidates := makeCandidates(150)
		catalog := candidateCatalog(candidates)

		var gotURIs []string
		catalog.AddTracksFunc = func(ctx context.Context, playlistID string, uris []string) error {
			gotURIs = uris
			return nil
		}

		builder := NewBuilder(catalog, similarityFor(candidates), nil, fastOpts)

		result, err := builder.Run(context.Background(), nil, beatlesSeed)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.SeedCount != 100 {
			t.Errorf("expected 100 tracks, got %d", result.SeedCount)
		}
		if len(gotURIs) != 100 {
			t.Fatalf("expected 100 URIs, got %d", len(gotURIs))
		}
		// Kept URIs must be the best-ranked resolutions in rank order.
		if gotURIs[0] != "spotify:track:id0" {
			t.Errorf("expected best-ranked candidate first, got %s", gotURIs[0])
		}
		for i := 1; i < len(gotURIs); i++ {
			if uriIndex(t, gotURIs[i-1]) >= uriIndex(t, gotURIs[i]) {
				t.Fatalf("URIs out of rank order at %d: %s before %s", i, gotURIs[i-1], gotURIs[i])
			}
		}
	})

	t.Run("unmatched candidates are skipped in order", func(t *testing.T) {
		candidates := makeCandidates(9)
		catalog := candidateCatalog(candidates)

		// Drop every third candidate to simulate catalog misses.
		inner := catalog.SearchFunc
		catalog.SearchFunc = func(ctx context.Context, query string, limit int) ([]services.Track, error) {
			for i := 0; i < len(candidates); i += 3 {
				if strings.HasPrefix(query, candidates[i].Title+" ") {
					return []services.Track{}, nil
				}
			}
			return inner(ctx, query, limit)
		}

		var gotURIs []string
		catalog.AddTracksFunc = func(ctx context.Context, playlistID string, uris []string) error {
			gotURIs = uris
			return nil
		}

		builder := NewBuilder(catalog, similarityFor(candidates), nil, fastOpts)

		result, err := builder.Run(context.Background(), nil, beatlesSeed)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.SeedCount != 6 {
			t.Errorf("expected 6 tracks, got %d", result.SeedCount)
		}
		if result.NoMatches != 3 {
			t.Errorf("expected 3 unmatched candidates, got %d", result.NoMatches)
		}

		want := []string{
			"spotify:track:id1", "spotify:track:id2",
			"spotify:track:id4", "spotify:track:id5",
			"spotify:track:id7", "spotify:track:id8",
		}
		for i, uri := range want {
			if gotURIs[i] != uri {
				t.Errorf("URI %d = %s, want %s", i, gotURIs[i], uri)
			}
		}
	})

	t.Run("bulk add failure leaves playlist and reports partial result", func(t *testing.T) {
		candidates := makeCandidates(5)
		catalog := candidateCatalog(candidates)
		catalog.AddTracksFunc = func(ctx context.Context, playlistID string, uris []string) error {
			return fmt.Errorf("spotify API error: status 502")
		}

		builder := NewBuilder(catalog, similarityFor(candidates), nil, fastOpts)

		result, err := builder.Run(context.Background(), nil, beatlesSeed)
		if !errors.Is(err, shared.ErrTrackAdditionFailed) {
			t.Errorf("expected ErrTrackAdditionFailed, got %v", err)
		}
		if result.Playlist == nil {
			t.Fatal("expected the empty playlist to be reported")
		}
		if result.SeedCount != 0 {
			t.Errorf("expected SeedCount 0 after failed bulk add, got %d", result.SeedCount)
		}
		if result.State != StateFailed {
			t.Errorf("expected StateFailed, got %s", result.State)
		}
	})

	t.Run("aborts when resolution failures exceed threshold", func(t *testing.T) {
		candidates := makeCandidates(10)
		catalog := candidateCatalog(candidates)
		catalog.SearchFunc = func(ctx context.Context, query string, limit int) ([]services.Track, error) {
			return nil, fmt.Errorf("connection reset")
		}

		created := false
		catalog.CreatePlaylistFunc = func(ctx context.Context, userID string, draft services.PlaylistDraft) (*services.Playlist, error) {
			created = true
			return nil, nil
		}

		builder := NewBuilder(catalog, similarityFor(candidates), nil, fastOpts)

		result, err := builder.Run(context.Background(), nil, beatlesSeed)
		if !errors.Is(err, shared.ErrResolutionFailed) {
			t.Errorf("expected ErrResolutionFailed, got %v", err)
		}
		if created {
			t.Error("playlist must not be created when resolution collapses")
		}
		if len(result.Failures) != 10 {
			t.Errorf("expected 10 recorded failures, got %d", len(result.Failures))
		}
	})

	t.Run("playlist creation failure", func(t *testing.T) {
		candidates := makeCandidates(3)
		catalog := candidateCatalog(candidates)
		catalog.CreatePlaylistFunc = func(ctx context.Context, userID string, draft services.PlaylistDraft) (*services.Playlist, error) {
			return nil, fmt.Errorf("spotify API error: status 500")
		}

		builder := NewBuilder(catalog, similarityFor(candidates), nil, fastOpts)

		result, err := builder.Run(context.Background(), nil, beatlesSeed)
		if !errors.Is(err, shared.ErrPlaylistCreationFailed) {
			t.Errorf("expected ErrPlaylistCreationFailed, got %v", err)
		}
		if result.Playlist != nil {
			t.Error("no playlist should be reported when creation fails")
		}
	})

	t.Run("rejects concurrent runs for the same seed", func(t *testing.T) {
		candidates := makeCandidates(3)
		catalog := candidateCatalog(candidates)

		release := make(chan struct{})
		started := make(chan struct{})
		var startedOnce sync.Once
		similarity := &tu.MockSimilarity{
			SimilarTracksFunc: func(ctx context.Context, title, artist string, limit int) ([]services.SimilarTrack, error) {
				startedOnce.Do(func() { close(started) })
				<-release
				return candidates, nil
			},
		}

		builder := NewBuilder(catalog, similarity, nil, fastOpts)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := builder.Run(context.Background(), nil, beatlesSeed); err != nil {
				t.Errorf("first run failed: %v", err)
			}
		}()

		<-started

		// Same seed with different casing still collides.
		duplicate := services.Track{Title: "YESTERDAY", Artists: []string{"the beatles"}}
		_, err := builder.Run(context.Background(), nil, duplicate)
		if !errors.Is(err, shared.ErrRunInProgress) {
			t.Errorf("expected ErrRunInProgress, got %v", err)
		}

		close(release)
		wg.Wait()

		// The key is released once the run completes.
		if _, err := builder.Run(context.Background(), nil, beatlesSeed); err != nil {
			t.Errorf("run after completion failed: %v", err)
		}
	})

	t.Run("rejects a seed without a title", func(t *testing.T) {
		builder := NewBuilder(candidateCatalog(nil), similarityFor(nil), nil, fastOpts)

		_, err := builder.Run(context.Background(), nil, services.Track{Artists: []string{"Nobody"}})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestDraftFor(t *testing.T) {
	draft := DraftFor(services.Track{Title: "Teardrop", Artists: []string{"Massive Attack"}})

	if draft.Name != "Listification for song: Teardrop - Massive Attack" {
		t.Errorf("unexpected name %q", draft.Name)
	}
	if draft.Description != `Recommended songs based on "Teardrop" - Massive Attack` {
		t.Errorf("unexpected description %q", draft.Description)
	}
	if draft.Public {
		t.Error("drafts must be private")
	}
}

func TestState_String(t *testing.T) {
	states := map[State]string{
		StateIdle:            "idle",
		StateFetchingSimilar: "fetching_similar",
		StateResolving:       "resolving",
		StateCreating:        "creating",
		StatePopulating:      "populating",
		StateDone:            "done",
		StateFailed:          "failed",
	}

	for state, want := range states {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}

// uriIndex recovers the candidate index embedded in a test URI.
func uriIndex(t *testing.T, uri string) int {
	t.Helper()
	var idx int
	if _, err := fmt.Sscanf(uri, "spotify:track:id%d", &idx); err != nil {
		t.Fatalf("unexpected URI %s", uri)
	}
	return idx
}
