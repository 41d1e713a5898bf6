// package tasks implements the recommendation-to-playlist pipeline.
//
// The core abstraction is Builder, which takes a seed track through fetch →
// resolve → create → populate. Operations emit progress updates via channels
// for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listify/internal/services"
	"github.com/desertthunder/listify/internal/shared"
	"golang.org/x/time/rate"
)

// State identifies where a run is in its lifecycle. StateDone and
// StateFailed are terminal; StateFailed is reachable from any other state.
type State int

const (
	StateIdle State = iota
	StateFetchingSimilar
	StateResolving
	StateCreating
	StatePopulating
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetchingSimilar:
		return "fetching_similar"
	case StateResolving:
		return "resolving"
	case StateCreating:
		return "creating"
	case StatePopulating:
		return "populating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return ""
	}
}

// ResolutionFailure records a candidate whose resolution errored (as opposed
// to finding no match, which is silent).
type ResolutionFailure struct {
	Candidate services.SimilarTrack
	Err       error
}

// RunResult contains all data from a playlist generation run. On failure the
// result is still returned alongside the error so callers can inspect how
// far the run got; in particular a bulk-add failure leaves Playlist set with
// SeedCount zero.
type RunResult struct {
	Playlist   *services.Playlist  // Created playlist (nil before creation)
	SeedCount  int                 // Tracks actually added, ≤ MaxTracks
	State      State               // Terminal state of the run
	Candidates int                 // Similarity candidates returned by the source
	Attempted  int                 // Resolution attempts made
	Resolved   int                 // Successful resolutions kept (rank order)
	NoMatches  int                 // Candidates the catalog had no match for
	Failures   []ResolutionFailure // Transport-level resolution failures
}

// BuilderOpts tunes the pipeline.
type BuilderOpts struct {
	Workers          int     // Concurrent resolution workers (default 5, max 10)
	RateLimit        float64 // Catalog lookups per second (default 5)
	MaxTracks        int     // Hard cap on playlist seed size (default 100)
	FailureThreshold float64 // Abort when this share of attempts error (default 0.5)
}

func (o BuilderOpts) normalized() BuilderOpts {
	if o.Workers <= 0 {
		o.Workers = 5
	}
	if o.Workers > 10 {
		o.Workers = 10
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 5.0
	}
	if o.MaxTracks <= 0 || o.MaxTracks > 100 {
		o.MaxTracks = 100
	}
	if o.FailureThreshold <= 0 || o.FailureThreshold > 1 {
		o.FailureThreshold = 0.5
	}
	return o
}

// Builder orchestrates playlist generation from a seed track.
//
// A Builder is safe for concurrent use, but runs for the same seed are
// mutually exclusive: a second Run for a seed already in flight is rejected
// with [shared.ErrRunInProgress], since overlapping runs on the same session
// could create duplicate playlists.
type Builder struct {
	catalog    services.CatalogService
	similarity services.SimilarityService
	resolver   *Resolver
	logger     *log.Logger
	opts       BuilderOpts

	mu     sync.Mutex
	active map[string]struct{}
}

// NewBuilder creates a Builder with the provided services.
func NewBuilder(catalog services.CatalogService, similarity services.SimilarityService, logger *log.Logger, opts BuilderOpts) *Builder {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Builder{
		catalog:    catalog,
		similarity: similarity,
		resolver:   NewResolver(catalog),
		logger:     logger,
		opts:       opts.normalized(),
		active:     make(map[string]struct{}),
	}
}

// SetLogger swaps the Builder's logger.
func (b *Builder) SetLogger(logger *log.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// DraftFor derives the playlist metadata for a seed track. The derivation is
// deterministic: the same seed always names the same playlist.
func DraftFor(seed services.Track) services.PlaylistDraft {
	return services.PlaylistDraft{
		Name:        fmt.Sprintf("Listification for song: %s - %s", seed.Title, seed.PrimaryArtist()),
		Description: fmt.Sprintf("Recommended songs based on %q - %s", seed.Title, seed.PrimaryArtist()),
		Public:      false,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (b *Builder) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run generates a playlist seeded from the given track.
//
// The seed itself is never added to the playlist: it is the origin of the
// recommendations, not one of them. Candidates that fail to resolve are
// dropped; transport-level failures abort the run only when they exceed the
// configured threshold. Once playlist creation begins the run detaches from
// the caller's context, because a playlist may already exist server-side
// and leaving it in place beats an inconsistent partial delete.
func (b *Builder) Run(ctx context.Context, progress chan<- ProgressUpdate, seed services.Track) (*RunResult, error) {
	result := &RunResult{State: StateIdle}

	if b.catalog == nil || b.similarity == nil {
		result.State = StateFailed
		return result, fmt.Errorf("%w: builder services not initialized", shared.ErrServiceUnavailable)
	}
	if seed.Title == "" {
		result.State = StateFailed
		return result, fmt.Errorf("%w: seed track has no title", shared.ErrInvalidArgument)
	}
	if !b.catalog.Authenticated() {
		result.State = StateFailed
		return result, fmt.Errorf("%w: no catalog session", shared.ErrNotAuthenticated)
	}

	key := seedKey(seed)
	if !b.acquire(key) {
		result.State = StateFailed
		return result, fmt.Errorf("%w: %s - %s", shared.ErrRunInProgress, seed.Title, seed.PrimaryArtist())
	}
	defer b.release(key)

	logger := shared.WithLogger(b.logger, "run_id", shared.GenerateID(), "seed", key)
	logger.Info("starting playlist generation")

	result.State = StateFetchingSimilar
	b.sendProgress(progress, fetchSimilarUpdate(seed))

	similar, err := b.similarity.SimilarTracks(ctx, seed.Title, seed.PrimaryArtist(), b.opts.MaxTracks)
	if err != nil {
		result.State = StateFailed
		return result, fmt.Errorf("failed to fetch similar tracks: %w", err)
	}
	if len(similar) == 0 {
		result.State = StateFailed
		return result, fmt.Errorf("%w: %s - %s", shared.ErrUnknownSeedTrack, seed.Title, seed.PrimaryArtist())
	}

	result.Candidates = len(similar)
	b.sendProgress(progress, similarFoundUpdate(len(similar)))

	result.State = StateResolving
	uris := b.resolveCandidates(ctx, progress, similar, result)

	if err := ctx.Err(); err != nil {
		result.State = StateFailed
		return result, fmt.Errorf("run canceled: %w", err)
	}

	if result.Attempted > 0 {
		share := float64(len(result.Failures)) / float64(result.Attempted)
		if share > b.opts.FailureThreshold {
			result.State = StateFailed
			return result, fmt.Errorf("%w: %d of %d resolution attempts errored",
				shared.ErrResolutionFailed, len(result.Failures), result.Attempted)
		}
	}

	if len(uris) == 0 {
		result.State = StateFailed
		return result, fmt.Errorf("%w: none of %d candidates resolved to a catalog track",
			shared.ErrResolutionFailed, len(similar))
	}
	result.Resolved = len(uris)

	// Creation and population must not be interrupted by caller abandonment.
	detached := context.WithoutCancel(ctx)

	result.State = StateCreating
	draft := DraftFor(seed)
	b.sendProgress(progress, createPlaylistUpdate(draft.Name))

	userID, err := b.catalog.CurrentUserID(detached)
	if err != nil {
		result.State = StateFailed
		return result, fmt.Errorf("%w: %v", shared.ErrPlaylistCreationFailed, err)
	}

	playlist, err := b.catalog.CreatePlaylist(detached, userID, draft)
	if err != nil {
		// Nothing has been added yet, so there is no partial state to undo.
		result.State = StateFailed
		return result, fmt.Errorf("%w: %v", shared.ErrPlaylistCreationFailed, err)
	}
	result.Playlist = playlist

	result.State = StatePopulating
	b.sendProgress(progress, populateUpdate(len(uris), playlist))

	if err := b.catalog.AddTracks(detached, playlist.ID, uris); err != nil {
		// The playlist exists but is empty. Surface it as a partial success
		// and leave it for the user; a silent retry risks duplicates.
		result.State = StateFailed
		result.SeedCount = 0
		return result, fmt.Errorf("%w: %v", shared.ErrTrackAdditionFailed, err)
	}

	result.SeedCount = len(uris)
	result.State = StateDone
	logger.Info("playlist populated", "playlist", playlist.ID, "tracks", len(uris))
	b.sendProgress(progress, doneUpdate(playlist, len(uris)))

	return result, nil
}

// resolveCandidates fans candidate resolution out to a bounded worker pool
// behind a rate limiter, then reassembles the successful URIs in original
// similarity-rank order. Dispatch stops early once MaxTracks resolutions
// have succeeded.
func (b *Builder) resolveCandidates(ctx context.Context, progress chan<- ProgressUpdate, candidates []services.SimilarTrack, result *RunResult) []string {
	type resolution struct {
		index int
		uri   string
		err   error
	}

	limiter := rate.NewLimiter(rate.Limit(b.opts.RateLimit), 1)
	jobs := make(chan int)
	results := make(chan resolution, len(candidates))

	var resolved atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < b.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				uri, err := b.resolver.Resolve(ctx, candidates[idx])
				if err == nil && uri != "" {
					resolved.Add(1)
				}
				results <- resolution{index: idx, uri: uri, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range candidates {
			if resolved.Load() >= int64(b.opts.MaxTracks) {
				return
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Completion order is arbitrary; the indexed slice restores rank order,
	// which carries semantic value (best matches first).
	refs := make([]string, len(candidates))
	for res := range results {
		result.Attempted++
		b.sendProgress(progress, resolveUpdate(result.Attempted, len(candidates), candidates[res.index]))

		if res.err != nil {
			b.logger.Warn("resolution failed",
				"title", candidates[res.index].Title,
				"artist", candidates[res.index].Artist,
				"error", res.err)
			result.Failures = append(result.Failures, ResolutionFailure{
				Candidate: candidates[res.index],
				Err:       res.err,
			})
			continue
		}
		if res.uri == "" {
			result.NoMatches++
			continue
		}
		refs[res.index] = res.uri
	}

	uris := make([]string, 0, b.opts.MaxTracks)
	for _, uri := range refs {
		if uri == "" {
			continue
		}
		if len(uris) == b.opts.MaxTracks {
			break
		}
		uris = append(uris, uri)
	}

	return uris
}

func (b *Builder) acquire(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.active[key]; ok {
		return false
	}
	b.active[key] = struct{}{}
	return true
}

func (b *Builder) release(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.active, key)
}

func seedKey(seed services.Track) string {
	return strings.ToLower(strings.TrimSpace(seed.Title)) + "|" + strings.ToLower(strings.TrimSpace(seed.PrimaryArtist()))
}
