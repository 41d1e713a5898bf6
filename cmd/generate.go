package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/listify/internal/shared"
	"github.com/desertthunder/listify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Generate runs the full recommendation pipeline: resolve the seed song,
// fetch similar tracks, match them against the catalog, and create a
// private playlist.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	artist := strings.TrimSpace(cmd.String("artist"))
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if query == "" {
		return fmt.Errorf("%w: a seed song is required", shared.ErrMissingArgument)
	}
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	if !r.spotify.Authenticated() {
		return fmt.Errorf("%w: run 'listify auth login' first", shared.ErrNotAuthenticated)
	}

	seedQuery := query
	if artist != "" {
		seedQuery = query + " " + artist
	}

	r.logger.Infof("resolving seed song for %q", seedQuery)

	matches, err := r.spotify.Search(ctx, seedQuery, 1)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("%w: %q", shared.ErrSeedTrackNotFound, seedQuery)
	}
	seed := matches[0]

	r.writePlain("Seed: %s - %s\n", seed.Title, seed.PrimaryArtist())

	progress := make(chan tasks.ProgressUpdate, 50)
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		for update := range progress {
			if update.Phase == tasks.ResolveTracks {
				r.writePlain("  %s\n", update.Message)
				continue
			}
			r.writePlain("→ %s\n", update.Message)
		}
	}()

	result, runErr := r.builder.Run(ctx, progress, seed)
	close(progress)
	<-rendered

	if runErr != nil {
		if errors.Is(runErr, shared.ErrTrackAdditionFailed) && result != nil && result.Playlist != nil {
			r.writePlainln("⚠ Playlist '%s' was created but no tracks could be added.", result.Playlist.Name)
		}
		if errors.Is(runErr, shared.ErrUnknownSeedTrack) {
			return fmt.Errorf("no recommendations found for %s - %s: %w", seed.Title, seed.PrimaryArtist(), runErr)
		}
		return runErr
	}

	if useJSON {
		return r.writeJSON(result, pretty)
	}

	r.writePlainln("✓ Playlist created")
	r.writePlain("  Name: %s\n", result.Playlist.Name)
	r.writePlain("  Tracks: %d (from %d candidates)\n", result.SeedCount, result.Candidates)
	if result.Playlist.URL != "" {
		r.writePlain("  URL: %s\n", result.Playlist.URL)
	}
	if len(result.Failures) > 0 {
		r.writePlain("  %d candidates could not be resolved\n", len(result.Failures))
	}

	return nil
}
