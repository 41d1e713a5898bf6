package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/listify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search looks up tracks in the Spotify catalog and prints them.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if query == "" {
		return fmt.Errorf("%w: a search query is required", shared.ErrMissingArgument)
	}
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}
	if !r.spotify.Authenticated() {
		return fmt.Errorf("%w: run 'listify auth login' first", shared.ErrNotAuthenticated)
	}

	r.logger.Infof("searching catalog for %q", query)

	tracks, err := r.spotify.Search(ctx, query, int(limit))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(tracks, pretty)
	}

	if len(tracks) == 0 {
		return r.writePlain("No tracks found for %q\n", query)
	}

	r.writePlain("Found %d tracks:\n\n", len(tracks))
	for i, track := range tracks {
		r.writePlain("%d. %s - %s\n", i+1, track.Title, strings.Join(track.Artists, ", "))
		r.writePlain("   URI: %s\n", track.URI)
	}

	return nil
}
