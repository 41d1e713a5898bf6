package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/listify/internal/services"
	"github.com/desertthunder/listify/internal/shared"
)

// Resolver maps similarity candidates onto catalog track URIs.
type Resolver struct {
	catalog services.CatalogService
}

// NewResolver creates a Resolver backed by the given catalog.
func NewResolver(catalog services.CatalogService) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve issues a single top-1 catalog search using "<title> <artist>" as
// the query and returns the best match's URI.
//
// Returns ("", nil) when the catalog has no match. That outcome is common
// and expected: the recommendation service's free text does not always
// exist verbatim in the target catalog, and there is no retry on an empty
// result. Transport and auth failures wrap [shared.ErrResolutionFailed] so
// the caller can distinguish them from a no-match.
func (r *Resolver) Resolve(ctx context.Context, candidate services.SimilarTrack) (string, error) {
	query := strings.TrimSpace(candidate.Title + " " + candidate.Artist)
	if query == "" {
		return "", nil
	}

	matches, err := r.catalog.Search(ctx, query, 1)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrResolutionFailed, err)
	}

	if len(matches) == 0 || matches[0].URI == "" {
		return "", nil
	}

	return matches[0].URI, nil
}
