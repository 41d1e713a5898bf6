// package services defines interfaces for the external catalogs listify coordinates
//
// Spotify (catalog + playlists), Last.fm (recommendations)
package services

import (
	"context"
	"strings"

	"golang.org/x/oauth2"
)

// CatalogService is a streaming platform catalog that can search tracks and
// build playlists for the authenticated user.
type CatalogService interface {
	// Authenticate performs OAuth or token authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// Authenticated reports whether the service holds a usable token.
	// Callers check this before starting work that would otherwise fail
	// midway through a network round trip.
	Authenticated() bool

	// Search queries the catalog by free text and returns up to limit tracks,
	// ranked by platform relevance and deduplicated by case-insensitive title.
	// An empty result is not an error.
	Search(ctx context.Context, query string, limit int) ([]Track, error)

	// CurrentUserID returns the authenticated user's identifier.
	CurrentUserID(ctx context.Context) (string, error)

	// CreatePlaylist creates an empty playlist for the user and returns it,
	// including its shareable URL.
	CreatePlaylist(ctx context.Context, userID string, draft PlaylistDraft) (*Playlist, error)

	// AddTracks appends up to 100 track URIs to a playlist in a single call.
	AddTracks(ctx context.Context, playlistID string, uris []string) error

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// SimilarityService is a recommendation source that maps a (title, artist)
// pair to tracks similar to it.
type SimilarityService interface {
	// SimilarTracks returns up to limit candidates ranked by the source's own
	// similarity score, descending. Zero candidates is a valid non-error
	// outcome meaning the source does not know the track.
	SimilarTracks(ctx context.Context, title, artist string, limit int) ([]SimilarTrack, error)

	// Name returns the name of the service (e.g., "Last.fm")
	Name() string
}

// OAuthService extends CatalogService for providers using server-side OAuth flows.
type OAuthService interface {
	CatalogService

	// GetAuthURL returns the authorization URL for user login.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the underlying OAuth2 config for callback handling.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate authenticates with a previously obtained token.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}

// Track represents a catalog track. ID and URI are only present for tracks
// that came from (or were resolved against) the catalog.
type Track struct {
	ID          string
	URI         string
	Title       string
	Artists     []string // primary artist first
	AlbumArtURL string
}

// PrimaryArtist returns the first credited artist, or "" when unknown.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// SimilarTrack is a recommendation candidate: free-text metadata with the
// source's relevance score, not yet tied to any catalog identifier.
type SimilarTrack struct {
	Title  string
	Artist string
	Match  float64
}

// PlaylistDraft describes a playlist to be created.
type PlaylistDraft struct {
	Name        string
	Description string
	Public      bool
}

// Playlist represents a created playlist on the platform.
type Playlist struct {
	ID          string
	Name        string
	Description string
	URL         string // shareable URL
	Public      bool
}

// DedupeTracksByTitle removes tracks whose title matches an earlier entry
// case-insensitively, keeping the first occurrence. Search frequently returns
// several album re-releases of the same song; collapsing them keeps the list
// useful for human selection. Running it on an already-deduplicated list is a
// no-op.
func DedupeTracksByTitle(tracks []Track) []Track {
	seen := make(map[string]struct{}, len(tracks))
	out := make([]Track, 0, len(tracks))

	for _, t := range tracks {
		key := strings.ToLower(t.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}

	return out
}
