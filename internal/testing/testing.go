// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/listify/internal/services"
	"golang.org/x/oauth2"
)

// MockCatalog is a configurable test double for [services.CatalogService].
// Zero-value behavior: authenticated, empty search results, playlist
// creation succeeds.
type MockCatalog struct {
	AuthenticateFunc   func(ctx context.Context, credentials map[string]string) error
	AuthenticatedFunc  func() bool
	SearchFunc         func(ctx context.Context, query string, limit int) ([]services.Track, error)
	CurrentUserIDFunc  func(ctx context.Context) (string, error)
	CreatePlaylistFunc func(ctx context.Context, userID string, draft services.PlaylistDraft) (*services.Playlist, error)
	AddTracksFunc      func(ctx context.Context, playlistID string, uris []string) error
}

func (m *MockCatalog) Authenticate(ctx context.Context, credentials map[string]string) error {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, credentials)
	}
	return nil
}

func (m *MockCatalog) Authenticated() bool {
	if m.AuthenticatedFunc != nil {
		return m.AuthenticatedFunc()
	}
	return true
}

func (m *MockCatalog) Search(ctx context.Context, query string, limit int) ([]services.Track, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, limit)
	}
	return []services.Track{}, nil
}

func (m *MockCatalog) CurrentUserID(ctx context.Context) (string, error) {
	if m.CurrentUserIDFunc != nil {
		return m.CurrentUserIDFunc(ctx)
	}
	return "test_user", nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, userID string, draft services.PlaylistDraft) (*services.Playlist, error) {
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, userID, draft)
	}
	return &services.Playlist{ID: "test_playlist", Name: draft.Name, Description: draft.Description, Public: draft.Public}, nil
}

func (m *MockCatalog) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	if m.AddTracksFunc != nil {
		return m.AddTracksFunc(ctx, playlistID, uris)
	}
	return nil
}

func (m *MockCatalog) Name() string { return "mock" }

// MockOAuthCatalog extends [MockCatalog] to satisfy [services.OAuthService].
type MockOAuthCatalog struct {
	MockCatalog
	AuthURL           string
	OAuthConfig       *oauth2.Config
	OAuthenticateFunc func(ctx context.Context, token *oauth2.Token) error
}

func (m *MockOAuthCatalog) GetAuthURL(state string) string {
	return m.AuthURL
}

func (m *MockOAuthCatalog) GetOAuthConfig() *oauth2.Config {
	return m.OAuthConfig
}

func (m *MockOAuthCatalog) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if m.OAuthenticateFunc != nil {
		return m.OAuthenticateFunc(ctx, token)
	}
	return nil
}

// MockSimilarity is a configurable test double for [services.SimilarityService].
type MockSimilarity struct {
	SimilarTracksFunc func(ctx context.Context, title, artist string, limit int) ([]services.SimilarTrack, error)
}

func (m *MockSimilarity) SimilarTracks(ctx context.Context, title, artist string, limit int) ([]services.SimilarTrack, error) {
	if m.SimilarTracksFunc != nil {
		return m.SimilarTracksFunc(ctx, title, artist, limit)
	}
	return []services.SimilarTrack{}, nil
}

func (m *MockSimilarity) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
