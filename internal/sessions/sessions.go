// package sessions persists OAuth tokens between CLI invocations.
//
// The store holds one row per service. Nothing else is persisted: playlists
// live on the platform and tracks are ephemeral to a single run.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/listify/internal/shared"
	"golang.org/x/oauth2"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	service       TEXT PRIMARY KEY,
	access_token  TEXT NOT NULL,
	refresh_token TEXT NOT NULL DEFAULT '',
	token_type    TEXT NOT NULL DEFAULT 'Bearer',
	expiry        TIMESTAMP,
	updated_at    TIMESTAMP NOT NULL
);`

// Store is a sqlite-backed token store.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over an open database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Init creates the sessions table if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize sessions table: %w", err)
	}
	return nil
}

// Save upserts the token for a service.
func (s *Store) Save(ctx context.Context, service string, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidCredentials)
	}

	query := `
INSERT INTO sessions (service, access_token, refresh_token, token_type, expiry, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(service) DO UPDATE SET
	access_token = excluded.access_token,
	refresh_token = excluded.refresh_token,
	token_type = excluded.token_type,
	expiry = excluded.expiry,
	updated_at = excluded.updated_at;`

	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	if _, err := s.db.ExecContext(ctx, query,
		service, token.AccessToken, token.RefreshToken, tokenType, token.Expiry, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Load returns the stored token for a service, or [shared.ErrNotAuthenticated]
// when no session exists.
func (s *Store) Load(ctx context.Context, service string) (*oauth2.Token, error) {
	query := `SELECT access_token, refresh_token, token_type, expiry FROM sessions WHERE service = ?;`

	var token oauth2.Token
	var expiry sql.NullTime

	row := s.db.QueryRowContext(ctx, query, service)
	if err := row.Scan(&token.AccessToken, &token.RefreshToken, &token.TokenType, &expiry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no session for %s", shared.ErrNotAuthenticated, service)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if expiry.Valid {
		token.Expiry = expiry.Time
	}

	return &token, nil
}

// Clear removes the stored session for a service. Clearing a missing session
// is not an error.
func (s *Store) Clear(ctx context.Context, service string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE service = ?;`, service); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
