package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/listify/internal/server"
	"github.com/desertthunder/listify/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin performs the OAuth2 authorization flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization,
// exchanges the auth code for tokens, and persists them in the session store.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify credentials must be set in config.toml", shared.ErrMissingCredentials)
	}

	token, err := r.doOAuth()
	if err != nil {
		return err
	}

	if err := r.spotify.OAuthenticate(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if r.store != nil {
		if err := r.store.Save(ctx, r.spotify.Name(), token); err != nil {
			r.logger.Warnf("failed to persist session: %v", err)
		}
	}

	userID, err := r.spotify.CurrentUserID(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("Signed in as %s\n", userID)
	return nil
}

// AuthStatus reports whether a usable Spotify session exists.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return r.writePlain("✗ Spotify credentials not configured\n")
	}
	if !r.spotify.Authenticated() {
		return r.writePlain("✗ Not authenticated. Run 'listify auth login'\n")
	}

	userID, err := r.spotify.CurrentUserID(ctx)
	if err != nil {
		return fmt.Errorf("%w: session is no longer valid: %v", shared.ErrTokenExpired, err)
	}

	r.writePlain("✓ Authenticated as %s\n", userID)
	return nil
}

// AuthLogout clears the stored Spotify session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.store == nil || r.spotify == nil {
		return r.writePlain("No session to clear\n")
	}

	if err := r.store.Clear(ctx, r.spotify.Name()); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	r.writePlain("✓ Session cleared\n")
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth() (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := r.spotify.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(r.spotify.GetOAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}
