package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/listify/internal/services"
	"github.com/desertthunder/listify/internal/sessions"
	"github.com/desertthunder/listify/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx := context.Background()
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var spotifyService services.OAuthService
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			spotifyService = svc
		} else {
			logger.Warnf("spotify service unavailable: %v", err)
		}
	}

	lastfmService := services.NewLastFMService(config.Credentials.LastFM.APIKey, "", nil)

	var store *sessions.Store
	if db, err := shared.NewDatabase(config.Database.Path); err == nil {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		store = sessions.NewStore(db)
		if err := store.Init(ctx); err != nil {
			logger.Warnf("session store unavailable: %v", err)
			store = nil
		}
	} else {
		logger.Warnf("database unavailable: %v", err)
	}

	// Restore a previous login so commands work without re-authenticating.
	if store != nil && spotifyService != nil {
		if token, err := store.Load(ctx, spotifyService.Name()); err == nil {
			if err := spotifyService.OAuthenticate(ctx, token); err != nil {
				logger.Warnf("failed to restore session: %v", err)
			}
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Spotify: spotifyService,
		LastFM:  lastfmService,
		Store:   store,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "listify",
		Usage:    "Generate Spotify playlists from a seed song's recommendations",
		Version:  "0.1.0",
		Commands: runner.register(),
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "enable debug logging"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				shared.SetLogLevel(logger, log.DebugLevel)
			}
			return ctx, nil
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
