package cmd

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trainerhub/poketrainer/internal"
	"github.com/trainerhub/poketrainer/internal/api"
	"github.com/trainerhub/poketrainer/internal/guard"
)

// app bundles everything a command needs, built from the global flags
type app struct {
	cfg      *internal.Config
	paths    internal.DataPaths
	db       *sql.DB
	state    *internal.StateStore
	sessions *internal.SessionStore
	images   *internal.ProfileImageCache
	client   *api.Client
	guard    *guard.Guard
}

// openApp resolves configuration and opens the local state
func openApp() (*app, error) {
	paths, err := internal.GetDataPaths(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get data paths: %w", err)
	}
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg, err := internal.LoadConfig(paths, internal.Overrides{
		APIURL:    apiURL,
		SocketURL: socketURL,
		Timeout:   timeout,
	})
	if err != nil {
		return nil, err
	}

	db, err := internal.OpenDatabase(paths.StateDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	state := internal.NewStateStore(db)
	sessions := internal.NewSessionStore(state)
	client := api.NewClient(cfg.APIURL, cfg.Timeout, sessions)

	internal.LogDebug("Using API %s, data dir %s", cfg.APIURL, paths.BaseDir)
	return &app{
		cfg:      cfg,
		paths:    paths,
		db:       db,
		state:    state,
		sessions: sessions,
		images:   internal.NewProfileImageCache(internal.NewCacheManager(paths.CacheDir), state),
		client:   client,
		guard:    guard.New(sessions, client),
	}, nil
}

// Close releases the state database
func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		internal.LogWarn("Failed to close state database: %v", err)
	}
}

// withApp wraps a RunE body with app setup and teardown
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

// requireSession returns the stored session or a login hint
func (a *app) requireSession() (*internal.Session, error) {
	session, err := a.sessions.Current()
	if err != nil {
		return nil, fmt.Errorf("%w: run 'poketrainer login' first", internal.ErrLoginRequired)
	}
	return session, nil
}

// dropProfileImage forgets the cached profile image after anything that changes it
func (a *app) dropProfileImage() {
	if err := a.images.Invalidate(); err != nil {
		internal.LogWarn("Failed to drop cached profile image: %v", err)
	}
}
