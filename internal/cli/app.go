// Package cli holds the imagestudio commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/mhpenta/imagestudio"
	"github.com/mhpenta/imagestudio/gallery"
	"github.com/mhpenta/imagestudio/internal/config"
	"github.com/mhpenta/imagestudio/internal/logger"
	"github.com/mhpenta/imagestudio/provider/gemini"
	"github.com/mhpenta/imagestudio/session"
)

// newProvider creates the image backend. Tests replace it.
var newProvider = func(ctx context.Context, cfg *imagestudio.ProviderConfig) (imagestudio.ImageGenerator, error) {
	return gemini.New(ctx, cfg)
}

type globalFlags struct {
	configPath string
	logFile    string
	debug      bool
}

// app is everything a command needs, opened from the config.
type app struct {
	cfg     *config.Config
	logFile *logger.File
	logger  *slog.Logger
	store   *gallery.Store
	closers []io.Closer
}

func openApp(ctx context.Context, flags *globalFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.debug {
		cfg.Debug = true
	}
	if flags.logFile != "" {
		cfg.LogFile = flags.logFile
	}

	lf, err := logger.Open(cfg.LogFile)
	if err != nil {
		return nil, err
	}
	lf.SetDebug(cfg.Debug)

	a := &app{cfg: cfg, logFile: lf, logger: lf.Logger()}

	backend, err := a.openBackend(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = gallery.NewStore(backend,
		gallery.WithKey(cfg.GalleryKey),
		gallery.WithLogger(logger.Component(a.logger, "gallery")))

	a.logger.Debug("app opened", "config", cfg.Path(), "backend", cfg.Backend, "dataDir", cfg.DataDir)
	return a, nil
}

func (a *app) openBackend(ctx context.Context) (gallery.Backend, error) {
	switch a.cfg.Backend {
	case config.BackendSQLite:
		b, err := gallery.OpenSQLite(ctx, filepath.Join(a.cfg.DataDir, "gallery.db"))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, b)
		return b, nil
	case config.BackendMemory:
		b := gallery.NewMemoryBackend()
		b.Quota = int(a.cfg.QuotaBytes)
		return b, nil
	default:
		return gallery.NewFileBackend(a.cfg.DataDir, int(a.cfg.QuotaBytes)), nil
	}
}

// manager creates the request orchestrator. It needs an API key.
func (a *app) manager(ctx context.Context) (*imagestudio.Manager, error) {
	key, err := a.cfg.RequireAPIKey()
	if err != nil {
		return nil, err
	}
	opts, err := a.cfg.SessionOptions()
	if err != nil {
		return nil, err
	}

	gen, err := newProvider(ctx, &imagestudio.ProviderConfig{
		Provider: imagestudio.ProviderGeminiAPI,
		APIKey:   key,
		BaseURL:  a.cfg.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	m := imagestudio.NewManager(gen,
		imagestudio.WithLogger(logger.Component(a.logger, "manager")),
		imagestudio.WithStorage(imagestudio.NewDirStorage(a.cfg.DownloadDir)),
		imagestudio.WithDefaultModel(opts.Model),
		imagestudio.WithRateLimitWait(a.cfg.RateLimitWait),
	)
	a.closers = append(a.closers, m)
	return m, nil
}

// session loads the gallery into a fresh session with the configured defaults.
func (a *app) session(ctx context.Context) (*session.State, error) {
	opts, err := a.cfg.SessionOptions()
	if err != nil {
		return nil, err
	}
	s := session.New(a.store.Load(ctx))
	s.Options = opts
	return s, nil
}

// controller opens the manager and wires a session controller over it.
func (a *app) controller(ctx context.Context) (*session.Controller, error) {
	m, err := a.manager(ctx)
	if err != nil {
		return nil, err
	}
	return session.NewController(m, a.store, logger.Component(a.logger, "session")), nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}
