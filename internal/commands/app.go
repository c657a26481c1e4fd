package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"diary-service/internal/cache"
	"diary-service/internal/config"
	"diary-service/internal/store"
)

// app holds the stores and cache shared by the commands that touch data.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *sqlx.DB
	users   store.UserStore
	movies  store.MovieStore
	entries store.DiaryStore
	cache   cache.Cache
	closers []func() error
}

func openApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	if cfg.Database.Driver == store.DriverMemory {
		logger.WarnContext(ctx, "Using in-memory stores, data is lost on exit")
		a.users = store.NewMemoryUserStore()
		a.movies = store.NewMemoryMovieStore()
		a.entries = store.NewMemoryDiaryStore()
	} else if err := a.openSQL(ctx); err != nil {
		a.Close()
		return nil, err
	}

	if err := a.openCache(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openSQL(ctx context.Context) error {
	db, err := store.Open(ctx, store.DBOptions{
		Driver:          a.cfg.Database.Driver,
		URL:             a.cfg.Database.URL,
		ConnectAttempts: a.cfg.Database.ConnectAttempts,
		ConnectDelay:    a.cfg.Database.ConnectDelay,
	}, a.logger)
	if err != nil {
		return err
	}
	a.db = db
	a.closers = append(a.closers, db.Close)

	if a.cfg.Database.AutoMigrate {
		if err := store.Migrate(ctx, db, a.cfg.Database.Driver); err != nil {
			return err
		}
		a.logger.InfoContext(ctx, "Database schema is up to date")
	}

	if a.users, err = store.NewSQLUserStore(db, a.logger); err != nil {
		return err
	}
	if a.movies, err = store.NewSQLMovieStore(db, a.logger); err != nil {
		return err
	}
	if a.entries, err = store.NewSQLDiaryStore(db, a.logger); err != nil {
		return err
	}
	return nil
}

func (a *app) openCache(ctx context.Context) error {
	switch a.cfg.Cache.Backend {
	case "redis":
		r, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:     a.cfg.Cache.RedisAddr,
			Password: a.cfg.Cache.RedisPassword,
			DB:       a.cfg.Cache.RedisDB,
		})
		if err != nil {
			return err
		}
		a.cache = r
		a.closers = append(a.closers, r.Close)
	case "disk":
		a.cache = cache.NewDisk(a.cfg.Cache.DiskDir)
	default:
		a.cache = cache.Nop{}
	}
	a.logger.InfoContext(ctx, "Catalog cache ready", slog.String("backend", a.cfg.Cache.Backend))
	return nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("failed to release resources: %w", errors.Join(errs...))
	}
	return nil
}
