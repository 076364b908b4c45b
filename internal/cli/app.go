package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/evcraddock/field-visits/internal/cache"
	"github.com/evcraddock/field-visits/internal/config"
	"github.com/evcraddock/field-visits/internal/customer"
	"github.com/evcraddock/field-visits/internal/db"
	"github.com/evcraddock/field-visits/internal/history"
	"github.com/evcraddock/field-visits/internal/photo"
	"github.com/evcraddock/field-visits/internal/plan"
	"github.com/evcraddock/field-visits/internal/visit"
	"github.com/evcraddock/field-visits/internal/web"
)

// cacheCleanupInterval is how often the in-memory cache drops expired keys.
const cacheCleanupInterval = time.Minute

// app holds the server and the resources it owns.
type app struct {
	server  *web.Server
	closers []func(context.Context) error
}

// Close releases every resource in reverse order of creation.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *app) onClose(f func(context.Context) error) {
	a.closers = append(a.closers, f)
}

// buildApp opens the stores and services selected by cfg and wires them
// into an API server. On error, anything already opened is closed.
func buildApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			if cerr := a.Close(context.Background()); cerr != nil {
				slog.Warn("closing partially built app", "error", cerr)
			}
		}
	}()

	path := cfg.Store.DBPath
	if path == "" {
		if path, err = db.DefaultPath(); err != nil {
			return nil, err
		}
	}
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	a.onClose(func(context.Context) error { return database.Close() })
	slog.Info("opened database", "path", path)

	visits, err := openVisitStore(ctx, cfg, database, a)
	if err != nil {
		return nil, err
	}

	sessions, err := openCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.onClose(func(context.Context) error { return sessions.Close() })

	photos, uploader, err := openPhotos(ctx, cfg, a)
	if err != nil {
		return nil, err
	}

	a.server, err = web.NewServer(web.Config{
		Visits:      visits,
		History:     history.NewServiceFromStore(visits, photos),
		Plans:       plan.NewService(plan.NewRepository(database), plan.NewSessionStore(sessions, cfg.Cache.SessionTTL)),
		Customers:   customer.NewRepository(database),
		Uploader:    uploader,
		DefaultUser: cfg.Server.DefaultUser,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func openVisitStore(ctx context.Context, cfg *config.Config, database *sql.DB, a *app) (visit.Store, error) {
	if strings.EqualFold(cfg.Store.Visits, "mongodb") {
		store, err := visit.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			return nil, err
		}
		a.onClose(store.Close)
		slog.Info("using mongodb visit store", "database", cfg.Store.MongoDatabase)
		return store, nil
	}
	return visit.NewRepository(database), nil
}

func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if strings.EqualFold(cfg.Cache.Type, "redis") {
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddr,
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: "fv:",
		})
		if err != nil {
			return nil, err
		}
		slog.Info("using redis session cache", "addr", cfg.Cache.RedisAddr)
		return c, nil
	}
	return cache.NewMemoryCache(cacheCleanupInterval), nil
}

// openPhotos builds the photo URL prefetcher and the uploader. Either is
// nil when its backend is not configured.
func openPhotos(ctx context.Context, cfg *config.Config, a *app) (history.PhotoPrefetcher, *photo.Uploader, error) {
	pc := cfg.Photo

	var signer photo.Signer
	if pc.GCSBucket != "" {
		s, err := photo.NewGCSSigner(ctx, pc.GCSBucket, pc.SignedURLTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("opening photo bucket: %w", err)
		}
		a.onClose(func(context.Context) error { return s.Close() })
		signer = s
	}

	var photos history.PhotoPrefetcher
	if pc.CloudinaryCloud != "" || signer != nil {
		photos = photo.NewResolver(pc.CloudinaryCloud, signer, pc.PrefetchConcurrency)
	}

	var uploader *photo.Uploader
	if pc.CloudinaryCloud != "" && pc.CloudinaryPreset != "" {
		u, err := photo.NewUploader(pc.CloudinaryCloud, pc.CloudinaryPreset, pc.UploadTimeout)
		if err != nil {
			return nil, nil, err
		}
		uploader = u
	} else {
		slog.Info("photo upload disabled: FV_CLOUDINARY_CLOUD and FV_CLOUDINARY_PRESET not set")
	}
	return photos, uploader, nil
}
