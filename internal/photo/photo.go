// Package photo resolves and uploads visit photos. Photos live in Cloudinary
// under a public ID; older records may point into a Google Cloud Storage
// bucket instead.
package photo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/evcraddock/field-visits/internal/visit"
)

// ErrNotConfigured is returned when no photo backend can resolve a path.
var ErrNotConfigured = errors.New("no photo backend configured")

const defaultConcurrency = 8

// CloudinaryURL returns the delivery URL for an image public ID.
func CloudinaryURL(cloud, publicID string) string {
	id := strings.TrimLeft(publicID, "/")
	return "https://res.cloudinary.com/" + cloud + "/image/upload/" + url.PathEscape(id)
}

// Signer issues time-limited download URLs for stored objects.
type Signer interface {
	SignedURL(ctx context.Context, object string) (string, error)
}

// Resolver turns stored photo paths into displayable URLs.
type Resolver struct {
	cloud       string
	signer      Signer
	concurrency int
}

// NewResolver creates a resolver. Either backend may be empty/nil.
func NewResolver(cloud string, signer Signer, concurrency int) *Resolver {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Resolver{cloud: cloud, signer: signer, concurrency: concurrency}
}

// Resolve returns a URL for path: the Cloudinary URL when a cloud name is
// configured, otherwise a signed storage URL.
func (r *Resolver) Resolve(ctx context.Context, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("photo path is empty")
	}
	if r.cloud != "" {
		return CloudinaryURL(r.cloud, path), nil
	}
	if r.signer != nil {
		u, err := r.signer.SignedURL(ctx, path)
		if err != nil {
			return "", fmt.Errorf("signing %s: %w", path, err)
		}
		return u, nil
	}
	return "", ErrNotConfigured
}

// Prefetch resolves URLs for visits that carry a photo path but no URL.
// The result maps visit.Key to URL. Lookups run concurrently; a failed lookup
// is logged and left out of the result.
func (r *Resolver) Prefetch(ctx context.Context, visits []*visit.Visit) map[string]string {
	var (
		mu  sync.Mutex
		out = make(map[string]string)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, v := range visits {
		if v == nil || v.PhotoPath == "" || v.PhotoURL != "" {
			continue
		}
		key, path := visit.Key(v), v.PhotoPath
		g.Go(func() error {
			u, err := r.Resolve(gctx, path)
			if err != nil {
				slog.Warn("resolving photo url", "visit", key, "path", path, "error", err)
				return nil
			}
			mu.Lock()
			out[key] = u
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return out
}
