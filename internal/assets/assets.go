// Package assets locates, decodes and caches M3D models.
package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	arc "github.com/hashicorp/golang-lru/arc/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/m3d/pkg/m3d"
)

// ErrNotFound is returned when no search root holds the requested file.
var ErrNotFound = errors.New("model not found")

// Loader returns the raw bytes of a model file.
type Loader interface {
	Load(path string) ([]byte, error)
}

// DirLoader loads files relative to a list of search roots.
// Roots are searched in reverse order (last added = highest priority).
type DirLoader struct {
	roots []string
	mu    sync.RWMutex
}

// NewDirLoader creates a loader over the given roots.
func NewDirLoader(roots ...string) *DirLoader {
	return &DirLoader{roots: append([]string(nil), roots...)}
}

// AddRoot adds a search root with the highest priority.
func (l *DirLoader) AddRoot(root string) {
	l.mu.Lock()
	l.roots = append(l.roots, root)
	l.mu.Unlock()
}

// Roots returns the search roots in priority order, lowest first.
func (l *DirLoader) Roots() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.roots...)
}

// Load reads path. Absolute paths are read directly.
func (l *DirLoader) Load(path string) ([]byte, error) {
	if filepath.IsAbs(path) {
		return os.ReadFile(path)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.roots) - 1; i >= 0; i-- {
		data, err := os.ReadFile(filepath.Join(l.roots[i], path))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

// Options configures a Manager.
type Options struct {
	CacheSize int // decoded models kept in memory
	Workers   int // concurrent decodes in Preload and DecodeAll
	VertexMax bool
	Logger    *zap.Logger
}

// Manager decodes models through a Loader and keeps recently used ones in
// an ARC cache. Cached models are shared and must be treated as read-only.
type Manager struct {
	loader  Loader
	decoder m3d.Decoder
	cache   *arc.ARCCache[string, *m3d.Model]
	workers int
	log     *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewManager creates a manager. Non-positive sizes select one cache slot
// and one worker.
func NewManager(loader Loader, opts Options) (*Manager, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cache, err := arc.NewARC[string, *m3d.Model](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating model cache: %w", err)
	}

	return &Manager{
		loader:  loader,
		decoder: m3d.Decoder{VertexMax: opts.VertexMax, Logger: log.Named("m3d")},
		cache:   cache,
		workers: opts.Workers,
		log:     log.Named("assets"),
	}, nil
}

// Model returns the decoded model for path, from cache when possible.
func (m *Manager) Model(path string) (*m3d.Model, error) {
	if !m3d.HasModelExt(path) {
		return nil, fmt.Errorf("%w: %s", m3d.ErrUnsupportedFile, path)
	}
	key := filepath.Clean(path)

	if model, ok := m.cache.Get(key); ok {
		m.hits.Add(1)
		return model, nil
	}
	m.misses.Add(1)

	data, err := m.loader.Load(key)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	model, err := m.decoder.Decode(data)
	if err != nil {
		m.log.Debug("decode failed", zap.String("path", key), zap.Error(err))
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	m.cache.Add(key, model)
	m.log.Debug("model cached",
		zap.String("path", key),
		zap.Int("vertices", len(model.Vertices)),
		zap.Int("faces", len(model.Faces)),
		zap.Int("warnings", len(model.Warnings)),
	)
	return model, nil
}

// Preload decodes paths concurrently and returns the first error.
// Remaining work is abandoned once a decode fails or ctx is canceled.
func (m *Manager) Preload(ctx context.Context, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := m.Model(path)
			return err
		})
	}
	return g.Wait()
}

// Result is the outcome of decoding one path.
type Result struct {
	Path  string
	Model *m3d.Model
	Err   error
}

// DecodeAll decodes every path concurrently and reports each outcome in
// input order. Decode failures do not stop other paths; the returned error
// is only set when ctx is canceled.
func (m *Manager) DecodeAll(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for i, path := range paths {
		i, path := i, path
		results[i].Path = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return err
			}
			results[i].Model, results[i].Err = m.Model(path)
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

// Stats holds cache statistics.
type Stats struct {
	Hits   int64
	Misses int64
	Cached int
}

// Stats returns cache statistics.
func (m *Manager) Stats() Stats {
	return Stats{
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
		Cached: m.cache.Len(),
	}
}

// Close drops all cached models and resets statistics.
func (m *Manager) Close() {
	m.cache.Purge()
	m.hits.Store(0)
	m.misses.Store(0)
}
