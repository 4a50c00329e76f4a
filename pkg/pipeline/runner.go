package pipeline

import (
	"context"
	"encoding/json"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphscape/pkg/cache"
	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/graph"
	"github.com/matzehuels/graphscape/pkg/observability"
)

// Runner executes one-shot pipeline runs with cached positions.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; every call uses
// a fresh [Engine]. Multiple goroutines can safely share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the pipeline on doc. Positions are looked up in the cache by
// graph data and layout options; on a miss the layout is computed and
// stored. Runs with a position function are never cached.
func (r *Runner) Execute(ctx context.Context, doc graph.Document, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	eng := NewEngine(opts.Logger)
	if opts.PositionFunc != nil {
		return eng.Run(ctx, doc, opts)
	}

	key, err := r.layoutKey(doc, &opts)
	if err != nil {
		return nil, err
	}

	hooks := observability.Cache()
	if pos, ok := r.cachedPositions(ctx, key); ok {
		hooks.OnCacheHit(ctx, "layout")
		eng.static = pos
		res, err := eng.Run(ctx, doc, opts)
		if err != nil {
			return nil, err
		}
		res.CacheInfo.LayoutHit = true
		return res, nil
	}
	hooks.OnCacheMiss(ctx, "layout")

	res, err := eng.Run(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(res.Positions()); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, "layout", len(data))
		}
	}
	return res, nil
}

func (r *Runner) layoutKey(doc graph.Document, opts *Options) (string, error) {
	graphHash, err := cache.HashJSON(doc)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "hash graph")
	}
	return r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts()), nil
}

func (r *Runner) cachedPositions(ctx context.Context, key string) (map[string]graph.Position, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	var pos map[string]graph.Position
	if err := json.Unmarshal(data, &pos); err != nil {
		r.Logger.Debug("discarding unreadable cache entry", "key", key, "err", err)
		return nil, false
	}
	return pos, true
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
