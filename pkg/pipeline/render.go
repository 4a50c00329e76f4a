package pipeline

import (
	"context"

	"github.com/matzehuels/graphscape/pkg/cache"
	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/graph"
	"github.com/matzehuels/graphscape/pkg/observability"
	"github.com/matzehuels/graphscape/pkg/render/nodelink"
)

// RenderOptions configures artifact rendering.
type RenderOptions struct {
	Format   string  `json:"format"`
	Scale    float64 `json:"scale,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
}

// Render draws res in the requested format, caching artifacts by the
// rendered nodes and edges. The boolean reports a cache hit.
func (r *Runner) Render(ctx context.Context, res *Result, opts RenderOptions) ([]byte, bool, error) {
	if opts.Format == "" {
		opts.Format = nodelink.FormatSVG
	}
	if !nodelink.ValidFormats[opts.Format] {
		return nil, false, errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q", opts.Format)
	}

	layoutHash, err := cache.HashJSON(struct {
		Nodes []graph.Node `json:"nodes"`
		Edges []graph.Edge `json:"edges"`
	}{res.Nodes, res.Edges})
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash result")
	}
	key := r.Keyer.ArtifactKey(layoutHash, cache.ArtifactKeyOpts{
		Format:   opts.Format,
		Engine:   "neato",
		Scale:    opts.Scale,
		Detailed: opts.Detailed,
	})

	hooks := observability.Cache()
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		hooks.OnCacheHit(ctx, "artifact")
		return data, true, nil
	}
	hooks.OnCacheMiss(ctx, "artifact")

	dot := nodelink.ToDOT(res.Nodes, res.Edges, nodelink.Options{Scale: opts.Scale, Detailed: opts.Detailed})
	data, err := nodelink.Render(ctx, dot, opts.Format)
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
		hooks.OnCacheSet(ctx, "artifact", len(data))
	}
	return data, false, nil
}
