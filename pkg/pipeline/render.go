package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/coursemap/pkg/cache"
	"github.com/matzehuels/coursemap/pkg/catalog"
	"github.com/matzehuels/coursemap/pkg/errors"
	"github.com/matzehuels/coursemap/pkg/observability"
	"github.com/matzehuels/coursemap/pkg/render"
	"github.com/matzehuels/coursemap/pkg/status"
)

// =============================================================================
// Rendering
// =============================================================================

// RenderRequest selects what to draw.
type RenderRequest struct {
	DeptID    int
	Format    string // FormatDOT or FormatSVG; empty means SVG
	Statuses  status.Map
	Highlight []catalog.Edge
	Detailed  bool
	Title     string
}

// Render draws the layout of a department. SVG output is cached by layout,
// statuses and highlighted edges.
func (r *Runner) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if req.Format == "" {
		req.Format = FormatSVG
	}
	if err := ValidateFormat(req.Format); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "render")
	}

	snap, err := r.LoadGraph(ctx)
	if err != nil {
		return nil, err
	}
	res, err := r.Layout(ctx, req.DeptID)
	if err != nil {
		return nil, err
	}

	dot := render.ToDOT(res, snap.Graph, req.Statuses, render.Options{
		Highlight: req.Highlight,
		Detailed:  req.Detailed,
		Title:     req.Title,
	})
	if req.Format == FormatDOT {
		return []byte(dot), nil
	}

	key := r.Keyer.RenderKey(cache.Hash([]byte(dot)), cache.RenderKeyOpts{Format: req.Format})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "render")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "render")

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, req.Format)
	start := time.Now()
	svg, err := render.RenderSVG(ctx, dot)
	hooks.OnRenderComplete(ctx, req.Format, time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
	}

	if err := r.Cache.Set(ctx, key, svg, r.Options.CacheTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "render", len(svg))
	}
	r.Logger.Debug("rendered graph", "dept", req.DeptID, "format", req.Format, "bytes", len(svg))
	return svg, nil
}
