package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/coursemap/pkg/cache"
	"github.com/matzehuels/coursemap/pkg/errors"
	"github.com/matzehuels/coursemap/pkg/layout"
	"github.com/matzehuels/coursemap/pkg/observability"
)

// =============================================================================
// Layout Generation
// =============================================================================

// LayoutWithCacheInfo computes the layout of one department and reports
// whether it came from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, deptID int) (layout.Result, bool, error) {
	if deptID < 0 {
		return layout.Result{}, false, errors.New(errors.ErrCodeInvalidDepartment, "department id must be non-negative: %d", deptID)
	}
	snap, err := r.LoadGraph(ctx)
	if err != nil {
		return layout.Result{}, false, err
	}

	opts := r.Options.Layout
	key := r.Keyer.LayoutKey(snap.Hash, cache.LayoutKeyOpts{
		DeptID:      deptID,
		ColumnWidth: opts.ColumnWidth,
		RowHeight:   opts.RowHeight,
	})

	var cached layout.Result
	if hit, err := cache.GetJSON(ctx, r.Cache, key, &cached); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "layout")
		return cached, true, nil
	} else if err != nil {
		r.Logger.Debug("layout cache read failed", "error", err)
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, deptID, len(snap.Graph.Filter(deptID)))
	start := time.Now()
	res := layout.Compute(snap.Graph, deptID, opts)
	dur := time.Since(start)
	hooks.OnLayoutComplete(ctx, deptID, dur, nil)

	r.Logger.Debug("computed layout",
		"dept", deptID,
		"nodes", len(res.Nodes),
		"width", res.Width,
		"height", res.Height,
		"duration", dur)

	if err := cache.SetJSON(ctx, r.Cache, key, res, r.Options.CacheTTL); err != nil {
		r.Logger.Debug("layout cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "layout", len(res.Nodes))
	}
	return res, false, nil
}

// Layout is a convenience wrapper that discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, deptID int) (layout.Result, error) {
	res, _, err := r.LayoutWithCacheInfo(ctx, deptID)
	return res, err
}
