package pipeline

import (
	"cmp"
	"context"
	stderrors "errors"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/coursemap/pkg/cache"
	"github.com/matzehuels/coursemap/pkg/catalog"
	"github.com/matzehuels/coursemap/pkg/errors"
	"github.com/matzehuels/coursemap/pkg/observability"
	"github.com/matzehuels/coursemap/pkg/storage"
)

// Runner encapsulates catalog loading, cached layouts and student sessions.
// Both CLI and API use it so that every status change passes the same gate.
//
// A Runner is safe for concurrent use. It memoizes the catalog snapshot
// until [Runner.Reload] and keeps one [status.Store] per student session.
type Runner struct {
	Source  storage.CatalogSource
	Records storage.RecordStore
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Options Options

	mu       sync.Mutex
	snapshot *Snapshot

	sessionMu sync.Mutex
	sessions  map[string]*session
	now       func() time.Time
}

// NewRunner creates a runner.
// If records is nil, an in-memory store is used.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If logger is nil, log output is discarded.
func NewRunner(source storage.CatalogSource, records storage.RecordStore, c cache.Cache, keyer cache.Keyer, logger *log.Logger, opts Options) *Runner {
	if records == nil {
		records = storage.NewMemoryRecords()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.SessionTTL == 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	return &Runner{
		Source:   source,
		Records:  records,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Options:  opts,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// =============================================================================
// Catalog
// =============================================================================

// LoadGraph returns the memoized catalog snapshot, loading it on first use.
func (r *Runner) LoadGraph(ctx context.Context) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snapshot != nil {
		return r.snapshot, nil
	}
	snap, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	r.snapshot = snap
	return snap, nil
}

// Reload discards the memoized snapshot and loads the catalog again. On
// failure the previous snapshot stays in use.
func (r *Runner) Reload(ctx context.Context) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	r.snapshot = snap
	return snap, nil
}

func (r *Runner) load(ctx context.Context) (*Snapshot, error) {
	if r.Source == nil {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "no catalog source configured")
	}
	start := time.Now()
	name := r.Source.Name()

	snap, err := r.build(ctx)
	dur := time.Since(start)
	if err != nil {
		observability.Pipeline().OnCatalogLoad(ctx, name, 0, 0, 0, dur, err)
		return nil, err
	}

	warnings := snap.Graph.Warnings()
	for _, w := range warnings {
		r.Logger.Warn("dropped prerequisite",
			"reason", w.Kind.String(),
			"course", w.Pair.CourseID,
			"prereq", w.Pair.PrereqID)
	}
	observability.Pipeline().OnCatalogLoad(ctx, name, snap.Graph.NodeCount(), snap.Graph.EdgeCount(), len(warnings), dur, nil)

	r.Logger.Info("loaded catalog",
		"source", name,
		"courses", snap.Graph.NodeCount(),
		"prerequisites", snap.Graph.EdgeCount(),
		"warnings", len(warnings),
		"duration", dur)
	return snap, nil
}

func (r *Runner) build(ctx context.Context) (*Snapshot, error) {
	raw, err := r.Source.LoadCatalog(ctx)
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load catalog from %s", r.Source.Name())
	}

	g, err := catalog.Normalize(catalog.ConvertCourses(raw.Courses), raw.Prerequisites)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "normalize catalog")
	}
	if err := g.Validate(); err != nil {
		var cyc *catalog.CycleError
		if stderrors.As(err, &cyc) {
			return nil, errors.Wrap(errors.ErrCodeCatalogCycle, err, "catalog rejected")
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "validate catalog")
	}

	hash, err := cache.HashJSON(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash catalog")
	}

	depts := slices.Clone(raw.Departments)
	slices.SortFunc(depts, func(a, b storage.Department) int { return cmp.Compare(a.ID, b.ID) })

	return &Snapshot{
		Graph:       g,
		Departments: depts,
		Hash:        hash,
		Source:      r.Source.Name(),
		LoadedAt:    time.Now(),
	}, nil
}

// Departments returns the departments of the catalog.
func (r *Runner) Departments(ctx context.Context) ([]storage.Department, error) {
	snap, err := r.LoadGraph(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Departments, nil
}

// Course looks up a course in the loaded catalog.
func (r *Runner) Course(ctx context.Context, id int) (catalog.Course, error) {
	snap, err := r.LoadGraph(ctx)
	if err != nil {
		return catalog.Course{}, err
	}
	c, ok := snap.Graph.Course(id)
	if !ok {
		return catalog.Course{}, errors.New(errors.ErrCodeCourseNotFound, "course %d is not in the catalog", id)
	}
	return c, nil
}

// Close releases the cache, the catalog source and the record store.
func (r *Runner) Close() error {
	var errs []error
	if r.Cache != nil {
		errs = append(errs, r.Cache.Close())
	}
	if r.Source != nil {
		errs = append(errs, r.Source.Close())
	}
	if r.Records != nil {
		errs = append(errs, r.Records.Close())
	}
	return stderrors.Join(errs...)
}
