package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/coursemap/pkg/observability"
)

// logHooks reports pipeline, transition and cache events to the CLI logger
// at debug level. Rejected transitions and persist failures are warnings.
type logHooks struct {
	logger *log.Logger
}

// installHooks routes observability events to logger.
func installHooks(logger *log.Logger) {
	h := logHooks{logger: logger}
	observability.SetPipelineHooks(h)
	observability.SetTransitionHooks(h)
	observability.SetCacheHooks(h)
}

func (h logHooks) OnCatalogLoad(_ context.Context, source string, courses, edges, warnings int, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("catalog load failed", "source", source, "err", err)
		return
	}
	h.logger.Debug("catalog loaded", "source", source, "courses", courses, "edges", edges, "warnings", warnings, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnLayoutStart(_ context.Context, deptID, nodes int) {
	h.logger.Debug("layout start", "dept", deptID, "courses", nodes)
}

func (h logHooks) OnLayoutComplete(_ context.Context, deptID int, d time.Duration, err error) {
	h.logger.Debug("layout done", "dept", deptID, "took", d.Round(time.Microsecond), "err", err)
}

func (h logHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("render start", "format", format)
}

func (h logHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	h.logger.Debug("render done", "format", format, "took", d.Round(time.Millisecond), "err", err)
}

func (h logHooks) OnTransition(_ context.Context, student string, courseID int, from, to string, allowed, dryRun bool, violations int) {
	if !allowed && !dryRun {
		h.logger.Warn("transition rejected", "student", student, "course", courseID, "from", from, "to", to, "unmet", violations)
		return
	}
	h.logger.Debug("transition", "student", student, "course", courseID, "from", from, "to", to, "allowed", allowed, "dry_run", dryRun)
}

func (h logHooks) OnPersistError(_ context.Context, student string, courseID int, err error) {
	h.logger.Warn("record not saved", "student", student, "course", courseID, "err", err)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
