package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/coursemap/pkg/credits"
	"github.com/matzehuels/coursemap/pkg/errors"
	"github.com/matzehuels/coursemap/pkg/gate"
	"github.com/matzehuels/coursemap/pkg/observability"
	"github.com/matzehuels/coursemap/pkg/status"
)

// =============================================================================
// Sessions
// =============================================================================

// session is the in-memory state of one student. mu is held for the whole
// of a transition, from the gate check to the store update. lastUsed is
// guarded by Runner.sessionMu.
type session struct {
	mu       sync.Mutex
	store    *status.Store
	lastUsed time.Time
}

// Session returns the status store of a student, loading the persisted
// records on first use. Later calls return the same store until the session
// is ended or has been idle longer than [Options.SessionTTL].
func (r *Runner) Session(ctx context.Context, studentID string) (*status.Store, error) {
	sess, err := r.session(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return sess.store, nil
}

func (r *Runner) session(ctx context.Context, studentID string) (*session, error) {
	if err := errors.ValidateStudentID(studentID); err != nil {
		return nil, err
	}

	r.sessionMu.Lock()
	defer r.sessionMu.Unlock()
	now := r.now()
	r.evictIdle(now)
	if sess, ok := r.sessions[studentID]; ok {
		sess.lastUsed = now
		return sess, nil
	}

	recs, err := r.Records.Records(ctx, studentID)
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load records for %s", studentID)
	}
	sess := &session{store: status.NewStore(recs), lastUsed: now}
	r.sessions[studentID] = sess
	r.Logger.Debug("opened session", "student", studentID, "records", sess.store.Len())
	return sess, nil
}

// evictIdle drops sessions unused for longer than the session TTL. A session
// with a transition in flight is kept. Callers hold sessionMu.
func (r *Runner) evictIdle(now time.Time) {
	ttl := r.Options.SessionTTL
	if ttl <= 0 {
		return
	}
	for id, sess := range r.sessions {
		if now.Sub(sess.lastUsed) < ttl || !sess.mu.TryLock() {
			continue
		}
		delete(r.sessions, id)
		sess.mu.Unlock()
		r.Logger.Debug("evicted idle session", "student", id)
	}
}

// EndSession forgets the in-memory store of a student. The next
// [Runner.Session] call reloads the persisted records.
func (r *Runner) EndSession(studentID string) {
	r.sessionMu.Lock()
	defer r.sessionMu.Unlock()
	delete(r.sessions, studentID)
}

// SessionCount reports how many student sessions are held in memory.
func (r *Runner) SessionCount() int {
	r.sessionMu.Lock()
	defer r.sessionMu.Unlock()
	return len(r.sessions)
}

// =============================================================================
// Transitions
// =============================================================================

// SetStatus moves a course of a student to target.
//
// The transition is evaluated by the prerequisite gate first. A rejected
// transition returns its decision together with an
// [errors.ErrCodePrerequisitesUnmet] error and changes nothing. An accepted
// one is persisted through the record store and then applied to the session.
// When persisting fails the session is left unchanged. Transitions of the
// same student are serialized.
func (r *Runner) SetStatus(ctx context.Context, studentID string, courseID int, target status.Status) (gate.Decision, error) {
	snap, err := r.checkTarget(ctx, courseID, target)
	if err != nil {
		return gate.Decision{}, err
	}
	sess, err := r.session(ctx, studentID)
	if err != nil {
		return gate.Decision{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	d := gate.Evaluate(courseID, target, snap.Graph, sess.store)
	observability.Transition().OnTransition(ctx, studentID, courseID, d.From.Code(), d.To.Code(), d.Allowed, false, len(d.Violations))

	if !d.Allowed {
		r.Logger.Info("transition rejected",
			"student", studentID,
			"course", courseID,
			"to", target,
			"unmet", d.PrereqIDs())
		return d, errors.New(errors.ErrCodePrerequisitesUnmet,
			"course %d cannot be marked %s: %d prerequisite(s) not passed", courseID, target, len(d.Violations))
	}

	if d.From == d.To {
		return d, nil
	}
	if err := r.Records.PutRecord(ctx, studentID, courseID, target); err != nil {
		observability.Transition().OnPersistError(ctx, studentID, courseID, err)
		r.Logger.Error("persist record failed", "student", studentID, "course", courseID, "error", err)
		if errors.GetCode(err) != "" {
			return d, err
		}
		return d, errors.Wrap(errors.ErrCodeStorage, err, "save record for %s", studentID)
	}
	sess.store.Set(courseID, target)

	r.Logger.Debug("transition applied", "student", studentID, "course", courseID, "from", d.From, "to", d.To)
	return d, nil
}

// DryRun evaluates a transition without applying it.
func (r *Runner) DryRun(ctx context.Context, studentID string, courseID int, target status.Status) (gate.Decision, error) {
	snap, err := r.checkTarget(ctx, courseID, target)
	if err != nil {
		return gate.Decision{}, err
	}
	sess, err := r.session(ctx, studentID)
	if err != nil {
		return gate.Decision{}, err
	}
	d := gate.Evaluate(courseID, target, snap.Graph, sess.store)
	observability.Transition().OnTransition(ctx, studentID, courseID, d.From.Code(), d.To.Code(), d.Allowed, true, len(d.Violations))
	return d, nil
}

// checkTarget rejects invalid statuses and courses outside the catalog.
func (r *Runner) checkTarget(ctx context.Context, courseID int, target status.Status) (*Snapshot, error) {
	if !target.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidStatus, "invalid status: %d", int(target))
	}
	snap, err := r.LoadGraph(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.Graph.Course(courseID); !ok {
		return nil, errors.New(errors.ErrCodeCourseNotFound, "course %d is not in the catalog", courseID)
	}
	return snap, nil
}

// =============================================================================
// Credits
// =============================================================================

// Credits sums the passed credits of a student against the configured
// requirements. Only courses visible in deptID count; [AllDepartments]
// counts the whole catalog.
func (r *Runner) Credits(ctx context.Context, studentID string, deptID int) (credits.Summary, error) {
	snap, err := r.LoadGraph(ctx)
	if err != nil {
		return credits.Summary{}, err
	}
	store, err := r.Session(ctx, studentID)
	if err != nil {
		return credits.Summary{}, err
	}
	courses := snap.Graph.Courses()
	if deptID >= 0 {
		courses = snap.Courses(deptID)
	}
	return credits.Aggregate(courses, store, r.Options.Credits), nil
}
