package server

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/coursemap/pkg/buildinfo"
	"github.com/matzehuels/coursemap/pkg/catalog"
	"github.com/matzehuels/coursemap/pkg/errors"
	"github.com/matzehuels/coursemap/pkg/gate"
	"github.com/matzehuels/coursemap/pkg/layout"
	"github.com/matzehuels/coursemap/pkg/pipeline"
	"github.com/matzehuels/coursemap/pkg/status"
	"github.com/matzehuels/coursemap/pkg/storage"
)

func notFound(path string) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s", path)
}

// =============================================================================
// Catalog
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": buildinfo.Get(),
	})
}

func (s *Server) handleDepartments(w http.ResponseWriter, r *http.Request) {
	depts, err := s.runner.Departments(r.Context())
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	if depts == nil {
		depts = []storage.Department{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"departments": depts})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.runner.Reload(r.Context())
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"courses":  snap.Graph.NodeCount(),
		"edges":    snap.Graph.EdgeCount(),
		"warnings": len(snap.Graph.Warnings()),
		"hash":     snap.Hash,
	})
}

// courseJSON is a course as served to the planner UI.
type courseJSON struct {
	ID         int      `json:"course_id"`
	Name       string   `json:"course_name"`
	Credits    int      `json:"credits"`
	Level      int      `json:"year_level"`
	YearText   string   `json:"year_text"`
	DeptID     int      `json:"dept_id"`
	Type       string   `json:"type"`
	Categories []string `json:"categories"`
	Priority   int      `json:"priority"`
}

func toCourseJSON(c catalog.Course) courseJSON {
	return courseJSON{
		ID:         c.ID,
		Name:       c.Name,
		Credits:    c.Credits,
		Level:      int(c.Level),
		YearText:   c.Level.Text(),
		DeptID:     c.DeptID,
		Type:       c.Type.String(),
		Categories: c.Labels(),
		Priority:   int(c.Priority()),
	}
}

type curriculumResponse struct {
	DeptID        int            `json:"dept_id"`
	Department    string         `json:"dept_name,omitempty"`
	Courses       []courseJSON   `json:"courses"`
	Prerequisites []catalog.Pair `json:"prerequisites"`
	Nodes         []layout.Node  `json:"nodes"`
	Bands         [4]layout.Band `json:"bands"`
	Rows          []layout.Row   `json:"rows"`
	Width         float64        `json:"width"`
	Height        float64        `json:"height"`
}

func (s *Server) handleCurriculum(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deptID, err := errors.ParseDeptID(chi.URLParam(r, "deptID"))
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	snap, err := s.runner.LoadGraph(ctx)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	res, err := s.runner.Layout(ctx, deptID)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}

	resp := curriculumResponse{
		DeptID:        deptID,
		Courses:       []courseJSON{},
		Prerequisites: []catalog.Pair{},
		Nodes:         res.Nodes,
		Bands:         res.Bands,
		Rows:          res.Rows,
		Width:         res.Width,
		Height:        res.Height,
	}
	if d, ok := snap.Department(deptID); ok {
		resp.Department = d.Name
	}
	visible := make(map[int]bool)
	for _, c := range snap.Courses(deptID) {
		visible[c.ID] = true
		resp.Courses = append(resp.Courses, toCourseJSON(c))
	}
	for _, e := range snap.Graph.Edges() {
		if visible[e.From] && visible[e.To] {
			resp.Prerequisites = append(resp.Prerequisites, catalog.Pair{CourseID: e.To, PrereqID: e.From})
		}
	}
	if resp.Nodes == nil {
		resp.Nodes = []layout.Node{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGraph renders the department graph. With X-Student-ID the nodes are
// colored by the student's statuses, and ?highlight=<course> marks the unmet
// prerequisites of that course.
func (s *Server) handleGraph(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		deptID, err := errors.ParseDeptID(chi.URLParam(r, "deptID"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}

		req := pipeline.RenderRequest{DeptID: deptID, Format: format, Detailed: r.URL.Query().Has("detailed")}
		if student := r.Header.Get(HeaderStudentID); student != "" {
			store, err := s.runner.Session(ctx, student)
			if err != nil {
				writeError(w, r, err, nil)
				return
			}
			req.Statuses = store.Snapshot()

			if h := r.URL.Query().Get("highlight"); h != "" {
				courseID, err := errors.ParseCourseID(h)
				if err != nil {
					writeError(w, r, err, nil)
					return
				}
				d, err := s.runner.DryRun(ctx, student, courseID, status.Passed)
				if err != nil {
					writeError(w, r, err, nil)
					return
				}
				req.Highlight = d.Edges()
			}
		}

		data, err := s.runner.Render(ctx, req)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		ct := "text/vnd.graphviz; charset=utf-8"
		if format == pipeline.FormatSVG {
			ct = "image/svg+xml"
		}
		w.Header().Set("Content-Type", ct)
		_, _ = w.Write(data)
	}
}

// =============================================================================
// Records
// =============================================================================

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	store, err := s.runner.Session(r.Context(), studentFrom(r.Context()))
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, store.Snapshot().Codes())
}

type recordRequest struct {
	CourseID int           `json:"course_id"`
	Status   *status.Status `json:"status"`
}

func (s *Server) decodeRecord(w http.ResponseWriter, r *http.Request) (recordRequest, bool) {
	var req recordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if stderrors.Is(err, status.ErrInvalidStatus) {
			err = errors.Wrap(errors.ErrCodeInvalidStatus, err, "invalid status (must be one of: ing, pass, fail, none)")
		}
		writeError(w, r, err, nil)
		return req, false
	}
	if req.CourseID <= 0 {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "course_id is required"), nil)
		return req, false
	}
	// An omitted status would decode to none and clear the record.
	if req.Status == nil {
		writeError(w, r, errors.New(errors.ErrCodeInvalidStatus, "status is required (one of: ing, pass, fail, none)"), nil)
		return req, false
	}
	return req, true
}

type decisionResponse struct {
	Success  bool          `json:"success"`
	Decision gate.Decision `json:"decision"`
}

func (s *Server) handleSetRecord(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}
	d, err := s.runner.SetStatus(r.Context(), studentFrom(r.Context()), req.CourseID, *req.Status)
	if err != nil {
		var details any
		if errors.Is(err, errors.ErrCodePrerequisitesUnmet) {
			details = d
		}
		writeError(w, r, err, details)
		return
	}
	writeJSON(w, http.StatusOK, decisionResponse{Success: true, Decision: d})
}

func (s *Server) handleCheckRecord(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}
	d, err := s.runner.DryRun(r.Context(), studentFrom(r.Context()), req.CourseID, *req.Status)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, decisionResponse{Success: d.Allowed, Decision: d})
}

// =============================================================================
// Credits
// =============================================================================

func (s *Server) handleCredits(w http.ResponseWriter, r *http.Request) {
	deptID := pipeline.AllDepartments
	if v := r.URL.Query().Get("dept"); v != "" {
		id, err := errors.ParseDeptID(v)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		deptID = id
	}
	sum, err := s.runner.Credits(r.Context(), studentFrom(r.Context()), deptID)
	if err != nil {
		writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
