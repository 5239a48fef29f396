package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/coursemap/pkg/catalog"
	"github.com/matzehuels/coursemap/pkg/pipeline"
	"github.com/matzehuels/coursemap/pkg/storage"
)

func testRunner(t *testing.T) *pipeline.Runner {
	t.Helper()
	cat := &storage.Catalog{
		Departments: []storage.Department{{ID: 1, Name: "資訊工程學系"}},
		Courses: []catalog.RawCourse{
			{ID: 101, Name: "Calculus", Credits: 3, Level: 1, Categories: []string{"校定必修"}},
			{ID: 102, Name: "Programming", Credits: 3, Level: 1, DeptID: 1, Categories: []string{"系定必修"}},
			{ID: 103, Name: "Data Structures", Credits: 3, Level: 2, DeptID: 1, Categories: []string{"系定必修"}},
			{ID: 301, Name: "Circuits", Credits: 3, Level: 3, DeptID: 2},
			{ID: 401, Name: "Film Studies", Credits: 2, Level: 9, Categories: []string{"通識"}},
		},
		Prerequisites: []catalog.Pair{{CourseID: 103, PrereqID: 102}},
	}
	r := pipeline.NewRunner(storage.StaticCatalog{Catalog: cat}, nil, nil, nil, nil, pipeline.DefaultOptions())
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	return New(testRunner(t), nil, Options{}).Handler()
}

func do(t *testing.T, h http.Handler, method, path, student, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if student != "" {
		req.Header.Set(HeaderStudentID, student)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), "GET", "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(HeaderRequestID) == "" {
		t.Error("missing request id header")
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRequestID_Propagated(t *testing.T) {
	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	newTestServer(t).ServeHTTP(rec, req)
	if got := rec.Header().Get(HeaderRequestID); got != "abc-123" {
		t.Errorf("request id = %q", got)
	}
}

func TestDepartments(t *testing.T) {
	rec := do(t, newTestServer(t), "GET", "/api/departments", "", "")
	var body struct {
		Departments []storage.Department `json:"departments"`
	}
	decode(t, rec, &body)
	if len(body.Departments) != 1 || body.Departments[0].Name != "資訊工程學系" {
		t.Errorf("departments = %+v", body.Departments)
	}
}

func TestCurriculum(t *testing.T) {
	rec := do(t, newTestServer(t), "GET", "/api/curriculum/1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		DeptName      string `json:"dept_name"`
		Courses       []courseJSON
		Prerequisites []catalog.Pair
		Nodes         []struct {
			CourseID int     `json:"course_id"`
			X        float64 `json:"x"`
			Y        float64 `json:"y"`
		}
		Width  float64
		Height float64
	}
	decode(t, rec, &body)

	if body.DeptName != "資訊工程學系" {
		t.Errorf("dept_name = %q", body.DeptName)
	}
	if len(body.Courses) != 4 {
		t.Errorf("courses = %+v, want 101, 102, 103, 401", body.Courses)
	}
	texts := map[int]string{}
	for _, c := range body.Courses {
		texts[c.ID] = c.YearText
	}
	if texts[102] != "一年級上" || texts[103] != "一年級下" || texts[401] != "未指定" {
		t.Errorf("year_text = %v", texts)
	}
	if len(body.Prerequisites) != 1 || body.Prerequisites[0] != (catalog.Pair{CourseID: 103, PrereqID: 102}) {
		t.Errorf("prerequisites = %+v", body.Prerequisites)
	}
	if len(body.Nodes) != 4 || body.Width == 0 || body.Height != 540 {
		t.Errorf("layout nodes %d width %v height %v", len(body.Nodes), body.Width, body.Height)
	}
}

func TestCurriculum_BadDepartment(t *testing.T) {
	rec := do(t, newTestServer(t), "GET", "/api/curriculum/cs", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var body errorResponse
	decode(t, rec, &body)
	if body.Success || body.Error == nil || body.Error.Code != "INVALID_DEPARTMENT" {
		t.Errorf("error body = %+v", body)
	}
}

func TestGraphDOT(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, "GET", "/api/curriculum/1/graph.dot?highlight=103", "s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/vnd.graphviz") {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "102 -> 103 [color=") {
		t.Errorf("unmet prerequisite not highlighted:\n%s", rec.Body.String())
	}
}

func TestRecords_RequireStudent(t *testing.T) {
	h := newTestServer(t)
	if rec := do(t, h, "GET", "/api/records", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing student: status = %d", rec.Code)
	}
	if rec := do(t, h, "GET", "/api/records", "a/../b", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid student: status = %d", rec.Code)
	}
}

func TestRecords_Flow(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, "POST", "/api/records", "s1", `{"course_id": 103, "status": "ing"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("gated transition: status = %d body %s", rec.Code, rec.Body.String())
	}
	var conflict struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Allowed    bool `json:"allowed"`
				Violations []struct {
					PrereqID int    `json:"prereq_id"`
					Status   string `json:"status"`
				} `json:"violations"`
			} `json:"details"`
		} `json:"error"`
	}
	decode(t, rec, &conflict)
	if conflict.Error.Code != "PREREQUISITES_UNMET" || len(conflict.Error.Details.Violations) != 1 ||
		conflict.Error.Details.Violations[0].PrereqID != 102 || conflict.Error.Details.Violations[0].Status != "none" {
		t.Errorf("conflict body = %+v", conflict)
	}

	rec = do(t, h, "POST", "/api/records/check", "s1", `{"course_id": 102, "status": "pass"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"allowed":true`) {
		t.Errorf("check: %d %s", rec.Code, rec.Body.String())
	}

	for _, body := range []string{
		`{"course_id": 102, "status": "pass"}`,
		`{"course_id": 103, "status": "ing"}`,
	} {
		rec = do(t, h, "POST", "/api/records", "s1", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("POST %s: status = %d body %s", body, rec.Code, rec.Body.String())
		}
	}

	rec = do(t, h, "GET", "/api/records", "s1", "")
	var recs map[string]string
	decode(t, rec, &recs)
	if recs["102"] != "pass" || recs["103"] != "ing" || len(recs) != 2 {
		t.Errorf("records = %v", recs)
	}

	// Another student's records are separate.
	rec = do(t, h, "GET", "/api/records", "s2", "")
	if strings.TrimSpace(rec.Body.String()) != "{}" {
		t.Errorf("s2 records = %s", rec.Body.String())
	}
}

func TestRecords_BadRequests(t *testing.T) {
	h := newTestServer(t)
	tests := []struct {
		name string
		body string
		code int
		want string
	}{
		{"bad json", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", `{"course_id": 101, "status": "pass", "x": 1}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad status", `{"course_id": 101, "status": "done"}`, http.StatusBadRequest, "INVALID_STATUS"},
		{"missing course", `{"status": "pass"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown course", `{"course_id": 999, "status": "pass"}`, http.StatusNotFound, "COURSE_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, "POST", "/api/records", "s1", tt.body)
			if rec.Code != tt.code || !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("status %d body %s, want %d %s", rec.Code, rec.Body.String(), tt.code, tt.want)
			}
		})
	}
}

func TestRecords_MissingStatusKeepsRecord(t *testing.T) {
	h := newTestServer(t)
	if rec := do(t, h, "POST", "/api/records", "s1", `{"course_id": 102, "status": "pass"}`); rec.Code != http.StatusOK {
		t.Fatalf("seed: status = %d body %s", rec.Code, rec.Body.String())
	}

	tests := []struct {
		name string
		path string
		body string
	}{
		{"set omitted", "/api/records", `{"course_id": 102}`},
		{"set null", "/api/records", `{"course_id": 102, "status": null}`},
		{"check omitted", "/api/records/check", `{"course_id": 102}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, "POST", tt.path, "s1", tt.body)
			if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "INVALID_STATUS") {
				t.Errorf("status %d body %s, want 400 INVALID_STATUS", rec.Code, rec.Body.String())
			}
		})
	}

	var recs map[string]string
	decode(t, do(t, h, "GET", "/api/records", "s1", ""), &recs)
	if recs["102"] != "pass" {
		t.Errorf("records = %v, want 102 still pass", recs)
	}
}

func TestCredits(t *testing.T) {
	h := newTestServer(t)
	for _, body := range []string{
		`{"course_id": 101, "status": "pass"}`,
		`{"course_id": 401, "status": "pass"}`,
		`{"course_id": 301, "status": "pass"}`,
	} {
		if rec := do(t, h, "POST", "/api/records", "s1", body); rec.Code != http.StatusOK {
			t.Fatalf("POST %s: %d", body, rec.Code)
		}
	}

	var sum struct {
		Compulsory struct{ Current, Total int }
		General    struct{ Current, Total int }
		Elective   struct{ Current, Total int }
		Total      struct{ Current, Total int }
	}
	decode(t, do(t, h, "GET", "/api/credits", "s1", ""), &sum)
	if sum.Compulsory.Current != 3 || sum.General.Current != 2 || sum.Elective.Current != 3 || sum.Total.Current != 8 {
		t.Errorf("credits = %+v", sum)
	}
	if sum.Total.Total != 128 {
		t.Errorf("total requirement = %d", sum.Total.Total)
	}

	decode(t, do(t, h, "GET", "/api/credits?dept=1", "s1", ""), &sum)
	if sum.Total.Current != 5 {
		t.Errorf("department 1 total = %d, want 5", sum.Total.Current)
	}
}

func TestNotFound(t *testing.T) {
	rec := do(t, newTestServer(t), "GET", "/nope", "", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "NOT_FOUND") {
		t.Errorf("status %d body %s", rec.Code, rec.Body.String())
	}
}
