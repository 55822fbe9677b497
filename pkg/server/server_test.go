package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/openswoop/coursebuilder/pkg/catalog"
	"github.com/openswoop/coursebuilder/pkg/database"
	"github.com/openswoop/coursebuilder/pkg/grades"
	"github.com/openswoop/coursebuilder/pkg/schedule"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const dataset = `L1,CS-101,Intro to Programming,Ada Lovelace,09:00-10:00,MW,Lecture,
L2,CS-101,Intro to Programming,Alan Turing,13:00-14:00,TR,Lecture,
B1,CS-101,Intro to Programming,Ada Lovelace,11:00-12:00,F,Lab,L1/L2
D1,CS-101,Intro to Programming,Ada Lovelace,TBA,TBA,Discussion,L1
L11,CS-102,Programming II,Ada Lovelace,15:00-16:00,MW,Lecture,
B11,CS-102,Programming II,Ada Lovelace,16:00-17:00,F,Lab,L11
M1,MATH-220,Linear Algebra,Emmy Noether,09:30-10:30,MW,Lecture,
`

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	db, err := database.Open(database.Sqlite, filepath.Join(t.TempDir(), "courses.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.ImportCatalog(strings.NewReader(dataset)); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	store := grades.NewDirStore(dir)
	if err := os.WriteFile(filepath.Join(dir, "CS_101_Ada_Lovelace.txt"), []byte("A\nA\nB\nF\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	return New(Options{DB: db, Grades: store})
}

func do(h http.Handler, method, target string, body string, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func postJSON(h http.Handler, target, body string) *httptest.ResponseRecorder {
	return do(h, http.MethodPost, target, body, "application/json")
}

func postForm(h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	return do(h, http.MethodPost, target, form.Encode(), "application/x-www-form-urlencoded")
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	w := do(h, http.MethodGet, "/api/v1/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestCourses(t *testing.T) {
	h := newTestServer(t)

	var res struct {
		Data   []catalog.Section `json:"data"`
		Cached bool              `json:"cached"`
	}
	w := do(h, http.MethodGet, "/api/v1/courses?query=CS", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	decode(t, w, &res)
	if len(res.Data) != 6 || res.Cached {
		t.Errorf("got %d sections, cached=%v", len(res.Data), res.Cached)
	}

	w = do(h, http.MethodGet, "/api/v1/courses/search?query=CS", "", "")
	decode(t, w, &res)
	if len(res.Data) != 6 || !res.Cached {
		t.Errorf("got %d sections, cached=%v", len(res.Data), res.Cached)
	}

	w = do(h, http.MethodGet, "/api/v1/courses", "", "")
	decode(t, w, &res)
	if len(res.Data) != 7 {
		t.Errorf("got %d sections", len(res.Data))
	}

	// search is case-sensitive
	w = do(h, http.MethodGet, "/api/v1/courses/search?query=linear", "", "")
	decode(t, w, &res)
	if len(res.Data) != 0 {
		t.Errorf("got %d sections", len(res.Data))
	}

	w = do(h, http.MethodGet, "/api/v1/courses/search", "", "")
	decode(t, w, &res)
	if w.Code != http.StatusOK || len(res.Data) != 7 {
		t.Errorf("empty search: %d, %d sections", w.Code, len(res.Data))
	}
	if w := do(h, http.MethodPost, "/api/v1/cache/invalidate", "", ""); w.Code != http.StatusOK {
		t.Errorf("invalidate status = %d", w.Code)
	}
}

func TestAddSection(t *testing.T) {
	h := newTestServer(t)

	var added struct {
		Data schedule.AddResult `json:"data"`
	}
	w := postJSON(h, "/api/v1/schedule", `{"sectionId":"L1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	decode(t, w, &added)
	if added.Data.Section.ID != "L1" || len(added.Data.Children) != 2 {
		t.Errorf("result = %+v", added.Data)
	}

	var rejected ErrorResponse
	w = postJSON(h, "/api/v1/schedule", `{"sectionId":"L1"}`)
	decode(t, w, &rejected)
	if w.Code != http.StatusUnprocessableEntity || rejected.Error != schedule.RuleDuplicate {
		t.Errorf("duplicate: %d %+v", w.Code, rejected)
	}
	if rejected.Message != "This class section is already in your schedule." {
		t.Errorf("message = %q", rejected.Message)
	}

	w = postForm(h, "/api/v1/schedule", url.Values{"courseID": {"B11"}})
	decode(t, w, &rejected)
	if w.Code != http.StatusUnprocessableEntity || rejected.Error != schedule.RuleParent {
		t.Errorf("parent: %d %+v", w.Code, rejected)
	}

	w = postForm(h, "/api/v1/schedule", url.Values{"courseID": {"M1"}})
	decode(t, w, &rejected)
	if w.Code != http.StatusUnprocessableEntity || rejected.Error != schedule.RuleTimeConflict {
		t.Errorf("conflict: %d %+v", w.Code, rejected)
	}

	if w := postJSON(h, "/api/v1/schedule", `{"sectionId":"X9"}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown section status = %d", w.Code)
	}
	if w := postJSON(h, "/api/v1/schedule", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing id status = %d", w.Code)
	}
}

func TestAddChildren(t *testing.T) {
	h := newTestServer(t)

	var rejected ErrorResponse
	w := postForm(h, "/api/v1/schedule/children", url.Values{"selectedSections": {"B1"}})
	decode(t, w, &rejected)
	if w.Code != http.StatusUnprocessableEntity || rejected.Error != schedule.RuleMissingType {
		t.Fatalf("missing type: %d %+v", w.Code, rejected)
	}
	if rejected.Lecture == nil || rejected.Lecture.ID != "L1" || len(rejected.Children) != 2 {
		t.Errorf("reprompt = %+v", rejected)
	}

	before := testutil.ToFloat64(scheduled)
	w = postJSON(h, "/api/v1/schedule/children", `{"sectionIds":["B1","D1"]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	var batch struct {
		Data schedule.BatchResult `json:"data"`
	}
	decode(t, w, &batch)
	if batch.Data.Lecture.ID != "L1" || len(batch.Data.Inserted) != 3 {
		t.Errorf("batch = %+v", batch.Data)
	}
	// the lecture added alongside its children is counted too
	if got := testutil.ToFloat64(scheduled) - before; got != 3 {
		t.Errorf("scheduled counter grew by %v, want 3", got)
	}

	var res struct {
		Data []schedule.Entry `json:"data"`
	}
	decode(t, do(h, http.MethodGet, "/api/v1/schedule", "", ""), &res)
	if len(res.Data) != 3 || res.Data[0].ID != "L1" {
		t.Errorf("schedule = %+v", res.Data)
	}

	w = do(h, http.MethodGet, "/api/v1/schedule/export", "", "")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if w.Code != http.StatusOK || len(lines) != 4 {
		t.Fatalf("export: %d %q", w.Code, w.Body)
	}
	if !strings.HasPrefix(lines[1], "1,L1,CS-101") {
		t.Errorf("export row = %q", lines[1])
	}
}

func TestRemoveAndCalendar(t *testing.T) {
	h := newTestServer(t)
	postJSON(h, "/api/v1/schedule", `{"sectionId":"L1"}`)
	postJSON(h, "/api/v1/schedule", `{"sectionId":"L11"}`)

	var cal struct {
		Data []schedule.Event `json:"data"`
	}
	decode(t, do(h, http.MethodGet, "/api/v1/calendar", "", ""), &cal)
	if len(cal.Data) != 2 || cal.Data[0].StartHour != 9 || cal.Data[0].EndHour != 10 {
		t.Errorf("calendar = %+v", cal.Data)
	}

	if w := do(h, http.MethodPost, "/api/v1/schedule/remove/1", "", ""); w.Code != http.StatusOK {
		t.Errorf("remove status = %d", w.Code)
	}
	if w := do(h, http.MethodPost, "/api/v1/schedule/remove/999", "", ""); w.Code != http.StatusOK {
		t.Errorf("remove missing status = %d", w.Code)
	}
	if w := do(h, http.MethodPost, "/api/v1/schedule/remove/abc", "", ""); w.Code != http.StatusBadRequest {
		t.Errorf("remove bad id status = %d", w.Code)
	}

	decode(t, do(h, http.MethodGet, "/api/v1/calendar", "", ""), &cal)
	if len(cal.Data) != 1 || cal.Data[0].CourseCode != "CS-102" {
		t.Errorf("calendar = %+v", cal.Data)
	}
}

func TestGrades(t *testing.T) {
	h := newTestServer(t)

	var keys struct {
		Data []string `json:"data"`
	}
	decode(t, do(h, http.MethodGet, "/api/v1/grades", "", ""), &keys)
	if len(keys.Data) != 1 || keys.Data[0] != "CS_101_Ada_Lovelace" {
		t.Errorf("keys = %v", keys.Data)
	}

	var stats struct {
		Data grades.Stats `json:"data"`
	}
	w := do(h, http.MethodGet, "/api/v1/grades/CS_101_Ada_Lovelace", "", "")
	decode(t, w, &stats)
	if stats.Data.AverageGPA != 2.75 || stats.Data.AverageGrade != "B-" || stats.Data.Total != 4 {
		t.Errorf("stats = %+v", stats.Data)
	}

	w = postForm(h, "/api/v1/grades", url.Values{"course": {"CS_101_Ada_Lovelace"}})
	if w.Code != http.StatusOK {
		t.Errorf("post status = %d", w.Code)
	}

	if w := do(h, http.MethodGet, "/api/v1/grades/MATH_220_Nobody", "", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing status = %d", w.Code)
	}
	if w := postForm(h, "/api/v1/grades", url.Values{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty post status = %d", w.Code)
	}
}

func TestMetricsAndCORS(t *testing.T) {
	h := newTestServer(t)
	postJSON(h, "/api/v1/schedule", `{"sectionId":"B11"}`)

	w := do(h, http.MethodGet, "/metrics", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `coursebuilder_schedule_rejections_total{rule="parent_required"}`) {
		t.Errorf("metrics: %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://example.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestImportFlushesCache(t *testing.T) {
	h := newTestServer(t)

	var res struct {
		Data   []catalog.Section `json:"data"`
		Cached bool              `json:"cached"`
	}
	decode(t, do(h, http.MethodGet, "/api/v1/courses", "", ""), &res)
	if len(res.Data) != 7 {
		t.Fatalf("got %d sections", len(res.Data))
	}

	var imported struct {
		Data catalog.ImportResult `json:"data"`
	}
	w := do(h, http.MethodPost, "/api/v1/catalog/import",
		"P1,PHYS-101,Mechanics,Isaac Newton,08:00-09:00,TR,Lecture,\nbad,row\n", "text/plain")
	decode(t, w, &imported)
	if w.Code != http.StatusOK || imported.Data.Imported != 1 || imported.Data.Skipped != 1 {
		t.Fatalf("import: %d %+v", w.Code, imported.Data)
	}

	decode(t, do(h, http.MethodGet, "/api/v1/courses", "", ""), &res)
	if len(res.Data) != 1 || res.Cached || res.Data[0].ID != "P1" {
		t.Errorf("after import: cached=%v %+v", res.Cached, res.Data)
	}
}
