package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dd0wney/starry-habits/pkg/auth"
	"github.com/dd0wney/starry-habits/pkg/constellation"
	"github.com/dd0wney/starry-habits/pkg/habits"
	"github.com/dd0wney/starry-habits/pkg/metrics"
	"github.com/dd0wney/starry-habits/pkg/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var testNow = time.Date(2026, 10, 17, 21, 30, 0, 0, time.Local)

const testSecret = "test-secret-key-must-be-at-least-32-characters-long"

// setupTestServer creates a server over an in-memory store
func setupTestServer(t *testing.T, tokens auth.TokenValidator) (*Server, *metrics.Registry) {
	t.Helper()
	reg := metrics.NewRegistry()
	svc, err := constellation.NewService(constellation.Options{
		Store:   storage.NewMemoryStore(),
		Metrics: reg,
		Seed:    42,
		Clock:   func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	server, err := NewServer(Options{Service: svc, Metrics: reg, Tokens: tokens, Backend: storage.BackendMemory})
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return server, reg
}

func doRequest(t *testing.T, s *Server, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func createHabit(t *testing.T, s *Server, body string) habits.Habit {
	t.Helper()
	rr := doRequest(t, s, "POST", "/habits", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create %s: status %d: %s", body, rr.Code, rr.Body.String())
	}
	return decode[habits.Habit](t, rr)
}

func TestNewServerRequiresService(t *testing.T) {
	if _, err := NewServer(Options{}); err == nil {
		t.Error("expected error without service")
	}
}

func TestHandleHealth(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	for _, path := range []string{"/health", "/health/ready", "/health/live"} {
		rr := doRequest(t, s, "GET", path, "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s: status %d: %s", path, rr.Code, rr.Body.String())
		}
	}

	rr := doRequest(t, s, "GET", "/health", "")
	body := rr.Body.String()
	for _, check := range []string{`"storage"`, `"layout_cache"`, `"memory"`} {
		if !strings.Contains(body, check) {
			t.Errorf("health response missing %s: %s", check, body)
		}
	}
}

func TestCreateHabit(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"name":"Read","icon":"📖","importance":"high"}`, http.StatusCreated},
		{"defaults", `{"name":"Walk"}`, http.StatusCreated},
		{"blank name", `{"name":"   "}`, http.StatusBadRequest},
		{"long name", `{"name":"` + strings.Repeat("x", 61) + `"}`, http.StatusBadRequest},
		{"bad importance", `{"name":"Read","importance":"urgent"}`, http.StatusBadRequest},
		{"unknown field", `{"name":"Read","color":"red"}`, http.StatusBadRequest},
		{"malformed", `{"name":`, http.StatusBadRequest},
		{"empty body", ``, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, s, "POST", "/habits", tt.body)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				resp := decode[ErrorResponse](t, rr)
				if resp.Code != tt.wantStatus || resp.Message == "" {
					t.Errorf("error response = %+v", resp)
				}
				return
			}
			h := decode[habits.Habit](t, rr)
			if rr.Header().Get("Location") != "/habits/"+h.ID {
				t.Errorf("Location = %q", rr.Header().Get("Location"))
			}
		})
	}

	defaults := createHabit(t, s, `{"name":"Stretch"}`)
	if defaults.Icon != habits.DefaultIcon || defaults.Importance != habits.ImportanceMedium {
		t.Errorf("defaults not applied: %+v", defaults)
	}
}

func TestHabitLifecycle(t *testing.T) {
	s, _ := setupTestServer(t, nil)
	read := createHabit(t, s, `{"name":"Read"}`)
	walk := createHabit(t, s, `{"name":"Walk"}`)

	rr := doRequest(t, s, "PUT", "/habits/"+read.ID, `{"name":"Read poetry","importance":"low"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rr.Code, rr.Body.String())
	}
	if h := decode[habits.Habit](t, rr); h.Name != "Read poetry" || h.Importance != habits.ImportanceLow {
		t.Errorf("updated = %+v", h)
	}

	rr = doRequest(t, s, "POST", "/habits/"+walk.ID+"/archive", "")
	if rr.Code != http.StatusOK || !decode[habits.Habit](t, rr).Archived {
		t.Fatalf("archive: %d", rr.Code)
	}

	rr = doRequest(t, s, "GET", "/habits?archived=false", "")
	list := decode[HabitListResponse](t, rr)
	if list.Count != 1 || list.Habits[0].ID != read.ID {
		t.Errorf("active list = %+v", list)
	}
	rr = doRequest(t, s, "GET", "/habits", "")
	if decode[HabitListResponse](t, rr).Count != 2 {
		t.Error("unfiltered list should include archived habits")
	}

	rr = doRequest(t, s, "POST", "/habits/"+walk.ID+"/toggle", "")
	if rr.Code != http.StatusConflict {
		t.Errorf("toggle archived: status %d, want 409", rr.Code)
	}

	rr = doRequest(t, s, "DELETE", "/habits/"+walk.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Errorf("delete: status %d", rr.Code)
	}
	rr = doRequest(t, s, "GET", "/habits/"+walk.ID, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("get deleted: status %d", rr.Code)
	}
}

func TestHabitRouteValidation(t *testing.T) {
	s, _ := setupTestServer(t, nil)
	h := createHabit(t, s, `{"name":"Read"}`)

	tests := []struct {
		name, method, path, body string
		want                     int
	}{
		{"bad id", "GET", "/habits/bad%20id", "", http.StatusBadRequest},
		{"unknown id", "GET", "/habits/missing", "", http.StatusNotFound},
		{"empty patch", "PUT", "/habits/" + h.ID, `{}`, http.StatusBadRequest},
		{"toggle bad date", "POST", "/habits/" + h.ID + "/toggle?date=2026-13-01", "", http.StatusBadRequest},
		{"toggle unknown", "POST", "/habits/missing/toggle", "", http.StatusNotFound},
		{"bad archived filter", "GET", "/habits?archived=maybe", "", http.StatusBadRequest},
		{"method not allowed", "PATCH", "/habits/" + h.ID, `{}`, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, s, tt.method, tt.path, tt.body)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestConstellationEndpoints(t *testing.T) {
	s, _ := setupTestServer(t, nil)
	a := createHabit(t, s, `{"name":"Read"}`)
	createHabit(t, s, `{"name":"Walk <outside>"}`)
	createHabit(t, s, `{"name":"Stretch"}`)

	rr := doRequest(t, s, "POST", "/habits/"+a.ID+"/toggle?date=2026-10-17", "")
	if toggle := decode[ToggleResponse](t, rr); !toggle.Completed || toggle.Date != "2026-10-17" {
		t.Errorf("toggle = %+v", toggle)
	}

	rr = doRequest(t, s, "GET", "/constellation", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("constellation: %d %s", rr.Code, rr.Body.String())
	}
	view := decode[constellation.View](t, rr)
	if view.Date != "2026-10-17" || view.Total != 3 || view.CompletedCount != 1 {
		t.Errorf("view = %+v", view)
	}

	rr = doRequest(t, s, "GET", "/constellation.svg?date=2026-10-17", "")
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("svg: %d %s", rr.Code, rr.Header().Get("Content-Type"))
	}
	if svg := rr.Body.String(); strings.Count(svg, "<circle") != 3 || !strings.Contains(svg, "Walk &lt;outside&gt;") {
		t.Errorf("svg = %s", svg)
	}

	rr = doRequest(t, s, "GET", "/constellation?date=yesterday", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad date: status %d", rr.Code)
	}

	rr = doRequest(t, s, "GET", "/week?date=2026-10-14", "")
	week := decode[habits.Week](t, rr)
	if len(week.Days) != 7 || week.Days[0].Date != "2026-10-11" || len(week.Rows) != 3 {
		t.Errorf("week = %+v", week)
	}
}

func TestReshuffleMovesStars(t *testing.T) {
	s, reg := setupTestServer(t, nil)
	createHabit(t, s, `{"name":"Read"}`)
	createHabit(t, s, `{"name":"Walk"}`)

	before := decode[constellation.View](t, doRequest(t, s, "GET", "/constellation", ""))
	resp := decode[ReshuffleResponse](t, doRequest(t, s, "POST", "/session/reshuffle", ""))
	after := decode[constellation.View](t, doRequest(t, s, "GET", "/constellation", ""))

	if resp.Seed == before.Seed || after.Seed != resp.Seed {
		t.Errorf("seeds: before %d, reshuffle %d, after %d", before.Seed, resp.Seed, after.Seed)
	}
	if before.Stars[0].Position == after.Stars[0].Position && before.Stars[1].Position == after.Stars[1].Position {
		t.Error("stars did not move")
	}
	if got := testutil.ToFloat64(reg.SessionReshufflesTotal); got != 1 {
		t.Errorf("reshuffles = %v", got)
	}
}

func TestSetNote(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	rr := doRequest(t, s, "PUT", "/notes/2026-10-17", `{"note":"  Orion was bright  "}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("note: %d %s", rr.Code, rr.Body.String())
	}
	view := decode[constellation.View](t, doRequest(t, s, "GET", "/constellation?date=2026-10-17", ""))
	if view.Note != "Orion was bright" {
		t.Errorf("note = %q", view.Note)
	}

	if rr := doRequest(t, s, "PUT", "/notes/17-10-2026", `{"note":"x"}`); rr.Code != http.StatusBadRequest {
		t.Errorf("bad date: status %d", rr.Code)
	}
	long := `{"note":"` + strings.Repeat("n", 2001) + `"}`
	if rr := doRequest(t, s, "PUT", "/notes/2026-10-17", long); rr.Code != http.StatusBadRequest {
		t.Errorf("long note: status %d", rr.Code)
	}
}

func TestExportImport(t *testing.T) {
	s, _ := setupTestServer(t, nil)
	h := createHabit(t, s, `{"name":"Read"}`)
	doRequest(t, s, "POST", "/habits/"+h.ID+"/toggle", "")

	rr := doRequest(t, s, "GET", "/export?format=yaml", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "name: Read") {
		t.Fatalf("yaml export: %d %s", rr.Code, rr.Body.String())
	}
	backup := rr.Body.String()

	doRequest(t, s, "DELETE", "/habits/"+h.ID, "")

	req := httptest.NewRequest("POST", "/import", strings.NewReader(backup))
	req.Header.Set("Content-Type", "application/yaml")
	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("import: %d %s", rr.Code, rr.Body.String())
	}
	if resp := decode[ImportResponse](t, rr); resp.Habits != 1 || resp.Logs != 1 {
		t.Errorf("import = %+v", resp)
	}

	view := decode[constellation.View](t, doRequest(t, s, "GET", "/constellation", ""))
	if view.Total != 1 || !view.AllComplete {
		t.Errorf("restored view = %+v", view)
	}

	rr = doRequest(t, s, "GET", "/export", "")
	data := decode[habits.Data](t, rr)
	if len(data.Habits) != 1 || data.Habits[0].ID != h.ID {
		t.Errorf("json export = %+v", data)
	}

	dup := `{"habits":[{"id":"a","name":"A"},{"id":"a","name":"B"}],"logs":[]}`
	if rr := doRequest(t, s, "POST", "/import", dup); rr.Code != http.StatusBadRequest {
		t.Errorf("duplicate import: status %d", rr.Code)
	}
	if rr := doRequest(t, s, "GET", "/export?format=xml", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("xml export: status %d", rr.Code)
	}
}

func TestAuthRequiredForWrites(t *testing.T) {
	tokens, err := auth.NewTokenManager(testSecret, "starry-habits", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	s, _ := setupTestServer(t, tokens)
	if !s.AuthEnabled() {
		t.Fatal("auth should be enabled")
	}

	write, _ := tokens.GenerateToken("cli", auth.ScopeWrite)
	read, _ := tokens.GenerateToken("dashboard", auth.ScopeRead)

	tests := []struct {
		name   string
		header []string
		want   int
	}{
		{"no token", nil, http.StatusUnauthorized},
		{"wrong scheme", []string{"Authorization", "Basic abc"}, http.StatusUnauthorized},
		{"garbage token", []string{"Authorization", "Bearer nope"}, http.StatusUnauthorized},
		{"read scope", []string{"Authorization", "Bearer " + read}, http.StatusForbidden},
		{"write scope", []string{"Authorization", "Bearer " + write}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, s, "POST", "/habits", `{"name":"Read"}`, tt.header...)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}

	// Reads stay open.
	if rr := doRequest(t, s, "GET", "/constellation", ""); rr.Code != http.StatusOK {
		t.Errorf("read without token: status %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, reg := setupTestServer(t, nil)
	createHabit(t, s, `{"name":"Read"}`)
	doRequest(t, s, "GET", "/habits/missing", "")

	if got := testutil.ToFloat64(reg.HTTPRequestsTotal.WithLabelValues("POST", "/habits", "201")); got != 1 {
		t.Errorf("POST /habits 201 = %v", got)
	}
	if got := testutil.ToFloat64(reg.HTTPRequestsTotal.WithLabelValues("GET", "/habits/{id}", "404")); got != 1 {
		t.Errorf("GET /habits/{id} 404 = %v", got)
	}

	rr := doRequest(t, s, "GET", "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rr.Code)
	}
	for _, name := range []string{"starry_http_requests_total", "starry_habits_active"} {
		if !bytes.Contains(rr.Body.Bytes(), []byte(name)) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

func TestResponseHeaders(t *testing.T) {
	s, _ := setupTestServer(t, nil)
	rr := doRequest(t, s, "GET", "/habits", "")
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing request id")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
}

func TestAuditTrail(t *testing.T) {
	tokens, err := auth.NewTokenManager(testSecret, "starry-habits", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	s, _ := setupTestServer(t, tokens)
	write, _ := tokens.GenerateToken("cli", auth.ScopeWrite)
	read, _ := tokens.GenerateToken("dashboard", auth.ScopeRead)
	bearer := func(tok string) []string { return []string{"Authorization", "Bearer " + tok} }

	rr := doRequest(t, s, "POST", "/habits", `{"name":"Read"}`, bearer(write)...)
	h := decode[habits.Habit](t, rr)
	doRequest(t, s, "POST", "/habits/"+h.ID+"/archive", "", bearer(write)...)
	doRequest(t, s, "POST", "/habits/"+h.ID+"/toggle", "", bearer(write)...)
	// Rejected before reaching the handler, so not audited.
	doRequest(t, s, "POST", "/habits", `{"name":"Walk"}`, bearer(read)...)

	if rr := doRequest(t, s, "GET", "/audit", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("audit without token: status %d", rr.Code)
	}

	rr = doRequest(t, s, "GET", "/audit", "", bearer(read)...)
	if rr.Code != http.StatusOK {
		t.Fatalf("audit: %d %s", rr.Code, rr.Body.String())
	}
	resp := decode[AuditResponse](t, rr)
	if resp.Count != 3 || resp.Total != 3 {
		t.Fatalf("audit = %+v", resp)
	}
	latest := resp.Events[0]
	if latest.Action != "toggle" || latest.Status != "failure" || latest.StatusCode != http.StatusConflict {
		t.Errorf("latest event = %+v", latest)
	}
	if latest.Subject != "cli" || latest.ResourceID != h.ID || latest.RequestID == "" {
		t.Errorf("latest event = %+v", latest)
	}

	rr = doRequest(t, s, "GET", "/audit?action=create&limit=5", "", bearer(read)...)
	if got := decode[AuditResponse](t, rr); got.Count != 1 || got.Events[0].StatusCode != http.StatusCreated {
		t.Errorf("filtered = %+v", got)
	}
	if rr := doRequest(t, s, "GET", "/audit?limit=0", "", bearer(read)...); rr.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status %d", rr.Code)
	}
	if rr := doRequest(t, s, "GET", "/audit?since=yesterday", "", bearer(read)...); rr.Code != http.StatusBadRequest {
		t.Errorf("bad since: status %d", rr.Code)
	}
}
