package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/trajectory.report/internal/config"
	"github.com/banshee-data/trajectory.report/internal/db"
	"github.com/banshee-data/trajectory.report/internal/testutil"
)

func newTestServer(t *testing.T) (*Server, *http.ServeMux) {
	t.Helper()

	database, err := db.NewDB(filepath.Join(t.TempDir(), "api_test.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	s := NewServer(database, "mps", config.EmptyConfig())
	return s, s.ServeMux()
}

// seedRun integrates a simple two-sample table and returns the stored run id.
func seedRun(t *testing.T, mux *http.ServeMux, name string) string {
	t.Helper()

	body := fmt.Sprintf(`{
		"name": %q,
		"units": "metric",
		"fps": 10,
		"samples": [
			{"time": 0, "speed": 10, "yaw_rate": 0},
			{"time": 1, "speed": 10, "yaw_rate": 0}
		]
	}`, name)

	rec := doRequest(mux, http.MethodPost, "/integrate", strings.NewReader(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("seed integrate returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp integrateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode integrate response: %v", err)
	}
	if resp.RunID == "" {
		t.Fatal("seed integrate did not return a run id")
	}
	return resp.RunID
}

func doRequest(mux *http.ServeMux, method, target string, body *strings.Reader) *httptest.ResponseRecorder {
	if body == nil {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeJSONError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var payload map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("error response is not JSON: %v (body %q)", err, rec.Body.String())
	}
	if payload["error"] == "" {
		t.Fatalf("error response missing 'error' field: %v", payload)
	}
	return payload["error"]
}

func TestMethodNotAllowed(t *testing.T) {
	_, mux := newTestServer(t)

	rec := doRequest(mux, http.MethodPost, "/config", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)

	rec = doRequest(mux, http.MethodGet, "/integrate", nil)
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestShowConfig(t *testing.T) {
	_, mux := newTestServer(t)

	rec := doRequest(mux, http.MethodGet, "/config", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /config = %d, want 200", rec.Code)
	}

	var cfg map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&cfg); err != nil {
		t.Fatalf("failed to decode config: %v", err)
	}
	if cfg["units"] != "mps" {
		t.Errorf("config units = %v, want mps", cfg["units"])
	}
	if cfg["default_fps"] != 24.0 {
		t.Errorf("config default_fps = %v, want 24", cfg["default_fps"])
	}
	if cfg["input_mode"] != "yaw_rate" {
		t.Errorf("config input_mode = %v, want yaw_rate", cfg["input_mode"])
	}
}

func TestLoggingMiddlewarePassesThrough(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		fmt.Fprint(w, "brewing")
	})

	rec := testutil.NewTestRecorder()
	req := testutil.NewTestRequest(http.MethodGet, "/tea")
	LoggingMiddleware(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), []byte("brewing")) {
		t.Errorf("body = %q, want brewing", rec.Body.String())
	}
}

func TestStatusCodeColor(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, colorBoldGreen + "200" + colorReset},
		{301, colorYellow + "301" + colorReset},
		{404, colorBoldRed + "404" + colorReset},
		{500, colorBoldRed + "500" + colorReset},
		{101, "101"},
	}
	for _, tt := range tests {
		if got := statusCodeColor(tt.code); got != tt.want {
			t.Errorf("statusCodeColor(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
