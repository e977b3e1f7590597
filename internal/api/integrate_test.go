package api

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"testing"

	"github.com/banshee-data/trajectory.report/internal/db"
)

func postIntegrate(t *testing.T, mux *http.ServeMux, body string) (*integrateResponse, int) {
	t.Helper()

	rec := doRequest(mux, http.MethodPost, "/integrate", strings.NewReader(body))
	if rec.Code != http.StatusOK {
		return nil, rec.Code
	}
	var resp integrateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode integrate response: %v", err)
	}
	return &resp, rec.Code
}

func TestIntegratePersistsRun(t *testing.T) {
	_, mux := newTestServer(t)

	resp, code := postIntegrate(t, mux, `{
		"name": "crash-a",
		"units": "metric",
		"fps": 10,
		"samples": [
			{"time": 0, "speed": 10, "yaw_rate": 0},
			{"time": 1, "speed": 10, "yaw_rate": 0}
		]
	}`)
	if code != http.StatusOK {
		t.Fatalf("integrate returned %d", code)
	}

	if !strings.HasPrefix(resp.RunID, "run_") {
		t.Errorf("run id = %q, want run_ prefix", resp.RunID)
	}
	if resp.Units != "metric" {
		t.Errorf("units = %q, want metric", resp.Units)
	}
	if resp.FPS != 10 {
		t.Errorf("fps = %v, want 10", resp.FPS)
	}
	if resp.MaxFrame != 10 {
		t.Errorf("max frame = %d, want 10", resp.MaxFrame)
	}
	if len(resp.Track) != 11 {
		t.Fatalf("track has %d points, want 11", len(resp.Track))
	}
	if resp.Track[0].Frame != 0 || resp.Track[0].X != 0 || resp.Track[0].Y != 0 {
		t.Errorf("frame 0 = %+v, want origin at frame 0", resp.Track[0])
	}
	last := resp.Track[len(resp.Track)-1]
	if math.Abs(last.X-10) > 1e-9 {
		t.Errorf("last X = %v, want 10", last.X)
	}
	if math.Abs(last.Y) > 1e-9 || math.Abs(last.Heading) > 1e-9 {
		t.Errorf("straight run drifted: Y=%v heading=%v", last.Y, last.Heading)
	}

	// The run must be retrievable afterwards.
	rec := doRequest(mux, http.MethodGet, "/runs/"+resp.RunID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /runs/%s = %d, want 200", resp.RunID, rec.Code)
	}
	var run db.Run
	if err := json.NewDecoder(rec.Body).Decode(&run); err != nil {
		t.Fatalf("failed to decode run: %v", err)
	}
	if run.Name != "crash-a" || run.Source != "edr" || run.FPS != 10 {
		t.Errorf("stored run = %+v", run)
	}
	if run.SampleCount != 2 || run.FrameCount != 11 {
		t.Errorf("counts = %d samples / %d frames, want 2 / 11", run.SampleCount, run.FrameCount)
	}
}

func TestIntegrateDryRun(t *testing.T) {
	_, mux := newTestServer(t)

	resp, code := postIntegrate(t, mux, `{
		"units": "metric",
		"fps": 10,
		"dry_run": true,
		"samples": [
			{"time": 0, "speed": 10, "yaw_rate": 0},
			{"time": 1, "speed": 10, "yaw_rate": 0}
		]
	}`)
	if code != http.StatusOK {
		t.Fatalf("integrate returned %d", code)
	}
	if resp.RunID != "" {
		t.Errorf("dry run returned run id %q", resp.RunID)
	}
	if len(resp.Track) == 0 {
		t.Error("dry run returned no track")
	}

	rec := doRequest(mux, http.MethodGet, "/runs", nil)
	var runs []db.Run
	if err := json.NewDecoder(rec.Body).Decode(&runs); err != nil {
		t.Fatalf("failed to decode run list: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("dry run persisted %d runs", len(runs))
	}
}

func TestIntegrateDefaultFPSFromConfig(t *testing.T) {
	_, mux := newTestServer(t)

	// EmptyConfig defaults to 24 fps.
	resp, code := postIntegrate(t, mux, `{
		"units": "metric",
		"dry_run": true,
		"samples": [
			{"time": 0, "speed": 10, "yaw_rate": 0},
			{"time": 1, "speed": 10, "yaw_rate": 0}
		]
	}`)
	if code != http.StatusOK {
		t.Fatalf("integrate returned %d", code)
	}
	if resp.FPS != 24 {
		t.Errorf("fps = %v, want config default 24", resp.FPS)
	}
	if resp.MaxFrame != 24 {
		t.Errorf("max frame = %d, want 24", resp.MaxFrame)
	}
}

func TestIntegrateImperialConvertsSpeeds(t *testing.T) {
	_, mux := newTestServer(t)

	resp, code := postIntegrate(t, mux, `{
		"units": "imperial",
		"fps": 10,
		"dry_run": true,
		"samples": [
			{"time": 0, "speed": 10, "yaw_rate": 0},
			{"time": 1, "speed": 10, "yaw_rate": 0}
		]
	}`)
	if code != http.StatusOK {
		t.Fatalf("integrate returned %d", code)
	}
	if math.Abs(resp.Track[0].Speed-4.4704) > 1e-9 {
		t.Errorf("track speed = %v m/s, want 10 mph = 4.4704", resp.Track[0].Speed)
	}
}

func TestIntegrateSteeringMode(t *testing.T) {
	_, mux := newTestServer(t)

	// 160 deg at the wheel over a 16:1 rack is 10 deg at the road wheels;
	// at 20 m/s on a 2.5 m wheelbase the bicycle model gives a constant
	// yaw rate of (v/L)*tan(10 deg), so heading after 1 s equals that rate.
	resp, code := postIntegrate(t, mux, `{
		"units": "metric",
		"fps": 10,
		"dry_run": true,
		"input_mode": "steering_wheel_angle",
		"steering": {"wheelbase_m": 2.5, "steering_ratio": 16},
		"samples": [
			{"time": 0, "speed": 20, "yaw_rate": 160},
			{"time": 1, "speed": 20, "yaw_rate": 160}
		]
	}`)
	if code != http.StatusOK {
		t.Fatalf("integrate returned %d", code)
	}

	wantYaw := (20.0 / 2.5) * math.Tan(10*math.Pi/180)
	last := resp.Track[len(resp.Track)-1]
	if math.Abs(last.YawRate-wantYaw) > 1e-9 {
		t.Errorf("yaw rate = %v, want %v", last.YawRate, wantYaw)
	}
	if math.Abs(last.Heading-wantYaw) > 1e-9 {
		t.Errorf("heading after 1s = %v, want %v", last.Heading, wantYaw)
	}
}

func TestIntegrateInitialPoseAndPreRoll(t *testing.T) {
	_, mux := newTestServer(t)

	resp, code := postIntegrate(t, mux, `{
		"units": "metric",
		"fps": 10,
		"dry_run": true,
		"pre_roll": true,
		"initial_pose": {"x": 5, "y": -3, "heading": 1.5},
		"samples": [
			{"time": 0, "speed": 10, "yaw_rate": 0},
			{"time": 1, "speed": 10, "yaw_rate": 0}
		]
	}`)
	if code != http.StatusOK {
		t.Fatalf("integrate returned %d", code)
	}

	if resp.Track[0].Frame != -1 {
		t.Errorf("first frame = %d, want pre-roll frame -1", resp.Track[0].Frame)
	}
	for i := 0; i < 2; i++ {
		p := resp.Track[i]
		if p.X != 5 || p.Y != -3 || p.Heading != 1.5 {
			t.Errorf("track[%d] pose = %+v, want initial pose", i, p.Pose)
		}
	}
}

func TestIntegrateLenientRecordsDiagnostics(t *testing.T) {
	_, mux := newTestServer(t)

	resp, code := postIntegrate(t, mux, `{
		"units": "metric",
		"fps": 10,
		"dry_run": true,
		"samples": [
			{"time": 0, "speed": 10, "yaw_rate": 0},
			{"time": 0, "speed": 10, "yaw_rate": 0},
			{"time": 1, "speed": 10, "yaw_rate": 0}
		]
	}`)
	if code != http.StatusOK {
		t.Fatalf("integrate returned %d", code)
	}
	if len(resp.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v, want 1 skipped interval", resp.Diagnostics)
	}
	if !strings.Contains(resp.Diagnostics[0], "interval 0 skipped") {
		t.Errorf("diagnostic = %q", resp.Diagnostics[0])
	}
}

func TestIntegrateBadRequests(t *testing.T) {
	_, mux := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{
			name: "invalid json",
			body: `{not json`,
		},
		{
			name: "too few samples",
			body: `{"units": "metric", "fps": 10, "samples": [{"time": 0, "speed": 10, "yaw_rate": 0}]}`,
		},
		{
			name: "unknown unit system",
			body: `{"units": "nautical", "fps": 10, "samples": [
				{"time": 0, "speed": 10, "yaw_rate": 0},
				{"time": 1, "speed": 10, "yaw_rate": 0}]}`,
		},
		{
			name: "unknown input mode",
			body: `{"units": "metric", "fps": 10, "input_mode": "psychic", "samples": [
				{"time": 0, "speed": 10, "yaw_rate": 0},
				{"time": 1, "speed": 10, "yaw_rate": 0}]}`,
		},
		{
			name: "strict duplicate timestamp",
			body: `{"units": "metric", "fps": 10, "strict": true, "samples": [
				{"time": 0, "speed": 10, "yaw_rate": 0},
				{"time": 0, "speed": 10, "yaw_rate": 0},
				{"time": 1, "speed": 10, "yaw_rate": 0}]}`,
		},
		{
			name: "negative fps",
			body: `{"units": "metric", "fps": -5, "samples": [
				{"time": 0, "speed": 10, "yaw_rate": 0},
				{"time": 1, "speed": 10, "yaw_rate": 0}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(mux, http.MethodPost, "/integrate", strings.NewReader(tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			decodeJSONError(t, rec)
		})
	}
}

func TestIntegrateNegativeTimesShiftToZero(t *testing.T) {
	_, mux := newTestServer(t)

	resp, code := postIntegrate(t, mux, `{
		"units": "metric",
		"fps": 10,
		"dry_run": true,
		"samples": [
			{"time": -0.5, "speed": 10, "yaw_rate": 0},
			{"time": 0.5, "speed": 10, "yaw_rate": 0}
		]
	}`)
	if code != http.StatusOK {
		t.Fatalf("integrate returned %d", code)
	}
	if resp.TimeOffset != 0.5 {
		t.Errorf("time offset = %v, want 0.5", resp.TimeOffset)
	}
	if resp.Track[0].Frame != 0 {
		t.Errorf("first frame = %d, want 0", resp.Track[0].Frame)
	}
	if resp.MaxFrame != 10 {
		t.Errorf("max frame = %d, want 10", resp.MaxFrame)
	}
}
