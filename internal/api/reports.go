package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/banshee-data/trajectory.report/internal/db"
	"github.com/banshee-data/trajectory.report/internal/httputil"
	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/report"
)

type statsResponse struct {
	RunID string `json:"run_id"`
	*report.RunStats
}

// loadRunTrack fetches a run and its track together; report surfaces need
// both the fps metadata and the points.
func (s *Server) loadRunTrack(w http.ResponseWriter, id string) (*db.Run, kinematics.OutputTrack, bool) {
	run, err := s.db.GetRun(id)
	if err != nil {
		runError(w, err)
		return nil, nil, false
	}
	track, err := s.db.GetTrack(id)
	if err != nil {
		runError(w, err)
		return nil, nil, false
	}
	return run, track, true
}

func runLabel(run *db.Run) string {
	if run.Name != "" {
		return run.Name
	}
	return run.ID
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	displayUnits, ok := s.displayUnits(w, r)
	if !ok {
		return
	}

	run, track, ok := s.loadRunTrack(w, r.PathValue("id"))
	if !ok {
		return
	}

	stats, err := report.ComputeStats(track, float64(run.FPS), displayUnits)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to compute stats: %v", err))
		return
	}
	httputil.WriteJSONOK(w, statsResponse{RunID: run.ID, RunStats: stats})
}

func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	run, track, ok := s.loadRunTrack(w, r.PathValue("id"))
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.RenderCharts(&buf, runLabel(run), track, float64(run.FPS), s.units); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) getPlanView(w http.ResponseWriter, r *http.Request) {
	run, track, ok := s.loadRunTrack(w, r.PathValue("id"))
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WritePlanViewPNG(&buf, runLabel(run), track); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render plan view: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	config := map[string]interface{}{
		"units":        s.units,
		"source_units": string(s.cfg.GetSourceUnits()),
		"default_fps":  s.cfg.GetDefaultFPS(),
		"pre_roll":     s.cfg.GetPreRoll(),
		"strict":       s.cfg.GetStrict(),
		"input_mode":   string(s.cfg.GetInputMode()),
		"steering":     s.cfg.GetSteeringParams(),
		"slip_enabled": s.cfg.GetSlipEnabled(),
		"slip":         s.cfg.GetSlipParams(),
	}
	httputil.WriteJSONOK(w, config)
}
