package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/banshee-data/trajectory.report/internal/db"
	"github.com/banshee-data/trajectory.report/internal/edr"
	"github.com/banshee-data/trajectory.report/internal/httputil"
	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/units"
)

// integrateRequest is the POST /integrate body. Pointer fields fall back to
// the server config when omitted, so partial requests are safe.
type integrateRequest struct {
	Name        string              `json:"name,omitempty"`
	Units       string              `json:"units,omitempty"` // metric or imperial
	FPS         float64             `json:"fps,omitempty"`
	DryRun      bool                `json:"dry_run,omitempty"`
	Strict      *bool               `json:"strict,omitempty"`
	PreRoll     *bool               `json:"pre_roll,omitempty"`
	SlipEnabled *bool               `json:"slip_enabled,omitempty"`
	InputMode   string              `json:"input_mode,omitempty"`
	Steering    *edr.SteeringParams `json:"steering,omitempty"`
	Slip        *edr.SlipParams     `json:"slip,omitempty"`
	InitialPose *kinematics.Pose    `json:"initial_pose,omitempty"`
	Samples     []kinematics.Sample `json:"samples"`
}

type integrateResponse struct {
	RunID       string                 `json:"run_id,omitempty"`
	Name        string                 `json:"name,omitempty"`
	Units       string                 `json:"units"`
	FPS         float64                `json:"fps"`
	TimeOffset  float64                `json:"time_offset"`
	MaxFrame    int64                  `json:"max_frame"`
	Diagnostics []string               `json:"diagnostics,omitempty"`
	Track       kinematics.OutputTrack `json:"track"`
}

func (s *Server) integrate(w http.ResponseWriter, r *http.Request) {
	var req integrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	system, ok := units.ParseSystem(req.Units)
	if !ok {
		httputil.BadRequest(w, fmt.Sprintf("unknown unit system %q, want metric or imperial", req.Units))
		return
	}

	mode, err := edr.ParseInputMode(req.InputMode)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	fps := req.FPS
	if fps == 0 {
		fps = s.cfg.GetDefaultFPS()
	}

	steering := s.cfg.GetSteeringParams()
	if req.Steering != nil {
		steering = *req.Steering
	}

	table, err := edr.NewSampleTable(req.Samples, edr.TableOptions{
		Units:    system,
		Input:    mode,
		Steering: steering,
	})
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	opts := kinematics.Options{
		FPS:     fps,
		Strict:  s.cfg.GetStrict(),
		PreRoll: s.cfg.GetPreRoll(),
	}
	if req.Strict != nil {
		opts.Strict = *req.Strict
	}
	if req.PreRoll != nil {
		opts.PreRoll = *req.PreRoll
	}
	if req.InitialPose != nil {
		opts.Initial = *req.InitialPose
	}

	slipEnabled := s.cfg.GetSlipEnabled()
	if req.SlipEnabled != nil {
		slipEnabled = *req.SlipEnabled
	}
	if slipEnabled {
		slip := s.cfg.GetSlipParams()
		if req.Slip != nil {
			slip = *req.Slip
		}
		opts.Slip = edr.SideslipEstimator(slip)
	}

	result, err := kinematics.Integrate(table.Samples, opts)
	if err != nil {
		if errors.Is(err, kinematics.ErrInvalidInput) {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.InternalServerError(w, err.Error())
		return
	}

	resp := integrateResponse{
		Name:        req.Name,
		Units:       string(system),
		FPS:         fps,
		TimeOffset:  table.Offset,
		MaxFrame:    result.MaxFrame,
		Diagnostics: result.Diagnostics,
		Track:       result.Track,
	}

	if !req.DryRun {
		run := &db.Run{
			Name:        req.Name,
			Source:      "edr",
			Units:       string(system),
			FPS:         int(math.Round(fps)),
			TimeOffset:  table.Offset,
			Diagnostics: result.Diagnostics,
		}
		if err := s.db.InsertRun(run, table.Samples, result.Track); err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("failed to save run: %v", err))
			return
		}
		resp.RunID = run.ID
	}

	httputil.WriteJSONOK(w, resp)
}
