package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/banshee-data/trajectory.report/internal/db"
	"github.com/banshee-data/trajectory.report/internal/httputil"
	"github.com/banshee-data/trajectory.report/internal/units"
)

// runError maps storage errors onto API status codes.
func runError(w http.ResponseWriter, err error) {
	if errors.Is(err, db.ErrRunNotFound) {
		httputil.NotFound(w, err.Error())
		return
	}
	httputil.InternalServerError(w, err.Error())
}

// displayUnits resolves the requested display units, falling back to the
// server default. Empty ok means the value was rejected (response written).
func (s *Server) displayUnits(w http.ResponseWriter, r *http.Request) (string, bool) {
	u := r.URL.Query().Get("units")
	if u == "" {
		return s.units, true
	}
	if !units.IsValid(u) {
		httputil.BadRequest(w, "invalid 'units' parameter, must be one of: "+units.GetValidUnitsString())
		return "", false
	}
	return u, true
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0 // db default
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	runs, err := s.db.ListRuns(limit)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	httputil.WriteJSONOK(w, runs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.db.GetRun(r.PathValue("id"))
	if err != nil {
		runError(w, err)
		return
	}
	httputil.WriteJSONOK(w, run)
}

func (s *Server) deleteRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.db.DeleteRun(id); err != nil {
		runError(w, err)
		return
	}
	httputil.WriteJSONOK(w, map[string]string{"status": "deleted", "run_id": id})
}

func (s *Server) getTrack(w http.ResponseWriter, r *http.Request) {
	displayUnits, ok := s.displayUnits(w, r)
	if !ok {
		return
	}

	track, err := s.db.GetTrack(r.PathValue("id"))
	if err != nil {
		runError(w, err)
		return
	}

	// The scanned slice is ours to convert; stored rows stay metric.
	for i := range track {
		track[i].Speed = units.ConvertSpeed(track[i].Speed, displayUnits)
	}
	httputil.WriteJSONOK(w, track)
}

func (s *Server) getSamples(w http.ResponseWriter, r *http.Request) {
	samples, err := s.db.GetSamples(r.PathValue("id"))
	if err != nil {
		runError(w, err)
		return
	}
	httputil.WriteJSONOK(w, samples)
}
