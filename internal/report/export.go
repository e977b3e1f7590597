package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
)

// trackCSVHeader is the column layout WriteTrackCSV emits. Speeds stay in
// m/s and angles in radians, matching the stored track.
var trackCSVHeader = []string{
	"frame", "time_s", "x_m", "y_m", "heading_rad", "speed_mps", "yaw_rate_rad",
}

// WriteTrackCSV writes a baked track as CSV, one row per frame. The time
// column is regenerated from the frame index, so fps must be positive.
func WriteTrackCSV(w io.Writer, track kinematics.OutputTrack, fps float64) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %v", fps)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(trackCSVHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(trackCSVHeader))
	for i, p := range track {
		row[0] = strconv.FormatInt(p.Frame, 10)
		row[1] = strconv.FormatFloat(float64(p.Frame)/fps, 'f', -1, 64)
		row[2] = strconv.FormatFloat(p.X, 'f', -1, 64)
		row[3] = strconv.FormatFloat(p.Y, 'f', -1, 64)
		row[4] = strconv.FormatFloat(p.Heading, 'f', -1, 64)
		row[5] = strconv.FormatFloat(p.Speed, 'f', -1, 64)
		row[6] = strconv.FormatFloat(p.YawRate, 'f', -1, 64)
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
