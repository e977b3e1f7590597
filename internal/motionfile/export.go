package motionfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/security"
)

// raceRenderExclude filters chassis-irrelevant channel groups out of
// RaceRender exports. Matched as substrings of the translated header.
var raceRenderExclude = []string{"WheelsOut", "TiresOut", "Axle"}

func excludedFromRaceRender(transName string) bool {
	for _, keyword := range raceRenderExclude {
		if strings.Contains(transName, keyword) {
			return true
		}
	}
	return false
}

// header composes the export column header from the translated name and the
// unit cell.
func (c Column) header() string {
	if c.Unit == "" {
		return c.TransName
	}
	return strings.TrimSpace(c.TransName + " " + c.Unit)
}

// writeVehicleCSV writes one vehicle's channels with a regenerated time
// column. The time value is i*timeStep rounded to 3 decimals, matching the
// telemetry tools the files feed.
func (f *File) writeVehicleCSV(w io.Writer, vehicle string, filtered bool) error {
	var cols []Column
	for _, c := range f.Columns {
		if c.Vehicle != vehicle {
			continue
		}
		if filtered && excludedFromRaceRender(c.TransName) {
			continue
		}
		cols = append(cols, c)
	}

	writer := csv.NewWriter(w)
	header := make([]string, 0, len(cols)+1)
	header = append(header, "Time (sec)")
	for _, c := range cols {
		header = append(header, c.header())
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(cols)+1)
	for i := 0; i < f.NumFrames; i++ {
		t := math.Round(float64(i)*f.TimeStep*1000) / 1000
		row[0] = strconv.FormatFloat(t, 'f', -1, 64)
		for k, c := range cols {
			row[k+1] = strconv.FormatFloat(at(c.Series, i), 'f', -1, 64)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteRaceRenderCSV writes one vehicle's RaceRender telemetry: wheel, tire
// and axle channels excluded, everything else verbatim.
func (f *File) WriteRaceRenderCSV(w io.Writer, vehicle string) error {
	return f.writeVehicleCSV(w, vehicle, true)
}

// WriteVehicleCSV writes one vehicle's channels unfiltered.
func (f *File) WriteVehicleCSV(w io.Writer, vehicle string) error {
	return f.writeVehicleCSV(w, vehicle, false)
}

func (f *File) exportAll(fsys fsutil.FileSystem, dir, suffix string, filtered bool) ([]string, error) {
	var paths []string
	for _, vehicle := range f.Vehicles() {
		name := fmt.Sprintf("%s_%s%s.csv", f.Name, security.SanitizeFilename(vehicle), suffix)
		path := filepath.Join(dir, name)

		out, err := fsys.Create(path)
		if err != nil {
			return paths, fmt.Errorf("create %s: %w", path, err)
		}
		if err := f.writeVehicleCSV(out, vehicle, filtered); err != nil {
			out.Close()
			return paths, fmt.Errorf("export %s: %w", path, err)
		}
		if err := out.Close(); err != nil {
			return paths, fmt.Errorf("close %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ExportRaceRender writes <name>_<vehicle>_RaceRender.csv per vehicle into
// dir and returns the written paths.
func (f *File) ExportRaceRender(fsys fsutil.FileSystem, dir string) ([]string, error) {
	return f.exportAll(fsys, dir, "_RaceRender", true)
}

// ExportVehicleCSVs writes the plain per-vehicle split <name>_<vehicle>.csv
// into dir and returns the written paths.
func (f *File) ExportVehicleCSVs(fsys fsutil.FileSystem, dir string) ([]string, error) {
	return f.exportAll(fsys, dir, "", false)
}
