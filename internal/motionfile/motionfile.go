// Package motionfile parses HVE variable-output exports: comma-separated
// documents with four header rows (vehicle names, Object:Variable names,
// translated names, units) followed by one data row per output frame. Column
// zero carries time; everything else is a named channel series belonging to
// a vehicle. The package also re-exports parsed files as per-vehicle CSVs
// and RaceRender telemetry, and extracts per-vehicle 6-DOF pose tracks.
package motionfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
)

const kinematicObject = "KinematicOut"

// Column is one channel series with its header metadata. Object and Variable
// split the raw Object:Variable name on the last colon; Group keeps the part
// before the first colon for grouped wheel/tire channels. TransName is the
// raw translated header cell used verbatim in exports.
type Column struct {
	Vehicle       string
	Object        string
	Group         string
	Variable      string
	TransName     string
	TransObject   string
	TransVariable string
	Unit          string
	Series        []float64
}

// File is a parsed variable-output document.
type File struct {
	Name      string // source base name, used to derive export file names
	TimeStep  float64
	FPS       int
	NumFrames int
	Columns   []Column

	vehicleOrder []string
	channels     map[string]map[string]map[string][]float64
}

// splitLastColon returns the text before and after the last colon. Without a
// colon both halves are the whole string.
func splitLastColon(s string) (before, after string) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return s, s
	}
	return s[:i], s[i+1:]
}

// Parse reads a variable-output document. The name is the source base name
// (file name without extension) carried through to exports. Cells are
// space-trimmed; non-numeric data cells decode as zero. A document without a
// KinematicOut object on any vehicle is not a motion file and fails with the
// invalid-input error.
func Parse(r io.Reader, name string) (*File, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read motion file: %w", err)
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		rows = append(rows, record)
	}

	// Rows 0-3 are headers and the time step needs the first two data rows.
	if len(rows) < 6 {
		return nil, fmt.Errorf("motion file has %d rows, need 4 header rows and 2+ data rows: %w",
			len(rows), kinematics.ErrInvalidInput)
	}

	t0, err0 := strconv.ParseFloat(cell(rows[4], 0), 64)
	t1, err1 := strconv.ParseFloat(cell(rows[5], 0), 64)
	if err0 != nil || err1 != nil {
		return nil, fmt.Errorf("motion file time column is not numeric: %w", kinematics.ErrInvalidInput)
	}
	timeStep := t1 - t0
	if timeStep <= 0 {
		return nil, fmt.Errorf("motion file time step %v is not positive: %w", timeStep, kinematics.ErrInvalidInput)
	}

	f := &File{
		Name:      name,
		TimeStep:  timeStep,
		FPS:       int(1.0 / timeStep),
		NumFrames: len(rows) - 4,
		channels:  make(map[string]map[string]map[string][]float64),
	}

	// The vehicle header row drives the column count, like the data rows it
	// describes; the time column is column zero.
	for j := 1; j < len(rows[0]); j++ {
		vehicle := rows[0][j]
		rawName := cell(rows[1], j)
		transName := cell(rows[2], j)
		unit := cell(rows[3], j)

		object, variable := splitLastColon(rawName)
		group := rawName
		if i := strings.Index(rawName, ":"); i >= 0 {
			group = rawName[:i]
		}

		transObject, transVariable := "", transName
		if strings.Contains(transName, ":") {
			transObject, transVariable = splitLastColon(transName)
			transVariable = strings.TrimLeft(transVariable, " ")
		}

		series := make([]float64, f.NumFrames)
		for i := 0; i < f.NumFrames; i++ {
			v, err := strconv.ParseFloat(cell(rows[4+i], j), 64)
			if err != nil {
				v = 0.0
			}
			series[i] = v
		}

		f.Columns = append(f.Columns, Column{
			Vehicle:       vehicle,
			Object:        object,
			Group:         group,
			Variable:      variable,
			TransName:     transName,
			TransObject:   transObject,
			TransVariable: transVariable,
			Unit:          unit,
			Series:        series,
		})

		byObject, ok := f.channels[vehicle]
		if !ok {
			byObject = make(map[string]map[string][]float64)
			f.channels[vehicle] = byObject
			if vehicle != "" {
				f.vehicleOrder = append(f.vehicleOrder, vehicle)
			}
		}
		byVariable, ok := byObject[object]
		if !ok {
			byVariable = make(map[string][]float64)
			byObject[object] = byVariable
		}
		byVariable[variable] = series
	}

	valid := false
	for _, byObject := range f.channels {
		if _, ok := byObject[kinematicObject]; ok {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("not a valid HVE motion file (no %s object): %w", kinematicObject, kinematics.ErrInvalidInput)
	}
	return f, nil
}

func cell(row []string, j int) string {
	if j < len(row) {
		return row[j]
	}
	return ""
}

// Vehicles returns the non-empty vehicle names in first-appearance order.
func (f *File) Vehicles() []string {
	return f.vehicleOrder
}

// Channel returns the series for vehicle/object/variable, or nil when absent.
func (f *File) Channel(vehicle, object, variable string) []float64 {
	byObject, ok := f.channels[vehicle]
	if !ok {
		return nil
	}
	byVariable, ok := byObject[object]
	if !ok {
		return nil
	}
	return byVariable[variable]
}

// HasObject reports whether the vehicle carries the named output object.
func (f *File) HasObject(vehicle, object string) bool {
	byObject, ok := f.channels[vehicle]
	if !ok {
		return false
	}
	_, ok = byObject[object]
	return ok
}
