package posetrack

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/units"
)

// ImportOptions configure an XYZRPY CSV import.
type ImportOptions struct {
	FPS   float64
	Units units.System
	Mode  Extrapolation
}

// ImportCSV reads rows of time, x, y, z, roll, pitch, yaw into a Track. Only
// rows with exactly seven numeric fields count; everything else (headers,
// short rows, trailing-column exports) is skipped. Imperial input scales
// x/y/z from feet to meters; angles are always degrees in, radians out.
//
// Frames truncate: frame = int(time*fps). Note this differs from the EDR
// pipeline, which rounds; datasets keyed under truncation must re-import
// bit-identically.
func ImportCSV(r io.Reader, opts ImportOptions) (*Track, error) {
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("frame rate must be positive, got %v: %w", opts.FPS, kinematics.ErrInvalidInput)
	}
	scale := opts.Units.LengthFactor()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var keys []Key
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(record) != 7 {
			continue
		}
		var vals [7]float64
		ok := true
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}

		keys = append(keys, Key{
			Frame: int64(vals[0] * opts.FPS),
			X:     vals[1] * scale,
			Y:     vals[2] * scale,
			Z:     vals[3] * scale,
			Roll:  units.DegToRad(vals[4]),
			Pitch: units.DegToRad(vals[5]),
			Yaw:   units.DegToRad(vals[6]),
		})
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no usable pose rows in csv: %w", kinematics.ErrInvalidInput)
	}
	return NewTrack(keys, opts.Mode), nil
}
