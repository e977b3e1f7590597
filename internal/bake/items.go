package bake

import (
	"context"

	"github.com/banshee-data/trajectory.report/internal/edr"
	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/motionfile"
	"github.com/banshee-data/trajectory.report/internal/posetrack"
	"github.com/banshee-data/trajectory.report/internal/units"
)

// EDRItem wraps one canonical sample table as a bake item. The integrator
// options carry fps, strictness and the optional slip estimator.
func EDRItem(name string, table *edr.SampleTable, system units.System, opts kinematics.Options) Item {
	return Item{
		Name: name,
		Bake: func(ctx context.Context) (*Output, error) {
			res, err := kinematics.Integrate(table.Samples, opts)
			if err != nil {
				return nil, err
			}
			return &Output{
				Name:        name,
				Source:      SourceEDR,
				Units:       system,
				FPS:         opts.FPS,
				TimeOffset:  table.Offset,
				Samples:     table.Samples,
				Track:       res.Track,
				MaxFrame:    res.MaxFrame,
				Diagnostics: res.Diagnostics,
			}, nil
		},
	}
}

// MotionItems wraps every vehicle of a motion file as a bake item. The item
// name is "<file>/<vehicle>".
func MotionItems(f *motionfile.File, system units.System) []Item {
	items := make([]Item, 0, len(f.Vehicles()))
	for _, vehicle := range f.Vehicles() {
		name := f.Name + "/" + vehicle
		items = append(items, Item{
			Name: name,
			Bake: func(ctx context.Context) (*Output, error) {
				k, err := f.ExtractKinematics(vehicle, system)
				if err != nil {
					return nil, err
				}
				track := k.OutputTrack()
				return &Output{
					Name:     name,
					Source:   SourceMotion,
					Units:    system,
					FPS:      float64(f.FPS),
					Track:    track,
					MaxFrame: k.Track.MaxFrame,
				}, nil
			},
		})
	}
	return items
}

// XYZRPYItem wraps an imported pose track as a bake item, densely resampled
// at the import frame rate.
func XYZRPYItem(name string, track *posetrack.Track, fps float64, system units.System) Item {
	return Item{
		Name: name,
		Bake: func(ctx context.Context) (*Output, error) {
			out := track.OutputTrack(fps)
			return &Output{
				Name:     name,
				Source:   SourceXYZRPY,
				Units:    system,
				FPS:      fps,
				Track:    out,
				MaxFrame: track.MaxFrame,
			}, nil
		},
	}
}
