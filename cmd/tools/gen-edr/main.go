// Command gen-edr generates a synthetic EDR pulse table for manual testing:
// constant speed with a square yaw-rate pulse across the middle third.
package main

import (
	"encoding/csv"
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
)

var (
	output   = flag.String("o", "sample_edr.csv", "output path")
	duration = flag.Float64("t", 5.0, "duration in seconds")
	step     = flag.Float64("step", 0.5, "sample interval in seconds")
	speed    = flag.Float64("speed", 15.0, "constant speed in m/s")
	peakYaw  = flag.Float64("yaw", 20.0, "yaw rate in deg/s during the pulse")
)

// generate builds the table rows. YawRate carries deg/s, the raw EDR CSV
// convention; conversion to rad/s happens on import.
func generate(duration, step, speed, peakYaw float64) []kinematics.Sample {
	var rows []kinematics.Sample
	for t := 0.0; t <= duration+step/2; t += step {
		row := kinematics.Sample{Time: t, Speed: speed}
		if t >= duration/3 && t <= 2*duration/3 {
			row.YawRate = peakYaw
		}
		rows = append(rows, row)
	}
	return rows
}

func main() {
	flag.Parse()

	if *duration <= 0 || *step <= 0 {
		log.Fatal("duration and step must be positive")
	}

	rows := generate(*duration, *step, *speed, *peakYaw)

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"time_s", "speed_mps", "yaw_rate_degs"})
	for _, r := range rows {
		w.Write([]string{
			strconv.FormatFloat(r.Time, 'f', -1, 64),
			strconv.FormatFloat(r.Speed, 'f', -1, 64),
			strconv.FormatFloat(r.YawRate, 'f', -1, 64),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("write output: %v", err)
	}

	log.Printf("✓ Created: %s (%d samples)", *output, len(rows))
}
