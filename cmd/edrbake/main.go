// Command edrbake integrates an EDR pulse table into a dense per-frame track
// without a running server. With -post it sends the table to a server's
// /api/integrate endpoint instead and passes the response through.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/banshee-data/trajectory.report/internal/edr"
	"github.com/banshee-data/trajectory.report/internal/httputil"
	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/report"
	"github.com/banshee-data/trajectory.report/internal/units"
)

var (
	unitSystem = flag.String("units", "metric", "Source unit system: metric or imperial")
	fps        = flag.Float64("fps", 24, "Output frame rate")
	mode       = flag.String("mode", "yaw_rate", "Third column meaning: yaw_rate or steering_wheel_angle")
	wheelbase  = flag.Float64("wheelbase", 2.8, "Wheelbase in meters (steering mode)")
	ratio      = flag.Float64("steering-ratio", 16.0, "Steering wheel to road wheel ratio (steering mode)")
	strict     = flag.Bool("strict", false, "Reject non-increasing timestamps instead of skipping them")
	preRoll    = flag.Bool("pre-roll", false, "Emit a duplicate frame -1 for video alignment")
	format     = flag.String("format", "csv", "Output format: csv or json")
	name       = flag.String("name", "", "Run name (sent with -post)")
	output     = flag.String("o", "", "Output path (default stdout)")
	postURL    = flag.String("post", "", "Base URL of a running server to POST the table to instead of baking locally")
)

type options struct {
	units   string
	fps     float64
	mode    string
	strict  bool
	preRoll bool
	format  string
	name    string
	steer   edr.SteeringParams
}

// bakeJSON mirrors the server's integrate response so the two output paths
// stay interchangeable for downstream tooling.
type bakeJSON struct {
	Name        string                 `json:"name,omitempty"`
	Units       string                 `json:"units"`
	FPS         float64                `json:"fps"`
	TimeOffset  float64                `json:"time_offset"`
	MaxFrame    int64                  `json:"max_frame"`
	Diagnostics []string               `json:"diagnostics,omitempty"`
	Track       kinematics.OutputTrack `json:"track"`
}

func bake(r io.Reader, w io.Writer, opts options) error {
	system, ok := units.ParseSystem(opts.units)
	if !ok {
		return fmt.Errorf("unknown unit system %q, want metric or imperial", opts.units)
	}
	inputMode, err := edr.ParseInputMode(opts.mode)
	if err != nil {
		return err
	}

	table, err := edr.ReadTable(r, edr.TableOptions{
		Units:    system,
		Input:    inputMode,
		Steering: opts.steer,
	})
	if err != nil {
		return err
	}

	result, err := kinematics.Integrate(table.Samples, kinematics.Options{
		FPS:     opts.fps,
		Strict:  opts.strict,
		PreRoll: opts.preRoll,
	})
	if err != nil {
		return err
	}

	switch opts.format {
	case "csv":
		return report.WriteTrackCSV(w, result.Track, opts.fps)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(bakeJSON{
			Name:        opts.name,
			Units:       string(system),
			FPS:         opts.fps,
			TimeOffset:  table.Offset,
			MaxFrame:    result.MaxFrame,
			Diagnostics: result.Diagnostics,
			Track:       result.Track,
		})
	default:
		return fmt.Errorf("unknown format %q, want csv or json", opts.format)
	}
}

// post sends the raw table to serverURL/api/integrate. Unit conversion
// happens server side, so samples go over the wire as parsed.
func post(client httputil.HTTPClient, serverURL string, r io.Reader, w io.Writer, opts options) error {
	samples, err := edr.DecodeCSV(r)
	if err != nil {
		return err
	}

	payload := struct {
		Name      string              `json:"name,omitempty"`
		Units     string              `json:"units"`
		FPS       float64             `json:"fps,omitempty"`
		Strict    *bool               `json:"strict"`
		PreRoll   *bool               `json:"pre_roll"`
		InputMode string              `json:"input_mode,omitempty"`
		Steering  *edr.SteeringParams `json:"steering,omitempty"`
		Samples   []kinematics.Sample `json:"samples"`
	}{
		Name:      opts.name,
		Units:     opts.units,
		FPS:       opts.fps,
		Strict:    &opts.strict,
		PreRoll:   &opts.preRoll,
		InputMode: opts.mode,
		Steering:  &opts.steer,
		Samples:   samples,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimSuffix(serverURL, "/") + "/api/integrate"
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	return nil
}

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: edrbake [flags] <edr.csv>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	in, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	defer in.Close()

	var out io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("create output: %v", err)
		}
		defer f.Close()
		out = f
	}

	opts := options{
		units:   *unitSystem,
		fps:     *fps,
		mode:    *mode,
		strict:  *strict,
		preRoll: *preRoll,
		format:  *format,
		name:    *name,
		steer:   edr.SteeringParams{WheelbaseM: *wheelbase, SteeringRatio: *ratio},
	}

	if *postURL != "" {
		if err := post(httputil.NewStandardClient(nil), *postURL, in, out, opts); err != nil {
			log.Fatalf("post failed: %v", err)
		}
		return
	}
	if err := bake(in, out, opts); err != nil {
		log.Fatalf("bake failed: %v", err)
	}
}
