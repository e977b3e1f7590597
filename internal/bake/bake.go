// Package bake fans independent track-producing jobs out over a bounded
// worker pool: every vehicle in a motion file, or a batch of EDR tables.
// Items never depend on each other, results land in input order, and one
// failing item does not abort its siblings.
package bake

import (
	"context"
	"sync"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/units"
)

// Source kinds recorded on persisted runs.
const (
	SourceEDR    = "edr"
	SourceMotion = "motion"
	SourceXYZRPY = "xyzrpy"
)

// DefaultWorkers bounds the pool when the caller doesn't.
const DefaultWorkers = 4

// Output is one baked track plus the metadata a store or exporter needs.
// Samples carries the canonical inputs for EDR sources and is nil otherwise.
type Output struct {
	Name        string
	Source      string
	Units       units.System
	FPS         float64
	TimeOffset  float64
	Samples     []kinematics.Sample
	Track       kinematics.OutputTrack
	MaxFrame    int64
	Diagnostics []string
}

// Item is one unit of bake work.
type Item struct {
	Name string
	Bake func(ctx context.Context) (*Output, error)
}

// Result pairs an item with its outcome, in input order.
type Result struct {
	Name   string
	Output *Output
	Err    error
}

// Baker runs items under a bounded worker count.
type Baker struct {
	Workers int
}

// New returns a baker with the given bound; zero or negative means
// DefaultWorkers.
func New(workers int) *Baker {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Baker{Workers: workers}
}

// Run bakes all items and returns one result per item, index-aligned with
// the input. Cancellation is checked between items: an item that never
// started reports ctx.Err(), one already running finishes normally.
func (b *Baker) Run(ctx context.Context, items []Item) []Result {
	workers := b.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]Result, len(items))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, item := range items {
		results[i].Name = item.Name

		wg.Add(1)
		go func(i int, item Item) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i].Err = ctx.Err()
				return
			}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}
			results[i].Output, results[i].Err = item.Bake(ctx)
		}(i, item)
	}

	wg.Wait()
	return results
}

// Errs returns the non-nil item errors in result order.
func Errs(results []Result) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
