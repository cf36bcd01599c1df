// Package pipeline composes classification, rendering and region injection
// into a single update of a host document.
package pipeline

import (
	"context"
	"fmt"

	"github.com/CTAG07/sponsorsync/pkg/region"
	"github.com/CTAG07/sponsorsync/pkg/sponsors"
	"github.com/CTAG07/sponsorsync/pkg/templating"
	"golang.org/x/sync/errgroup"
)

// Options are the per-run settings shared by every document.
type Options struct {
	Thresholds sponsors.Thresholds
	TierOrder  []sponsors.Tier
	Markers    region.Markers

	// Parallelism bounds RunAll. Values below 1 mean one document at a time.
	Parallelism int
}

// Result is the outcome of updating one document.
type Result struct {
	Document string
	Fragment string
	Changed  bool
	Groups   map[sponsors.Tier]sponsors.Group
}

// Job is one independent (document, sponsor list) pair. Name is only used to
// label errors.
type Job struct {
	Name     string
	Document string
	Records  []sponsors.Record
}

// Run classifies records, renders the fragment and injects it into doc.
// Errors are returned as produced (*sponsors.ConfigError,
// *sponsors.ValidationError, *region.MarkerError) so callers can use
// errors.As.
func Run(r *templating.Renderer, doc string, records []sponsors.Record, opts Options) (Result, error) {
	if err := opts.Thresholds.Validate(); err != nil {
		return Result{}, err
	}

	markers := opts.Markers
	if markers.Start == "" && markers.End == "" {
		markers = region.DefaultMarkers()
	}

	// Locate markers before rendering so a bad document fails early.
	parsed, err := region.Parse(doc, markers.Start, markers.End)
	if err != nil {
		return Result{}, err
	}

	groups, err := sponsors.Classify(records, opts.Thresholds)
	if err != nil {
		return Result{}, err
	}

	fragment, err := r.Render(groups, opts.TierOrder)
	if err != nil {
		return Result{}, err
	}

	updated, err := parsed.Replace(fragment)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Document: updated,
		Fragment: fragment,
		Changed:  updated != doc,
		Groups:   groups,
	}, nil
}

// RunAll runs every job concurrently, at most opts.Parallelism at a time.
// Results are in job order. The first failure cancels jobs not yet started
// and is returned labelled with the job name.
func RunAll(ctx context.Context, r *templating.Renderer, jobs []Job, opts Options) ([]Result, error) {
	results := make([]Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	limit := opts.Parallelism
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := Run(r, job.Document, job.Records, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", job.Name, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
