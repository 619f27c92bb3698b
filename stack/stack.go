/*
	Package stack turns a set of Raveler superpixel planes into a body-labeled volume.
	Each plane is decoded, relabeled superpixel->segment->body and placed into the
	volume independently, so planes are processed concurrently.
*/
package stack

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/janelia-flyem/sp2body/dvid"
	"github.com/janelia-flyem/sp2body/labels"
	"github.com/janelia-flyem/sp2body/raveler"
)

// Options control how a stack is built.
type Options struct {
	// NumWorkers is the number of planes processed at once.  Non-positive uses
	// all logical CPUs.
	NumWorkers int

	// PlanePattern extracts plane indices in PlaneFiles.  Nil uses the Raveler default.
	PlanePattern *regexp.Regexp

	// ComputeBounds adds the superpixel bounds of each plane to the Result.
	ComputeBounds bool
}

// Result is a built body volume and what was learned building it.
type Result struct {
	Volume  *labels.Volume
	Bodies  *labels.LabelSet
	Bounds  map[labels.PlaneIndex][]labels.Bounds // superpixel bounds, if requested
	Elapsed time.Duration
}

// PlaneFiles pairs image paths with plane indices using the options' pattern.
func (opts Options) PlaneFiles(paths []string) ([]raveler.PlaneFile, error) {
	return raveler.PlaneFiles(paths, opts.PlanePattern)
}

// CheckMappings makes sure every plane has a superpixel to segment mapping.
func CheckMappings(maps *raveler.Mappings, files []raveler.PlaneFile) error {
	for _, f := range files {
		if _, err := maps.Plane(f.Plane); err != nil {
			return fmt.Errorf("image %q: %w", f.Path, err)
		}
	}
	return nil
}

// Build decodes, relabels and assembles the given plane files.  Any failure stops
// all remaining work and returns the first error.
func Build(ctx context.Context, maps *raveler.Mappings, files []raveler.PlaneFile, dec raveler.Decoder, opts Options) (*Result, error) {
	timedLog := dvid.NewTimeLog()
	if len(files) == 0 {
		return nil, fmt.Errorf("no superpixel images given")
	}
	if err := CheckMappings(maps, files); err != nil {
		return nil, err
	}
	indices := make([]labels.PlaneIndex, len(files))
	for i, f := range files {
		indices[i] = f.Plane
	}
	width, height, err := dec.Size(files[0].Path)
	if err != nil {
		return nil, err
	}
	asm, err := labels.NewAssembler(indices, width, height)
	if err != nil {
		return nil, err
	}
	volBytes := uint64(width) * uint64(height) * uint64(len(files)) * 8
	dvid.Infof("Building %d x %d x %d body volume (%s) from %d planes\n",
		width, height, len(files), humanize.Bytes(volBytes), len(files))

	result := &Result{Bodies: labels.NewLabelSet()}
	if opts.ComputeBounds {
		result.Bounds = make(map[labels.PlaneIndex][]labels.Bounds, len(files))
	}
	var mu sync.Mutex // guards result.Bodies and result.Bounds

	numWorkers := dvid.NumCPU(opts.NumWorkers)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)
	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			planeLog := dvid.NewTimeLog()
			spToSeg, err := maps.Plane(f.Plane)
			if err != nil {
				return err
			}
			sp, err := dec.Decode(f.Path)
			if err != nil {
				return err
			}
			bodies, err := labels.RelabelToBodies(spToSeg, maps.SegmentToBody, sp)
			if err != nil {
				return fmt.Errorf("image %q (%s): %w", f.Path, f.Plane, err)
			}
			if err := asm.Put(f.Plane, bodies); err != nil {
				return fmt.Errorf("image %q: %w", f.Path, err)
			}
			planeBodies := labels.NewLabelSet()
			labels.AddImage(planeBodies, bodies)
			var bounds []labels.Bounds
			if opts.ComputeBounds {
				bounds = labels.ComputeBounds(sp)
			}
			mu.Lock()
			result.Bodies.Union(planeBodies)
			if opts.ComputeBounds {
				result.Bounds[f.Plane] = bounds
			}
			mu.Unlock()
			planeLog.Debugf("Relabeled %s from %q with %d bodies", f.Plane, f.Path, planeBodies.Len())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if result.Volume, err = asm.Volume(); err != nil {
		return nil, err
	}
	result.Elapsed = timedLog.Elapsed()
	timedLog.Infof("Built volume of %d planes with %d distinct bodies using %d workers",
		len(files), result.Bodies.Len(), numWorkers)
	return result, nil
}
