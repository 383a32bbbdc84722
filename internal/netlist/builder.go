package netlist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pcb-netlist/internal/artwork"
	"pcb-netlist/internal/config"
	"pcb-netlist/internal/spatial"
	"pcb-netlist/pkg/geometry"
)

// ErrCancelled is wrapped by every error returned from a build that was
// stopped before completion. No partial partition is produced.
var ErrCancelled = errors.New("connectivity build cancelled")

// Cancel is a convenience error for progress callbacks that want to stop
// a build.
var Cancel = errors.New("cancel requested")

// ProgressFunc is called after each primitive is processed with the number
// of primitives done so far and the total. current is strictly increasing.
// Returning a non-nil error cancels the build.
type ProgressFunc func(current, total int) error

// Stats summarises the work done by a build.
type Stats struct {
	Primitives    int           `json:"primitives"`     // Number of primitives partitioned
	Candidates    int           `json:"candidates"`     // Pairs returned by the spatial index
	LayerPruned   int           `json:"layer_pruned"`   // Candidate pairs sharing no layer
	AlreadyJoined int           `json:"already_joined"` // Candidate pairs already in the same net
	Intersections int           `json:"intersections"`  // Pairs found touching
	Elapsed       time.Duration `json:"elapsed_ns"`     // Wall time of the build
}

func (s *Stats) add(o Stats) {
	s.Candidates += o.Candidates
	s.LayerPruned += o.LayerPruned
	s.AlreadyJoined += o.AlreadyJoined
	s.Intersections += o.Intersections
}

// Builder partitions artwork into nets.
type Builder struct {
	Index    spatial.Kind    // Spatial index used for candidate pruning
	CellSize float64         // Grid cell size, when Index is KindGrid
	Workers  int             // Goroutines checking candidates; <= 1 runs inline
	Engine   *artwork.Engine // nil selects the default engine
}

// NewBuilder creates a builder from connectivity configuration.
func NewBuilder(cfg config.Connectivity) *Builder {
	return &Builder{
		Index:    cfg.IndexKind(),
		CellSize: cfg.CellSize,
		Workers:  cfg.Workers,
	}
}

func (b *Builder) engine() *artwork.Engine {
	if b.Engine != nil {
		return b.Engine
	}
	return artwork.DefaultEngine()
}

// Build partitions geoms into nets: two primitives share a net when a chain
// of touching primitives joins them. Build never mutates geoms.
//
// The context is checked and progress reported between primitives. If
// either asks to stop, Build returns nil and an error wrapping ErrCancelled
// and the cause.
func (b *Builder) Build(ctx context.Context, geoms []artwork.Geom, progress ProgressFunc) (*Partition, error) {
	start := time.Now()
	n := len(geoms)

	seen := make(map[string]struct{}, n)
	for _, g := range geoms {
		id := g.GeomID()
		if id == "" {
			return nil, fmt.Errorf("primitive %v has no ID", g)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate primitive ID %q", id)
		}
		seen[id] = struct{}{}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w before start: %w", ErrCancelled, err)
	}

	boxes := make([]geometry.Rect, n)
	idx := spatial.New(b.Index, b.CellSize)
	for i, g := range geoms {
		boxes[i] = g.Bounds()
		idx.Insert(i, boxes[i])
	}

	uf := NewUnionFind(n)
	stats := Stats{Primitives: n}

	var err error
	if b.Workers > 1 && n > 1 {
		err = b.buildParallel(ctx, geoms, boxes, idx, uf, progress, &stats)
	} else {
		err = b.buildSequential(ctx, geoms, boxes, idx, uf, progress, &stats)
	}
	if err != nil {
		return nil, err
	}

	p := newPartition(geoms, uf)
	stats.Elapsed = time.Since(start)
	p.Stats = stats
	return p, nil
}

// report calls progress and checks ctx after a primitive completes.
func report(ctx context.Context, progress ProgressFunc, current, total int) error {
	if progress != nil {
		if err := progress(current, total); err != nil {
			return fmt.Errorf("%w at %d/%d: %w", ErrCancelled, current, total, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w at %d/%d: %w", ErrCancelled, current, total, err)
	}
	return nil
}

func (b *Builder) buildSequential(ctx context.Context, geoms []artwork.Geom, boxes []geometry.Rect,
	idx spatial.Index, uf *UnionFind, progress ProgressFunc, stats *Stats) error {
	engine := b.engine()
	n := len(geoms)

	for i, a := range geoms {
		for _, j := range idx.Query(boxes[i]) {
			if j <= i {
				continue
			}
			stats.Candidates++
			c := geoms[j]
			if !artwork.LayersReachable(a, c) {
				stats.LayerPruned++
				continue
			}
			if uf.Connected(i, j) {
				stats.AlreadyJoined++
				continue
			}
			if engine.Intersects(a, c) {
				stats.Intersections++
				uf.Union(i, j)
			}
		}

		if err := report(ctx, progress, i+1, n); err != nil {
			return err
		}
	}
	return nil
}

// scanResult is one primitive's worth of work from a parallel worker.
type scanResult struct {
	i     int
	hits  []int
	stats Stats
}

// scan finds every later primitive touching geoms[i]. It only reads shared
// state.
func scan(engine *artwork.Engine, geoms []artwork.Geom, boxes []geometry.Rect, idx spatial.Index, i int) scanResult {
	r := scanResult{i: i}
	a := geoms[i]
	for _, j := range idx.Query(boxes[i]) {
		if j <= i {
			continue
		}
		r.stats.Candidates++
		c := geoms[j]
		if !artwork.LayersReachable(a, c) {
			r.stats.LayerPruned++
			continue
		}
		if engine.Intersects(a, c) {
			r.hits = append(r.hits, j)
		}
	}
	return r
}

// buildParallel shards candidate checks across workers. The calling
// goroutine is the only writer of uf and the only caller of progress.
func (b *Builder) buildParallel(ctx context.Context, geoms []artwork.Geom, boxes []geometry.Rect,
	idx spatial.Index, uf *UnionFind, progress ProgressFunc, stats *Stats) error {
	engine := b.engine()
	n := len(geoms)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	results := make(chan scanResult, b.Workers)

	var wg sync.WaitGroup
	for w := 0; w < b.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results <- scan(engine, geoms, boxes, idx, i)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range geoms {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var err error
	done := 0
	for r := range results {
		if err != nil {
			continue // drain in-flight work
		}
		stats.add(r.stats)
		for _, j := range r.hits {
			if uf.Union(r.i, j) {
				stats.Intersections++
			} else {
				stats.AlreadyJoined++
			}
		}
		done++
		if err = report(ctx, progress, done, n); err != nil {
			cancel()
		}
	}
	if err == nil && done < n {
		// Dispatch stopped on a context cancelled after the last report.
		err = fmt.Errorf("%w at %d/%d: %w", ErrCancelled, done, n, context.Cause(ctx))
	}
	return err
}
