package renderer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TileFunc renders one tile. Tiles handed to concurrent calls never overlap.
type TileFunc func(ctx context.Context, tile *Tile) error

// WorkerPool runs a fixed number of goroutines over a queue of tiles
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a worker pool. Zero or negative means one worker per CPU.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Run hands every tile to exactly one call of work and waits for all of them.
// The first error cancels the remaining tiles and is returned.
func (wp *WorkerPool) Run(ctx context.Context, tiles []*Tile, work TileFunc) error {
	g, ctx := errgroup.WithContext(ctx)
	queue := make(chan *Tile)

	g.Go(func() error {
		defer close(queue)
		for _, tile := range tiles {
			select {
			case queue <- tile:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < wp.numWorkers; i++ {
		g.Go(func() error {
			for tile := range queue {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := work(ctx, tile); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return g.Wait()
}
