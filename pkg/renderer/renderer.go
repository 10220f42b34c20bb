package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
)

// ErrBudgetExceeded is returned with the partial framebuffer when the time budget runs out
var ErrBudgetExceeded = errors.New("render time budget exceeded")

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// Scene is what the renderer needs from a scene: the integrator's view plus a camera
type Scene interface {
	integrator.Scene
	Camera() *geometry.Camera
}

// Config contains configuration for progressive rendering
type Config struct {
	TileSize           int           // Size of each tile (64x64 recommended)
	InitialSamples     int           // Samples for first pass (1 recommended)
	MaxSamplesPerPixel int           // Maximum total samples per pixel
	MaxPasses          int           // Maximum number of passes
	NumWorkers         int           // Number of parallel workers (0 = use CPU count)
	Seed               uint64        // Root of every per-sample random stream
	TimeBudget         time.Duration // Zero means unlimited; checked between tiles
	AdaptiveMinSamples float64       // Fraction of a pass target taken before early stopping
	AdaptiveThreshold  float64       // Relative error for early stopping; zero disables
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		TileSize:           64,
		InitialSamples:     1,
		MaxSamplesPerPixel: 64,
		MaxPasses:          7,
		NumWorkers:         0,
		Seed:               42,
	}
}

// Validate reports settings the renderer cannot use
func (c Config) Validate() error {
	switch {
	case c.TileSize <= 0:
		return fmt.Errorf("tile size %d must be positive", c.TileSize)
	case c.MaxSamplesPerPixel <= 0:
		return fmt.Errorf("samples per pixel %d must be positive", c.MaxSamplesPerPixel)
	case c.InitialSamples <= 0 || c.InitialSamples > c.MaxSamplesPerPixel:
		return fmt.Errorf("initial samples %d must be in [1, %d]", c.InitialSamples, c.MaxSamplesPerPixel)
	case c.MaxPasses <= 0:
		return fmt.Errorf("max passes %d must be positive", c.MaxPasses)
	case c.TimeBudget < 0:
		return fmt.Errorf("time budget %v must not be negative", c.TimeBudget)
	case c.AdaptiveMinSamples < 0 || c.AdaptiveMinSamples > 1:
		return fmt.Errorf("adaptive min samples %v must be in [0, 1]", c.AdaptiveMinSamples)
	}
	return nil
}

// PassResult contains the state after a single pass
type PassResult struct {
	PassNumber  int
	Framebuffer *Framebuffer // Shared; read it before requesting the next pass
	Stats       RenderStats
	IsLast      bool
}

// Renderer manages progressive rendering with multiple passes over a tile grid
type Renderer struct {
	scene         Scene
	width, height int
	config        Config
	tiles         []*Tile
	framebuffer   *Framebuffer
	tileRenderer  *TileRenderer
	workerPool    *WorkerPool
	logger        core.Logger

	start    time.Time
	deadline time.Time // Zero when there is no budget
	passes   int
}

// NewRenderer creates a renderer for the scene's camera resolution
func NewRenderer(scene Scene, integ integrator.Integrator, config Config, logger core.Logger) (*Renderer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid render config: %w", err)
	}
	camera := scene.Camera()
	if camera == nil {
		return nil, errors.New("scene has no camera")
	}
	if logger == nil {
		logger = core.NopLogger{}
	}

	width, height := camera.Size()
	tileRenderer := NewTileRenderer(scene, camera, integ, config.Seed)
	tileRenderer.SetAdaptive(config.AdaptiveMinSamples, config.AdaptiveThreshold)

	return &Renderer{
		scene:        scene,
		width:        width,
		height:       height,
		config:       config,
		tiles:        NewTileGrid(width, height, config.TileSize),
		framebuffer:  NewFramebuffer(width, height),
		tileRenderer: tileRenderer,
		workerPool:   NewWorkerPool(config.NumWorkers),
		logger:       logger,
	}, nil
}

// Framebuffer returns the accumulation buffer
func (r *Renderer) Framebuffer() *Framebuffer {
	return r.framebuffer
}

// getSamplesForPass calculates the target total samples for a given pass
func (r *Renderer) getSamplesForPass(passNumber int) int {
	// Special case: if only 1 pass, use all samples
	if r.config.MaxPasses == 1 {
		return r.config.MaxSamplesPerPixel
	}

	// For multiple passes: first pass is quick preview
	if passNumber == 1 {
		return r.config.InitialSamples
	}

	// Divide remaining samples evenly across remaining passes
	remainingSamples := r.config.MaxSamplesPerPixel - r.config.InitialSamples
	remainingPasses := r.config.MaxPasses - 1
	samplesPerPass := remainingSamples / remainingPasses

	targetSamples := r.config.InitialSamples + (passNumber-1)*samplesPerPass

	// For the final pass, use all remaining samples
	if passNumber == r.config.MaxPasses {
		targetSamples = r.config.MaxSamplesPerPixel
	}

	return targetSamples
}

// RenderPass renders a single progressive pass using parallel processing
func (r *Renderer) RenderPass(ctx context.Context, passNumber int) (RenderStats, error) {
	if r.start.IsZero() {
		r.startClock()
	}

	targetSamples := r.getSamplesForPass(passNumber)
	r.logger.Printf("Pass %d: Target %d samples per pixel (%d tiles, %d workers)...\n",
		passNumber, targetSamples, len(r.tiles), r.workerPool.GetNumWorkers())

	err := r.workerPool.Run(ctx, r.tiles, func(ctx context.Context, tile *Tile) error {
		if !r.deadline.IsZero() && time.Now().After(r.deadline) {
			return ErrBudgetExceeded
		}
		r.tileRenderer.RenderTileBounds(tile.Bounds, r.framebuffer, targetSamples)
		tile.PassesCompleted++
		return nil
	})

	stats := r.stats(targetSamples)
	if err != nil {
		return stats, err
	}

	r.passes++
	stats.Passes = r.passes
	return stats, nil
}

// Render runs every pass and returns the framebuffer. When the time budget runs out the
// partially refined framebuffer is returned together with ErrBudgetExceeded.
func (r *Renderer) Render(ctx context.Context) (*Framebuffer, RenderStats, error) {
	passes, errs := r.RenderProgressive(ctx)

	var last RenderStats
	for result := range passes {
		last = result.Stats
	}
	if err := <-errs; err != nil {
		return r.framebuffer, r.stats(last.MaxSamples), err
	}
	return r.framebuffer, last, nil
}

// RenderProgressive renders in the background and reports each finished pass.
// The pass channel closes when rendering stops; the error channel then yields at most one error.
func (r *Renderer) RenderProgressive(ctx context.Context) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult)
	errChan := make(chan error, 1)

	go func() {
		defer close(errChan)
		defer close(passChan)

		r.startClock()
		r.logger.Printf("Starting progressive rendering of %dx%d with up to %d passes...\n",
			r.width, r.height, r.config.MaxPasses)

		for pass := 1; pass <= r.config.MaxPasses; pass++ {
			if err := ctx.Err(); err != nil {
				r.logger.Printf("Rendering cancelled before pass %d\n", pass)
				errChan <- err
				return
			}

			passStart := time.Now()
			stats, err := r.RenderPass(ctx, pass)
			if errors.Is(err, ErrBudgetExceeded) {
				r.logger.Printf("Time budget of %v exhausted during pass %d (%.1f samples/pixel)\n",
					r.config.TimeBudget, pass, stats.AverageSamples)
			}
			if err != nil {
				errChan <- err
				return
			}

			r.logger.Printf("Pass %d completed in %v (actual: %.1f samples/pixel)\n",
				pass, time.Since(passStart), stats.AverageSamples)

			isLast := pass == r.config.MaxPasses || stats.MinSamples >= r.config.MaxSamplesPerPixel
			select {
			case passChan <- PassResult{PassNumber: pass, Framebuffer: r.framebuffer, Stats: stats, IsLast: isLast}:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}

			if isLast {
				break
			}
		}
	}()

	return passChan, errChan
}

func (r *Renderer) startClock() {
	r.start = time.Now()
	if r.config.TimeBudget > 0 {
		r.deadline = r.start.Add(r.config.TimeBudget)
	}
}

func (r *Renderer) stats(targetSamples int) RenderStats {
	stats := r.framebuffer.Stats(targetSamples)
	stats.Passes = r.passes
	stats.Elapsed = time.Since(r.start)
	return stats
}
