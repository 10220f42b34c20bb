package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/df07/go-pathtracer/pkg/texture"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(renderer.NewDefaultLogger()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// renderFlags holds the raw flag values; only flags the user set override the config
type renderFlags struct {
	scene            string
	meshes           []string
	texture          string
	normalMap        string
	width            int
	height           int
	samples          int
	maxDepth         int
	workers          int
	tileSize         int
	seed             uint64
	heuristic        string
	lightProbability float64
	timeBudget       time.Duration
	outputDir        string
	upload           bool
	envFile          string
}

func newRootCmd(logger core.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:          "pathtracer",
		Short:        "Offline Monte Carlo path tracer",
		SilenceUsage: true,
	}
	root.AddCommand(newRenderCmd(logger), newScenesCmd())
	return root
}

func newScenesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List the built-in scenes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range scene.Names() {
				info, _ := scene.Lookup(name)
				fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %s\n", name, info.Description)
			}
		},
	}
}

func newRenderCmd(logger core.Logger) *cobra.Command {
	var flags renderFlags
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to output/<scene>/render_<timestamp>.png",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.envFile)
			if err != nil {
				return err
			}
			if err := applyFlags(&cfg, cmd.Flags(), flags); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			_, err = runRender(cmd.Context(), cfg, flags, logger)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.scene, "scene", defaults.Scene, "Built-in scene name (see 'pathtracer scenes')")
	f.StringArrayVar(&flags.meshes, "mesh", nil, "Mesh file to show instead of a built-in scene (OBJ, STL, PLY, glTF, GLB); repeatable")
	f.StringVar(&flags.texture, "texture", "", "Base color texture for --mesh")
	f.StringVar(&flags.normalMap, "normal-map", "", "Tangent-space normal map for --mesh")
	f.IntVar(&flags.width, "width", defaults.Width, "Image width in pixels")
	f.IntVar(&flags.height, "height", defaults.Height, "Image height in pixels")
	f.IntVar(&flags.samples, "samples", defaults.Samples, "Samples per pixel")
	f.IntVar(&flags.maxDepth, "max-depth", defaults.MaxDepth, "Maximum path depth")
	f.IntVar(&flags.workers, "workers", defaults.Workers, "Parallel workers (0 = all CPUs)")
	f.IntVar(&flags.tileSize, "tile-size", defaults.TileSize, "Tile edge in pixels")
	f.Uint64Var(&flags.seed, "seed", defaults.Seed, "Render seed")
	f.StringVar(&flags.heuristic, "heuristic", defaults.Heuristic.String(), "MIS heuristic: power or balance")
	f.Float64Var(&flags.lightProbability, "light-probability", defaults.LightProbability, "Probability of sampling a light instead of the BSDF")
	f.DurationVar(&flags.timeBudget, "time-budget", defaults.TimeBudget, "Stop refining after this long (0 = unlimited)")
	f.StringVar(&flags.outputDir, "output", defaults.OutputDir, "Output directory")
	f.BoolVar(&flags.upload, "upload", false, "Upload the image to the configured S3 bucket")
	f.StringVar(&flags.envFile, "env-file", "", "Env file to read settings from (default .env when present)")

	return cmd
}

// applyFlags overrides cfg with every flag set on the command line
func applyFlags(cfg *config.Config, set *pflag.FlagSet, flags renderFlags) error {
	var err error
	set.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "scene":
			cfg.Scene = flags.scene
		case "width":
			cfg.Width = flags.width
		case "height":
			cfg.Height = flags.height
		case "samples":
			cfg.Samples = flags.samples
		case "max-depth":
			cfg.MaxDepth = flags.maxDepth
		case "workers":
			cfg.Workers = flags.workers
		case "tile-size":
			cfg.TileSize = flags.tileSize
		case "seed":
			cfg.Seed = flags.seed
		case "light-probability":
			cfg.LightProbability = flags.lightProbability
		case "time-budget":
			cfg.TimeBudget = flags.timeBudget
		case "output":
			cfg.OutputDir = flags.outputDir
		case "heuristic":
			h, perr := integrator.ParseHeuristic(flags.heuristic)
			if perr != nil {
				err = fmt.Errorf("--heuristic: %w", perr)
				return
			}
			cfg.Heuristic = h
		}
	})
	return err
}

// runRender renders, saves and optionally uploads one image, returning the file path
func runRender(ctx context.Context, cfg config.Config, flags renderFlags, logger core.Logger) (string, error) {
	// Upload settings are checked before spending time on the render
	var uploader *output.S3Uploader
	if flags.upload {
		u, err := output.NewS3Uploader(cfg.S3)
		if err != nil {
			return "", err
		}
		uploader = u
	}

	sc, err := buildScene(cfg, flags, logger)
	if err != nil {
		return "", err
	}
	logger.Printf("Scene %s: %d primitives, %d lights\n", sc.Name(), sc.GetPrimitiveCount(), len(sc.Lights()))

	tracer, err := integrator.NewPathTracer(cfg.IntegratorConfig())
	if err != nil {
		return "", err
	}
	r, err := renderer.NewRenderer(sc, tracer, cfg.RendererConfig(), logger)
	if err != nil {
		return "", err
	}

	start := time.Now()
	fb, stats, err := r.Render(ctx)
	switch {
	case errors.Is(err, renderer.ErrBudgetExceeded):
		logger.Printf("Time budget reached, saving the partial image\n")
	case err != nil:
		return "", fmt.Errorf("render failed: %w", err)
	}
	logger.Printf("Render completed in %v\n", time.Since(start))
	logger.Printf("Samples per pixel: %.1f (range %d - %d)\n", stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed)

	img := output.ToImage(fb)
	name := fmt.Sprintf("render_%s.png", time.Now().Format("20060102_150405"))
	path := filepath.Join(cfg.OutputDir, sc.Name(), name)
	if err := output.WritePNG(path, img); err != nil {
		return "", err
	}
	logger.Printf("Render saved as %s\n", path)

	if uploader != nil {
		var buf bytes.Buffer
		if err := output.EncodePNG(&buf, img); err != nil {
			return path, err
		}
		key := sc.Name() + "/" + name
		if err := uploader.Upload(ctx, key, buf.Bytes(), "image/png"); err != nil {
			return path, err
		}
		logger.Printf("Uploaded to %s\n", uploader.URI(key))
	}

	return path, nil
}

// buildScene loads meshes into the mesh scene when any are given, otherwise builds a registered scene
func buildScene(cfg config.Config, flags renderFlags, logger core.Logger) (*scene.Scene, error) {
	if len(flags.meshes) == 0 {
		return scene.New(cfg.Scene, cfg.SceneSettings())
	}

	meshes := make([]geometry.MeshData, 0, len(flags.meshes))
	for _, path := range flags.meshes {
		data, err := loaders.LoadMesh(path)
		if err != nil {
			return nil, err
		}
		logger.Printf("Loaded %s: %d triangles\n", path, data.TriangleCount())
		meshes = append(meshes, data)
	}

	var opts scene.MeshSceneOptions
	if flags.texture != "" {
		tex, err := loaders.LoadTexture(flags.texture, loaders.TextureOptions{MaxSize: 2048})
		if err != nil {
			return nil, err
		}
		opts.BaseColor = tex
	}
	if flags.normalMap != "" {
		nm, err := loaders.LoadTexture(flags.normalMap, loaders.TextureOptions{Linear: true, MaxSize: 2048, Filter: texture.FilterBilinear})
		if err != nil {
			return nil, err
		}
		opts.NormalMap = nm
	}

	return scene.NewMeshScene(cfg.SceneSettings(), opts, meshes...)
}
