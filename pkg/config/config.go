package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/df07/go-pathtracer/pkg/integrator"
	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Environment keys
const (
	KeyScene            = "PT_SCENE"
	KeyWidth            = "PT_WIDTH"
	KeyHeight           = "PT_HEIGHT"
	KeySamples          = "PT_SAMPLES"
	KeyMaxDepth         = "PT_MAX_DEPTH"
	KeyWorkers          = "PT_WORKERS"
	KeyTileSize         = "PT_TILE_SIZE"
	KeySeed             = "PT_SEED"
	KeyLightProbability = "PT_LIGHT_PROBABILITY"
	KeyHeuristic        = "PT_HEURISTIC"
	KeyTimeBudget       = "PT_TIME_BUDGET"
	KeyOutputDir        = "PT_OUTPUT_DIR"
	KeyS3Bucket         = "PT_S3_BUCKET"
	KeyS3Region         = "PT_S3_REGION"
	KeyS3Endpoint       = "PT_S3_ENDPOINT"
	KeyS3Prefix         = "PT_S3_PREFIX"
	KeyAccessKeyID      = "AWS_ACCESS_KEY_ID"
	KeySecretAccessKey  = "AWS_SECRET_ACCESS_KEY"
)

// DefaultEnvFile is read when present and no other file is named
const DefaultEnvFile = ".env"

// Config is everything a render run needs, before command-line overrides
type Config struct {
	Scene            string
	Width            int
	Height           int
	Samples          int
	MaxDepth         int
	Workers          int // 0 uses every CPU
	TileSize         int
	Seed             uint64
	LightProbability float64
	Heuristic        integrator.Heuristic
	TimeBudget       time.Duration // 0 is unlimited
	OutputDir        string
	S3               output.S3Config
}

// Default returns the built-in configuration
func Default() Config {
	settings := scene.DefaultSettings()
	render := renderer.DefaultConfig()
	integ := integrator.DefaultConfig()

	return Config{
		Scene:            "cornell",
		Width:            settings.Width,
		Height:           settings.Height,
		Samples:          settings.SamplesPerPixel,
		MaxDepth:         integ.MaxDepth,
		Workers:          render.NumWorkers,
		TileSize:         render.TileSize,
		Seed:             render.Seed,
		LightProbability: integ.LightSamplingProbability,
		Heuristic:        integ.Heuristic,
		OutputDir:        "output",
		S3:               output.DefaultS3Config(),
	}
}

// Load layers the process environment over an env file over the defaults.
// An empty envFile reads DefaultEnvFile if it exists; a named file must exist.
// Variables already set in the process win over the file.
func Load(envFile string) (Config, error) {
	fileVars := map[string]string{}
	switch {
	case envFile != "":
		vars, err := godotenv.Read(envFile)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read env file %s: %w", envFile, err)
		}
		fileVars = vars
	default:
		vars, err := godotenv.Read(DefaultEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read env file %s: %w", DefaultEnvFile, err)
		}
		if err == nil {
			fileVars = vars
		}
	}

	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	})
}

// FromLookup applies the variables returned by lookup to the defaults
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	p := parser{lookup: lookup}

	p.str(KeyScene, &cfg.Scene)
	p.integer(KeyWidth, &cfg.Width)
	p.integer(KeyHeight, &cfg.Height)
	p.integer(KeySamples, &cfg.Samples)
	p.integer(KeyMaxDepth, &cfg.MaxDepth)
	p.integer(KeyWorkers, &cfg.Workers)
	p.integer(KeyTileSize, &cfg.TileSize)
	p.unsigned(KeySeed, &cfg.Seed)
	p.float(KeyLightProbability, &cfg.LightProbability)
	p.heuristic(KeyHeuristic, &cfg.Heuristic)
	p.duration(KeyTimeBudget, &cfg.TimeBudget)
	p.str(KeyOutputDir, &cfg.OutputDir)
	p.str(KeyS3Bucket, &cfg.S3.Bucket)
	p.str(KeyS3Region, &cfg.S3.Region)
	p.str(KeyS3Endpoint, &cfg.S3.Endpoint)
	p.str(KeyS3Prefix, &cfg.S3.Prefix)
	p.str(KeyAccessKeyID, &cfg.S3.AccessKeyID)
	p.str(KeySecretAccessKey, &cfg.S3.SecretAccessKey)

	if len(p.errs) > 0 {
		return Config{}, errors.Join(p.errs...)
	}
	return cfg, nil
}

// Validate checks ranges that parsing alone cannot
func (c Config) Validate() error {
	var errs []error
	if c.Scene == "" {
		errs = append(errs, errors.New("scene must not be empty"))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("image size %dx%d must be positive", c.Width, c.Height))
	}
	if c.Samples <= 0 {
		errs = append(errs, fmt.Errorf("samples %d must be positive", c.Samples))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d must not be negative", c.Workers))
	}
	if err := c.IntegratorConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.RendererConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SceneSettings returns the settings scene factories are built with
func (c Config) SceneSettings() scene.Settings {
	return scene.Settings{
		Width:           c.Width,
		Height:          c.Height,
		SamplesPerPixel: c.Samples,
		MaxDepth:        c.MaxDepth,
	}
}

// IntegratorConfig returns the path tracer configuration
func (c Config) IntegratorConfig() integrator.Config {
	cfg := integrator.DefaultConfig()
	cfg.MaxDepth = c.MaxDepth
	cfg.LightSamplingProbability = c.LightProbability
	cfg.Heuristic = c.Heuristic
	return cfg
}

// RendererConfig returns the renderer configuration
func (c Config) RendererConfig() renderer.Config {
	cfg := renderer.DefaultConfig()
	cfg.TileSize = c.TileSize
	cfg.MaxSamplesPerPixel = c.Samples
	cfg.NumWorkers = c.Workers
	cfg.Seed = c.Seed
	cfg.TimeBudget = c.TimeBudget
	if cfg.InitialSamples > cfg.MaxSamplesPerPixel {
		cfg.InitialSamples = cfg.MaxSamplesPerPixel
	}
	return cfg
}

// parser collects one error per malformed key
type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) get(key string) (string, bool) {
	v, ok := p.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (p *parser) fail(key, value string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (p *parser) str(key string, dst *string) {
	if v, ok := p.get(key); ok {
		*dst = v
	}
}

func (p *parser) integer(key string, dst *int) {
	if v, ok := p.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (p *parser) unsigned(key string, dst *uint64) {
	if v, ok := p.get(key); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (p *parser) float(key string, dst *float64) {
	if v, ok := p.get(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		if key == KeyLightProbability && !(f >= 0 && f <= 1) {
			p.fail(key, v, errors.New("must be in [0, 1]"))
			return
		}
		*dst = f
	}
}

func (p *parser) heuristic(key string, dst *integrator.Heuristic) {
	if v, ok := p.get(key); ok {
		h, err := integrator.ParseHeuristic(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = h
	}
}

func (p *parser) duration(key string, dst *time.Duration) {
	if v, ok := p.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		if d < 0 {
			p.fail(key, v, errors.New("must not be negative"))
			return
		}
		*dst = d
	}
}
