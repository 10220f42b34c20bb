package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/df07/go-pathtracer/pkg/integrator"
)

func mapLookup(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if cfg.Heuristic != integrator.HeuristicPower || cfg.LightProbability != 0.5 {
		t.Errorf("default sampling = %v/%v", cfg.Heuristic, cfg.LightProbability)
	}
	if cfg.S3.Bucket != "" {
		t.Error("uploads should be unconfigured by default")
	}
}

func TestFromLookup(t *testing.T) {
	cfg, err := FromLookup(mapLookup(map[string]string{
		KeyScene:            "portal",
		KeyWidth:            "320",
		KeyHeight:           " 240 ",
		KeySamples:          "16",
		KeyMaxDepth:         "3",
		KeyWorkers:          "2",
		KeyTileSize:         "32",
		KeySeed:             "18446744073709551615",
		KeyLightProbability: "0.25",
		KeyHeuristic:        "Balance",
		KeyTimeBudget:       "90s",
		KeyOutputDir:        "/tmp/renders",
		KeyS3Bucket:         "bucket",
		KeyS3Region:         "eu-west-1",
		KeyS3Endpoint:       "http://localhost:9000",
		KeyS3Prefix:         "nightly",
		KeyAccessKeyID:      "id",
		KeySecretAccessKey:  "secret",
		KeyMaxDepth + "_X":  "ignored",
	}))
	if err != nil {
		t.Fatalf("FromLookup: %v", err)
	}

	if cfg.Scene != "portal" || cfg.Width != 320 || cfg.Height != 240 || cfg.Samples != 16 {
		t.Errorf("image settings = %+v", cfg)
	}
	if cfg.MaxDepth != 3 || cfg.Workers != 2 || cfg.TileSize != 32 || cfg.Seed != ^uint64(0) {
		t.Errorf("render settings = %+v", cfg)
	}
	if cfg.LightProbability != 0.25 || cfg.Heuristic != integrator.HeuristicBalance || cfg.TimeBudget != 90*time.Second {
		t.Errorf("sampling settings = %+v", cfg)
	}
	if cfg.OutputDir != "/tmp/renders" {
		t.Errorf("output dir = %q", cfg.OutputDir)
	}
	s3 := cfg.S3
	if s3.Bucket != "bucket" || s3.Region != "eu-west-1" || s3.Endpoint != "http://localhost:9000" ||
		s3.Prefix != "nightly" || s3.AccessKeyID != "id" || s3.SecretAccessKey != "secret" {
		t.Errorf("s3 = %+v", s3)
	}

	if got := cfg.IntegratorConfig(); got.MaxDepth != 3 || got.Heuristic != integrator.HeuristicBalance {
		t.Errorf("integrator config = %+v", got)
	}
	if got := cfg.RendererConfig(); got.MaxSamplesPerPixel != 16 || got.TileSize != 32 || got.NumWorkers != 2 {
		t.Errorf("renderer config = %+v", got)
	}
	if got := cfg.SceneSettings(); got.Width != 320 || got.MaxDepth != 3 {
		t.Errorf("scene settings = %+v", got)
	}
}

func TestFromLookup_ErrorsNameTheKey(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{KeyWidth, "wide"},
		{KeySamples, "1.5"},
		{KeySeed, "-1"},
		{KeyLightProbability, "1.5"},
		{KeyLightProbability, "NaN"},
		{KeyHeuristic, "cubic"},
		{KeyTimeBudget, "soon"},
		{KeyTimeBudget, "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			_, err := FromLookup(mapLookup(map[string]string{tt.key: tt.value}))
			if err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %v should name %s", err, tt.key)
			}
		})
	}

	_, err := FromLookup(mapLookup(map[string]string{KeyWidth: "x", KeyHeight: "y"}))
	if err == nil || !strings.Contains(err.Error(), KeyWidth) || !strings.Contains(err.Error(), KeyHeight) {
		t.Errorf("every bad key should be reported, got %v", err)
	}
}

func TestFromLookup_EmptyValuesKeepDefaults(t *testing.T) {
	cfg, err := FromLookup(mapLookup(map[string]string{KeyWidth: "", KeyScene: "  "}))
	if err != nil {
		t.Fatalf("FromLookup: %v", err)
	}
	if cfg.Width != Default().Width || cfg.Scene != Default().Scene {
		t.Errorf("empty values overrode defaults: %+v", cfg)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "render.env")
	content := "PT_SCENE=materials\nPT_WIDTH=200\n# comment\nPT_SAMPLES=8\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	// The process environment wins over the file
	t.Setenv(KeyWidth, "300")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scene != "materials" || cfg.Width != 300 || cfg.Samples != 8 {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := Load(filepath.Join(dir, "missing.env")); err == nil {
		t.Error("expected an error for a missing named env file")
	}
}

func TestLoad_DefaultFileIsOptional(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Load(""); err != nil {
		t.Errorf("Load without a .env file: %v", err)
	}

	if err := os.WriteFile(DefaultEnvFile, []byte("PT_HEURISTIC=balance\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Heuristic != integrator.HeuristicBalance {
		t.Errorf("heuristic = %v, want balance from %s", cfg.Heuristic, DefaultEnvFile)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty scene", func(c *Config) { c.Scene = "" }},
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"zero samples", func(c *Config) { c.Samples = 0 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }},
		{"zero tile", func(c *Config) { c.TileSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
