// Package config holds runtime configuration for extraction runs.
// Fields may be loaded from a JSON file and overridden by command-line flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/weidix/subtitle-fast-sub001/internal/compare"
	"github.com/weidix/subtitle-fast-sub001/internal/detect"
	"github.com/weidix/subtitle-fast-sub001/internal/roi"
	"github.com/weidix/subtitle-fast-sub001/internal/video"
)

// Config holds the tunable parameters of an extraction run.
type Config struct {
	// Sampling
	SamplesPerSecond int `json:"samples_per_second"`
	QueueDepth       int `json:"queue_depth"`

	// Detection
	Detector    string  `json:"detector"`
	Backend     string  `json:"backend"`
	Roi         string  `json:"roi"`
	BandTarget  int     `json:"band_target"`
	BandDelta   int     `json:"band_delta"`
	Languages   string  `json:"languages"`
	MinCoverage float64 `json:"min_coverage"`
	MaxCoverage float64 `json:"max_coverage"`

	// Comparison
	Compare string `json:"compare"`

	// Persistence and API
	DBPath    string `json:"db_path"`
	Listen    string `json:"listen"`
	LogFormat string `json:"log_format"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	base := detect.DefaultConfig()
	return &Config{
		SamplesPerSecond: 5,
		QueueDepth:       4,
		Detector:         base.Kind,
		Backend:          base.Backend,
		Roi:              "",
		BandTarget:       int(base.Band.Target),
		BandDelta:        int(base.Band.Delta),
		Languages:        base.Languages,
		MinCoverage:      base.MinCoverage,
		MaxCoverage:      base.MaxCoverage,
		Compare:          compare.BitsetCover.String(),
		Listen:           "",
		LogFormat:        "text",
	}
}

// Validate checks the configuration and rejects values the pipeline cannot
// run with.
func (c *Config) Validate() error {
	if c.SamplesPerSecond < 1 {
		return fmt.Errorf("samples_per_second must be >= 1, got %d", c.SamplesPerSecond)
	}
	if c.QueueDepth < 1 {
		c.QueueDepth = 4
	}
	if c.Detector != detect.KindHeuristic && c.Detector != detect.KindNative {
		return fmt.Errorf("unknown detector %q", c.Detector)
	}
	if c.BandTarget < 0 || c.BandTarget > 255 {
		return fmt.Errorf("band_target must be in [0,255], got %d", c.BandTarget)
	}
	if c.BandDelta < 0 || c.BandDelta > 255 {
		return fmt.Errorf("band_delta must be in [0,255], got %d", c.BandDelta)
	}
	if c.MinCoverage < 0 || c.MaxCoverage > 1 || c.MinCoverage > c.MaxCoverage {
		return fmt.Errorf("coverage window [%f,%f] is invalid", c.MinCoverage, c.MaxCoverage)
	}
	if _, err := roi.Parse(c.Roi); err != nil {
		return err
	}
	if _, err := compare.ParseBackend(c.Compare); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// DetectConfig converts the validated configuration into detector settings.
func (c *Config) DetectConfig() (detect.Config, error) {
	region, err := roi.Parse(c.Roi)
	if err != nil {
		return detect.Config{}, err
	}
	return detect.Config{
		Kind:        c.Detector,
		Backend:     c.Backend,
		Roi:         region,
		Band:        video.LumaBand{Target: uint8(c.BandTarget), Delta: uint8(c.BandDelta)},
		Languages:   c.Languages,
		MinCoverage: c.MinCoverage,
		MaxCoverage: c.MaxCoverage,
	}, nil
}

// CompareConfig converts the validated configuration into comparator
// settings.
func (c *Config) CompareConfig() (compare.Config, error) {
	backend, err := compare.ParseBackend(c.Compare)
	if err != nil {
		return compare.Config{}, err
	}
	return compare.Config{
		Backend:    backend,
		Preprocess: video.LumaBand{Target: uint8(c.BandTarget), Delta: uint8(c.BandDelta)},
	}, nil
}

// Load attempts to read configuration from the given JSON file path. If the
// file does not exist it returns DefaultConfig(). Invalid settings surface
// as an error so flags do not silently paper over a broken file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
