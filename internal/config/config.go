// Package config holds the thresholds and sampling parameters of the flag
// conformance pipeline.
//
// A Config is built once (Default or Load), validated, and then passed by value
// to every stage. Nothing in the pipeline reads package-level tunables.
package config

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks a configuration the pipeline cannot run with.
var ErrInvalidConfig = errors.New("invalid config")

// HueRange is the HSV window that identifies emblem pixels.
type HueRange struct {
	HueMin float64 `yaml:"hue_min" json:"hue_min"` // degrees, 0-360
	HueMax float64 `yaml:"hue_max" json:"hue_max"` // degrees, 0-360
	SatMin float64 `yaml:"sat_min" json:"sat_min"` // 0-1
	ValMin float64 `yaml:"val_min" json:"val_min"` // 0-1
	ValMax float64 `yaml:"val_max" json:"val_max"` // 0-1
}

// Config is the full set of checker thresholds.
type Config struct {
	// Geometry
	AspectTarget       float64 `yaml:"aspect_target" json:"aspect_target"`
	AspectRelTolerance float64 `yaml:"aspect_rel_tolerance" json:"aspect_rel_tolerance"`
	StripeRelTolerance float64 `yaml:"stripe_rel_tolerance" json:"stripe_rel_tolerance"`

	// Colour
	ColorTolerancePct float64  `yaml:"color_tolerance_pct" json:"color_tolerance_pct"`
	Hue               HueRange `yaml:"hue" json:"hue"`

	// Emblem placement
	CenterTolerancePx      float64 `yaml:"center_tolerance_px" json:"center_tolerance_px"`
	EmblemDiameterFraction float64 `yaml:"emblem_diameter_fraction" json:"emblem_diameter_fraction"`
	EmblemSizeRelTolerance float64 `yaml:"emblem_size_rel_tolerance" json:"emblem_size_rel_tolerance"`
	RaySteps               int     `yaml:"ray_steps" json:"ray_steps"`

	// Spokes
	ExpectedSpokes   int     `yaml:"expected_spokes" json:"expected_spokes"`
	KMin             int     `yaml:"k_min" json:"k_min"`
	KMax             int     `yaml:"k_max" json:"k_max"`
	ProfileSteps     int     `yaml:"profile_steps" json:"profile_steps"`
	RadialSamplesMin int     `yaml:"radial_samples_min" json:"radial_samples_min"`
	AnnulusInner     float64 `yaml:"annulus_inner" json:"annulus_inner"`
	AnnulusOuter     float64 `yaml:"annulus_outer" json:"annulus_outer"`
	MinSepFactor     float64 `yaml:"min_sep_factor" json:"min_sep_factor"`
	ProminenceStd    float64 `yaml:"prominence_std" json:"prominence_std"`

	// Runtime
	Workers       int `yaml:"workers" json:"workers"`                 // 0 = GOMAXPROCS
	MaxImageBytes int `yaml:"max_image_bytes" json:"max_image_bytes"` // upload limit
}

// Default returns the calibrated defaults for the national flag of India.
func Default() Config {
	return Config{
		AspectTarget:       1.5,
		AspectRelTolerance: 0.01,
		StripeRelTolerance: 0.01,

		ColorTolerancePct: 5,
		Hue: HueRange{
			HueMin: 195,
			HueMax: 265,
			SatMin: 0.15,
			ValMin: 0.08,
			ValMax: 0.95,
		},

		CenterTolerancePx:      2,
		EmblemDiameterFraction: 0.75,
		EmblemSizeRelTolerance: 0.05,
		RaySteps:               720,

		ExpectedSpokes:   24,
		KMin:             20,
		KMax:             28,
		ProfileSteps:     1440,
		RadialSamplesMin: 48,
		AnnulusInner:     0.45,
		AnnulusOuter:     0.95,
		MinSepFactor:     0.7,
		ProminenceStd:    0.45,

		Workers:       0,
		MaxImageBytes: 5 * 1024 * 1024,
	}
}

// Load reads a YAML (or JSON) file and overlays it on Default.
// Keys missing from the file keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

type floatField struct {
	key string
	v   float64
}

// floatFields lists every float setting by its config key.
func (c Config) floatFields() []floatField {
	return []floatField{
		{"aspect_target", c.AspectTarget},
		{"aspect_rel_tolerance", c.AspectRelTolerance},
		{"stripe_rel_tolerance", c.StripeRelTolerance},
		{"color_tolerance_pct", c.ColorTolerancePct},
		{"hue.hue_min", c.Hue.HueMin},
		{"hue.hue_max", c.Hue.HueMax},
		{"hue.sat_min", c.Hue.SatMin},
		{"hue.val_min", c.Hue.ValMin},
		{"hue.val_max", c.Hue.ValMax},
		{"center_tolerance_px", c.CenterTolerancePx},
		{"emblem_diameter_fraction", c.EmblemDiameterFraction},
		{"emblem_size_rel_tolerance", c.EmblemSizeRelTolerance},
		{"annulus_inner", c.AnnulusInner},
		{"annulus_outer", c.AnnulusOuter},
		{"min_sep_factor", c.MinSepFactor},
		{"prominence_std", c.ProminenceStd},
	}
}

// Validate reports the first malformed setting, wrapped in ErrInvalidConfig.
// Every float setting must be finite; NaN would slip past the range checks.
func (c Config) Validate() error {
	for _, f := range c.floatFields() {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidConfig, f.key, f.v)
		}
	}

	var problem string
	switch {
	case c.AspectTarget <= 0:
		problem = "aspect_target must be positive"
	case c.AspectRelTolerance < 0, c.StripeRelTolerance < 0, c.ColorTolerancePct < 0,
		c.CenterTolerancePx < 0, c.EmblemSizeRelTolerance < 0:
		problem = "tolerances must not be negative"
	case c.EmblemDiameterFraction <= 0:
		problem = "emblem_diameter_fraction must be positive"
	case c.RaySteps < 1:
		problem = "ray_steps must be at least 1"
	case c.ExpectedSpokes < 1:
		problem = "expected_spokes must be at least 1"
	case c.KMin < 1:
		problem = "k_min must be at least 1"
	case c.KMin > c.KMax:
		problem = fmt.Sprintf("k_min (%d) exceeds k_max (%d)", c.KMin, c.KMax)
	case c.ProfileSteps < 3:
		problem = "profile_steps must be at least 3"
	case c.KMax > c.ProfileSteps/2:
		problem = fmt.Sprintf("k_max (%d) above Nyquist for %d profile steps", c.KMax, c.ProfileSteps)
	case c.RadialSamplesMin < 2:
		problem = "radial_samples_min must be at least 2"
	case c.AnnulusInner <= 0 || c.AnnulusInner > 1 || c.AnnulusOuter <= 0 || c.AnnulusOuter > 1:
		problem = "annulus fractions must lie in (0, 1]"
	case c.AnnulusInner >= c.AnnulusOuter:
		problem = "annulus_inner must be below annulus_outer"
	case c.MinSepFactor < 0 || c.ProminenceStd < 0:
		problem = "peak factors must not be negative"
	case c.Hue.HueMin < 0 || c.Hue.HueMax > 360 || c.Hue.HueMin > c.Hue.HueMax:
		problem = "hue window must satisfy 0 <= hue_min <= hue_max <= 360"
	case c.Hue.ValMin > c.Hue.ValMax:
		problem = "val_min exceeds val_max"
	case c.Workers < 0:
		problem = "workers must not be negative"
	case c.MaxImageBytes < 0:
		problem = "max_image_bytes must not be negative"
	default:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, problem)
}

// Fingerprint identifies the settings that influence an outcome. Two configs
// with the same fingerprint produce identical outcomes for the same image.
// MaxImageBytes is included because it decides whether an image is rejected.
func (c Config) Fingerprint() string {
	c.Workers = 0
	h := fnv.New64a()
	fmt.Fprintf(h, "%+v", c)
	return fmt.Sprintf("%016x", h.Sum64())
}
