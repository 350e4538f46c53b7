// Package config defines the typed sizing configuration for the
// heatnet engine. All numeric policy lives here: water properties,
// design factors, category thresholds, hydraulic limits, and the
// standard diameter catalog. A config is validated once at load time;
// downstream packages treat it as immutable.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// PerCategory holds one value per pipe category.
type PerCategory struct {
	Service      float64 `yaml:"service" json:"service"`
	Distribution float64 `yaml:"distribution" json:"distribution"`
	Main         float64 `yaml:"main" json:"main"`
}

// DiameterBand is the allowed diameter window for a pipe category, in
// millimetres.
type DiameterBand struct {
	MinMM float64 `yaml:"min_mm" json:"min_mm"`
	MaxMM float64 `yaml:"max_mm" json:"max_mm"`
}

// CategoryBands holds the diameter band for each pipe category.
type CategoryBands struct {
	Service      DiameterBand `yaml:"service" json:"service"`
	Distribution DiameterBand `yaml:"distribution" json:"distribution"`
	Main         DiameterBand `yaml:"main" json:"main"`
}

// SizingConfig is the complete numeric configuration of a sizing run.
type SizingConfig struct {
	// Design factors.
	SafetyFactor    float64 `yaml:"safety_factor" json:"safety_factor"`
	DiversityFactor float64 `yaml:"diversity_factor" json:"diversity_factor"`

	// Network temperatures and water properties.
	SupplyTempC         float64 `yaml:"supply_temp_c" json:"supply_temp_c"`
	ReturnTempC         float64 `yaml:"return_temp_c" json:"return_temp_c"`
	CpWaterJKgK         float64 `yaml:"cp_water_j_kg_k" json:"cp_water_j_kg_k"`
	WaterDensityKgM3    float64 `yaml:"water_density_kg_m3" json:"water_density_kg_m3"`
	DynamicViscosityPaS float64 `yaml:"dynamic_viscosity_pa_s" json:"dynamic_viscosity_pa_s"`
	PipeRoughnessM      float64 `yaml:"pipe_roughness_m" json:"pipe_roughness_m"`

	// Flow thresholds separating pipe categories (kg/s).
	ServiceFlowMaxKgS      float64 `yaml:"service_flow_max_kg_s" json:"service_flow_max_kg_s"`
	DistributionFlowMaxKgS float64 `yaml:"distribution_flow_max_kg_s" json:"distribution_flow_max_kg_s"`

	// Hydraulic limits per category.
	VelocityMaxMS          PerCategory `yaml:"velocity_max_ms" json:"velocity_max_ms"`
	PressureGradientMaxPaM PerCategory `yaml:"pressure_gradient_max_pa_m" json:"pressure_gradient_max_pa_m"`

	// Discrete diameter catalog (mm, ascending) and per-category bands.
	CatalogDiametersMM []float64     `yaml:"catalog_diameters_mm" json:"catalog_diameters_mm"`
	Bands              CategoryBands `yaml:"bands" json:"bands"`

	// Degraded-mode diameters assigned by fallback sizing (mm).
	FallbackDiameterMM PerCategory `yaml:"fallback_diameter_mm" json:"fallback_diameter_mm"`

	// Pressure-limited diameter search.
	MaxIterations        int     `yaml:"max_iterations" json:"max_iterations"`
	PressureTolerancePaM float64 `yaml:"pressure_tolerance_pa_m" json:"pressure_tolerance_pa_m"`

	// StrictCategories rejects unknown pipe categories at the engine
	// boundary instead of defaulting them to distribution.
	StrictCategories bool `yaml:"strict_categories" json:"strict_categories"`
}

// Default returns the documented default configuration: water at ~70 C,
// German district-heating design limits, and the DN25-DN400 catalog.
func Default() SizingConfig {
	return SizingConfig{
		SafetyFactor:    1.1,
		DiversityFactor: 0.8,

		SupplyTempC:         70,
		ReturnTempC:         40,
		CpWaterJKgK:         4180,
		WaterDensityKgM3:    977.8,
		DynamicViscosityPaS: 4.04e-4,
		PipeRoughnessM:      1.0e-4,

		ServiceFlowMaxKgS:      2.0,
		DistributionFlowMaxKgS: 20.0,

		VelocityMaxMS:          PerCategory{Service: 1.5, Distribution: 2.0, Main: 2.0},
		PressureGradientMaxPaM: PerCategory{Service: 300, Distribution: 250, Main: 200},

		CatalogDiametersMM: []float64{25, 32, 40, 50, 63, 80, 100, 125, 150, 200, 250, 300, 400},
		Bands: CategoryBands{
			Service:      DiameterBand{MinMM: 25, MaxMM: 50},
			Distribution: DiameterBand{MinMM: 63, MaxMM: 200},
			Main:         DiameterBand{MinMM: 200, MaxMM: 400},
		},

		FallbackDiameterMM: PerCategory{Service: 50, Distribution: 100, Main: 300},

		MaxIterations:        20,
		PressureTolerancePaM: 10,
	}
}

// Load reads YAML overrides from path on top of the defaults and
// validates the result.
func Load(path string) (SizingConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading sizing config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing sizing config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// DeltaTK returns the design temperature spread in kelvin, floored at
// 1.0 so that supply ~= return never blows up the flow conversion.
func (c SizingConfig) DeltaTK() float64 {
	dt := c.SupplyTempC - c.ReturnTempC
	if dt < 1.0 {
		return 1.0
	}
	return dt
}

// Validate checks the configuration once; downstream stages assume a
// validated config and never re-check.
func (c SizingConfig) Validate() error {
	if c.SafetyFactor <= 0 {
		return fmt.Errorf("safety_factor must be > 0, got %g", c.SafetyFactor)
	}
	if c.DiversityFactor <= 0 || c.DiversityFactor > 1 {
		return fmt.Errorf("diversity_factor must be in (0, 1], got %g", c.DiversityFactor)
	}
	if c.CpWaterJKgK <= 0 {
		return fmt.Errorf("cp_water_j_kg_k must be > 0, got %g", c.CpWaterJKgK)
	}
	if c.WaterDensityKgM3 <= 0 {
		return fmt.Errorf("water_density_kg_m3 must be > 0, got %g", c.WaterDensityKgM3)
	}
	if c.DynamicViscosityPaS <= 0 {
		return fmt.Errorf("dynamic_viscosity_pa_s must be > 0, got %g", c.DynamicViscosityPaS)
	}
	if c.PipeRoughnessM < 0 {
		return fmt.Errorf("pipe_roughness_m must be >= 0, got %g", c.PipeRoughnessM)
	}
	if c.ServiceFlowMaxKgS <= 0 || c.DistributionFlowMaxKgS <= c.ServiceFlowMaxKgS {
		return fmt.Errorf("flow thresholds must satisfy 0 < service (%g) < distribution (%g)",
			c.ServiceFlowMaxKgS, c.DistributionFlowMaxKgS)
	}
	if err := positivePerCategory("velocity_max_ms", c.VelocityMaxMS); err != nil {
		return err
	}
	if err := positivePerCategory("pressure_gradient_max_pa_m", c.PressureGradientMaxPaM); err != nil {
		return err
	}
	if err := positivePerCategory("fallback_diameter_mm", c.FallbackDiameterMM); err != nil {
		return err
	}
	if len(c.CatalogDiametersMM) == 0 {
		return fmt.Errorf("catalog_diameters_mm must not be empty")
	}
	if !sort.Float64sAreSorted(c.CatalogDiametersMM) {
		return fmt.Errorf("catalog_diameters_mm must be sorted ascending")
	}
	if c.CatalogDiametersMM[0] <= 0 {
		return fmt.Errorf("catalog_diameters_mm entries must be > 0, got %g", c.CatalogDiametersMM[0])
	}
	for _, b := range []struct {
		name string
		band DiameterBand
	}{
		{"service", c.Bands.Service},
		{"distribution", c.Bands.Distribution},
		{"main", c.Bands.Main},
	} {
		if b.band.MinMM <= 0 || b.band.MaxMM < b.band.MinMM {
			return fmt.Errorf("bands.%s: need 0 < min_mm (%g) <= max_mm (%g)", b.name, b.band.MinMM, b.band.MaxMM)
		}
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be >= 1, got %d", c.MaxIterations)
	}
	if c.PressureTolerancePaM <= 0 {
		return fmt.Errorf("pressure_tolerance_pa_m must be > 0, got %g", c.PressureTolerancePaM)
	}
	return nil
}

func positivePerCategory(field string, p PerCategory) error {
	if p.Service <= 0 || p.Distribution <= 0 || p.Main <= 0 {
		return fmt.Errorf("%s: all categories must be > 0, got service=%g distribution=%g main=%g",
			field, p.Service, p.Distribution, p.Main)
	}
	return nil
}
