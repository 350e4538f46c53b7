// Package sizing selects standard pipe diameters for aggregated flows.
// For each pipe it determines the smallest catalog diameter satisfying
// both a velocity ceiling and a pressure-gradient ceiling, then
// recomputes the hydraulic state at the selected diameter.
package sizing

import (
	"fmt"
	"math"
	"time"

	"github.com/fernwaerme/heatnet/pkg/config"
	"github.com/fernwaerme/heatnet/pkg/flow"
	"github.com/fernwaerme/heatnet/pkg/hydro"
)

// Sizing sources distinguish hydraulically computed results from
// degraded-mode defaults.
const (
	SourceHydraulic = "HYDRAULIC"
	SourceFallback  = "CHA_FALLBACK"
)

// Result is the dimensioned state of one pipe. Computed once,
// immutable.
type Result struct {
	PipeID             string        `json:"pipe_id"`
	DiameterM          float64       `json:"diameter_m"`
	DiameterNominal    string        `json:"diameter_nominal"`
	VelocityMS         float64       `json:"velocity_ms"`
	PressureDropPaPerM float64       `json:"pressure_drop_pa_per_m"`
	PressureDropBar    float64       `json:"pressure_drop_bar"`
	ReynoldsNumber     float64       `json:"reynolds_number"`
	FrictionFactor     float64       `json:"friction_factor"`
	LengthM            float64       `json:"length_m"`
	PipeCategory       flow.Category `json:"pipe_category"`
	SizingSource       string        `json:"sizing_source"`
	Fallback           *FallbackMeta `json:"fallback,omitempty"`
}

// FallbackMeta records why a pipe received a default diameter instead
// of a hydraulic solution.
type FallbackMeta struct {
	Reason           string  `json:"reason"`
	DefaultDiameterM float64 `json:"default_diameter_m"`
	GeneratedAt      string  `json:"generated_at"`
}

// Solver sizes pipes against one validated configuration.
type Solver struct {
	cfg config.SizingConfig
}

// NewSolver creates a solver. The config is assumed validated.
func NewSolver(cfg config.SizingConfig) *Solver {
	return &Solver{cfg: cfg}
}

// SizePipe dimensions one pipe. Negative flows are clamped to zero and
// lengths are floored at one metre; the function is total and never
// fails. Unknown categories are treated as distribution pipes.
func (s *Solver) SizePipe(pipeID string, flowKgS, lengthM float64, cat flow.Category) Result {
	if flowKgS < 0 {
		flowKgS = 0
	}
	if lengthM < 1.0 {
		lengthM = 1.0
	}
	cat = normalizeCategory(cat)
	vMax, pMax := s.limits(cat)
	band := s.band(cat)

	// 1. Diameter that keeps velocity at its ceiling, 2. diameter that
	// keeps the pressure gradient at its ceiling; the larger governs.
	var required float64
	if flowKgS > 0 {
		dv := hydro.DiameterForVelocity(flowKgS, s.cfg.WaterDensityKgM3, vMax)
		dp := s.pressureLimitedDiameter(flowKgS, pMax)
		required = math.Max(dv, dp)
	}

	selected := s.snapToCatalog(required, band)

	// Final hydraulic state at the selected diameter, not the unsnapped
	// requirement.
	v := hydro.Velocity(flowKgS, s.cfg.WaterDensityKgM3, selected)
	re := hydro.ReynoldsNumber(s.cfg.WaterDensityKgM3, v, selected, s.cfg.DynamicViscosityPaS)
	f := hydro.FrictionFactor(re, s.cfg.PipeRoughnessM, selected)
	gradient := hydro.PressureGradient(f, s.cfg.WaterDensityKgM3, v, selected)

	return Result{
		PipeID:             pipeID,
		DiameterM:          selected,
		DiameterNominal:    Nominal(selected),
		VelocityMS:         v,
		PressureDropPaPerM: gradient,
		PressureDropBar:    gradient * lengthM / 1e5,
		ReynoldsNumber:     re,
		FrictionFactor:     f,
		LengthM:            lengthM,
		PipeCategory:       cat,
		SizingSource:       SourceHydraulic,
	}
}

// Fallback assigns the category's default diameter to a pipe that
// could not be sized hydraulically. The result carries no hydraulic
// state and is always flagged by the compliance stage.
func (s *Solver) Fallback(pipeID string, cat flow.Category, reason string) Result {
	cat = normalizeCategory(cat)
	d := s.fallbackDiameter(cat)
	return Result{
		PipeID:          pipeID,
		DiameterM:       d,
		DiameterNominal: Nominal(d),
		PipeCategory:    cat,
		SizingSource:    SourceFallback,
		Fallback: &FallbackMeta{
			Reason:           reason,
			DefaultDiameterM: d,
			GeneratedAt:      time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// pressureLimitedDiameter hunts the diameter whose pressure gradient
// sits at the category limit. Damped fixed-point search: grow 10% when
// over the limit, shrink 5% when under, stop inside the tolerance. The
// iteration cap is a hard stop returning the best diameter found;
// non-convergence is not an error.
func (s *Solver) pressureLimitedDiameter(flowKgS, limitPaM float64) float64 {
	d := s.cfg.CatalogDiametersMM[0] / 1000
	if d < 0.02 {
		d = 0.02
	}
	for i := 0; i < s.cfg.MaxIterations; i++ {
		v := hydro.Velocity(flowKgS, s.cfg.WaterDensityKgM3, d)
		re := hydro.ReynoldsNumber(s.cfg.WaterDensityKgM3, v, d, s.cfg.DynamicViscosityPaS)
		f := hydro.FrictionFactor(re, s.cfg.PipeRoughnessM, d)
		gradient := hydro.PressureGradient(f, s.cfg.WaterDensityKgM3, v, d)

		if math.Abs(gradient-limitPaM) < s.cfg.PressureTolerancePaM {
			break
		}
		if gradient > limitPaM {
			d *= 1.1
		} else {
			d *= 0.95
		}
	}
	return d
}

// snapToCatalog picks the smallest catalog diameter that covers the
// requirement and lies inside the category band. Over-range demand
// clamps to the band maximum; sizing never refuses a pipe.
func (s *Solver) snapToCatalog(requiredM float64, band config.DiameterBand) float64 {
	for _, mm := range s.cfg.CatalogDiametersMM {
		if mm/1000 >= requiredM && mm >= band.MinMM && mm <= band.MaxMM {
			return mm / 1000
		}
	}
	return band.MaxMM / 1000
}

// Nominal formats a diameter as its DN designation, e.g. DN100.
func Nominal(diameterM float64) string {
	return fmt.Sprintf("DN%d", int(math.Round(diameterM*1000)))
}

func (s *Solver) limits(cat flow.Category) (velocityMS, pressurePaM float64) {
	switch cat {
	case flow.CategoryService:
		return s.cfg.VelocityMaxMS.Service, s.cfg.PressureGradientMaxPaM.Service
	case flow.CategoryMain:
		return s.cfg.VelocityMaxMS.Main, s.cfg.PressureGradientMaxPaM.Main
	default:
		return s.cfg.VelocityMaxMS.Distribution, s.cfg.PressureGradientMaxPaM.Distribution
	}
}

func (s *Solver) band(cat flow.Category) config.DiameterBand {
	switch cat {
	case flow.CategoryService:
		return s.cfg.Bands.Service
	case flow.CategoryMain:
		return s.cfg.Bands.Main
	default:
		return s.cfg.Bands.Distribution
	}
}

func (s *Solver) fallbackDiameter(cat flow.Category) float64 {
	switch cat {
	case flow.CategoryService:
		return s.cfg.FallbackDiameterMM.Service / 1000
	case flow.CategoryMain:
		return s.cfg.FallbackDiameterMM.Main / 1000
	default:
		return s.cfg.FallbackDiameterMM.Distribution / 1000
	}
}

func normalizeCategory(cat flow.Category) flow.Category {
	switch cat {
	case flow.CategoryService, flow.CategoryDistribution, flow.CategoryMain:
		return cat
	default:
		// Lenient default for unknown categories; strict rejection
		// happens at the engine boundary when configured.
		return flow.CategoryDistribution
	}
}
