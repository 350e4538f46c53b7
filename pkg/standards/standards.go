// Package standards checks sized pipes against engineering design
// standards. Each standard is an independent capability; a pipe may
// pass one standard and fail another, and every check runs even after
// an earlier one has failed.
package standards

import (
	"fmt"

	"github.com/fernwaerme/heatnet/pkg/config"
	"github.com/fernwaerme/heatnet/pkg/flow"
)

// ViolationType identifies what a violation is about.
type ViolationType string

const (
	ViolationVelocityExceeded     ViolationType = "velocity_exceeded"
	ViolationPressureDropExceeded ViolationType = "pressure_drop_exceeded"
	ViolationFallback             ViolationType = "fallback"
)

// Severity ranks a violation.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Violation is one failed check against one standard.
type Violation struct {
	Standard      string        `json:"standard"`
	ViolationType ViolationType `json:"violation_type"`
	Message       string        `json:"message"`
	Severity      Severity      `json:"severity"`
	CurrentValue  float64       `json:"current_value"`
	LimitValue    float64       `json:"limit_value"`
}

// ComplianceResult is the verdict for one pipe across all standards.
type ComplianceResult struct {
	PipeID              string          `json:"pipe_id"`
	OverallCompliant    bool            `json:"overall_compliant"`
	StandardsCompliance map[string]bool `json:"standards_compliance"`
	Violations          []Violation     `json:"violations"`
}

// Standard is one engineering standard's check against a pipe's
// hydraulic state.
type Standard interface {
	Name() string
	Check(velocityMS, pressureDropPaM float64, cat flow.Category) (bool, []Violation)
}

// CategoryStandard applies per-category velocity and pressure-gradient
// limits, modelled on EN 13941 design practice.
type CategoryStandard struct {
	velocity config.PerCategory
	pressure config.PerCategory
}

// NewCategoryStandard builds the category-aware standard from the
// configured limits.
func NewCategoryStandard(cfg config.SizingConfig) *CategoryStandard {
	return &CategoryStandard{velocity: cfg.VelocityMaxMS, pressure: cfg.PressureGradientMaxPaM}
}

func (s *CategoryStandard) Name() string { return "EN13941" }

func (s *CategoryStandard) Check(velocityMS, pressureDropPaM float64, cat flow.Category) (bool, []Violation) {
	vLimit, pLimit := perCategoryValue(s.velocity, cat), perCategoryValue(s.pressure, cat)
	return checkLimits(s.Name(), velocityMS, vLimit, pressureDropPaM, pLimit)
}

// EnvelopeStandard applies one fixed velocity/pressure envelope to
// every pipe regardless of category, modelled on AGFW FW 401 guidance.
type EnvelopeStandard struct {
	VelocityMaxMS  float64
	PressureMaxPaM float64
}

// NewEnvelopeStandard builds the category-agnostic envelope standard
// with its default 2.0 m/s and 5000 Pa/m ceilings.
func NewEnvelopeStandard() *EnvelopeStandard {
	return &EnvelopeStandard{VelocityMaxMS: 2.0, PressureMaxPaM: 5000}
}

func (s *EnvelopeStandard) Name() string { return "AGFW_FW401" }

func (s *EnvelopeStandard) Check(velocityMS, pressureDropPaM float64, _ flow.Category) (bool, []Violation) {
	return checkLimits(s.Name(), velocityMS, s.VelocityMaxMS, pressureDropPaM, s.PressureMaxPaM)
}

// checkLimits runs both limit checks; neither short-circuits, so one
// standard can emit two violations for the same pipe.
func checkLimits(name string, velocityMS, vLimit, pressureDropPaM, pLimit float64) (bool, []Violation) {
	var violations []Violation
	if velocityMS > vLimit {
		violations = append(violations, Violation{
			Standard:      name,
			ViolationType: ViolationVelocityExceeded,
			Message:       fmt.Sprintf("velocity %.3f m/s exceeds %s limit %.3f m/s", velocityMS, name, vLimit),
			Severity:      SeverityHigh,
			CurrentValue:  velocityMS,
			LimitValue:    vLimit,
		})
	}
	if pressureDropPaM > pLimit {
		violations = append(violations, Violation{
			Standard:      name,
			ViolationType: ViolationPressureDropExceeded,
			Message:       fmt.Sprintf("pressure gradient %.1f Pa/m exceeds %s limit %.1f Pa/m", pressureDropPaM, name, pLimit),
			Severity:      SeverityMedium,
			CurrentValue:  pressureDropPaM,
			LimitValue:    pLimit,
		})
	}
	return len(violations) == 0, violations
}

func perCategoryValue(p config.PerCategory, cat flow.Category) float64 {
	switch cat {
	case flow.CategoryService:
		return p.Service
	case flow.CategoryMain:
		return p.Main
	default:
		return p.Distribution
	}
}

// Evaluator runs every registered standard against each pipe.
type Evaluator struct {
	standards []Standard
}

// NewEvaluator registers the given standards in evaluation order.
func NewEvaluator(stds ...Standard) *Evaluator {
	return &Evaluator{standards: stds}
}

// DefaultEvaluator registers the category-aware and envelope standards.
func DefaultEvaluator(cfg config.SizingConfig) *Evaluator {
	return NewEvaluator(NewCategoryStandard(cfg), NewEnvelopeStandard())
}

// ValidatePipe checks one pipe's hydraulic state against all
// registered standards. Overall compliance is the conjunction of the
// per-standard flags.
func (e *Evaluator) ValidatePipe(pipeID string, cat flow.Category, velocityMS, pressureDropPaM float64) ComplianceResult {
	result := ComplianceResult{
		PipeID:              pipeID,
		OverallCompliant:    true,
		StandardsCompliance: make(map[string]bool, len(e.standards)),
	}
	for _, std := range e.standards {
		ok, violations := std.Check(velocityMS, pressureDropPaM, cat)
		result.StandardsCompliance[std.Name()] = ok
		result.Violations = append(result.Violations, violations...)
		if !ok {
			result.OverallCompliant = false
		}
	}
	return result
}

// FallbackCompliance marks a fallback-sized pipe non-compliant with
// every standard and attaches the single synthetic fallback violation.
// Degraded-mode policy, not an error path.
func (e *Evaluator) FallbackCompliance(pipeID, reason string) ComplianceResult {
	result := ComplianceResult{
		PipeID:              pipeID,
		OverallCompliant:    false,
		StandardsCompliance: make(map[string]bool, len(e.standards)),
		Violations: []Violation{{
			Standard:      "fallback_sizing",
			ViolationType: ViolationFallback,
			Message:       fmt.Sprintf("fallback sizing applied: %s", reason),
			Severity:      SeverityHigh,
		}},
	}
	for _, std := range e.standards {
		result.StandardsCompliance[std.Name()] = false
	}
	return result
}
