// Package engine composes flow calculation, topology, sizing, and
// compliance into one sizing run. Each run builds its own registry, so
// one Engine may serve concurrent runs.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/fernwaerme/heatnet/pkg/config"
	"github.com/fernwaerme/heatnet/pkg/flow"
	"github.com/fernwaerme/heatnet/pkg/sizing"
	"github.com/fernwaerme/heatnet/pkg/standards"
	"github.com/fernwaerme/heatnet/pkg/topology"
)

// Structural input errors. Everything below this level is normalized
// by clamping or fallback instead of failing.
var (
	ErrNilDemands      = errors.New("building demand map is nil")
	ErrEmptyPipeID     = errors.New("pipe descriptor has empty pipe_id")
	ErrUnknownCategory = errors.New("unknown pipe category")
)

// FallbackReasonNoData marks plan segments whose building has no
// demand entry, so no hydraulic sizing is possible.
const FallbackReasonNoData = "no hydraulic data"

// Engine runs the sizing pipeline against one validated configuration.
type Engine struct {
	cfg       config.SizingConfig
	solver    *sizing.Solver
	evaluator *standards.Evaluator
}

// Outputs is the aggregate result of one sizing run. Built once,
// read-only thereafter. Every pipe present in PipeSizing and
// Compliance is also present in NetworkFlows.
type Outputs struct {
	BuildingFlows map[string]flow.BuildingFlow          `json:"building_flows"`
	NetworkFlows  map[string]flow.NetworkFlow           `json:"network_flows"`
	PipeSizing    map[string]sizing.Result              `json:"pipe_sizing"`
	Compliance    map[string]standards.ComplianceResult `json:"compliance"`
}

// New creates an engine with the default standards set.
func New(cfg config.SizingConfig) *Engine {
	return &Engine{
		cfg:       cfg,
		solver:    sizing.NewSolver(cfg),
		evaluator: standards.DefaultEvaluator(cfg),
	}
}

// NewWithStandards creates an engine evaluating a custom standards set.
func NewWithStandards(cfg config.SizingConfig, ev *standards.Evaluator) *Engine {
	return &Engine{cfg: cfg, solver: sizing.NewSolver(cfg), evaluator: ev}
}

// Config returns the engine's sizing configuration.
func (e *Engine) Config() config.SizingConfig { return e.cfg }

// Run executes the sizing pipeline: register pipes, compute building
// flows, aggregate per pipe, then size and validate each pipe. The
// optional overrides map unions extra building associations into the
// registry before aggregation. Pipes are sized in parallel; the run is
// cancellable between pipes.
func (e *Engine) Run(ctx context.Context, demandKW map[string]float64, pipes []topology.PipeDescriptor, overrides map[string][]string) (*Outputs, error) {
	if demandKW == nil {
		return nil, ErrNilDemands
	}
	for _, d := range pipes {
		if d.PipeID == "" {
			return nil, fmt.Errorf("registering %d pipes: %w", len(pipes), ErrEmptyPipeID)
		}
	}

	// Accumulation phase. Registration must finish before any
	// aggregation because it merges connected-building sets.
	reg := topology.NewRegistry()
	reg.BulkRegister(pipes)
	for pipeID, buildings := range overrides {
		reg.AttachBuildings(pipeID, buildings)
	}

	buildingFlows := flow.CalculateBuildingFlows(e.cfg, demandKW)
	networkFlows := flow.AggregateNetworkFlows(e.cfg, buildingFlows, reg.PipeBuildingMap())

	// Parallel phase: each pipe reads only its own inputs and writes
	// its own slice slot.
	ids := make([]string, 0, len(networkFlows))
	for id := range networkFlows {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sized := make([]sizing.Result, len(ids))
	checked := make([]standards.ComplianceResult, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			nf := networkFlows[id]
			desc, _ := reg.Descriptor(id)
			res := e.solver.SizePipe(id, nf.AggregatedFlowKgS, desc.LengthM, nf.PipeCategory)
			sized[i] = res
			checked[i] = e.evaluator.ValidatePipe(id, res.PipeCategory, res.VelocityMS, res.PressureDropPaPerM)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sizing run aborted: %w", err)
	}

	out := &Outputs{
		BuildingFlows: buildingFlows,
		NetworkFlows:  networkFlows,
		PipeSizing:    make(map[string]sizing.Result, len(ids)),
		Compliance:    make(map[string]standards.ComplianceResult, len(ids)),
	}
	for i, id := range ids {
		out.PipeSizing[id] = sized[i]
		out.Compliance[id] = checked[i]
	}
	return out, nil
}

// RunPlan sizes a routed dual-pipe plan. Segments whose building has
// no demand entry receive fallback sizing instead of aborting the run.
func (e *Engine) RunPlan(ctx context.Context, plan topology.Plan) (*Outputs, error) {
	descs, fallbackIDs := plan.Descriptors()
	out, err := e.Run(ctx, plan.DemandMap(), descs, nil)
	if err != nil {
		return nil, err
	}
	e.ApplyFallback(out, fallbackIDs, FallbackReasonNoData)
	return out, nil
}

// ApplyFallback overwrites the sizing and compliance of the given
// pipes with degraded-mode defaults. Unknown pipe IDs are skipped.
func (e *Engine) ApplyFallback(out *Outputs, pipeIDs []string, reason string) {
	for _, id := range pipeIDs {
		nf, ok := out.NetworkFlows[id]
		if !ok {
			continue
		}
		res := e.solver.Fallback(id, nf.PipeCategory, reason)
		res.LengthM = out.PipeSizing[id].LengthM
		out.PipeSizing[id] = res
		out.Compliance[id] = e.evaluator.FallbackCompliance(id, reason)
	}
}

// ResolveCategory parses an externally supplied category name. Unknown
// names default to distribution, or are rejected when the config asks
// for strict categories.
func (e *Engine) ResolveCategory(raw string) (flow.Category, error) {
	switch cat := flow.Category(raw); cat {
	case flow.CategoryService, flow.CategoryDistribution, flow.CategoryMain:
		return cat, nil
	default:
		if e.cfg.StrictCategories {
			return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
		}
		return flow.CategoryDistribution, nil
	}
}

// SizeSingle sizes and validates one pipe outside a full network run.
func (e *Engine) SizeSingle(pipeID string, flowKgS, lengthM float64, cat flow.Category) (sizing.Result, standards.ComplianceResult) {
	res := e.solver.SizePipe(pipeID, flowKgS, lengthM, cat)
	return res, e.evaluator.ValidatePipe(pipeID, res.PipeCategory, res.VelocityMS, res.PressureDropPaPerM)
}

// RunSummary condenses one run for logs and listings. TotalFlowKgS is
// the demand-side design flow, before diversity.
type RunSummary struct {
	Buildings      int     `json:"buildings"`
	Pipes          int     `json:"pipes"`
	CompliantPipes int     `json:"compliant_pipes"`
	FallbackPipes  int     `json:"fallback_pipes"`
	Violations     int     `json:"violations"`
	TotalLengthM   float64 `json:"total_length_m"`
	MaxVelocityMS  float64 `json:"max_velocity_ms"`
	TotalFlowKgS   float64 `json:"total_flow_kg_s"`
}

// Summary tallies the run.
func (o *Outputs) Summary() RunSummary {
	s := RunSummary{
		Buildings: len(o.BuildingFlows),
		Pipes:     len(o.PipeSizing),
	}
	for _, c := range o.Compliance {
		if c.OverallCompliant {
			s.CompliantPipes++
		}
		s.Violations += len(c.Violations)
	}
	for _, r := range o.PipeSizing {
		if r.SizingSource == sizing.SourceFallback {
			s.FallbackPipes++
		}
		s.TotalLengthM += r.LengthM
		if r.VelocityMS > s.MaxVelocityMS {
			s.MaxVelocityMS = r.VelocityMS
		}
	}
	for _, b := range o.BuildingFlows {
		s.TotalFlowKgS += b.MassFlowKgS
	}
	return s
}
