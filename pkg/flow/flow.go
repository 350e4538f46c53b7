// Package flow converts building heat demands into design mass flows
// and aggregates them per pipe. All functions are total: malformed
// inputs are clamped or skipped, never rejected.
package flow

import (
	"github.com/fernwaerme/heatnet/pkg/config"
)

// Category classifies a pipe by its aggregated flow, selecting which
// velocity and pressure limits apply downstream.
type Category string

const (
	CategoryService      Category = "service_connection"
	CategoryDistribution Category = "distribution_pipe"
	CategoryMain         Category = "main_pipe"
)

// BuildingFlow is the design flow derived from one building's peak
// heat demand. Derived once, never mutated.
type BuildingFlow struct {
	BuildingID         string  `json:"building_id"`
	PeakHeatDemandKW   float64 `json:"peak_heat_demand_kw"`
	DesignHeatDemandKW float64 `json:"design_heat_demand_kw"`
	MassFlowKgS        float64 `json:"mass_flow_kg_s"`
	VolumeFlowM3S      float64 `json:"volume_flow_m3_s"`
}

// NetworkFlow is the aggregated flow carried by one pipe.
type NetworkFlow struct {
	PipeID             string   `json:"pipe_id"`
	AggregatedFlowKgS  float64  `json:"aggregated_flow_kg_s"`
	ConnectedBuildings []string `json:"connected_buildings"`
	PipeCategory       Category `json:"pipe_category"`
}

// HeatToMassFlow converts a heat load in kW to a water mass flow in
// kg/s at the configured temperature spread. Non-positive loads map
// to zero flow.
func HeatToMassFlow(cfg config.SizingConfig, heatKW float64) float64 {
	if heatKW <= 0 {
		return 0
	}
	return heatKW * 1000 / (cfg.CpWaterJKgK * cfg.DeltaTK())
}

// CalculateBuildingFlows derives one BuildingFlow per demand entry.
// Negative demands are clamped to zero, never rejected.
func CalculateBuildingFlows(cfg config.SizingConfig, demandKW map[string]float64) map[string]BuildingFlow {
	flows := make(map[string]BuildingFlow, len(demandKW))
	for id, peak := range demandKW {
		if peak < 0 {
			peak = 0
		}
		design := peak * cfg.SafetyFactor
		mass := HeatToMassFlow(cfg, design)
		flows[id] = BuildingFlow{
			BuildingID:         id,
			PeakHeatDemandKW:   peak,
			DesignHeatDemandKW: design,
			MassFlowKgS:        mass,
			VolumeFlowM3S:      mass / cfg.WaterDensityKgM3,
		}
	}
	return flows
}

// AggregateNetworkFlows sums building flows onto each pipe. Buildings
// listed for a pipe but absent from buildingFlows are skipped. Pipes
// serving more than one building are diversified to model
// non-coincident peaks; single-building pipes are not.
func AggregateNetworkFlows(cfg config.SizingConfig, buildingFlows map[string]BuildingFlow, pipeBuildings map[string][]string) map[string]NetworkFlow {
	flows := make(map[string]NetworkFlow, len(pipeBuildings))
	for pipeID, buildings := range pipeBuildings {
		var sum float64
		for _, b := range buildings {
			if bf, ok := buildingFlows[b]; ok {
				sum += bf.MassFlowKgS
			}
		}
		if len(buildings) > 1 {
			sum *= cfg.DiversityFactor
		}
		flows[pipeID] = NetworkFlow{
			PipeID:             pipeID,
			AggregatedFlowKgS:  sum,
			ConnectedBuildings: buildings,
			PipeCategory:       Categorize(cfg, sum),
		}
	}
	return flows
}

// Categorize maps an aggregated flow to its pipe category using the
// configured thresholds.
func Categorize(cfg config.SizingConfig, flowKgS float64) Category {
	switch {
	case flowKgS < cfg.ServiceFlowMaxKgS:
		return CategoryService
	case flowKgS < cfg.DistributionFlowMaxKgS:
		return CategoryDistribution
	default:
		return CategoryMain
	}
}
