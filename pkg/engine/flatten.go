package engine

import (
	"github.com/fernwaerme/heatnet/pkg/flow"
	"github.com/fernwaerme/heatnet/pkg/sizing"
	"github.com/fernwaerme/heatnet/pkg/standards"
)

// Flatten renders the outputs as plain key/value maps for JSON
// embedding by collaborators that do not link against this module's
// types.
func (o *Outputs) Flatten() map[string]any {
	buildings := make(map[string]any, len(o.BuildingFlows))
	for id, bf := range o.BuildingFlows {
		buildings[id] = flattenBuildingFlow(bf)
	}
	network := make(map[string]any, len(o.NetworkFlows))
	for id, nf := range o.NetworkFlows {
		network[id] = flattenNetworkFlow(nf)
	}
	sized := make(map[string]any, len(o.PipeSizing))
	for id, r := range o.PipeSizing {
		sized[id] = flattenSizing(r)
	}
	compliance := make(map[string]any, len(o.Compliance))
	for id, c := range o.Compliance {
		compliance[id] = flattenCompliance(c)
	}
	return map[string]any{
		"building_flows": buildings,
		"network_flows":  network,
		"pipe_sizing":    sized,
		"compliance":     compliance,
	}
}

func flattenBuildingFlow(bf flow.BuildingFlow) map[string]any {
	return map[string]any{
		"building_id":           bf.BuildingID,
		"peak_heat_demand_kw":   bf.PeakHeatDemandKW,
		"design_heat_demand_kw": bf.DesignHeatDemandKW,
		"mass_flow_kg_s":        bf.MassFlowKgS,
		"volume_flow_m3_s":      bf.VolumeFlowM3S,
	}
}

func flattenNetworkFlow(nf flow.NetworkFlow) map[string]any {
	return map[string]any{
		"pipe_id":              nf.PipeID,
		"aggregated_flow_kg_s": nf.AggregatedFlowKgS,
		"connected_buildings":  nf.ConnectedBuildings,
		"pipe_category":        string(nf.PipeCategory),
	}
}

func flattenSizing(r sizing.Result) map[string]any {
	m := map[string]any{
		"pipe_id":                r.PipeID,
		"diameter_m":             r.DiameterM,
		"diameter_nominal":       r.DiameterNominal,
		"velocity_ms":            r.VelocityMS,
		"pressure_drop_pa_per_m": r.PressureDropPaPerM,
		"pressure_drop_bar":      r.PressureDropBar,
		"reynolds_number":        r.ReynoldsNumber,
		"friction_factor":        r.FrictionFactor,
		"pipe_category":          string(r.PipeCategory),
		"sizing_source":          r.SizingSource,
	}
	if r.Fallback != nil {
		m["fallback"] = map[string]any{
			"reason":             r.Fallback.Reason,
			"default_diameter_m": r.Fallback.DefaultDiameterM,
			"generated_at":       r.Fallback.GeneratedAt,
		}
	}
	return m
}

func flattenCompliance(c standards.ComplianceResult) map[string]any {
	violations := make([]any, len(c.Violations))
	for i, v := range c.Violations {
		violations[i] = map[string]any{
			"standard":       v.Standard,
			"violation_type": string(v.ViolationType),
			"message":        v.Message,
			"severity":       string(v.Severity),
			"current_value":  v.CurrentValue,
			"limit_value":    v.LimitValue,
		}
	}
	return map[string]any{
		"pipe_id":              c.PipeID,
		"overall_compliant":    c.OverallCompliant,
		"standards_compliance": c.StandardsCompliance,
		"violations":           violations,
	}
}
