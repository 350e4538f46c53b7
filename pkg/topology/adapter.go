package topology

import (
	"fmt"

	"github.com/fernwaerme/heatnet/pkg/geo"
)

// Plan is the routed dual-pipe topology produced by the GIS
// collaborator: one consumer per building, per-building supply and
// return segments, and short service connections from each building
// to its street.
type Plan struct {
	Consumers          []Consumer          `json:"consumers" yaml:"consumers"`
	Pipes              []RoutedPipe        `json:"pipes" yaml:"pipes"`
	ServiceConnections []ServiceConnection `json:"service_connections" yaml:"service_connections"`
}

// Consumer is one heat customer in the plan.
type Consumer struct {
	BuildingID   string  `json:"building_id" yaml:"building_id"`
	HeatDemandKW float64 `json:"heat_demand_kw" yaml:"heat_demand_kw"`
}

// RoutedPipe is one routed segment. Length is taken from LengthM when
// positive, otherwise from the coordinate polyline.
type RoutedPipe struct {
	ID          string       `json:"id" yaml:"id"`
	Type        PipeType     `json:"type" yaml:"type"`
	BuildingID  string       `json:"building_id" yaml:"building_id"`
	LengthM     float64      `json:"length_m,omitempty" yaml:"length_m,omitempty"`
	Coordinates [][2]float64 `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
	StreetID    string       `json:"street_id,omitempty" yaml:"street_id,omitempty"`
}

// ServiceConnection is the stub from a building to its street segment.
type ServiceConnection struct {
	BuildingID        string   `json:"building_id" yaml:"building_id"`
	PipeType          PipeType `json:"pipe_type" yaml:"pipe_type"`
	DistanceToStreetM float64  `json:"distance_to_street_m" yaml:"distance_to_street_m"`
	StreetSegmentID   string   `json:"street_segment_id,omitempty" yaml:"street_segment_id,omitempty"`
}

// ServiceConnectionID builds the canonical pipe ID for a service
// connection leg, e.g. "sc_B1_supply".
func ServiceConnectionID(buildingID string, pipeType PipeType) string {
	return fmt.Sprintf("sc_%s_%s", buildingID, pipeType)
}

// DemandMap extracts building ID to peak heat demand in kW. Later
// duplicate consumer entries win.
func (p Plan) DemandMap() map[string]float64 {
	m := make(map[string]float64, len(p.Consumers))
	for _, c := range p.Consumers {
		if c.BuildingID == "" {
			continue
		}
		m[c.BuildingID] = c.HeatDemandKW
	}
	return m
}

// Descriptors converts the plan into pipe descriptors plus the IDs of
// segments that cannot be sized hydraulically because their building
// is absent from the consumer set. Those segments are still described
// (so they appear in the network) but the caller must size them via
// the fallback path.
func (p Plan) Descriptors() (descs []PipeDescriptor, fallbackIDs []string) {
	known := make(map[string]struct{}, len(p.Consumers))
	for _, c := range p.Consumers {
		if c.BuildingID != "" {
			known[c.BuildingID] = struct{}{}
		}
	}

	seenFallback := make(map[string]struct{})
	markFallback := func(pipeID string) {
		if _, dup := seenFallback[pipeID]; dup {
			return
		}
		seenFallback[pipeID] = struct{}{}
		fallbackIDs = append(fallbackIDs, pipeID)
	}

	for _, rp := range p.Pipes {
		if rp.ID == "" {
			continue
		}
		length := rp.LengthM
		if length <= 0 && len(rp.Coordinates) >= 2 {
			length = geo.PolylineLength(geo.PolylineFromPairs(rp.Coordinates))
		}

		var buildings []string
		if rp.BuildingID != "" {
			buildings = []string{rp.BuildingID}
		}
		descs = append(descs, PipeDescriptor{
			PipeID:             rp.ID,
			LengthM:            length,
			PipeType:           rp.Type,
			StreetID:           rp.StreetID,
			ConnectedBuildings: buildings,
		})

		if _, ok := known[rp.BuildingID]; !ok {
			markFallback(rp.ID)
		}
	}

	for _, sc := range p.ServiceConnections {
		if sc.BuildingID == "" {
			continue
		}
		leg := sc.PipeType
		if leg == "" {
			leg = PipeSupply
		}
		id := ServiceConnectionID(sc.BuildingID, leg)
		descs = append(descs, PipeDescriptor{
			PipeID:             id,
			LengthM:            sc.DistanceToStreetM,
			PipeType:           PipeService,
			StreetID:           sc.StreetSegmentID,
			ConnectedBuildings: []string{sc.BuildingID},
		})

		if _, ok := known[sc.BuildingID]; !ok {
			markFallback(id)
		}
	}

	return descs, fallbackIDs
}
