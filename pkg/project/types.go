// Package project loads heat-network project files: buildings, pipe
// descriptors, an optional routed plan, and sizing configuration
// overrides, all from one YAML document.
package project

import (
	"github.com/fernwaerme/heatnet/pkg/config"
	"github.com/fernwaerme/heatnet/pkg/topology"
)

// NetworkProject is the top-level project document.
type NetworkProject struct {
	Name string `yaml:"name" json:"name"`

	// Buildings maps building ID to peak heat demand in kW.
	Buildings map[string]float64 `yaml:"buildings" json:"buildings"`

	// Pipes are explicit descriptors, typically from a network export.
	Pipes []topology.PipeDescriptor `yaml:"pipes" json:"pipes"`

	// Plan is an optional routed dual-pipe plan from the GIS
	// collaborator; its segments are merged with Pipes.
	Plan *topology.Plan `yaml:"plan,omitempty" json:"plan,omitempty"`

	// Overrides unions extra building associations into pipes before
	// aggregation.
	Overrides map[string][]string `yaml:"pipe_building_overrides,omitempty" json:"pipe_building_overrides,omitempty"`

	// Sizing starts from the defaults; the YAML overlays only the
	// fields it names.
	Sizing config.SizingConfig `yaml:"sizing" json:"sizing"`
}
