package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fernwaerme/heatnet/pkg/config"
	"github.com/fernwaerme/heatnet/pkg/topology"
)

// Load reads a network project from a YAML file. Sizing fields absent
// from the document keep their defaults.
func Load(path string) (*NetworkProject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}

	proj := &NetworkProject{Sizing: config.Default()}
	if err := yaml.Unmarshal(data, proj); err != nil {
		return nil, fmt.Errorf("parsing project YAML: %w", err)
	}
	if err := proj.Sizing.Validate(); err != nil {
		return nil, fmt.Errorf("sizing config in %s: %w", filepath.Base(path), err)
	}
	return proj, nil
}

// LoadProject loads a network project from a project directory. It
// looks for network.yaml in the given directory.
func LoadProject(projectDir string) (*NetworkProject, error) {
	return Load(filepath.Join(projectDir, "network.yaml"))
}

// LoadPath loads a project from either a project directory or the
// network YAML file itself.
func LoadPath(path string) (*NetworkProject, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading project path: %w", err)
	}
	if info.IsDir() {
		return LoadProject(path)
	}
	return Load(path)
}

// Resolve merges the explicit building and pipe lists with the routed
// plan, returning the demand map, all pipe descriptors, and the IDs of
// plan segments that need fallback sizing. Explicit building demands
// take precedence over plan consumer demands.
func (p *NetworkProject) Resolve() (map[string]float64, []topology.PipeDescriptor, []string) {
	demands := make(map[string]float64, len(p.Buildings))
	descs := append([]topology.PipeDescriptor(nil), p.Pipes...)
	var fallbackIDs []string

	if p.Plan != nil {
		plan := *p.Plan
		// Buildings known to the project count as resolvable consumers
		// even when the plan omits them.
		planKnows := make(map[string]struct{}, len(plan.Consumers))
		for _, c := range plan.Consumers {
			planKnows[c.BuildingID] = struct{}{}
		}
		merged := append([]topology.Consumer(nil), plan.Consumers...)
		for id, kw := range p.Buildings {
			if _, ok := planKnows[id]; !ok {
				merged = append(merged, topology.Consumer{BuildingID: id, HeatDemandKW: kw})
			}
		}
		plan.Consumers = merged

		for id, kw := range plan.DemandMap() {
			demands[id] = kw
		}
		planDescs, fb := plan.Descriptors()
		descs = append(descs, planDescs...)
		fallbackIDs = fb
	}

	for id, kw := range p.Buildings {
		demands[id] = kw
	}
	return demands, descs, fallbackIDs
}
