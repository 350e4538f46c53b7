package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fernwaerme/heatnet/pkg/topology"
)

func writeProject(t *testing.T, doc string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "network.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

const sampleDoc = `
name: altstadt-west
buildings:
  B1: 50
  B2: 80
pipes:
  - pipe_id: supply_B1
    length_m: 120
    pipe_type: supply
    street_id: street_1
    connected_buildings: [B1]
  - pipe_id: trunk_main
    length_m: 300
    pipe_type: supply
    connected_buildings: [B1, B2]
pipe_building_overrides:
  trunk_main: [B2]
sizing:
  safety_factor: 1.2
`

func TestLoadProject(t *testing.T) {
	dir := writeProject(t, sampleDoc)

	proj, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject() error: %v", err)
	}
	if got, want := proj.Name, "altstadt-west"; got != want {
		t.Errorf("Name = %q, want %q", got, want)
	}
	if got, want := proj.Buildings["B2"], 80.0; got != want {
		t.Errorf("Buildings[B2] = %v, want %v", got, want)
	}
	if got, want := len(proj.Pipes), 2; got != want {
		t.Fatalf("pipes = %d, want %d", got, want)
	}
	if got, want := proj.Pipes[0].PipeType, topology.PipeSupply; got != want {
		t.Errorf("pipe type = %q, want %q", got, want)
	}
	if got, want := proj.Overrides["trunk_main"], 1; len(got) != want {
		t.Errorf("overrides = %v, want one entry", got)
	}

	// The overlay touched only the safety factor.
	if got, want := proj.Sizing.SafetyFactor, 1.2; got != want {
		t.Errorf("SafetyFactor = %v, want %v", got, want)
	}
	if got, want := proj.Sizing.SupplyTempC, 70.0; got != want {
		t.Errorf("SupplyTempC = %v, want default %v", got, want)
	}
}

func TestLoadRejectsBadSizing(t *testing.T) {
	dir := writeProject(t, "name: broken\nsizing:\n  diversity_factor: 3\n")
	if _, err := LoadProject(dir); err == nil {
		t.Error("LoadProject() accepted an out-of-range diversity factor")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadProject(t.TempDir()); err == nil {
		t.Error("LoadProject() on an empty directory returned nil error")
	}
}

func TestLoadPathAcceptsDirOrFile(t *testing.T) {
	dir := writeProject(t, sampleDoc)

	fromDir, err := LoadPath(dir)
	if err != nil {
		t.Fatalf("LoadPath(dir) error: %v", err)
	}
	fromFile, err := LoadPath(filepath.Join(dir, "network.yaml"))
	if err != nil {
		t.Fatalf("LoadPath(file) error: %v", err)
	}
	if fromDir.Name != fromFile.Name || fromDir.Name != "altstadt-west" {
		t.Errorf("LoadPath names = %q / %q, want both altstadt-west", fromDir.Name, fromFile.Name)
	}

	if _, err := LoadPath(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadPath() on a missing path returned nil error")
	}
}

func TestResolveExplicitOnly(t *testing.T) {
	dir := writeProject(t, sampleDoc)
	proj, err := LoadProject(dir)
	if err != nil {
		t.Fatal(err)
	}

	demands, descs, fallback := proj.Resolve()
	if len(demands) != 2 || len(descs) != 2 || len(fallback) != 0 {
		t.Errorf("Resolve() = %d demands, %d descs, %d fallbacks; want 2, 2, 0",
			len(demands), len(descs), len(fallback))
	}
}

func TestResolveMergesPlan(t *testing.T) {
	proj := &NetworkProject{
		Buildings: map[string]float64{"B1": 50},
		Plan: &topology.Plan{
			Consumers: []topology.Consumer{{BuildingID: "B2", HeatDemandKW: 30}},
			Pipes: []topology.RoutedPipe{
				{ID: "supply_B1", Type: topology.PipeSupply, BuildingID: "B1", LengthM: 100},
				{ID: "supply_B2", Type: topology.PipeSupply, BuildingID: "B2", LengthM: 80},
				{ID: "supply_B9", Type: topology.PipeSupply, BuildingID: "B9", LengthM: 40},
			},
		},
	}

	demands, descs, fallback := proj.Resolve()

	// B1 comes from the project buildings, B2 from the plan consumers.
	if got, want := demands["B1"], 50.0; got != want {
		t.Errorf("demands[B1] = %v, want %v", got, want)
	}
	if got, want := demands["B2"], 30.0; got != want {
		t.Errorf("demands[B2] = %v, want %v", got, want)
	}
	if got, want := len(descs), 3; got != want {
		t.Errorf("descs = %d, want %d", got, want)
	}

	// B1 is a project building, so its plan segment is sizeable; only
	// B9 degrades to fallback.
	if len(fallback) != 1 || fallback[0] != "supply_B9" {
		t.Errorf("fallback = %v, want [supply_B9]", fallback)
	}
}

func TestResolveProjectDemandWins(t *testing.T) {
	proj := &NetworkProject{
		Buildings: map[string]float64{"B1": 99},
		Plan: &topology.Plan{
			Consumers: []topology.Consumer{{BuildingID: "B1", HeatDemandKW: 10}},
		},
	}
	demands, _, _ := proj.Resolve()
	if got, want := demands["B1"], 99.0; got != want {
		t.Errorf("demands[B1] = %v, want explicit project value %v", got, want)
	}
}
