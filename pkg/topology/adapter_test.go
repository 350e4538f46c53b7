package topology

import (
	"math"
	"reflect"
	"testing"
)

func samplePlan() Plan {
	return Plan{
		Consumers: []Consumer{
			{BuildingID: "B1", HeatDemandKW: 50},
			{BuildingID: "B2", HeatDemandKW: 80},
		},
		Pipes: []RoutedPipe{
			{ID: "supply_B1", Type: PipeSupply, BuildingID: "B1", LengthM: 120, StreetID: "street_1"},
			{ID: "return_B1", Type: PipeReturn, BuildingID: "B1", Coordinates: [][2]float64{{0, 0}, {30, 40}}},
		},
		ServiceConnections: []ServiceConnection{
			{BuildingID: "B1", PipeType: PipeSupply, DistanceToStreetM: 8.5, StreetSegmentID: "street_1"},
		},
	}
}

func TestDemandMap(t *testing.T) {
	m := samplePlan().DemandMap()
	want := map[string]float64{"B1": 50, "B2": 80}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("DemandMap() = %v, want %v", m, want)
	}
}

func TestDemandMapLaterDuplicateWins(t *testing.T) {
	p := Plan{Consumers: []Consumer{
		{BuildingID: "B1", HeatDemandKW: 50},
		{BuildingID: "B1", HeatDemandKW: 75},
	}}
	if got, want := p.DemandMap()["B1"], 75.0; got != want {
		t.Errorf("DemandMap()[B1] = %v, want %v", got, want)
	}
}

func TestDescriptorsFromPlan(t *testing.T) {
	descs, fallback := samplePlan().Descriptors()

	if len(fallback) != 0 {
		t.Errorf("fallback IDs = %v, want none for fully resolved plan", fallback)
	}
	if got, want := len(descs), 3; got != want {
		t.Fatalf("len(descs) = %d, want %d", got, want)
	}

	byID := make(map[string]PipeDescriptor, len(descs))
	for _, d := range descs {
		byID[d.PipeID] = d
	}

	if d := byID["supply_B1"]; d.LengthM != 120 || d.StreetID != "street_1" {
		t.Errorf("supply_B1 = %+v, want explicit length and street carried through", d)
	}

	// Polyline (0,0)-(30,40) is 50 m.
	if d := byID["return_B1"]; math.Abs(d.LengthM-50) > 1e-9 {
		t.Errorf("return_B1 length = %v, want 50 from coordinates", d.LengthM)
	}

	sc, ok := byID["sc_B1_supply"]
	if !ok {
		t.Fatal("service connection descriptor sc_B1_supply missing")
	}
	if sc.PipeType != PipeService {
		t.Errorf("service connection PipeType = %q, want %q", sc.PipeType, PipeService)
	}
	if got, want := sc.LengthM, 8.5; got != want {
		t.Errorf("service connection length = %v, want %v", got, want)
	}
	if got, want := sc.ConnectedBuildings, []string{"B1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("service connection buildings = %v, want %v", got, want)
	}
}

func TestDescriptorsMarksUnknownBuildingsForFallback(t *testing.T) {
	p := samplePlan()
	p.Pipes = append(p.Pipes, RoutedPipe{ID: "supply_B9", Type: PipeSupply, BuildingID: "B9", LengthM: 60})
	p.ServiceConnections = append(p.ServiceConnections,
		ServiceConnection{BuildingID: "B9", PipeType: PipeReturn, DistanceToStreetM: 5})

	descs, fallback := p.Descriptors()

	want := []string{"supply_B9", "sc_B9_return"}
	if !reflect.DeepEqual(fallback, want) {
		t.Errorf("fallback IDs = %v, want %v", fallback, want)
	}

	// Unsizeable segments are still described for registration.
	found := false
	for _, d := range descs {
		if d.PipeID == "supply_B9" {
			found = true
		}
	}
	if !found {
		t.Error("fallback segment supply_B9 missing from descriptors")
	}
}

func TestDescriptorsSkipsEmptyIDs(t *testing.T) {
	p := Plan{
		Pipes:              []RoutedPipe{{ID: "", Type: PipeSupply, BuildingID: "B1", LengthM: 10}},
		ServiceConnections: []ServiceConnection{{BuildingID: "", DistanceToStreetM: 4}},
	}
	descs, _ := p.Descriptors()
	if len(descs) != 0 {
		t.Errorf("descs = %v, want empty for blank identifiers", descs)
	}
}

func TestServiceConnectionIDPattern(t *testing.T) {
	if got, want := ServiceConnectionID("B12", PipeReturn), "sc_B12_return"; got != want {
		t.Errorf("ServiceConnectionID = %q, want %q", got, want)
	}
}
