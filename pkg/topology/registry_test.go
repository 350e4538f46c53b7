package topology

import (
	"reflect"
	"testing"
)

func TestRegisterMergesDuplicates(t *testing.T) {
	r := NewRegistry()
	r.Register("p1", 120, PipeSupply, "", []string{"B2"})
	r.Register("p1", 80, PipeSupply, "street_7", []string{"B1"})

	d, ok := r.Descriptor("p1")
	if !ok {
		t.Fatal("p1 not registered")
	}
	if got, want := d.LengthM, 120.0; got != want {
		t.Errorf("LengthM = %v, want max %v", got, want)
	}
	if got, want := d.StreetID, "street_7"; got != want {
		t.Errorf("StreetID = %q, want %q", got, want)
	}
	if got, want := d.ConnectedBuildings, []string{"B1", "B2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ConnectedBuildings = %v, want %v", got, want)
	}
}

func TestRegisterKeepsFirstStreet(t *testing.T) {
	r := NewRegistry()
	r.Register("p1", 10, PipeSupply, "street_1", nil)
	r.Register("p1", 10, PipeSupply, "street_2", nil)

	d, _ := r.Descriptor("p1")
	if got, want := d.StreetID, "street_1"; got != want {
		t.Errorf("StreetID = %q, want first non-empty %q", got, want)
	}
}

func TestRegisterIdempotent(t *testing.T) {
	d := PipeDescriptor{
		PipeID:             "p1",
		LengthM:            45,
		PipeType:           PipeReturn,
		StreetID:           "s1",
		ConnectedBuildings: []string{"B1", "B2"},
	}

	once := NewRegistry()
	once.BulkRegister([]PipeDescriptor{d})

	twice := NewRegistry()
	twice.BulkRegister([]PipeDescriptor{d, d})

	g1, _ := once.Descriptor("p1")
	g2, _ := twice.Descriptor("p1")
	if !reflect.DeepEqual(g1, g2) {
		t.Errorf("double registration differs: %+v vs %+v", g1, g2)
	}
}

func TestRegisterCommutative(t *testing.T) {
	a := PipeDescriptor{PipeID: "p1", LengthM: 30, PipeType: PipeSupply, StreetID: "s1", ConnectedBuildings: []string{"B1"}}
	b := PipeDescriptor{PipeID: "p1", LengthM: 55, PipeType: PipeSupply, ConnectedBuildings: []string{"B2"}}

	ab := NewRegistry()
	ab.BulkRegister([]PipeDescriptor{a, b})
	ba := NewRegistry()
	ba.BulkRegister([]PipeDescriptor{b, a})

	g1, _ := ab.Descriptor("p1")
	g2, _ := ba.Descriptor("p1")
	if g1.LengthM != g2.LengthM {
		t.Errorf("length order-dependent: %v vs %v", g1.LengthM, g2.LengthM)
	}
	if !reflect.DeepEqual(g1.ConnectedBuildings, g2.ConnectedBuildings) {
		t.Errorf("building union order-dependent: %v vs %v", g1.ConnectedBuildings, g2.ConnectedBuildings)
	}
}

func TestRegisterIgnoresEmptyID(t *testing.T) {
	r := NewRegistry()
	r.Register("", 10, PipeSupply, "", []string{"B1"})
	if got := r.Len(); got != 0 {
		t.Errorf("Len() = %d after empty-ID register, want 0", got)
	}
}

func TestRegisterClampsNegativeLength(t *testing.T) {
	r := NewRegistry()
	r.Register("p1", -5, PipeSupply, "", nil)
	d, _ := r.Descriptor("p1")
	if d.LengthM != 0 {
		t.Errorf("LengthM = %v, want negative clamped to 0", d.LengthM)
	}
}

func TestPipeBuildingMapSortedAndDetached(t *testing.T) {
	r := NewRegistry()
	r.Register("p1", 10, PipeSupply, "", []string{"B3", "B1", "B2"})

	m := r.PipeBuildingMap()
	if got, want := m["p1"], []string{"B1", "B2", "B3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("building list = %v, want sorted %v", got, want)
	}

	// Mutating the snapshot must not leak back into the registry.
	m["p1"][0] = "mutated"
	d, _ := r.Descriptor("p1")
	if got, want := d.ConnectedBuildings[0], "B1"; got != want {
		t.Errorf("registry building = %q after snapshot mutation, want %q", got, want)
	}
}

func TestAttachBuildings(t *testing.T) {
	r := NewRegistry()
	r.Register("p1", 40, PipeSupply, "s1", []string{"B1"})
	r.AttachBuildings("p1", []string{"B2"})

	d, _ := r.Descriptor("p1")
	if got, want := d.ConnectedBuildings, []string{"B1", "B2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ConnectedBuildings = %v, want %v", got, want)
	}
	if got, want := d.LengthM, 40.0; got != want {
		t.Errorf("LengthM = %v, want untouched %v", got, want)
	}
}

func TestDescriptorsSorted(t *testing.T) {
	r := NewRegistry()
	r.Register("p2", 10, PipeSupply, "", nil)
	r.Register("p1", 10, PipeReturn, "", nil)
	r.Register("p10", 10, PipeService, "", nil)

	descs := r.Descriptors()
	want := []string{"p1", "p10", "p2"}
	for i, d := range descs {
		if d.PipeID != want[i] {
			t.Errorf("Descriptors()[%d] = %q, want %q", i, d.PipeID, want[i])
		}
	}
}

func TestMergedLengths(t *testing.T) {
	descs := []PipeDescriptor{
		{PipeID: "p1", LengthM: 80},
		{PipeID: "p1", LengthM: 120},
		{PipeID: "p2", LengthM: 45},
	}
	m := MergedLengths(descs)
	if got, want := m["p1"], 120.0; got != want {
		t.Errorf("p1 length = %v, want merged max %v", got, want)
	}
	if got, want := m["p2"], 45.0; got != want {
		t.Errorf("p2 length = %v, want %v", got, want)
	}
}

func TestClear(t *testing.T) {
	r := NewRegistry()
	r.Register("p1", 10, PipeSupply, "", []string{"B1"})
	r.Clear()
	if got := r.Len(); got != 0 {
		t.Errorf("Len() = %d after Clear, want 0", got)
	}
	if _, ok := r.Descriptor("p1"); ok {
		t.Error("Descriptor(p1) still present after Clear")
	}
}
