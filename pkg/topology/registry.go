package topology

import "sort"

// Registry is the arena of pipe metadata for one sizing run. Merging
// is idempotent and commutative: length takes the maximum seen, the
// street ID is kept once set, pipe type is kept once set, and the
// connected-building set is unioned. The registry is not safe for
// concurrent registration; accumulate first, then read snapshots.
type Registry struct {
	pipes map[string]*pipeEntry
}

type pipeEntry struct {
	lengthM   float64
	pipeType  PipeType
	streetID  string
	buildings map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pipes: make(map[string]*pipeEntry)}
}

// Register upserts one pipe. Descriptors with an empty pipe ID are
// ignored; the orchestrator rejects them before registration. Negative
// lengths are clamped to zero.
func (r *Registry) Register(pipeID string, lengthM float64, pipeType PipeType, streetID string, connectedBuildings []string) {
	if pipeID == "" {
		return
	}
	if lengthM < 0 {
		lengthM = 0
	}

	e, ok := r.pipes[pipeID]
	if !ok {
		e = &pipeEntry{buildings: make(map[string]struct{})}
		r.pipes[pipeID] = e
	}

	if lengthM > e.lengthM {
		e.lengthM = lengthM
	}
	if e.pipeType == "" {
		e.pipeType = pipeType
	}
	if e.streetID == "" {
		e.streetID = streetID
	}
	for _, b := range connectedBuildings {
		if b != "" {
			e.buildings[b] = struct{}{}
		}
	}
}

// BulkRegister applies Register for each descriptor in input order.
func (r *Registry) BulkRegister(descriptors []PipeDescriptor) {
	for _, d := range descriptors {
		r.Register(d.PipeID, d.LengthM, d.PipeType, d.StreetID, d.ConnectedBuildings)
	}
}

// AttachBuildings unions extra building IDs into an already registered
// pipe, creating the pipe with zero length if it is unknown.
func (r *Registry) AttachBuildings(pipeID string, buildingIDs []string) {
	r.Register(pipeID, 0, "", "", buildingIDs)
}

// PipeBuildingMap returns pipe ID to sorted building IDs. The map and
// its slices are copies; mutating them does not affect the registry.
func (r *Registry) PipeBuildingMap() map[string][]string {
	m := make(map[string][]string, len(r.pipes))
	for id, e := range r.pipes {
		m[id] = sortedBuildings(e.buildings)
	}
	return m
}

// Descriptor returns a snapshot of one pipe's merged metadata.
func (r *Registry) Descriptor(pipeID string) (PipeDescriptor, bool) {
	e, ok := r.pipes[pipeID]
	if !ok {
		return PipeDescriptor{}, false
	}
	return PipeDescriptor{
		PipeID:             pipeID,
		LengthM:            e.lengthM,
		PipeType:           e.pipeType,
		StreetID:           e.streetID,
		ConnectedBuildings: sortedBuildings(e.buildings),
	}, true
}

// Descriptors returns snapshots of all pipes, sorted by pipe ID.
func (r *Registry) Descriptors() []PipeDescriptor {
	out := make([]PipeDescriptor, 0, len(r.pipes))
	for id := range r.pipes {
		d, _ := r.Descriptor(id)
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PipeID < out[j].PipeID })
	return out
}

// Len reports the number of registered pipes.
func (r *Registry) Len() int {
	return len(r.pipes)
}

// Clear resets the registry between independent sizing runs.
func (r *Registry) Clear() {
	r.pipes = make(map[string]*pipeEntry)
}

// MergedLengths merges the descriptors and returns pipe ID to length.
// Used by costing, which prices the same lengths sizing saw.
func MergedLengths(descs []PipeDescriptor) map[string]float64 {
	r := NewRegistry()
	r.BulkRegister(descs)
	m := make(map[string]float64, r.Len())
	for _, d := range r.Descriptors() {
		m[d.PipeID] = d.LengthM
	}
	return m
}

func sortedBuildings(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for b := range set {
		ids = append(ids, b)
	}
	sort.Strings(ids)
	return ids
}
