// Package topology accumulates pipe metadata for a sizing run. Callers
// feed it pipe descriptors from routed dual-pipe plans; it merges
// duplicate registrations and exposes immutable snapshots to the flow
// aggregation stage.
package topology

// PipeType identifies the role of a pipe in the dual-pipe network.
type PipeType string

const (
	PipeSupply  PipeType = "supply"
	PipeReturn  PipeType = "return"
	PipeService PipeType = "service"
)

// PipeDescriptor is one pipe's registered metadata. Multiple
// descriptors for the same pipe ID may arrive from different call
// sites; the registry merges them.
type PipeDescriptor struct {
	PipeID             string   `json:"pipe_id" yaml:"pipe_id"`
	LengthM            float64  `json:"length_m" yaml:"length_m"`
	PipeType           PipeType `json:"pipe_type" yaml:"pipe_type"`
	StreetID           string   `json:"street_id,omitempty" yaml:"street_id,omitempty"`
	ConnectedBuildings []string `json:"connected_buildings" yaml:"connected_buildings"`
}
