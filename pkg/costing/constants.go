package costing

// Installed cost of one trench metre of pre-insulated bonded pipe
// pair, by nominal diameter. Covers excavation, pipe, fittings, and
// reinstatement at central-European price levels.
var unitCostPerM = map[string]float64{
	"DN25":  385,
	"DN32":  420,
	"DN40":  460,
	"DN50":  515,
	"DN63":  585,
	"DN80":  665,
	"DN100": 770,
	"DN125": 890,
	"DN150": 1020,
	"DN200": 1300,
	"DN250": 1600,
	"DN300": 1910,
	"DN400": 2560,
}

// Linear extension for diameters outside the table, fitted to its
// endpoints.
const (
	baseCostPerM  = 240.0  // EUR/m at zero diameter
	slopePerMOfD  = 5800.0 // EUR/m per metre of diameter
	defaultRate   = 0.04   // annual interest on network capital
	defaultTermYr = 40     // depreciation horizon for buried pipe
)
