// Package costing prices a sized network: installed capital cost per
// pipe from a DN-keyed unit cost table, plus the annualized capital
// cost over a configurable debt term.
package costing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fernwaerme/heatnet/pkg/sizing"
)

// PipeCost is the priced result for one pipe.
type PipeCost struct {
	PipeID          string          `json:"pipe_id"`
	DiameterNominal string          `json:"diameter_nominal"`
	LengthM         float64         `json:"length_m"`
	UnitCostEURPerM decimal.Decimal `json:"unit_cost_eur_per_m"`
	CapitalCostEUR  decimal.Decimal `json:"capital_cost_eur"`
}

// Report is the priced network.
type Report struct {
	Pipes            map[string]PipeCost `json:"pipes"`
	TotalLengthM     float64             `json:"total_length_m"`
	CapitalCostEUR   decimal.Decimal     `json:"capital_cost_eur"`
	AnnualCapitalEUR decimal.Decimal     `json:"annual_capital_eur"`
	InterestRate     float64             `json:"interest_rate"`
	TermYears        int                 `json:"term_years"`
}

// Options control the financing assumptions.
type Options struct {
	InterestRate float64
	TermYears    int
}

// DefaultOptions returns the standard financing assumptions for buried
// heat networks.
func DefaultOptions() Options {
	return Options{InterestRate: defaultRate, TermYears: defaultTermYr}
}

// Estimate prices every sized pipe. Lengths come from the registry's
// merged descriptors; pipes without a recorded length are priced at
// one metre, matching the sizing floor.
func Estimate(results map[string]sizing.Result, lengthsM map[string]float64, opts Options) *Report {
	report := &Report{
		Pipes:        make(map[string]PipeCost, len(results)),
		InterestRate: opts.InterestRate,
		TermYears:    opts.TermYears,
	}

	total := decimal.Zero
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		r := results[id]
		length := lengthsM[id]
		if length < 1.0 {
			length = 1.0
		}
		unit := UnitCost(r.DiameterNominal, r.DiameterM)
		capital := unit.Mul(decimal.NewFromFloat(length)).Round(2)

		report.Pipes[id] = PipeCost{
			PipeID:          id,
			DiameterNominal: r.DiameterNominal,
			LengthM:         length,
			UnitCostEURPerM: unit,
			CapitalCostEUR:  capital,
		}
		report.TotalLengthM += length
		total = total.Add(capital)
	}

	report.CapitalCostEUR = total
	report.AnnualCapitalEUR = AnnualDebtService(total, opts.InterestRate, opts.TermYears)
	return report
}

// UnitCost returns the installed cost per trench metre for a nominal
// diameter, extending linearly beyond the table.
func UnitCost(nominal string, diameterM float64) decimal.Decimal {
	if c, ok := unitCostPerM[nominal]; ok {
		return decimal.NewFromFloat(c)
	}
	return decimal.NewFromFloat(baseCostPerM + slopePerMOfD*diameterM)
}

// AnnualDebtService applies the standard annuity formula
// P * r(1+r)^n / ((1+r)^n - 1), rounded to cents. Zero interest pays
// the principal off linearly; a zero term costs nothing per year.
func AnnualDebtService(principal decimal.Decimal, rate float64, termYears int) decimal.Decimal {
	if termYears <= 0 {
		return decimal.Zero
	}
	if rate <= 0 {
		return principal.Div(decimal.NewFromInt(int64(termYears))).Round(2)
	}
	n := int32(termYears)
	r := decimal.NewFromFloat(rate)
	factor := decimal.NewFromInt(1).Add(r).Pow(decimal.NewFromInt32(n))
	return principal.Mul(r).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1))).Round(2)
}
