package main

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fernwaerme/heatnet/pkg/costing"
	"github.com/fernwaerme/heatnet/pkg/engine"
)

func printSizingTable(out *engine.Outputs) {
	ids := make([]string, 0, len(out.PipeSizing))
	for id := range out.PipeSizing {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("%-24s %6s %11s %9s %11s %14s %10s\n",
		"Pipe", "DN", "Flow kg/s", "Vel m/s", "Grad Pa/m", "Source", "Compliant")
	fmt.Printf("%-24s %6s %11s %9s %11s %14s %10s\n",
		"------------------------", "------", "-----------", "---------", "-----------", "--------------", "----------")

	for _, id := range ids {
		res := out.PipeSizing[id]
		nf := out.NetworkFlows[id]
		compliant := "yes"
		if c, ok := out.Compliance[id]; ok && !c.OverallCompliant {
			compliant = "NO"
		}
		fmt.Printf("%-24s %6s %11.3f %9.2f %11.1f %14s %10s\n",
			id, res.DiameterNominal, nf.AggregatedFlowKgS, res.VelocityMS, res.PressureDropPaPerM, res.SizingSource, compliant)
	}
}

func printViolations(out *engine.Outputs) {
	ids := make([]string, 0, len(out.Compliance))
	for id := range out.Compliance {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	count := 0
	for _, id := range ids {
		for _, v := range out.Compliance[id].Violations {
			if count == 0 {
				fmt.Println("Violations:")
			}
			count++
			fmt.Printf("  [%s] %s: %s (limit %.2f)\n", v.Severity, id, v.Message, v.LimitValue)
		}
	}
	if count > 0 {
		fmt.Println()
	}
}

func printRunSummary(name string, s engine.RunSummary) {
	fmt.Println("Summary")
	fmt.Println("-------")
	fmt.Printf("  Project:          %s\n", name)
	fmt.Printf("  Buildings:        %d\n", s.Buildings)
	fmt.Printf("  Pipes sized:      %d\n", s.Pipes)
	fmt.Printf("  Compliant:        %d\n", s.CompliantPipes)
	fmt.Printf("  Fallback sized:   %d\n", s.FallbackPipes)
	fmt.Printf("  Violations:       %d\n", s.Violations)
	fmt.Printf("  Network length:   %.1f m\n", s.TotalLengthM)
	fmt.Printf("  Peak velocity:    %.2f m/s\n", s.MaxVelocityMS)
	fmt.Printf("  Design flow:      %.3f kg/s\n", s.TotalFlowKgS)
}

func printFindings(name string, errs, warnings []string, buildings, pipes int) {
	if len(errs) > 0 {
		fmt.Printf("ERRORS (%d):\n", len(errs))
		for _, e := range errs {
			fmt.Printf("  %s\n", e)
		}
		fmt.Println()
	}

	if len(warnings) > 0 {
		fmt.Printf("WARNINGS (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("  %s\n", w)
		}
		fmt.Println()
	}

	if len(errs) == 0 {
		fmt.Printf("Result: VALID (%s: %d buildings, %d pipes)\n", name, buildings, pipes)
	} else {
		fmt.Printf("Result: INVALID (%s: %d errors, %d warnings)\n", name, len(errs), len(warnings))
	}
}

func printCostReport(r *costing.Report) {
	fmt.Println("Capital Cost Estimate")
	fmt.Println("=====================")
	fmt.Println()

	ids := make([]string, 0, len(r.Pipes))
	for id := range r.Pipes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("%-24s %6s %11s %11s %15s\n", "Pipe", "DN", "Length m", "EUR/m", "Capital EUR")
	fmt.Printf("%-24s %6s %11s %11s %15s\n",
		"------------------------", "------", "-----------", "-----------", "---------------")
	for _, id := range ids {
		p := r.Pipes[id]
		fmt.Printf("%-24s %6s %11.1f %11s %15s\n",
			id, p.DiameterNominal, p.LengthM, p.UnitCostEURPerM.StringFixed(2), p.CapitalCostEUR.StringFixed(2))
	}

	fmt.Println()
	fmt.Println("Summary")
	fmt.Println("-------")
	fmt.Printf("  Total trench length:   %.1f m\n", r.TotalLengthM)
	fmt.Printf("  Capital cost:          %s EUR\n", formatMoney(r.CapitalCostEUR))
	fmt.Printf("  Annual capital cost:   %s EUR (%.1f%% over %d years)\n",
		formatMoney(r.AnnualCapitalEUR), r.InterestRate*100, r.TermYears)
}

func formatMoney(v decimal.Decimal) string {
	f, _ := v.Float64()
	if f >= 1_000_000_000 {
		return fmt.Sprintf("%.2fB", f/1_000_000_000)
	}
	if f >= 1_000_000 {
		return fmt.Sprintf("%.2fM", f/1_000_000)
	}
	if f >= 1_000 {
		return fmt.Sprintf("%.0fK", f/1_000)
	}
	return v.StringFixed(2)
}
