package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/fernwaerme/heatnet/internal/store"
	"github.com/fernwaerme/heatnet/pkg/costing"
	"github.com/fernwaerme/heatnet/pkg/engine"
	"github.com/fernwaerme/heatnet/pkg/project"
	"github.com/fernwaerme/heatnet/pkg/topology"
)

// sizeProject loads a project and runs the full pipeline against it.
func sizeProject(projectPath string) (*project.NetworkProject, *engine.Outputs, map[string]float64, error) {
	proj, err := project.LoadPath(projectPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading project: %w", err)
	}

	demands, descs, fallbackIDs := proj.Resolve()
	eng := engine.New(proj.Sizing)
	out, err := eng.Run(context.Background(), demands, descs, proj.Overrides)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("sizing %s: %w", proj.Name, err)
	}
	eng.ApplyFallback(out, fallbackIDs, engine.FallbackReasonNoData)
	return proj, out, topology.MergedLengths(descs), nil
}

func runSize(projectPath string, jsonOut bool, archivePath string) error {
	proj, out, lengths, err := sizeProject(projectPath)
	if err != nil {
		return err
	}

	var runID string
	if archivePath != "" {
		db, err := store.NewDB(archivePath)
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer db.Close()
		runID, err = store.ArchiveRun(context.Background(), db, proj.Name, out)
		if err != nil {
			return fmt.Errorf("archiving run: %w", err)
		}
	}

	if jsonOut {
		doc := map[string]any{
			"project": proj.Name,
			"summary": out.Summary(),
			"results": out.Flatten(),
			"cost":    costing.Estimate(out.PipeSizing, lengths, costing.DefaultOptions()),
		}
		if runID != "" {
			doc["run_id"] = runID
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	printSizingTable(out)
	fmt.Println()
	printViolations(out)
	printRunSummary(proj.Name, out.Summary())
	if runID != "" {
		fmt.Printf("  Run archived:     %s\n", runID)
	}
	return nil
}

func runValidate(projectPath string) error {
	proj, err := project.LoadPath(projectPath)
	if err != nil {
		return err
	}

	demands, descs, fallbackIDs := proj.Resolve()

	var errs, warnings []string
	if len(demands) == 0 {
		errs = append(errs, "project defines no buildings with heat demand")
	}
	if len(descs) == 0 {
		errs = append(errs, "project defines no pipes")
	}

	connected := make(map[string]bool)
	for _, d := range descs {
		if d.PipeID == "" {
			errs = append(errs, "pipe descriptor with empty pipe_id")
			continue
		}
		if len(d.ConnectedBuildings) == 0 {
			warnings = append(warnings, fmt.Sprintf("pipe %s has no connected buildings and will size to the smallest diameter", d.PipeID))
		}
		for _, b := range d.ConnectedBuildings {
			connected[b] = true
			if _, ok := demands[b]; !ok {
				warnings = append(warnings, fmt.Sprintf("pipe %s references building %s, which has no heat demand", d.PipeID, b))
			}
		}
	}

	buildingIDs := make([]string, 0, len(demands))
	for id := range demands {
		buildingIDs = append(buildingIDs, id)
	}
	sort.Strings(buildingIDs)
	for _, id := range buildingIDs {
		if !connected[id] {
			warnings = append(warnings, fmt.Sprintf("building %s is not connected to any pipe", id))
		}
	}
	for _, id := range fallbackIDs {
		warnings = append(warnings, fmt.Sprintf("plan segment %s has no hydraulic data and will receive fallback sizing", id))
	}

	printFindings(proj.Name, errs, warnings, len(demands), len(descs))

	if len(errs) > 0 {
		os.Exit(1)
	}
	return nil
}

func runCost(projectPath string) error {
	_, out, lengths, err := sizeProject(projectPath)
	if err != nil {
		return err
	}
	printCostReport(costing.Estimate(out.PipeSizing, lengths, costing.DefaultOptions()))
	return nil
}
