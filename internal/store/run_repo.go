package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fernwaerme/heatnet/pkg/engine"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is one archived sizing run. OutputsJSON holds the full
// flattened outputs for later retrieval; the pipe_results table holds
// the per-pipe columns used by listings.
type RunRecord struct {
	RunID       string            `json:"run_id"`
	ProjectName string            `json:"project_name"`
	Summary     engine.RunSummary `json:"summary"`
	OutputsJSON string            `json:"-"`
	CreatedAt   int64             `json:"created_at"`
}

// PipeRow is one pipe of an archived run.
type PipeRow struct {
	RunID              string  `json:"run_id"`
	PipeID             string  `json:"pipe_id"`
	DiameterNominal    string  `json:"diameter_nominal"`
	DiameterM          float64 `json:"diameter_m"`
	VelocityMS         float64 `json:"velocity_ms"`
	PressureDropPaPerM float64 `json:"pressure_drop_pa_per_m"`
	PipeCategory       string  `json:"pipe_category"`
	SizingSource       string  `json:"sizing_source"`
	Compliant          bool    `json:"compliant"`
}

// RunRepo handles persistence for archived runs.
type RunRepo struct{}

// CreateTx inserts a run and its pipe rows within an existing
// transaction.
func (r *RunRepo) CreateTx(ctx context.Context, tx *sql.Tx, rec RunRecord, out *engine.Outputs) error {
	const q = `INSERT INTO runs (run_id, project_name, buildings, pipes, compliant_pipes, fallback_pipes, violations, total_length_m, max_velocity_ms, total_flow_kg_s, outputs_json, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		rec.RunID,
		rec.ProjectName,
		rec.Summary.Buildings,
		rec.Summary.Pipes,
		rec.Summary.CompliantPipes,
		rec.Summary.FallbackPipes,
		rec.Summary.Violations,
		rec.Summary.TotalLengthM,
		rec.Summary.MaxVelocityMS,
		rec.Summary.TotalFlowKgS,
		rec.OutputsJSON,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	const pq = `INSERT INTO pipe_results (run_id, pipe_id, diameter_nominal, diameter_m, velocity_ms, pressure_drop_pa_per_m, pipe_category, sizing_source, compliant)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	ids := make([]string, 0, len(out.PipeSizing))
	for id := range out.PipeSizing {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		res := out.PipeSizing[id]
		compliant := 0
		if c, ok := out.Compliance[id]; ok && c.OverallCompliant {
			compliant = 1
		}
		if _, err := tx.ExecContext(ctx, pq,
			rec.RunID,
			id,
			res.DiameterNominal,
			res.DiameterM,
			res.VelocityMS,
			res.PressureDropPaPerM,
			string(res.PipeCategory),
			res.SizingSource,
			compliant,
		); err != nil {
			return fmt.Errorf("insert pipe result %s: %w", id, err)
		}
	}
	return nil
}

// GetByID returns one archived run, including its outputs JSON.
func (r *RunRepo) GetByID(ctx context.Context, db *sql.DB, runID string) (*RunRecord, error) {
	const q = `SELECT run_id, project_name, buildings, pipes, compliant_pipes, fallback_pipes, violations, total_length_m, max_velocity_ms, total_flow_kg_s, outputs_json, created_at
FROM runs WHERE run_id = ?`

	var rec RunRecord
	err := db.QueryRowContext(ctx, q, runID).Scan(
		&rec.RunID,
		&rec.ProjectName,
		&rec.Summary.Buildings,
		&rec.Summary.Pipes,
		&rec.Summary.CompliantPipes,
		&rec.Summary.FallbackPipes,
		&rec.Summary.Violations,
		&rec.Summary.TotalLengthM,
		&rec.Summary.MaxVelocityMS,
		&rec.Summary.TotalFlowKgS,
		&rec.OutputsJSON,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &rec, nil
}

// ListRecent returns up to limit runs, newest first. The outputs JSON
// is omitted from listings.
func (r *RunRepo) ListRecent(ctx context.Context, db *sql.DB, limit int) ([]RunRecord, error) {
	const q = `SELECT run_id, project_name, buildings, pipes, compliant_pipes, fallback_pipes, violations, total_length_m, max_velocity_ms, total_flow_kg_s, created_at
FROM runs ORDER BY created_at DESC, run_id LIMIT ?`

	rows, err := db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.ProjectName,
			&rec.Summary.Buildings,
			&rec.Summary.Pipes,
			&rec.Summary.CompliantPipes,
			&rec.Summary.FallbackPipes,
			&rec.Summary.Violations,
			&rec.Summary.TotalLengthM,
			&rec.Summary.MaxVelocityMS,
			&rec.Summary.TotalFlowKgS,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// PipeResults returns the pipe rows of one run, sorted by pipe ID.
func (r *RunRepo) PipeResults(ctx context.Context, db *sql.DB, runID string) ([]PipeRow, error) {
	const q = `SELECT run_id, pipe_id, diameter_nominal, diameter_m, velocity_ms, pressure_drop_pa_per_m, pipe_category, sizing_source, compliant
FROM pipe_results WHERE run_id = ? ORDER BY pipe_id`

	rows, err := db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, fmt.Errorf("list pipe results: %w", err)
	}
	defer rows.Close()

	var out []PipeRow
	for rows.Next() {
		var p PipeRow
		var compliant int
		if err := rows.Scan(
			&p.RunID,
			&p.PipeID,
			&p.DiameterNominal,
			&p.DiameterM,
			&p.VelocityMS,
			&p.PressureDropPaPerM,
			&p.PipeCategory,
			&p.SizingSource,
			&compliant,
		); err != nil {
			return nil, fmt.Errorf("scan pipe result: %w", err)
		}
		p.Compliant = compliant != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

// ArchiveRun stores one completed run and returns its generated ID.
func ArchiveRun(ctx context.Context, db *sql.DB, projectName string, out *engine.Outputs) (string, error) {
	payload, err := json.Marshal(out.Flatten())
	if err != nil {
		return "", fmt.Errorf("marshal outputs: %w", err)
	}
	rec := RunRecord{
		RunID:       uuid.NewString(),
		ProjectName: projectName,
		Summary:     out.Summary(),
		OutputsJSON: string(payload),
		CreatedAt:   time.Now().Unix(),
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin archive tx: %w", err)
	}
	repo := &RunRepo{}
	if err := repo.CreateTx(ctx, tx, rec, out); err != nil {
		tx.Rollback()
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit archive: %w", err)
	}
	return rec.RunID, nil
}
