// Package server exposes one sized network project over HTTP for
// inspection: flows, sizing, compliance, cost, and the run archive.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fernwaerme/heatnet/internal/store"
	"github.com/fernwaerme/heatnet/pkg/costing"
	"github.com/fernwaerme/heatnet/pkg/engine"
	"github.com/fernwaerme/heatnet/pkg/project"
	"github.com/fernwaerme/heatnet/pkg/topology"
)

// Server is the local inspection server for a sized project.
type Server struct {
	projectPath string
	port        int
	log         *slog.Logger
	db          *sql.DB

	// Pipeline state, replaced wholesale on reload.
	mu      sync.RWMutex
	proj    *project.NetworkProject
	eng     *engine.Engine
	outputs *engine.Outputs
	report  *costing.Report
}

// New creates a server for the given project path. The path may be a
// project directory or the network YAML file itself.
func New(projectPath string, port int) *Server {
	return &Server{
		projectPath: projectPath,
		port:        port,
		log:         slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

// WithArchive attaches a run archive database. Runs triggered over
// HTTP are persisted there, and the /api/runs endpoints serve from it.
func (s *Server) WithArchive(db *sql.DB) *Server {
	s.db = db
	return s
}

// Start loads the project, runs the sizing pipeline once, and serves
// until the listener fails.
func (s *Server) Start() error {
	if err := s.Reload(); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", s.port)
	s.log.Info("heatnet server starting", "addr", addr, "project", s.projectPath)
	return http.ListenAndServe(addr, s.Routes())
}

// Reload reads the project from disk and recomputes the full pipeline.
func (s *Server) Reload() error {
	proj, err := project.LoadPath(s.projectPath)
	if err != nil {
		return err
	}

	demands, descs, fallbackIDs := proj.Resolve()
	eng := engine.New(proj.Sizing)
	out, err := eng.Run(context.Background(), demands, descs, proj.Overrides)
	if err != nil {
		return fmt.Errorf("sizing project %s: %w", proj.Name, err)
	}
	eng.ApplyFallback(out, fallbackIDs, engine.FallbackReasonNoData)
	report := costing.Estimate(out.PipeSizing, topology.MergedLengths(descs), costing.DefaultOptions())

	s.mu.Lock()
	s.proj = proj
	s.eng = eng
	s.outputs = out
	s.report = report
	s.mu.Unlock()
	return nil
}

// Routes builds the HTTP handler tree.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/config", s.handleConfig)
	mux.HandleFunc("GET /api/network", s.handleNetwork)
	mux.HandleFunc("GET /api/sizing", s.handleSizing)
	mux.HandleFunc("GET /api/compliance", s.handleCompliance)
	mux.HandleFunc("GET /api/cost", s.handleCost)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("POST /api/size", s.handleSizeOne)
	mux.HandleFunc("POST /api/run", s.handleRun)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.handleRunByID)
	mux.HandleFunc("GET /", s.handleIndex)

	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request", "method", r.Method, "path", r.URL.Path, "duration_ms", time.Since(start).Milliseconds())
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html><head><title>heatnet</title></head>
<body style="margin:0;background:#111;color:#fff;font-family:system-ui;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1>heatnet</h1>
<p>Pipe sizing API. Start at <code>/api/summary</code>.</p>
</div>
</body></html>`)
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	cfg := s.eng.Config()
	s.mu.RUnlock()
	s.jsonResponse(w, http.StatusOK, cfg)
}

func (s *Server) handleNetwork(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"building_flows": s.outputs.BuildingFlows,
		"network_flows":  s.outputs.NetworkFlows,
	})
}

func (s *Server) handleSizing(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.jsonResponse(w, http.StatusOK, s.outputs.PipeSizing)
}

func (s *Server) handleCompliance(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.jsonResponse(w, http.StatusOK, s.outputs.Compliance)
}

func (s *Server) handleCost(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.jsonResponse(w, http.StatusOK, s.report)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"project": s.proj.Name,
		"summary": s.outputs.Summary(),
	})
}

// sizeRequest is the body of POST /api/size.
type sizeRequest struct {
	PipeID       string  `json:"pipe_id"`
	FlowKgS      float64 `json:"flow_kg_s"`
	LengthM      float64 `json:"length_m"`
	PipeCategory string  `json:"pipe_category"`
}

func (s *Server) handleSizeOne(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req sizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if req.PipeID == "" {
		s.jsonError(w, http.StatusBadRequest, "pipe_id is required")
		return
	}

	s.mu.RLock()
	eng := s.eng
	s.mu.RUnlock()

	cat, err := eng.ResolveCategory(req.PipeCategory)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, comp := eng.SizeSingle(req.PipeID, req.FlowKgS, req.LengthM, cat)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"sizing":     res,
		"compliance": comp,
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if err := s.Reload(); err != nil {
		s.jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.RLock()
	proj, out := s.proj, s.outputs
	s.mu.RUnlock()

	resp := map[string]any{
		"project": proj.Name,
		"summary": out.Summary(),
	}
	if s.db != nil {
		runID, err := store.ArchiveRun(r.Context(), s.db, proj.Name, out)
		if err != nil {
			s.jsonError(w, http.StatusInternalServerError, fmt.Sprintf("archiving run: %v", err))
			return
		}
		resp["run_id"] = runID
		s.log.Info("run archived", "run_id", runID, "project", proj.Name)
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.jsonError(w, http.StatusServiceUnavailable, "run archive not configured")
		return
	}
	repo := &store.RunRepo{}
	recs, err := repo.ListRecent(r.Context(), s.db, 50)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, recs)
}

func (s *Server) handleRunByID(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.jsonError(w, http.StatusServiceUnavailable, "run archive not configured")
		return
	}
	repo := &store.RunRepo{}
	rec, err := repo.GetByID(r.Context(), s.db, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			s.jsonError(w, http.StatusNotFound, "run not found")
			return
		}
		s.jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	pipes, err := repo.PipeResults(r.Context(), s.db, rec.RunID)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"run":     rec,
		"outputs": json.RawMessage(rec.OutputsJSON),
		"pipes":   pipes,
	})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
