package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/browseprobe/internal/domain"
	apimw "github.com/hamed0406/browseprobe/internal/httpapi/middleware"
	"github.com/hamed0406/browseprobe/internal/probe"
	"github.com/hamed0406/browseprobe/internal/repo"
)

type Server struct {
	Logger  *zap.Logger
	Targets repo.TargetStore
	Results repo.ResultStore
	Checker probe.Checker
}

func NewServer(l *zap.Logger, ts repo.TargetStore, rs repo.ResultStore, c probe.Checker) *Server {
	return &Server{Logger: l, Targets: ts, Results: rs, Checker: c}
}

func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, publicRPM, publicBurst, adminRPM, adminBurst int) http.Handler {
	r := chi.NewRouter()
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
		}))
	} else {
		r.Use(cors.AllowAll().Handler)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// read routes: any valid key
	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAny(keys))
		r.Use(apimw.RateLimit(publicRPM, publicBurst))
		r.Get("/api/targets", s.handleListTargets)
		r.Get("/api/results/latest", s.handleLatest)
	})

	// write routes: admin key only
	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAdmin(keys))
		r.Use(apimw.RateLimit(adminRPM, adminBurst))
		r.Post("/api/targets", s.handleAddTarget)
	})

	return r
}

type addPayload struct {
	BrowseID string `json:"browse_id"`
}

func (s *Server) handleAddTarget(w http.ResponseWriter, r *http.Request) {
	var p addPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	browseID := normalizeBrowseID(p.BrowseID)
	if !isValidBrowseID(browseID) {
		http.Error(w, "bad browse_id", http.StatusBadRequest)
		return
	}

	if existing, err := s.Targets.GetByBrowseID(r.Context(), browseID); err == nil && existing != nil {
		http.Error(w, "browse_id already registered", http.StatusConflict)
		return
	}

	t := &domain.Target{BrowseID: browseID, CreatedAt: time.Now().UTC()}
	if err := s.Targets.Add(r.Context(), t); err != nil {
		http.Error(w, "could not add", http.StatusInternalServerError)
		return
	}

	// Run a single probe synchronously for immediate feedback
	out := s.Checker.Check(r.Context(), browseID)

	pr := &domain.ProbeResult{
		TargetID:       t.ID,
		BrowseID:       browseID,
		OK:             out.OK,
		StatusCode:     out.StatusCode,
		MarkerFound:    out.MarkerFound,
		TopKeys:        out.TopKeys,
		NotJSON:        out.NotJSON,
		AppPromptFound: out.AppPromptFound,
		LatencyMS:      out.LatencyMS,
		Reason:         out.Reason(),
		CheckedAt:      time.Now().UTC(),
	}
	_ = s.Results.Append(r.Context(), pr)

	s.Logger.Info("added_target",
		zap.String("browse_id", browseID),
		zap.Bool("ok", out.OK),
		zap.Bool("marker_found", out.MarkerFound),
		zap.Float64("latency_ms", out.LatencyMS),
	)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"target": t, "result": pr,
	})
}

func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	ts, err := s.Targets.List(r.Context())
	if err != nil {
		http.Error(w, "list error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ts)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Results.Latest(r.Context())
	if err != nil {
		http.Error(w, "latest error", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []repo.LatestRow{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

// normalizeBrowseID trims surrounding whitespace; the ID itself stays opaque.
func normalizeBrowseID(raw string) string {
	return strings.TrimSpace(raw)
}

// isValidBrowseID only rejects what can't possibly be an ID. The target
// service treats the value as opaque and so do we.
func isValidBrowseID(id string) bool {
	if id == "" {
		return false
	}
	return !strings.ContainsAny(id, " \t\r\n")
}
