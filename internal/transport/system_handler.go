package transport

import (
	"context"
	"net/http"
	"sort"
	"time"

	"retail-desk/internal/middleware"
	"retail-desk/internal/workspace"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HealthChecker reports the health of a backing store
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

// Refresher asks for a workspace refresh
type Refresher interface {
	Fire()
}

// Snapshotter exposes the current workspace state
type Snapshotter interface {
	Snapshot() workspace.Snapshot
}

// HealthResponse is the /health payload
type HealthResponse struct {
	Status      string            `json:"status"`
	Gateway     string            `json:"gateway"`
	Version     uint64            `json:"version"`
	RefreshedAt *time.Time        `json:"refreshed_at,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
	Database    map[string]string `json:"database,omitempty"`
}

// SystemHandler serves health and refresh endpoints
type SystemHandler struct {
	ws        Snapshotter
	refresher Refresher
	db        HealthChecker
	gateway   string
	logger    *zap.Logger
}

// NewSystemHandler creates a new SystemHandler. db may be nil.
func NewSystemHandler(ws Snapshotter, refresher Refresher, db HealthChecker, gateway string, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		ws:        ws,
		refresher: refresher,
		db:        db,
		gateway:   gateway,
		logger:    logger,
	}
}

// RegisterRoutes registers the health and refresh routes
func (h *SystemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Post("/api/refresh", h.Refresh)
}

// Health reports the workspace state and, with Postgres, the database pool
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.ws.Snapshot()

	resp := HealthResponse{
		Status:  "up",
		Gateway: h.gateway,
		Version: snap.Version,
	}
	if !snap.RefreshedAt.IsZero() {
		resp.RefreshedAt = &snap.RefreshedAt
	}
	for name, err := range snap.Errors {
		resp.Warnings = append(resp.Warnings, string(name)+": "+err.Error())
	}
	sort.Strings(resp.Warnings)

	status := http.StatusOK
	if h.db != nil {
		resp.Database = h.db.Health(r.Context())
		if resp.Database["status"] != "up" {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	middleware.RespondWithJSON(w, status, resp)
}

// Refresh fires the manual refresh trigger and returns immediately
func (h *SystemHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.refresher.Fire()
	h.logger.Debug("Manual refresh requested")
	middleware.RespondWithJSON(w, http.StatusAccepted, map[string]string{"status": "refresh scheduled"})
}
