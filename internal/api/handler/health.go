package handler

import (
	"context"
	"net/http"

	"github.com/optiretina/portal/internal/analysis"
	"github.com/optiretina/portal/internal/api/middleware"
	"github.com/optiretina/portal/internal/api/response"
)

// DBPinger checks connectivity to the user store.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// UpstreamChecker probes the external analysis service.
type UpstreamChecker interface {
	Health(ctx context.Context) (*analysis.UpstreamHealth, error)
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	db       DBPinger
	upstream UpstreamChecker
	version  string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db DBPinger, upstream UpstreamChecker, version string) *HealthHandler {
	return &HealthHandler{
		db:       db,
		upstream: upstream,
		version:  version,
	}
}

type upstreamStatus struct {
	Connected   bool `json:"connected"`
	ModelLoaded bool `json:"modelLoaded"`
}

type healthData struct {
	Status          string         `json:"status"`
	Version         string         `json:"version"`
	UserStore       bool           `json:"userStore"`
	AnalysisService upstreamStatus `json:"analysisService"`
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	status := "healthy"

	storeOK := h.db != nil && h.db.Ping(r.Context()) == nil
	if !storeOK {
		status = "degraded"
	}

	var upstream upstreamStatus
	if h.upstream != nil {
		if uh, err := h.upstream.Health(r.Context()); err == nil {
			upstream.Connected = true
			upstream.ModelLoaded = uh.ModelLoaded
		}
	}
	if !upstream.Connected {
		status = "degraded"
	}

	data := healthData{
		Status:          status,
		Version:         h.version,
		UserStore:       storeOK,
		AnalysisService: upstream,
	}

	response.Success(w, http.StatusOK, data, requestID)
}
