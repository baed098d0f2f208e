package handlers

import (
	"context"
	"net/http"
	"time"

	httperrors "github.com/ivankudzin/matrimony/internal/transport/http/errors"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is a backend checked by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{checks: make(map[string]Pinger)}
}

func (h *HealthHandler) AttachCheck(name string, p Pinger) {
	if p != nil {
		h.checks[name] = p
	}
}

// Get always answers 200 while the process serves traffic; a failing backend
// is reported as degraded rather than taking the instance out of rotation.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := "ok"
	backends := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			backends[name] = "down"
			status = "degraded"
			continue
		}
		backends[name] = "up"
	}

	httperrors.Write(w, http.StatusOK, map[string]any{
		"status":   status,
		"backends": backends,
	})
}
