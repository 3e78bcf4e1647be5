package handlers

import (
	"context"
	"log"
	"net/http"
	"time"
	"trip-planner-service/internal/ports"
)

const healthPingTimeout = 2 * time.Second

// HealthHandler answers liveness and, when Stores is set, readiness of each
// named store. Any failed ping turns the response into a 503.
type HealthHandler struct {
	Stores map[string]ports.Pinger
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := map[string]any{"status": "ok"}
	if len(h.Stores) == 0 {
		writeJSON(w, r, http.StatusOK, res)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.Stores))
	for name, store := range h.Stores {
		if err := store.PingContext(ctx); err != nil {
			log.Printf("health: store unavailable name=%s err=%v", name, err)
			checks[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	if status != http.StatusOK {
		res["status"] = "unavailable"
	}
	res["checks"] = checks
	writeJSON(w, r, status, res)
}
