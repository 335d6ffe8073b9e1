package handlers

import (
	"net/http"
	"time"
)

// HealthHandler reports liveness plus which dataset backend the service was started with.
type HealthHandler struct {
	DataSource string
	StartedAt  time.Time
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := map[string]any{
		"status":      "ok",
		"data_source": h.DataSource,
	}
	if !h.StartedAt.IsZero() {
		res["uptime_seconds"] = int64(time.Since(h.StartedAt).Seconds())
	}
	writeJSON(w, r, http.StatusOK, res)
}
