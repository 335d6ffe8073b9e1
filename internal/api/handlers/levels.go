package handlers

import (
	"net/http"

	"recycling-route-service/internal/api/dto"
	"recycling-route-service/internal/config"
)

// LevelsHandler lists the configured optimization presets.
type LevelsHandler struct {
	Levels       config.Levels
	DefaultLevel string
}

func (h *LevelsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := dto.LevelsResponse{
		Default: h.DefaultLevel,
		Levels:  make([]dto.LevelResponse, 0, len(h.Levels)),
	}
	for _, l := range h.Levels {
		res.Levels = append(res.Levels, dto.LevelResponse{
			Name:          l.Name,
			Description:   l.Description,
			MaxIterations: l.MaxIterations,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
