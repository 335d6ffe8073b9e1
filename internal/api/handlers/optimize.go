package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"recycling-route-service/internal/api/dto"
	"recycling-route-service/internal/config"
	"recycling-route-service/internal/domain"
	"recycling-route-service/internal/platform/obs"
	"recycling-route-service/internal/ports"
	"recycling-route-service/internal/services"
)

const maxWorkers = 64

// OptimizeHandler runs the weekly route optimization over the configured dataset.
type OptimizeHandler struct {
	Source       ports.DatasetSource
	Cache        ports.ResultCache
	Levels       config.Levels
	DefaultLevel string
	Rules        domain.BusinessRules
	// Default day-level parallelism when a request does not set workers.
	Workers int
}

// runParams is a request after level and defaults have been resolved.
type runParams struct {
	level   string
	budget  int
	days    []string
	workers int
}

func (h *OptimizeHandler) resolve(req dto.OptimizeRequest) (runParams, error) {
	budget, err := h.Levels.Resolve(req.Level, req.MaxIterations, h.DefaultLevel)
	if err != nil {
		return runParams{}, err
	}

	level := ""
	if req.MaxIterations == nil {
		level = strings.ToLower(strings.TrimSpace(req.Level))
		if level == "" {
			level = strings.ToLower(strings.TrimSpace(h.DefaultLevel))
		}
	}

	if req.Workers < 0 || req.Workers > maxWorkers {
		return runParams{}, fmt.Errorf("workers must be between 0 and %d", maxWorkers)
	}
	workers := req.Workers
	if workers == 0 {
		workers = h.Workers
	}

	days := make([]string, 0, len(req.Days))
	for _, d := range req.Days {
		if d = strings.TrimSpace(d); d != "" {
			days = append(days, d)
		}
	}

	return runParams{level: level, budget: budget, days: days, workers: workers}, nil
}

func (h *OptimizeHandler) run(ctx context.Context, ds *domain.Dataset, p runParams, onDay func(*domain.DayResult)) (*services.OptimizeResult, error) {
	return services.Optimize(ctx, services.OptimizeRequest{
		Requests:      ds.Requests,
		Depots:        ds.Depots,
		Prices:        ds.Prices,
		MaxIterations: p.budget,
		Rules:         h.Rules,
		Days:          p.days,
		Workers:       p.workers,
		OnDay:         onDay,
	})
}

// Optimize plans every collection day and returns routes, summaries and data issues.
// Responses are cached by a fingerprint of the dataset and the resolved request.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	// An empty body means "all defaults".
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	p, err := h.resolve(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	ds, err := h.Source.LoadDataset(ctx)
	if err != nil {
		log.Printf("req_id=%s load dataset failed: %v", obs.RequestID(ctx), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	key := cacheKey(ds, p, h.Rules)
	if body, ok := h.cached(ctx, key); ok {
		w.Header().Set("X-Cache", "hit")
		writeRawJSON(w, r, http.StatusOK, body)
		return
	}

	res, err := h.run(ctx, ds, p, nil)
	if err != nil {
		writeOptimizeError(w, r, err)
		return
	}

	body, err := json.Marshal(dto.FromOptimizeResult(res, p.level, p.budget))
	if err != nil {
		log.Printf("req_id=%s encode result failed: %v", obs.RequestID(ctx), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.Cache != nil {
		if err := h.Cache.Put(ctx, key, body); err != nil {
			log.Printf("req_id=%s cache put failed: %v", obs.RequestID(ctx), err)
		}
	}

	w.Header().Set("X-Cache", "miss")
	writeRawJSON(w, r, http.StatusOK, body)
}

// cached returns a stored response. Cache failures are logged and treated as a miss.
func (h *OptimizeHandler) cached(ctx context.Context, key string) ([]byte, bool) {
	if h.Cache == nil {
		return nil, false
	}
	body, ok, err := h.Cache.Get(ctx, key)
	if err != nil {
		log.Printf("req_id=%s cache get failed: %v", obs.RequestID(ctx), err)
		return nil, false
	}
	return body, ok
}

func writeOptimizeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNoDepots), errors.Is(err, services.ErrInvalidDepot):
		// The dataset itself is unusable; the request was fine.
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Printf("req_id=%s optimize aborted: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusServiceUnavailable, "request cancelled")
	default:
		log.Printf("req_id=%s optimize failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
