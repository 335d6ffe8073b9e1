package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"recycling-route-service/internal/domain"
	"recycling-route-service/internal/platform/obs"
)

var (
	ErrNegativeBudget = errors.New("optimize: iteration budget must be >= 0")
	ErrNoDepots       = errors.New("optimize: at least one depot is required")
	ErrInvalidDepot   = errors.New("optimize: depot has invalid coordinates")
)

type OptimizeRequest struct {
	Requests      []domain.CollectionRequest
	Depots        []domain.Depot
	Prices        domain.PriceTable
	MaxIterations int
	Rules         domain.BusinessRules

	// Days restricts planning to the listed day labels; empty plans every day.
	Days []string
	// Upper bound on concurrently planned days; zero or less uses GOMAXPROCS.
	Workers int
	// OnDay, when set, receives each DayResult as soon as it is ready.
	// It is called from worker goroutines and must be safe for concurrent use.
	OnDay func(*domain.DayResult)
}

type OptimizeResult struct {
	Days map[string]*domain.DayResult
	// Planned day labels in first-appearance order of the input rows.
	Order []string
	// Days that had rows but none eligible for routing.
	EmptyDays []string
	Issues    domain.DataIssues
	Summary   domain.WeeklySummary
	Materials []domain.MaterialSummary
}

type dayOutcome struct {
	result *domain.DayResult
	issues domain.DataIssues
}

// Optimize plans every collection day independently and aggregates the results.
//
// Preconditions are checked before any work starts. Each day is planned on a
// bounded worker pool; days share only read-only inputs and write to their own
// result slot, so no locking is needed. Context cancellation is observed between days.
func Optimize(ctx context.Context, req OptimizeRequest) (_ *OptimizeResult, err error) {
	defer obs.Time(ctx, "services.Optimize")(&err)

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	days, byDay := groupByDay(req.Requests, req.Days)

	workers := req.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]dayOutcome, len(days))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, day := range days {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, issues := PlanDay(day, byDay[day], req.Depots, req.Prices, PlanOptions{
				MaxIterations: req.MaxIterations,
				Rules:         req.Rules,
			})
			outcomes[i] = dayOutcome{result: res, issues: issues}

			recordDay(gctx, day, res, issues)

			if res != nil && req.OnDay != nil {
				req.OnDay(res)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	out := &OptimizeResult{
		Days:      make(map[string]*domain.DayResult, len(days)),
		Order:     make([]string, 0, len(days)),
		EmptyDays: []string{},
	}
	for i, day := range days {
		o := outcomes[i]
		out.Issues.Merge(o.issues)

		if o.result == nil {
			if day != "" {
				out.EmptyDays = append(out.EmptyDays, day)
			}
			continue
		}
		out.Days[day] = o.result
		out.Order = append(out.Order, day)
	}

	out.Summary = Summarize(out.Order, out.Days)
	out.Materials = SummarizeMaterials(out.Order, out.Days, req.Prices)

	return out, nil
}

func validateRequest(req OptimizeRequest) error {
	if req.MaxIterations < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeBudget, req.MaxIterations)
	}
	if len(req.Depots) == 0 {
		return ErrNoDepots
	}
	for i, d := range req.Depots {
		if !d.Valid() {
			return fmt.Errorf("%w: depot #%d %q (%v, %v)", ErrInvalidDepot, i+1, d.Name, d.Lat, d.Lon)
		}
	}
	return nil
}

// groupByDay buckets rows by day label, keeping the order in which days first appear.
// When filter is non-empty only the listed days are kept.
func groupByDay(rows []domain.CollectionRequest, filter []string) ([]string, map[string][]domain.CollectionRequest) {
	var allowed map[string]struct{}
	if len(filter) > 0 {
		allowed = make(map[string]struct{}, len(filter))
		for _, d := range filter {
			allowed[strings.TrimSpace(d)] = struct{}{}
		}
	}

	days := []string{}
	byDay := make(map[string][]domain.CollectionRequest)
	for _, r := range rows {
		if allowed != nil {
			if _, ok := allowed[r.Day]; !ok {
				continue
			}
		}
		if _, ok := byDay[r.Day]; !ok {
			days = append(days, r.Day)
		}
		byDay[r.Day] = append(byDay[r.Day], r)
	}

	return days, byDay
}

func recordDay(ctx context.Context, day string, res *domain.DayResult, issues domain.DataIssues) {
	if n := len(issues.InvalidRows); n > 0 {
		obs.DataIssues.WithLabelValues("invalid_row").Add(float64(n))
	}
	if n := len(issues.UnpricedMaterials); n > 0 {
		obs.DataIssues.WithLabelValues("unpriced_material").Add(float64(n))
	}

	if res == nil {
		obs.DaysPlanned.WithLabelValues("empty").Inc()
		log.Printf("req_id=%s op=plan_day day=%q skipped=no_eligible_rows invalid=%d", obs.RequestID(ctx), day, len(issues.InvalidRows))
		return
	}

	obs.DaysPlanned.WithLabelValues("planned").Inc()
	obs.TwoOptMoves.Observe(float64(res.ImprovementMoves))
	obs.RouteDistance.Observe(res.DistanceKm)
	if !res.Converged {
		obs.TwoOptExhausted.Inc()
	}

	log.Printf(
		"req_id=%s op=plan_day day=%q depot=%q stops=%d dist_km=%.2f moves=%d converged=%t",
		obs.RequestID(ctx), day, res.Depot.Name, len(res.Stops), res.DistanceKm, res.ImprovementMoves, res.Converged,
	)
}
