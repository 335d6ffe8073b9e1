package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recycling-route-service/internal/adapters/cache"
	"recycling-route-service/internal/api/dto"
	"recycling-route-service/internal/config"
	"recycling-route-service/internal/domain"
)

type fixedSource struct{ ds *domain.Dataset }

func (s fixedSource) LoadDataset(context.Context) (*domain.Dataset, error) { return s.ds, nil }

func testDeps() Deps {
	pt := func(lat, lon float64) domain.Coordinates { return domain.Coordinates{Lat: lat, Lon: lon} }
	ds := &domain.Dataset{
		Requests: []domain.CollectionRequest{
			{Row: 1, Day: "Monday", Location: "A", Material: "Paper", WeightKg: 10, Coordinates: pt(0, 1)},
			{Row: 2, Day: "Monday", Location: "B", Material: "Paper", WeightKg: 10, Coordinates: pt(0, 2)},
			{Row: 3, Day: "Wednesday", Location: "C", Material: "Paper", WeightKg: 10, Coordinates: pt(1, 0)},
			{Row: 4, Day: "Friday", Location: "D", Material: "Paper", WeightKg: 10, Coordinates: pt(0.3, 0.3)},
		},
		Depots: []domain.Depot{{Name: "Central", Coordinates: pt(0, 0)}},
		Prices: domain.PriceTable{"Paper": decimal.RequireFromString("2.0")},
	}
	return Deps{
		Source:       fixedSource{ds: ds},
		Cache:        cache.NopResultCache{},
		Levels:       config.DefaultLevels(),
		DefaultLevel: "advanced",
		Rules:        config.DefaultBusinessRules(),
		Workers:      2,
		DataSource:   "memory",
	}
}

func TestRouterRequestID(t *testing.T) {
	srv := httptest.NewServer(NewRouter(testDeps()))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, res.Header.Get("X-Request-ID"), 36)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	res2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res2.Body.Close()
	assert.Equal(t, "abc-123", res2.Header.Get("X-Request-ID"))
}

func TestRouterMetrics(t *testing.T) {
	srv := httptest.NewServer(NewRouter(testDeps()))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/optimize", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, res.Body)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `http_requests_total{method="POST",path="/optimize",status="200"}`)
	assert.Contains(t, text, "route_days_total")
	assert.Contains(t, text, "route_distance_km_bucket")
}

func TestRouterRateLimit(t *testing.T) {
	deps := testDeps()
	deps.RateLimitRPS = 0.001
	deps.RateLimitBurst = 2

	srv := httptest.NewServer(NewRouter(deps))
	defer srv.Close()

	codes := make([]int, 0, 3)
	for range 3 {
		res, err := http.Post(srv.URL+"/optimize", "application/json", strings.NewReader(`{"level":"basic"}`))
		require.NoError(t, err)
		_, _ = io.Copy(io.Discard, res.Body)
		res.Body.Close()
		codes = append(codes, res.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Other endpoints are not limited.
	res, err := http.Get(srv.URL + "/levels")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestRouterStream(t *testing.T) {
	srv := httptest.NewServer(NewRouter(testDeps()))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/optimize/stream?level=premium&days=Monday,Friday"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var days []string
	var summary *dto.OptimizeResponse
	for {
		var msg dto.StreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
			break
		}
		switch msg.Type {
		case dto.StreamDay:
			require.NotNil(t, msg.Day)
			days = append(days, msg.Day.Day)
		case dto.StreamSummary:
			summary = msg.Result
		default:
			t.Fatalf("unexpected message %+v", msg)
		}
	}

	assert.ElementsMatch(t, []string{"Monday", "Friday"}, days)
	require.NotNil(t, summary)
	assert.Equal(t, "premium", summary.Level)
	assert.Equal(t, 5000, summary.MaxIterations)
	assert.Equal(t, 2, summary.Summary.Days)
	assert.Empty(t, summary.Days)
}

func TestRouterStreamBadQuery(t *testing.T) {
	srv := httptest.NewServer(NewRouter(testDeps()))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/optimize/stream?max_iterations=lots")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
