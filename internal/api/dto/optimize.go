package dto

import (
	"github.com/shopspring/decimal"

	"recycling-route-service/internal/domain"
	"recycling-route-service/internal/services"
)

type OptimizeRequest struct {
	Days          []string `json:"days"`
	Level         string   `json:"level"`
	MaxIterations *int     `json:"max_iterations"`
	Workers       int      `json:"workers"`
}

type DepotResponse struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type StopResponse struct {
	Stop     int     `json:"stop"`
	Row      int     `json:"row"`
	Location string  `json:"location"`
	Material string  `json:"material"`
	WeightKg float64 `json:"weight_kg"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

type DayResponse struct {
	Day                string          `json:"day"`
	Depot              DepotResponse   `json:"depot"`
	Tour               []int           `json:"tour"`
	Stops              []StopResponse  `json:"stops"`
	DistanceKm         float64         `json:"distance_km"`
	WeightKg           float64         `json:"weight_kg"`
	Revenue            decimal.Decimal `json:"revenue"`
	FuelCost           decimal.Decimal `json:"fuel_cost"`
	NetRevenue         decimal.Decimal `json:"net_revenue"`
	Efficiency         float64         `json:"efficiency"`
	ExceedsMaxDistance bool            `json:"exceeds_max_distance"`
	UnpricedRows       int             `json:"unpriced_rows"`
	ImprovementMoves   int             `json:"improvement_moves"`
	Converged          bool            `json:"converged"`
}

type SummaryResponse struct {
	Days              int             `json:"days"`
	Collections       int             `json:"collections"`
	TotalDistanceKm   float64         `json:"total_distance_km"`
	TotalWeightKg     float64         `json:"total_weight_kg"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalFuelCost     decimal.Decimal `json:"total_fuel_cost"`
	TotalNetRevenue   decimal.Decimal `json:"total_net_revenue"`
	AverageEfficiency float64         `json:"average_efficiency"`
}

type MaterialResponse struct {
	Material    string          `json:"material"`
	Collections int             `json:"collections"`
	WeightKg    float64         `json:"weight_kg"`
	PricePerKg  decimal.Decimal `json:"price_per_kg"`
	Value       decimal.Decimal `json:"value"`
	Priced      bool            `json:"priced"`
}

type InvalidRowResponse struct {
	Row      int    `json:"row"`
	Day      string `json:"day"`
	Location string `json:"location"`
	Field    string `json:"field"`
	Reason   string `json:"reason"`
}

type UnpricedMaterialResponse struct {
	Row      int    `json:"row"`
	Day      string `json:"day"`
	Location string `json:"location"`
	Material string `json:"material"`
}

type IssuesResponse struct {
	InvalidRows       []InvalidRowResponse       `json:"invalid_rows"`
	UnpricedMaterials []UnpricedMaterialResponse `json:"unpriced_materials"`
}

type OptimizeResponse struct {
	Level         string             `json:"level,omitempty"`
	MaxIterations int                `json:"max_iterations"`
	Days          []DayResponse      `json:"days"`
	EmptyDays     []string           `json:"empty_days"`
	Summary       SummaryResponse    `json:"summary"`
	Materials     []MaterialResponse `json:"materials"`
	Issues        IssuesResponse     `json:"issues"`
}

// Message types sent on the optimization stream.
const (
	StreamDay     = "day"
	StreamSummary = "summary"
	StreamError   = "error"
)

// StreamMessage is one frame on /optimize/stream. Day frames carry Day; the
// final summary frame carries Result with Days left empty.
type StreamMessage struct {
	Type   string            `json:"type"`
	Day    *DayResponse      `json:"day,omitempty"`
	Result *OptimizeResponse `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func FromDayResult(r *domain.DayResult) DayResponse {
	stops := make([]StopResponse, 0, len(r.Stops))
	for _, s := range r.Stops {
		sr := StopResponse{Stop: s.Number, Lat: s.Lat, Lon: s.Lon}
		if s.Request != nil {
			sr.Row = s.Request.Row
			sr.Location = s.Request.Location
			sr.Material = s.Request.Material
			sr.WeightKg = s.Request.WeightKg
		}
		stops = append(stops, sr)
	}

	return DayResponse{
		Day:                r.Day,
		Depot:              DepotResponse{Name: r.Depot.Name, Lat: r.Depot.Lat, Lon: r.Depot.Lon},
		Tour:               r.Tour,
		Stops:              stops,
		DistanceKm:         r.DistanceKm,
		WeightKg:           r.WeightKg,
		Revenue:            r.Revenue,
		FuelCost:           r.FuelCost,
		NetRevenue:         r.NetRevenue,
		Efficiency:         r.Efficiency,
		ExceedsMaxDistance: r.ExceedsMaxDistance,
		UnpricedRows:       r.UnpricedRows,
		ImprovementMoves:   r.ImprovementMoves,
		Converged:          r.Converged,
	}
}

// FromOptimizeResult converts a service result, listing days in planning order.
func FromOptimizeResult(res *services.OptimizeResult, level string, maxIterations int) OptimizeResponse {
	out := OptimizeResponse{
		Level:         level,
		MaxIterations: maxIterations,
		Days:          make([]DayResponse, 0, len(res.Order)),
		EmptyDays:     res.EmptyDays,
		Summary:       fromSummary(res.Summary),
		Materials:     make([]MaterialResponse, 0, len(res.Materials)),
		Issues:        fromIssues(res.Issues),
	}
	if out.EmptyDays == nil {
		out.EmptyDays = []string{}
	}

	for _, day := range res.Order {
		out.Days = append(out.Days, FromDayResult(res.Days[day]))
	}
	for _, m := range res.Materials {
		out.Materials = append(out.Materials, MaterialResponse{
			Material:    m.Material,
			Collections: m.Collections,
			WeightKg:    m.WeightKg,
			PricePerKg:  m.PricePerKg,
			Value:       m.Value,
			Priced:      m.Priced,
		})
	}

	return out
}

func fromSummary(s domain.WeeklySummary) SummaryResponse {
	return SummaryResponse{
		Days:              s.Days,
		Collections:       s.Collections,
		TotalDistanceKm:   s.TotalDistanceKm,
		TotalWeightKg:     s.TotalWeightKg,
		TotalRevenue:      s.TotalRevenue,
		TotalFuelCost:     s.TotalFuelCost,
		TotalNetRevenue:   s.TotalNetRevenue,
		AverageEfficiency: s.AverageEfficiency,
	}
}

func fromIssues(d domain.DataIssues) IssuesResponse {
	out := IssuesResponse{
		InvalidRows:       make([]InvalidRowResponse, 0, len(d.InvalidRows)),
		UnpricedMaterials: make([]UnpricedMaterialResponse, 0, len(d.UnpricedMaterials)),
	}
	for _, e := range d.InvalidRows {
		out.InvalidRows = append(out.InvalidRows, InvalidRowResponse{
			Row: e.Row, Day: e.Day, Location: e.Location, Field: e.Field, Reason: e.Reason,
		})
	}
	for _, w := range d.UnpricedMaterials {
		out.UnpricedMaterials = append(out.UnpricedMaterials, UnpricedMaterialResponse{
			Row: w.Row, Day: w.Day, Location: w.Location, Material: w.Material,
		})
	}
	return out
}

type LevelsResponse struct {
	Default string          `json:"default"`
	Levels  []LevelResponse `json:"levels"`
}

type LevelResponse struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	MaxIterations int    `json:"max_iterations"`
}
