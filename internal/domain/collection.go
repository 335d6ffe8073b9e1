package domain

import "github.com/shopspring/decimal"

// Represents one scheduled pickup of recyclable material.
// Row is the 1-based position of the request in its source so data-quality
// issues can point back at it.
type CollectionRequest struct {
	Row      int
	Day      string
	Location string
	Material string
	WeightKg float64
	Coordinates
}

// Candidate origin for a day's collection tour.
type Depot struct {
	Name string
	Coordinates
}

// Material type -> price per kilogram.
type PriceTable map[string]decimal.Decimal

// Look up the price for a material. The boolean is false when the material is unpriced.
func (p PriceTable) Price(material string) (decimal.Decimal, bool) {
	v, ok := p[material]
	return v, ok
}

// Fully materialized optimizer input as loaded by a DatasetSource.
type Dataset struct {
	Requests []CollectionRequest
	Depots   []Depot
	Prices   PriceTable
}
