package domain

import "fmt"

// A collection row that cannot be routed (missing or malformed coordinate, weight or day).
// The row is excluded from its day's plan.
type InputDataError struct {
	Row      int
	Day      string
	Location string
	Field    string
	Reason   string
}

func (e *InputDataError) Error() string {
	return fmt.Sprintf("row %d (day=%q location=%q): invalid %s: %s", e.Row, e.Day, e.Location, e.Field, e.Reason)
}

// A collection row whose material has no entry in the price table.
// The row is still routed but contributes zero revenue.
type UnpricedMaterialWarning struct {
	Row      int
	Day      string
	Location string
	Material string
}

func (w *UnpricedMaterialWarning) Error() string {
	return fmt.Sprintf("row %d (day=%q location=%q): no price for material %q", w.Row, w.Day, w.Location, w.Material)
}

// Data-quality findings collected while planning. None of them abort a run.
type DataIssues struct {
	InvalidRows       []*InputDataError
	UnpricedMaterials []*UnpricedMaterialWarning
}

// Append the findings of another planning pass.
func (d *DataIssues) Merge(other DataIssues) {
	d.InvalidRows = append(d.InvalidRows, other.InvalidRows...)
	d.UnpricedMaterials = append(d.UnpricedMaterials, other.UnpricedMaterials...)
}

func (d DataIssues) Empty() bool {
	return len(d.InvalidRows) == 0 && len(d.UnpricedMaterials) == 0
}
