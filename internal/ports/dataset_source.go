package ports

import (
	"context"

	"recycling-route-service/internal/domain"
)

// Port: a boundary for loading the optimizer input (collection requests, depots, prices).
type DatasetSource interface {
	// Load the full dataset. Rows are returned in source order.
	LoadDataset(ctx context.Context) (*domain.Dataset, error)
}
