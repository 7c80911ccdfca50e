package ports

import (
	"context"

	"peopledir/internal/domain"
)

// HierarchyAPI is the backend side of the org chart
type HierarchyAPI interface {
	// Hierarchy returns the subtree rooted at id, at most depth levels deep
	// (depth 1 is the employee alone, 2 adds direct reports, ...)
	Hierarchy(ctx context.Context, id domain.EmployeeID, depth int) (*domain.HierarchyNode, error)

	// SearchEmployees finds employees to jump to in the chart
	SearchEmployees(ctx context.Context, term string, limit int) ([]domain.Employee, error)
}
