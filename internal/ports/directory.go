package ports

import (
	"context"

	"peopledir/internal/domain"
)

// DirectoryAPI is the backend side of the employee directory
type DirectoryAPI interface {
	// ListEmployees returns one page of the filtered, sorted directory
	ListEmployees(ctx context.Context, q domain.Query) (domain.DirectoryResult, error)

	// Suggestions returns search-as-you-type completions for a partial term
	Suggestions(ctx context.Context, term string, limit int) ([]domain.Suggestion, error)

	// Export renders the filtered directory (all pages) as a downloadable file
	Export(ctx context.Context, q domain.Query, fields []string) (domain.ExportFile, error)
}

// EmployeeWriter submits new employees
type EmployeeWriter interface {
	CreateEmployee(ctx context.Context, e domain.Employee) (domain.Employee, error)
}
