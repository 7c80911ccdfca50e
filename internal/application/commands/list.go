package commands

import (
	"context"
	"fmt"
	"strings"

	"peopledir/internal/application"
	"peopledir/internal/domain"
	"peopledir/internal/ports"
)

// MaxPageSize bounds page sizes accepted from the command line
const MaxPageSize = 100

// ListEmployeesCommand fetches one page of the directory
type ListEmployeesCommand struct {
	api   ports.DirectoryAPI
	Query domain.Query
}

// NewListEmployeesCommand creates a new ListEmployeesCommand
func NewListEmployeesCommand(api ports.DirectoryAPI, q domain.Query) *ListEmployeesCommand {
	return &ListEmployeesCommand{
		api:   api,
		Query: q,
	}
}

// Validate checks the query before it reaches the backend
func (c *ListEmployeesCommand) Validate() error {
	if c.Query.Page < 1 {
		return &application.ValidationError{Field: "page", Message: fmt.Sprintf("must be at least 1, got %d", c.Query.Page)}
	}
	if c.Query.PageSize < 1 || c.Query.PageSize > MaxPageSize {
		return &application.ValidationError{Field: "page_size", Message: fmt.Sprintf("must be between 1 and %d, got %d", MaxPageSize, c.Query.PageSize)}
	}
	switch c.Query.SortOrder {
	case "", domain.SortAsc, domain.SortDesc:
	default:
		return &application.ValidationError{Field: "sort_order", Message: fmt.Sprintf("must be asc or desc, got %q", c.Query.SortOrder)}
	}
	for key := range c.Query.Filters {
		if !isFilterKey(key) {
			return &application.ValidationError{Field: key, Message: "unknown filter, expected one of " + strings.Join(domain.FilterKeys, ", ")}
		}
	}
	return nil
}

// Execute runs the list command
func (c *ListEmployeesCommand) Execute(ctx context.Context) (domain.DirectoryResult, error) {
	if err := c.Validate(); err != nil {
		return domain.DirectoryResult{}, err
	}
	return c.api.ListEmployees(ctx, c.Query)
}

func isFilterKey(key string) bool {
	for _, k := range domain.FilterKeys {
		if k == key {
			return true
		}
	}
	return false
}

// ParseFilters turns key=value pairs into Filters
func ParseFilters(pairs []string) (domain.Filters, error) {
	filters := domain.Filters{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &application.ValidationError{Field: "filter", Message: fmt.Sprintf("expected key=value, got %q", pair)}
		}
		if !isFilterKey(key) {
			return nil, &application.ValidationError{Field: key, Message: "unknown filter, expected one of " + strings.Join(domain.FilterKeys, ", ")}
		}
		if value = strings.TrimSpace(value); value != "" {
			filters[key] = value
		}
	}
	return filters, nil
}
