package commands

import (
	"context"
	"fmt"
	"time"

	"peopledir/internal/domain"
	"peopledir/internal/permissions"
	"peopledir/internal/ports"
)

// ExportResult describes a stored export
type ExportResult struct {
	Location     string
	Name         string
	TotalRecords int
	Fields       []string
}

// ExportCommand exports the filtered directory and stores the file in a sink
type ExportCommand struct {
	api     ports.DirectoryAPI
	sink    ports.ExportSink
	checker *permissions.Checker
	now     func() time.Time

	Role   string
	Query  domain.Query
	Fields []string
}

// NewExportCommand creates a new ExportCommand
func NewExportCommand(api ports.DirectoryAPI, sink ports.ExportSink, checker *permissions.Checker, role string, q domain.Query, fields []string) *ExportCommand {
	return &ExportCommand{
		api:     api,
		sink:    sink,
		checker: checker,
		now:     time.Now,
		Role:    role,
		Query:   q,
		Fields:  fields,
	}
}

// Execute checks the export permission, downloads the export and writes it
func (c *ExportCommand) Execute(ctx context.Context) (ExportResult, error) {
	if c.checker != nil {
		if err := c.checker.Require(c.Role, permissions.ActionExport, permissions.ObjectEmployees); err != nil {
			return ExportResult{}, err
		}
	}

	file, err := c.api.Export(ctx, c.Query, c.Fields)
	if err != nil {
		return ExportResult{}, fmt.Errorf("export: %w", err)
	}
	if file.Name == "" {
		file.Name = fmt.Sprintf("employees_%s.csv", c.now().Format("2006-01-02"))
	}

	location, err := c.sink.Write(ctx, file)
	if err != nil {
		return ExportResult{}, fmt.Errorf("store export: %w", err)
	}
	return ExportResult{
		Location:     location,
		Name:         file.Name,
		TotalRecords: file.TotalRecords,
		Fields:       file.Fields,
	}, nil
}
