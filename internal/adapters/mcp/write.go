package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"peopledir/internal/application/commands"
	"peopledir/internal/forms"
	"peopledir/internal/permissions"
)

// RegisterWriteTools adds the tools that create employees or export files.
// They are gated by the configured role.
func RegisterWriteTools(s *server.MCPServer, deps Deps) {
	s.AddTool(createEmployeeTool(), createEmployeeHandler(deps))
	s.AddTool(exportTool(), exportHandler(deps))
}

// --- create_employee ---

func createEmployeeTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Create an employee. Fields follow the new-employee form; required fields must be present."),
	}
	for _, step := range forms.EmployeeSteps() {
		for _, f := range step.Fields {
			desc := f.Label
			if len(f.Options) > 0 {
				desc += " (" + strings.Join(f.Options, ", ") + ")"
			}
			if f.Placeholder != "" && len(f.Options) == 0 {
				desc += ", e.g. " + f.Placeholder
			}
			propOpts := []mcp.PropertyOption{mcp.Description(desc)}
			if f.Required {
				propOpts = append(propOpts, mcp.Required())
			}
			opts = append(opts, mcp.WithString(f.Name, propOpts...))
		}
	}
	return mcp.NewTool("create_employee", opts...)
}

func createEmployeeHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var flags permissions.Flags
		if deps.Checker != nil {
			if err := deps.Checker.Require(deps.Role, permissions.ActionEdit, permissions.ObjectEmployees); err != nil {
				return toolError(err)
			}
			flags = deps.Checker.FlagsFor(deps.Role)
		}

		values := map[string]string{}
		for _, step := range forms.EmployeeSteps() {
			for _, f := range step.Fields {
				if v := req.GetString(f.Name, ""); v != "" {
					values[f.Name] = v
				}
			}
		}

		form := forms.NewEmployeeForm(deps.Writer, forms.WithFlags(flags), forms.WithLogger(deps.Log))
		created, err := commands.NewCreateEmployeeCommand(form, values).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Created %s (%s)", created.FullName(), created.ID)), nil
	}
}

// --- export_employees ---

func exportTool() mcp.Tool {
	return mcp.NewTool("export_employees",
		mcp.WithDescription("Export the filtered directory as CSV and store it in the configured export location."),
		mcp.WithString("search", mcp.Description("Free-text search")),
		mcp.WithString("department", mcp.Description("Department filter")),
		mcp.WithString("location", mcp.Description("Location filter")),
		mcp.WithString("status", mcp.Description("Status filter")),
		mcp.WithString("employment_type", mcp.Description("Employment type filter")),
		mcp.WithString("fields", mcp.Description("Comma-separated columns to export (default: all)")),
	)
}

func exportHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if deps.Sink == nil {
			return toolError(fmt.Errorf("no export location configured"))
		}
		q := queryFromRequest(req)

		var fields []string
		for _, f := range strings.Split(req.GetString("fields", ""), ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}

		res, err := commands.NewExportCommand(deps.Directory, deps.Sink, deps.Checker, deps.Role, q, fields).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Exported %d records to %s", res.TotalRecords, res.Location)), nil
	}
}
