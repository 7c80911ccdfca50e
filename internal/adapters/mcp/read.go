// Package mcp exposes directory and org-chart queries as MCP tools.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"peopledir/internal/application/commands"
	"peopledir/internal/domain"
	"peopledir/internal/hierarchy"
	"peopledir/internal/permissions"
	"peopledir/internal/ports"
)

const (
	defaultPageSize    = 20
	defaultSearchLimit = 20
)

// Deps are the backends the tools run against
type Deps struct {
	Directory ports.DirectoryAPI
	Hierarchy ports.HierarchyAPI
	Writer    ports.EmployeeWriter
	Sink      ports.ExportSink
	Checker   *permissions.Checker
	Role      string
	// HierarchyOptions configure the engine each org_chart call builds
	HierarchyOptions []hierarchy.Option
	Log              *zap.Logger
}

// RegisterReadTools adds the read-only directory tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, deps Deps) {
	s.AddTool(listEmployeesTool(), listEmployeesHandler(deps))
	s.AddTool(suggestTool(), suggestHandler(deps))
	s.AddTool(orgChartTool(), orgChartHandler(deps))
	s.AddTool(searchEmployeesTool(), searchEmployeesHandler(deps))
}

// --- list_employees ---

func listEmployeesTool() mcp.Tool {
	return mcp.NewTool("list_employees",
		mcp.WithDescription("List one page of the employee directory, optionally filtered, searched and sorted."),
		mcp.WithNumber("page", mcp.Description("1-based page number (default 1)")),
		mcp.WithNumber("page_size", mcp.Description("Rows per page (default 20, max 100)")),
		mcp.WithString("search", mcp.Description("Free-text search over name, email and position")),
		mcp.WithString("department", mcp.Description("Department filter")),
		mcp.WithString("location", mcp.Description("Location filter")),
		mcp.WithString("status", mcp.Description("Status filter (active, on_leave, terminated)")),
		mcp.WithString("employment_type", mcp.Description("Employment type filter (full_time, part_time, contractor)")),
		mcp.WithString("sort_by", mcp.Description("Field to sort by, e.g. lastName")),
		mcp.WithString("sort_order", mcp.Description("asc or desc")),
	)
}

func queryFromRequest(req mcp.CallToolRequest) domain.Query {
	q := domain.Query{
		Page:      req.GetInt("page", 1),
		PageSize:  req.GetInt("page_size", defaultPageSize),
		Search:    strings.TrimSpace(req.GetString("search", "")),
		SortField: req.GetString("sort_by", ""),
		SortOrder: domain.SortOrder(strings.ToLower(req.GetString("sort_order", ""))),
		Filters:   domain.Filters{},
	}
	for _, key := range domain.FilterKeys {
		if v := strings.TrimSpace(req.GetString(key, "")); v != "" {
			q.Filters[key] = v
		}
	}
	return q
}

func listEmployeesHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q := queryFromRequest(req)
		res, err := commands.NewListEmployeesCommand(deps.Directory, q).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		p := domain.Pagination{Page: q.Page, PageSize: q.PageSize, TotalCount: res.TotalCount}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Page %d of %d (%d employees)\n", q.Page, p.TotalPages(), res.TotalCount)
		for _, e := range res.Items {
			sb.WriteString(formatEmployee(e))
			sb.WriteByte('\n')
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- suggest ---

func suggestTool() mcp.Tool {
	return mcp.NewTool("suggest",
		mcp.WithDescription("Search-as-you-type completions for a partial name, email or department."),
		mcp.WithString("term",
			mcp.Description("Partial search term (at least 2 characters)"),
			mcp.Required(),
		),
		mcp.WithNumber("limit", mcp.Description("Maximum suggestions (default 8)")),
	)
}

func suggestHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		term := req.GetString("term", "")
		suggestions, err := commands.NewSuggestCommand(deps.Directory, term, req.GetInt("limit", 8)).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(suggestions, formatSuggestion)
	}
}

// --- org_chart ---

func orgChartTool() mcp.Tool {
	return mcp.NewTool("org_chart",
		mcp.WithDescription("Show the reporting tree under an employee."),
		mcp.WithString("root_id",
			mcp.Description("Employee ID at the top of the chart"),
			mcp.Required(),
		),
		mcp.WithNumber("depth", mcp.Description("Levels to load, the root counting as one (default 3)")),
		mcp.WithString("department", mcp.Description("Only show employees in this department")),
	)
}

func orgChartHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		engine := hierarchy.New(deps.Hierarchy, deps.HierarchyOptions...)
		defer engine.Close()

		nodes, err := commands.NewOrgChartCommand(engine,
			req.GetString("root_id", ""),
			req.GetInt("depth", hierarchy.DefaultDepth),
			req.GetString("department", ""),
		).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		if m := engine.Manager(); m != nil {
			fmt.Fprintf(&sb, "reports to %s\n", m.FullName())
		}
		renderChart(&sb, nodes)
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func renderChart(sb *strings.Builder, nodes []domain.DisplayNode) {
	for _, n := range nodes {
		marker := ""
		if !n.Loaded {
			marker = " …"
		}
		fmt.Fprintf(sb, "%s%s  %s  %s%s\n", strings.Repeat("  ", n.Level), n.ID, n.FullName(), n.Position, marker)
	}
}

// --- search_employees ---

func searchEmployeesTool() mcp.Tool {
	return mcp.NewTool("search_employees",
		mcp.WithDescription("Find employees by name, email or position, ranked by relevance."),
		mcp.WithString("query",
			mcp.Description("Search query"),
			mcp.Required(),
		),
		mcp.WithNumber("limit", mcp.Description("Maximum results (default 20)")),
	)
}

func searchEmployeesHandler(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if strings.TrimSpace(query) == "" {
			return toolError(fmt.Errorf("query is required"))
		}

		results, err := commands.NewSearchCommand(deps.Hierarchy, query, req.GetInt("limit", defaultSearchLimit)).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(results) == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}

		var sb strings.Builder
		for _, r := range results {
			sb.WriteString(formatEmployee(r.Employee))
			sb.WriteByte('\n')
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatEmployee(e domain.Employee) string {
	return fmt.Sprintf("%s  %s  %s  %s  %s", e.ID, e.FullName(), e.Email, e.Position, e.Department)
}

func formatSuggestion(s domain.Suggestion) string {
	if s.EmployeeID != "" {
		return fmt.Sprintf("%s  (%s)", s.Text, s.EmployeeID)
	}
	return s.Text
}
