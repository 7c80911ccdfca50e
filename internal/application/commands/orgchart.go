package commands

import (
	"context"
	"strings"

	"peopledir/internal/application"
	"peopledir/internal/domain"
	"peopledir/internal/hierarchy"
)

// OrgChartCommand loads a subtree and returns it fully expanded
type OrgChartCommand struct {
	engine     *hierarchy.Engine
	RootID     domain.EmployeeID
	Depth      int
	Department string
}

// NewOrgChartCommand creates a new OrgChartCommand
func NewOrgChartCommand(engine *hierarchy.Engine, rootID string, depth int, department string) *OrgChartCommand {
	return &OrgChartCommand{
		engine:     engine,
		RootID:     domain.EmployeeID(strings.TrimSpace(rootID)),
		Depth:      depth,
		Department: strings.TrimSpace(department),
	}
}

// Execute loads the chart and flattens it in display order
func (c *OrgChartCommand) Execute(ctx context.Context) ([]domain.DisplayNode, error) {
	if c.RootID == "" {
		return nil, &application.ValidationError{Field: "root", Message: "is required"}
	}

	res := c.engine.LoadRoot(ctx, c.RootID, c.Depth)
	if res.IsCancelled() {
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	c.engine.SetDepartmentFilter(c.Department)
	c.engine.ExpandAll()
	return c.engine.Flatten(), nil
}
