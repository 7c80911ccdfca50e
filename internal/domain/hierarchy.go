package domain

// HierarchyNode is the wire shape of an org-chart subtree.
// DirectReports == nil means the children were not fetched; an empty,
// non-nil slice means they were fetched and there are none.
type HierarchyNode struct {
	Employee
	DirectReports []*HierarchyNode `json:"directReports"`
	Manager       *Employee        `json:"manager,omitempty"`
}

// Loaded reports whether the node's children were fetched
func (n *HierarchyNode) Loaded() bool {
	return n.DirectReports != nil
}

// DisplayNode is one visible row of the flattened org chart
type DisplayNode struct {
	Employee
	Level       int  // 0 for the root
	Expanded    bool // in the expansion set
	Loaded      bool // children fetched
	Loading     bool // children fetch in flight
	HasChildren bool // loaded with at least one report, or not yet loaded
	ReportCount int  // loaded direct reports
}
