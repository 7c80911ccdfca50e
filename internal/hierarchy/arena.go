package hierarchy

import "peopledir/internal/domain"

// node is one employee in the arena. children == nil means not loaded;
// an empty non-nil slice means loaded with no reports.
type node struct {
	emp      domain.Employee
	parent   domain.EmployeeID
	children []domain.EmployeeID
	level    int
}

func (n *node) loaded() bool {
	return n.children != nil
}

// arena is the org chart as a flat id -> node map. A patch touches the
// target, its old descendants and the new ones; every other entry is left
// as it was.
type arena map[domain.EmployeeID]*node

// insert adds sub and its reports below parent. levels counts the levels
// the response is allowed to contribute, sub included: at levels == 1 sub's
// children are left unloaded whatever the server sent.
func (a arena) insert(sub *domain.HierarchyNode, parent domain.EmployeeID, level, levels int) {
	n := &node{emp: sub.Employee, parent: parent, level: level}
	a[sub.ID] = n
	if levels <= 1 || !sub.Loaded() {
		return
	}
	n.children = a.insertChildren(sub, level, levels)
}

func (a arena) insertChildren(sub *domain.HierarchyNode, level, levels int) []domain.EmployeeID {
	children := make([]domain.EmployeeID, 0, len(sub.DirectReports))
	for _, child := range sub.DirectReports {
		if child == nil || child.ID == "" {
			continue
		}
		children = append(children, child.ID)
		a.insert(child, sub.ID, level+1, levels-1)
	}
	return children
}

// removeDescendants deletes every node below id, not id itself
func (a arena) removeDescendants(id domain.EmployeeID, removed func(domain.EmployeeID)) {
	n, ok := a[id]
	if !ok {
		return
	}
	for _, child := range n.children {
		a.removeDescendants(child, removed)
		delete(a, child)
		removed(child)
	}
}

// patch merges sub's attributes into the existing target and replaces the
// target's subtree with sub's reports. It reports false when the target is
// not in the arena.
func (a arena) patch(sub *domain.HierarchyNode, levels int, removed func(domain.EmployeeID)) bool {
	target, ok := a[sub.ID]
	if !ok {
		return false
	}
	a.removeDescendants(sub.ID, removed)

	// a fresh node, so holders of the old pointer keep their snapshot
	patched := &node{
		emp:    target.emp.Merge(sub.Employee),
		parent: target.parent,
		level:  target.level,
	}
	a[sub.ID] = patched
	if levels <= 1 {
		return true
	}
	// the response root was asked for its reports; absent means none
	patched.children = a.insertChildren(sub, patched.level, levels)
	return true
}

// depth is the number of levels currently in the arena
func (a arena) depth() int {
	deepest := 0
	for _, n := range a {
		deepest = max(deepest, n.level+1)
	}
	return deepest
}
