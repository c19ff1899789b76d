package dimension

import "fmt"

// tagNode is one record in a tag arena. Hierarchy is held as explicit
// parent-ID fields indexed by ID, never as pointers, so a cycle can only be
// introduced by reparent and is caught there.
type tagNode struct {
	id       string
	name     string
	parentID string
	archived bool
}

// arena stores one tag hierarchy (a forest) and its child index.
type arena struct {
	nodes    map[string]*tagNode
	children map[string][]string
	order    []string // IDs in creation order
}

func newArena() *arena {
	return &arena{
		nodes:    make(map[string]*tagNode),
		children: make(map[string][]string),
	}
}

func (a *arena) add(id, name, parentID string) error {
	if parentID != "" {
		if _, ok := a.nodes[parentID]; !ok {
			return fmt.Errorf("%w: parent %s", ErrUnknownTag, parentID)
		}
	}
	a.nodes[id] = &tagNode{id: id, name: name, parentID: parentID}
	a.children[parentID] = append(a.children[parentID], id)
	a.order = append(a.order, id)
	return nil
}

// isAncestor reports whether candidate is an ancestor of nodeID. The walk is
// bounded by the arena size, so a corrupt parent chain cannot loop forever.
func (a *arena) isAncestor(candidate, nodeID string) bool {
	cur := a.nodes[nodeID]
	for steps := 0; cur != nil && cur.parentID != "" && steps <= len(a.nodes); steps++ {
		if cur.parentID == candidate {
			return true
		}
		cur = a.nodes[cur.parentID]
	}
	return false
}

func (a *arena) reparent(nodeID, newParentID string) error {
	n, ok := a.nodes[nodeID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTag, nodeID)
	}
	if newParentID != "" {
		if _, ok := a.nodes[newParentID]; !ok {
			return fmt.Errorf("%w: parent %s", ErrUnknownTag, newParentID)
		}
		if newParentID == nodeID || a.isAncestor(nodeID, newParentID) {
			return fmt.Errorf("%w: %s is a descendant of %s", ErrCycle, newParentID, nodeID)
		}
	}

	// Detach from the old parent's child list, then attach.
	old := a.children[n.parentID]
	for i, c := range old {
		if c == nodeID {
			a.children[n.parentID] = append(old[:i:i], old[i+1:]...)
			break
		}
	}
	n.parentID = newParentID
	a.children[newParentID] = append(a.children[newParentID], nodeID)
	return nil
}

// ancestors returns the parent chain of nodeID, nearest first.
func (a *arena) ancestors(nodeID string) ([]string, error) {
	n, ok := a.nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTag, nodeID)
	}
	var out []string
	for steps := 0; n.parentID != "" && steps <= len(a.nodes); steps++ {
		out = append(out, n.parentID)
		n = a.nodes[n.parentID]
	}
	return out, nil
}

// descendants returns nodeID and every node below it, breadth-first.
func (a *arena) descendants(nodeID string) ([]string, error) {
	if _, ok := a.nodes[nodeID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTag, nodeID)
	}
	out := []string{nodeID}
	for i := 0; i < len(out); i++ {
		out = append(out, a.children[out[i]]...)
	}
	return out, nil
}
