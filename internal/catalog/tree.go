package catalog

import (
	"fmt"

	"shopnest/internal/domain"
)

// CategoryNode is a category with its children attached
type CategoryNode struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Parent   string          `json:"parent,omitempty"`
	Active   bool            `json:"active"`
	Children []*CategoryNode `json:"children"`
}

// BuildCategoryTree converts a flat category list into a forest. A
// category whose parent is present becomes that node's child; every other
// category is a root. Siblings keep input order. Duplicate ids and parent
// cycles fail with domain.ErrMalformedHierarchy.
func BuildCategoryTree(categories []domain.Category) ([]*CategoryNode, error) {
	nodes := make(map[string]*CategoryNode, len(categories))
	ordered := make([]*CategoryNode, 0, len(categories))

	for _, c := range categories {
		if _, exists := nodes[c.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate category id %q", domain.ErrMalformedHierarchy, c.ID)
		}
		node := &CategoryNode{ID: c.ID, Name: c.Name, Parent: c.Parent, Children: []*CategoryNode{}}
		nodes[c.ID] = node
		ordered = append(ordered, node)
	}

	if err := detectCycles(nodes); err != nil {
		return nil, err
	}

	roots := []*CategoryNode{}
	for _, node := range ordered {
		if parent, ok := nodes[node.Parent]; ok && node.Parent != "" {
			parent.Children = append(parent.Children, node)
			continue
		}
		roots = append(roots, node)
	}

	return roots, nil
}

// detectCycles walks every parent chain. Chains end at a root or at a
// dangling parent reference.
func detectCycles(nodes map[string]*CategoryNode) error {
	// 0 unvisited, 1 on the current chain, 2 known to reach a root
	state := make(map[string]int, len(nodes))

	for id := range nodes {
		var chain []string
		current := id
		for {
			if state[current] == 2 {
				break
			}
			if state[current] == 1 {
				return fmt.Errorf("%w: cycle through category %q", domain.ErrMalformedHierarchy, current)
			}
			state[current] = 1
			chain = append(chain, current)

			parent := nodes[current].Parent
			if _, ok := nodes[parent]; !ok || parent == "" {
				break
			}
			current = parent
		}
		for _, c := range chain {
			state[c] = 2
		}
	}

	return nil
}

// Walk visits every node depth-first in display order
func Walk(roots []*CategoryNode, visit func(node *CategoryNode, depth int)) {
	var walk func(nodes []*CategoryNode, depth int)
	walk = func(nodes []*CategoryNode, depth int) {
		for _, n := range nodes {
			visit(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(roots, 0)
}
