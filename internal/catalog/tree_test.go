package catalog

import (
	"errors"
	"testing"
	"time"

	"shopnest/internal/domain"

	"github.com/stretchr/testify/require"
)

type flatNode struct {
	id    string
	depth int
}

func flatten(roots []*CategoryNode) []flatNode {
	var out []flatNode
	Walk(roots, func(n *CategoryNode, depth int) {
		out = append(out, flatNode{n.ID, depth})
	})
	return out
}

func TestBuildCategoryTree_SeedForest(t *testing.T) {
	roots, err := BuildCategoryTree(DefaultCatalog(time.Now()).Categories)
	require.NoError(t, err)

	require.Equal(t, []flatNode{
		{"cat_men", 0},
		{"cat_tshirts", 1},
		{"cat_hoodies", 1},
		{"cat_shoes", 1},
		{"cat_women", 0},
		{"cat_dresses", 1},
	}, flatten(roots))
}

func TestBuildCategoryTree_ChildBeforeParent(t *testing.T) {
	roots, err := BuildCategoryTree([]domain.Category{
		{ID: "leaf", Name: "Leaf", Parent: "mid"},
		{ID: "mid", Name: "Mid", Parent: "top"},
		{ID: "top", Name: "Top"},
		{ID: "sibling", Name: "Sibling", Parent: "top"},
	})
	require.NoError(t, err)

	require.Equal(t, []flatNode{
		{"top", 0},
		{"mid", 1},
		{"leaf", 2},
		{"sibling", 1},
	}, flatten(roots))
}

func TestBuildCategoryTree_DanglingParentBecomesRoot(t *testing.T) {
	roots, err := BuildCategoryTree([]domain.Category{
		{ID: "a", Name: "A"},
		{ID: "orphan", Name: "Orphan", Parent: "missing"},
	})
	require.NoError(t, err)
	require.Len(t, roots, 2)
	require.Equal(t, "orphan", roots[1].ID)
	require.Empty(t, roots[1].Children)
}

func TestBuildCategoryTree_Empty(t *testing.T) {
	roots, err := BuildCategoryTree(nil)
	require.NoError(t, err)
	require.NotNil(t, roots)
	require.Empty(t, roots)
}

func TestBuildCategoryTree_MalformedHierarchy(t *testing.T) {
	tests := []struct {
		name       string
		categories []domain.Category
	}{
		{"self parent", []domain.Category{{ID: "a", Parent: "a"}}},
		{"two cycle", []domain.Category{{ID: "a", Parent: "b"}, {ID: "b", Parent: "a"}}},
		{"cycle below a root", []domain.Category{
			{ID: "root"},
			{ID: "x", Parent: "z"},
			{ID: "y", Parent: "x"},
			{ID: "z", Parent: "y"},
		}},
		{"duplicate id", []domain.Category{{ID: "a"}, {ID: "a"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildCategoryTree(tt.categories)
			require.Error(t, err)
			require.True(t, errors.Is(err, domain.ErrMalformedHierarchy))
		})
	}
}

func TestSelection(t *testing.T) {
	var sel Selection
	_, ok := sel.Active()
	require.False(t, ok)
	require.False(t, sel.IsActive(""))

	sel.Select("cat_men")
	id, ok := sel.Active()
	require.True(t, ok)
	require.Equal(t, "cat_men", id)

	sel.Select("cat_shoes")
	require.True(t, sel.IsActive("cat_shoes"))
	require.False(t, sel.IsActive("cat_men"))

	sel.Clear()
	_, ok = sel.Active()
	require.False(t, ok)
}

func TestMarkActive(t *testing.T) {
	roots, err := BuildCategoryTree(DefaultCatalog(time.Now()).Categories)
	require.NoError(t, err)

	MarkActive(roots, NewSelection("cat_shoes"))

	var active []string
	Walk(roots, func(n *CategoryNode, _ int) {
		if n.Active {
			active = append(active, n.ID)
		}
	})
	require.Equal(t, []string{"cat_shoes"}, active)

	MarkActive(roots, Selection{})
	Walk(roots, func(n *CategoryNode, _ int) {
		require.False(t, n.Active)
	})
}
