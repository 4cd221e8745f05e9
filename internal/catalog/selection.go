package catalog

// Selection tracks the single active category of a browsing session.
// The zero value has nothing selected.
type Selection struct {
	active string
}

// NewSelection returns a selection with id active. An empty id selects nothing.
func NewSelection(id string) Selection {
	return Selection{active: id}
}

// Select makes id the active category, replacing any previous choice
func (s *Selection) Select(id string) {
	s.active = id
}

// Clear drops the active category
func (s *Selection) Clear() {
	s.active = ""
}

// Active returns the active category id and whether one is set
func (s Selection) Active() (string, bool) {
	return s.active, s.active != ""
}

// IsActive reports whether id is the active category
func (s Selection) IsActive(id string) bool {
	return s.active != "" && s.active == id
}

// MarkActive sets the Active flag on every node of a freshly built tree
func MarkActive(roots []*CategoryNode, sel Selection) {
	Walk(roots, func(node *CategoryNode, _ int) {
		node.Active = sel.IsActive(node.ID)
	})
}
