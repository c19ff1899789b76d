package model

// ClassTag is one node in the class hierarchy (e.g. business unit, location).
// Archiving hides a tag from assignment pickers but never detaches it from
// historical lines.
type ClassTag struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
	Archived bool   `json:"archived,omitempty"`
}

// CategoryTag is one node in the category forest. Depth is unbounded; a line
// may reference any node, and roll-ups aggregate a node with all descendants.
type CategoryTag struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
	Archived bool   `json:"archived,omitempty"`
}

// Suggestion is a tag assignment proposed by an external categorization
// component. The core only validates and applies it through the standard
// assignment path; it never computes one.
type Suggestion struct {
	ClassTagID    string  `json:"class_tag_id,omitempty"`
	CategoryTagID string  `json:"category_tag_id,omitempty"`
	Confidence    float64 `json:"confidence"`
}
