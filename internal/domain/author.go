package domain

// Author is a catalog author. Books reference authors one-directionally;
// an author never stores a back-reference to its books.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Born is the author's birth year. Nil when unknown; the only field
	// editAuthor may change.
	Born *int `json:"born,omitempty"`
}
