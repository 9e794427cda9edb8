// Package domain defines the core entities of the Stacks catalog.
package domain

// Book is a single catalog entry. A book references exactly one author by ID
// and is never edited or deleted once created.
type Book struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Published int      `json:"published"`
	Genres    []string `json:"genres"`
	AuthorID  string   `json:"author_id"`
}

// HasGenre reports whether the book carries the given genre tag.
func (b *Book) HasGenre(genre string) bool {
	for _, g := range b.Genres {
		if g == genre {
			return true
		}
	}
	return false
}
