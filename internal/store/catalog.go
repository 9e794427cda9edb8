package store

import (
	"context"
	"fmt"

	"github.com/stacksapp/stacks-server/internal/domain"
)

// BookFilter narrows FindBooks results. Empty fields match everything.
type BookFilter struct {
	AuthorID string
	Genre    string
}

// FindBooks returns all books matching the filter in a single prefix scan.
// The catalog is small enough that filtering in memory beats maintaining
// per-genre index keys.
func (s *Store) FindBooks(ctx context.Context, filter BookFilter) ([]*domain.Book, error) {
	books := make([]*domain.Book, 0)

	for book, err := range s.Books.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list books: %w", err)
		}
		if filter.AuthorID != "" && book.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Genre != "" && !book.HasGenre(filter.Genre) {
			continue
		}
		books = append(books, book)
	}

	return books, nil
}
