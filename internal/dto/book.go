// Package dto provides Data Transfer Objects for API responses and stream events.
//
// DTOs carry denormalized fields the client can render immediately: books
// resolve their author to the full author record, authors carry their derived
// book count.
package dto

import "github.com/stacksapp/stacks-server/internal/domain"

// Book is the client-facing representation of a book with its author resolved.
// The author is the DTO shape, count included, so book payloads never mix
// storage types into the API surface.
type Book struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Published int      `json:"published"`
	Genres    []string `json:"genres"`
	Author    Author   `json:"author"`
}

// NewBook builds a Book from a catalog entry, its resolved author, and the
// author's derived book count.
func NewBook(book *domain.Book, author *domain.Author, bookCount int) *Book {
	return &Book{
		ID:        book.ID,
		Title:     book.Title,
		Published: book.Published,
		Genres:    book.Genres,
		Author:    *NewAuthor(author, bookCount),
	}
}

// Author is the client-facing representation of an author.
// BookCount is derived at read time, never stored.
type Author struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Born      *int   `json:"born,omitempty"`
	BookCount int    `json:"bookCount"`
}

// NewAuthor builds an Author with its derived book count.
func NewAuthor(author *domain.Author, bookCount int) *Author {
	return &Author{
		ID:        author.ID,
		Name:      author.Name,
		Born:      author.Born,
		BookCount: bookCount,
	}
}
