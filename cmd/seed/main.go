// Package main provides a tool to seed the database with a sample catalog.
//
// This creates a handful of well-known software books and their authors so
// the API has something to serve on a fresh install. Existing entries are
// skipped, so the tool is safe to run repeatedly.
//
// Usage:
//
//	DB_PATH=~/Stacks/data/db go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/stacksapp/stacks-server/internal/domain"
	"github.com/stacksapp/stacks-server/internal/id"
	"github.com/stacksapp/stacks-server/internal/store"
)

type seedAuthor struct {
	name string
	born int
}

type seedBook struct {
	title     string
	author    string
	published int
	genres    []string
}

var authors = []seedAuthor{
	{"Robert Martin", 1952},
	{"Martin Fowler", 1963},
	{"Fyodor Dostoevsky", 1821},
	{"Joshua Kerievsky", 0},
	{"Sandi Metz", 0},
}

var books = []seedBook{
	{"Clean Code", "Robert Martin", 2008, []string{"refactoring"}},
	{"Agile software development", "Robert Martin", 2002, []string{"agile", "patterns", "design"}},
	{"Refactoring, edition 2", "Martin Fowler", 2018, []string{"refactoring"}},
	{"Refactoring to patterns", "Joshua Kerievsky", 2008, []string{"refactoring", "patterns"}},
	{"Practical Object-Oriented Design, An Agile Primer Using Ruby", "Sandi Metz", 2012, []string{"refactoring", "design"}},
	{"Crime and punishment", "Fyodor Dostoevsky", 1866, []string{"classic", "crime"}},
	{"Demons", "Fyodor Dostoevsky", 1872, []string{"classic", "revolution"}},
}

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dbPath = filepath.Join(home, "Stacks", "data", "db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	authorIDs := make(map[string]string)
	for _, a := range authors {
		existing, err := s.Authors.GetByIndex(ctx, "name", a.name)
		if err == nil {
			authorIDs[a.name] = existing.ID
			fmt.Printf("Author exists: %s\n", a.name)
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			log.Fatalf("Failed to look up author %s: %v", a.name, err)
		}

		authorID, err := id.Generate("author")
		if err != nil {
			log.Fatalf("Failed to generate author ID: %v", err)
		}

		author := &domain.Author{ID: authorID, Name: a.name}
		if a.born != 0 {
			born := a.born
			author.Born = &born
		}

		if err := s.Authors.Create(ctx, authorID, author); err != nil {
			log.Fatalf("Failed to create author %s: %v", a.name, err)
		}
		authorIDs[a.name] = authorID
		fmt.Printf("Created author: %s\n", a.name)
	}

	created := 0
	for _, b := range books {
		if _, err := s.Books.GetByIndex(ctx, "title", b.title); err == nil {
			fmt.Printf("Book exists: %s\n", b.title)
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			log.Fatalf("Failed to look up book %s: %v", b.title, err)
		}

		bookID, err := id.Generate("book")
		if err != nil {
			log.Fatalf("Failed to generate book ID: %v", err)
		}

		book := &domain.Book{
			ID:        bookID,
			Title:     b.title,
			Published: b.published,
			Genres:    b.genres,
			AuthorID:  authorIDs[b.author],
		}

		if err := s.Books.Create(ctx, bookID, book); err != nil {
			log.Fatalf("Failed to create book %s: %v", b.title, err)
		}
		created++
		fmt.Printf("Created book: %s (%s, %d)\n", b.title, b.author, b.published)
	}

	fmt.Printf("\nDone. %d books created, %d authors known.\n", created, len(authorIDs))
}
