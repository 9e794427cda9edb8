package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacksapp/stacks-server/internal/domain"
	"github.com/stacksapp/stacks-server/internal/store"
)

func seedCatalog(t *testing.T, s *store.Store) {
	t.Helper()
	ctx := context.Background()

	authors := []*domain.Author{
		{ID: "author-1", Name: "Robert Martin"},
		{ID: "author-2", Name: "Martin Fowler"},
	}
	for _, a := range authors {
		require.NoError(t, s.Authors.Create(ctx, a.ID, a))
	}

	books := []*domain.Book{
		{ID: "book-1", Title: "Clean Code", Published: 2008, Genres: []string{"refactoring"}, AuthorID: "author-1"},
		{ID: "book-2", Title: "Agile software development", Published: 2002, Genres: []string{"agile", "patterns", "design"}, AuthorID: "author-1"},
		{ID: "book-3", Title: "Refactoring, edition 2", Published: 2018, Genres: []string{"refactoring"}, AuthorID: "author-2"},
	}
	for _, b := range books {
		require.NoError(t, s.Books.Create(ctx, b.ID, b))
	}
}

func bookTitles(books []*domain.Book) []string {
	titles := make([]string, 0, len(books))
	for _, b := range books {
		titles = append(titles, b.Title)
	}
	return titles
}

func TestFindBooks_NoFilter(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	books, err := s.FindBooks(context.Background(), store.BookFilter{})
	require.NoError(t, err)
	assert.Len(t, books, 3)
}

func TestFindBooks_ByAuthor(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	books, err := s.FindBooks(context.Background(), store.BookFilter{AuthorID: "author-1"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Clean Code", "Agile software development"}, bookTitles(books))
}

func TestFindBooks_ByGenre(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	books, err := s.FindBooks(context.Background(), store.BookFilter{Genre: "refactoring"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Clean Code", "Refactoring, edition 2"}, bookTitles(books))
}

func TestFindBooks_ByAuthorAndGenre(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	books, err := s.FindBooks(context.Background(), store.BookFilter{AuthorID: "author-2", Genre: "refactoring"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Refactoring, edition 2"}, bookTitles(books))
}

func TestFindBooks_NoMatches(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	books, err := s.FindBooks(context.Background(), store.BookFilter{Genre: "crime"})
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestStore_TitleUniqueness(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	err := s.Books.Create(context.Background(), "book-4",
		&domain.Book{ID: "book-4", Title: "Clean Code", Published: 2008, AuthorID: "author-2"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
	assert.Contains(t, err.Error(), "index title conflict")
}

func TestStore_AuthorNameUniqueness(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	err := s.Authors.Create(context.Background(), "author-3",
		&domain.Author{ID: "author-3", Name: "Robert Martin"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestStore_UsernameUniqueness(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users.Create(ctx, "user-1",
		&domain.User{ID: "user-1", Username: "mluukkai", FavoriteGenre: "refactoring"}))

	err := s.Users.Create(ctx, "user-2",
		&domain.User{ID: "user-2", Username: "mluukkai", FavoriteGenre: "agile"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
	assert.Contains(t, err.Error(), "index username conflict")
}

func TestStore_LookupAuthorByName(t *testing.T) {
	s := setupTestStore(t)
	seedCatalog(t, s)

	author, err := s.Authors.GetByIndex(context.Background(), "name", "Martin Fowler")
	require.NoError(t, err)
	assert.Equal(t, "author-2", author.ID)
}
