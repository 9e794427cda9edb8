package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/stacksapp/stacks-server/internal/broker"
	"github.com/stacksapp/stacks-server/internal/domain"
	"github.com/stacksapp/stacks-server/internal/dto"
	domainerrors "github.com/stacksapp/stacks-server/internal/errors"
	"github.com/stacksapp/stacks-server/internal/id"
	"github.com/stacksapp/stacks-server/internal/sse"
	"github.com/stacksapp/stacks-server/internal/store"
	"github.com/stacksapp/stacks-server/internal/validation"
)

// minAuthorNameLength applies only when a book submission creates the author
// on the fly. Existing authors are never re-validated.
const minAuthorNameLength = 4

// CatalogService handles books and authors.
type CatalogService struct {
	store     *store.Store
	broker    *broker.Broker
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	s *store.Store,
	b *broker.Broker,
	validator *validation.Validator,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		store:     s,
		broker:    b,
		validator: validator,
		logger:    logger,
	}
}

// AddBookRequest contains a book submission. Author is a name, not an ID:
// unknown authors are created automatically. Published is a pointer so that
// year zero is a representable value rather than "missing".
type AddBookRequest struct {
	Title     string   `json:"title" validate:"required,min=2"`
	Author    string   `json:"author" validate:"required"`
	Published *int     `json:"published" validate:"required"`
	Genres    []string `json:"genres,omitempty"`
}

// BookFilter narrows AllBooks results. Both fields are optional and compose.
type BookFilter struct {
	Author string
	Genre  string
}

// AddBook creates a book, creating its author first if the name is unknown.
// Requires an authenticated caller. On success the enriched book is published
// to subscribers of the book.added topic.
func (s *CatalogService) AddBook(ctx context.Context, caller *domain.User, req AddBookRequest) (*dto.Book, error) {
	if caller == nil {
		return nil, domainerrors.Authentication("not authenticated")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	// Reject duplicate titles before touching the author, so a duplicate
	// submission never creates an author as a side effect.
	if _, err := s.store.Books.GetByIndex(ctx, "title", req.Title); err == nil {
		return nil, domainerrors.ValidationWithDetails(
			fmt.Sprintf("a book with title %q already exists", req.Title), req)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check title: %w", err)
	}

	author, err := s.resolveOrCreateAuthor(ctx, req.Author)
	if err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		ID:        bookID,
		Title:     req.Title,
		Published: *req.Published,
		Genres:    req.Genres,
		AuthorID:  author.ID,
	}
	if book.Genres == nil {
		book.Genres = []string{}
	}

	if err := s.store.Books.Create(ctx, bookID, book); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a concurrent submission of the same title.
			return nil, domainerrors.ValidationWithDetails(err.Error(), req).WithCause(err)
		}
		return nil, fmt.Errorf("create book: %w", err)
	}

	count, err := s.countBooksByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	enriched := dto.NewBook(book, author, count)

	s.broker.Publish(string(sse.EventBookAdded), sse.NewBookAddedEvent(enriched))

	if s.logger != nil {
		s.logger.Info("Book added",
			"book_id", bookID,
			"title", book.Title,
			"author", author.Name,
			"added_by", caller.Username,
		)
	}

	return enriched, nil
}

// resolveOrCreateAuthor returns the author with the given name, creating it
// when unknown. Auto-created authors must satisfy the name length rule.
func (s *CatalogService) resolveOrCreateAuthor(ctx context.Context, name string) (*domain.Author, error) {
	author, err := s.store.Authors.GetByIndex(ctx, "name", name)
	if err == nil {
		return author, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup author: %w", err)
	}

	if utf8.RuneCountInString(name) < minAuthorNameLength {
		return nil, domainerrors.ValidationWithDetails(
			fmt.Sprintf("author name must be at least %d characters", minAuthorNameLength),
			map[string]string{"author": name})
	}

	authorID, err := id.Generate("author")
	if err != nil {
		return nil, fmt.Errorf("generate author ID: %w", err)
	}

	author = &domain.Author{ID: authorID, Name: name}
	if err := s.store.Authors.Create(ctx, authorID, author); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a concurrent submission; use the winner.
			return s.store.Authors.GetByIndex(ctx, "name", name)
		}
		return nil, fmt.Errorf("create author: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Author created", "author_id", authorID, "name", name)
	}

	return author, nil
}

// EditAuthor sets an author's birth year, looked up by name. A missing author
// is not an error: the result is simply nil, so clients can distinguish
// "nothing updated" from a failed request.
func (s *CatalogService) EditAuthor(ctx context.Context, caller *domain.User, name string, born int) (*dto.Author, error) {
	if caller == nil {
		return nil, domainerrors.Authentication("not authenticated")
	}

	author, err := s.store.Authors.GetByIndex(ctx, "name", name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup author: %w", err)
	}

	author.Born = &born
	if err := s.store.Authors.Update(ctx, author.ID, author); err != nil {
		return nil, fmt.Errorf("update author: %w", err)
	}

	count, err := s.countBooksByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Author updated", "author_id", author.ID, "name", name, "born", born)
	}

	return dto.NewAuthor(author, count), nil
}

// AllBooks returns books matching the filter, each with its author resolved.
// An unknown author name matches nothing rather than failing.
func (s *CatalogService) AllBooks(ctx context.Context, filter BookFilter) ([]*dto.Book, error) {
	storeFilter := store.BookFilter{Genre: filter.Genre}

	if filter.Author != "" {
		author, err := s.store.Authors.GetByIndex(ctx, "name", filter.Author)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return []*dto.Book{}, nil
			}
			return nil, fmt.Errorf("lookup author: %w", err)
		}
		storeFilter.AuthorID = author.ID
	}

	books, err := s.store.FindBooks(ctx, storeFilter)
	if err != nil {
		return nil, err
	}

	// Author book counts are derived from the whole catalog, not the
	// filtered result.
	counts := make(map[string]int)
	for book, err := range s.store.Books.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list books: %w", err)
		}
		counts[book.AuthorID]++
	}

	// Resolve each book's author once.
	authors := make(map[string]*domain.Author)
	result := make([]*dto.Book, 0, len(books))
	for _, book := range books {
		author, ok := authors[book.AuthorID]
		if !ok {
			author, err = s.store.Authors.Get(ctx, book.AuthorID)
			if err != nil {
				return nil, fmt.Errorf("resolve author %s: %w", book.AuthorID, err)
			}
			authors[book.AuthorID] = author
		}
		result = append(result, dto.NewBook(book, author, counts[book.AuthorID]))
	}

	return result, nil
}

// AllAuthors returns every author with its derived book count. Counts come
// from a single pass over the books rather than one scan per author.
func (s *CatalogService) AllAuthors(ctx context.Context) ([]*dto.Author, error) {
	counts := make(map[string]int)
	for book, err := range s.store.Books.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list books: %w", err)
		}
		counts[book.AuthorID]++
	}

	authors := make([]*dto.Author, 0)
	for author, err := range s.store.Authors.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list authors: %w", err)
		}
		authors = append(authors, dto.NewAuthor(author, counts[author.ID]))
	}

	return authors, nil
}

// BookCount returns the total number of books in the catalog.
func (s *CatalogService) BookCount(ctx context.Context) (int, error) {
	return s.store.Books.Count(ctx)
}

// AuthorCount returns the total number of authors in the catalog.
func (s *CatalogService) AuthorCount(ctx context.Context) (int, error) {
	return s.store.Authors.Count(ctx)
}

func (s *CatalogService) countBooksByAuthor(ctx context.Context, authorID string) (int, error) {
	count := 0
	for book, err := range s.store.Books.List(ctx) {
		if err != nil {
			return 0, fmt.Errorf("list books: %w", err)
		}
		if book.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}
