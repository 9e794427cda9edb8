package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/stacksapp/stacks-server/internal/dto"
	"github.com/stacksapp/stacks-server/internal/service"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "allBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/books",
		Summary:     "List books",
		Description: "Returns books with their authors resolved, optionally filtered by author name and genre",
		Tags:        []string{"Catalog"},
	}, s.handleAllBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "bookCount",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/books/count",
		Summary:     "Count books",
		Description: "Returns the total number of books in the catalog",
		Tags:        []string{"Catalog"},
	}, s.handleBookCount)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/catalog/books",
		Summary:     "Add book",
		Description: "Adds a book to the catalog, creating its author when the name is unknown. Requires authentication.",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "allAuthors",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/authors",
		Summary:     "List authors",
		Description: "Returns every author with its derived book count",
		Tags:        []string{"Catalog"},
	}, s.handleAllAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID: "authorCount",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/authors/count",
		Summary:     "Count authors",
		Description: "Returns the total number of authors in the catalog",
		Tags:        []string{"Catalog"},
	}, s.handleAuthorCount)

	huma.Register(s.api, huma.Operation{
		OperationID: "editAuthor",
		Method:      http.MethodPatch,
		Path:        "/api/v1/catalog/authors/{name}",
		Summary:     "Set author birth year",
		Description: "Sets the birth year of the named author. Unknown names yield a null author instead of an error. Requires authentication.",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleEditAuthor)
}

// ListBooksInput carries the optional book filters.
type ListBooksInput struct {
	Author string `query:"author" doc:"Filter by author name"`
	Genre  string `query:"genre" doc:"Filter by genre"`
}

// ListBooksOutput wraps the book list for Huma.
type ListBooksOutput struct {
	Body []*dto.Book
}

// CountResponse carries a single catalog count.
type CountResponse struct {
	Count int `json:"count" doc:"Number of items"`
}

// CountOutput wraps a count response for Huma.
type CountOutput struct {
	Body CountResponse
}

// AddBookInput wraps the book submission for Huma.
type AddBookInput struct {
	Body service.AddBookRequest
}

// BookOutput wraps a single enriched book for Huma.
type BookOutput struct {
	Body dto.Book
}

// ListAuthorsOutput wraps the author list for Huma.
type ListAuthorsOutput struct {
	Body []*dto.Author
}

// EditAuthorInput carries the author name and the new birth year.
type EditAuthorInput struct {
	Name string `path:"name" doc:"Author name"`
	Body struct {
		Born int `json:"setBornTo" doc:"Birth year to set"`
	}
}

// EditAuthorResponse carries the updated author, null when the name is unknown.
type EditAuthorResponse struct {
	Author *dto.Author `json:"author" doc:"Updated author, null when no author matched the name"`
}

// EditAuthorOutput wraps the edit result for Huma.
type EditAuthorOutput struct {
	Body EditAuthorResponse
}

func (s *Server) handleAllBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	books, err := s.services.Catalog.AllBooks(ctx, service.BookFilter{
		Author: input.Author,
		Genre:  input.Genre,
	})
	if err != nil {
		return nil, err
	}
	return &ListBooksOutput{Body: books}, nil
}

func (s *Server) handleBookCount(ctx context.Context, _ *struct{}) (*CountOutput, error) {
	count, err := s.services.Catalog.BookCount(ctx)
	if err != nil {
		return nil, err
	}
	return &CountOutput{Body: CountResponse{Count: count}}, nil
}

func (s *Server) handleAddBook(ctx context.Context, input *AddBookInput) (*BookOutput, error) {
	book, err := s.services.Catalog.AddBook(ctx, CurrentUser(ctx), input.Body)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: *book}, nil
}

func (s *Server) handleAllAuthors(ctx context.Context, _ *struct{}) (*ListAuthorsOutput, error) {
	authors, err := s.services.Catalog.AllAuthors(ctx)
	if err != nil {
		return nil, err
	}
	return &ListAuthorsOutput{Body: authors}, nil
}

func (s *Server) handleAuthorCount(ctx context.Context, _ *struct{}) (*CountOutput, error) {
	count, err := s.services.Catalog.AuthorCount(ctx)
	if err != nil {
		return nil, err
	}
	return &CountOutput{Body: CountResponse{Count: count}}, nil
}

func (s *Server) handleEditAuthor(ctx context.Context, input *EditAuthorInput) (*EditAuthorOutput, error) {
	author, err := s.services.Catalog.EditAuthor(ctx, CurrentUser(ctx), input.Name, input.Body.Born)
	if err != nil {
		return nil, err
	}
	return &EditAuthorOutput{Body: EditAuthorResponse{Author: author}}, nil
}
