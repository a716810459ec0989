package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/api/dto"
	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/books",
		Summary:     "List books",
		Description: "Returns one page of books, optionally filtered by text and genre",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book with its rating summary",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/books",
		Summary:       "Create book",
		Description:   "Adds a book owned by the caller",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
		Security:      protected,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/api/books/{id}",
		Summary:     "Update book",
		Description: "Partially updates a book. Only the owner may edit it",
		Tags:        []string{"Books"},
		Security:    protected,
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes a book and all of its reviews. Only the owner may delete it",
		Tags:        []string{"Books"},
		Security:    protected,
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBookReviews",
		Method:      http.MethodGet,
		Path:        "/api/books/{id}/reviews",
		Summary:     "List book reviews",
		Description: "Returns every review of a book, newest first, with reviewer names",
		Tags:        []string{"Reviews"},
	}, s.handleListBookReviews)
}

// ListBooksInput contains parameters for listing books.
type ListBooksInput struct {
	dto.PaginationParams
	dto.SortParams
	Search string `query:"search" doc:"Case-insensitive text matched against title, author and description"`
	Genre  string `query:"genre" doc:"Exact genre"`
}

// BookInput is the request body for creating a book.
type BookInput struct {
	Title         string `json:"title" minLength:"1" maxLength:"500" doc:"Title"`
	Author        string `json:"author" minLength:"1" maxLength:"300" doc:"Author"`
	Description   string `json:"description" maxLength:"20000" doc:"Description; HTML is converted to Markdown"`
	Genre         string `json:"genre" minLength:"1" maxLength:"100" doc:"Genre"`
	PublishedYear int    `json:"published_year" minimum:"0" maximum:"9999" doc:"Year of publication"`
}

// CreateBookInput wraps the create request for huma.
type CreateBookInput struct {
	Body BookInput
}

// BookUpdateRequest is the request body for updating a book.
// Omitted fields are left unchanged.
type BookUpdateRequest struct {
	Title         *string `json:"title,omitempty" maxLength:"500" doc:"Title"`
	Author        *string `json:"author,omitempty" maxLength:"300" doc:"Author"`
	Description   *string `json:"description,omitempty" maxLength:"20000" doc:"Description"`
	Genre         *string `json:"genre,omitempty" maxLength:"100" doc:"Genre"`
	PublishedYear *int    `json:"published_year,omitempty" minimum:"0" maximum:"9999" doc:"Year of publication"`
}

// UpdateBookInput wraps the update request for huma.
type UpdateBookInput struct {
	dto.IDParam
	Body BookUpdateRequest
}

// BookOutput wraps a book for huma.
type BookOutput struct {
	Body *service.BookResponse
}

// BookListOutput is one page of books. The body is a plain array; paging
// details travel in headers.
type BookListOutput struct {
	Total    int  `header:"X-Total-Count" doc:"Books matching the filters"`
	Page     int  `header:"X-Page" doc:"Page number, starting at 1"`
	PageSize int  `header:"X-Page-Size" doc:"Books per page"`
	HasMore  bool `header:"X-Has-More" doc:"Whether a later page exists"`
	Body     []service.BookResponse
}

// ReviewListOutput wraps a book's reviews for huma.
type ReviewListOutput struct {
	Body []service.ReviewWithUser
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	resp, err := s.services.Book.ListBooks(ctx, domain.BookQuery{
		Search:    input.Search,
		Genre:     input.Genre,
		SortBy:    input.SortBy,
		SortOrder: input.SortOrder,
		Page:      input.Page,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &BookListOutput{
		Total:    resp.Total,
		Page:     resp.Page,
		PageSize: resp.PageSize,
		HasMore:  resp.HasMore,
		Body:     resp.Books,
	}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *dto.IDParam) (*BookOutput, error) {
	book, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.CreateBook(ctx, userID, service.CreateBookRequest{
		Title:         input.Body.Title,
		Author:        input.Body.Author,
		Description:   input.Body.Description,
		Genre:         input.Body.Genre,
		PublishedYear: input.Body.PublishedYear,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateBook(ctx, userID, input.ID, service.UpdateBookRequest{
		Title:         input.Body.Title,
		Author:        input.Body.Author,
		Description:   input.Body.Description,
		Genre:         input.Body.Genre,
		PublishedYear: input.Body.PublishedYear,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *dto.IDParam) (*dto.MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.services.Book.DeleteBook(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &dto.MessageOutput{Body: dto.MessageResponse{Message: resp.Message}}, nil
}

func (s *Server) handleListBookReviews(ctx context.Context, input *dto.IDParam) (*ReviewListOutput, error) {
	reviews, err := s.services.Review.ListBookReviews(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []service.ReviewWithUser{}
	}
	return &ReviewListOutput{Body: reviews}, nil
}
