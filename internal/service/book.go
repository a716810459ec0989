package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookreview/bookreview-server/internal/domain"
	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
	"github.com/bookreview/bookreview-server/internal/id"
	"github.com/bookreview/bookreview-server/internal/store"
	"github.com/bookreview/bookreview-server/internal/validation"
)

const (
	msgBookNotFound     = "Book not found"
	msgBookEditDenied   = "You can only edit your own books"
	msgBookDeleteDenied = "You can only delete your own books"
	msgBookDeleted      = "Book deleted successfully"
)

// MessageResponse is a bare confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// BookService manages the book catalogue.
type BookService struct {
	store     store.Store
	indexer   BookIndexer
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewBookService creates a new book service. indexer may be nil.
func NewBookService(store store.Store, indexer BookIndexer, logger *slog.Logger) *BookService {
	return &BookService{
		store:     store,
		indexer:   indexer,
		validator: validation.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// CreateBookRequest contains the fields of a new book.
type CreateBookRequest struct {
	Title         string `json:"title" validate:"required,notblank,max=500"`
	Author        string `json:"author" validate:"required,notblank,max=300"`
	Description   string `json:"description" validate:"max=20000"`
	Genre         string `json:"genre" validate:"required,notblank,max=100"`
	PublishedYear int    `json:"published_year" validate:"min=0,max=9999"`
}

// UpdateBookRequest carries a partial update. Omitted fields are unchanged.
type UpdateBookRequest struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,notblank,max=500"`
	Author        *string `json:"author,omitempty" validate:"omitempty,notblank,max=300"`
	Description   *string `json:"description,omitempty" validate:"omitempty,max=20000"`
	Genre         *string `json:"genre,omitempty" validate:"omitempty,notblank,max=100"`
	PublishedYear *int    `json:"published_year,omitempty" validate:"omitempty,min=0,max=9999"`
}

// BookResponse is a book with its owner's display name.
type BookResponse struct {
	domain.Book
	AddedByName string `json:"added_by_name"`
}

// BookListResponse is one page of the catalogue.
type BookListResponse struct {
	Books    []BookResponse `json:"books"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	HasMore  bool           `json:"has_more"`
}

// ListBooks filters, sorts and paginates the catalogue.
func (s *BookService) ListBooks(ctx context.Context, query domain.BookQuery) (*BookListResponse, error) {
	query = query.Normalize()

	page, err := s.store.ListBooks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	books, err := s.withOwnerNames(ctx, page.Books)
	if err != nil {
		return nil, err
	}

	return &BookListResponse{
		Books:    books,
		Total:    page.Total,
		Page:     query.Page,
		PageSize: query.Limit,
		HasMore:  query.Offset()+len(books) < page.Total,
	}, nil
}

// GetBook returns a single book.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*BookResponse, error) {
	book, err := s.getBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	books, err := s.withOwnerNames(ctx, []*domain.Book{book})
	if err != nil {
		return nil, err
	}
	return &books[0], nil
}

// CreateBook adds a book owned by userID. The rating aggregate starts at zero.
func (s *BookService) CreateBook(ctx context.Context, userID string, req CreateBookRequest) (*BookResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	owner, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized(msgUserNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	now := s.now().UTC()
	book := &domain.Book{
		ID:            bookID,
		Title:         req.Title,
		Author:        req.Author,
		Description:   descriptionToMarkdown(req.Description),
		Genre:         req.Genre,
		PublishedYear: req.PublishedYear,
		AddedBy:       owner.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("book created", "book_id", book.ID, "user_id", userID)
	indexQuietly(ctx, s.indexer, s.logger, book)

	return &BookResponse{Book: *book, AddedByName: owner.Name}, nil
}

// UpdateBook applies a partial update to a book owned by userID.
// The rating aggregate is never touched here.
func (s *BookService) UpdateBook(ctx context.Context, userID, bookID string, req UpdateBookRequest) (*BookResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.getBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.IsOwnedBy(userID) {
		return nil, domainerrors.Forbidden(msgBookEditDenied)
	}

	patch := domain.BookPatch{
		Title:         req.Title,
		Author:        req.Author,
		Genre:         req.Genre,
		PublishedYear: req.PublishedYear,
	}
	if req.Description != nil {
		md := descriptionToMarkdown(*req.Description)
		patch.Description = &md
	}

	if patch.Apply(book) {
		book.UpdatedAt = s.now().UTC()
		if err := s.store.UpdateBook(ctx, book); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.NotFound(msgBookNotFound)
			}
			return nil, fmt.Errorf("update book: %w", err)
		}
		s.logger.Info("book updated", "book_id", book.ID, "user_id", userID)
		indexQuietly(ctx, s.indexer, s.logger, book)
	}

	books, err := s.withOwnerNames(ctx, []*domain.Book{book})
	if err != nil {
		return nil, err
	}
	return &books[0], nil
}

// DeleteBook removes a book owned by userID together with its reviews.
func (s *BookService) DeleteBook(ctx context.Context, userID, bookID string) (*MessageResponse, error) {
	book, err := s.getBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.IsOwnedBy(userID) {
		return nil, domainerrors.Forbidden(msgBookDeleteDenied)
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return nil, fmt.Errorf("delete book: %w", err)
	}

	s.logger.Info("book deleted", "book_id", bookID, "user_id", userID)

	if s.indexer != nil {
		if err := s.indexer.RemoveBook(ctx, bookID); err != nil {
			s.logger.Warn("failed to remove book from index", "book_id", bookID, "error", err)
		}
	}

	return &MessageResponse{Message: msgBookDeleted}, nil
}

func (s *BookService) getBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound(msgBookNotFound)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// withOwnerNames resolves every owner in one batch lookup.
func (s *BookService) withOwnerNames(ctx context.Context, books []*domain.Book) ([]BookResponse, error) {
	ids := make([]string, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.AddedBy)
	}

	owners, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get book owners: %w", err)
	}

	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, BookResponse{Book: *b, AddedByName: owners[b.AddedBy].DisplayName()})
	}
	return out, nil
}
