package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookreview/bookreview-server/internal/domain"
	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
	"github.com/bookreview/bookreview-server/internal/search"
	"github.com/bookreview/bookreview-server/internal/store"
)

// Search paging limits.
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// BookIndexer keeps a secondary index of books in step with the store.
type BookIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	RemoveBook(ctx context.Context, id string) error
}

// SearchService bridges the Bleve index and the store.
// A service built with a nil index is disabled: indexing is a no-op and
// searches report the feature as unavailable.
type SearchService struct {
	index  *search.SearchIndex
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Enabled reports whether a search index is attached.
func (s *SearchService) Enabled() bool {
	return s != nil && s.index != nil
}

// SearchRequest holds the query parameters of GET /search.
type SearchRequest struct {
	Query     string
	Genre     string
	MinRating float64
	SortBy    string
	Limit     int
	Offset    int
}

// Search runs a full-text query over the catalogue.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*search.SearchResult, error) {
	if !s.Enabled() {
		return nil, domainerrors.NotFound("Search is disabled")
	}

	if req.MinRating < 0 || req.MinRating > domain.MaxRating {
		return nil, domainerrors.Validationf("min_rating must be between 0 and %d", domain.MaxRating)
	}

	params := search.DefaultSearchParams()
	params.Query = strings.TrimSpace(req.Query)
	params.Genre = strings.TrimSpace(req.Genre)
	params.MinRating = req.MinRating
	params.Offset = max(req.Offset, 0)
	if req.SortBy != "" {
		params.SortBy = req.SortBy
	}
	switch {
	case req.Limit <= 0:
		params.Limit = DefaultSearchLimit
	case req.Limit > MaxSearchLimit:
		params.Limit = MaxSearchLimit
	default:
		params.Limit = req.Limit
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return result, nil
}

// IndexBook adds or replaces a book's document.
func (s *SearchService) IndexBook(_ context.Context, book *domain.Book) error {
	if !s.Enabled() {
		return nil
	}

	if err := s.index.IndexDocument(search.BookToSearchDocument(book)); err != nil {
		return fmt.Errorf("index document: %w", err)
	}

	s.logger.Debug("indexed book", "book_id", book.ID, "title", book.Title)
	return nil
}

// RemoveBook drops a book's document.
func (s *SearchService) RemoveBook(_ context.Context, id string) error {
	if !s.Enabled() {
		return nil
	}

	if err := s.index.DeleteDocument(id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// EnsureIndexed rebuilds the index from the store when it is empty,
// e.g. on first start or after the mapping version changed.
func (s *SearchService) EnsureIndexed(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}

	count, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if count > 0 {
		return nil
	}

	return s.Reindex(ctx)
}

// Reindex replaces the index contents with every book in the store.
func (s *SearchService) Reindex(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}

	start := time.Now()

	books, err := s.store.ListAllBooks(ctx)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}

	docs := make([]*search.SearchDocument, 0, len(books))
	for _, b := range books {
		docs = append(docs, search.BookToSearchDocument(b))
	}

	if err := s.index.Rebuild(docs); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	s.logger.Info("search index rebuilt", "books", len(docs), "duration", time.Since(start))
	return nil
}

// indexQuietly keeps the index current without failing the caller's write.
func indexQuietly(ctx context.Context, indexer BookIndexer, logger *slog.Logger, book *domain.Book) {
	if indexer == nil {
		return
	}
	if err := indexer.IndexBook(ctx, book); err != nil {
		logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}
}
