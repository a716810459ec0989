package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, title, author, description, genre, published_year, added_by,
	created_at, updated_at, average_rating, total_reviews`

// sortColumns maps the validated sort fields to columns.
var sortColumns = map[string]string{
	domain.SortCreatedAt:     "created_at",
	domain.SortTitle:         "title",
	domain.SortAuthor:        "author",
	domain.SortPublishedYear: "published_year",
	domain.SortAverageRating: "average_rating",
}

func scanBook(row scanner) (*domain.Book, error) {
	var (
		b         domain.Book
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Description,
		&b.Genre,
		&b.PublishedYear,
		&b.AddedBy,
		&createdAt,
		&updatedAt,
		&b.AverageRating,
		&b.TotalReviews,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// CreateBook inserts a new book.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (
			id, title, author, description, genre, published_year, added_by,
			created_at, updated_at, average_rating, total_reviews
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		book.Title,
		book.Author,
		book.Description,
		book.Genre,
		book.PublishedYear,
		book.AddedBy,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
		book.AverageRating,
		book.TotalReviews,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

// UpdateBook writes the editable fields of an existing book.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET title = ?, author = ?, description = ?, genre = ?,
			published_year = ?, updated_at = ?
		WHERE id = ?`,
		book.Title,
		book.Author,
		book.Description,
		book.Genre,
		book.PublishedYear,
		formatTime(book.UpdatedAt),
		book.ID,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return requireAffected(res, store.ErrBookNotFound)
}

// DeleteBook removes a book; its reviews go with it through the foreign key.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

// ListBooks filters, sorts and paginates the catalogue.
func (s *Store) ListBooks(ctx context.Context, query domain.BookQuery) (*domain.BookPage, error) {
	query = query.Normalize()

	var (
		conds []string
		args  []any
	)
	if query.Genre != "" {
		conds = append(conds, "genre = ?")
		args = append(args, query.Genre)
	}
	if query.Search != "" {
		needle := strings.ToLower(query.Search)
		conds = append(conds, "(instr(unicode_lower(title), ?) > 0 OR instr(unicode_lower(author), ?) > 0 OR instr(unicode_lower(description), ?) > 0)")
		args = append(args, needle, needle, needle)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}

	dir := "ASC"
	if query.SortOrder == domain.SortDesc {
		dir = "DESC"
	}
	order := fmt.Sprintf(" ORDER BY %s %s, created_at %s, id %s", sortColumns[query.SortBy], dir, dir, dir)

	books, err := s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books`+where+order+` LIMIT ? OFFSET ?`,
		append(args, query.Limit, query.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return &domain.BookPage{Books: books, Total: total}, nil
}

// ListAllBooks returns every book, oldest first.
func (s *Store) ListAllBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// ListTopRatedBooks returns up to n books by average rating, highest first.
// Equal ratings keep the oldest book first. A negative n returns every book.
func (s *Store) ListTopRatedBooks(ctx context.Context, n int) ([]*domain.Book, error) {
	books, err := s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books
		ORDER BY average_rating DESC, created_at ASC, id ASC LIMIT ?`, max(n, -1))
	if err != nil {
		return nil, fmt.Errorf("list top rated books: %w", err)
	}
	return books, nil
}

// ListGenres returns the distinct non-empty genres, sorted.
func (s *Store) ListGenres(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT genre FROM books WHERE genre <> '' ORDER BY genre`)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	genres := []string{}
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// SetBookRating persists the rating aggregate onto the book and returns the
// row as written, in one transaction.
func (s *Store) SetBookRating(ctx context.Context, id string, summary domain.RatingSummary) (*domain.Book, error) {
	var book *domain.Book
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE books SET average_rating = ?, total_reviews = ? WHERE id = ?`,
			summary.AverageRating, summary.TotalReviews, id)
		if err != nil {
			return fmt.Errorf("set book rating: %w", err)
		}
		if err := requireAffected(res, store.ErrBookNotFound); err != nil {
			return err
		}
		book, err = scanBook(tx.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// requireAffected returns notFound when res touched no rows.
func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
