// Package main seeds the configured store with demo users, books and reviews.
//
// It resolves the same services as the server, so books are indexed and ratings
// aggregated exactly as they would be through the API. Re-running is safe: existing
// users are logged in, books are matched by title and author, and duplicate reviews
// are skipped.
//
// Usage:
//
//	go run ./cmd/seed --data-path ~/bookreview
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/bookreview/bookreview-server/internal/di"
	"github.com/bookreview/bookreview-server/internal/di/providers"
	"github.com/bookreview/bookreview-server/internal/domain"
	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
	"github.com/bookreview/bookreview-server/internal/logger"
	"github.com/bookreview/bookreview-server/internal/service"
)

const demoPassword = "password123"

var demoUsers = []service.SignupRequest{
	{Name: "Ada Reader", Email: "ada@example.com", Password: demoPassword},
	{Name: "Ben Critic", Email: "ben@example.com", Password: demoPassword},
	{Name: "Cleo Browser", Email: "cleo@example.com", Password: demoPassword},
}

var demoBooks = []service.CreateBookRequest{
	{Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", PublishedYear: 1965,
		Description: "A desert planet, a prized spice and a young heir caught between great houses."},
	{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Genre: "Science Fiction", PublishedYear: 1969,
		Description: "An envoy on a frozen world learns what it means to belong to neither sex."},
	{Title: "Emma", Author: "Jane Austen", Genre: "Classic", PublishedYear: 1815,
		Description: "<p>A <em>comedy</em> of matchmaking and misjudgement.</p>"},
	{Title: "The Hound of the Baskervilles", Author: "Arthur Conan Doyle", Genre: "Mystery", PublishedYear: 1902,
		Description: "Holmes and Watson investigate a legendary hound on the moors."},
	{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", PublishedYear: 1937,
		Description: "A reluctant hobbit joins a company of dwarves to reclaim a mountain."},
	{Title: "Gone Girl", Author: "Gillian Flynn", Genre: "Thriller", PublishedYear: 2012,
		Description: "A marriage unravels after a wife disappears on her anniversary."},
}

// demoReviews indexes into demoUsers and demoBooks.
var demoReviews = []struct {
	user, book int
	rating     int
	text       string
}{
	{0, 0, 5, "Sweeping and strange. I could not put it down."},
	{1, 0, 4, "Dense world building, slow start, great payoff."},
	{2, 0, 5, "A classic for a reason."},
	{0, 1, 4, "Thoughtful and quietly moving."},
	{1, 2, 3, "Witty, though the heroine tested my patience."},
	{2, 2, 4, "Sharp dialogue and a satisfying ending."},
	{0, 3, 4, "Atmospheric and fun."},
	{1, 4, 5, "Pure joy from start to finish."},
	{2, 5, 2, "Clever twist but I disliked every character."},
}

func main() {
	injector := di.NewContainer()
	log := do.MustInvoke[*logger.Logger](injector)

	if err := seed(context.Background(), injector, log); err != nil {
		log.Error("Seeding failed", "error", err)
		_ = injector.Shutdown()
		os.Exit(1)
	}

	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}
}

func seed(ctx context.Context, injector do.Injector, log *logger.Logger) error {
	authService := do.MustInvoke[*service.AuthService](injector)
	bookService := do.MustInvoke[*service.BookService](injector)
	reviewService := do.MustInvoke[*service.ReviewService](injector)
	providers.TriggerSearchReindexIfNeeded(injector)

	userIDs := make([]string, len(demoUsers))
	for i, req := range demoUsers {
		id, err := ensureUser(ctx, authService, req)
		if err != nil {
			return fmt.Errorf("user %s: %w", req.Email, err)
		}
		userIDs[i] = id
	}

	bookIDs := make([]string, len(demoBooks))
	for i, req := range demoBooks {
		id, err := ensureBook(ctx, bookService, userIDs[0], req)
		if err != nil {
			return fmt.Errorf("book %q: %w", req.Title, err)
		}
		bookIDs[i] = id
	}

	created := 0
	for _, r := range demoReviews {
		_, err := reviewService.CreateReview(ctx, userIDs[r.user], service.CreateReviewRequest{
			BookID:     bookIDs[r.book],
			Rating:     r.rating,
			ReviewText: r.text,
		})
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("review of %q: %w", demoBooks[r.book].Title, err)
		}
		created++
	}

	log.Info("Seed complete",
		"users", len(userIDs),
		"books", len(bookIDs),
		"reviews_created", created,
	)
	return nil
}

// ensureUser signs the user up, or logs in when the email is taken.
func ensureUser(ctx context.Context, auth *service.AuthService, req service.SignupRequest) (string, error) {
	resp, err := auth.Signup(ctx, req)
	if errors.Is(err, domainerrors.ErrAlreadyExists) {
		resp, err = auth.Login(ctx, service.LoginRequest{Email: req.Email, Password: req.Password})
	}
	if err != nil {
		return "", err
	}
	return resp.User.ID, nil
}

// ensureBook returns the ID of an existing book with the same title and author, or creates it.
func ensureBook(ctx context.Context, books *service.BookService, ownerID string, req service.CreateBookRequest) (string, error) {
	page, err := books.ListBooks(ctx, domain.BookQuery{Search: req.Title, Limit: domain.MaxPageSize})
	if err != nil {
		return "", err
	}
	for _, b := range page.Books {
		if b.Title == req.Title && b.Author == req.Author {
			return b.ID, nil
		}
	}

	book, err := books.CreateBook(ctx, ownerID, req)
	if err != nil {
		return "", err
	}
	return book.ID, nil
}
