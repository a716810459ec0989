package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/store"
)

// Recommendation limits.
const (
	DefaultRecommendations = 5
	MaxRecommendations     = 20
	// historyLimit caps how many of the user's reviews feed the prompt.
	historyLimit = 100
)

const recommendationSystem = "You are a book recommendation expert. Based on user's reading preferences, suggest similar books they might enjoy."

var numberedLine = regexp.MustCompile(`^\d+\.\s*`)

// Library is the read access the engine needs.
type Library interface {
	ListReviewsByUser(ctx context.Context, userID string, limit int) ([]*domain.Review, error)
	ListTopRatedBooks(ctx context.Context, n int) ([]*domain.Book, error)
	GetBook(ctx context.Context, id string) (*domain.Book, error)
}

// RecommendationEngine suggests books from a user's review history.
type RecommendationEngine struct {
	client  ChatClient
	library Library
	logger  *slog.Logger
}

// NewRecommendationEngine creates an engine.
func NewRecommendationEngine(client ChatClient, library Library, logger *slog.Logger) *RecommendationEngine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RecommendationEngine{client: client, library: library, logger: logger}
}

// Recommend returns up to n suggestions formatted "Title by Author".
// Users without reviews get the top-rated catalogue books. Any failure yields an empty list.
func (e *RecommendationEngine) Recommend(ctx context.Context, userID string, n int) []string {
	recs, err := e.recommend(ctx, userID, n)
	if err != nil {
		e.logger.Error("book recommendation failed", "user_id", userID, "error", err)
		return []string{}
	}
	return recs
}

func (e *RecommendationEngine) recommend(ctx context.Context, userID string, n int) ([]string, error) {
	reviews, err := e.library.ListReviewsByUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list user reviews: %w", err)
	}

	if len(reviews) == 0 {
		books, err := e.library.ListTopRatedBooks(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("list top rated books: %w", err)
		}
		recs := make([]string, 0, len(books))
		for _, b := range books {
			recs = append(recs, b.Descriptor())
		}
		return recs, nil
	}

	var liked, disliked []string
	for _, r := range reviews {
		book, err := e.library.GetBook(ctx, r.BookID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get book %s: %w", r.BookID, err)
		}
		info := fmt.Sprintf("%s (Genre: %s)", book.Descriptor(), book.Genre)
		switch {
		case r.Rating >= 4:
			liked = append(liked, info)
		case r.Rating <= 2:
			disliked = append(disliked, info)
		}
	}

	reply, err := e.client.Complete(ctx, ChatRequest{
		Operation: OperationRecommendations,
		System:    recommendationSystem,
		Prompt:    RecommendationPrompt(liked, disliked, n),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	return ParseNumberedList(reply, n), nil
}

// RecommendationPrompt renders the user prompt for n recommendations.
func RecommendationPrompt(liked, disliked []string, n int) string {
	return fmt.Sprintf(`Based on this user's reading history, recommend %d books they might enjoy.

Liked books (rated 4-5 stars):
%s

Disliked books (rated 1-2 stars):
%s

Please respond with exactly %d book recommendations in this format:
1. Title by Author
2. Title by Author
etc.`, n, joinOrNone(liked), joinOrNone(disliked), n)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, "\n")
}

// ParseNumberedList extracts the items of a "1. ..." list, in order, keeping at most n.
// Only the reply as a whole is trimmed: an indented line does not start with a
// number and is dropped, while a bare "3." yields an empty item.
func ParseNumberedList(reply string, n int) []string {
	items := []string{}
	if n <= 0 {
		return items
	}
	for line := range strings.Lines(strings.TrimSpace(reply)) {
		line = strings.TrimRight(line, "\r\n")
		loc := numberedLine.FindStringIndex(line)
		if loc == nil {
			continue
		}
		items = append(items, strings.TrimSpace(line[loc[1]:]))
		if len(items) == n {
			break
		}
	}
	return items
}
