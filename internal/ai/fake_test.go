package ai

import (
	"context"
	"sync"

	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/store"
)

// scriptedClient replays canned replies and records requests.
type scriptedClient struct {
	mu       sync.Mutex
	replies  []string
	errs     []error
	requests []ChatRequest
}

func (c *scriptedClient) Complete(_ context.Context, req ChatRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := len(c.requests)
	c.requests = append(c.requests, req)
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.replies) {
		return c.replies[i], nil
	}
	return "", nil
}

func (c *scriptedClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// memoryLibrary is an in-memory Library.
type memoryLibrary struct {
	books     map[string]*domain.Book
	reviews   []*domain.Review
	topRated  []*domain.Book
	reviewErr error
}

func (l *memoryLibrary) ListReviewsByUser(_ context.Context, userID string, limit int) ([]*domain.Review, error) {
	if l.reviewErr != nil {
		return nil, l.reviewErr
	}
	var out []*domain.Review
	for _, r := range l.reviews {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *memoryLibrary) ListTopRatedBooks(_ context.Context, n int) ([]*domain.Book, error) {
	if len(l.topRated) > n {
		return l.topRated[:n], nil
	}
	return l.topRated, nil
}

func (l *memoryLibrary) GetBook(_ context.Context, id string) (*domain.Book, error) {
	if b, ok := l.books[id]; ok {
		return b, nil
	}
	return nil, store.ErrBookNotFound
}
