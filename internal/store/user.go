package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookreview/bookreview-server/internal/domain"
)

// CreateUser creates a new user account. Emails are unique after normalisation.
func (s *BadgerStore) CreateUser(ctx context.Context, user *domain.User) error {
	err := s.users.Create(ctx, user.ID, user)
	if errors.Is(err, ErrAlreadyExists) {
		return ErrEmailExists
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *BadgerStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// GetUserByEmail retrieves a user by email, ignoring case and surrounding whitespace.
func (s *BadgerStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByIndex(ctx, indexEmail, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// GetUsersByIDs returns the users that exist among ids, keyed by ID.
func (s *BadgerStore) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	users := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if _, seen := users[id]; seen {
			continue
		}
		user, err := s.users.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get user %s: %w", id, err)
		}
		users[id] = user
	}
	return users, nil
}
