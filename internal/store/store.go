package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookreview/bookreview-server/internal/domain"
)

// Key prefixes.
const (
	userPrefix   = "user:"
	bookPrefix   = "book:"
	reviewPrefix = "review:"
)

// Index names.
const (
	indexEmail    = "email"
	indexBook     = "book"
	indexUser     = "user"
	indexBookUser = "book_user"
)

// BadgerStore is the Badger-backed Store.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger

	users   *Entity[domain.User]
	books   *Entity[domain.Book]
	reviews *Entity[domain.Review]
}

var _ Store = (*BadgerStore)(nil)

// New opens (or creates) a Badger database at path.
func New(path string, logger *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Badger's own logger is too chatty
	opts.SyncWrites = true       // survive crashes without losing acknowledged writes
	opts.CompactL0OnClose = true // faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &BadgerStore{db: db, logger: logger}

	s.users = NewEntity[domain.User](s, userPrefix).
		WithIndexTransform(indexEmail, func(u *domain.User) []string {
			return []string{domain.NormalizeEmail(u.Email)}
		}, domain.NormalizeEmail)

	s.books = NewEntity[domain.Book](s, bookPrefix)

	s.reviews = NewEntity[domain.Review](s, reviewPrefix).
		WithIndex(indexBookUser, func(r *domain.Review) []string {
			return []string{bookUserKey(r.BookID, r.UserID)}
		}).
		WithMultiIndex(indexBook, func(r *domain.Review) []string {
			return []string{r.BookID}
		}).
		WithMultiIndex(indexUser, func(r *domain.Review) []string {
			return []string{r.UserID}
		})

	logger.Info("Badger database opened successfully", "path", path)
	return s, nil
}

// Close gracefully closes the database.
func (s *BadgerStore) Close() error {
	s.logger.Info("Closing database connection")
	return s.db.Close()
}

// maxConflictRetries bounds how often a write transaction is replayed after
// losing an optimistic-concurrency race.
const maxConflictRetries = 5

// update runs fn in a read-write transaction, replaying it when Badger reports a
// conflict. Replays re-read the unique indexes, so a lost race surfaces as
// ErrAlreadyExists instead of a conflict.
func (s *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	var err error
	for range maxConflictRetries {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func bookUserKey(bookID, userID string) string {
	return bookID + "|" + userID
}
