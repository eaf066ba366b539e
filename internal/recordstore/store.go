package recordstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/conectahub/intranet-api/internal/constants"
)

// Collection names a persisted blob.
type Collection string

const (
	Users    Collection = constants.StorageKeyUsers
	Messages Collection = constants.StorageKeyMessages
	Tasks    Collection = constants.StorageKeyTasks
)

// Collections lists every collection the store manages.
var Collections = []Collection{Users, Messages, Tasks}

// Store persists whole collections as JSON arrays. Writes overwrite the
// collection; callers read-modify-write for single-record changes.
type Store struct {
	kv KV
	mu sync.Mutex
}

func New(kv KV) *Store {
	return &Store{kv: kv}
}

// GetAll returns the decoded collection, or an empty list when the key is absent.
func GetAll[T any](ctx context.Context, s *Store, c Collection) ([]T, error) {
	data, ok, err := s.kv.Get(ctx, string(c))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c, err)
	}
	if !ok || len(data) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", c, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// SaveAll overwrites the collection with items.
func SaveAll[T any](ctx context.Context, s *Store, c Collection, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c, err)
	}
	if err := s.kv.Set(ctx, string(c), data); err != nil {
		return fmt.Errorf("writing %s: %w", c, err)
	}
	return nil
}

// Mutate runs one read-modify-write cycle on the collection while holding
// the store lock. The collection is saved only when fn returns no error.
func Mutate[T any](ctx context.Context, s *Store, c Collection, fn func([]T) ([]T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := GetAll[T](ctx, s, c)
	if err != nil {
		return err
	}
	updated, err := fn(items)
	if err != nil {
		return err
	}
	return SaveAll(ctx, s, c, updated)
}

// Read runs fn on a consistent snapshot of the collection.
func Read[T any](ctx context.Context, s *Store, c Collection, fn func([]T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := GetAll[T](ctx, s, c)
	if err != nil {
		return err
	}
	return fn(items)
}

// Clear removes every collection.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs error
	for _, c := range Collections {
		if err := s.kv.Delete(ctx, string(c)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("clearing %s: %w", c, err))
		}
	}
	return errs
}
