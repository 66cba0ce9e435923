package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/cart-session-cli/internal/domain"
	"github.com/bnema/cart-session-cli/internal/ports"
)

const CartIDKey = "cartId"

type cartIDStore struct {
	store      ports.KeyValueStore
	background *Background

	mu         sync.Mutex
	generation uint64
}

func newCartIDStore(store ports.KeyValueStore, background *Background) *cartIDStore {
	return &cartIDStore{store: store, background: background}
}

func (s *cartIDStore) retrieve(ctx context.Context) (domain.CartID, error) {
	value, err := s.store.Get(ctx, CartIDKey)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("get %s: %w", CartIDKey, err)
	}

	return domain.CartID(strings.TrimSpace(value)), nil
}

// saveInBackground persists id without blocking the caller. A clear issued after this call
// wins even when the write is still queued.
func (s *cartIDStore) saveInBackground(ctx context.Context, id domain.CartID) {
	s.mu.Lock()
	generation := s.generation
	s.mu.Unlock()

	s.background.Go(ctx, "save cart id", func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.generation != generation {
			return nil
		}
		if err := s.store.Set(ctx, CartIDKey, string(id)); err != nil {
			return fmt.Errorf("set %s: %w", CartIDKey, err)
		}
		return nil
	})
}

func (s *cartIDStore) clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	if err := s.store.Remove(ctx, CartIDKey); err != nil {
		return fmt.Errorf("remove %s: %w", CartIDKey, err)
	}
	return nil
}
