package application

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/bnema/cart-session-cli/internal/domain"
	"github.com/bnema/cart-session-cli/internal/ports"
)

// journal records store, service and sink activity in the order it happened.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(format string, args ...any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// without drops entries written by background tasks, whose position is not deterministic.
func (j *journal) without(entries ...string) []string {
	var kept []string
	for _, entry := range j.list() {
		if !slices.Contains(entries, entry) {
			kept = append(kept, entry)
		}
	}
	return kept
}

type memoryStore struct {
	journal *journal

	mu     sync.Mutex
	values map[string]string
	sets   map[string]int
}

func newMemoryStore(j *journal) *memoryStore {
	return &memoryStore{journal: j, values: map[string]string{}, sets: map[string]int{}}
}

var _ ports.KeyValueStore = (*memoryStore)(nil)

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.values[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return value, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	s.sets[key]++
	if s.journal != nil {
		s.journal.add("store set %s=%s", key, value)
	}
	return nil
}

func (s *memoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	if s.journal != nil {
		s.journal.add("store remove %s", key)
	}
	return nil
}

func (s *memoryStore) value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *memoryStore) setCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets[key]
}

type recordingSink struct {
	journal *journal

	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Dispatch(_ context.Context, event domain.Event) {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()

	if s.journal != nil {
		if event.Err != nil {
			s.journal.add("event %s(error)", event.Name())
			return
		}
		s.journal.add("event %s", event.Name())
	}
}

func (s *recordingSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.events))
	for _, event := range s.events {
		name := event.Name()
		if event.Err != nil {
			name += "(error)"
		}
		names = append(names, name)
	}
	return names
}

// scriptedCarts replays queued results per operation and journals every call.
type scriptedCarts struct {
	journal *journal

	createIDs   []domain.CartID
	createErrs  []error
	addErrs     []error
	updateErrs  []error
	removeErrs  []error
	detailsErrs []error
	addCalls    []ports.AddItemVariables
	updateCalls []ports.UpdateItemVariables
	removeCalls []ports.RemoveItemVariables
	detailsFor  []domain.CartID
	createCalls int
}

var _ ports.CartService = (*scriptedCarts)(nil)

func (c *scriptedCarts) CreateCart(context.Context) (domain.CartID, error) {
	c.createCalls++
	c.journal.add("service createCart")
	if err := pop(&c.createErrs); err != nil {
		return "", err
	}
	if len(c.createIDs) == 0 {
		return "", fmt.Errorf("no scripted cart id")
	}
	id := c.createIDs[0]
	c.createIDs = c.createIDs[1:]
	return id, nil
}

func (c *scriptedCarts) AddItem(_ context.Context, vars ports.AddItemVariables) error {
	c.addCalls = append(c.addCalls, vars)
	c.journal.add("service addItem %s@%s", vars.SKU, vars.CartID)
	return pop(&c.addErrs)
}

func (c *scriptedCarts) UpdateItem(_ context.Context, vars ports.UpdateItemVariables) error {
	c.updateCalls = append(c.updateCalls, vars)
	c.journal.add("service updateItem %d@%s", vars.ItemID, vars.CartID)
	return pop(&c.updateErrs)
}

func (c *scriptedCarts) RemoveItem(_ context.Context, vars ports.RemoveItemVariables) error {
	c.removeCalls = append(c.removeCalls, vars)
	c.journal.add("service removeItem %d@%s", vars.ItemID, vars.CartID)
	return pop(&c.removeErrs)
}

func (c *scriptedCarts) Details(_ context.Context, cartID domain.CartID) (domain.Cart, error) {
	c.detailsFor = append(c.detailsFor, cartID)
	if err := pop(&c.detailsErrs); err != nil {
		return domain.Cart{}, err
	}
	return domain.Cart{ID: cartID}, nil
}

func pop(queue *[]error) error {
	if len(*queue) == 0 {
		return nil
	}
	err := (*queue)[0]
	*queue = (*queue)[1:]
	return err
}

func invalidCartError(id string) error {
	return domain.NewGraphQLError(domain.GraphQLError{Message: fmt.Sprintf("Could not find a cart with ID %q", id)})
}

func sequentialIDs() func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("action-%d", n)
	}
}
