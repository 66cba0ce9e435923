package application

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/cart-session-cli/internal/domain"
	"github.com/bnema/cart-session-cli/internal/ports"
	"github.com/bnema/cart-session-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	journal *journal
	store   *memoryStore
	sink    *recordingSink
	carts   *scriptedCarts
	manager *SessionManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	j := &journal{}
	f := &fixture{
		journal: j,
		store:   newMemoryStore(j),
		sink:    &recordingSink{journal: j},
		carts:   &scriptedCarts{journal: j},
	}
	f.manager = NewSessionManager(f.carts, f.store, f.sink, WithActionIDs(sequentialIDs()))
	return f
}

func (f *fixture) flush(t *testing.T) {
	t.Helper()
	require.NoError(t, f.manager.Flush(context.Background()))
}

func TestEnsureCartCreatesAndPersistsCart(t *testing.T) {
	f := newFixture(t)
	f.carts.createIDs = []domain.CartID{"abc"}

	res, err := f.manager.EnsureCart(context.Background(), domain.SessionState{})
	require.NoError(t, err)
	f.flush(t)

	assert.True(t, res.Succeeded())
	assert.Equal(t, domain.CartID("abc"), res.State.CartID)
	assert.Equal(t, []string{"getCart/request", "getCart/receive"}, f.sink.names())
	assert.Equal(t, domain.CartID("abc"), f.sink.events[1].CartID)

	stored, ok := f.store.value(CartIDKey)
	require.True(t, ok)
	assert.Equal(t, "abc", stored)
}

func TestEnsureCartIsNoOpWhenCartIsHeld(t *testing.T) {
	carts := mocks.NewMockCartService(t)
	store := mocks.NewMockKeyValueStore(t)
	sink := &recordingSink{}
	manager := NewSessionManager(carts, store, sink)

	res, err := manager.EnsureCart(context.Background(), domain.SessionState{CartID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, domain.CartID("abc"), res.State.CartID)
	assert.Empty(t, sink.names())
}

func TestEnsureCartTwiceCreatesOnce(t *testing.T) {
	f := newFixture(t)
	f.carts.createIDs = []domain.CartID{"abc"}

	first, err := f.manager.EnsureCart(context.Background(), domain.SessionState{})
	require.NoError(t, err)
	second, err := f.manager.EnsureCart(context.Background(), first.State)
	require.NoError(t, err)

	assert.Equal(t, 1, f.carts.createCalls)
	assert.Equal(t, first.State, second.State)
	assert.Len(t, f.sink.names(), 2)
}

func TestEnsureCartAdoptsPersistedCartID(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set(context.Background(), CartIDKey, "persisted"))

	res, err := f.manager.EnsureCart(context.Background(), domain.SessionState{})
	require.NoError(t, err)

	assert.Equal(t, domain.CartID("persisted"), res.State.CartID)
	assert.Zero(t, f.carts.createCalls)
	assert.Equal(t, []string{"getCart/request", "getCart/receive"}, f.sink.names())
}

func TestEnsureCartSurfacesCreateFailureWithoutError(t *testing.T) {
	f := newFixture(t)
	createErr := domain.NewGraphQLError(domain.GraphQLError{Message: "Service unavailable"})
	f.carts.createErrs = []error{createErr}

	res, err := f.manager.EnsureCart(context.Background(), domain.SessionState{})
	require.NoError(t, err)
	f.flush(t)

	assert.Equal(t, createErr, res.Failure)
	assert.False(t, res.State.HasCart())
	assert.Equal(t, []string{"getCart/request", "getCart/receive(error)"}, f.sink.names())
	_, ok := f.store.value(CartIDKey)
	assert.False(t, ok)
}

func TestEnsureCartPropagatesStoreReadFailure(t *testing.T) {
	carts := mocks.NewMockCartService(t)
	store := mocks.NewMockKeyValueStore(t)
	sink := &recordingSink{}
	manager := NewSessionManager(carts, store, sink)

	readErr := errors.New("disk on fire")
	store.EXPECT().Get(mock.Anything, CartIDKey).Return("", readErr)

	_, err := manager.EnsureCart(context.Background(), domain.SessionState{})
	require.ErrorIs(t, err, readErr)
	assert.Equal(t, []string{"getCart/request"}, sink.names())
}

func TestResetCartRemovesBeforeNotifying(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set(context.Background(), CartIDKey, "abc"))

	res, err := f.manager.ResetCart(context.Background(), domain.SessionState{CartID: "abc", SignedIn: true})
	require.NoError(t, err)

	assert.Equal(t, domain.SessionState{SignedIn: true}, res.State)
	assert.Equal(t, []string{
		"store set cartId=abc",
		"store remove cartId",
		"event cart/reset",
	}, f.journal.list())
}

func TestResetCartDoesNotNotifyWhenRemovalFails(t *testing.T) {
	carts := mocks.NewMockCartService(t)
	store := mocks.NewMockKeyValueStore(t)
	sink := &recordingSink{}
	manager := NewSessionManager(carts, store, sink)

	removeErr := errors.New("read-only filesystem")
	store.EXPECT().Remove(mock.Anything, CartIDKey).Return(removeErr)

	res, err := manager.ResetCart(context.Background(), domain.SessionState{CartID: "abc"})
	require.ErrorIs(t, err, removeErr)
	assert.Equal(t, domain.CartID("abc"), res.State.CartID)
	assert.Empty(t, sink.names())
}

func TestAddItemSuccessOpensDrawer(t *testing.T) {
	f := newFixture(t)

	res, err := f.manager.AddItem(context.Background(), domain.SessionState{CartID: "abc"}, AddItemCommand{
		Item:     domain.Item{SKU: "VSK12"},
		Quantity: 2,
	})
	require.NoError(t, err)

	assert.True(t, res.Succeeded())
	assert.Equal(t, domain.DrawerCart, res.State.Drawer)
	assert.Equal(t, []string{"addItem/request", "app/toggleDrawer", "addItem/receive"}, f.sink.names())
	assert.Equal(t, []ports.AddItemVariables{{CartID: "abc", SKU: "VSK12", Quantity: 2}}, f.carts.addCalls)
}

func TestAddItemRecoversFromInvalidCartOnce(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set(context.Background(), CartIDKey, "old"))
	f.carts.addErrs = []error{invalidCartError("old")}
	f.carts.createIDs = []domain.CartID{"new"}

	res, err := f.manager.AddItem(context.Background(), domain.SessionState{CartID: "old"}, AddItemCommand{
		Item:     domain.Item{SKU: "VSK12"},
		Quantity: 1,
	})
	require.NoError(t, err)
	f.flush(t)

	assert.True(t, res.Succeeded())
	assert.True(t, res.Recovered)
	assert.Equal(t, domain.CartID("new"), res.State.CartID)
	assert.Equal(t, []string{
		"addItem/request",
		"addItem/receive(error)",
		"cart/reset",
		"getCart/request",
		"getCart/receive",
		"addItem/request",
		"app/toggleDrawer",
		"addItem/receive",
	}, f.sink.names())
	assert.Equal(t, []string{
		"store set cartId=old",
		"event addItem/request",
		"service addItem VSK12@old",
		"event addItem/receive(error)",
		"store remove cartId",
		"event cart/reset",
		"event getCart/request",
		"service createCart",
		"event getCart/receive",
		"event addItem/request",
		"service addItem VSK12@new",
		"event app/toggleDrawer",
		"event addItem/receive",
	}, f.journal.without("store set cartId=new"))

	stored, ok := f.store.value(CartIDKey)
	require.True(t, ok)
	assert.Equal(t, "new", stored)

	for _, event := range f.sink.events {
		assert.Equal(t, "action-1", event.ActionID)
	}
}

func TestAddItemSurfacesSecondInvalidCartWithoutRetrying(t *testing.T) {
	f := newFixture(t)
	f.carts.addErrs = []error{invalidCartError("old"), invalidCartError("new")}
	f.carts.createIDs = []domain.CartID{"new", "newer"}

	res, err := f.manager.AddItem(context.Background(), domain.SessionState{CartID: "old"}, AddItemCommand{
		Item:     domain.Item{SKU: "VSK12"},
		Quantity: 1,
	})
	require.NoError(t, err)
	f.flush(t)

	assert.True(t, domain.IsInvalidCart(res.Failure))
	assert.True(t, res.Recovered)
	assert.Len(t, f.carts.addCalls, 2)
	assert.Equal(t, 1, f.carts.createCalls)
	assert.Equal(t, domain.CartID("new"), res.State.CartID)
}

func TestAddItemNeverRecoversFromNetworkError(t *testing.T) {
	f := newFixture(t)
	networkErr := &domain.RemoteError{
		Network: errors.New("connection reset"),
		GraphQL: []domain.GraphQLError{{Message: "Could not find a cart with ID"}},
	}
	f.carts.addErrs = []error{networkErr}

	res, err := f.manager.AddItem(context.Background(), domain.SessionState{CartID: "abc"}, AddItemCommand{
		Item:     domain.Item{SKU: "VSK12"},
		Quantity: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, networkErr, res.Failure)
	assert.False(t, res.Recovered)
	assert.Equal(t, domain.CartID("abc"), res.State.CartID)
	assert.Equal(t, []string{"addItem/request", "addItem/receive(error)"}, f.sink.names())
	assert.Zero(t, f.carts.createCalls)
}

func TestAddItemDoesNotRetryWhenRecoveryCannotCreateCart(t *testing.T) {
	f := newFixture(t)
	createErr := domain.NewNetworkError(errors.New("timeout"))
	f.carts.addErrs = []error{invalidCartError("old")}
	f.carts.createErrs = []error{createErr}

	res, err := f.manager.AddItem(context.Background(), domain.SessionState{CartID: "old"}, AddItemCommand{
		Item:     domain.Item{SKU: "VSK12"},
		Quantity: 1,
	})
	require.NoError(t, err)

	assert.Len(t, f.carts.addCalls, 1)
	assert.ErrorIs(t, res.Failure, createErr)
	assert.True(t, domain.IsInvalidCart(res.Failure))
	assert.False(t, res.State.HasCart())
}

func TestAddItemRejectsInvalidCommand(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.AddItem(context.Background(), domain.SessionState{CartID: "abc"}, AddItemCommand{Quantity: 1})
	require.ErrorIs(t, err, domain.ErrMissingSKU)

	_, err = f.manager.AddItem(context.Background(), domain.SessionState{CartID: "abc"}, AddItemCommand{Item: domain.Item{SKU: "A"}})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Empty(t, f.sink.names())
}

func TestAddItemWritesImageCacheBeforeRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.AddItem(context.Background(), domain.SessionState{CartID: "abc"}, AddItemCommand{
		Item:     domain.Item{SKU: "VSK12", Media: []domain.MediaEntry{{File: "/v/s/vsk12.jpg", Position: 1}}},
		Quantity: 1,
	})
	require.NoError(t, err)
	f.flush(t)

	image, ok, err := f.manager.Images().Lookup(context.Background(), "VSK12")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/v/s/vsk12.jpg", image.File)
	assert.Equal(t, 1, f.store.setCount(ImagesBySKUKey))
}

func TestUpdateItemSimpleIssuesSingleUpdate(t *testing.T) {
	carts := mocks.NewMockCartService(t)
	store := mocks.NewMockKeyValueStore(t)
	sink := &recordingSink{}
	manager := NewSessionManager(carts, store, sink)

	carts.EXPECT().UpdateItem(mock.Anything, ports.UpdateItemVariables{CartID: "abc", ItemID: 7, Quantity: 3}).Return(nil).Once()
	carts.EXPECT().Details(mock.Anything, domain.CartID("abc")).Return(domain.Cart{ID: "abc"}, nil).Once()

	res, err := manager.UpdateItem(context.Background(), domain.SessionState{CartID: "abc"}, UpdateItemCommand{
		CartItemID:  7,
		Quantity:    3,
		ProductType: domain.ProductSimple,
	})
	require.NoError(t, err)

	assert.True(t, res.Succeeded())
	assert.Equal(t, []string{"updateItem/request", "updateItem/receive"}, sink.names())
	carts.AssertNotCalled(t, "RemoveItem", mock.Anything, ports.RemoveItemVariables{CartID: "abc", ItemID: 7})
}

func TestUpdateItemConfigurableRemovesBeforeAdding(t *testing.T) {
	f := newFixture(t)

	res, err := f.manager.UpdateItem(context.Background(), domain.SessionState{CartID: "abc"}, UpdateItemCommand{
		CartItemID:  7,
		Item:        domain.Item{SKU: "VSK12-LA-S"},
		ParentSKU:   "VSK12",
		Quantity:    2,
		ProductType: domain.ProductConfigurable,
	})
	require.NoError(t, err)

	assert.True(t, res.Succeeded())
	assert.Empty(t, f.carts.updateCalls)
	assert.Equal(t, []string{
		"event updateItem/request",
		"event removeItem/request",
		"service removeItem 7@abc",
		"event removeItem/receive",
		"event addItem/request",
		"service addItem VSK12-LA-S@abc",
		"event app/toggleDrawer",
		"event addItem/receive",
		"event updateItem/receive",
	}, f.journal.list())
	assert.Equal(t, "VSK12", f.carts.addCalls[0].ParentSKU)
	assert.Equal(t, domain.ProductConfigurable, f.carts.addCalls[0].ProductType)
}

func TestUpdateItemConfigurableStopsWhenRemovalFails(t *testing.T) {
	f := newFixture(t)
	removeErr := domain.NewGraphQLError(domain.GraphQLError{Message: "The cart doesn't contain the item"})
	f.carts.removeErrs = []error{removeErr}

	res, err := f.manager.UpdateItem(context.Background(), domain.SessionState{CartID: "abc"}, UpdateItemCommand{
		CartItemID:  7,
		Item:        domain.Item{SKU: "VSK12-LA-S"},
		Quantity:    2,
		ProductType: domain.ProductConfigurable,
	})
	require.NoError(t, err)

	assert.Equal(t, removeErr, res.Failure)
	assert.Empty(t, f.carts.addCalls)
	assert.Equal(t, "updateItem/receive(error)", f.sink.names()[len(f.sink.names())-1])
}

func TestUpdateItemGuestRecoveryAddsItemToFreshCart(t *testing.T) {
	f := newFixture(t)
	f.carts.updateErrs = []error{invalidCartError("old")}
	f.carts.createIDs = []domain.CartID{"new"}

	res, err := f.manager.UpdateItem(context.Background(), domain.SessionState{CartID: "old"}, UpdateItemCommand{
		CartItemID:  7,
		Item:        domain.Item{SKU: "VSK12"},
		Quantity:    3,
		ProductType: domain.ProductSimple,
	})
	require.NoError(t, err)

	assert.True(t, res.Succeeded())
	assert.True(t, res.Recovered)
	assert.Len(t, f.carts.updateCalls, 1)
	require.Len(t, f.carts.addCalls, 1)
	assert.Equal(t, ports.AddItemVariables{CartID: "new", SKU: "VSK12", Quantity: 3}, f.carts.addCalls[0])
}

func TestUpdateItemSignedInRecoveryRetriesUpdate(t *testing.T) {
	f := newFixture(t)
	f.carts.updateErrs = []error{invalidCartError("old")}
	f.carts.createIDs = []domain.CartID{"restored"}

	res, err := f.manager.UpdateItem(context.Background(), domain.SessionState{CartID: "old", SignedIn: true}, UpdateItemCommand{
		CartItemID:  7,
		Item:        domain.Item{SKU: "VSK12"},
		Quantity:    3,
		ProductType: domain.ProductSimple,
	})
	require.NoError(t, err)

	assert.True(t, res.Succeeded())
	assert.True(t, res.Recovered)
	assert.Empty(t, f.carts.addCalls)
	assert.Equal(t, []ports.UpdateItemVariables{
		{CartID: "old", ItemID: 7, Quantity: 3},
		{CartID: "restored", ItemID: 7, Quantity: 3},
	}, f.carts.updateCalls)
}

func TestUpdateItemSignedInSurfacesSecondInvalidCart(t *testing.T) {
	f := newFixture(t)
	f.carts.updateErrs = []error{invalidCartError("old"), invalidCartError("restored")}
	f.carts.createIDs = []domain.CartID{"restored", "another"}

	res, err := f.manager.UpdateItem(context.Background(), domain.SessionState{CartID: "old", SignedIn: true}, UpdateItemCommand{
		CartItemID: 7,
		Quantity:   3,
	})
	require.NoError(t, err)

	assert.True(t, domain.IsInvalidCart(res.Failure))
	assert.Len(t, f.carts.updateCalls, 2)
	assert.Equal(t, 1, f.carts.createCalls)
}

func TestRemoveItemRecoversWithoutRetry(t *testing.T) {
	f := newFixture(t)
	f.carts.removeErrs = []error{invalidCartError("old")}
	f.carts.createIDs = []domain.CartID{"new"}

	res, err := f.manager.RemoveItem(context.Background(), domain.SessionState{CartID: "old"}, RemoveItemCommand{CartItemID: 7})
	require.NoError(t, err)

	assert.True(t, res.Recovered)
	assert.True(t, domain.IsInvalidCart(res.Failure))
	assert.Equal(t, domain.CartID("new"), res.State.CartID)
	assert.Len(t, f.carts.removeCalls, 1)
	assert.Equal(t, []string{
		"removeItem/request",
		"removeItem/receive(error)",
		"cart/reset",
		"getCart/request",
		"getCart/receive",
	}, f.sink.names())
}

func TestRemoveItemSurfacesOtherErrors(t *testing.T) {
	f := newFixture(t)
	otherErr := domain.NewGraphQLError(domain.GraphQLError{Message: "The cart doesn't contain the item"})
	f.carts.removeErrs = []error{otherErr}

	res, err := f.manager.RemoveItem(context.Background(), domain.SessionState{CartID: "abc"}, RemoveItemCommand{CartItemID: 7})
	require.NoError(t, err)

	assert.Equal(t, otherErr, res.Failure)
	assert.False(t, res.Recovered)
	assert.Zero(t, f.carts.createCalls)
}

func TestMutationsReadCartBackAfterSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	state := domain.SessionState{CartID: "abc"}

	added, err := f.manager.AddItem(ctx, state, AddItemCommand{Item: domain.Item{SKU: "VSK12"}, Quantity: 1})
	require.NoError(t, err)
	updated, err := f.manager.UpdateItem(ctx, state, UpdateItemCommand{CartItemID: 7, Quantity: 2})
	require.NoError(t, err)
	removed, err := f.manager.RemoveItem(ctx, state, RemoveItemCommand{CartItemID: 7})
	require.NoError(t, err)

	assert.Equal(t, []domain.CartID{"abc", "abc", "abc"}, f.carts.detailsFor)
	for _, res := range []Result{added, updated, removed} {
		require.NotNil(t, res.Cart)
		assert.Equal(t, domain.CartID("abc"), res.Cart.Cart.ID)
	}
}

func TestAddItemReadsBackRecoveredCart(t *testing.T) {
	f := newFixture(t)
	f.carts.addErrs = []error{invalidCartError("old")}
	f.carts.createIDs = []domain.CartID{"new"}

	res, err := f.manager.AddItem(context.Background(), domain.SessionState{CartID: "old"}, AddItemCommand{
		Item:     domain.Item{SKU: "VSK12"},
		Quantity: 1,
	})
	require.NoError(t, err)

	assert.True(t, res.Recovered)
	assert.Equal(t, []domain.CartID{"new"}, f.carts.detailsFor)
	require.NotNil(t, res.Cart)
	assert.Equal(t, domain.CartID("new"), res.Cart.Cart.ID)
}

func TestReadBackFailureKeepsMutationSuccessful(t *testing.T) {
	f := newFixture(t)
	f.carts.detailsErrs = []error{domain.NewNetworkError(errors.New("connection reset"))}

	res, err := f.manager.AddItem(context.Background(), domain.SessionState{CartID: "abc"}, AddItemCommand{
		Item:     domain.Item{SKU: "VSK12"},
		Quantity: 1,
	})
	require.NoError(t, err)

	assert.True(t, res.Succeeded())
	assert.Nil(t, res.Cart)
	assert.Len(t, f.carts.detailsFor, 1)
}

func TestFailedMutationIsNotReadBack(t *testing.T) {
	f := newFixture(t)
	f.carts.removeErrs = []error{domain.NewGraphQLError(domain.GraphQLError{Message: "The cart doesn't contain the item"})}

	res, err := f.manager.RemoveItem(context.Background(), domain.SessionState{CartID: "abc"}, RemoveItemCommand{CartItemID: 7})
	require.NoError(t, err)

	assert.False(t, res.Succeeded())
	assert.Nil(t, res.Cart)
	assert.Empty(t, f.carts.detailsFor)
}

func TestDetailsRequiresCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Details(context.Background(), domain.SessionState{})
	require.ErrorIs(t, err, domain.ErrNoCart)

	view, err := f.manager.Details(context.Background(), domain.SessionState{CartID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, domain.CartID("abc"), view.Cart.ID)
}
