package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bnema/cart-session-cli/internal/domain"
	"github.com/bnema/cart-session-cli/internal/ports"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/bnema/cart-session-cli/internal/application"

// SessionManager runs cart mutations against a valid cart id. It recovers at most once per
// user action from an invalid cart by resetting the stored id, creating a fresh cart and
// re-issuing the mutation. Every other failure is surfaced to the event sink as is.
type SessionManager struct {
	carts      ports.CartService
	sink       ports.EventSink
	cartIDs    *cartIDStore
	images     *ImageCache
	background *Background
	clock      ports.Clock
	logger     *slog.Logger
	tracer     trace.Tracer
	actionID   func() string
}

type Option func(*SessionManager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *SessionManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithClock(clock ports.Clock) Option {
	return func(m *SessionManager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(m *SessionManager) {
		if tracer != nil {
			m.tracer = tracer
		}
	}
}

func WithActionIDs(next func() string) Option {
	return func(m *SessionManager) {
		if next != nil {
			m.actionID = next
		}
	}
}

func NewSessionManager(carts ports.CartService, store ports.KeyValueStore, sink ports.EventSink, opts ...Option) *SessionManager {
	m := &SessionManager{
		carts:    carts,
		sink:     sink,
		clock:    ports.SystemClock{},
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
		actionID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.background = NewBackground(m.logger)
	m.cartIDs = newCartIDStore(store, m.background)
	m.images = NewImageCache(store, m.background)

	return m
}

func (m *SessionManager) Images() *ImageCache {
	return m.images
}

// Flush waits for queued background writes.
func (m *SessionManager) Flush(ctx context.Context) error {
	return m.background.Flush(ctx)
}

// action is one user-initiated action: its id and whether it already recovered once.
type action struct {
	id        string
	recovered bool
}

func (a *action) spendRecovery() bool {
	if a.recovered {
		return false
	}
	a.recovered = true
	return true
}

func (m *SessionManager) newAction() *action {
	return &action{id: m.actionID()}
}

func (m *SessionManager) EnsureCart(ctx context.Context, state domain.SessionState) (Result, error) {
	ctx, span := m.tracer.Start(ctx, "cart.ensure")
	res, err := m.ensureCart(ctx, m.newAction(), state)
	endSpan(span, res, err)
	return res, err
}

func (m *SessionManager) AddItem(ctx context.Context, state domain.SessionState, cmd AddItemCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{State: state}, err
	}

	ctx, span := m.tracer.Start(ctx, "cart.add_item", trace.WithAttributes(
		attribute.String("cart.sku", cmd.Item.SKU),
		attribute.Float64("cart.quantity", cmd.Quantity),
	))
	m.cacheImage(ctx, cmd.Item)
	res, err := m.addItem(ctx, m.newAction(), state, cmd)
	res = m.readBack(ctx, res, err)
	endSpan(span, res, err)
	return res, err
}

func (m *SessionManager) UpdateItem(ctx context.Context, state domain.SessionState, cmd UpdateItemCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{State: state}, err
	}

	ctx, span := m.tracer.Start(ctx, "cart.update_item", trace.WithAttributes(
		attribute.Int("cart.item_id", int(cmd.CartItemID)),
		attribute.String("cart.product_type", cmd.ProductType.String()),
	))
	m.cacheImage(ctx, cmd.Item)
	res, err := m.updateItem(ctx, m.newAction(), state, cmd)
	res = m.readBack(ctx, res, err)
	endSpan(span, res, err)
	return res, err
}

func (m *SessionManager) RemoveItem(ctx context.Context, state domain.SessionState, cmd RemoveItemCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{State: state}, err
	}

	ctx, span := m.tracer.Start(ctx, "cart.remove_item", trace.WithAttributes(
		attribute.Int("cart.item_id", int(cmd.CartItemID)),
	))
	res, err := m.removeItem(ctx, m.newAction(), state, cmd)
	res = m.readBack(ctx, res, err)
	endSpan(span, res, err)
	return res, err
}

// ResetCart removes the persisted cart id and only then notifies the reset.
func (m *SessionManager) ResetCart(ctx context.Context, state domain.SessionState) (Result, error) {
	ctx, span := m.tracer.Start(ctx, "cart.reset")
	res, err := m.resetCart(ctx, m.newAction(), state)
	endSpan(span, res, err)
	return res, err
}

// Details runs the read-back query for the session's cart. It never recovers.
func (m *SessionManager) Details(ctx context.Context, state domain.SessionState) (CartView, error) {
	if !state.HasCart() {
		return CartView{}, domain.ErrNoCart
	}

	cart, err := m.carts.Details(ctx, state.CartID)
	if err != nil {
		return CartView{}, fmt.Errorf("get cart details: %w", err)
	}

	images := make(map[string]domain.MediaEntry, len(cart.Lines))
	for _, line := range cart.Lines {
		image, ok, err := m.images.Lookup(ctx, line.SKU)
		if err != nil {
			m.logger.Warn("read image cache", "sku", line.SKU, "error", err)
			break
		}
		if ok {
			images[line.SKU] = image
		}
	}

	return CartView{Cart: cart, Images: images}, nil
}

// readBack refreshes the cart after a successful mutation. A failed read-back is logged and
// leaves the mutation successful, with no view attached.
func (m *SessionManager) readBack(ctx context.Context, res Result, err error) Result {
	if err != nil || res.Failure != nil || !res.State.HasCart() {
		return res
	}

	view, err := m.Details(ctx, res.State)
	if err != nil {
		m.logger.Warn("refresh cart after mutation", "cart_id", string(res.State.CartID), "error", err)
		return res
	}
	res.Cart = &view
	return res
}

func (m *SessionManager) ensureCart(ctx context.Context, act *action, state domain.SessionState) (Result, error) {
	if state.HasCart() {
		return Result{State: state}, nil
	}

	state = m.dispatch(ctx, act, state, domain.Event{Operation: domain.OperationGetCart, Kind: domain.EventRequest})

	cartID, err := m.cartIDs.retrieve(ctx)
	if err != nil {
		return Result{State: state}, fmt.Errorf("retrieve cart id: %w", err)
	}
	if cartID != "" {
		state = m.dispatch(ctx, act, state, domain.Event{Operation: domain.OperationGetCart, Kind: domain.EventReceive, CartID: cartID})
		return Result{State: state}, nil
	}

	cartID, err = m.carts.CreateCart(ctx)
	if err != nil {
		m.logger.Warn("create cart failed", "action", act.id, "kind", domain.Classify(err).String(), "error", err)
		state = m.dispatch(ctx, act, state, domain.Event{Operation: domain.OperationGetCart, Kind: domain.EventReceive, Err: err})
		return Result{State: state, Failure: err}, nil
	}

	m.cartIDs.saveInBackground(ctx, cartID)
	state = m.dispatch(ctx, act, state, domain.Event{Operation: domain.OperationGetCart, Kind: domain.EventReceive, CartID: cartID})

	return Result{State: state}, nil
}

func (m *SessionManager) addItem(ctx context.Context, act *action, state domain.SessionState, cmd AddItemCommand) (Result, error) {
	state = m.dispatch(ctx, act, state, domain.Event{Operation: domain.OperationAddItem, Kind: domain.EventRequest})

	err := m.carts.AddItem(ctx, ports.AddItemVariables{
		CartID:      state.CartID,
		SKU:         cmd.Item.SKU,
		ParentSKU:   cmd.ParentSKU,
		Quantity:    cmd.Quantity,
		ProductType: cmd.ProductType,
	})
	if err == nil {
		state = m.dispatch(ctx, act, state, domain.Event{Operation: domain.OperationApp, Kind: domain.EventToggleDrawer, Drawer: domain.DrawerCart})
		state = m.dispatch(ctx, act, state, domain.Event{Operation: domain.OperationAddItem, Kind: domain.EventReceive})
		return Result{State: state}, nil
	}

	state = m.dispatch(ctx, act, state, domain.Event{Operation: domain.OperationAddItem, Kind: domain.EventReceive, Err: err})
	if !m.shouldRecover(act, err) {
		return Result{State: state, Failure: err}, nil
	}

	recovered, rerr := m.recoverCart(ctx, act, state)
	if rerr != nil || recovered.Failure != nil {
		return Result{State: recovered.State, Failure: joinFailures(err, recovered.Failure), Recovered: true}, rerr
	}

	res, err := m.addItem(ctx, act, recovered.State, cmd)
	res.Recovered = true
	return res, err
}

func (m *SessionManager) updateItem(ctx context.Context, act *action, state domain.SessionState, cmd UpdateItemCommand) (Result, error) {
	state = m.dispatch(ctx, act, state, domain.Event{Operation: domain.OperationUpdateItem, Kind: domain.EventRequest})

	var (
		failure   error
		recovered bool
	)
	switch cmd.ProductType {
	case domain.ProductConfigurable:
		replaced, err := m.replaceItem(ctx, act, state, cmd)
		if err != nil {
			return replaced, err
		}
		state, failure, recovered = replaced.State, replaced.Failure, replaced.Recovered
	default:
		failure = m.carts.UpdateItem(ctx, ports.UpdateItemVariables{
			CartID:   state.CartID,
			ItemID:   cmd.CartItemID,
			Quantity: cmd.Quantity,
		})
	}

	if failure == nil {
		state = m.dispatch(ctx, act, state, domain.Event{Operation: domain.OperationUpdateItem, Kind: domain.EventReceive})
		return Result{State: state, Recovered: recovered}, nil
	}

	state = m.dispatch(ctx, act, state, domain.Event{Operation: domain.OperationUpdateItem, Kind: domain.EventReceive, Err: failure})
	if !m.shouldRecover(act, failure) {
		return Result{State: state, Failure: failure, Recovered: recovered}, nil
	}

	reset, err := m.recoverCart(ctx, act, state)
	if err != nil || reset.Failure != nil {
		return Result{State: reset.State, Failure: joinFailures(failure, reset.Failure), Recovered: true}, err
	}

	var res Result
	switch {
	case reset.State.SignedIn:
		// A customer's cart comes back with its contents, so the update still applies.
		res, err = m.updateItem(ctx, act, reset.State, cmd)
	case cmd.Item.SKU != "":
		// A guest gets a brand new empty cart: the line has to be added instead.
		res, err = m.addItem(ctx, act, reset.State, cmd.addCommand())
	default:
		m.logger.Warn("cannot re-add item without sku after cart reset", "action", act.id, "item_id", cmd.CartItemID)
		res = Result{State: reset.State, Failure: failure}
	}
	res.Recovered = true
	return res, err
}

// replaceItem swaps a configurable line. The removal must land before the add: adding first
// merges into the existing line when only the quantity changed, and the removal then deletes it.
func (m *SessionManager) replaceItem(ctx context.Context, act *action, state domain.SessionState, cmd UpdateItemCommand) (Result, error) {
	removed, err := m.removeItem(ctx, act, state, RemoveItemCommand{CartItemID: cmd.CartItemID})
	if err != nil {
		return removed, err
	}
	if removed.Failure != nil && (!removed.Recovered || !removed.State.HasCart()) {
		return removed, nil
	}

	added, err := m.addItem(ctx, act, removed.State, cmd.addCommand())
	added.Recovered = added.Recovered || removed.Recovered
	return added, err
}

func (m *SessionManager) removeItem(ctx context.Context, act *action, state domain.SessionState, cmd RemoveItemCommand) (Result, error) {
	state = m.dispatch(ctx, act, state, domain.Event{Operation: domain.OperationRemoveItem, Kind: domain.EventRequest})

	err := m.carts.RemoveItem(ctx, ports.RemoveItemVariables{CartID: state.CartID, ItemID: cmd.CartItemID})
	if err == nil {
		state = m.dispatch(ctx, act, state, domain.Event{Operation: domain.OperationRemoveItem, Kind: domain.EventReceive})
		return Result{State: state}, nil
	}

	state = m.dispatch(ctx, act, state, domain.Event{Operation: domain.OperationRemoveItem, Kind: domain.EventReceive, Err: err})
	if !m.shouldRecover(act, err) {
		return Result{State: state, Failure: err}, nil
	}

	// Nothing to remove from a brand new cart, so the removal is not retried.
	recovered, rerr := m.recoverCart(ctx, act, state)
	return Result{State: recovered.State, Failure: joinFailures(err, recovered.Failure), Recovered: true}, rerr
}

func (m *SessionManager) resetCart(ctx context.Context, act *action, state domain.SessionState) (Result, error) {
	if err := m.cartIDs.clear(ctx); err != nil {
		return Result{State: state}, fmt.Errorf("clear cart id: %w", err)
	}

	state = m.dispatch(ctx, act, state, domain.Event{Operation: domain.OperationCart, Kind: domain.EventReset})
	return Result{State: state}, nil
}

// recoverCart drops the known-bad id and creates a fresh cart, in that order.
func (m *SessionManager) recoverCart(ctx context.Context, act *action, state domain.SessionState) (Result, error) {
	m.logger.Info("cart is invalid, creating a new one", "action", act.id, "cart_id", string(state.CartID))

	reset, err := m.resetCart(ctx, act, state)
	if err != nil {
		return reset, err
	}
	return m.ensureCart(ctx, act, reset.State)
}

func (m *SessionManager) shouldRecover(act *action, err error) bool {
	kind := domain.Classify(err)
	if kind != domain.ErrorKindInvalidCart {
		m.logger.Debug("cart call failed", "action", act.id, "kind", kind.String(), "error", err)
		return false
	}
	if !act.spendRecovery() {
		m.logger.Warn("cart still invalid after recovery", "action", act.id, "error", err)
		return false
	}
	return true
}

func (m *SessionManager) dispatch(ctx context.Context, act *action, state domain.SessionState, event domain.Event) domain.SessionState {
	event.ActionID = act.id
	event.At = m.clock.Now()
	m.sink.Dispatch(ctx, event)
	return state.Apply(event)
}

func (m *SessionManager) cacheImage(ctx context.Context, item domain.Item) {
	image, ok, err := m.images.Write(ctx, item)
	if err != nil {
		m.logger.Warn("write image cache", "sku", item.SKU, "error", err)
		return
	}
	if ok {
		m.logger.Debug("image cache checked", "sku", item.SKU, "file", image.File)
	}
}

// joinFailures keeps the primary failure unwrapped when recovery added nothing to it.
func joinFailures(primary, secondary error) error {
	if secondary == nil {
		return primary
	}
	return errors.Join(primary, secondary)
}

func endSpan(span trace.Span, res Result, err error) {
	defer span.End()

	span.SetAttributes(attribute.Bool("cart.recovered", res.Recovered))
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case res.Failure != nil:
		span.RecordError(res.Failure)
		span.SetStatus(codes.Error, domain.Classify(res.Failure).String())
	}
}
