package domain

import "time"

type Operation string
type EventKind string

const (
	OperationGetCart    Operation = "getCart"
	OperationAddItem    Operation = "addItem"
	OperationUpdateItem Operation = "updateItem"
	OperationRemoveItem Operation = "removeItem"
	OperationCart       Operation = "cart"
	OperationApp        Operation = "app"
)

const (
	EventRequest      EventKind = "request"
	EventReceive      EventKind = "receive"
	EventReset        EventKind = "reset"
	EventToggleDrawer EventKind = "toggleDrawer"
)

// DrawerCart is the drawer opened after an item lands in the cart.
const DrawerCart = "cart"

type Event struct {
	// ActionID groups every event emitted for one user-initiated action.
	ActionID  string
	Operation Operation
	Kind      EventKind
	CartID    CartID
	Err       error
	Drawer    string
	At        time.Time
}

func (e Event) Name() string {
	return string(e.Operation) + "/" + string(e.Kind)
}

func (e Event) Failed() bool {
	return e.Err != nil
}
