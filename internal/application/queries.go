package application

import "github.com/bnema/cart-session-cli/internal/domain"

// Result is the outcome of one user-initiated cart action.
type Result struct {
	State domain.SessionState
	// Failure is the remote failure that was surfaced to the event sink, nil on success.
	Failure error
	// Recovered reports that the action reset the cart and created a new one.
	Recovered bool
	// Cart is the cart as read back after a successful mutation, nil when the read-back failed.
	Cart *CartView
}

func (r Result) Succeeded() bool {
	return r.Failure == nil
}

type CartView struct {
	Cart   domain.Cart
	Images map[string]domain.MediaEntry
}
