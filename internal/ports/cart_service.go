package ports

import (
	"context"

	"github.com/bnema/cart-session-cli/internal/domain"
)

type AddItemVariables struct {
	CartID      domain.CartID
	SKU         string
	ParentSKU   string
	Quantity    float64
	ProductType domain.ProductType
}

type UpdateItemVariables struct {
	CartID   domain.CartID
	ItemID   domain.CartItemID
	Quantity float64
}

type RemoveItemVariables struct {
	CartID domain.CartID
	ItemID domain.CartItemID
}

// CartService is the remote cart API. Failures are *domain.RemoteError values.
type CartService interface {
	CreateCart(ctx context.Context) (domain.CartID, error)
	AddItem(ctx context.Context, vars AddItemVariables) error
	UpdateItem(ctx context.Context, vars UpdateItemVariables) error
	RemoveItem(ctx context.Context, vars RemoveItemVariables) error
	Details(ctx context.Context, cartID domain.CartID) (domain.Cart, error)
}
