package application

import (
	"strings"

	"github.com/bnema/cart-session-cli/internal/domain"
)

type AddItemCommand struct {
	Item        domain.Item
	ParentSKU   string
	Quantity    float64
	ProductType domain.ProductType
}

func (c AddItemCommand) Validate() error {
	if strings.TrimSpace(c.Item.SKU) == "" {
		return domain.ErrMissingSKU
	}
	if c.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// UpdateItemCommand changes the quantity or the selected options of an existing cart line.
// Item.SKU is required for configurable products and lets a guest session re-add the line
// after its cart was recreated.
type UpdateItemCommand struct {
	CartItemID  domain.CartItemID
	Item        domain.Item
	ParentSKU   string
	Quantity    float64
	ProductType domain.ProductType
}

func (c UpdateItemCommand) Validate() error {
	if c.CartItemID <= 0 {
		return domain.ErrMissingItemID
	}
	if c.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if c.ProductType == domain.ProductConfigurable && strings.TrimSpace(c.Item.SKU) == "" {
		return domain.ErrMissingSKU
	}
	return nil
}

func (c UpdateItemCommand) addCommand() AddItemCommand {
	return AddItemCommand{
		Item:        c.Item,
		ParentSKU:   c.ParentSKU,
		Quantity:    c.Quantity,
		ProductType: c.ProductType,
	}
}

type RemoveItemCommand struct {
	CartItemID domain.CartItemID
}

func (c RemoveItemCommand) Validate() error {
	if c.CartItemID <= 0 {
		return domain.ErrMissingItemID
	}
	return nil
}
