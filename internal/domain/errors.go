package domain

import "errors"

var (
	ErrKeyNotFound     = errors.New("key not found")
	ErrNoCart          = errors.New("no cart id in session")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrMissingSKU      = errors.New("sku is required")
	ErrMissingItemID   = errors.New("cart item id is required")
)
