package graphql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bnema/cart-session-cli/internal/domain"
	"github.com/bnema/cart-session-cli/internal/ports"
)

var _ ports.CartService = (*Client)(nil)

type createCartData struct {
	CartID string `json:"cartId"`
}

type moneySchema struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

type cartDetailsData struct {
	Cart *struct {
		ID    string `json:"id"`
		Items []struct {
			ID       string  `json:"id"`
			Quantity float64 `json:"quantity"`
			Product  struct {
				SKU  string `json:"sku"`
				Name string `json:"name"`
			} `json:"product"`
			Prices struct {
				RowTotal moneySchema `json:"row_total"`
			} `json:"prices"`
		} `json:"items"`
		Prices struct {
			GrandTotal moneySchema `json:"grand_total"`
		} `json:"prices"`
	} `json:"cart"`
}

func (c *Client) CreateCart(ctx context.Context) (domain.CartID, error) {
	var data createCartData
	if err := c.do(ctx, "createCart", createCartMutation, nil, &data); err != nil {
		return "", err
	}

	id := strings.TrimSpace(data.CartID)
	if id == "" {
		return "", errors.New("createCart returned an empty cart id")
	}
	return domain.CartID(id), nil
}

func (c *Client) AddItem(ctx context.Context, vars ports.AddItemVariables) error {
	variables := map[string]any{
		"cartId":   string(vars.CartID),
		"sku":      vars.SKU,
		"quantity": vars.Quantity,
	}

	if vars.ProductType == domain.ProductConfigurable {
		variables["parentSku"] = vars.ParentSKU
		return c.do(ctx, "addConfigurableProductToCart", addConfigurableProductsMutation, variables, nil)
	}
	return c.do(ctx, "addSimpleProductToCart", addSimpleProductsMutation, variables, nil)
}

func (c *Client) UpdateItem(ctx context.Context, vars ports.UpdateItemVariables) error {
	return c.do(ctx, "updateItemInCart", updateCartItemsMutation, map[string]any{
		"cartId":   string(vars.CartID),
		"itemId":   int(vars.ItemID),
		"quantity": vars.Quantity,
	}, nil)
}

func (c *Client) RemoveItem(ctx context.Context, vars ports.RemoveItemVariables) error {
	return c.do(ctx, "removeItem", removeItemMutation, map[string]any{
		"cartId": string(vars.CartID),
		"itemId": int(vars.ItemID),
	}, nil)
}

func (c *Client) Details(ctx context.Context, cartID domain.CartID) (domain.Cart, error) {
	var data cartDetailsData
	if err := c.do(ctx, "getCartDetails", cartDetailsQuery, map[string]any{"cartId": string(cartID)}, &data); err != nil {
		return domain.Cart{}, err
	}
	if data.Cart == nil {
		return domain.Cart{}, fmt.Errorf("cart %s: empty response", cartID)
	}

	cart := domain.Cart{
		ID: domain.CartID(data.Cart.ID),
		GrandTotal: domain.Money{
			Value:    data.Cart.Prices.GrandTotal.Value,
			Currency: data.Cart.Prices.GrandTotal.Currency,
		},
	}
	for _, item := range data.Cart.Items {
		id, err := strconv.Atoi(item.ID)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("parse cart item id %q: %w", item.ID, err)
		}
		cart.Lines = append(cart.Lines, domain.CartLine{
			ID:       domain.CartItemID(id),
			SKU:      item.Product.SKU,
			Name:     item.Product.Name,
			Quantity: item.Quantity,
			Price: domain.Money{
				Value:    item.Prices.RowTotal.Value,
				Currency: item.Prices.RowTotal.Currency,
			},
		})
	}

	return cart, nil
}
