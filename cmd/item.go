package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/cart-session-cli/internal/application"
	"github.com/bnema/cart-session-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newItemCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Add, update or remove cart items",
	}

	cmd.AddCommand(newItemAddCmd(app), newItemUpdateCmd(app), newItemRemoveCmd(app))

	return cmd
}

type itemFlags struct {
	sku         string
	parentSKU   string
	name        string
	productType string
	quantity    float64
	images      []string
}

func (f itemFlags) item() domain.Item {
	item := domain.Item{SKU: strings.TrimSpace(f.sku), Name: strings.TrimSpace(f.name)}
	for i, file := range f.images {
		if file = strings.TrimSpace(file); file != "" {
			item.Media = append(item.Media, domain.MediaEntry{File: file, Position: i + 1})
		}
	}
	return item
}

func (f *itemFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sku, "sku", "", "Product SKU (the selected variant for configurable products)")
	cmd.Flags().StringVar(&f.parentSKU, "parent-sku", "", "Parent SKU of a configurable product")
	cmd.Flags().StringVar(&f.name, "name", "", "Product name")
	cmd.Flags().StringVar(&f.productType, "type", "simple", "Product type (simple|configurable)")
	cmd.Flags().Float64Var(&f.quantity, "quantity", 1, "Quantity")
	cmd.Flags().StringArrayVar(&f.images, "image", nil, "Product image file, primary first (repeatable)")
}

func newItemAddCmd(app *app) *cobra.Command {
	var flags itemFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item to the cart",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			command := application.AddItemCommand{
				Item:        flags.item(),
				ParentSKU:   strings.TrimSpace(flags.parentSKU),
				Quantity:    flags.quantity,
				ProductType: domain.ParseProductType(flags.productType),
			}
			if err := command.Validate(); err != nil {
				return err
			}

			res, err := app.mutate(cmd, func(ctx context.Context, state domain.SessionState) (application.Result, error) {
				return app.manager.AddItem(ctx, state, command)
			})
			if err := surfacedMutation("add item", res, err); err != nil {
				return err
			}

			return writeMutationOutput(cmd, app, res, fmt.Sprintf("added %s to cart %s", command.Item.SKU, res.State.CartID))
		}),
	}

	flags.bind(cmd)
	_ = cmd.MarkFlagRequired("sku")

	return cmd
}

func newItemUpdateCmd(app *app) *cobra.Command {
	var (
		flags  itemFlags
		itemID int
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change the quantity or the options of a cart item",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			command := application.UpdateItemCommand{
				CartItemID:  domain.CartItemID(itemID),
				Item:        flags.item(),
				ParentSKU:   strings.TrimSpace(flags.parentSKU),
				Quantity:    flags.quantity,
				ProductType: domain.ParseProductType(flags.productType),
			}
			if err := command.Validate(); err != nil {
				return err
			}

			res, err := app.mutate(cmd, func(ctx context.Context, state domain.SessionState) (application.Result, error) {
				return app.manager.UpdateItem(ctx, state, command)
			})
			if err := surfacedMutation("update item", res, err); err != nil {
				return err
			}

			return writeMutationOutput(cmd, app, res, fmt.Sprintf("updated item %d in cart %s", itemID, res.State.CartID))
		}),
	}

	flags.bind(cmd)
	cmd.Flags().IntVar(&itemID, "item-id", 0, "Cart item id")
	_ = cmd.MarkFlagRequired("item-id")

	return cmd
}

func newItemRemoveCmd(app *app) *cobra.Command {
	var itemID int

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove an item from the cart",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			command := application.RemoveItemCommand{CartItemID: domain.CartItemID(itemID)}
			if err := command.Validate(); err != nil {
				return err
			}

			res, err := app.mutate(cmd, func(ctx context.Context, state domain.SessionState) (application.Result, error) {
				return app.manager.RemoveItem(ctx, state, command)
			})
			if err := surfacedMutation("remove item", res, err); err != nil {
				return err
			}

			return writeMutationOutput(cmd, app, res, fmt.Sprintf("removed item %d from cart %s", itemID, res.State.CartID))
		}),
	}

	cmd.Flags().IntVar(&itemID, "item-id", 0, "Cart item id")
	_ = cmd.MarkFlagRequired("item-id")

	return cmd
}

// mutate ensures a cart, then runs one mutation while progress is shown.
func (a *app) mutate(cmd *cobra.Command, mutation func(context.Context, domain.SessionState) (application.Result, error)) (application.Result, error) {
	var (
		res    application.Result
		mutErr error
	)

	err := a.progress.run(cmd.Context(), cmd.ErrOrStderr(), labelFetching, func(ctx context.Context) error {
		state, err := a.ensureCart(ctx, a.initialState())
		if err != nil {
			return err
		}
		res, mutErr = mutation(ctx, state)
		return nil
	})
	if err != nil {
		return application.Result{}, err
	}

	return res, mutErr
}

// surfacedMutation tells the user when a failed mutation still left them on a new cart.
func surfacedMutation(operation string, res application.Result, err error) error {
	surfacedErr := surfaced(operation, res, err)
	if surfacedErr == nil {
		return nil
	}
	if res.Recovered && res.State.HasCart() {
		return fmt.Errorf("%w (a new cart %s was created)", surfacedErr, res.State.CartID)
	}
	return surfacedErr
}

// writeMutationOutput confirms the mutation and renders the cart as read back afterwards.
func writeMutationOutput(cmd *cobra.Command, app *app, res application.Result, message string) error {
	out := cmd.OutOrStdout()
	if res.Recovered {
		if _, err := fmt.Fprintln(out, "previous cart was no longer valid, a new cart was created"); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(out, message); err != nil {
		return err
	}
	if res.Cart == nil {
		return nil
	}

	rendered, err := app.cartRenderer(*res.Cart)
	if err != nil {
		return fmt.Errorf("render cart: %w", err)
	}
	_, err = fmt.Fprintln(out, rendered)
	return err
}
