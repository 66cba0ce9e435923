package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bnema/cart-session-cli/internal/application"
	"github.com/bnema/cart-session-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newEnsureCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure",
		Short: "Make sure a cart exists and print its id",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			var state domain.SessionState
			err := app.progress.run(cmd.Context(), cmd.ErrOrStderr(), labelFetching, func(ctx context.Context) error {
				var err error
				state, err = app.ensureCart(ctx, app.initialState())
				return err
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), state.CartID)
			return err
		}),
	}
}

func newShowCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the cart contents",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			var view application.CartView
			load := func(ctx context.Context) error {
				state, err := app.ensureCart(ctx, app.initialState())
				if err != nil {
					return err
				}
				view, err = app.manager.Details(ctx, state)
				return err
			}

			var err error
			if asJSON {
				err = load(cmd.Context())
			} else {
				err = app.progress.run(cmd.Context(), cmd.ErrOrStderr(), labelFetching, load)
			}
			if err != nil {
				return err
			}

			return writeCartOutput(cmd, app, view, asJSON)
		}),
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newResetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the stored cart id",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			if _, err := app.manager.ResetCart(cmd.Context(), app.initialState()); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "cart reset")
			return err
		}),
	}
}

// ensureCart turns a surfaced ensure failure into an error: nothing can run without a cart.
func (a *app) ensureCart(ctx context.Context, state domain.SessionState) (domain.SessionState, error) {
	res, err := a.manager.EnsureCart(ctx, state)
	if err := surfaced("get cart", res, err); err != nil {
		return res.State, err
	}
	return res.State, nil
}

func surfaced(operation string, res application.Result, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if res.Failure != nil {
		return fmt.Errorf("%s: %w", operation, res.Failure)
	}
	return nil
}

type cartLineJSON struct {
	ID       domain.CartItemID `json:"id"`
	SKU      string            `json:"sku"`
	Name     string            `json:"name,omitempty"`
	Quantity float64           `json:"quantity"`
	Price    moneyJSON         `json:"price"`
	Image    string            `json:"image,omitempty"`
}

type moneyJSON struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency,omitempty"`
}

type cartJSON struct {
	ID         domain.CartID  `json:"id"`
	Items      []cartLineJSON `json:"items"`
	GrandTotal moneyJSON      `json:"grand_total"`
}

func writeCartOutput(cmd *cobra.Command, app *app, view application.CartView, asJSON bool) error {
	if asJSON {
		out := cartJSON{
			ID:         view.Cart.ID,
			Items:      make([]cartLineJSON, 0, len(view.Cart.Lines)),
			GrandTotal: moneyJSON(view.Cart.GrandTotal),
		}
		for _, line := range view.Cart.Lines {
			out.Items = append(out.Items, cartLineJSON{
				ID:       line.ID,
				SKU:      line.SKU,
				Name:     line.Name,
				Quantity: line.Quantity,
				Price:    moneyJSON(line.Price),
				Image:    view.Images[line.SKU].File,
			})
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	rendered, err := app.cartRenderer(view)
	if err != nil {
		return fmt.Errorf("render cart: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
