package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the customer sign-in token",
	}

	cmd.AddCommand(newAuthSetTokenCmd(app), newAuthClearCmd(app))

	return cmd
}

func newAuthSetTokenCmd(app *app) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "set-token",
		Short: "Store a customer token; later commands run signed in",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			token = strings.TrimSpace(token)
			if token == "" {
				return fmt.Errorf("token is empty")
			}

			if err := app.tokens.Set(cmd.Context(), SigninTokenKey, token); err != nil {
				return fmt.Errorf("store signin token: %w", err)
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "signed in")
			return err
		}),
	}

	cmd.Flags().StringVar(&token, "token", "", "Customer token")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newAuthClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Sign out: drop the customer token and the customer's cart id",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			if err := app.tokens.Remove(cmd.Context(), SigninTokenKey); err != nil {
				return fmt.Errorf("remove signin token: %w", err)
			}
			if _, err := app.manager.ResetCart(cmd.Context(), app.initialState()); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return err
		}),
	}
}
