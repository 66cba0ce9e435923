package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const (
	flushTimeout = 5 * time.Second
	eventsFlag   = "events"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cart",
		Short:         "Cart session manager: keep a valid shopping cart and mutate it",
		Long:          "cart keeps a storefront cart id in local storage, recovers once from an invalid cart by creating a new one, and adds, updates or removes cart items over GraphQL.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().Bool(eventsFlag, false, "Print the cart event timeline after the command")

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newEnsureCmd(app),
		newShowCmd(app),
		newResetCmd(app),
		newItemCmd(app),
		newAuthCmd(app),
		newImagesCmd(app),
	)

	return rootCmd
}

// runE wraps a command so background writes are flushed and the event timeline printed
// whether or not the command failed. Cobra skips PostRun hooks after a RunE error.
func (a *app) runE(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if finishErr := a.finish(cmd); err == nil {
			err = finishErr
		}
		return err
	}
}

func (a *app) finish(cmd *cobra.Command) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(commandContext(cmd)), flushTimeout)
	defer cancel()

	if err := a.manager.Flush(ctx); err != nil {
		a.logger.Warn("flush background writes", "error", err)
	}
	if err := a.shutdownTracing(ctx); err != nil {
		a.logger.Warn("shutdown tracing", "error", err)
	}

	showEvents, _ := cmd.Flags().GetBool(eventsFlag)
	if !showEvents {
		return nil
	}

	rendered, err := a.eventsRenderer(a.recorder.Events())
	if err != nil {
		return fmt.Errorf("render events: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
