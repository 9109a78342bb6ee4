package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"expense-tracker/internal/amqp"
)

var errNoBroker = errors.New("no event broker configured (set AMQP_URL)")

func newEventsCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Print expense events from the broker until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, open, func(ctx context.Context, env *Env) error {
				if env.Events == nil {
					return errNoBroker
				}
				err := env.Events.Consume(ctx, func(ev *amqp.Event) error {
					body, err := ev.ToJSON()
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))
					return err
				})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
}
