package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/set-night/surveypay/internal/service"
	"github.com/shopspring/decimal"
)

func resolveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <amount>",
		Short: "Show which plan an amount pays for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(strings.ReplaceAll(args[0], ",", ""))
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			plans, err := opts.loadPlans()
			if err != nil {
				return err
			}

			tier, ok := service.ResolveByAmount(amount, plans.Tiers())
			w := cmd.OutOrStdout()
			if opts.asJSON {
				if !ok {
					return printJSON(w, map[string]any{"resolved": false})
				}
				return printJSON(w, map[string]any{"resolved": true, "plan": tier})
			}

			if !ok {
				fmt.Fprintln(w, "no paid plans configured")
				return nil
			}
			fmt.Fprintf(w, "%s (Ksh %s)\n", tier.Name, tier.Price.String())
			return nil
		},
	}
}
