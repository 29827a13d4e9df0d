package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/set-night/surveypay/internal/mpesa"
	"github.com/set-night/surveypay/internal/service"
	"github.com/shopspring/decimal"
)

func verifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [message | -]",
		Short: "Verify a confirmation message and resolve its plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := messageArg(cmd, args)
			if err != nil {
				return err
			}
			plans, err := opts.loadPlans()
			if err != nil {
				return err
			}

			res := mpesa.NewVerifier(opts.marker).Verify(mpesa.PlainText(msg))

			plan := ""
			if res.IsValid && res.Details.Amount != nil {
				if amount, err := decimal.NewFromString(*res.Details.Amount); err == nil {
					if tier, ok := service.ResolveByAmount(amount, plans.Tiers()); ok {
						plan = tier.Name
					}
				}
			}

			w := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(w, map[string]any{"verification": res, "plan": plan})
			}

			fmt.Fprintf(w, "valid:   %t\n", res.IsValid)
			fmt.Fprintf(w, "message: %s\n", res.Reason)
			printField(w, "amount", res.Details.Amount)
			printField(w, "txn id", res.Details.TransactionID)
			printField(w, "time", res.Details.Timestamp)
			printField(w, "to", res.Details.CounterpartyName)
			if plan != "" {
				fmt.Fprintf(w, "plan:    %s\n", plan)
			}
			return nil
		},
	}
}

func printField(w io.Writer, label string, v *string) {
	if v == nil {
		return
	}
	fmt.Fprintf(w, "%-8s %s\n", label+":", *v)
}
