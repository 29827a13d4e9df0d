package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/set-night/surveypay/internal/mpesa"
	"github.com/set-night/surveypay/internal/service"
)

func detectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "detect [message | -]",
		Short: "Run the auto-detect templates against pasted text",
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := messageArg(cmd, args)
			if err != nil {
				return err
			}
			plans, err := opts.loadPlans()
			if err != nil {
				return err
			}

			info, ok := mpesa.NewDetector(plans.Payment.TillNumber).ExtractPaymentInfo(mpesa.PlainText(msg))

			plan := ""
			if ok {
				if tier, found := service.ResolveByAmount(info.Amount, plans.Tiers()); found {
					plan = tier.Name
				}
			}

			w := cmd.OutOrStdout()
			if opts.asJSON {
				out := map[string]any{"detected": ok}
				if ok {
					out["payment"] = info
					out["plan"] = plan
				}
				return printJSON(w, out)
			}

			if !ok {
				fmt.Fprintf(w, "no payment to till %s detected\n", plans.Payment.TillNumber)
				return nil
			}
			fmt.Fprintf(w, "template: %d\n", info.Template)
			fmt.Fprintf(w, "amount:   %s\n", info.Amount.String())
			fmt.Fprintf(w, "till:     %s\n", info.TillNumber)
			fmt.Fprintf(w, "phone:    %s\n", info.PhoneNumber)
			if plan != "" {
				fmt.Fprintf(w, "plan:     %s\n", plan)
			}
			return nil
		},
	}
}
