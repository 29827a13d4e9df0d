package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/set-night/surveypay/internal/config"
)

type options struct {
	plansPath string
	marker    string
	till      string
	asJSON    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "paycheck",
		Short: "Check M-Pesa confirmations against the plan configuration",
		Long: `paycheck runs the payment verification and plan resolution rules offline.

It reads the same plan configuration document as the bot, so operators can
answer "why was this payment rejected?" without touching production data.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.plansPath, "plans", "", "plan configuration document (default: embedded)")
	cmd.PersistentFlags().StringVar(&opts.marker, "marker", "SURVEYPAY", "merchant marker required in confirmations")
	cmd.PersistentFlags().StringVar(&opts.till, "till", "", "till number override (default: from plan document)")
	cmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")

	cmd.AddCommand(verifyCmd(opts))
	cmd.AddCommand(detectCmd(opts))
	cmd.AddCommand(resolveCmd(opts))

	return cmd
}

func (o *options) loadPlans() (*config.PlanConfig, error) {
	cfg, err := config.LoadPlans(o.plansPath)
	if err != nil {
		return nil, fmt.Errorf("load plans: %w", err)
	}
	if o.till != "" {
		cfg.Payment.TillNumber = o.till
	}
	return cfg, nil
}

// messageArg joins positional args, or reads stdin when there are none or
// the only arg is "-".
func messageArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
