package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/garyjia/lease-reports/internal/domain/lease"
	"github.com/garyjia/lease-reports/pkg/utils"
)

type leaseTermOptions struct {
	start    string
	months   string
	end      string
	rent     string
	deposit  string
	currency string
}

func newLeaseTermCommand() *cobra.Command {
	opts := &leaseTermOptions{}

	cmd := &cobra.Command{
		Use:   "lease-term",
		Short: "Derive a lease's end date and default deposit",
		Example: `  reportctl lease-term --start 2024-01-31 --months 1
  reportctl lease-term --start 2024-01-01 --months 12 --rent 8500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeaseTerm(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.months, "months", "", "duration in whole months")
	cmd.Flags().StringVar(&opts.end, "end", "", "explicit end date, overrides the derived one")
	cmd.Flags().StringVar(&opts.rent, "rent", "", "monthly rent")
	cmd.Flags().StringVar(&opts.deposit, "deposit", "", "explicit deposit")
	cmd.Flags().StringVar(&opts.currency, "currency", utils.DefaultCurrency, "currency symbol for amounts")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func runLeaseTerm(out io.Writer, opts *leaseTermOptions) error {
	form := lease.Form{
		StartDate:      lease.Input(opts.start),
		DurationMonths: lease.Input(opts.months),
		EndDate:        lease.Input(opts.end),
		MonthlyRent:    lease.Input(opts.rent),
		Deposit:        lease.Input(opts.deposit),
	}

	draft, errs := form.Draft()
	errs.Merge(lease.ValidateDraft(draft))
	if opts.rent == "" {
		// rent is optional when only the term is of interest
		delete(errs, string(lease.FieldMonthlyRent))
	}

	format := utils.NewFormatter(opts.currency, "")
	fmt.Fprintf(out, "Start date:  %s\n", format.Date(draft.StartDate.Value))
	if draft.DurationMonths.IsSet() {
		fmt.Fprintf(out, "Duration:    %d months\n", draft.DurationMonths.Value)
	}
	if draft.EndDate.IsSet() {
		fmt.Fprintf(out, "End date:    %s (%s)\n", format.Date(draft.EndDate.Value), draft.EndDate.Source)
	}
	if draft.MonthlyRent.IsSet() {
		fmt.Fprintf(out, "Rent:        %s\n", format.Currency(draft.MonthlyRent.Value))
	}
	if draft.Deposit.IsSet() {
		fmt.Fprintf(out, "Deposit:     %s (%s)\n", format.Currency(draft.Deposit.Value), draft.Deposit.Source)
	}

	return errs.OrNil()
}
