package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"expense-tracker/internal/domain"
)

func newDashboardCommand(open Opener) *cobra.Command {
	var year, month int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the monthly summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if !cmd.Flags().Changed("year") {
				year = now.Year()
			}
			if !cmd.Flags().Changed("month") {
				month = int(now.Month())
			}

			return withEnv(cmd, open, func(ctx context.Context, env *Env) error {
				d, err := env.Service.GetDashboard(ctx, year, month)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), d)
				}
				printDashboard(cmd.OutOrStdout(), d)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year (default current)")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (default current)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func newAnomaliesCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "anomalies",
		Short: "List expenses flagged as anomalies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, open, func(ctx context.Context, env *Env) error {
				list, err := env.Service.ListAnomalies(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No anomalies")
					return nil
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tVENDOR\tCATEGORY")
				for _, e := range list {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Amount.StringFixed(2), e.VendorName, e.Category)
				}
				return w.Flush()
			})
		},
	}
}

func newRulesCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the categorisation rules in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, open, func(ctx context.Context, env *Env) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "KEYWORD\tCATEGORY")
				for _, r := range env.Service.Rules() {
					fmt.Fprintf(w, "%s\t%s\n", r.Keyword, r.Category)
				}
				return w.Flush()
			})
		},
	}
}

func printDashboard(out io.Writer, d *domain.DashboardSummary) {
	fmt.Fprintf(out, "Dashboard %04d-%02d\n", d.Year, d.Month)

	if len(d.MonthlyCategoryTotals) == 0 {
		fmt.Fprintln(out, "No spending this month")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CATEGORY\tTOTAL")
		for _, t := range d.MonthlyCategoryTotals {
			fmt.Fprintf(w, "%s\t%s\n", t.Category, t.Total.StringFixed(2))
		}
		w.Flush()
	}

	if len(d.TopVendors) > 0 {
		fmt.Fprintln(out, "\nTop vendors")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for i, v := range d.TopVendors {
			fmt.Fprintf(w, "%d.\t%s\t%s\n", i+1, v.VendorName, v.Total.StringFixed(2))
		}
		w.Flush()
	}

	fmt.Fprintf(out, "\nAnomalies: %d\n", d.AnomalyCount)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
