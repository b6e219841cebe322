package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newVerifyCmd(a *app) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Report entries whose stored balance differs from their history",
		Long: "verify re-derives every party's running balance from its entries and lists\n" +
			"the entries whose stored balance disagrees. It exits non-zero when any drift is found.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeDB, err := a.openLedger()
			if err != nil {
				return err
			}
			defer closeDB()

			drift, err := svc.Verify(cmd.Context(), userID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(drift) == 0 {
				fmt.Fprintln(out, "no drift found")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ENTRY\tUSER\tPARTY\tDATE\tSTORED\tDERIVED")
			for _, d := range drift {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					d.EntryID, d.UserID, d.PartyName, d.EntryDate.Format("2006-01-02"),
					d.Stored.StringFixed(2), d.Derived.StringFixed(2))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return fmt.Errorf("found %d drifted entries; run ledgerctl rebalance to repair", len(drift))
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Only check this user (default: every user)")
	return cmd
}

func newRebalanceCmd(a *app) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "rebalance",
		Short: "Rewrite drifted stored balances to their re-derived values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeDB, err := a.openLedger()
			if err != nil {
				return err
			}
			defer closeDB()

			result, err := svc.Rebalance(cmd.Context(), userID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users=%d checked=%d updated=%d\n",
				result.Users, result.Checked, result.Updated)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Only rebalance this user (default: every user)")
	return cmd
}
