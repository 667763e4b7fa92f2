package main

import (
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show worker, attendance and payment totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if useRemote, _ := cmd.Flags().GetBool("remote"); useRemote {
			summary, err := app.client.Dashboard(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		}

		summary, err := app.dashboard.GetDashboard(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd, summary)
	},
}

func init() {
	dashboardCmd.Flags().Bool("remote", false, "Ask the server instead of the local ledger")
	rootCmd.AddCommand(dashboardCmd)
}
