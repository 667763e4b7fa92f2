package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/domain/payment"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var paymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Record wages, advances, bonuses and deductions",
}

var paymentAddCmd = &cobra.Command{
	Use:   "add <worker-id> <amount>",
	Short: "Record a payment",
	Args:  cobra.ExactArgs(2),
	Example: `  agent payment add <worker-id> 3900 --project <project-id> --type wage --from 2024-01-01 --to 2024-01-06
  agent payment add <worker-id> -200 --project <project-id> --type deduction --notes "tool loss"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		projectID, _ := cmd.Flags().GetString("project")
		paymentType, _ := cmd.Flags().GetString("type")
		status, _ := cmd.Flags().GetString("status")
		date, _ := cmd.Flags().GetString("date")
		if date == "" {
			date = time.Now().Format(validator.DateLayout)
		}

		app.probe(ctx)
		created, err := app.payments.Create(ctx, payment.CreatePaymentRequest{
			WorkerID:           args[0],
			ProjectID:          projectID,
			PaymentDate:        date,
			Amount:             amount,
			PaymentType:        paymentType,
			PaymentPeriodStart: optionalString(cmd, "from"),
			PaymentPeriodEnd:   optionalString(cmd, "to"),
			Status:             status,
			Notes:              optionalString(cmd, "notes"),
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, created)
	},
}

var paymentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List payments",
	RunE: func(cmd *cobra.Command, args []string) error {
		payments, err := app.payments.List(cmd.Context(), payment.PaymentFilter{
			WorkerID:  optionalString(cmd, "worker"),
			ProjectID: optionalString(cmd, "project"),
			Status:    optionalString(cmd, "status"),
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, payments)
	},
}

var paymentMarkPaidCmd = &cobra.Command{
	Use:   "mark-paid <payment-id>",
	Short: "Mark a payment as paid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app.probe(ctx)

		updated, err := app.payments.UpdateStatus(ctx, payment.UpdatePaymentRequest{
			ID:     args[0],
			Status: string(payment.StatusPaid),
			Notes:  optionalString(cmd, "notes"),
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, updated)
	},
}

var wagesCmd = &cobra.Command{
	Use:   "wages <worker-id>",
	Short: "Total a worker's wages from attendance over a period",
	Long: `Total a worker's day-rate wages: a full day earns the daily wage and a half
day earns half of it.

The total is computed from the local ledger. With --remote the server computes
it instead, which requires the worker to be synced.`,
	Args:    cobra.ExactArgs(1),
	Example: `  agent wages <worker-id> --from 2024-01-01 --to 2024-01-31`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		useRemote, _ := cmd.Flags().GetBool("remote")

		req := payment.CalculateWagesRequest{WorkerID: args[0], StartDate: from, EndDate: to}
		if !useRemote {
			summary, err := app.payments.CalculateWages(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		}

		w, err := app.workers.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if w.RemoteKey() == "" {
			return errors.New("worker has not been synced to the server yet")
		}
		req.WorkerID = w.RemoteKey()

		summary, err := app.client.CalculateWages(ctx, req)
		if err != nil {
			return err
		}
		// Report the worker under the id the user knows
		summary.WorkerID = w.ID
		return printJSON(cmd, summary)
	},
}

func init() {
	f := paymentAddCmd.Flags()
	f.String("project", "", "Project id")
	f.String("type", string(payment.TypeWage), "wage, advance, bonus or deduction")
	f.String("date", "", "Payment date, YYYY-MM-DD (default today)")
	f.String("from", "", "Period start, YYYY-MM-DD")
	f.String("to", "", "Period end, YYYY-MM-DD")
	f.String("status", "", "paid or unpaid (default unpaid)")
	f.String("notes", "", "Notes")
	_ = paymentAddCmd.MarkFlagRequired("project")

	lf := paymentListCmd.Flags()
	lf.String("worker", "", "Worker id")
	lf.String("project", "", "Project id")
	lf.String("status", "", "paid or unpaid")

	paymentMarkPaidCmd.Flags().String("notes", "", "Replace the payment notes")

	wf := wagesCmd.Flags()
	wf.String("from", "", "Period start, YYYY-MM-DD")
	wf.String("to", "", "Period end, YYYY-MM-DD")
	wf.Bool("remote", false, "Ask the server instead of the local ledger")
	_ = wagesCmd.MarkFlagRequired("from")
	_ = wagesCmd.MarkFlagRequired("to")

	paymentCmd.AddCommand(paymentAddCmd, paymentListCmd, paymentMarkPaidCmd)
	rootCmd.AddCommand(paymentCmd, wagesCmd)
}
