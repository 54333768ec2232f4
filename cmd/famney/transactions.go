package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/famney/famney/internal/categories"
	"github.com/famney/famney/internal/cli"
	"github.com/famney/famney/internal/common"
	"github.com/famney/famney/internal/model"
	"github.com/famney/famney/internal/service"
)

func (a *app) transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txn"},
		Short:   "Book and list transactions",
		Long:    `Record income and expenses against the family's categories.`,
	}

	cmd.AddCommand(a.addTransactionCmd())
	cmd.AddCommand(a.listTransactionsCmd())

	return cmd
}

func (a *app) addTransactionCmd() *cobra.Command {
	var (
		date        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add <category> <amount>",
		Short: "Book a transaction against a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			familyID, err := a.familyID()
			if err != nil {
				return err
			}

			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return common.NewUserError("invalid amount "+args[1], err)
			}

			occurredAt := time.Now()
			if date != "" {
				occurredAt, err = time.Parse(time.DateOnly, date)
				if err != nil {
					return common.NewUserError("invalid date, expected YYYY-MM-DD", err)
				}
			}

			return a.withManager(cmd, func(ctx context.Context, m *categories.Manager, store service.Storage) error {
				cat, err := m.Resolve(ctx, familyID, args[0])
				if err != nil {
					return friendlyError(err)
				}
				if !cat.IsActive() {
					return common.NewUserError(fmt.Sprintf("category %q is deactivated", cat.Name()), nil)
				}

				txn := &model.Transaction{
					FamilyID:    familyID,
					CategoryID:  cat.ID(),
					Amount:      amount,
					OccurredAt:  occurredAt,
					Description: description,
				}
				if err := store.SaveTransaction(ctx, txn); err != nil {
					return friendlyError(err)
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
					"Booked %s to %s", amount.StringFixed(2), cat.DisplayName())))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "booking date (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "transaction description")

	return cmd
}

func (a *app) listTransactionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <category>",
		Short: "List the transactions of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			familyID, err := a.familyID()
			if err != nil {
				return err
			}

			return a.withManager(cmd, func(ctx context.Context, m *categories.Manager, store service.Storage) error {
				cat, err := m.Resolve(ctx, familyID, args[0])
				if err != nil {
					return friendlyError(err)
				}

				txns, err := store.GetTransactionsByCategory(ctx, cat.ID())
				if err != nil {
					return fmt.Errorf("failed to list transactions: %w", err)
				}

				if _, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(cat.DisplayName())); err != nil {
					return err
				}
				return cli.RenderTransactionTable(cmd.OutOrStdout(), txns)
			})
		},
	}
}
