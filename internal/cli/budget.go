package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/costpilot/pkg/client"
)

func newBudgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage budgets and budget alerts",
	}

	cmd.AddCommand(newBudgetCreateCmd())
	cmd.AddCommand(newBudgetListCmd())
	cmd.AddCommand(newBudgetGetCmd())
	cmd.AddCommand(newBudgetRecomputeCmd())
	cmd.AddCommand(newBudgetAlertsCmd())
	cmd.AddCommand(newBudgetAckAlertCmd())
	cmd.AddCommand(newBudgetResolveAlertCmd())

	return cmd
}

func newBudgetCreateCmd() *cobra.Command {
	var (
		name, period, scope, target, periodStart string
		amount, threshold                        float64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a budget",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			budget, err := apiClient.Budgets().Create(ctx, client.CreateBudgetRequest{
				Name:           name,
				Amount:         amount,
				Period:         period,
				Scope:          scope,
				Target:         target,
				AlertThreshold: threshold,
				PeriodStart:    periodStart,
			})
			if err != nil {
				return fmt.Errorf("failed to create budget: %w", err)
			}

			fmt.Printf("Budget %s created (%s)\n", budget.Name, budget.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "budget name")
	cmd.Flags().Float64Var(&amount, "amount", 0, "budget amount")
	cmd.Flags().StringVar(&period, "period", "monthly", "budget period: monthly, quarterly, yearly")
	cmd.Flags().StringVar(&scope, "scope", "organization", "budget scope: team, service, organization")
	cmd.Flags().StringVar(&target, "target", "", "scope target (team id or service name)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "alert threshold percentage, server default when omitted")
	cmd.Flags().StringVar(&periodStart, "period-start", "", "period start (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("period-start")

	return cmd
}

func newBudgetListCmd() *cobra.Command {
	var scope, target, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List budgets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			budgets, err := apiClient.Budgets().List(ctx, &client.BudgetListOptions{
				Scope:  scope,
				Target: target,
				Status: status,
			})
			if err != nil {
				return fmt.Errorf("failed to list budgets: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(budgets)
			}

			table := NewTable("ID", "NAME", "AMOUNT", "SPEND", "UTILIZATION", "STATUS", "DAYS LEFT")
			for _, b := range budgets {
				table.AddRow(
					truncate(b.ID, 12),
					truncate(b.Name, 24),
					formatMoney(b.Amount),
					formatMoney(b.CurrentSpend),
					formatPct(b.Utilization),
					formatStatus(b.Status),
					fmt.Sprintf("%d", b.DaysRemaining),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "filter by scope")
	cmd.Flags().StringVar(&target, "target", "", "filter by target")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")

	return cmd
}

func newBudgetGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			budget, err := apiClient.Budgets().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get budget: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(budget)
			}

			fmt.Printf("Budget: %s\n", budget.Name)
			fmt.Printf("  ID:           %s\n", budget.ID)
			fmt.Printf("  Amount:       %s (%s)\n", formatMoney(budget.Amount), budget.Period)
			fmt.Printf("  Scope:        %s %s\n", budget.Scope, budget.Target)
			fmt.Printf("  Spend:        %s\n", formatMoney(budget.CurrentSpend))
			fmt.Printf("  Utilization:  %s\n", formatPct(budget.Utilization))
			fmt.Printf("  Threshold:    %s\n", formatPct(budget.AlertThreshold))
			fmt.Printf("  Status:       %s\n", formatStatus(budget.Status))
			fmt.Printf("  Days left:    %d\n", budget.DaysRemaining)
			return nil
		},
	}
}

func newBudgetRecomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute <id>",
		Short: "Refresh a budget's spend from stored usage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			result, err := apiClient.Budgets().Recompute(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to recompute budget: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			fmt.Printf("Budget %s recomputed: utilization %s, status %s\n",
				result.Budget.Name, formatPct(result.Budget.Utilization), result.Budget.Status)
			for _, a := range result.Alerts {
				fmt.Printf("  %s %s: %s\n", formatSeverity(a.Severity), a.Type, a.Message)
			}
			return nil
		},
	}
}

func newBudgetAlertsCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "alerts <budget-id>",
		Short: "List alerts for a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			alerts, err := apiClient.Budgets().ListAlerts(ctx, args[0], status)
			if err != nil {
				return fmt.Errorf("failed to list alerts: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(alerts)
			}

			table := NewTable("ID", "TYPE", "SEVERITY", "TRIGGER", "STATUS", "MESSAGE")
			for _, a := range alerts {
				table.AddRow(
					truncate(a.ID, 12),
					a.Type,
					formatSeverity(a.Severity),
					formatPct(a.TriggerPct),
					formatStatus(a.Status),
					truncate(a.Message, 48),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by alert status")

	return cmd
}

func newBudgetAckAlertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ack-alert <alert-id>",
		Short: "Acknowledge a budget alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			alert, err := apiClient.Budgets().AcknowledgeAlert(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to acknowledge alert: %w", err)
			}

			fmt.Printf("Alert %s acknowledged\n", alert.ID)
			return nil
		},
	}
}

func newBudgetResolveAlertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve-alert <alert-id>",
		Short: "Resolve a budget alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			alert, err := apiClient.Budgets().ResolveAlert(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve alert: %w", err)
			}

			fmt.Printf("Alert %s resolved\n", alert.ID)
			return nil
		},
	}
}
