package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/costpilot/pkg/client"
)

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Run and compare what-if cost scenarios",
	}

	cmd.AddCommand(newScenarioRunCmd())
	cmd.AddCommand(newScenarioListCmd())
	cmd.AddCommand(newScenarioGetCmd())
	cmd.AddCommand(newScenarioCancelCmd())
	cmd.AddCommand(newScenarioCompareCmd())

	return cmd
}

func newScenarioRunCmd() *cobra.Command {
	var (
		team, service, region, provider string
		start, end, scenarioType        string
		params                          string
		horizon                         int
		async                           bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario against a usage window",
		Long: `Run a what-if scenario. Parameters are passed as a JSON object, e.g.

  costpilot scenario run --type rightsizing --start 2026-01-01 --end 2026-02-01 \
    --params '{"reduction_factor":0.2}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if !json.Valid([]byte(params)) {
				return fmt.Errorf("--params must be a valid JSON object")
			}

			scenario, err := apiClient.Scenarios().Run(ctx, client.RunScenarioRequest{
				Scope: client.Scope{
					TeamID:      team,
					ServiceName: service,
					Region:      region,
					Provider:    provider,
				},
				Start:       start,
				End:         end,
				Type:        scenarioType,
				Parameters:  json.RawMessage(params),
				HorizonDays: horizon,
				Async:       async,
			})
			if err != nil {
				return fmt.Errorf("failed to run scenario: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(scenario)
			}

			if async {
				fmt.Printf("Scenario %s submitted (%s)\n", scenario.ID, scenario.State)
				return nil
			}

			printScenario(scenario)
			return nil
		},
	}

	cmd.Flags().StringVar(&team, "team", "", "filter by team")
	cmd.Flags().StringVar(&service, "service", "", "filter by service")
	cmd.Flags().StringVar(&region, "region", "", "filter by region")
	cmd.Flags().StringVar(&provider, "provider", "", "filter by provider")
	cmd.Flags().StringVar(&start, "start", "", "baseline window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "baseline window end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&scenarioType, "type", "", "scenario type: rightsizing, migration, reservation, spot, growth_adjustment")
	cmd.Flags().StringVar(&params, "params", "{}", "scenario parameters as JSON")
	cmd.Flags().IntVar(&horizon, "horizon", 0, "extend the baseline by a forecast horizon in days")
	cmd.Flags().BoolVar(&async, "async", false, "run in the background and poll with 'scenario get'")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func printScenario(s *client.Scenario) {
	fmt.Printf("Scenario %s (%s)\n", s.ID, s.Type)
	fmt.Printf("  State:       %s\n", formatStatus(s.State))
	if s.Error != "" {
		fmt.Printf("  Error:       %s\n", s.Error)
		return
	}
	fmt.Printf("  Baseline:    %s\n", formatMoney(s.BaselineTotal))
	fmt.Printf("  Projected:   %s\n", formatMoney(s.ProjectedTotal))
	fmt.Printf("  Difference:  %s (%s)\n", formatMoney(s.TotalDifference), formatPct(s.PercentChange))
	if s.RiskLevel != "" {
		fmt.Printf("  Risk:        %s (confidence %.2f)\n", s.RiskLevel, s.ConfidenceScore)
	}
}

func newScenarioListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scenario runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			scenarios, err := apiClient.Scenarios().List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list scenarios: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(scenarios)
			}

			table := NewTable("ID", "TYPE", "STATE", "DIFFERENCE", "CHANGE", "RISK")
			for _, s := range scenarios {
				table.AddRow(
					truncate(s.ID, 12),
					s.Type,
					formatStatus(s.State),
					formatMoney(s.TotalDifference),
					formatPct(s.PercentChange),
					s.RiskLevel,
				)
			}
			table.Render()
			return nil
		},
	}
}

func newScenarioGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one scenario run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			scenario, err := apiClient.Scenarios().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get scenario: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(scenario)
			}

			printScenario(scenario)
			return nil
		},
	}
}

func newScenarioCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a running scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if err := apiClient.Scenarios().Cancel(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to cancel scenario: %w", err)
			}

			fmt.Printf("Scenario %s cancelling\n", args[0])
			return nil
		},
	}
}

func newScenarioCompareCmd() *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "compare <id> <id> [id...]",
		Short: "Rank completed scenarios",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			comparison, err := apiClient.Scenarios().Compare(ctx, client.CompareScenariosRequest{
				ScenarioIDs:    args,
				AnalysisMethod: method,
			})
			if err != nil {
				return fmt.Errorf("failed to compare scenarios: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(comparison)
			}

			fmt.Printf("Comparison (%s)\n", comparison.Method)
			fmt.Printf("  Best:  %s\n", comparison.BestScenarioID)
			fmt.Printf("  Worst: %s\n", comparison.WorstScenarioID)
			fmt.Printf("  Total potential savings: %s\n\n", formatMoney(comparison.TotalPotentialSavings))

			table := NewTable("RANK", "ID", "TYPE", "COST CHANGE", "RISK", "COMPLEXITY", "SCORE", "QUICK WIN")
			for i, s := range comparison.Summaries {
				quickWin := ""
				if s.QuickWin {
					quickWin = "yes"
				}
				table.AddRow(
					fmt.Sprintf("%d", i+1),
					truncate(s.ScenarioID, 12),
					s.Type,
					formatMoney(s.CostChange),
					fmt.Sprintf("%.2f", s.RiskScore),
					fmt.Sprintf("%d", s.Complexity),
					fmt.Sprintf("%.3f", s.CompositeScore),
					quickWin,
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&method, "method", "", "analysis method: cost_optimization, risk_adjusted, balanced, quick_wins")

	return cmd
}
