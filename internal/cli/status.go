package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show platform summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			format := getOutputFormat()
			if format != "table" {
				summary := map[string]interface{}{}

				if health, err := apiClient.Ready(ctx); err == nil {
					summary["server"] = health.Status
				}
				if budgets, err := apiClient.Budgets().List(ctx, nil); err == nil {
					summary["budgets"] = len(budgets)
				}
				if recs, err := apiClient.Recommendations().List(ctx, ""); err == nil {
					summary["recommendations"] = len(recs)
				}
				if scenarios, err := apiClient.Scenarios().List(ctx); err == nil {
					summary["scenarios"] = len(scenarios)
				}
				return printOutput(summary)
			}

			fmt.Println("CostPilot Dashboard")
			fmt.Println(strings.Repeat("=", 40))

			// Server
			if health, err := apiClient.Ready(ctx); err != nil {
				fmt.Printf("  Server:           (error: %v)\n", err)
			} else {
				fmt.Printf("  Server:           %s\n", formatStatus(health.Status))
			}

			// Budgets
			if budgets, err := apiClient.Budgets().List(ctx, nil); err != nil {
				fmt.Printf("  Budgets:          (error: %v)\n", err)
			} else {
				exceeded := 0
				for _, b := range budgets {
					if b.Status == "exceeded" {
						exceeded++
					}
				}
				fmt.Printf("  Budgets:          %d tracked", len(budgets))
				if exceeded > 0 {
					fmt.Printf(" (%d exceeded)", exceeded)
				}
				fmt.Println()
			}

			// Recommendations
			if recs, err := apiClient.Recommendations().List(ctx, "pending"); err != nil {
				fmt.Printf("  Recommendations:  (error: %v)\n", err)
			} else {
				var savings float64
				for _, r := range recs {
					savings += r.PotentialSavings
				}
				fmt.Printf("  Recommendations:  %d pending", len(recs))
				if savings > 0 {
					fmt.Printf(" (%s potential savings)", formatMoney(savings))
				}
				fmt.Println()
			}

			// Scenarios
			if scenarios, err := apiClient.Scenarios().List(ctx); err != nil {
				fmt.Printf("  Scenarios:        (error: %v)\n", err)
			} else {
				running := 0
				for _, s := range scenarios {
					if s.State == "running" {
						running++
					}
				}
				fmt.Printf("  Scenarios:        %d total", len(scenarios))
				if running > 0 {
					fmt.Printf(" (%d running)", running)
				}
				fmt.Println()
			}

			return nil
		},
	}
}
