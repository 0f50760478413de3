package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/costpilot/pkg/client"
)

func newTrendCmd() *cobra.Command {
	var (
		team, service, region, provider string
		start, end                      string
		window                          int
		anomalies                       bool
	)

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Summarize cost direction, growth and volatility",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			trend, err := apiClient.Analytics().Trend(ctx, client.TrendRequest{
				Scope: client.Scope{
					TeamID:      team,
					ServiceName: service,
					Region:      region,
					Provider:    provider,
				},
				Start:           start,
				End:             end,
				WindowSize:      window,
				DetectAnomalies: anomalies,
			})
			if err != nil {
				return fmt.Errorf("failed to analyze trend: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(trend)
			}

			fmt.Printf("Trend over %s (%d points)\n", trend.Period, trend.PointCount)
			fmt.Printf("  Direction:   %s\n", trend.Direction)
			fmt.Printf("  Growth rate: %s\n", formatPct(trend.GrowthRate*100))
			fmt.Printf("  Volatility:  %.4f\n", trend.Volatility)

			if len(trend.Anomalies) > 0 {
				fmt.Printf("\nAnomalies (%d):\n", len(trend.Anomalies))
				table := NewTable("DATE", "OBSERVED", "EXPECTED", "SCORE", "SEVERITY")
				for _, a := range trend.Anomalies {
					table.AddRow(
						a.Timestamp.Format("2006-01-02"),
						formatMoney(a.Observed),
						formatMoney(a.Expected),
						fmt.Sprintf("%.2f", a.DeviationScore),
						formatSeverity(a.Severity),
					)
				}
				table.Render()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&team, "team", "", "filter by team")
	cmd.Flags().StringVar(&service, "service", "", "filter by service")
	cmd.Flags().StringVar(&region, "region", "", "filter by region")
	cmd.Flags().StringVar(&provider, "provider", "", "filter by provider")
	cmd.Flags().StringVar(&start, "start", "", "history window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "history window end (YYYY-MM-DD)")
	cmd.Flags().IntVar(&window, "window", 0, "growth-rate window in points, server default when omitted")
	cmd.Flags().BoolVar(&anomalies, "anomalies", false, "detect anomalous observations")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}
