package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/costpilot/pkg/client"
)

func newForecastCmd() *cobra.Command {
	var (
		team, service, region, provider string
		start, end, method              string
		horizon                         int
		confidence                      float64
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project future cloud spend from usage history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			forecast, err := apiClient.Analytics().Forecast(ctx, client.ForecastRequest{
				Scope: client.Scope{
					TeamID:      team,
					ServiceName: service,
					Region:      region,
					Provider:    provider,
				},
				Start:           start,
				End:             end,
				Method:          method,
				HorizonDays:     horizon,
				ConfidenceLevel: confidence,
			})
			if err != nil {
				return fmt.Errorf("failed to generate forecast: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(forecast)
			}

			fmt.Printf("Forecast (%s, %.0f%% confidence)\n", forecast.Method, forecast.ConfidenceLevel*100)
			fmt.Printf("Projected total: %s\n\n", formatMoney(forecast.Total))

			table := NewTable("DATE", "PREDICTED", "LOWER", "UPPER")
			for _, p := range forecast.Points {
				table.AddRow(
					p.Timestamp.Format("2006-01-02"),
					formatMoney(p.Predicted),
					formatMoney(p.Lower),
					formatMoney(p.Upper),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&team, "team", "", "filter by team")
	cmd.Flags().StringVar(&service, "service", "", "filter by service")
	cmd.Flags().StringVar(&region, "region", "", "filter by region")
	cmd.Flags().StringVar(&provider, "provider", "", "filter by provider")
	cmd.Flags().StringVar(&start, "start", "", "history window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "history window end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&method, "method", "linear", "forecast method: linear, exponential, seasonal, growth")
	cmd.Flags().IntVar(&horizon, "horizon", 30, "forecast horizon in days")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "confidence level (0,1), server default when omitted")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}
