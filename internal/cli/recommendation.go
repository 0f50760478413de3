package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/costpilot/pkg/client"
)

func newRecommendationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Cost optimization recommendations",
	}

	cmd.AddCommand(newRecommendGenerateCmd())
	cmd.AddCommand(newRecommendListCmd())
	cmd.AddCommand(newRecommendGetCmd())
	cmd.AddCommand(newRecommendTransitionCmd())

	return cmd
}

func renderRecommendations(recs []client.Recommendation) {
	table := NewTable("ID", "TYPE", "IMPACT", "SAVINGS", "RISK", "STATUS", "TITLE")
	for _, r := range recs {
		table.AddRow(
			truncate(r.ID, 12),
			r.Type,
			formatSeverity(r.Impact),
			formatMoney(r.PotentialSavings),
			r.RiskLevel,
			formatStatus(r.Status),
			truncate(r.Title, 40),
		)
	}
	table.Render()
}

func newRecommendGenerateCmd() *cobra.Command {
	var (
		team, service, region, provider string
		start, end                      string
		minImpact, maxRisk              string
		limit                           int
		allowEmpty                      bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate recommendations from resource usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			recs, err := apiClient.Recommendations().Generate(ctx, client.GenerateRecommendationsRequest{
				Scope: client.Scope{
					TeamID:      team,
					ServiceName: service,
					Region:      region,
					Provider:    provider,
				},
				Start:              start,
				End:                end,
				MinImpact:          minImpact,
				MaxRisk:            maxRisk,
				MaxRecommendations: limit,
				AllowEmpty:         allowEmpty,
			})
			if err != nil {
				return fmt.Errorf("failed to generate recommendations: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(recs)
			}

			fmt.Printf("Generated %d recommendations\n\n", len(recs))
			renderRecommendations(recs)
			return nil
		},
	}

	cmd.Flags().StringVar(&team, "team", "", "filter by team")
	cmd.Flags().StringVar(&service, "service", "", "filter by service")
	cmd.Flags().StringVar(&region, "region", "", "filter by region")
	cmd.Flags().StringVar(&provider, "provider", "", "filter by provider")
	cmd.Flags().StringVar(&start, "start", "", "usage window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "usage window end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&minImpact, "min-impact", "", "minimum impact: high, medium, low")
	cmd.Flags().StringVar(&maxRisk, "max-risk", "", "maximum risk: low, medium, high")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum recommendations to return")
	cmd.Flags().BoolVar(&allowEmpty, "allow-empty", false, "return an empty list instead of an error when no usage exists")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newRecommendListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List generated recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			recs, err := apiClient.Recommendations().List(ctx, status)
			if err != nil {
				return fmt.Errorf("failed to list recommendations: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(recs)
			}

			renderRecommendations(recs)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status")

	return cmd
}

func newRecommendGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one recommendation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			rec, err := apiClient.Recommendations().Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get recommendation: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(rec)
			}

			fmt.Printf("%s\n", rec.Title)
			fmt.Printf("  ID:       %s\n", rec.ID)
			fmt.Printf("  Type:     %s\n", rec.Type)
			fmt.Printf("  Impact:   %s\n", formatSeverity(rec.Impact))
			fmt.Printf("  Savings:  %s\n", formatMoney(rec.PotentialSavings))
			fmt.Printf("  Effort:   %s\n", rec.Effort)
			fmt.Printf("  Risk:     %s\n", rec.RiskLevel)
			fmt.Printf("  Status:   %s\n", formatStatus(rec.Status))
			fmt.Printf("\n%s\n", rec.Description)
			return nil
		},
	}
}

func newRecommendTransitionCmd() *cobra.Command {
	var actor, notes string

	cmd := &cobra.Command{
		Use:   "transition <id> <status>",
		Short: "Move a recommendation to accepted, rejected, deferred or implemented",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			rec, err := apiClient.Recommendations().Transition(ctx, args[0], client.TransitionRecommendationRequest{
				Status: args[1],
				Actor:  actor,
				Notes:  notes,
			})
			if err != nil {
				return fmt.Errorf("failed to transition recommendation: %w", err)
			}

			fmt.Printf("Recommendation %s is now %s\n", rec.ID, rec.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "who is making the change")
	cmd.Flags().StringVar(&notes, "notes", "", "optional notes")
	_ = cmd.MarkFlagRequired("actor")

	return cmd
}
