package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cartelera/internal/pipeline"
)

const dateLayout = "2006-01-02"

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		fromFlag     string
		toFlag       string
		daysFlag     int
		theatersFlag []string
		backfill     bool
		skipEnrich   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape listings and merge them into the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := resolveDateRange(fromFlag, toFlag, daysFlag)
			if err != nil {
				return err
			}

			p, err := ctx.newPipeline()
			if err != nil {
				return err
			}

			result, err := p.Run(cmd.Context(), pipeline.RunOptions{
				From:       from,
				To:         to,
				Theaters:   theatersFlag,
				Backfill:   backfill,
				SkipEnrich: skipEnrich,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s finished.\n", result.RunID)
			fmt.Fprintf(out, "  scraped records:  %d\n", result.Records)
			fmt.Fprintf(out, "  batch films:      %d\n", result.BatchFilms)
			fmt.Fprintf(out, "  films created:    %d\n", result.Stats.FilmsCreated)
			fmt.Fprintf(out, "  films updated:    %d\n", result.Stats.FilmsUpdated)
			fmt.Fprintf(out, "  sessions added:   %d\n", result.Stats.SessionsAdded)
			fmt.Fprintf(out, "  enriched:         %d\n", result.Stats.Enriched)
			fmt.Fprintf(out, "  dataset:          %d films, %d sessions\n", result.Films, result.Sessions)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "Start date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&toFlag, "to", "", "End date inclusive (YYYY-MM-DD)")
	cmd.Flags().IntVar(&daysFlag, "days", 7, "Number of days to scrape when --to is not given")
	cmd.Flags().StringSliceVar(&theatersFlag, "theaters", nil, "Theater keys to scrape (default: configured set, or all)")
	cmd.Flags().BoolVar(&backfill, "backfill", false, "Re-fetch metadata for every resolved film")
	cmd.Flags().BoolVar(&skipEnrich, "skip-enrich", false, "Merge without the metadata pass")
	return cmd
}

func resolveDateRange(fromFlag, toFlag string, days int) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if strings.TrimSpace(fromFlag) != "" {
		parsed, err := time.Parse(dateLayout, fromFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --from: %w", err)
		}
		from = parsed
	}

	if strings.TrimSpace(toFlag) != "" {
		to, err := time.Parse(dateLayout, toFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --to: %w", err)
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", toFlag, from.Format(dateLayout))
		}
		return from, to, nil
	}

	if days < 1 {
		return time.Time{}, time.Time{}, fmt.Errorf("--days must be at least 1")
	}
	return from, from.AddDate(0, 0, days-1), nil
}
