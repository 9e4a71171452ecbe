package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cartelera/internal/catalog"
)

func newArchiveCommand(ctx *commandContext) *cobra.Command {
	var (
		cutoffFlag string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Move sessions before the cutoff into historical storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cutoff, err := resolveCutoff(cutoffFlag)
			if err != nil {
				return err
			}

			p, err := ctx.newPipeline()
			if err != nil {
				return err
			}

			result, err := p.Archive(cmd.Context(), cutoff, dryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintf(out, "Dry run: %d sessions would be archived before %s.\n",
					result.SessionsArchived, cutoff)
			} else {
				fmt.Fprintf(out, "Archived %d sessions before %s.\n",
					result.SessionsArchived, cutoff)
			}
			for _, bundle := range result.Bundles {
				sessions := 0
				for _, film := range bundle.Films {
					sessions += len(film.Sessions)
				}
				fmt.Fprintf(out, "  %s: %d films, %d sessions\n", bundle.Window, len(bundle.Films), sessions)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cutoffFlag, "cutoff", "", "Archive sessions strictly before this time (YYYY-MM-DD or 'YYYY-MM-DD HH:MM', default now)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview the partition without writing anything")
	return cmd
}

func resolveCutoff(flag string) (catalog.ShowTime, error) {
	flag = strings.TrimSpace(flag)
	if flag == "" {
		return catalog.NewShowTime(time.Now()), nil
	}
	if parsed, err := time.Parse(dateLayout, flag); err == nil {
		return catalog.NewShowTime(parsed), nil
	}
	cutoff, err := catalog.ParseShowTime(flag)
	if err != nil {
		return catalog.ShowTime{}, fmt.Errorf("parse --cutoff: %w", err)
	}
	return cutoff, nil
}
