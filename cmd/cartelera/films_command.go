package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cartelera/internal/catalog"
)

func newFilmsCommand(ctx *commandContext) *cobra.Command {
	var (
		withSessions bool
		allFilms     bool
	)

	cmd := &cobra.Command{
		Use:   "films",
		Short: "List the films in the current dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.newPipeline()
			if err != nil {
				return err
			}
			ds, err := p.Dataset(cmd.Context())
			if err != nil {
				return err
			}

			headers := []string{"Title", "Year", "Director", "Rating", "Sessions", "Next showing"}
			aligns := []columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignRight, alignLeft}

			rows := make([][]string, 0, len(ds.Films))
			for i := range ds.Films {
				film := &ds.Films[i]
				if len(film.Sessions) == 0 && !allFilms {
					continue
				}
				rows = append(rows, filmRow(film))
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No films in the dataset.")
				return nil
			}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))

			if withSessions {
				for i := range ds.Films {
					film := &ds.Films[i]
					if len(film.Sessions) == 0 {
						continue
					}
					fmt.Fprintf(out, "\n%s\n", filmLabel(film))
					for _, session := range film.Sessions {
						line := "  " + session.ShowTime.String() + "  " + session.Location
						if session.Version != catalog.VersionUnknown {
							line += "  (" + string(session.Version) + ")"
						}
						fmt.Fprintln(out, line)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withSessions, "sessions", false, "Print the full session list per film")
	cmd.Flags().BoolVar(&allFilms, "all", false, "Include films without upcoming sessions")
	return cmd
}

func filmRow(film *catalog.Film) []string {
	year := ""
	if film.Year > 0 {
		year = strconv.Itoa(film.Year)
	}
	rating := ""
	if film.Rating > 0 {
		rating = strconv.FormatFloat(film.Rating, 'f', 2, 64)
	}
	next := ""
	if len(film.Sessions) > 0 {
		next = film.Sessions[0].ShowTime.String()
	}
	return []string{
		film.Title,
		year,
		film.Director,
		rating,
		strconv.Itoa(len(film.Sessions)),
		next,
	}
}

func filmLabel(film *catalog.Film) string {
	parts := []string{film.Title}
	if film.Year > 0 {
		parts = append(parts, "("+strconv.Itoa(film.Year)+")")
	}
	return strings.Join(parts, " ")
}
