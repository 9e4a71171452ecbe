package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTheatersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "theaters",
		Short: "List the available theater adapters",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.newPipeline()
			if err != nil {
				return err
			}

			headers := []string{"Key", "Name", "Update period"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft}

			rows := [][]string{}
			for _, key := range p.Registry().Keys() {
				scraper, err := p.Registry().Lookup(key)
				if err != nil {
					return err
				}
				info := scraper.Info()
				rows = append(rows, []string{info.Key, info.Name, info.UpdatePeriod})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}
}
