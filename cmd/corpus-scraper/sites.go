package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newSitesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List configured site families",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Name", "Listing", "Discovery", "Pairing", "Max", "Delay", "JSONL"})

			for _, name := range a.config.SiteNames() {
				s := a.config.Sites[name]
				t.AppendRow(table.Row{
					name,
					s.ListingURL,
					s.Discovery.Strategy,
					s.Pairing.Rule,
					s.MaxArticles,
					s.Delay.String(),
					s.Output.JSONLPath,
				})
			}

			t.Render()
			return nil
		},
	}
}
