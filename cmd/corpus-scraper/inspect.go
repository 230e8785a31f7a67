package main

import (
	"fmt"

	"github.com/Caia-Tech/bilingual-corpus/internal/storage"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newInspectCommand() *cobra.Command {
	var show int

	cmd := &cobra.Command{
		Use:   "inspect <dataset-dir>",
		Short: "Summarize a saved dataset snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, info, err := storage.LoadSnapshot(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:    %s\n", ds.Name())
			fmt.Fprintf(out, "rows:    %d\n", ds.Len())
			fmt.Fprintf(out, "bytes:   %d\n", info.NumBytes)
			fmt.Fprintf(out, "columns: %v\n", []string(info.Features))

			if show <= 0 || ds.Len() == 0 {
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"#", "English title", "Chinese title"})
			for i, p := range ds.Pairs() {
				if i >= show {
					break
				}
				t.AppendRow(table.Row{i + 1, p.ENTitle, p.ZHTitle})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&show, "show", 5, "number of title pairs to print")
	return cmd
}
