package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sartorproj/godecomp/report"
	"github.com/sartorproj/godecomp/sampledata"
)

var exampleRows int

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Built-in example datasets",
}

var exampleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the example datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := &report.Table{Title: "Examples", Headers: []string{"Name", "Rows", "Description"}}
		for _, name := range sampledata.Names() {
			d, err := sampledata.Get(name)
			if err != nil {
				return err
			}
			t.Rows = append(t.Rows, []string{d.Name, fmt.Sprint(d.Frame.Len()), d.Description})
		}
		return printTable(cmd, t)
	},
}

var exampleShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Print an example dataset and how to analyse it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := sampledata.Get(args[0])
		if err != nil {
			return err
		}
		t := &report.Table{Title: d.Description, Headers: d.Frame.Columns, Rows: d.Frame.Records()}
		if exampleRows > 0 {
			t = t.Truncate(exampleRows)
		}
		if err := printTable(cmd, t); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "\nTry:\n  %s\n", d.Hint)
		return err
	},
}

var exampleWriteCmd = &cobra.Command{
	Use:   "write [dir]",
	Short: "Write every example dataset as CSV",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "examples"
		if len(args) == 1 {
			dir = args[0]
		}
		paths, err := sampledata.WriteAll(dir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	exampleShowCmd.Flags().IntVar(&exampleRows, "rows", 20, "Rows to show (0 = all)")
	exampleCmd.AddCommand(exampleListCmd, exampleShowCmd, exampleWriteCmd)
}
