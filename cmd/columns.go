package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/yugabyte/chameleon/src/datastore"
	"github.com/yugabyte/chameleon/src/tabular"
	"github.com/yugabyte/chameleon/src/utils"
)

var columnsCmd = &cobra.Command{
	Use:   "columns <input>",
	Short: "List the columns of a CSV or Excel file, to help write a column config",
	Args:  cobra.ExactArgs(1),

	Run: func(cmd *cobra.Command, args []string) {
		err := listColumns(cmd.Context(), args[0], cmd.OutOrStdout())
		if err != nil {
			utils.ErrExit("columns: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}

func listColumns(ctx context.Context, input string, out io.Writer) error {
	format, err := tabular.DetectFormat(input)
	if err != nil {
		return fmt.Errorf("input %s: %w", input, err)
	}
	workbook, err := readInput(ctx, datastore.NewDataStore(input), input, format)
	if err != nil {
		return err
	}

	headerfmt := color.New(color.FgGreen, color.Underline).SprintFunc()
	table := uitable.New()
	table.MaxColWidth = 80
	table.Wrap = true
	table.AddRow(headerfmt("SHEET"), headerfmt("ROWS"), headerfmt("COLUMNS"))
	for _, sheet := range workbook.Sheets {
		table.AddRow(sheet.Name, utils.HumanCount(sheet.NumRows()), strings.Join(sheet.Header, ", "))
	}
	fmt.Fprintln(out, table)

	if len(workbook.Sheets) > 1 {
		fmt.Fprintf(out, "\n%s\n", color.New(color.Bold).Sprint("All columns:"))
	}
	for _, column := range workbook.Columns() {
		fmt.Fprintf(out, "  %s\n", column)
	}
	return nil
}
