package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/yugabyte/chameleon/src/metadb"
	"github.com/yugabyte/chameleon/src/utils"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the anonymize runs recorded in a state dir",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the anonymize runs recorded in --state-dir",
	Args:  cobra.NoArgs,

	Run: func(cmd *cobra.Command, args []string) {
		if stateDir == "" {
			utils.ErrExit("runs list: --state-dir is required")
		}
		err := listRuns(stateDir, cmd.OutOrStdout())
		if err != nil {
			utils.ErrExit("runs list: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	registerStateDirFlag(runsListCmd)
}

func listRuns(dir string, out io.Writer) error {
	if !utils.FileOrFolderExists(metadb.GetMetaDBPath(dir)) {
		fmt.Fprintf(out, "No runs recorded in %s\n", dir)
		return nil
	}
	m, err := metadb.NewMetaDB(dir)
	if err != nil {
		return err
	}
	defer m.Close()

	runs, err := m.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(out, "No runs recorded in %s\n", dir)
		return nil
	}

	headerfmt := color.New(color.FgGreen, color.Underline).SprintFunc()
	table := uitable.New()
	table.AddRow(headerfmt("RUN ID"), headerfmt("STARTED"), headerfmt("DURATION"), headerfmt("STATUS"),
		headerfmt("ROWS"), headerfmt("LOCALE"), headerfmt("SALT"), headerfmt("INPUT"), headerfmt("OUTPUT"))
	for _, r := range runs {
		duration := "-"
		if !r.FinishedAt.IsZero() {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		table.AddRow(r.RunId, r.StartedAt.Format(time.DateTime), duration, colorStatus(r.Status),
			utils.HumanCount(int(r.RowsProcessed)), r.Locale, r.SaltFingerprint, r.Input, r.Output)
	}
	fmt.Fprintln(out, table)
	return nil
}

func colorStatus(status string) string {
	switch status {
	case metadb.RUN_STATUS_COMPLETED:
		return color.GreenString(status)
	case metadb.RUN_STATUS_FAILED:
		return color.RedString(status)
	default:
		return color.YellowString(status)
	}
}
