/*
Copyright (c) YugabyteDB, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"

	"github.com/yugabyte/chameleon/src/anon"
	"github.com/yugabyte/chameleon/src/config"
	"github.com/yugabyte/chameleon/src/datastore"
	"github.com/yugabyte/chameleon/src/metadb"
	"github.com/yugabyte/chameleon/src/pbreporter"
	"github.com/yugabyte/chameleon/src/tabular"
	"github.com/yugabyte/chameleon/src/utils"
	"github.com/yugabyte/chameleon/src/utils/jsonfile"
)

var (
	columnConfigFile string
	interactiveMode  bool
	saltHex          string
	localeFlag       string
	showSalt         bool
	reuseSalt        bool
	disablePb        bool
	parallelJobs     int
	saveConfigPath   string
)

// column types available to anonymize; tests may register extra types here
var columnTypeRegistry = anon.DefaultRegistry()

var anonymizeCmd = &cobra.Command{
	Use:   "anonymize <input> <output>",
	Short: "Replace names, emails and identifiers in a CSV or Excel file with consistent synthetic values",
	Long: `Anonymize the configured columns of <input> and write the result to <output>.
Inputs and outputs may be local paths or s3://, gs:// and azblob:// URLs.

Columns are mapped to types with --config FILE or interactively with --interactive.
Supported types: first_name, last_name, full_name, full_name_inverted, email, id, misc.
Running twice with the same salt (--salt, or --reuse-salt with a --state-dir) yields identical output.`,
	Args: cobra.ExactArgs(2),

	PreRun: func(cmd *cobra.Command, args []string) {
		err := validateAnonymizeFlags()
		if err != nil {
			utils.ErrExit("%v", err)
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		err := anonymize(cmd.Context(), args[0], args[1], cmd.OutOrStdout())
		if err != nil {
			utils.ErrExit("anonymize: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(anonymizeCmd)
	registerStateDirFlag(anonymizeCmd)

	f := anonymizeCmd.Flags()
	f.StringVarP(&columnConfigFile, "config", "c", "",
		"column config file (.json or .yaml) mapping column names to types")
	f.BoolVarP(&interactiveMode, "interactive", "i", false,
		"map the columns of the input to types interactively")
	f.StringVar(&saltHex, "salt", "",
		"hex encoded salt; a random one is generated when not given")
	f.StringVar(&localeFlag, "locale", "",
		fmt.Sprintf("locale of the synthetic names, overrides the config file (default %s)", anon.DEFAULT_LOCALE))
	f.BoolVar(&showSalt, "show-salt", false,
		"print the salt used, needed to reproduce this run")
	f.BoolVar(&reuseSalt, "reuse-salt", false,
		"use the salt stored in --state-dir, creating it on first use")
	f.BoolVar(&disablePb, "disable-pb", false,
		"disable progress bars during anonymization (default false)")
	f.IntVar(&parallelJobs, "parallel-jobs", 1,
		"workers for id and misc columns")
	f.StringVar(&saveConfigPath, "save-config", "",
		"save the resolved column config to this file for later runs")

	anonymizeCmd.MarkFlagsMutuallyExclusive("config", "interactive")
	anonymizeCmd.MarkFlagsMutuallyExclusive("salt", "reuse-salt")
}

func validateAnonymizeFlags() error {
	if columnConfigFile == "" && !interactiveMode {
		return fmt.Errorf("either --config or --interactive is required")
	}
	if reuseSalt && stateDir == "" {
		return fmt.Errorf("--reuse-salt needs --state-dir")
	}
	if saltHex != "" && reuseSalt {
		return fmt.Errorf("--salt and --reuse-salt cannot be used together")
	}
	if parallelJobs < 1 {
		return fmt.Errorf("--parallel-jobs must be at least 1, got %d", parallelJobs)
	}
	return nil
}

// anonymizeSettings is what a run resolved to, for the debug log. It never
// holds the salt.
type anonymizeSettings struct {
	Input            string
	Output           string
	InputFormat      tabular.Format
	OutputFormat     tabular.Format
	ColumnConfigFile string
	Interactive      bool
	Locale           string
	StateDir         string
	ReuseSalt        bool
	SaltGiven        bool
	ParallelJobs     int
	DisablePb        bool
}

func anonymize(ctx context.Context, input string, output string, out io.Writer) error {
	if input == output {
		return fmt.Errorf("input and output are the same file: %s", input)
	}
	inputFormat, err := tabular.DetectFormat(input)
	if err != nil {
		return fmt.Errorf("input %s: %w", input, err)
	}
	outputFormat, err := tabular.DetectFormat(output)
	if err != nil {
		return fmt.Errorf("output %s: %w", output, err)
	}

	var salt []byte
	if saltHex != "" {
		salt, err = anon.ParseSaltHex(saltHex)
		if err != nil {
			return fmt.Errorf("--salt: %w", err)
		}
	}

	var columnCfg *config.ColumnConfigFile
	if columnConfigFile != "" {
		columnCfg, err = config.LoadColumnConfig(columnConfigFile)
		if err != nil {
			return err
		}
	}

	var state *stateDirHandle
	if stateDir != "" {
		state, err = openStateDir(stateDir, "anonymize")
		if err != nil {
			return err
		}
		defer state.Close()
		if reuseSalt {
			salt, err = metadb.LoadOrCreateSalt(state.metaDB)
			if err != nil {
				return err
			}
		}
	}

	inStore := datastore.NewDataStore(input)
	var workbook *tabular.Workbook
	if columnCfg == nil {
		// interactive: the columns to map come from the input itself
		workbook, err = readInput(ctx, inStore, input, inputFormat)
		if err != nil {
			return err
		}
		columnCfg, err = mapColumnsInteractively(workbook.Columns(), out)
		if err != nil {
			return err
		}
	}

	locale := localeFlag
	if locale == "" {
		locale = columnCfg.Locale
	}
	anonymizer, err := anon.NewTableAnonymizer(anon.Config{
		ColumnConfig: columnCfg.Columns(),
		Salt:         salt,
		Locale:       locale,
		Registry:     columnTypeRegistry,
		ParallelJobs: parallelJobs,
	})
	if err != nil {
		return err
	}

	if saveConfigPath != "" {
		saved := &config.ColumnConfigFile{ColumnConfig: columnCfg.ColumnConfig, Locale: anonymizer.Locale()}
		err = config.SaveColumnConfig(saveConfigPath, saved)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Column config saved to %s\n", color.GreenString(saveConfigPath))
	}

	if workbook == nil {
		workbook, err = readInput(ctx, inStore, input, inputFormat)
		if err != nil {
			return err
		}
	}
	if outputFormat == tabular.CSV && len(workbook.Sheets) != 1 {
		return fmt.Errorf("input has %d sheets, a csv output holds exactly one; write to .xlsx instead", len(workbook.Sheets))
	}

	if config.IsLogLevelDebugOrBelow() {
		log.Debugf("anonymize settings:\n%s", spew.Sdump(anonymizeSettings{
			Input:            input,
			Output:           output,
			InputFormat:      inputFormat,
			OutputFormat:     outputFormat,
			ColumnConfigFile: columnConfigFile,
			Interactive:      interactiveMode,
			Locale:           anonymizer.Locale(),
			StateDir:         stateDir,
			ReuseSalt:        reuseSalt,
			SaltGiven:        saltHex != "",
			ParallelJobs:     parallelJobs,
			DisablePb:        disablePb,
		}))
	}

	outStore := datastore.NewDataStore(output)
	exists, err := outStore.Exists(ctx, output)
	if err != nil {
		return fmt.Errorf("check output %s: %w", output, err)
	}
	if exists && !utils.AskPrompt("Output file", output, "already exists. Overwrite it") {
		return fmt.Errorf("output %s already exists", output)
	}

	printColumnMapping(out, columnCfg.ColumnConfig)

	report := &RunReport{
		Input:           input,
		Output:          output,
		Locale:          anonymizer.Locale(),
		SaltFingerprint: anonymizer.SaltFingerprint(),
		StartedAt:       time.Now(),
	}
	run := &metadb.RunRecord{
		StartedAt:       report.StartedAt,
		Input:           input,
		Output:          output,
		Locale:          report.Locale,
		SaltFingerprint: report.SaltFingerprint,
		ColumnConfig:    columnCfg.ColumnConfig,
	}
	if state != nil {
		err = state.metaDB.StartRun(run)
		if err != nil {
			return err
		}
		report.RunId = run.RunId
		runDone := state.trackRun(run.RunId)
		defer runDone()
	}

	result := anonymizeWorkbook(anonymizer, workbook)
	err = writeOutput(ctx, outStore, output, result, outputFormat)

	report.FinishedAt = time.Now()
	report.Sheets = sheetReports(anonymizer, result)
	report.Identities = anonymizer.IdentityStats()
	report.Status = metadb.RUN_STATUS_COMPLETED
	if err != nil {
		report.Status = metadb.RUN_STATUS_FAILED
		report.Error = err.Error()
	}
	if state != nil {
		rows := int64(result.NumRows())
		if ferr := state.metaDB.FinishRun(run.RunId, report.Status, rows); ferr != nil {
			log.Errorf("record run %s: %v", run.RunId, ferr)
		}
		reportPath := state.reportPath(run.RunId)
		if rerr := jsonfile.NewJsonFile[RunReport](reportPath).Create(report); rerr != nil {
			log.Errorf("write run report %s: %v", reportPath, rerr)
		} else {
			log.Infof("run report written to %s", reportPath)
		}
	}
	if err != nil {
		return err
	}

	printRunSummary(out, report, anonymizer.SaltHex())
	return nil
}

func readInput(ctx context.Context, store datastore.Datastore, input string, format tabular.Format) (*tabular.Workbook, error) {
	exists, err := store.Exists(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("check input %s: %w", input, err)
	}
	if !exists {
		return nil, fmt.Errorf("input %s does not exist", input)
	}
	if size, err := store.Size(ctx, input); err == nil {
		log.Infof("reading %s (%s)", input, utils.HumanBytes(size))
	}

	r, err := store.Open(ctx, input)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return tabular.ReadWorkbook(r, format, tabular.SheetName(input))
}

func mapColumnsInteractively(columns []string, out io.Writer) (*config.ColumnConfigFile, error) {
	if !utils.IsPromptInputInjected() && !utils.IsStdinTerminal() {
		return nil, fmt.Errorf("--interactive needs a terminal")
	}
	mapping, err := newColumnMapper(columns, columnTypeRegistry, utils.PromptInput(), out).run()
	if err != nil {
		return nil, err
	}
	return config.NewColumnConfig(mapping, "")
}

// anonymizeWorkbook runs the anonymizer with a progress bar per sheet.
func anonymizeWorkbook(anonymizer *anon.TableAnonymizer, workbook *tabular.Workbook) *tabular.Workbook {
	var progress *mpb.Progress
	if !disablePb && utils.IsStdoutTerminal() {
		progress = mpb.New(mpb.WithOutput(os.Stdout))
	}

	reporters := make(map[string]pbreporter.ProgressReporter, len(workbook.Sheets))
	for _, sheet := range workbook.Sheets {
		pb := pbreporter.NewSheetPB(progress, sheet.Name, progress == nil)
		pb.SetTotalCellCount(int64(len(anonymizedColumns(anonymizer, sheet))*sheet.NumRows()), false)
		reporters[sheet.Name] = pb
	}
	anonymizer.SetProgressFunc(func(table string, column string, cells int) {
		if pb, ok := reporters[table]; ok {
			pb.IncrProcessedCellCount(int64(cells))
		}
	})

	result := anonymizer.AnonymizeWorkbook(workbook)

	for _, pb := range reporters {
		pb.SetTotalCellCount(-1, true)
	}
	if progress != nil {
		progress.Wait()
	}
	return result
}

// writeOutput leaves no partial output behind: a failed write discards what
// was written, and an existing output file stays as it was.
func writeOutput(ctx context.Context, store datastore.Datastore, output string, w *tabular.Workbook, format tabular.Format) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	f, err := store.Create(ctx, output)
	if err != nil {
		return fmt.Errorf("create output %s: %w", output, err)
	}
	err = tabular.WriteWorkbook(f, w, format)
	if err != nil {
		cancel()
		f.Close()
		return err
	}
	err = f.Close()
	if err != nil {
		return fmt.Errorf("close output %s: %w", output, err)
	}
	log.Infof("wrote %d sheets to %s", len(w.Sheets), output)
	return nil
}

func anonymizedColumns(anonymizer *anon.TableAnonymizer, t *tabular.Table) []string {
	return lo.Filter(t.Header, func(column string, _ int) bool {
		_, ok := anonymizer.Handler(column)
		return ok
	})
}

// RunReport is written to <state-dir>/reports/<run-id>.json.
type RunReport struct {
	RunId           string             `json:"run_id,omitempty"`
	Input           string             `json:"input"`
	Output          string             `json:"output"`
	Locale          string             `json:"locale"`
	SaltFingerprint string             `json:"salt_fingerprint"`
	Status          string             `json:"status"`
	Error           string             `json:"error,omitempty"`
	StartedAt       time.Time          `json:"started_at"`
	FinishedAt      time.Time          `json:"finished_at"`
	Sheets          []SheetReport      `json:"sheets"`
	Identities      anon.IdentityStats `json:"identities"`
}

type SheetReport struct {
	Name               string   `json:"name"`
	Rows               int      `json:"rows"`
	AnonymizedColumns  []string `json:"anonymized_columns"`
	PassthroughColumns []string `json:"passthrough_columns"`
}

func sheetReports(anonymizer *anon.TableAnonymizer, w *tabular.Workbook) []SheetReport {
	return lo.Map(w.Sheets, func(t *tabular.Table, _ int) SheetReport {
		anonymized := anonymizedColumns(anonymizer, t)
		return SheetReport{
			Name:               t.Name,
			Rows:               t.NumRows(),
			AnonymizedColumns:  anonymized,
			PassthroughColumns: lo.Without(t.Header, anonymized...),
		}
	})
}

func printRunSummary(out io.Writer, report *RunReport, saltHex string) {
	headerfmt := color.New(color.FgGreen, color.Underline).SprintFunc()
	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true
	table.AddRow(headerfmt("SHEET"), headerfmt("ROWS"), headerfmt("ANONYMIZED COLUMNS"), headerfmt("UNCHANGED COLUMNS"))
	totalRows := 0
	for _, sheet := range report.Sheets {
		table.AddRow(sheet.Name, utils.HumanCount(sheet.Rows), joinColumns(sheet.AnonymizedColumns), joinColumns(sheet.PassthroughColumns))
		totalRows += sheet.Rows
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, table)
	fmt.Fprintln(out)

	ids := report.Identities
	fmt.Fprintf(out, "Synthetic identities: %s first names (%s suffixed), %s last names (%s suffixed)\n",
		utils.HumanCount(ids.FirstNames), utils.HumanCount(ids.SuffixedFirstNames),
		utils.HumanCount(ids.LastNames), utils.HumanCount(ids.SuffixedLastNames))
	if report.RunId != "" {
		fmt.Fprintf(out, "Run id: %s\n", report.RunId)
	}
	if showSalt {
		fmt.Fprintf(out, "Salt: %s\n", color.YellowString(saltHex))
	} else {
		fmt.Fprintf(out, "Salt fingerprint: %s (use --show-salt to print the salt)\n", report.SaltFingerprint)
	}
	fmt.Fprintf(out, "%s rows anonymized to %s\n", utils.HumanCount(totalRows), color.GreenString(report.Output))
}

func joinColumns(columns []string) string {
	if len(columns) == 0 {
		return "-"
	}
	return strings.Join(columns, ", ")
}
