package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/chameleon/src/anon"
	"github.com/yugabyte/chameleon/src/config"
)

var errMappingAborted = errors.New("input ended before every column was mapped")

// builtin types are offered first, in this order; custom registrations follow
var preferredTypeOrder = []anon.ColumnType{
	anon.FIRST_NAME, anon.LAST_NAME, anon.FULL_NAME, anon.FULL_NAME_INVERTED,
	anon.EMAIL, anon.ID, anon.MISC,
}

// mappableTypes lists the choices offered per column, ending with skip.
func mappableTypes(registry *anon.Registry) []string {
	registered := registry.Types()
	ordered := lo.Filter(preferredTypeOrder, func(t anon.ColumnType, _ int) bool {
		return lo.Contains(registered, t)
	})
	ordered = append(ordered, lo.Without(registered, preferredTypeOrder...)...)
	choices := lo.Map(ordered, func(t anon.ColumnType, _ int) string { return string(t) })
	return append(choices, config.SKIP)
}

type columnMapper struct {
	columns []string
	choices []string
	in      *bufio.Reader
	out     io.Writer
}

func newColumnMapper(columns []string, registry *anon.Registry, in *bufio.Reader, out io.Writer) *columnMapper {
	return &columnMapper{
		columns: columns,
		choices: mappableTypes(registry),
		in:      in,
		out:     out,
	}
}

// run asks for the type of every column. An empty answer skips the column;
// invalid answers are asked again.
func (m *columnMapper) run() (map[string]string, error) {
	mapping := make(map[string]string, len(m.columns))

	fmt.Fprintln(m.out, color.New(color.Bold).Sprint("Available column types:"))
	for i, choice := range m.choices {
		fmt.Fprintf(m.out, "  %d. %s\n", i+1, choice)
	}
	fmt.Fprintln(m.out)

	for _, column := range m.columns {
		for {
			fmt.Fprintf(m.out, "Type for column %s [number or name, empty to skip]: ", color.CyanString("%q", column))
			answer, err := readAnswer(m.in)
			if err != nil {
				return nil, err
			}
			choice, ok := m.parseChoice(answer)
			if !ok {
				fmt.Fprintf(m.out, "%s %q, choose 1-%d or a type name\n", color.RedString("invalid choice"), answer, len(m.choices))
				continue
			}
			mapping[column] = choice
			log.Infof("interactive mapping: column %q -> %s", column, choice)
			break
		}
	}
	return mapping, nil
}

func (m *columnMapper) parseChoice(answer string) (string, bool) {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return config.SKIP, true
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(m.choices) {
			return "", false
		}
		return m.choices[n-1], true
	}
	return answer, lo.Contains(m.choices, answer)
}

// readAnswer returns a line of input. A final line without a newline counts.
func readAnswer(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		if errors.Is(err, io.EOF) {
			return "", errMappingAborted
		}
		return "", err
	}
	return line, nil
}

func printColumnMapping(out io.Writer, mapping map[string]string) {
	headerfmt := color.New(color.FgGreen, color.Underline).SprintFunc()
	table := uitable.New()
	table.AddRow(headerfmt("COLUMN"), headerfmt("TYPE"))
	columns := lo.Keys(mapping)
	sort.Strings(columns)
	for _, column := range columns {
		columnType := mapping[column]
		if columnType == config.SKIP {
			columnType = color.YellowString(columnType)
		}
		table.AddRow(column, columnType)
	}
	fmt.Fprintln(out, table)
}
