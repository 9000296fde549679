package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/syssam/velq/config"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func (a *app) render(cmd *cobra.Command, header table.Row, rows []table.Row) error {
	w := cmd.OutOrStdout()
	if a.cfg.Output == config.OutputCSV {
		return renderCSV(w, header, rows)
	}
	if len(rows) == 0 && a.cfg.Output == config.OutputTable {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	t.AppendRows(rows)
	switch a.cfg.Output {
	case config.OutputMarkdown:
		t.RenderMarkdown()
	default:
		t.Render()
		_, err := fmt.Fprintf(w, "(%d rows)\n", len(rows))
		return err
	}
	return nil
}

// renderCSV writes the rows as RFC 4180 CSV.
func renderCSV(w io.Writer, header table.Row, rows []table.Row) error {
	cw := csv.NewWriter(w)
	record := func(r table.Row) []string {
		out := make([]string, len(r))
		for i, v := range r {
			out[i] = fmt.Sprint(v)
		}
		return out
	}
	if err := cw.Write(record(header)); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func joinTitles(titles []string) string {
	return strings.Join(titles, ", ")
}
