// Package render turns report tables into text, HTML and XLSX documents.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/starford/brewstock/internal/report"
)

// Markers appended to remaining figures in plain text.
const (
	markOverdrawn = " !"
	markDepleted  = " *"
)

// WriteText writes every table as an aligned plain-text grid.
func WriteText(w io.Writer, tables ...report.Table) error {
	for i, t := range tables {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeTextTable(w, t); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%s overdrawn  %s fully used\n", strings.TrimSpace(markOverdrawn), strings.TrimSpace(markDepleted))
	return err
}

func writeTextTable(w io.Writer, t report.Table) error {
	if _, err := fmt.Fprintf(w, "== %s ==\n", t.Title); err != nil {
		return err
	}
	if t.Empty() {
		_, err := fmt.Fprintln(w, "(no items)")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	cols := t.Columns()

	header := []string{"Batch"}
	for _, g := range t.Groups {
		for i := range g.Columns {
			if i == 0 {
				header = append(header, g.Category)
			} else {
				header = append(header, "")
			}
		}
	}
	writeRow(tw, header)

	labels := []string{""}
	for _, c := range cols {
		labels = append(labels, strings.TrimSpace(c.Label))
	}
	writeRow(tw, labels)

	inv := []string{"Current Inventory"}
	for _, c := range cols {
		inv = append(inv, report.FormatQuantity(c.Inventory))
	}
	writeRow(tw, inv)

	for _, r := range t.Rows {
		line := []string{r.Label()}
		for _, v := range r.Cells {
			line = append(line, report.FormatQuantity(v))
		}
		writeRow(tw, line)
	}

	rem := []string{"Remaining Inventory"}
	for _, c := range cols {
		rem = append(rem, report.FormatQuantity(c.Remaining)+marker(c.Level))
	}
	writeRow(tw, rem)

	return tw.Flush()
}

func writeRow(w io.Writer, cells []string) {
	fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
}

func marker(l report.Level) string {
	switch l {
	case report.LevelOverdrawn:
		return markOverdrawn
	case report.LevelDepleted:
		return markDepleted
	}
	return ""
}
