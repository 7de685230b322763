package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/starford/brewstock/internal/inventory"
	"github.com/starford/brewstock/internal/report"
)

// WriteWorkbook writes one sheet per table. Numbers are stored rounded to
// three significant figures; remaining figures are colored by level.
func WriteWorkbook(w io.Writer, tables ...report.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	defaultSheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i, t := range tables {
		name := t.Title
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("xlsx: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("xlsx: new sheet: %w", err)
		}
		if err := writeSheet(f, name, t, styles); err != nil {
			return fmt.Errorf("xlsx: sheet %s: %w", name, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

type sheetStyles struct {
	header    int
	overdrawn int
	depleted  int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, fmt.Errorf("xlsx: header style: %w", err)
	}
	if s.overdrawn, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "DC2626"},
	}); err != nil {
		return s, fmt.Errorf("xlsx: overdrawn style: %w", err)
	}
	if s.depleted, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "16A34A"},
	}); err != nil {
		return s, fmt.Errorf("xlsx: depleted style: %w", err)
	}
	return s, nil
}

func writeSheet(f *excelize.File, sheet string, t report.Table, st sheetStyles) error {
	if err := f.SetCellValue(sheet, "A1", "Batch"); err != nil {
		return err
	}
	if t.Empty() {
		return nil
	}

	// Row 1: category headers merged over their columns. Row 2: item labels.
	col := 2
	for _, g := range t.Groups {
		first, err := excelize.CoordinatesToCellName(col, 1)
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(col+len(g.Columns)-1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, first, g.Category); err != nil {
			return err
		}
		if len(g.Columns) > 1 {
			if err := f.MergeCell(sheet, first, last); err != nil {
				return err
			}
		}
		col += len(g.Columns)
	}

	cols := t.Columns()
	labels := make([]any, 0, len(cols)+1)
	labels = append(labels, "")
	for _, c := range cols {
		labels = append(labels, c.Label)
	}
	if err := f.SetSheetRow(sheet, "A2", &labels); err != nil {
		return err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(cols)+1, 2)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, st.header); err != nil {
		return err
	}

	row := 3
	inv := []any{"Current Inventory"}
	for _, c := range cols {
		inv = append(inv, inventory.Round3Sig(c.Inventory))
	}
	if err := setRow(f, sheet, row, inv); err != nil {
		return err
	}
	row++

	for _, r := range t.Rows {
		line := []any{r.Label()}
		for _, v := range r.Cells {
			line = append(line, inventory.Round3Sig(v))
		}
		if err := setRow(f, sheet, row, line); err != nil {
			return err
		}
		row++
	}

	rem := []any{"Remaining Inventory"}
	for _, c := range cols {
		rem = append(rem, inventory.Round3Sig(c.Remaining))
	}
	if err := setRow(f, sheet, row, rem); err != nil {
		return err
	}
	for i, c := range cols {
		style := 0
		switch c.Level {
		case report.LevelOverdrawn:
			style = st.overdrawn
		case report.LevelDepleted:
			style = st.depleted
		default:
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+2, row)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
