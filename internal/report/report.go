// Package report lays out the reconciled inventory as a pivot table:
// batches down the side, ingredients grouped by category across the top.
package report

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/starford/brewstock/internal/inventory"
)

// Level classifies a remaining figure for display.
type Level string

const (
	LevelOK        Level = "ok"
	LevelDepleted  Level = "depleted"
	LevelOverdrawn Level = "overdrawn"
)

// Classify uses the unrounded value: a tiny negative remainder is still
// overdrawn even though it displays as 0.
func Classify(remaining float64) Level {
	switch {
	case remaining < 0:
		return LevelOverdrawn
	case remaining == 0:
		return LevelDepleted
	}
	return LevelOK
}

// Column is one ingredient column.
type Column struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Label     string  `json:"label"`
	Inventory float64 `json:"inventory"`
	Used      float64 `json:"used"`
	Remaining float64 `json:"remaining"`
	Level     Level   `json:"level"`
}

// ColumnGroup is a block of columns sharing a category header.
type ColumnGroup struct {
	Category string   `json:"category"`
	Columns  []Column `json:"columns"`
}

// Row is one batch. Cells follow the flattened column order.
type Row struct {
	BatchNumber int       `json:"batchNo"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	Cells       []float64 `json:"cells"`
}

// Label is the row header shown in tables.
func (r Row) Label() string {
	return strconv.Itoa(r.BatchNumber) + " - " + r.Name
}

// Table is the full pivot for one ingredient kind.
type Table struct {
	Kind         inventory.Kind `json:"kind"`
	Title        string         `json:"title"`
	CategoryName string         `json:"categoryName"`
	Groups       []ColumnGroup  `json:"groups"`
	Rows         []Row          `json:"rows"`
}

// Columns flattens the groups into display order.
func (t Table) Columns() []Column {
	var out []Column
	for _, g := range t.Groups {
		out = append(out, g.Columns...)
	}
	return out
}

// Empty reports whether the table has no columns.
func (t Table) Empty() bool {
	return len(t.Groups) == 0
}

// Build reconciles stock against batches for kind and lays out the table.
func Build(kind inventory.Kind, stock []inventory.RawItem, batches []inventory.RawBatch) Table {
	policy := kind.Policy()
	catalog := inventory.Normalize(kind, stock, inventory.References(batches, kind))
	records := inventory.BatchRecords(batches, kind)
	balances := inventory.ComputeRemaining(catalog.Items(), records, policy)

	t := Table{
		Kind:         kind,
		Title:        kind.Title(),
		CategoryName: kind.CategoryName(),
		Groups:       []ColumnGroup{},
		Rows:         []Row{},
	}

	var order []string
	for _, g := range inventory.GroupByCategory(catalog.Items()) {
		cg := ColumnGroup{Category: g.Category, Columns: make([]Column, 0, len(g.Items))}
		for _, it := range g.Items {
			b, _ := balances.Get(it.ID)
			cg.Columns = append(cg.Columns, Column{
				ID:        it.ID,
				Name:      it.Name,
				Label:     it.Label,
				Inventory: it.Inventory,
				Used:      b.Used,
				Remaining: b.Remaining,
				Level:     Classify(b.Remaining),
			})
			order = append(order, it.ID)
		}
		t.Groups = append(t.Groups, cg)
	}

	for _, rec := range records {
		row := Row{
			BatchNumber: rec.Number,
			Name:        rec.Name,
			Status:      rec.Status,
			Cells:       make([]float64, len(order)),
		}
		for i, id := range order {
			row.Cells[i] = inventory.BatchUsage(rec, id, policy)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// FormatQuantity rounds v to three significant figures and renders it
// without exponent notation.
func FormatQuantity(v float64) string {
	r := inventory.Round3Sig(v)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return strconv.FormatFloat(r, 'f', -1, 64)
	}
	return decimal.NewFromFloat(r).String()
}
