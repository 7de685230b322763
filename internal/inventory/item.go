package inventory

import (
	"strconv"
)

// UnknownCategory is used when the source record carries no supplier or origin.
const UnknownCategory = "Unknown"

// RawItem is an ingredient record as delivered by the remote source, after
// boundary validation.
type RawItem struct {
	ID        string
	Name      string
	Category  string
	Inventory *float64
	Alpha     float64
	Type      string
	Year      string
	UserNotes string
}

// RawUsage is an ingredient line inside a batch recipe.
type RawUsage struct {
	RawItem
	Amount float64
}

// RawBatch is a batch with both ingredient lists.
type RawBatch struct {
	Number       int
	Name         string
	Status       string
	Fermentables []RawUsage
	Hops         []RawUsage
}

// Usages returns the ingredient list for kind.
func (b RawBatch) Usages(kind Kind) []RawUsage {
	if kind == KindHops {
		return b.Hops
	}
	return b.Fermentables
}

// CanonicalItem is the merged representation of one ingredient.
type CanonicalItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Label     string  `json:"label"`
	Category  string  `json:"category"`
	Inventory float64 `json:"inventory"`
}

// Usage is one (item, amount) entry of a batch.
type Usage struct {
	ItemID string
	Amount float64
}

// BatchRecord is a batch reduced to the usages of a single kind.
type BatchRecord struct {
	Number int
	Name   string
	Status string
	Usages []Usage
}

// BatchRecords projects raw batches onto the usages of kind, keeping order.
func BatchRecords(batches []RawBatch, kind Kind) []BatchRecord {
	out := make([]BatchRecord, 0, len(batches))
	for _, b := range batches {
		lines := b.Usages(kind)
		usages := make([]Usage, 0, len(lines))
		for _, u := range lines {
			usages = append(usages, Usage{ItemID: u.ID, Amount: u.Amount})
		}
		out = append(out, BatchRecord{
			Number: b.Number,
			Name:   b.Name,
			Status: b.Status,
			Usages: usages,
		})
	}
	return out
}

// References flattens every ingredient of kind referenced by any batch,
// in batch order then recipe order.
func References(batches []RawBatch, kind Kind) []RawItem {
	var out []RawItem
	for _, b := range batches {
		for _, u := range b.Usages(kind) {
			out = append(out, u.RawItem)
		}
	}
	return out
}

// HopLabel builds the display label of a hop. Absent optional fields leave
// an empty segment behind; the spacing is not collapsed.
func HopLabel(it RawItem) string {
	name := it.Name
	if it.Type == "Cryo" {
		name += " (Cryo)"
	}
	notes := ""
	if it.UserNotes != "" {
		notes = "(" + it.UserNotes + ")"
	}
	return name + " " + strconv.FormatFloat(it.Alpha, 'f', -1, 64) + "% " + it.Year + " " + notes
}

func labelFor(kind Kind, it RawItem) string {
	if kind == KindHops {
		return HopLabel(it)
	}
	return it.Name
}
