package brewfather

import (
	"encoding/json"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/brewstock/internal/inventory"
)

// The *Doc and *Line types mirror the Brewfather v2 JSON documents. They are
// validated before being converted into inventory records.

type fermentableDoc struct {
	ID        string   `json:"_id"`
	Name      string   `json:"name"`
	Supplier  string   `json:"supplier"`
	Inventory *float64 `json:"inventory"`
}

func (d fermentableDoc) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required),
	)
}

func (d fermentableDoc) raw() inventory.RawItem {
	return inventory.RawItem{
		ID:        d.ID,
		Name:      d.Name,
		Category:  d.Supplier,
		Inventory: d.Inventory,
	}
}

type hopDoc struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Origin    string    `json:"origin"`
	Inventory *float64  `json:"inventory"`
	Alpha     *float64  `json:"alpha"`
	Type      string    `json:"type"`
	Year      yearValue `json:"year"`
	UserNotes string    `json:"userNotes"`
}

func (d hopDoc) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required),
		validation.Field(&d.Alpha, validation.NotNil, validation.Min(0.0)),
	)
}

func (d hopDoc) raw() inventory.RawItem {
	var alpha float64
	if d.Alpha != nil {
		alpha = *d.Alpha
	}
	return inventory.RawItem{
		ID:        d.ID,
		Name:      d.Name,
		Category:  d.Origin,
		Inventory: d.Inventory,
		Alpha:     alpha,
		Type:      d.Type,
		Year:      string(d.Year),
		UserNotes: d.UserNotes,
	}
}

type fermentableLine struct {
	fermentableDoc
	Amount *float64 `json:"amount"`
}

func (l fermentableLine) Validate() error {
	if err := l.fermentableDoc.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&l,
		validation.Field(&l.Amount, validation.NotNil, validation.Min(0.0)),
	)
}

type hopLine struct {
	hopDoc
	Amount *float64 `json:"amount"`
}

func (l hopLine) Validate() error {
	if err := l.hopDoc.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&l,
		validation.Field(&l.Amount, validation.NotNil, validation.Min(0.0)),
	)
}

type styleDoc struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type recipeDoc struct {
	Name         string            `json:"name"`
	Style        *styleDoc         `json:"style"`
	Fermentables []fermentableLine `json:"fermentables"`
	Hops         []hopLine         `json:"hops"`
}

func (r recipeDoc) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Fermentables),
		validation.Field(&r.Hops),
	)
}

type batchDoc struct {
	ID           string     `json:"_id"`
	BatchNo      *int       `json:"batchNo"`
	Status       string     `json:"status"`
	Recipe       *recipeDoc `json:"recipe"`
	MeasuredOg   *float64   `json:"measuredOg"`
	MeasuredFg   *float64   `json:"measuredFg"`
	MeasuredAbv  *float64   `json:"measuredAbv"`
	EstimatedIbu *float64   `json:"estimatedIbu"`
}

func (d batchDoc) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.BatchNo, validation.NotNil),
		validation.Field(&d.Recipe, validation.NotNil),
	)
}

func (d batchDoc) raw() inventory.RawBatch {
	b := inventory.RawBatch{
		Number: *d.BatchNo,
		Name:   d.Recipe.Name,
		Status: d.Status,
	}
	for _, l := range d.Recipe.Fermentables {
		b.Fermentables = append(b.Fermentables, inventory.RawUsage{RawItem: l.raw(), Amount: *l.Amount})
	}
	for _, l := range d.Recipe.Hops {
		b.Hops = append(b.Hops, inventory.RawUsage{RawItem: l.raw(), Amount: *l.Amount})
	}
	return b
}

// yearValue accepts a crop year encoded as a JSON number or string.
// Zero, null and empty all mean "no year".
type yearValue string

func (y *yearValue) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*y = ""
		return nil
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*y = yearValue(strings.TrimSpace(str))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("year: %w", err)
	}
	if f, err := n.Float64(); err == nil && f == 0 {
		*y = ""
		return nil
	}
	*y = yearValue(n.String())
	return nil
}
