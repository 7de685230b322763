package brewfather

import "math"

// BatchDetail summarizes a brewed batch.
type BatchDetail struct {
	ID              string   `json:"id"`
	Number          int      `json:"batchNo"`
	Name            string   `json:"name"`
	Status          string   `json:"status"`
	Style           string   `json:"style"`
	OriginalGravity *float64 `json:"originalGravity,omitempty"`
	FinalGravity    *float64 `json:"finalGravity,omitempty"`
	ABV             *float64 `json:"abv,omitempty"`
	IBU             *float64 `json:"ibu,omitempty"`
}

func newBatchDetail(id string, d batchDoc) *BatchDetail {
	out := &BatchDetail{
		ID:              id,
		Number:          *d.BatchNo,
		Name:            d.Recipe.Name,
		Status:          d.Status,
		OriginalGravity: platoOf(d.MeasuredOg),
		FinalGravity:    platoOf(d.MeasuredFg),
		ABV:             d.MeasuredAbv,
		IBU:             d.EstimatedIbu,
	}
	if d.Recipe.Style != nil {
		out.Style = d.Recipe.Style.Type
	}
	return out
}

// Plato converts specific gravity to degrees Plato, rounded to one decimal.
func Plato(sg float64) float64 {
	return math.Floor((260.4-260.4/sg)*10+0.5) / 10
}

func platoOf(sg *float64) *float64 {
	if sg == nil || *sg == 0 {
		return nil
	}
	p := Plato(*sg)
	return &p
}
