package inventory

// UsagePolicy decides how repeated entries of one item inside a batch count.
type UsagePolicy int

const (
	// FirstMatch takes the amount of the first matching entry only.
	FirstMatch UsagePolicy = iota
	// SumAll adds up every matching entry.
	SumAll
)

// BatchUsage returns how much of item id batch b uses under policy p.
func BatchUsage(b BatchRecord, id string, p UsagePolicy) float64 {
	total := 0.0
	for _, u := range b.Usages {
		if u.ItemID != id {
			continue
		}
		if p == FirstMatch {
			return u.Amount
		}
		total += u.Amount
	}
	return total
}

// Balance is the reconciled stock of one item.
type Balance struct {
	ItemID    string  `json:"id"`
	Inventory float64 `json:"inventory"`
	Used      float64 `json:"used"`
	Remaining float64 `json:"remaining"`
}

// Reconciliation holds balances in item order with an ID index.
type Reconciliation struct {
	balances []Balance
	index    map[string]int
}

// Balances returns the balances in item order.
func (r Reconciliation) Balances() []Balance {
	out := make([]Balance, len(r.balances))
	copy(out, r.balances)
	return out
}

// Get returns the balance of id.
func (r Reconciliation) Get(id string) (Balance, bool) {
	i, ok := r.index[id]
	if !ok {
		return Balance{}, false
	}
	return r.balances[i], true
}

// Len returns the number of balances.
func (r Reconciliation) Len() int {
	return len(r.balances)
}

// ComputeRemaining sums usage across all batches and subtracts it from the
// inventory of each item. Remaining may be negative.
func ComputeRemaining(items []CanonicalItem, batches []BatchRecord, p UsagePolicy) Reconciliation {
	r := Reconciliation{
		balances: make([]Balance, 0, len(items)),
		index:    make(map[string]int, len(items)),
	}
	for _, it := range items {
		used := 0.0
		for _, b := range batches {
			used += BatchUsage(b, it.ID, p)
		}
		r.index[it.ID] = len(r.balances)
		r.balances = append(r.balances, Balance{
			ItemID:    it.ID,
			Inventory: it.Inventory,
			Used:      used,
			Remaining: it.Inventory - used,
		})
	}
	return r
}
