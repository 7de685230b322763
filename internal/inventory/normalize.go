package inventory

import "math"

// Catalog is an insertion-ordered set of canonical items keyed by ID.
type Catalog struct {
	items []CanonicalItem
	index map[string]int
}

func newCatalog(capacity int) *Catalog {
	return &Catalog{
		items: make([]CanonicalItem, 0, capacity),
		index: make(map[string]int, capacity),
	}
}

// put replaces an existing entry in place or appends a new one.
func (c *Catalog) put(it CanonicalItem) {
	if i, ok := c.index[it.ID]; ok {
		c.items[i] = it
		return
	}
	c.index[it.ID] = len(c.items)
	c.items = append(c.items, it)
}

// Items returns the items in first-seen order.
func (c *Catalog) Items() []CanonicalItem {
	out := make([]CanonicalItem, len(c.items))
	copy(out, c.items)
	return out
}

// Get looks an item up by ID.
func (c *Catalog) Get(id string) (CanonicalItem, bool) {
	i, ok := c.index[id]
	if !ok {
		return CanonicalItem{}, false
	}
	return c.items[i], true
}

// Has reports whether id is present.
func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Normalize merges the inventory listing with every batch reference.
// Inventory records are seeded first; a batch reference is added with zero
// inventory only when its ID has not been seen, so it never overwrites a
// stocked item.
func Normalize(kind Kind, stock []RawItem, refs []RawItem) *Catalog {
	c := newCatalog(len(stock) + len(refs))
	for _, it := range stock {
		c.put(canonical(kind, it, quantity(it.Inventory)))
	}
	for _, ref := range refs {
		if c.Has(ref.ID) {
			continue
		}
		c.put(canonical(kind, ref, 0))
	}
	return c
}

func canonical(kind Kind, it RawItem, qty float64) CanonicalItem {
	category := it.Category
	if category == "" {
		category = UnknownCategory
	}
	return CanonicalItem{
		ID:        it.ID,
		Name:      it.Name,
		Label:     labelFor(kind, it),
		Category:  category,
		Inventory: qty,
	}
}

// quantity treats absent and NaN as zero.
func quantity(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	return *v
}
