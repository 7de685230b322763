package inventory

// Group is a category with its items in table-column order.
type Group struct {
	Category string          `json:"category"`
	Items    []CanonicalItem `json:"items"`
}

// GroupByCategory partitions items by category. A category appears at the
// position of its first item and items keep their relative order.
func GroupByCategory(items []CanonicalItem) []Group {
	groups := make([]Group, 0)
	pos := make(map[string]int)
	for _, it := range items {
		i, ok := pos[it.Category]
		if !ok {
			i = len(groups)
			pos[it.Category] = i
			groups = append(groups, Group{Category: it.Category})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}
