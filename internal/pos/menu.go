package pos

import (
	"sort"
	"strings"

	"foodtruck/pos/domain"
)

// CategoryAll selects every category.
const CategoryAll = "all"

// FilterByCategory returns the available products of a category ordered for display.
func FilterByCategory(products []domain.Product, category string) []domain.Product {
	category = strings.TrimSpace(category)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !p.Available {
			continue
		}
		if category != "" && !strings.EqualFold(category, CategoryAll) && !strings.EqualFold(p.Category, category) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Categories lists the distinct categories of available products in display order.
func Categories(products []domain.Product) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range FilterByCategory(products, CategoryAll) {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}
