package catalog

import (
	"slices"
	"sort"
	"strings"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/enums"
)

// CategoryAll matches every category.
const CategoryAll = "all"

// Query narrows and orders a listing.
type Query struct {
	Search   string
	Category string
	Sort     enums.ProductSort
}

// Filter returns the products matching q in the requested order. The input
// slice is left untouched and ties keep their incoming order.
func Filter(products []ProductDTO, q Query) []ProductDTO {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	category := strings.TrimSpace(q.Category)

	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		if category != "" && !strings.EqualFold(category, CategoryAll) && p.Category != category {
			continue
		}
		if needle != "" && !matchesSearch(p, needle) {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case enums.ProductSortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case enums.ProductSortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case enums.ProductSortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}
	return out
}

func matchesSearch(p ProductDTO, needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(p.Category), needle)
}

// Categories returns the distinct, sorted categories of products.
func Categories(products []ProductDTO) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0)
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	slices.Sort(out)
	return out
}
