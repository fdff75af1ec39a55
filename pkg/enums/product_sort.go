package enums

import (
	"fmt"
	"strings"
)

// ProductSort orders a catalog listing.
type ProductSort string

const (
	ProductSortName      ProductSort = "name"
	ProductSortPriceAsc  ProductSort = "price_asc"
	ProductSortPriceDesc ProductSort = "price_desc"
	ProductSortNewest    ProductSort = "newest"
)

var validProductSorts = []ProductSort{
	ProductSortName,
	ProductSortPriceAsc,
	ProductSortPriceDesc,
	ProductSortNewest,
}

// ProductSortValues lists the accepted raw values.
func ProductSortValues() []string {
	out := make([]string, 0, len(validProductSorts))
	for _, v := range validProductSorts {
		out = append(out, string(v))
	}
	return out
}

// String implements fmt.Stringer.
func (s ProductSort) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductSort.
func (s ProductSort) IsValid() bool {
	for _, candidate := range validProductSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductSort converts raw input into a ProductSort. Empty input selects name.
func ParseProductSort(value string) (ProductSort, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ProductSortName, nil
	}
	for _, candidate := range validProductSorts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product sort %q", value)
}
