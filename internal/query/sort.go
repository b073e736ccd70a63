package query

import (
	"cmp"
	"slices"
	"strings"

	"go-stock-tracker/internal/model"
)

const (
	DefaultSortField = "createdAt"
	OrderAsc         = "asc"
	OrderDesc        = "desc"
)

// Sort describes the requested ordering.
type Sort struct {
	Field string `json:"sortBy"`
	Order string `json:"sortOrder"`
}

// ParseSort applies the defaults: createdAt, descending. Any order other
// than "desc" sorts ascending.
func ParseSort(field, order string) Sort {
	s := Sort{Field: strings.TrimSpace(field), Order: OrderDesc}
	if s.Field == "" {
		s.Field = DefaultSortField
	}
	if o := strings.ToLower(strings.TrimSpace(order)); o != "" && o != OrderDesc {
		s.Order = OrderAsc
	}
	return s
}

var comparators = map[string]func(a, b *model.Product) int{
	"code":     func(a, b *model.Product) int { return compareFold(a.Code, b.Code) },
	"name":     func(a, b *model.Product) int { return compareFold(a.Name, b.Name) },
	"category": func(a, b *model.Product) int { return compareFold(string(a.Category), string(b.Category)) },
	"quantity": func(a, b *model.Product) int { return cmp.Compare(a.Quantity, b.Quantity) },
	"salePrice": func(a, b *model.Product) int {
		return cmp.Compare(a.SalePrice, b.SalePrice)
	},
	"totalValue": func(a, b *model.Product) int {
		return cmp.Compare(a.TotalValue, b.TotalValue)
	},
	"stockStatus": func(a, b *model.Product) int {
		return cmp.Compare(a.StockStatus.Severity(), b.StockStatus.Severity())
	},
	"createdAt": func(a, b *model.Product) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

// Sortable reports whether field has a defined ordering.
func Sortable(field string) bool {
	_, ok := comparators[field]
	return ok
}

// Apply orders products in place. Equal keys keep their relative order and
// unknown fields leave the slice untouched.
func (s Sort) Apply(products []model.Product) {
	compare, ok := comparators[s.Field]
	if !ok {
		return
	}
	desc := s.Order == OrderDesc
	slices.SortStableFunc(products, func(a, b model.Product) int {
		if desc {
			return compare(&b, &a)
		}
		return compare(&a, &b)
	})
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
