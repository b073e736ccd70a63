// Package query is the single implementation of product filtering, sorting,
// pagination, search scoring and statistical rollups. Every product and report
// endpoint shapes its data through it.
package query

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"go-stock-tracker/internal/model"
	"go-stock-tracker/pkg/apperror"
)

const (
	// ValueAll disables a category or stock status criterion.
	ValueAll = "all"
	// StockAvailable matches in-stock and low-stock products.
	StockAvailable = "available"

	MinSearchLength = 2
)

// Params is a flat bag of query-string values.
type Params map[string]string

func (p Params) Get(key string) string {
	return strings.TrimSpace(p[key])
}

// Criteria selects active products. Empty fields are ignored.
type Criteria struct {
	Category    string   `json:"category,omitempty"`
	StockStatus string   `json:"stockStatus,omitempty"`
	MinPrice    *float64 `json:"minPrice,omitempty"`
	MaxPrice    *float64 `json:"maxPrice,omitempty"`
	Supplier    string   `json:"supplier,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Barcode     string   `json:"barcode,omitempty"`
	Search      string   `json:"search,omitempty"`
}

// ParseCriteria reads the recognized criteria from params. Malformed numeric
// bounds are dropped; a search term shorter than two characters is rejected.
func ParseCriteria(params Params) (Criteria, error) {
	c := Criteria{
		Supplier: params.Get("supplier"),
		Barcode:  params.Get("barcode"),
		Search:   params.Get("search"),
		MinPrice: parsePrice(params.Get("minPrice")),
		MaxPrice: parsePrice(params.Get("maxPrice")),
		Tags:     splitList(params.Get("tags")),
	}
	if v := params.Get("category"); v != ValueAll {
		c.Category = v
	}
	if v := params.Get("stockStatus"); v != ValueAll {
		c.StockStatus = v
	}
	if err := ValidateSearchTerm(c.Search, false); err != nil {
		return Criteria{}, err
	}
	return c, nil
}

// ValidateSearchTerm enforces the minimum search length. An empty term is
// accepted only when required is false.
func ValidateSearchTerm(term string, required bool) error {
	n := utf8.RuneCountInString(term)
	if n == 0 && !required {
		return nil
	}
	if n < MinSearchLength {
		return apperror.Validation("search term must be at least 2 characters", map[string]string{
			"search": "must be at least 2 characters",
		})
	}
	return nil
}

func parsePrice(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Match reports whether p is active and satisfies every criterion.
func (c Criteria) Match(p *model.Product) bool {
	if !p.IsActive() {
		return false
	}
	if c.Category != "" && string(p.Category) != c.Category {
		return false
	}
	if !c.matchStock(p.StockStatus) {
		return false
	}
	if c.MinPrice != nil && p.SalePrice < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && p.SalePrice > *c.MaxPrice {
		return false
	}
	if c.Supplier != "" && !containsFold(p.Supplier, c.Supplier) {
		return false
	}
	if len(c.Tags) > 0 && !p.HasAnyTag(c.Tags) {
		return false
	}
	if c.Barcode != "" && (p.Barcode == nil || *p.Barcode != c.Barcode) {
		return false
	}
	if c.Search != "" {
		return containsFold(p.Name, c.Search) ||
			containsFold(p.Code, c.Search) ||
			containsFold(p.Description, c.Search) ||
			containsFold(p.Supplier, c.Search)
	}
	return true
}

func (c Criteria) matchStock(status model.StockStatus) bool {
	switch c.StockStatus {
	case "":
		return true
	case StockAvailable:
		return status == model.StockIn || status == model.StockLow
	default:
		return string(status) == c.StockStatus
	}
}

// Filter returns the matching products in their original order.
func Filter(products []model.Product, c Criteria) []model.Product {
	out := make([]model.Product, 0, len(products))
	for i := range products {
		if c.Match(&products[i]) {
			out = append(out, products[i])
		}
	}
	return out
}

// Active is Filter with no criteria.
func Active(products []model.Product) []model.Product {
	return Filter(products, Criteria{})
}

// Summary describes a filtered product set.
type Summary struct {
	Count           int     `json:"count"`
	TotalValue      float64 `json:"totalValue"`
	AvgPrice        float64 `json:"avgPrice"`
	LowStockCount   int     `json:"lowStockCount"`
	OutOfStockCount int     `json:"outOfStockCount"`
}

// Summarize computes the summary over exactly the given products.
func Summarize(products []model.Product) Summary {
	var value, prices sum
	s := Summary{Count: len(products)}
	for _, p := range products {
		value.Add(p.TotalValue)
		prices.Add(p.SalePrice)
		switch p.StockStatus {
		case model.StockLow:
			s.LowStockCount++
		case model.StockOut:
			s.OutOfStockCount++
		}
	}
	s.TotalValue = Round2(value.Float())
	s.AvgPrice = Average(prices.Float(), len(products))
	return s
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
