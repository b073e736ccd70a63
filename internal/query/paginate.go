package query

import (
	"strconv"
	"strings"

	"go-stock-tracker/internal/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 1000
	maxPage      = 1_000_000
)

type Page struct {
	Number int
	Limit  int
}

// ParsePage falls back to page 1 / limit 50 for missing or non-positive input.
func ParsePage(page, limit string) Page {
	return Page{
		Number: min(positiveOr(page, DefaultPage), maxPage),
		Limit:  min(positiveOr(limit, DefaultLimit), MaxLimit),
	}
}

func positiveOr(raw string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

type Pagination struct {
	Current int  `json:"current"`
	Pages   int  `json:"pages"`
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

// Paginate slices one page. A page past the end yields an empty, non-nil slice.
func Paginate(products []model.Product, page Page) ([]model.Product, Pagination) {
	total := len(products)
	meta := Pagination{
		Current: page.Number,
		Pages:   (total + page.Limit - 1) / page.Limit,
		Total:   total,
		Limit:   page.Limit,
		HasNext: page.Number*page.Limit < total,
		HasPrev: page.Number > 1,
	}

	start := (page.Number - 1) * page.Limit
	if start >= total {
		return []model.Product{}, meta
	}
	end := min(start+page.Limit, total)
	return products[start:end], meta
}
