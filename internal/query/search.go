package query

import (
	"cmp"
	"slices"
	"strings"

	"go-stock-tracker/internal/model"
)

const (
	SearchFieldName        = "name"
	SearchFieldCode        = "code"
	SearchFieldDescription = "description"
)

var DefaultSearchFields = []string{SearchFieldName, SearchFieldCode, SearchFieldDescription}

// Points awarded per field. An exact hit replaces the partial score for that field.
const (
	scoreExactName   = 10
	scoreExactCode   = 8
	scorePartialName = 5
	scorePartialCode = 4
	scorePartialDesc = 2
	scoreFuzzy       = 1
)

type SearchOptions struct {
	Query  string
	Fields []string
	Fuzzy  bool
}

// ParseSearchFields keeps the recognized names from a csv list, falling
// back to the defaults when none are usable.
func ParseSearchFields(raw string) []string {
	var fields []string
	for _, f := range splitList(raw) {
		f = strings.ToLower(f)
		if f == SearchFieldName || f == SearchFieldCode || f == SearchFieldDescription {
			if !slices.Contains(fields, f) {
				fields = append(fields, f)
			}
		}
	}
	if len(fields) == 0 {
		return DefaultSearchFields
	}
	return fields
}

type ScoredProduct struct {
	model.Product
	Score int `json:"score"`
}

// Search scores active products against the query and returns the hits,
// highest score first.
func Search(products []model.Product, opts SearchOptions) ([]ScoredProduct, error) {
	q := strings.TrimSpace(opts.Query)
	if err := ValidateSearchTerm(q, true); err != nil {
		return nil, err
	}
	fields := opts.Fields
	if len(fields) == 0 {
		fields = DefaultSearchFields
	}
	q = strings.ToLower(q)

	hits := []ScoredProduct{}
	for _, p := range Active(products) {
		score := 0
		for _, f := range fields {
			score += fieldScore(f, &p, q, opts.Fuzzy)
		}
		if score > 0 {
			hits = append(hits, ScoredProduct{Product: p, Score: score})
		}
	}
	slices.SortStableFunc(hits, func(a, b ScoredProduct) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return hits, nil
}

func fieldScore(field string, p *model.Product, q string, fuzzy bool) int {
	var value string
	var exact, partial int
	switch field {
	case SearchFieldName:
		value, exact, partial = p.Name, scoreExactName, scorePartialName
	case SearchFieldCode:
		value, exact, partial = p.Code, scoreExactCode, scorePartialCode
	case SearchFieldDescription:
		value, partial = p.Description, scorePartialDesc
	default:
		return 0
	}

	value = strings.ToLower(value)
	switch {
	case exact > 0 && value == q:
		return exact
	case strings.Contains(value, q):
		return partial
	case fuzzy && isSubsequence(q, value):
		return scoreFuzzy
	}
	return 0
}

// isSubsequence reports whether every rune of q appears in s in order.
func isSubsequence(q, s string) bool {
	rs := []rune(s)
	i := 0
	for _, r := range q {
		for i < len(rs) && rs[i] != r {
			i++
		}
		if i == len(rs) {
			return false
		}
		i++
	}
	return true
}
