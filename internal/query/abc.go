package query

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-stock-tracker/internal/model"
)

type ABCClass string

const (
	ClassA ABCClass = "A"
	ClassB ABCClass = "B"
	ClassC ABCClass = "C"
)

// Cumulative value share thresholds (inclusive) for classes A and B.
var (
	thresholdA = decimal.NewFromInt(80)
	thresholdB = decimal.NewFromInt(95)
)

type ABCItem struct {
	ID                   uuid.UUID      `json:"id"`
	Code                 string         `json:"code"`
	Name                 string         `json:"name"`
	Category             model.Category `json:"category"`
	Quantity             int            `json:"quantity"`
	SalePrice            float64        `json:"salePrice"`
	TotalValue           float64        `json:"totalValue"`
	Classification       ABCClass       `json:"classification"`
	ValuePercentage      float64        `json:"valuePercentage"`
	CumulativePercentage float64        `json:"cumulativePercentage"`
	Rank                 int            `json:"rank"`
}

type ABCClassSummary struct {
	Count      int     `json:"count"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

type ABCSummary struct {
	A ABCClassSummary `json:"A"`
	B ABCClassSummary `json:"B"`
	C ABCClassSummary `json:"C"`
}

func (s *ABCSummary) class(c ABCClass) *ABCClassSummary {
	switch c {
	case ClassA:
		return &s.A
	case ClassB:
		return &s.B
	}
	return &s.C
}

type ABCResult struct {
	Products   []ABCItem           `json:"products"`
	Summary    ABCSummary          `json:"summary"`
	TotalValue float64             `json:"totalValue"`
	Insights   map[ABCClass]string `json:"insights"`
}

var abcInsights = map[ABCClass]string{
	ClassA: "High-value products: tight stock control required",
	ClassB: "Mid-value products: regular stock control",
	ClassC: "Low-value products: simple stock control is enough",
}

// ClassifyABC ranks active products by total value (ties keep their input
// order) and tiers them on the running cumulative share: A up to 80%, B up to
// 95%, C beyond. With no value at all every product is C at 0%.
func ClassifyABC(products []model.Product) ABCResult {
	ranked := Active(products)
	slices.SortStableFunc(ranked, func(a, b model.Product) int {
		return cmp.Compare(b.TotalValue, a.TotalValue)
	})

	total := decimal.Zero
	for _, p := range ranked {
		total = total.Add(decimal.NewFromFloat(p.TotalValue))
	}
	hundred := decimal.NewFromInt(100)

	result := ABCResult{
		Products:   make([]ABCItem, 0, len(ranked)),
		TotalValue: total.Round(2).InexactFloat64(),
		Insights:   abcInsights,
	}
	classValues := map[ABCClass]decimal.Decimal{}

	cumulative := decimal.Zero
	for i, p := range ranked {
		value := decimal.NewFromFloat(p.TotalValue)
		cumulative = cumulative.Add(value)

		item := ABCItem{
			ID:             p.ID,
			Code:           p.Code,
			Name:           p.Name,
			Category:       p.Category,
			Quantity:       p.Quantity,
			SalePrice:      p.SalePrice,
			TotalValue:     p.TotalValue,
			Classification: ClassC,
			Rank:           i + 1,
		}
		if total.IsPositive() {
			share := value.Div(total).Mul(hundred)
			cumShare := cumulative.Div(total).Mul(hundred)
			item.ValuePercentage = share.Round(2).InexactFloat64()
			item.CumulativePercentage = cumShare.Round(2).InexactFloat64()
			switch {
			case cumShare.LessThanOrEqual(thresholdA):
				item.Classification = ClassA
			case cumShare.LessThanOrEqual(thresholdB):
				item.Classification = ClassB
			}
		}

		sc := result.Summary.class(item.Classification)
		sc.Count++
		classValues[item.Classification] = classValues[item.Classification].Add(value)
		result.Products = append(result.Products, item)
	}

	for _, c := range []ABCClass{ClassA, ClassB, ClassC} {
		sc := result.Summary.class(c)
		v := classValues[c]
		sc.Value = v.Round(2).InexactFloat64()
		if total.IsPositive() {
			sc.Percentage = v.Div(total).Mul(hundred).Round(2).InexactFloat64()
		}
	}
	return result
}
