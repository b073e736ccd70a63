package query

import (
	"fmt"
	"math"
	"testing"

	"go-stock-tracker/internal/model"
)

func valued(values ...float64) []model.Product {
	products := make([]model.Product, len(values))
	for i, v := range values {
		products[i] = newProduct(fmt.Sprintf("V%02d", i), 1, 0, v)
	}
	return products
}

func TestClassifyABCUsesCumulativeShare(t *testing.T) {
	r := ClassifyABC(valued(10, 1000, 1, 100))

	want := []struct {
		code       string
		class      ABCClass
		cumulative float64
	}{
		// 1000/1111 alone is already past 80%
		{"V01", ClassB, 90.01},
		{"V03", ClassC, 99.01},
		{"V00", ClassC, 99.91},
		{"V02", ClassC, 100},
	}
	if len(r.Products) != len(want) {
		t.Fatalf("got %d items, want %d", len(r.Products), len(want))
	}
	for i, w := range want {
		item := r.Products[i]
		if item.Code != w.code || item.Classification != w.class || item.CumulativePercentage != w.cumulative {
			t.Errorf("rank %d = %s/%s/%v, want %s/%s/%v", i+1,
				item.Code, item.Classification, item.CumulativePercentage, w.code, w.class, w.cumulative)
		}
		if item.Rank != i+1 {
			t.Errorf("%s rank = %d, want %d", item.Code, item.Rank, i+1)
		}
	}
	if r.TotalValue != 1111 {
		t.Errorf("TotalValue = %v, want 1111", r.TotalValue)
	}
	if r.Summary.A.Count != 0 || r.Summary.B.Count != 1 || r.Summary.C.Count != 3 {
		t.Errorf("summary = %+v", r.Summary)
	}
	if r.Products[0].ValuePercentage != 90.01 {
		t.Errorf("value percentage = %v, want 90.01", r.Products[0].ValuePercentage)
	}
}

func TestClassifyABCBoundariesAreInclusive(t *testing.T) {
	r := ClassifyABC(valued(50, 30, 15, 5))

	classes := []ABCClass{ClassA, ClassA, ClassB, ClassC}
	for i, c := range classes {
		if r.Products[i].Classification != c {
			t.Errorf("rank %d (cumulative %v) = %s, want %s",
				i+1, r.Products[i].CumulativePercentage, r.Products[i].Classification, c)
		}
	}
	if r.Summary.A.Value != 80 || r.Summary.A.Percentage != 80 {
		t.Errorf("class A summary = %+v", r.Summary.A)
	}
	if r.Summary.B.Percentage != 15 || r.Summary.C.Percentage != 5 {
		t.Errorf("B/C summary = %+v / %+v", r.Summary.B, r.Summary.C)
	}
}

func TestClassifyABCInvariants(t *testing.T) {
	populations := [][]float64{
		{1},
		{3, 3, 3},
		{0.1, 0.2, 0.3, 99.4},
		{12.5, 7.25, 300, 0, 44.4, 1.01, 18, 18},
	}
	for _, values := range populations {
		r := ClassifyABC(valued(values...))

		if got := r.Summary.A.Count + r.Summary.B.Count + r.Summary.C.Count; got != len(values) {
			t.Errorf("%v: class counts sum to %d, want %d", values, got, len(values))
		}
		last := r.Products[len(r.Products)-1].CumulativePercentage
		if math.Abs(last-100) > 0.01 {
			t.Errorf("%v: last cumulative = %v, want 100", values, last)
		}
		for i := 1; i < len(r.Products); i++ {
			if r.Products[i].TotalValue > r.Products[i-1].TotalValue {
				t.Errorf("%v: not ranked by value", values)
			}
		}
	}
}

func TestClassifyABCTiesKeepInputOrder(t *testing.T) {
	r := ClassifyABC(valued(5, 5, 5))
	for i, item := range r.Products {
		if want := fmt.Sprintf("V%02d", i); item.Code != want {
			t.Errorf("rank %d = %s, want %s", i+1, item.Code, want)
		}
	}
}

func TestClassifyABCZeroTotal(t *testing.T) {
	for _, products := range [][]model.Product{nil, valued(0, 0)} {
		r := ClassifyABC(products)
		if r.TotalValue != 0 || len(r.Products) != len(products) {
			t.Fatalf("unexpected result %+v", r)
		}
		for _, item := range r.Products {
			if item.Classification != ClassC || item.ValuePercentage != 0 || item.CumulativePercentage != 0 {
				t.Errorf("zero-value item = %+v, want C at 0%%", item)
			}
		}
		if r.Summary.C.Count != len(products) || r.Summary.C.Percentage != 0 {
			t.Errorf("summary = %+v", r.Summary)
		}
	}
}

func TestClassifyABCSkipsInactive(t *testing.T) {
	products := valued(100, 50)
	products[0].Status = model.StatusInactive

	r := ClassifyABC(products)
	if len(r.Products) != 1 || r.Products[0].Code != "V01" || r.Products[0].CumulativePercentage != 100 {
		t.Fatalf("unexpected result %+v", r.Products)
	}
}
