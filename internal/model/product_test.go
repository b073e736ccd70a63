package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestComputeStockStatus(t *testing.T) {
	tests := []struct {
		quantity, minStock int
		want               StockStatus
	}{
		{0, 5, StockOut},
		{0, 0, StockOut},
		{5, 5, StockLow},
		{6, 5, StockIn},
		{1, 5, StockLow},
		{1, 0, StockIn},
	}
	for _, tt := range tests {
		if got := ComputeStockStatus(tt.quantity, tt.minStock); got != tt.want {
			t.Errorf("ComputeStockStatus(%d, %d) = %s, want %s", tt.quantity, tt.minStock, got, tt.want)
		}
	}
}

func TestRecalculate(t *testing.T) {
	p := Product{Code: " ab12 ", Quantity: 3, MinStock: 2, CostPrice: 0.1, SalePrice: 0.3}
	p.Recalculate()

	if p.Code != "AB12" {
		t.Errorf("Code = %q, want AB12", p.Code)
	}
	if p.TotalValue != 0.9 {
		t.Errorf("TotalValue = %v, want 0.9", p.TotalValue)
	}
	if p.StockStatus != StockIn {
		t.Errorf("StockStatus = %s, want in-stock", p.StockStatus)
	}
	if p.ProfitAmount != 0.2 || p.ProfitMargin != 200 {
		t.Errorf("profit = %v/%v, want 0.2/200", p.ProfitAmount, p.ProfitMargin)
	}

	p.CostPrice = 0
	p.Quantity = 0
	p.Recalculate()
	if p.ProfitMargin != 0 || p.TotalValue != 0 || p.StockStatus != StockOut {
		t.Errorf("after emptying: %+v", p)
	}
}

func TestHasAnyTag(t *testing.T) {
	p := Product{Tags: []string{"red", "sale"}}
	if !p.HasAnyTag([]string{"blue", "sale"}) {
		t.Error("expected a match on sale")
	}
	if p.HasAnyTag([]string{"Red"}) {
		t.Error("tag matching must be exact")
	}
}

func image() ProductImage {
	return ProductImage{ID: uuid.New()}
}

func TestImageGallery(t *testing.T) {
	p := Product{}
	p.ID = uuid.New()

	first, second, third := image(), image(), image()
	if evicted := p.AddImage(first, 2); len(evicted) != 0 {
		t.Fatalf("unexpected eviction %v", evicted)
	}
	p.AddImage(second, 2)
	if !p.Images[0].IsPrimary || p.Images[1].IsPrimary {
		t.Fatalf("first image should be the only primary: %+v", p.Images)
	}
	if p.Images[1].ProductID != p.ID {
		t.Errorf("ProductID not set")
	}

	// the cap evicts the oldest, and the primary moves on
	evicted := p.AddImage(third, 2)
	if len(evicted) != 1 || evicted[0].ID != first.ID {
		t.Fatalf("evicted = %+v, want the first image", evicted)
	}
	if len(p.Images) != 2 || p.PrimaryImage() == nil || p.PrimaryImage().ID != second.ID {
		t.Fatalf("gallery after eviction = %+v", p.Images)
	}

	if !p.SetPrimaryImage(third.ID) || p.PrimaryImage().ID != third.ID {
		t.Fatalf("SetPrimaryImage did not move the primary")
	}
	if p.SetPrimaryImage(uuid.New()) {
		t.Error("SetPrimaryImage accepted an unknown id")
	}

	removed, ok := p.RemoveImage(third.ID)
	if !ok || removed.ID != third.ID {
		t.Fatalf("RemoveImage = %v/%v", removed, ok)
	}
	if len(p.Images) != 1 || !p.Images[0].IsPrimary {
		t.Fatalf("remaining image should be promoted: %+v", p.Images)
	}
	if _, ok := p.RemoveImage(uuid.New()); ok {
		t.Error("RemoveImage accepted an unknown id")
	}
}

func TestNewStockMovement(t *testing.T) {
	id := uuid.New()
	if m := NewStockMovement(id, MovementUpdate, 5, 5, "u1"); m != nil {
		t.Errorf("unchanged update produced a movement: %+v", m)
	}
	if m := NewStockMovement(id, MovementCreate, 0, 0, "u1"); m == nil {
		t.Error("create must always record a movement")
	}
	m := NewStockMovement(id, MovementSubtract, 10, 4, "u1")
	if m == nil || m.Delta != -6 || m.Before != 10 || m.After != 4 || m.CreatedBy != "u1" {
		t.Errorf("unexpected movement %+v", m)
	}
}
