package service

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"go-stock-tracker/internal/model"
	"go-stock-tracker/internal/repository"
	"go-stock-tracker/pkg/apperror"
)

var reportNow = time.Date(2024, 5, 10, 15, 0, 0, 0, time.Local)

func newReportFixture(products ...model.Product) (*reportService, *memProducts, *memMovements, *countingCache) {
	repo := newMemProducts(products...)
	movements := &memMovements{series: []repository.StockMovementData{{Date: "2024-05-09", Inbound: 4, Outbound: 1}}}
	c := newCountingCache()
	svc := NewReportService(repo, movements, c, ReportOptions{CurrencySymbol: "₺", CurrencyCode: "TRY"}).(*reportService)
	svc.now = func() time.Time { return reportNow }
	return svc, repo, movements, c
}

func sampleProducts() []model.Product {
	return []model.Product{
		{Code: "AAA", Name: "Alpha", Category: model.CategoryBooks, Quantity: 0, MinStock: 5, CostPrice: 50, SalePrice: 100, Status: model.StatusActive},
		{Code: "BBB", Name: "Beta", Category: model.CategoryBooks, Quantity: 3, MinStock: 5, CostPrice: 25, SalePrice: 50, Status: model.StatusActive, Supplier: "Acme"},
		{Code: "CCC", Name: "Gamma", Category: model.CategoryToys, Quantity: 20, MinStock: 5, CostPrice: 5, SalePrice: 10, Status: model.StatusActive, Supplier: "Acme"},
	}
}

func TestDashboardPeriods(t *testing.T) {
	svc, _, movements, c := newReportFixture(sampleProducts()...)

	d, err := svc.Dashboard("bogus")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Period != "30days" {
		t.Errorf("period = %q, want fallback 30days", d.Period)
	}
	if d.LowStockCount != 1 || d.OutOfStockCount != 1 || d.KPIs.TotalProducts != 3 {
		t.Errorf("unexpected dashboard %+v", d)
	}
	if len(d.StockMovement) != 1 || movements.calls != 1 {
		t.Errorf("movement series not loaded: %+v", d.StockMovement)
	}

	// served from cache
	if _, err := svc.Dashboard("30days"); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if c.hits != 1 || movements.calls != 1 {
		t.Errorf("second call should hit the cache: hits=%d calls=%d", c.hits, movements.calls)
	}

	all, err := svc.Dashboard("all")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if all.Period != "all" || all.NewProducts != 3 {
		t.Errorf("all period = %+v", all)
	}
}

func TestInventoryMovementRange(t *testing.T) {
	inRange := reportNow.AddDate(0, 0, -2)
	products := sampleProducts()
	svc, repo, _, _ := newReportFixture(products...)
	for _, p := range repo.products {
		p.UpdatedAt = inRange
		if p.Code == "CCC" {
			p.UpdatedAt = reportNow.AddDate(0, 0, -60)
		}
	}

	got, err := svc.InventoryMovement(MovementQuery{})
	if err != nil {
		t.Fatalf("InventoryMovement: %v", err)
	}
	if got.Period.Start != "2024-04-10" || got.Period.End != "2024-05-10" {
		t.Errorf("period = %+v", got.Period)
	}
	if got.Summary.TotalProducts != 2 || got.Summary.Categories != 1 || got.Summary.Suppliers != 1 {
		t.Errorf("summary = %+v", got.Summary)
	}
	if got.Summary.TotalValue != 150 {
		t.Errorf("total value = %v, want 150", got.Summary.TotalValue)
	}

	// end date is inclusive
	day := inRange.Format("2006-01-02")
	got, err = svc.InventoryMovement(MovementQuery{StartDate: day, EndDate: day, Supplier: "Acme"})
	if err != nil {
		t.Fatalf("InventoryMovement: %v", err)
	}
	if len(got.Products) != 1 || got.Products[0].Code != "BBB" {
		t.Errorf("products = %+v", got.Products)
	}
}

func TestInventoryMovementValidation(t *testing.T) {
	svc, _, _, _ := newReportFixture()

	tests := []struct {
		name  string
		req   MovementQuery
		field string
	}{
		{"malformed start", MovementQuery{StartDate: "10/05/2024"}, "startDate"},
		{"malformed end", MovementQuery{EndDate: "2024-13-01"}, "endDate"},
		{"start after end", MovementQuery{StartDate: "2024-05-02", EndDate: "2024-05-01"}, "startDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.InventoryMovement(tt.req)
			appErr := requireKind(t, err, apperror.KindValidation)
			if _, ok := appErr.Fields[tt.field]; !ok {
				t.Errorf("fields = %v, want %s", appErr.Fields, tt.field)
			}
		})
	}
}

func TestInventoryMovementCap(t *testing.T) {
	var products []model.Product
	for i := 0; i < 120; i++ {
		products = append(products, model.Product{
			Code: fmt.Sprintf("P%03d", i), Name: "Item", Category: model.CategoryOther,
			Quantity: 1, MinStock: 0, SalePrice: 1, Status: model.StatusActive,
		})
	}
	svc, repo, _, _ := newReportFixture(products...)
	i := 0
	for _, p := range repo.products {
		p.UpdatedAt = reportNow.Add(-time.Duration(i) * time.Minute)
		i++
	}

	got, err := svc.InventoryMovement(MovementQuery{})
	if err != nil {
		t.Fatalf("InventoryMovement: %v", err)
	}
	if len(got.Products) != 100 {
		t.Fatalf("got %d products, want 100", len(got.Products))
	}
	for i := 1; i < len(got.Products); i++ {
		if got.Products[i].UpdatedAt.After(got.Products[i-1].UpdatedAt) {
			t.Fatalf("not newest first at %d", i)
		}
	}
}

func TestExport(t *testing.T) {
	svc, _, _, _ := newReportFixture(sampleProducts()...)

	tests := []struct {
		format     ExportFormat
		reportType string
		name       string
		prefix     string
	}{
		{FormatCSV, "low-stock", "inventory-report-2024-05-10.csv", "\ufeffCode"},
		{FormatXLSX, "all", "all-report-2024-05-10.xlsx", "PK"},
		{FormatPDF, "", "inventory-report-2024-05-10.pdf", "%PDF-"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			file, err := svc.Export(tt.format, tt.reportType)
			if err != nil {
				t.Fatalf("Export: %v", err)
			}
			if file.Name != tt.name {
				t.Errorf("name = %q, want %q", file.Name, tt.name)
			}
			if file.ContentType != contentTypes[tt.format] {
				t.Errorf("content type = %q", file.ContentType)
			}
			if !bytes.HasPrefix(file.Data, []byte(tt.prefix)) {
				t.Errorf("data starts with %q", file.Data[:min(len(file.Data), 8)])
			}
		})
	}

	file, _ := svc.Export(FormatCSV, "")
	if lines := strings.Count(string(file.Data), "\n"); lines != 4 {
		t.Errorf("csv has %d lines, want header plus 3 rows", lines)
	}

	_, err := svc.Export("docx", "")
	requireKind(t, err, apperror.KindValidation)
	_, err = svc.Export(FormatPDF, "weekly")
	requireKind(t, err, apperror.KindValidation)
}

func TestABCAnalysisCached(t *testing.T) {
	svc, _, _, _ := newReportFixture(sampleProducts()...)

	r, err := svc.ABCAnalysis()
	if err != nil {
		t.Fatalf("ABCAnalysis: %v", err)
	}
	if len(r.Products) != 3 {
		t.Errorf("classified %d products, want 3", len(r.Products))
	}
}
