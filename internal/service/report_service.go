package service

import (
	"bytes"
	"cmp"
	"context"
	"log"
	"slices"
	"strings"
	"time"

	"go-stock-tracker/internal/cache"
	"go-stock-tracker/internal/model"
	"go-stock-tracker/internal/query"
	"go-stock-tracker/internal/report"
	"go-stock-tracker/internal/repository"
	"go-stock-tracker/pkg/apperror"
)

type ReportService interface {
	Dashboard(period string) (*Dashboard, error)
	InventoryMovement(req MovementQuery) (*InventoryMovement, error)
	ABCAnalysis() (*query.ABCResult, error)
	CategoryAnalysis() (*query.CategoryAnalysis, error)
	SupplierAnalysis() (*query.SupplierAnalysis, error)
	Export(format ExportFormat, reportType string) (*ExportFile, error)
}

// Dashboard periods, in days; 0 means unbounded.
var periods = map[string]int{
	"7days":  7,
	"30days": 30,
	"90days": 90,
	"all":    0,
}

const (
	defaultPeriod     = "30days"
	topProductCount   = 5
	lowStockAlertSize = 10
	movementLimit     = 100
	dateLayout        = "2006-01-02"
)

type Dashboard struct {
	Period              string                         `json:"period"`
	KPIs                query.KPIs                     `json:"kpis"`
	LowStockCount       int                            `json:"lowStockCount"`
	OutOfStockCount     int                            `json:"outOfStockCount"`
	NewProducts         int                            `json:"newProducts"`
	StockDistribution   []query.StatusShare            `json:"stockDistribution"`
	TopProducts         []model.Product                `json:"topProducts"`
	LowStockAlerts      []model.Product                `json:"lowStockAlerts"`
	CategoryPerformance []query.CategoryStat           `json:"categoryPerformance"`
	StockMovement       []repository.StockMovementData `json:"stockMovement"`
}

type MovementQuery struct {
	StartDate string
	EndDate   string
	Category  string
	Supplier  string
}

type MovementSummary struct {
	TotalProducts int     `json:"totalProducts"`
	TotalValue    float64 `json:"totalValue"`
	Categories    int     `json:"categories"`
	Suppliers     int     `json:"suppliers"`
}

type InventoryMovement struct {
	Period struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"period"`
	Products []model.Product                `json:"products"`
	Summary  MovementSummary                `json:"summary"`
	Daily    []repository.StockMovementData `json:"daily"`
}

type ExportFormat string

const (
	FormatXLSX ExportFormat = "xlsx"
	FormatCSV  ExportFormat = "csv"
	FormatPDF  ExportFormat = "pdf"
)

var contentTypes = map[ExportFormat]string{
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatCSV:  "text/csv; charset=utf-8",
	FormatPDF:  "application/pdf",
}

// ExportFile is a rendered report ready to be sent as a download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReportOptions carry display settings for exports.
type ReportOptions struct {
	CurrencySymbol string
	CurrencyCode   string
}

type reportService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	cache        cache.Cache
	opts         ReportOptions
	now          func() time.Time
}

func NewReportService(pRepo repository.ProductRepository, mRepo repository.MovementRepository, c cache.Cache, opts ReportOptions) ReportService {
	return &reportService{
		productRepo:  pRepo,
		movementRepo: mRepo,
		cache:        c,
		opts:         opts,
		now:          time.Now,
	}
}

// cached serves key from the report cache or builds and stores it.
// Cache failures only cost a rebuild.
func cached[T any](c cache.Cache, key string, build func() (*T, error)) (*T, error) {
	ctx := context.Background()
	var hit T
	if ok, err := c.Get(ctx, key, &hit); err != nil {
		log.Printf("Warning: report cache read %s: %v", key, err)
	} else if ok {
		return &hit, nil
	}

	value, err := build()
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, value); err != nil {
		log.Printf("Warning: report cache write %s: %v", key, err)
	}
	return value, nil
}

func (s *reportService) products() ([]model.Product, error) {
	products, err := s.productRepo.FindActive()
	if err != nil {
		return nil, apperror.Internal("Failed to load products", err)
	}
	return products, nil
}

// Dashboard falls back to the 30 day period for unknown values.
func (s *reportService) Dashboard(period string) (*Dashboard, error) {
	days, ok := periods[period]
	if !ok {
		period, days = defaultPeriod, periods[defaultPeriod]
	}

	return cached(s.cache, "dashboard:"+period, func() (*Dashboard, error) {
		products, err := s.products()
		if err != nil {
			return nil, err
		}

		end := s.now()
		start := time.Time{}
		if days > 0 {
			start = end.AddDate(0, 0, -days)
		}
		movement, err := s.movementRepo.GetStockMovement(start, end)
		if err != nil {
			return nil, apperror.Internal("Failed to load stock movement", err)
		}

		overview := query.ComputeOverview(products)
		d := &Dashboard{
			Period:              period,
			KPIs:                overview.KPIs(),
			LowStockCount:       overview.LowStockCount,
			OutOfStockCount:     overview.OutOfStockCount,
			StockDistribution:   query.StockDistribution(products),
			TopProducts:         query.TopByValue(products, topProductCount),
			LowStockAlerts:      query.LowStock(products, lowStockAlertSize),
			CategoryPerformance: query.CategoryStats(products),
			StockMovement:       movement,
		}
		for _, p := range products {
			if p.IsActive() && !p.CreatedAt.Before(start) {
				d.NewProducts++
			}
		}
		return d, nil
	})
}

// InventoryMovement lists products updated within the date range, newest
// first and capped at 100, with the daily stock in/out series. Dates are
// YYYY-MM-DD; the end date is inclusive. The default range is the last 30 days.
func (s *reportService) InventoryMovement(req MovementQuery) (*InventoryMovement, error) {
	now := s.now()
	start, err := parseDate(req.StartDate, "startDate", now.AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}
	end, err := parseDate(req.EndDate, "endDate", now)
	if err != nil {
		return nil, err
	}
	start = startOfDay(start)
	end = startOfDay(end).Add(24*time.Hour - time.Nanosecond)
	if end.Before(start) {
		return nil, apperror.Validation("startDate must not be after endDate", map[string]string{
			"startDate": "must not be after endDate",
		})
	}

	products, err := s.products()
	if err != nil {
		return nil, err
	}

	criteria := query.Criteria{Category: strings.TrimSpace(req.Category), Supplier: strings.TrimSpace(req.Supplier)}
	updated := []model.Product{}
	for _, p := range query.Filter(products, criteria) {
		if !p.UpdatedAt.Before(start) && !p.UpdatedAt.After(end) {
			updated = append(updated, p)
		}
	}
	slices.SortStableFunc(updated, func(a, b model.Product) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	if len(updated) > movementLimit {
		updated = updated[:movementLimit]
	}

	daily, err := s.movementRepo.GetStockMovement(start, end)
	if err != nil {
		return nil, apperror.Internal("Failed to load stock movement", err)
	}

	result := &InventoryMovement{Products: updated, Daily: daily}
	result.Period.Start = start.Format(dateLayout)
	result.Period.End = end.Format(dateLayout)
	result.Summary = summarizeMovement(updated)
	return result, nil
}

func summarizeMovement(products []model.Product) MovementSummary {
	categories := map[model.Category]struct{}{}
	suppliers := map[string]struct{}{}
	summary := query.Summarize(products)
	for _, p := range products {
		categories[p.Category] = struct{}{}
		if p.Supplier != "" {
			suppliers[p.Supplier] = struct{}{}
		}
	}
	return MovementSummary{
		TotalProducts: summary.Count,
		TotalValue:    summary.TotalValue,
		Categories:    len(categories),
		Suppliers:     len(suppliers),
	}
}

func parseDate(raw, field string, fallback time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, apperror.Validation("Invalid date", map[string]string{
			field: "must be a date in YYYY-MM-DD format",
		})
	}
	return t, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (s *reportService) ABCAnalysis() (*query.ABCResult, error) {
	return cached(s.cache, "abc", func() (*query.ABCResult, error) {
		products, err := s.products()
		if err != nil {
			return nil, err
		}
		r := query.ClassifyABC(products)
		return &r, nil
	})
}

func (s *reportService) CategoryAnalysis() (*query.CategoryAnalysis, error) {
	return cached(s.cache, "categories", func() (*query.CategoryAnalysis, error) {
		products, err := s.products()
		if err != nil {
			return nil, err
		}
		a := query.AnalyzeCategories(products)
		return &a, nil
	})
}

func (s *reportService) SupplierAnalysis() (*query.SupplierAnalysis, error) {
	return cached(s.cache, "suppliers", func() (*query.SupplierAnalysis, error) {
		products, err := s.products()
		if err != nil {
			return nil, err
		}
		a := query.AnalyzeSuppliers(products)
		return &a, nil
	})
}

// Export renders the selected report. CSV always carries the flat
// inventory listing regardless of the type.
func (s *reportService) Export(format ExportFormat, reportType string) (*ExportFile, error) {
	contentType, ok := contentTypes[format]
	if !ok {
		return nil, apperror.Validation("Invalid export format", map[string]string{
			"format": "must be one of: xlsx csv pdf",
		})
	}
	t, err := report.ParseType(reportType)
	if err != nil {
		return nil, err
	}
	if format == FormatCSV {
		t = report.TypeInventory
	}

	products, err := s.products()
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(products, func(a, b model.Product) int {
		return cmp.Compare(a.Code, b.Code)
	})

	now := s.now()
	opts := report.Options{
		Title:          "Inventory Report",
		CurrencySymbol: s.opts.CurrencySymbol,
		CurrencyCode:   s.opts.CurrencyCode,
		GeneratedAt:    now,
	}

	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		err = report.WriteCSV(&buf, products)
	case FormatXLSX:
		err = report.RenderXLSX(&buf, report.BuildSheets(t, products), opts)
	case FormatPDF:
		err = report.RenderPDF(&buf, report.BuildSheets(t, products), opts)
	}
	if err != nil {
		return nil, apperror.Internal("Failed to generate report", err)
	}

	return &ExportFile{
		Name:        report.FileName(t, string(format), now),
		ContentType: contentType,
		Data:        buf.Bytes(),
	}, nil
}
