// Package report turns product sets into tabular exports: an XLSX workbook,
// a PDF document and a flat CSV listing.
package report

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go-stock-tracker/internal/model"
	"go-stock-tracker/internal/query"
	"go-stock-tracker/pkg/apperror"
)

type Type string

const (
	TypeInventory  Type = "inventory"
	TypeCategories Type = "categories"
	TypeSuppliers  Type = "suppliers"
	TypeLowStock   Type = "low-stock"
	TypeAll        Type = "all"
)

var sheetOrder = []Type{TypeInventory, TypeCategories, TypeSuppliers, TypeLowStock}

// ParseType accepts a report selector; empty means inventory.
func ParseType(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	if t == "" {
		return TypeInventory, nil
	}
	if t == TypeAll || slices.Contains(sheetOrder, t) {
		return t, nil
	}
	return "", apperror.Validation("Invalid report type", map[string]string{
		"type": "must be one of: inventory categories suppliers low-stock all",
	})
}

// Kind controls how a column's values are displayed.
type Kind int

const (
	Text Kind = iota
	Integer
	Currency
	Percent
)

type Column struct {
	Header string
	Kind   Kind
	Width  float64
}

// Row holds one value per column: string, int or float64.
// Highlight marks rows that need visual attention.
type Row struct {
	Values    []any
	Highlight bool
}

type Sheet struct {
	Name    string
	Columns []Column
	Rows    []Row
}

// Options carry presentation settings shared by the renderers.
type Options struct {
	Title          string
	CurrencySymbol string
	CurrencyCode   string
	GeneratedAt    time.Time
}

// BuildSheets builds one sheet per requested report, in a fixed order.
// Only active products are included.
func BuildSheets(t Type, products []model.Product) []Sheet {
	active := query.Active(products)
	var sheets []Sheet
	for _, st := range sheetOrder {
		if t != TypeAll && t != st {
			continue
		}
		switch st {
		case TypeInventory:
			sheets = append(sheets, inventorySheet(active))
		case TypeCategories:
			sheets = append(sheets, categorySheet(active))
		case TypeSuppliers:
			sheets = append(sheets, supplierSheet(active))
		case TypeLowStock:
			sheets = append(sheets, lowStockSheet(active))
		}
	}
	return sheets
}

func inventorySheet(products []model.Product) Sheet {
	s := Sheet{
		Name: "Inventory",
		Columns: []Column{
			{"Code", Text, 12},
			{"Name", Text, 30},
			{"Category", Text, 14},
			{"Supplier", Text, 20},
			{"Quantity", Integer, 10},
			{"Unit", Text, 8},
			{"Min Stock", Integer, 10},
			{"Cost Price", Currency, 14},
			{"Sale Price", Currency, 14},
			{"Total Value", Currency, 16},
			{"Stock Status", Text, 14},
		},
	}
	for _, p := range products {
		s.Rows = append(s.Rows, Row{Values: []any{
			p.Code, p.Name, string(p.Category), supplierOrDash(p.Supplier),
			p.Quantity, string(p.Unit), p.MinStock,
			p.CostPrice, p.SalePrice, p.TotalValue, StatusLabel(p.StockStatus),
		}})
	}
	return s
}

func categorySheet(products []model.Product) Sheet {
	s := Sheet{
		Name: "Categories",
		Columns: []Column{
			{"Category", Text, 16},
			{"Products", Integer, 10},
			{"Total Quantity", Integer, 14},
			{"Total Value", Currency, 16},
			{"Avg Price", Currency, 14},
			{"Low Stock", Integer, 10},
			{"Out of Stock", Integer, 12},
			{"Stock Health", Percent, 12},
		},
	}
	for _, c := range query.CategoryStats(products) {
		s.Rows = append(s.Rows, Row{Values: []any{
			string(c.Category), c.TotalProducts, c.TotalQuantity, c.TotalValue,
			c.AvgPrice, c.LowStockCount, c.OutOfStockCount, c.StockHealth,
		}})
	}
	return s
}

func supplierSheet(products []model.Product) Sheet {
	s := Sheet{
		Name: "Suppliers",
		Columns: []Column{
			{"Supplier", Text, 24},
			{"Products", Integer, 10},
			{"Categories", Integer, 12},
			{"Total Value", Currency, 16},
			{"Avg Price", Currency, 14},
			{"Avg Cost", Currency, 14},
			{"Stock Health", Percent, 12},
		},
	}
	for _, st := range query.SupplierStats(products) {
		s.Rows = append(s.Rows, Row{Values: []any{
			st.Supplier, st.TotalProducts, st.CategoryCount, st.TotalValue,
			st.AvgPrice, st.AvgCost, st.StockHealth,
		}})
	}
	return s
}

// lowStockSheet lists low and out-of-stock products, lowest quantity first.
// Out-of-stock rows are highlighted and carry an estimated loss of
// salePrice × minStock.
func lowStockSheet(products []model.Product) Sheet {
	s := Sheet{
		Name: "Low Stock",
		Columns: []Column{
			{"Code", Text, 12},
			{"Name", Text, 30},
			{"Category", Text, 14},
			{"Supplier", Text, 20},
			{"Quantity", Integer, 10},
			{"Min Stock", Integer, 10},
			{"Status", Text, 14},
			{"Sale Price", Currency, 14},
			{"Estimated Loss", Currency, 16},
		},
	}
	for _, p := range query.LowStock(products, 0) {
		out := p.StockStatus == model.StockOut
		s.Rows = append(s.Rows, Row{
			Values: []any{
				p.Code, p.Name, string(p.Category), supplierOrDash(p.Supplier),
				p.Quantity, p.MinStock, StatusLabel(p.StockStatus),
				p.SalePrice, EstimatedLoss(p),
			},
			Highlight: out,
		})
	}
	return s
}

// EstimatedLoss is the revenue a stocked-out product would bring back at its
// minimum stock level.
func EstimatedLoss(p model.Product) float64 {
	if p.StockStatus != model.StockOut {
		return 0
	}
	return query.Round2(p.SalePrice * float64(p.MinStock))
}

func StatusLabel(s model.StockStatus) string {
	switch s {
	case model.StockOut:
		return "Out of stock"
	case model.StockLow:
		return "Low stock"
	case model.StockIn:
		return "In stock"
	}
	return string(s)
}

func supplierOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// FileName builds a dated download name such as inventory-report-2024-05-01.xlsx.
func FileName(t Type, ext string, at time.Time) string {
	return fmt.Sprintf("%s-report-%s.%s", t, at.Format("2006-01-02"), ext)
}
