package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"go-stock-tracker/internal/model"
	"go-stock-tracker/internal/query"
)

// utf8BOM lets spreadsheet tools detect the encoding.
const utf8BOM = "\ufeff"

var csvHeader = []string{
	"Code", "Name", "Category", "Supplier", "Quantity", "Unit", "Min Stock",
	"Cost Price", "Sale Price", "Total Value", "Stock Status", "Barcode",
}

// WriteCSV writes the flat inventory listing of active products.
func WriteCSV(w io.Writer, products []model.Product) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range query.Active(products) {
		barcode := ""
		if p.Barcode != nil {
			barcode = *p.Barcode
		}
		record := []string{
			p.Code,
			p.Name,
			string(p.Category),
			supplierOrDash(p.Supplier),
			strconv.Itoa(p.Quantity),
			string(p.Unit),
			strconv.Itoa(p.MinStock),
			formatAmount(p.CostPrice),
			formatAmount(p.SalePrice),
			formatAmount(p.TotalValue),
			StatusLabel(p.StockStatus),
			barcode,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
