package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	pdfRowHeight  = 7
	pdfPageMargin = 10
)

// RenderPDF writes a landscape A4 document with one section per sheet.
// The core fonts cannot draw every currency symbol, so amounts carry the
// currency code instead.
func RenderPDF(w io.Writer, sheets []Sheet, opts Options) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfPageMargin, pdfPageMargin, pdfPageMargin)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(opts.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	printer := message.NewPrinter(language.English)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - 2*pdfPageMargin

	for _, sh := range sheets {
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 10, tr(opts.Title+" - "+sh.Name), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 6, "Generated: "+opts.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
		pdf.Ln(3)

		widths := columnWidths(sh.Columns, usable)
		drawHeader := func() {
			pdf.SetFont("Arial", "B", 9)
			pdf.SetFillColor(217, 217, 217)
			for i, col := range sh.Columns {
				pdf.CellFormat(widths[i], pdfRowHeight, tr(col.Header), "1", 0, "C", true, 0, "")
			}
			pdf.Ln(-1)
			pdf.SetFont("Arial", "", 8)
		}
		drawHeader()

		_, pageHeight := pdf.GetPageSize()
		for _, row := range sh.Rows {
			if pdf.GetY()+pdfRowHeight > pageHeight-15 {
				pdf.AddPage()
				drawHeader()
			}
			if row.Highlight {
				pdf.SetFillColor(248, 203, 173)
			}
			for i, col := range sh.Columns {
				if i >= len(row.Values) {
					break
				}
				text := fit(pdf, tr(formatCell(printer, col.Kind, row.Values[i], opts.CurrencyCode)), widths[i])
				align := "L"
				if col.Kind != Text {
					align = "R"
				}
				pdf.CellFormat(widths[i], pdfRowHeight, text, "1", 0, align, row.Highlight, 0, "")
			}
			pdf.Ln(-1)
		}

		if len(sh.Rows) == 0 {
			pdf.SetFont("Arial", "I", 9)
			pdf.CellFormat(usable, pdfRowHeight, "No records", "1", 1, "C", false, 0, "")
		}
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// columnWidths scales the sheet's relative widths to the usable page width.
func columnWidths(cols []Column, usable float64) []float64 {
	total := 0.0
	for _, c := range cols {
		total += max(c.Width, 1)
	}
	widths := make([]float64, len(cols))
	for i, c := range cols {
		widths[i] = usable * max(c.Width, 1) / total
	}
	return widths
}

func formatCell(p *message.Printer, kind Kind, v any, currency string) string {
	switch val := v.(type) {
	case int:
		return p.Sprintf("%d", val)
	case float64:
		switch kind {
		case Currency:
			return p.Sprintf("%s %.2f", currency, val)
		case Percent:
			return p.Sprintf("%.2f%%", val)
		}
		return p.Sprintf("%.2f", val)
	case string:
		return val
	}
	return fmt.Sprint(v)
}

// fit truncates s with an ellipsis so it fits in a cell of width w.
func fit(pdf *gofpdf.Fpdf, s string, w float64) string {
	limit := w - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > limit {
		s = s[:len(s)-1]
	}
	return strings.TrimSpace(s) + "..."
}
