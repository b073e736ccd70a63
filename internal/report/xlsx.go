package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	headerFill    = "#D9D9D9"
	highlightFill = "#F8CBAD"
)

type styleKey struct {
	kind      Kind
	highlight bool
}

// RenderXLSX writes one worksheet per sheet with a bold header row.
func RenderXLSX(w io.Writer, sheets []Sheet, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
	if err != nil {
		return err
	}
	styles, err := cellStyles(f, opts)
	if err != nil {
		return err
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return err
		}
		if err := writeSheet(f, sh, header, styles); err != nil {
			return fmt.Errorf("sheet %s: %w", sh.Name, err)
		}
	}

	if opts.Title != "" {
		if err := f.SetDocProps(&excelize.DocProperties{
			Title:   opts.Title,
			Created: opts.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func cellStyles(f *excelize.File, opts Options) (map[styleKey]int, error) {
	currency := fmt.Sprintf(`"%s"#,##0.00`, opts.CurrencySymbol)
	percent := `0.00"%"`
	integer := `#,##0`
	formats := map[Kind]*string{
		Text:     nil,
		Integer:  &integer,
		Currency: &currency,
		Percent:  &percent,
	}

	styles := map[styleKey]int{}
	for kind, numFmt := range formats {
		for _, hl := range []bool{false, true} {
			st := &excelize.Style{CustomNumFmt: numFmt}
			if hl {
				st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{highlightFill}}
			}
			id, err := f.NewStyle(st)
			if err != nil {
				return nil, err
			}
			styles[styleKey{kind, hl}] = id
		}
	}
	return styles, nil
}

func writeSheet(f *excelize.File, sh Sheet, header int, styles map[styleKey]int) error {
	for c, col := range sh.Columns {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sh.Name, cell, col.Header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sh.Name, cell, cell, header); err != nil {
			return err
		}
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if col.Width > 0 {
			if err := f.SetColWidth(sh.Name, name, name, col.Width); err != nil {
				return err
			}
		}
	}

	for r, row := range sh.Rows {
		for c, v := range row.Values {
			if c >= len(sh.Columns) {
				break
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sh.Name, cell, v); err != nil {
				return err
			}
			style := styles[styleKey{sh.Columns[c].Kind, row.Highlight}]
			if err := f.SetCellStyle(sh.Name, cell, cell, style); err != nil {
				return err
			}
		}
	}

	return f.SetPanes(sh.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
