package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the XLSX report.
const (
	SheetOverview = "Overview"
	SheetMonthly  = "Monthly"
	SheetFuel     = "Fuel"
	SheetBrands   = "Brands"
	SheetModels   = "Models"
	SheetDealers  = "Dealers"
	SheetRegions  = "Regions"
	SheetSegments = "Segments"
	SheetFocus    = "Focus"
)

var groupHeader = []any{"Key", "Sales USD", "Quantity", "Avg price USD", "Rows", "Distinct"}

// WriteXLSX writes rep as a workbook with one sheet per section, a line
// chart of monthly sales and a pie chart of the fuel distribution.
func WriteXLSX(path string, rep *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetOverview); err != nil {
		return err
	}
	for _, s := range []string{SheetMonthly, SheetFuel, SheetBrands, SheetModels, SheetDealers, SheetRegions, SheetSegments, SheetFocus} {
		if _, err := f.NewSheet(s); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	w := &sheetWriter{f: f, bold: bold}

	o := rep.Overview
	w.rows(SheetOverview, [][]any{
		{"Run", rep.RunID.String()},
		{"Generated", rep.Generated.Format("2006-01-02 15:04:05")},
		{"Total sales USD", o.SalesUSD},
		{"Vehicles sold", o.Quantity},
		{"Average price USD", o.AvgPrice},
		{"Average deal USD", o.AvgSale},
		{"Dealers", o.Dealers},
		{"Brands", o.Brands},
		{"Rows", o.Rows},
		{"Average car age", o.AvgCarAge},
		{"Best month", monthName(rep)},
		{"Most expensive brand", rep.PriciestBrand},
	})
	if !o.From.IsZero() {
		w.rows(SheetOverview, [][]any{{"Period", o.From.Format("2006-01-02") + " - " + o.To.Format("2006-01-02")}})
	}

	w.header(SheetMonthly, []any{"Month", "Sales USD", "Quantity", "Avg price USD"})
	for _, m := range rep.Monthly {
		w.row(SheetMonthly, []any{m.Month.String(), m.SalesUSD, m.Quantity, m.AvgPrice})
	}

	w.header(SheetFuel, []any{"Fuel", "Rows", "Percent"})
	for _, s := range rep.Fuel {
		w.row(SheetFuel, []any{s.Label, s.Rows, s.Percent})
	}

	w.groups(SheetBrands, rep.TopBrands)
	w.groups(SheetModels, rep.TopModels)
	w.groups(SheetDealers, rep.TopDealers)
	w.groups(SheetRegions, rep.TopRegions)
	w.groups(SheetSegments, rep.Segments)
	w.blank(SheetSegments)
	w.header(SheetSegments, []any{"Class"})
	for _, g := range rep.Classes {
		w.row(SheetSegments, []any{g.Key, g.SalesUSD, g.Quantity, g.AvgPrice, g.Rows})
	}

	fc := rep.Focus
	w.rows(SheetFocus, [][]any{
		{"Dealer", fc.Dealer},
		{"Found", fc.Found},
	})
	if fc.Found {
		w.rows(SheetFocus, [][]any{
			{"Sales USD", fc.SalesUSD},
			{"Vehicles sold", fc.Quantity},
			{"Average price USD", fc.AvgPrice},
			{"Market share USD %", fc.ShareUSD},
			{"Market share units %", fc.ShareQty},
			{"Rank", fc.Rank},
		})
		w.blank(SheetFocus)
		w.header(SheetFocus, []any{"Top brands"})
		for _, g := range fc.TopBrands {
			w.row(SheetFocus, []any{g.Key, g.SalesUSD, g.Quantity})
		}
		w.blank(SheetFocus)
		w.header(SheetFocus, []any{"Brands not carried"})
		for _, g := range fc.MissingBrands {
			w.row(SheetFocus, []any{g.Key, g.SalesUSD})
		}
		w.blank(SheetFocus)
		w.header(SheetFocus, []any{"Regions without presence"})
		for _, r := range fc.AbsentRegions {
			w.row(SheetFocus, []any{r})
		}
	}
	if w.err != nil {
		return w.err
	}

	if n := len(rep.Monthly); n > 0 {
		err := f.AddChart(SheetMonthly, "F2", &excelize.Chart{
			Type: excelize.Line,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("%s!$B$1", SheetMonthly),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", SheetMonthly, n+1),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", SheetMonthly, n+1),
			}},
			Title: []excelize.RichTextRun{{Text: "Sales by month, USD"}},
		})
		if err != nil {
			return fmt.Errorf("report: monthly chart: %w", err)
		}
	}
	if n := len(rep.Fuel); n > 0 {
		err := f.AddChart(SheetFuel, "E2", &excelize.Chart{
			Type: excelize.Pie,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("%s!$B$1", SheetFuel),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", SheetFuel, n+1),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", SheetFuel, n+1),
			}},
			Title:    []excelize.RichTextRun{{Text: "Fuel type distribution"}},
			PlotArea: excelize.ChartPlotArea{ShowPercent: true},
		})
		if err != nil {
			return fmt.Errorf("report: fuel chart: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: mkdir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

func monthName(rep *Report) string {
	if rep.BestMonth == 0 {
		return ""
	}
	return rep.BestMonth.String()
}

// sheetWriter appends rows to sheets and keeps the first error.
type sheetWriter struct {
	f    *excelize.File
	bold int
	next map[string]int
	err  error
}

func (w *sheetWriter) row(sheet string, vals []any) {
	if w.err != nil {
		return
	}
	if w.next == nil {
		w.next = map[string]int{}
	}
	w.next[sheet]++
	cell, err := excelize.CoordinatesToCellName(1, w.next[sheet])
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &vals)
}

func (w *sheetWriter) rows(sheet string, rs [][]any) {
	for _, r := range rs {
		w.row(sheet, r)
	}
}

func (w *sheetWriter) blank(sheet string) { w.row(sheet, nil) }

func (w *sheetWriter) header(sheet string, vals []any) {
	w.row(sheet, vals)
	if w.err != nil || len(vals) == 0 {
		return
	}
	r := w.next[sheet]
	first, _ := excelize.CoordinatesToCellName(1, r)
	last, _ := excelize.CoordinatesToCellName(len(vals), r)
	w.err = w.f.SetCellStyle(sheet, first, last, w.bold)
}

func (w *sheetWriter) groups(sheet string, gs []Group) {
	w.header(sheet, groupHeader)
	for _, g := range gs {
		w.row(sheet, []any{g.Key, g.SalesUSD, g.Quantity, g.AvgPrice, g.Rows, g.Distinct})
	}
}
