package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const rule = "============================================================"

// WriteText renders rep as a plain-text report. Amounts are grouped by
// thousands.
func WriteText(w io.Writer, rep *Report) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	section := func(title string) {
		p.Fprintf(tw, "\n%s\n%s\n%s\n", rule, title, rule)
	}

	o := rep.Overview
	p.Fprintf(tw, "Run %s, generated %s\n", rep.RunID, rep.Generated.Format("2006-01-02 15:04:05"))

	section("MARKET OVERVIEW")
	p.Fprintf(tw, "Total sales:\t$%.0f\n", o.SalesUSD)
	p.Fprintf(tw, "Vehicles sold:\t%d\n", o.Quantity)
	p.Fprintf(tw, "Average price:\t$%.0f\n", o.AvgPrice)
	p.Fprintf(tw, "Average deal:\t$%.0f\n", o.AvgSale)
	if !o.From.IsZero() {
		p.Fprintf(tw, "Period:\t%s - %s\n", o.From.Format("2006-01-02"), o.To.Format("2006-01-02"))
	}
	p.Fprintf(tw, "Dealers:\t%d\n", o.Dealers)
	p.Fprintf(tw, "Brands:\t%d\n", o.Brands)
	p.Fprintf(tw, "Rows:\t%d\n", o.Rows)

	section("MONTHLY DYNAMICS")
	p.Fprintf(tw, "Month\tSales USD\tQuantity\tAvg price\n")
	for _, m := range rep.Monthly {
		p.Fprintf(tw, "%s\t%.0f\t%d\t%.0f\n", m.Month, m.SalesUSD, m.Quantity, m.AvgPrice)
	}

	for _, d := range []struct {
		title  string
		shares []Share
	}{
		{"FUEL TYPE", rep.Fuel},
		{"TRANSMISSION", rep.Transmission},
		{"DRIVE TYPE", rep.Drive},
	} {
		section(d.title)
		writeShares(p, tw, d.shares)
	}

	section(fmt.Sprintf("TOP-%d BRANDS", rep.TopN))
	writeGroups(p, tw, "Brand", "", rep.TopBrands)
	section(fmt.Sprintf("TOP-%d MODELS", rep.TopN))
	writeGroups(p, tw, "Model", "", rep.TopModels)
	section(fmt.Sprintf("TOP-%d DEALERS", rep.TopN))
	writeGroups(p, tw, "Dealer", "Brands", rep.TopDealers)
	section(fmt.Sprintf("TOP-%d REGIONS", rep.TopN))
	writeGroups(p, tw, "Region", "Dealers", rep.TopRegions)
	section("SEGMENTS")
	writeGroups(p, tw, "Segment", "", rep.Segments)
	section(fmt.Sprintf("TOP-%d CLASSES", rep.TopN))
	writeGroups(p, tw, "Class", "", rep.Classes)

	section("CORRELATIONS")
	for _, c := range head(rep.Correlations, 10) {
		p.Fprintf(tw, "%s ~ %s\t%.2f\t(n=%d)\n", c.A, c.B, c.R, c.N)
	}

	writeFocus(p, tw, rep.Focus)

	section("SUMMARY")
	if len(rep.TopBrands) > 0 {
		p.Fprintf(tw, "Best-selling brand:\t%s\n", rep.TopBrands[0].Key)
	}
	if rep.PriciestBrand != "" {
		p.Fprintf(tw, "Most expensive brand (avg price):\t%s\n", rep.PriciestBrand)
	}
	if rep.BestMonth != 0 {
		p.Fprintf(tw, "Best month:\t%s\n", rep.BestMonth)
	}
	p.Fprintf(tw, "Average car age:\t%.1f years\n", o.AvgCarAge)
	return tw.Flush()
}

func writeShares(p *message.Printer, w io.Writer, shares []Share) {
	for _, s := range shares {
		p.Fprintf(w, "%s\t%d\t%.1f%%\n", s.Label, s.Rows, s.Percent)
	}
}

func writeGroups(p *message.Printer, w io.Writer, keyTitle, distinctTitle string, gs []Group) {
	hdr := []string{keyTitle, "Sales USD", "Quantity", "Avg price", "Rows"}
	if distinctTitle != "" {
		hdr = append(hdr, distinctTitle)
	}
	fmt.Fprintln(w, strings.Join(hdr, "\t"))
	for _, g := range gs {
		p.Fprintf(w, "%s\t%.0f\t%d\t%.0f\t%d", g.Key, g.SalesUSD, g.Quantity, g.AvgPrice, g.Rows)
		if distinctTitle != "" {
			p.Fprintf(w, "\t%d", g.Distinct)
		}
		fmt.Fprintln(w)
	}
}

func writeFocus(p *message.Printer, w io.Writer, f Focus) {
	p.Fprintf(w, "\n%s\nFOCUS DEALER: %s\n%s\n", rule, f.Dealer, rule)
	if !f.Found {
		p.Fprintf(w, "No rows for %q in the dataset.\n", f.Dealer)
		return
	}
	p.Fprintf(w, "Sales:\t$%.0f\n", f.SalesUSD)
	p.Fprintf(w, "Vehicles sold:\t%d\n", f.Quantity)
	p.Fprintf(w, "Average price:\t$%.0f\n", f.AvgPrice)
	p.Fprintf(w, "Market share (USD):\t%.2f%%\n", f.ShareUSD)
	p.Fprintf(w, "Market share (units):\t%.2f%%\n", f.ShareQty)
	p.Fprintf(w, "Rank by sales:\t%d of %d\n", f.Rank, f.Dealers)
	p.Fprintf(w, "Average deal:\t$%.0f\n", f.AvgSale)
	p.Fprintf(w, "Average engine volume:\t%.2f\n", f.AvgEngine)

	fmt.Fprintln(w, "\nTop brands:")
	writeGroups(p, w, "Brand", "", f.TopBrands)
	fmt.Fprintln(w, "\nPopular brands not carried:")
	for _, g := range f.MissingBrands {
		p.Fprintf(w, "%s\t$%.0f\n", g.Key, g.SalesUSD)
	}
	if len(f.AbsentRegions) > 0 {
		p.Fprintf(w, "\nTop regions without presence:\t%s\n", strings.Join(f.AbsentRegions, ", "))
	}
	fmt.Fprintln(w, "\nSegments:")
	writeShares(p, w, f.Segments)
}

// SaveText writes the text report to path, creating parent directories.
func SaveText(path string, rep *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: mkdir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	if err := WriteText(f, rep); err != nil {
		f.Close()
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return f.Close()
}
