// Package report computes the descriptive market report over a cleaned sales
// table: overview, monthly dynamics, distributions, top-N rankings and the
// position of one focus dealer. Rendering lives in text.go and xlsx.go.
package report

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"autosales/internal/schema"
	"autosales/internal/table"
	"autosales/pkg/records"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultTopN        = 10
	DefaultFocusDealer = "Mercur Auto"

	focusTopBrands     = 5
	focusMissingBrands = 5
)

// Options configure Build.
type Options struct {
	RunID       uuid.UUID
	TopN        int
	FocusDealer string
	// Now stamps the report. Zero means time.Now().
	Now time.Time
}

// Overview is the market-wide summary.
type Overview struct {
	SalesUSD  float64
	Quantity  int64
	AvgPrice  float64
	AvgSale   float64
	AvgEngine float64
	From, To  time.Time
	Dealers   int
	Brands    int
	Rows      int
	// AvgCarAge is measured against the year of the latest sale.
	AvgCarAge float64
}

// Month is one point of the monthly dynamics.
type Month struct {
	Month    time.Month
	SalesUSD float64
	Quantity int64
	AvgPrice float64
}

// Share is one slice of a categorical distribution, counted in rows.
type Share struct {
	Label   string
	Rows    int
	Percent float64
}

// Group is one line of a ranking.
type Group struct {
	Key      string
	SalesUSD float64
	Quantity int64
	AvgPrice float64
	Rows     int
	// Distinct counts distinct values of a secondary column (brands per
	// dealer, dealers per region). Zero when not applicable.
	Distinct int
}

// Correlation is the Pearson coefficient of two numeric columns.
type Correlation struct {
	A, B string
	R    float64
	N    int
}

// Focus describes the focus dealer against the market.
type Focus struct {
	Dealer    string
	Found     bool
	SalesUSD  float64
	Quantity  int64
	AvgPrice  float64
	AvgSale   float64
	AvgEngine float64
	ShareUSD  float64
	ShareQty  float64
	// Rank is the 1-based position by sales among all dealers.
	Rank          int
	Dealers       int
	TopBrands     []Group
	MissingBrands []Group
	// AbsentRegions are top-N regions by sales with no focus dealer rows.
	AbsentRegions []string
	Segments      []Share
}

// Report is the computed result of Build.
type Report struct {
	RunID     uuid.UUID
	Generated time.Time
	TopN      int

	Overview     Overview
	Monthly      []Month
	Fuel         []Share
	Transmission []Share
	Drive        []Share

	TopBrands  []Group
	TopModels  []Group
	TopDealers []Group
	TopRegions []Group
	Segments   []Group
	Classes    []Group

	Correlations []Correlation
	Focus        Focus

	BestMonth     time.Month
	PriciestBrand string
}

// Build computes the report over t. t is only read.
func Build(t *table.Table, opts Options) *Report {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.FocusDealer == "" {
		opts.FocusDealer = DefaultFocusDealer
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	rep := &Report{RunID: opts.RunID, Generated: opts.Now, TopN: opts.TopN}
	rep.Overview = overview(t.Rows)
	rep.Monthly = monthly(t.Rows)
	rep.Fuel = distribution(t.Rows, schema.FuelType)
	rep.Transmission = distribution(t.Rows, schema.TransmissionBox)
	rep.Drive = distribution(t.Rows, schema.DriveType)

	brands := groupBy(t.Rows, keyOf(schema.Brand), "")
	rep.TopBrands = head(brands, opts.TopN)
	rep.TopModels = head(groupBy(t.Rows, modelKey, ""), opts.TopN)
	dealers := groupBy(t.Rows, keyOf(schema.DealerName), schema.Brand)
	rep.TopDealers = head(dealers, opts.TopN)
	regions := groupBy(t.Rows, keyOf(schema.Region), schema.DealerName)
	rep.TopRegions = head(regions, opts.TopN)
	rep.Segments = groupBy(t.Rows, keyOf(schema.Segment2013), "")
	rep.Classes = head(groupBy(t.Rows, keyOf(schema.Class2013), ""), opts.TopN)

	rep.Correlations = correlations(t.Rows, []string{
		schema.YearOfRelease, schema.EngineVolume, schema.Quantity, schema.PriceUSD, schema.SaleUSD,
	})
	rep.Focus = focus(t.Rows, opts, rep.Overview, brands, dealers, rep.TopRegions)

	var best float64
	for _, m := range rep.Monthly {
		if rep.BestMonth == 0 || m.SalesUSD > best {
			rep.BestMonth, best = m.Month, m.SalesUSD
		}
	}
	byPrice := slices.Clone(brands)
	slices.SortStableFunc(byPrice, func(a, b Group) int {
		return cmp.Or(cmp.Compare(b.AvgPrice, a.AvgPrice), cmp.Compare(a.Key, b.Key))
	})
	if len(byPrice) > 0 {
		rep.PriciestBrand = byPrice[0].Key
	}
	return rep
}

// mean accumulates an average over present values only.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(r records.Record, col string) {
	if v, ok := r.Float(col); ok {
		m.sum += v
		m.n++
	}
}

func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

func overview(rows []*table.Row) Overview {
	var (
		o                Overview
		price, sale, eng mean
		latest           int
		releaseYears     []int64
	)
	dealers, brands := map[string]bool{}, map[string]bool{}
	o.Rows = len(rows)
	for _, r := range rows {
		if v, ok := r.V.Float(schema.SaleUSD); ok {
			o.SalesUSD += v
		}
		if q, ok := r.V.Int(schema.Quantity); ok {
			o.Quantity += q
		}
		price.add(r.V, schema.PriceUSD)
		sale.add(r.V, schema.SaleUSD)
		eng.add(r.V, schema.EngineVolume)
		if d, ok := r.V[schema.SaleDate].(time.Time); ok {
			if o.From.IsZero() || d.Before(o.From) {
				o.From = d
			}
			if d.After(o.To) {
				o.To = d
			}
			latest = max(latest, d.Year())
		}
		if s, ok := r.V.String(schema.DealerName); ok {
			dealers[s] = true
		}
		if s, ok := r.V.String(schema.Brand); ok {
			brands[s] = true
		}
		if y, ok := r.V.Int(schema.YearOfRelease); ok {
			releaseYears = append(releaseYears, y)
		}
	}
	o.AvgPrice, o.AvgSale, o.AvgEngine = price.value(), sale.value(), eng.value()
	o.Dealers, o.Brands = len(dealers), len(brands)
	if latest > 0 && len(releaseYears) > 0 {
		var age float64
		for _, y := range releaseYears {
			age += float64(int64(latest) - y)
		}
		o.AvgCarAge = age / float64(len(releaseYears))
	}
	return o
}

func monthly(rows []*table.Row) []Month {
	type acc struct {
		sales float64
		qty   int64
		price mean
	}
	by := map[time.Month]*acc{}
	for _, r := range rows {
		d, ok := r.V[schema.SaleDate].(time.Time)
		if !ok {
			continue
		}
		a := by[d.Month()]
		if a == nil {
			a = &acc{}
			by[d.Month()] = a
		}
		if v, ok := r.V.Float(schema.SaleUSD); ok {
			a.sales += v
		}
		if q, ok := r.V.Int(schema.Quantity); ok {
			a.qty += q
		}
		a.price.add(r.V, schema.PriceUSD)
	}
	out := make([]Month, 0, len(by))
	for m, a := range by {
		out = append(out, Month{Month: m, SalesUSD: a.sales, Quantity: a.qty, AvgPrice: a.price.value()})
	}
	slices.SortFunc(out, func(a, b Month) int { return cmp.Compare(a.Month, b.Month) })
	return out
}

// distribution counts rows per label of col, most frequent first. Missing
// cells are not counted.
func distribution(rows []*table.Row, col string) []Share {
	counts := map[string]int{}
	total := 0
	for _, r := range rows {
		if s, ok := r.V.String(col); ok {
			counts[s]++
			total++
		}
	}
	out := make([]Share, 0, len(counts))
	for l, n := range counts {
		out = append(out, Share{Label: l, Rows: n, Percent: percent(float64(n), float64(total))})
	}
	slices.SortFunc(out, func(a, b Share) int {
		return cmp.Or(cmp.Compare(b.Rows, a.Rows), cmp.Compare(a.Label, b.Label))
	})
	return out
}

func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

func keyOf(col string) func(records.Record) (string, bool) {
	return func(r records.Record) (string, bool) { return r.String(col) }
}

func modelKey(r records.Record) (string, bool) {
	b, ok1 := r.String(schema.Brand)
	m, ok2 := r.String(schema.Model)
	if !ok1 || !ok2 {
		return "", false
	}
	return b + " " + m, true
}

// groupBy aggregates rows by key, sorted by sales descending then key. Rows
// without a key are left out. distinctCol, when set, fills Group.Distinct.
func groupBy(rows []*table.Row, key func(records.Record) (string, bool), distinctCol string) []Group {
	type acc struct {
		g        Group
		price    mean
		distinct map[string]bool
	}
	by := map[string]*acc{}
	for _, r := range rows {
		k, ok := key(r.V)
		if !ok {
			continue
		}
		a := by[k]
		if a == nil {
			a = &acc{g: Group{Key: k}, distinct: map[string]bool{}}
			by[k] = a
		}
		a.g.Rows++
		if v, ok := r.V.Float(schema.SaleUSD); ok {
			a.g.SalesUSD += v
		}
		if q, ok := r.V.Int(schema.Quantity); ok {
			a.g.Quantity += q
		}
		a.price.add(r.V, schema.PriceUSD)
		if distinctCol != "" {
			if s, ok := r.V.String(distinctCol); ok {
				a.distinct[s] = true
			}
		}
	}
	out := make([]Group, 0, len(by))
	for _, a := range by {
		a.g.AvgPrice = a.price.value()
		a.g.Distinct = len(a.distinct)
		out = append(out, a.g)
	}
	slices.SortFunc(out, func(a, b Group) int {
		return cmp.Or(cmp.Compare(b.SalesUSD, a.SalesUSD), cmp.Compare(a.Key, b.Key))
	})
	return out
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// correlations returns the pairwise Pearson coefficients of cols, using the
// rows where both values are present, strongest first. Pairs with fewer than
// two observations or a constant column are left out.
func correlations(rows []*table.Row, cols []string) []Correlation {
	var out []Correlation
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			var xs, ys []float64
			for _, r := range rows {
				x, ok1 := r.V.Float(cols[i])
				y, ok2 := r.V.Float(cols[j])
				if ok1 && ok2 {
					xs, ys = append(xs, x), append(ys, y)
				}
			}
			if rv, ok := pearson(xs, ys); ok {
				out = append(out, Correlation{A: cols[i], B: cols[j], R: rv, N: len(xs)})
			}
		}
	}
	slices.SortStableFunc(out, func(a, b Correlation) int {
		return cmp.Compare(math.Abs(b.R), math.Abs(a.R))
	})
	return out
}

func pearson(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	if n < 2 {
		return 0, false
	}
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx, my = mx/n, my/n
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}

func focus(rows []*table.Row, opts Options, market Overview, brands, dealers, topRegions []Group) Focus {
	f := Focus{Dealer: opts.FocusDealer, Dealers: len(dealers)}
	var mine []*table.Row
	for _, r := range rows {
		if s, _ := r.V.String(schema.DealerName); s == opts.FocusDealer {
			mine = append(mine, r)
		}
	}
	if len(mine) == 0 {
		return f
	}
	f.Found = true

	o := overview(mine)
	f.SalesUSD, f.Quantity = o.SalesUSD, o.Quantity
	f.AvgPrice, f.AvgSale, f.AvgEngine = o.AvgPrice, o.AvgSale, o.AvgEngine
	f.ShareUSD = percent(f.SalesUSD, market.SalesUSD)
	f.ShareQty = percent(float64(f.Quantity), float64(market.Quantity))
	for i, d := range dealers {
		if d.Key == opts.FocusDealer {
			f.Rank = i + 1
			break
		}
	}

	own := groupBy(mine, keyOf(schema.Brand), "")
	f.TopBrands = head(own, focusTopBrands)
	carried := map[string]bool{}
	for _, g := range own {
		carried[g.Key] = true
	}
	for _, g := range brands {
		if !carried[g.Key] {
			f.MissingBrands = append(f.MissingBrands, g)
			if len(f.MissingBrands) == focusMissingBrands {
				break
			}
		}
	}

	present := map[string]bool{}
	for _, r := range mine {
		if s, ok := r.V.String(schema.Region); ok {
			present[s] = true
		}
	}
	for _, g := range topRegions {
		if !present[g.Key] {
			f.AbsentRegions = append(f.AbsentRegions, g.Key)
		}
	}
	f.Segments = distribution(mine, schema.Segment2013)
	return f
}
