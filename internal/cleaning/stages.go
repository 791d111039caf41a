package cleaning

import (
	"fmt"

	"autosales/internal/parser/numbers"
	"autosales/internal/schema"
	"autosales/internal/table"
	"autosales/internal/transformer"
	"autosales/pkg/records"
)

// text returns the cell as a string, "" for missing.
func text(r records.Record, col string) string {
	s, _ := r.String(col)
	return s
}

// mapColumn replaces every cell of col with f(cell text).
func mapColumn(t *table.Table, col string, f func(string) string) {
	for _, r := range t.Rows {
		r.V[col] = f(text(r.V, col))
	}
}

// Country maps country_of_origin to alpha-3 codes under the given policy.
func Country(policy CountryPolicy, st *Stats) transformer.Stage {
	return transformer.Func{
		StageName: "country",
		Columns:   []string{schema.CountryOfOrigin},
		Fn: func(t *table.Table) error {
			for _, r := range t.Rows {
				name := text(r.V, schema.CountryOfOrigin)
				code, ok := CountryCode(name)
				if !ok {
					if policy != CountryUnknown {
						return &UnmappedValueError{Column: schema.CountryOfOrigin, Value: name, Line: r.Line}
					}
					st.CountryUnmapped++
					code = Unknown
				}
				r.V[schema.CountryOfOrigin] = code
			}
			return nil
		},
	}
}

// Fuel encodes fuel_type.
func Fuel() transformer.Stage {
	return transformer.Func{StageName: "fuel", Columns: []string{schema.FuelType}, Fn: func(t *table.Table) error {
		mapColumn(t, schema.FuelType, EncodeFuel)
		return nil
	}}
}

// Drive encodes drive_type.
func Drive() transformer.Stage {
	return transformer.Func{StageName: "drive", Columns: []string{schema.DriveType}, Fn: func(t *table.Table) error {
		mapColumn(t, schema.DriveType, EncodeDrive)
		return nil
	}}
}

// Quantity parses quantity into int64, defaulting to 1.
func Quantity(loc numbers.Locale, st *Stats) transformer.Stage {
	return transformer.Func{StageName: "quantity", Columns: []string{schema.Quantity}, Fn: func(t *table.Table) error {
		for _, r := range t.Rows {
			q, filled := ParseQuantity(text(r.V, schema.Quantity), loc)
			if filled {
				st.QuantityFilled++
			}
			switch {
			case q < 0:
				st.Returns++
			case q > LargeBulkQuantity:
				st.LargeBulk++
				st.Bulk++
			case q > BulkQuantity:
				st.Bulk++
			}
			r.V[schema.Quantity] = q
		}
		return nil
	}}
}

// Money parses a monetary column into float64, clamping negatives to zero.
func Money(col string, loc numbers.Locale, st *Stats) transformer.Stage {
	invalid, clamped := &st.PriceInvalid, &st.PriceClamped
	if col == schema.SaleUSD {
		invalid, clamped = &st.SaleInvalid, &st.SaleClamped
	}
	return transformer.Func{StageName: "money:" + col, Columns: []string{col}, Fn: func(t *table.Table) error {
		for _, r := range t.Rows {
			raw := text(r.V, col)
			v, ok, c := ParseMoney(raw, loc)
			if !ok {
				if raw != "" {
					*invalid++
				}
				r.V[col] = nil
				continue
			}
			if c {
				*clamped++
			}
			r.V[col] = v
		}
		return nil
	}}
}

// Audit counts rows where price×quantity and sale disagree. It reads only.
func Audit(st *Stats) transformer.Stage {
	cols := []string{schema.PriceUSD, schema.Quantity, schema.SaleUSD}
	return transformer.Func{StageName: "audit", Columns: cols, Fn: func(t *table.Table) error {
		for _, r := range t.Rows {
			p, ok1 := r.V.Float(schema.PriceUSD)
			q, ok2 := r.V.Int(schema.Quantity)
			s, ok3 := r.V.Float(schema.SaleUSD)
			if ok1 && ok2 && ok3 && Discrepant(p, q, s) {
				st.Discrepancies++
			}
		}
		return nil
	}}
}

// SaleDates derives sale_date from year and month.
func SaleDates(st *Stats) transformer.Stage {
	return transformer.Func{StageName: "sale-date", Columns: []string{schema.Year, schema.Month}, Fn: func(t *table.Table) error {
		t.AddColumn(schema.SaleDate)
		for _, r := range t.Rows {
			d, ok := SaleDate(text(r.V, schema.Year), text(r.V, schema.Month))
			if !ok {
				st.DatesFailed++
				r.V[schema.SaleDate] = nil
				continue
			}
			st.DatesCreated++
			r.V[schema.SaleDate] = d
		}
		return nil
	}}
}

// Dealer standardizes dealer_name. Missing stays missing.
func Dealer(st *Stats) transformer.Stage {
	return transformer.Func{StageName: "dealer", Columns: []string{schema.DealerName}, Fn: func(t *table.Table) error {
		for _, r := range t.Rows {
			orig := text(r.V, schema.DealerName)
			name, ok := StandardizeDealer(orig)
			if !ok {
				r.V[schema.DealerName] = nil
				continue
			}
			if name != orig {
				st.DealersChanged++
			}
			r.V[schema.DealerName] = name
		}
		return nil
	}}
}

// Engine cleans engine_volume, then fills the gaps with the brand median of
// the cleaned values. Brand and model are optional: without them the model
// rules do not apply, and without brand there is no median fill.
func Engine(st *Stats) transformer.Stage {
	return transformer.Func{StageName: "engine-volume", Columns: []string{schema.EngineVolume}, Fn: func(t *table.Table) error {
		byBrand := make(map[string][]float64)
		for _, r := range t.Rows {
			raw := text(r.V, schema.EngineVolume)
			brand := text(r.V, schema.Brand)
			if raw != "" {
				st.EngineInput++
			}
			v, ok := CleanEngineVolume(EngineRow{Volume: raw, Brand: brand, Model: text(r.V, schema.Model)})
			if !ok {
				if raw != "" {
					st.EngineLost++
				}
				r.V[schema.EngineVolume] = nil
				continue
			}
			r.V[schema.EngineVolume] = v
			if brand != "" {
				byBrand[brand] = append(byBrand[brand], v)
			}
		}
		if !t.Has(schema.Brand) {
			return nil
		}
		medians := BrandMedians(byBrand)
		for _, r := range t.Rows {
			if !r.V.Missing(schema.EngineVolume) {
				continue
			}
			if m, ok := medians[text(r.V, schema.Brand)]; ok {
				r.V[schema.EngineVolume] = m
				st.EngineFilled++
			}
		}
		return nil
	}}
}

// AreaRegion corrects area, and region when the table has it.
func AreaRegion() transformer.Stage {
	return transformer.Func{StageName: "location", Columns: []string{schema.Area}, Fn: func(t *table.Table) error {
		hasRegion := t.Has(schema.Region)
		for _, r := range t.Rows {
			l := CorrectLocation(LocationOf(r.V))
			r.V[schema.Area] = nilIfEmpty(l.Area)
			if hasRegion {
				r.V[schema.Region] = nilIfEmpty(l.Region)
			}
		}
		return nil
	}}
}

// LocationOf builds the area/region row view of r.
func LocationOf(r records.Record) Location {
	return Location{Area: text(r, schema.Area), Region: text(r, schema.Region)}
}

// Transmission classifies transmission_box.
func Transmission(st *Stats) transformer.Stage {
	return transformer.Func{StageName: "transmission", Columns: []string{schema.TransmissionBox}, Fn: func(t *table.Table) error {
		mapColumn(t, schema.TransmissionBox, func(s string) string {
			c := ClassifyTransmission(s)
			if c == TransmissionUnkn {
				st.TransmissionUnknown++
			}
			return c
		})
		return nil
	}}
}

// Categorical stringifies col (missing becomes Unknown) and records its label
// set on the table.
func Categorical(col string) transformer.Stage {
	return transformer.Func{StageName: "categorical:" + col, Columns: []string{col}, Fn: func(t *table.Table) error {
		counts := make(map[string]int)
		for _, r := range t.Rows {
			l := CategoryLabel(r.V[col])
			r.V[col] = l
			counts[l]++
		}
		t.SetCategory(col, counts)
		return nil
	}}
}

// CategoryLabel renders a categorical cell; missing becomes Unknown.
func CategoryLabel(v any) string {
	if s, ok := records.Text(v); ok {
		return s
	}
	if v != nil {
		if _, isStr := v.(string); !isStr {
			return fmt.Sprint(v)
		}
	}
	return Unknown
}

// ReleaseYear sanitizes year_of_release into int64 or missing.
func ReleaseYear(st *Stats) transformer.Stage {
	return transformer.Func{StageName: "year-of-release", Columns: []string{schema.YearOfRelease}, Fn: func(t *table.Table) error {
		for _, r := range t.Rows {
			y, ok := SanitizeYear(text(r.V, schema.YearOfRelease))
			if !ok {
				if !r.V.Missing(schema.YearOfRelease) {
					st.YearsInvalid++
				}
				r.V[schema.YearOfRelease] = nil
				continue
			}
			r.V[schema.YearOfRelease] = y
		}
		return nil
	}}
}

// RoundMoneyColumns rounds price_USD and sale_USD to cents.
func RoundMoneyColumns() transformer.Stage {
	cols := []string{schema.PriceUSD, schema.SaleUSD}
	return transformer.Func{StageName: "round-money", Columns: cols, Fn: func(t *table.Table) error {
		for _, r := range t.Rows {
			for _, c := range cols {
				if v, ok := r.V.Float(c); ok {
					r.V[c] = RoundMoney(v)
				}
			}
		}
		return nil
	}}
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
