package cleaning

// Stats collects the anomaly counters of one cleaning run. Stages only ever
// increment fields, so a zero Stats is ready to use.
type Stats struct {
	CountryUnmapped int `json:"country_unmapped"`

	QuantityFilled int `json:"quantity_filled"`
	Returns        int `json:"returns"`
	Bulk           int `json:"bulk_over_10"`
	LargeBulk      int `json:"bulk_over_50"`

	PriceInvalid  int `json:"price_invalid"`
	PriceClamped  int `json:"price_clamped"`
	SaleInvalid   int `json:"sale_invalid"`
	SaleClamped   int `json:"sale_clamped"`
	Discrepancies int `json:"price_sale_discrepancies"`

	DatesCreated int `json:"dates_created"`
	DatesFailed  int `json:"dates_failed"`

	DealersChanged int `json:"dealers_changed"`

	EngineInput  int `json:"engine_input"`
	EngineLost   int `json:"engine_lost"`
	EngineFilled int `json:"engine_filled"`

	TransmissionUnknown int `json:"transmission_unknown"`

	YearsInvalid int `json:"years_invalid"`
}

// Counter is one named anomaly count.
type Counter struct {
	Kind string
	N    int
}

// Counters lists the non-zero counters in a fixed order, named as in JSON.
func (s Stats) Counters() []Counter {
	all := []Counter{
		{"country_unmapped", s.CountryUnmapped},
		{"quantity_filled", s.QuantityFilled},
		{"returns", s.Returns},
		{"bulk_over_10", s.Bulk},
		{"bulk_over_50", s.LargeBulk},
		{"price_invalid", s.PriceInvalid},
		{"price_clamped", s.PriceClamped},
		{"sale_invalid", s.SaleInvalid},
		{"sale_clamped", s.SaleClamped},
		{"price_sale_discrepancies", s.Discrepancies},
		{"dates_failed", s.DatesFailed},
		{"dealers_changed", s.DealersChanged},
		{"engine_lost", s.EngineLost},
		{"engine_filled", s.EngineFilled},
		{"transmission_unknown", s.TransmissionUnknown},
		{"years_invalid", s.YearsInvalid},
	}
	out := all[:0]
	for _, c := range all {
		if c.N > 0 {
			out = append(out, c)
		}
	}
	return out
}
