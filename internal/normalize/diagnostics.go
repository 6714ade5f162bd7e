package normalize

// Diagnostics counts records that failed normalization. The engine never
// raises on messy input; it normalizes to zero values and reports the
// damage here so callers can monitor data quality.
type Diagnostics struct {
	CurrencyParseFailures int `json:"currency_parse_failures"`
	DateParseFailures     int `json:"date_parse_failures"`
	DroppedPayments       int `json:"dropped_payments"`
}

// Merge accumulates another diagnostics set into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.CurrencyParseFailures += other.CurrencyParseFailures
	d.DateParseFailures += other.DateParseFailures
	d.DroppedPayments += other.DroppedPayments
}

// IsClean reports whether no failures were recorded.
func (d Diagnostics) IsClean() bool {
	return d == Diagnostics{}
}
