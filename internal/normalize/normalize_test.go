package normalize

import (
	"testing"
	"time"
)

func TestParseCurrency(t *testing.T) {
	cases := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"SAR 1,234.56", 1234.56, true},
		{"SAR 1.08M", 1080000, true},
		{"SAR 12K", 12000, true},
		{"SAR 12k", 12000, true},
		{"", 0, true},
		{"   ", 0, true},
		{"1234.5", 1234.5, true},
		{"USD 2,000,000", 2000000, true},
		{"SAR -150.25", -150.25, true},
		{"SAR .5", 0.5, true},
		{"n/a", 0, false},
		{"SAR", 0, false},
		{"SAR 1.2.3", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseCurrency(tc.input)
		if ok != tc.ok {
			t.Errorf("ParseCurrency(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseCurrency(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParseCurrencySuffixBeforeStripping(t *testing.T) {
	// A suffixed amount must scale, never silently truncate.
	got, ok := ParseCurrency("SAR 1.08M")
	if !ok {
		t.Fatalf("parse failed")
	}
	if got == 1.08 {
		t.Fatalf("suffix multiplier lost: got %v", got)
	}
	if got != 1080000 {
		t.Fatalf("got %v, want 1080000", got)
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"5 Mar 2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"15 Jan 2023", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-05T14:22:09Z", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-05 14:22:09", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"05/03/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"not a date", time.Time{}, false},
		{"32 Jan 2023", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.input)
		if ok != tc.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			continue
		}
		if ok && !got.Equal(tc.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := DaysBetween(from, from.AddDate(0, 0, 45)); got != 45 {
		t.Fatalf("DaysBetween = %d, want 45", got)
	}
	if got := DaysBetween(from, from.Add(36*time.Hour)); got != 1 {
		t.Fatalf("partial day should floor: got %d, want 1", got)
	}
}

func TestDiagnosticsMerge(t *testing.T) {
	var d Diagnostics
	if !d.IsClean() {
		t.Fatalf("zero diagnostics should be clean")
	}
	d.Merge(Diagnostics{CurrencyParseFailures: 2, DroppedPayments: 1})
	d.Merge(Diagnostics{DateParseFailures: 3})
	if d.CurrencyParseFailures != 2 || d.DateParseFailures != 3 || d.DroppedPayments != 1 {
		t.Fatalf("unexpected merge result: %+v", d)
	}
	if d.IsClean() {
		t.Fatalf("non-zero diagnostics should not be clean")
	}
}
