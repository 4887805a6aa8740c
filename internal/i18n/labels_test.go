package i18n

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
		err  bool
	}{
		{"", nil, false},
		{"   ", nil, false},
		{"80", ptr(80), false},
		{" 14.04 ", ptr(14.04), false},
		{"۸۰", ptr(80), false},
		{"۱۴٫۰۴", ptr(14.04), false},
		{"٣٠", ptr(30), false},
		{"12,5", ptr(12.5), false},
		{"0,125", ptr(0.125), false},
		{"1,000", nil, true},
		{"1,234.5", nil, true},
		{"1,2,3", nil, true},
		{"۱٬۰۰۰", nil, true},
		{"1٬000", nil, true},
		{"1,5٫2", nil, true},
		{"abc", nil, true},
		{"1e400", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseNumber(tt.in)
		if tt.err {
			if !errors.Is(err, ErrInvalidNumber) {
				t.Errorf("ParseNumber(%q): got err %v, want ErrInvalidNumber", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseNumber(%q): %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, deref(got), deref(tt.want))
		}
	}
}

func TestCatalogComplete(t *testing.T) {
	c := DefaultCatalog()
	for _, loc := range []Locale{Persian, English} {
		l, ok := c[loc]
		if !ok {
			t.Fatalf("missing locale %s", loc)
		}
		v := reflect.ValueOf(l)
		for i := 0; i < v.NumField(); i++ {
			if v.Field(i).String() == "" {
				t.Errorf("%s: empty label %s", loc, v.Type().Field(i).Name)
			}
		}
	}
}

func TestCatalogIsolated(t *testing.T) {
	a, b := DefaultCatalog(), DefaultCatalog()
	a[English] = LabelSet{}
	if b[English].Title == "" {
		t.Fatal("catalogs share state")
	}
}

func TestMatch(t *testing.T) {
	c := DefaultCatalog()
	tests := []struct {
		query, accept string
		fallback      Locale
		want          Locale
	}{
		{"en", "fa-IR", Persian, English},
		{"fa", "", English, Persian},
		{"", "", Persian, Persian},
		{"", "en-US,en;q=0.9", Persian, English},
		{"", "fa-IR,fa;q=0.9,en;q=0.5", English, Persian},
		{"", "de-DE", English, English},
		{"xx", "", English, English},
		{"", "!!!", Persian, Persian},
	}
	for _, tt := range tests {
		if got := c.Match(tt.query, tt.accept, tt.fallback); got != tt.want {
			t.Errorf("Match(%q, %q, %s) = %s, want %s", tt.query, tt.accept, tt.fallback, got, tt.want)
		}
	}
}

func TestLookupFallback(t *testing.T) {
	c := DefaultCatalog()
	if got := c.Lookup("de").Title; got != c[English].Title {
		t.Errorf("unexpected fallback title %q", got)
	}
}

func ptr(v float64) *float64 { return &v }

func deref(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
