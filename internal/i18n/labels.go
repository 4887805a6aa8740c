package i18n

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

type Locale string

const (
	Persian Locale = "fa"
	English Locale = "en"
)

var ErrInvalidNumber = errors.New("invalid number")

// LabelSet is every user-facing string of one locale.
type LabelSet struct {
	Language      string `json:"language"`
	Direction     string `json:"direction"`
	PageTitle     string `json:"page_title"`
	Title         string `json:"title"`
	Desc          string `json:"desc"`
	BigD          string `json:"big_d"`
	SmallD        string `json:"small_d"`
	Length        string `json:"length"`
	Angle         string `json:"angle"`
	Calculate     string `json:"calculate"`
	AngleResult   string `json:"angle_result"`
	AngleDMS      string `json:"angle_dms"`
	LengthResult  string `json:"length_result"`
	BigDResult    string `json:"big_d_result"`
	SmallDResult  string `json:"small_d_result"`
	Warning       string `json:"warning"`
	DivisionZero  string `json:"division_zero"`
	NonPhysical   string `json:"non_physical"`
	InvalidNumber string `json:"invalid_number"`
	Error         string `json:"error"`
	ModelTitle    string `json:"model_title"`
}

// Catalog maps a locale to its labels. Build one at startup and hand it to the handlers.
type Catalog map[Locale]LabelSet

func DefaultCatalog() Catalog {
	return Catalog{
		Persian: {
			Language:      "فارسی",
			Direction:     "rtl",
			PageTitle:     "Cone Turning Calculator | محاسبه مخروط تراشی",
			Title:         "🔧 محاسبه زاویه و ابعاد مخروط تراشی",
			Desc:          "برای محاسبه، سه مقدار را وارد کنید، مقدار چهارم محاسبه و مدل سه‌بعدی مخروط نمایش داده می‌شود.",
			BigD:          "قطر بزرگ (D) بر حسب mm",
			SmallD:        "قطر کوچک (d) بر حسب mm",
			Length:        "طول مخروط (L) بر حسب mm",
			Angle:         "زاویه ساپورت (α/2) بر حسب درجه",
			Calculate:     "🔍 محاسبه",
			AngleResult:   "✅ زاویه ساپورت: ",
			AngleDMS:      "🧭 معادل: ",
			LengthResult:  "✅ طول مخروط: ",
			BigDResult:    "✅ قطر بزرگ: ",
			SmallDResult:  "✅ قطر کوچک: ",
			Warning:       "⚠️ لطفاً دقیقاً سه مقدار وارد کنید.",
			DivisionZero:  "❌ تقسیم بر صفر: طول مخروط یا زاویه ساپورت نباید صفر باشد.",
			NonPhysical:   "❌ این ابعاد مخروط ممکن نیست: قطر بزرگ باید از قطر کوچک بیشتر و زاویه بین ۰ تا ۹۰ درجه باشد.",
			InvalidNumber: "❌ مقدار وارد شده عدد معتبر نیست:",
			Error:         "❌ خطا در محاسبه:",
			ModelTitle:    "🎥 مدل سه‌بعدی مخروط تراشی",
		},
		English: {
			Language:      "English",
			Direction:     "ltr",
			PageTitle:     "Cone Turning Calculator | محاسبه مخروط تراشی",
			Title:         "🔧 Cone Turning Angle & Dimension Calculator",
			Desc:          "Enter any three values to calculate the fourth and visualize a 3D cone model.",
			BigD:          "Large Diameter (D) in mm",
			SmallD:        "Small Diameter (d) in mm",
			Length:        "Cone Length (L) in mm",
			Angle:         "Support Angle (α/2) in degrees",
			Calculate:     "🔍 Calculate",
			AngleResult:   "✅ Support angle: ",
			AngleDMS:      "🧭 Equivalent: ",
			LengthResult:  "✅ Cone length: ",
			BigDResult:    "✅ Large diameter: ",
			SmallDResult:  "✅ Small diameter: ",
			Warning:       "⚠️ Please enter exactly three values.",
			DivisionZero:  "❌ Division by zero: cone length or support angle must not be zero.",
			NonPhysical:   "❌ Impossible cone: the large diameter must exceed the small one and the angle must lie between 0 and 90 degrees.",
			InvalidNumber: "❌ Not a valid number:",
			Error:         "❌ Calculation error:",
			ModelTitle:    "🎥 3D Cone Model",
		},
	}
}

// Lookup returns the labels for loc, falling back to English.
func (c Catalog) Lookup(loc Locale) LabelSet {
	if l, ok := c[loc]; ok {
		return l
	}
	return c[English]
}

// Match picks a locale. An explicit query value wins over the Accept-Language header.
func (c Catalog) Match(query, acceptLanguage string, fallback Locale) Locale {
	if _, ok := c[Locale(query)]; ok {
		return Locale(query)
	}
	if acceptLanguage == "" {
		return fallback
	}
	tags := make([]language.Tag, 0, len(c)+1)
	locales := make([]Locale, 0, len(c)+1)
	// the fallback goes first so an unmatched header resolves to it
	if _, ok := c[fallback]; ok {
		tags = append(tags, language.Make(string(fallback)))
		locales = append(locales, fallback)
	}
	for _, loc := range []Locale{Persian, English} {
		if _, ok := c[loc]; !ok || loc == fallback {
			continue
		}
		tags = append(tags, language.Make(string(loc)))
		locales = append(locales, loc)
	}
	if len(tags) == 0 {
		return fallback
	}
	_, idx, conf := language.NewMatcher(tags).Match(parseAccept(acceptLanguage)...)
	if conf == language.No {
		return fallback
	}
	return locales[idx]
}

func parseAccept(header string) []language.Tag {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return nil
	}
	return tags
}

var digits = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"٫", ".",
)

// ParseNumber reads an optional form value. Blank text is the unknown and yields nil.
// A single comma is a decimal separator unless it could be a thousands group.
// Grouping separators are rejected rather than guessed.
func ParseNumber(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, ok := decimalComma(digits.Replace(s))
	if !ok {
		return nil, fmt.Errorf("%w: %q is ambiguous", ErrInvalidNumber, s)
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return &v, nil
}

// decimalComma rewrites "12,5" to "12.5". It fails on "1,000", "1,234.5",
// "1,2,3" and on the Arabic thousands separator.
func decimalComma(s string) (string, bool) {
	if strings.Contains(s, "٬") {
		return "", false
	}
	i := strings.IndexByte(s, ',')
	if i < 0 {
		return s, true
	}
	if strings.Count(s, ",") > 1 || strings.ContainsRune(s, '.') {
		return "", false
	}
	whole := strings.TrimLeft(s[:i], "+-")
	if frac := s[i+1:]; len(frac) == 3 && whole != "" && whole != "0" {
		return "", false
	}
	return s[:i] + "." + s[i+1:], true
}
