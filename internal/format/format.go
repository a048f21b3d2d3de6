// Package format turns raw values into the display strings shown to users.
package format

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	// DefaultLocale is the locale used when none is configured
	DefaultLocale = "es-CL"

	// InvalidDate is shown for empty or unparseable dates
	InvalidDate = "Fecha inválida"
)

// Layouts accepted by ParseDate, tried in order
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Options configures a Formatter
type Options struct {
	Locale         string
	CurrencySymbol string
	// FractionDigits is the currency display precision (0 for CLP)
	FractionDigits int
}

// Formatter formats currency amounts, dates and labels for one locale
type Formatter struct {
	printer  *message.Printer
	symbol   string
	decimals int
}

// New creates a Formatter. An unknown locale falls back to DefaultLocale.
func New(opts Options) *Formatter {
	tag, err := language.Parse(opts.Locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}

	symbol := opts.CurrencySymbol
	if symbol == "" {
		symbol = "$"
	}

	decimals := opts.FractionDigits
	if decimals < 0 {
		decimals = 0
	}

	return &Formatter{
		printer:  message.NewPrinter(tag),
		symbol:   symbol,
		decimals: decimals,
	}
}

// Default returns a Formatter for Chilean pesos
func Default() *Formatter {
	return New(Options{Locale: DefaultLocale, CurrencySymbol: "$"})
}

// Currency formats an amount rounded to the display precision, e.g. "$12.346"
func (f *Formatter) Currency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return f.symbol + "0"
	}

	scale := math.Pow(10, float64(f.decimals))
	rounded := math.Round(amount*scale) / scale
	if math.IsInf(rounded, 0) {
		rounded = math.Round(amount)
	}

	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}

	digits := f.printer.Sprintf("%v", number.Decimal(rounded,
		number.MinFractionDigits(f.decimals),
		number.MaxFractionDigits(f.decimals),
	))

	return sign + f.symbol + digits
}

// Percent formats a percentage value such as 19 as "19%"
func (f *Formatter) Percent(pct float64) string {
	return f.printer.Sprintf("%v", number.Decimal(pct, number.MaxFractionDigits(2))) + "%"
}

// Integer formats a whole number with locale grouping
func (f *Formatter) Integer(n int) string {
	return f.printer.Sprintf("%v", number.Decimal(n))
}

// ParseDate parses an ISO-8601 date or date-time string
func ParseDate(iso string) (time.Time, bool) {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date formats an ISO string as DD-MM-YYYY, or InvalidDate when it can't be parsed
func Date(iso string) string {
	t, ok := ParseDate(iso)
	if !ok {
		return InvalidDate
	}
	return ShortDate(t)
}

// ShortDate formats t as DD-MM-YYYY
func ShortDate(t time.Time) string {
	if t.IsZero() {
		return InvalidDate
	}
	return t.Format("02-01-2006")
}

// LongDate formats an ISO string as "18 de octubre de 2026"
func LongDate(iso string) string {
	t, ok := ParseDate(iso)
	if !ok {
		return InvalidDate
	}
	return LongDateOf(t)
}

// LongDateOf formats t as "18 de octubre de 2026"
func LongDateOf(t time.Time) string {
	if t.IsZero() {
		return InvalidDate
	}
	return t.Format("2") + " de " + monthNames[t.Month()-1] + " de " + t.Format("2006")
}
