package view

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/quantix/quantix-console/internal/domain"
)

var printer = message.NewPrinter(language.MustParse("es-CO"))

// Money formats an amount in Colombian pesos with two decimals.
func Money(v any) string {
	return "$ " + printer.Sprint(number.Decimal(toFloat(v), number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Number formats v with locale grouping and up to two decimals.
func Number(v any) string {
	return printer.Sprint(number.Decimal(toFloat(v), number.MaxFractionDigits(2)))
}

// Percent formats a 0..100 ratio with one decimal.
func Percent(v any) string {
	return printer.Sprint(number.Decimal(toFloat(v), number.MinFractionDigits(1), number.MaxFractionDigits(1))) + " %"
}

// Date renders a day in dd/mm/yyyy; zero values render empty.
func Date(v any) string {
	var t time.Time
	switch d := v.(type) {
	case time.Time:
		t = d
	case domain.Timestamp:
		t = d.Time
	case *domain.Timestamp:
		if d != nil {
			t = d.Time
		}
	}
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// YesNo renders a boolean as Sí/No.
func YesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case domain.Amount:
		return float64(n)
	case *domain.Amount:
		if n != nil {
			return float64(*n)
		}
	}
	return 0
}
