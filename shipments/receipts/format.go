package receipts

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	Undeclared    = "UNDECLARED"
	NotApplicable = "N/A"
	dateLayout    = "Jan 2, 2006"
)

var (
	titleCaser    = cases.Title(language.English)
	amountPrinter = message.NewPrinter(language.English)
)

// FormatCurrency renders a money amount with two decimals, or UNDECLARED when it is absent or zero.
func FormatCurrency(d decimal.NullDecimal) string {
	if !d.Valid || d.Decimal.IsZero() {
		return Undeclared
	}

	fixed := d.Decimal.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		whole = amountPrinter.Sprintf("%d", n)
	}
	return sign + "$" + whole + "." + frac
}

// FormatDate renders the calendar day of t as recorded, without converting timezones.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NotApplicable
	}
	return t.Format(dateLayout)
}

// FormatTimestamp renders the UTC calendar day of an instant such as created_at.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return NotApplicable
	}
	return t.UTC().Format(dateLayout)
}

// FormatDateString renders the date-only prefix of a "2006-01-02..." timestamp string.
func FormatDateString(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) < 10 {
		return NotApplicable
	}
	d, err := time.Parse(time.DateOnly, raw[:10])
	if err != nil {
		return NotApplicable
	}
	return d.Format(dateLayout)
}

// TitleCase turns "bank_transfer" into "Bank Transfer".
func TitleCase(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
	if s == "" {
		return NotApplicable
	}
	return titleCaser.String(s)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotApplicable
	}
	return s
}
