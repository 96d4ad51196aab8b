package statement

import (
	"strings" // String building

	"bank_ledger/internal/domain" // Ledger record types

	"github.com/shopspring/decimal" // Decimal amounts
	"golang.org/x/text/language"    // Locale for digit grouping
	"golang.org/x/text/message"     // Locale-aware number printing
)

const (
	Header    = "DATE       | AMOUNT  | BALANCE\n"     // Column titles
	Separator = "-----------------------------------\n" // Rule under the titles

	dateLayout = "02/01/2006" // dd/mm/yyyy
)

// Renderer formats records. The zero value prints plain two-decimal
// numbers; Grouping adds thousands separators (1,300.00).
type Renderer struct {
	Grouping bool // Insert thousands separators
}

// Render prints one line per record in the given order. Callers pass
// records newest first.
func (r Renderer) Render(records []domain.Transaction) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteString(Separator)
	for _, rec := range records {
		b.WriteString(rec.Timestamp.UTC().Format(dateLayout))
		b.WriteString(" | ")
		b.WriteString(r.number(rec.Amount))
		b.WriteString(" | ")
		b.WriteString(r.number(rec.BalanceAfter))
		b.WriteByte('\n')
	}
	return b.String()
}

func (r Renderer) number(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	if !r.Grouping {
		return fixed
	}
	return group(fixed)
}

var printer = message.NewPrinter(language.English) // Groups digits with commas

// group inserts thousands separators into the integer part of a
// fixed-point string, leaving the fraction untouched.
func group(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")
	n, err := decimal.NewFromString(whole)
	if err != nil || !n.IsInteger() {
		return sign + fixed
	}
	return sign + printer.Sprintf("%d", n.IntPart()) + "." + frac
}
