package ledger

import (
	"math" // NaN and infinity checks

	"github.com/shopspring/decimal" // Decimal amounts
)

// Scale is the number of decimal places a stored amount keeps.
const Scale = 2

// maxMagnitude is the exclusive bound of a decimal(10,2) column. Both
// amounts and resulting balances must stay below it.
var maxMagnitude = decimal.New(1, 8)

// Policy decides which commands the ledger accepts. The zero value
// accepts any finite amount and allows unlimited overdraft.
type Policy struct {
	Strict         bool             // Reject zero and negative amounts
	OverdraftLimit *decimal.Decimal // How far below zero a withdrawal may go, nil is unlimited
	MaxRetries     int              // Retries after losing an optimistic concurrency race
}

// DefaultMaxRetries is used when Policy.MaxRetries is zero.
const DefaultMaxRetries = 3

func (p Policy) retries() int {
	if p.MaxRetries <= 0 {
		return DefaultMaxRetries
	}
	return p.MaxRetries
}

// normalize rounds amount to storage precision and applies the policy.
func (p Policy) normalize(amount decimal.Decimal) (decimal.Decimal, error) {
	amount = amount.Round(Scale)
	if amount.Abs().GreaterThanOrEqual(maxMagnitude) {
		return decimal.Zero, invalid("amount", "exceeds 99999999.99")
	}
	if p.Strict && !amount.IsPositive() {
		return decimal.Zero, invalid("amount", "must be greater than zero")
	}
	return amount, nil
}

// allows reports whether balance is within the overdraft limit.
func (p Policy) allows(balance decimal.Decimal) bool {
	if p.OverdraftLimit == nil {
		return true
	}
	return balance.GreaterThanOrEqual(p.OverdraftLimit.Neg())
}

// FromFloat converts a caller-supplied float to a decimal amount,
// rejecting NaN and infinities.
func FromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, invalid("amount", "must be a finite number")
	}
	return decimal.NewFromFloat(f), nil
}

// ParseOverdraftLimit reads a limit such as "500" or "0"; empty means
// unlimited.
func ParseOverdraftLimit(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, invalid("overdraft limit", err.Error())
	}
	if d.IsNegative() {
		return nil, invalid("overdraft limit", "must not be negative")
	}
	return &d, nil
}
