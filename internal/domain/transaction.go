package domain

import (
	"time" // Record timestamps

	"github.com/shopspring/decimal" // Exact decimal money values
)

// Kind tags a ledger record as a deposit or a withdrawal
type Kind string

const (
	KindDeposit    Kind = "DEPOSIT"    // Money in, amount >= 0
	KindWithdrawal Kind = "WITHDRAWAL" // Money out, amount stored negated
)

// Valid reports whether k is a known record kind
func (k Kind) Valid() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// Transaction Model. Rows are append-only: created once, never updated or deleted.
type Transaction struct {
	// Primary key, doubles as insertion order
	ID uint `gorm:"primaryKey" json:"id"`
	// Owning account, many records per account
	AccountID string `gorm:"type:varchar(255);not null;index:idx_account_date,priority:1" json:"accountId"`
	// Signed amount: positive for deposits, negative for withdrawals
	Amount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	// Balance snapshot once this record is applied
	BalanceAfter decimal.Decimal `gorm:"column:balance;type:decimal(10,2);not null" json:"balance"`
	// Creation time, the ordering key for "most recent"
	Timestamp time.Time `gorm:"column:date;not null;index:idx_account_date,priority:2" json:"date"`
	Kind      Kind      `gorm:"column:type;type:varchar(50);not null" json:"type"`
}

// TableName keeps the original table name
func (Transaction) TableName() string {
	return "transactions"
}

// AccountSummary is a derived view of one account in the log
type AccountSummary struct {
	AccountID string          `json:"accountId"`    // Account identifier
	Records   int64           `json:"records"`      // Number of records in the log
	Balance   decimal.Decimal `json:"balance"`      // Current balance
	LastAt    time.Time       `json:"lastActivity"` // Timestamp of the latest record
}
