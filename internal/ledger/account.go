package ledger

import (
	"context" // Context for store calls

	"bank_ledger/internal/domain" // Ledger record types

	"github.com/shopspring/decimal" // Decimal amounts
)

// Account is a handle on one account's slice of the log.
type Account struct {
	id     string  // Account identifier
	ledger *Ledger // Shared ledger
}

func (a *Account) ID() string {
	return a.id
}

// Balance is the balance of the most recent record, or zero for an
// account with no records.
func (a *Account) Balance(ctx context.Context) (decimal.Decimal, error) {
	if err := validAccountID(a.id); err != nil {
		return decimal.Zero, err
	}
	return cached(ctx, a.ledger, a.id, balanceKey(a.id), func() (decimal.Decimal, error) {
		head, ok, err := a.ledger.store.LatestFor(ctx, a.id)
		if err != nil || !ok {
			return decimal.Zero, err
		}
		return head.BalanceAfter, nil
	})
}

// Deposit appends a DEPOSIT record and returns the new balance.
func (a *Account) Deposit(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	return a.ledger.apply(ctx, a.id, domain.KindDeposit, amount)
}

// Withdraw appends a WITHDRAWAL record carrying -amount and returns the
// new balance.
func (a *Account) Withdraw(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	return a.ledger.apply(ctx, a.id, domain.KindWithdrawal, amount)
}

// Records returns the account's history, newest first.
func (a *Account) Records(ctx context.Context) ([]domain.Transaction, error) {
	if err := validAccountID(a.id); err != nil {
		return nil, err
	}
	return a.ledger.store.AllFor(ctx, a.id)
}

// Statement renders the account's history, newest first.
func (a *Account) Statement(ctx context.Context) (string, error) {
	if err := validAccountID(a.id); err != nil {
		return "", err
	}
	return cached(ctx, a.ledger, a.id, statementKey(a.id), func() (string, error) {
		recs, err := a.ledger.store.AllFor(ctx, a.id)
		if err != nil {
			return "", err
		}
		return a.ledger.renderer.Render(recs), nil
	})
}
