package store

import (
	"context" // Context for storage calls
	"errors"  // Sentinel errors
	"math"    // Offset saturation
	"time"    // Date filters

	"bank_ledger/internal/domain" // Ledger record types
)

// ErrConflict is returned by AppendAfter when the account's latest record
// is no longer the one the caller read.
var ErrConflict = errors.New("ledger was modified concurrently")

// Filter selects a page of records from the whole log.
type Filter struct {
	AccountID string      // Optional account filter
	Kind      domain.Kind // Optional kind filter
	From      time.Time   // Inclusive lower bound, zero means unbounded
	To        time.Time   // Inclusive upper bound, zero means unbounded
	Page      int         // 1-based page number
	PageSize  int         // Records per page
}

// offset saturates at math.MaxInt instead of overflowing.
func (f Filter) offset() int {
	if f.Page < 1 || f.PageSize < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PageSize {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PageSize
}

// Store is the Ledger Store. Records are ordered newest first by
// timestamp, then by ID so the most recently inserted record wins ties.
type Store interface {
	// Append inserts rec and assigns its ID.
	Append(ctx context.Context, rec *domain.Transaction) error
	// AppendAfter inserts rec only if the account's latest record ID is
	// still prevID (0 when the account had no records), else ErrConflict.
	AppendAfter(ctx context.Context, prevID uint, rec *domain.Transaction) error
	// LatestFor returns the account's most recent record, false if none.
	LatestFor(ctx context.Context, accountID string) (domain.Transaction, bool, error)
	// AllFor returns every record of the account, newest first.
	AllFor(ctx context.Context, accountID string) ([]domain.Transaction, error)
	// List returns one page of the log and the total matching count.
	List(ctx context.Context, f Filter) ([]domain.Transaction, int64, error)
	// Accounts returns one page of account summaries and the account count.
	Accounts(ctx context.Context, page, pageSize int) ([]domain.AccountSummary, int64, error)
}
