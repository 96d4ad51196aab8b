package store

import (
	"context" // Context for database calls
	"errors"  // Error matching
	"fmt"     // Error wrapping

	"bank_ledger/internal/domain" // Ledger record types

	"github.com/go-sql-driver/mysql" // MySQL server error codes
	"gorm.io/gorm"                   // GORM ORM
	"gorm.io/gorm/clause"            // Row locking clause
)

// InnoDB errors after which the whole transaction was rolled back and can
// be retried from a fresh read.
const (
	mysqlLockWaitTimeout = 1205 // ER_LOCK_WAIT_TIMEOUT
	mysqlDeadlock        = 1213 // ER_LOCK_DEADLOCK
)

// GormStore keeps the log in a SQL table through gorm.
type GormStore struct {
	db *gorm.DB // Shared database handle
}

// NewGormStore wraps an open gorm handle. The handle is shared by every
// ledger operation.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// newestFirst orders by date, then insertion order.
func newestFirst(q *gorm.DB) *gorm.DB {
	return q.Order("date DESC").Order("id DESC")
}

func (s *GormStore) Append(ctx context.Context, rec *domain.Transaction) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

func (s *GormStore) AppendAfter(ctx context.Context, prevID uint, rec *domain.Transaction) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest domain.Transaction
		// Lock the current head row so a concurrent writer waits on it
		res := newestFirst(tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("account_id = ?", rec.AccountID)).
			Limit(1).
			Find(&latest)
		if res.Error != nil {
			return res.Error
		}
		var head uint
		if res.RowsAffected > 0 {
			head = latest.ID
		}
		if head != prevID {
			return ErrConflict
		}
		return tx.Create(rec).Error
	})
	switch {
	case err == nil || errors.Is(err, ErrConflict):
		return err
	case lockConflict(err):
		// Two first writers on an empty account deadlock on the gap lock
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return fmt.Errorf("append transaction: %w", err)
}

// lockConflict reports whether err is a MySQL deadlock or lock wait timeout.
func lockConflict(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == mysqlDeadlock || me.Number == mysqlLockWaitTimeout
}

func (s *GormStore) LatestFor(ctx context.Context, accountID string) (domain.Transaction, bool, error) {
	var latest domain.Transaction
	res := newestFirst(s.db.WithContext(ctx).Where("account_id = ?", accountID)).Limit(1).Find(&latest)
	if res.Error != nil {
		return domain.Transaction{}, false, fmt.Errorf("latest transaction for %q: %w", accountID, res.Error)
	}
	return latest, res.RowsAffected > 0, nil
}

func (s *GormStore) AllFor(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if err := newestFirst(s.db.WithContext(ctx).Where("account_id = ?", accountID)).Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("transactions for %q: %w", accountID, err)
	}
	return txs, nil
}

func (s *GormStore) List(ctx context.Context, f Filter) ([]domain.Transaction, int64, error) {
	query := s.db.WithContext(ctx).Model(&domain.Transaction{})
	if f.AccountID != "" {
		query = query.Where("account_id = ?", f.AccountID)
	}
	if f.Kind != "" {
		query = query.Where("type = ?", f.Kind)
	}
	if !f.From.IsZero() {
		query = query.Where("date >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		query = query.Where("date <= ?", f.To.UTC())
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}
	query = newestFirst(query)
	if f.PageSize > 0 {
		query = query.Offset(f.offset()).Limit(f.PageSize)
	}
	var txs []domain.Transaction
	if err := query.Find(&txs).Error; err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return txs, total, nil
}

func (s *GormStore) Accounts(ctx context.Context, page, pageSize int) ([]domain.AccountSummary, int64, error) {
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&domain.Transaction{}).Distinct("account_id").Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}
	var rows []struct {
		AccountID string
		Records   int64
	}
	err := db.Model(&domain.Transaction{}).
		Select("account_id, COUNT(*) AS records").
		Group("account_id").
		Order("account_id").
		Offset(Filter{Page: page, PageSize: pageSize}.offset()).
		Limit(pageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]domain.AccountSummary, 0, len(rows))
	for _, r := range rows {
		latest, _, err := s.LatestFor(ctx, r.AccountID)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, domain.AccountSummary{
			AccountID: r.AccountID,
			Records:   r.Records,
			Balance:   latest.BalanceAfter,
			LastAt:    latest.Timestamp,
		})
	}
	return out, total, nil
}
