package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"bank_ledger/internal/db"
	"bank_ledger/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newGormStore(t *testing.T) *GormStore {
	t.Helper()
	gdb, err := db.Open(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return NewGormStore(gdb)
}

// eachStore runs fn against every Store implementation.
func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("gorm", func(t *testing.T) { fn(t, newGormStore(t)) })
}

func record(account string, amount, balance string, at time.Time) *domain.Transaction {
	kind := domain.KindDeposit
	amt := decimal.RequireFromString(amount)
	if amt.IsNegative() {
		kind = domain.KindWithdrawal
	}
	return &domain.Transaction{
		AccountID:    account,
		Amount:       amt,
		BalanceAfter: decimal.RequireFromString(balance),
		Timestamp:    at,
		Kind:         kind,
	}
}

func TestLatestForUnknownAccount(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_, ok, err := s.LatestFor(context.Background(), "nobody")
		require.NoError(t, err)
		assert.False(t, ok)

		all, err := s.AllFor(context.Background(), "nobody")
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestAppendAndOrdering(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Append(ctx, record("john_doe", "1000", "1000", epoch)))
		require.NoError(t, s.Append(ctx, record("jane", "50", "50", epoch.Add(time.Minute))))
		require.NoError(t, s.Append(ctx, record("john_doe", "500", "1500", epoch.Add(time.Hour))))
		require.NoError(t, s.Append(ctx, record("john_doe", "-200", "1300", epoch.Add(2*time.Hour))))

		all, err := s.AllFor(ctx, "john_doe")
		require.NoError(t, err)
		require.Len(t, all, 3)
		for i := 1; i < len(all); i++ {
			assert.False(t, all[i].Timestamp.After(all[i-1].Timestamp), "records must be newest first")
		}
		assert.True(t, all[0].BalanceAfter.Equal(decimal.NewFromInt(1300)))
		assert.True(t, all[2].BalanceAfter.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, domain.KindWithdrawal, all[0].Kind)

		latest, ok, err := s.LatestFor(ctx, "john_doe")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, all[0].ID, latest.ID)
	})
}

func TestEqualTimestampsPreferLastInserted(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		first := record("acc", "10", "10", epoch)
		second := record("acc", "5", "15", epoch)
		require.NoError(t, s.Append(ctx, first))
		require.NoError(t, s.Append(ctx, second))
		assert.Greater(t, second.ID, first.ID)

		latest, ok, err := s.LatestFor(ctx, "acc")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, second.ID, latest.ID)
		assert.True(t, latest.BalanceAfter.Equal(decimal.NewFromInt(15)))
	})
}

func TestAppendAfterDetectsConflict(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		head := record("acc", "10", "10", epoch)
		require.NoError(t, s.AppendAfter(ctx, 0, head))

		// A writer that read an empty account must now lose
		err := s.AppendAfter(ctx, 0, record("acc", "10", "10", epoch.Add(time.Second)))
		assert.ErrorIs(t, err, ErrConflict)

		next := record("acc", "5", "15", epoch.Add(time.Second))
		require.NoError(t, s.AppendAfter(ctx, head.ID, next))

		all, err := s.AllFor(ctx, "acc")
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestListFiltersAndPages(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			require.NoError(t, s.Append(ctx, record("a", "1", "1", epoch.Add(time.Duration(i)*time.Minute))))
		}
		require.NoError(t, s.Append(ctx, record("b", "-3", "-3", epoch)))

		page, total, err := s.List(ctx, Filter{AccountID: "a", Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)
		require.Len(t, page, 2)
		assert.True(t, page[0].Timestamp.Equal(epoch.Add(2*time.Minute)))

		withdrawals, total, err := s.List(ctx, Filter{Kind: domain.KindWithdrawal, Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, withdrawals, 1)
		assert.Equal(t, "b", withdrawals[0].AccountID)
	})
}

func TestAccountsSummaries(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Append(ctx, record("zed", "7", "7", epoch)))
		require.NoError(t, s.Append(ctx, record("amy", "10", "10", epoch)))
		require.NoError(t, s.Append(ctx, record("amy", "-4", "6", epoch.Add(time.Minute))))

		sums, total, err := s.Accounts(ctx, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, sums, 2)
		assert.Equal(t, "amy", sums[0].AccountID)
		assert.EqualValues(t, 2, sums[0].Records)
		assert.True(t, sums[0].Balance.Equal(decimal.NewFromInt(6)))
		assert.Equal(t, "zed", sums[1].AccountID)

		second, _, err := s.Accounts(ctx, 2, 1)
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.Equal(t, "zed", second[0].AccountID)
	})
}

func TestOffsetSaturates(t *testing.T) {
	assert.Equal(t, 0, Filter{Page: 0, PageSize: 10}.offset())
	assert.Equal(t, 20, Filter{Page: 3, PageSize: 10}.offset())
	assert.Equal(t, math.MaxInt, Filter{Page: math.MaxInt, PageSize: 100}.offset())
	assert.Equal(t, math.MaxInt, Filter{Page: 100000000000000000, PageSize: 100}.offset())

	assert.Empty(t, window([]int{1, 2, 3}, -1, 2))
	assert.Empty(t, window([]int{1, 2, 3}, 3, 2))
	assert.Equal(t, []int{2, 3}, window([]int{1, 2, 3}, 1, math.MaxInt))
}

func TestHugePageIsEmpty(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Append(ctx, record("a", "1", "1", epoch)))
		require.NoError(t, s.Append(ctx, record("b", "2", "2", epoch)))

		txs, total, err := s.List(ctx, Filter{Page: 100000000000000000, PageSize: 100})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Empty(t, txs)

		sums, total, err := s.Accounts(ctx, math.MaxInt, 100)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Empty(t, sums)
	})
}

func TestLockConflictIsRetryable(t *testing.T) {
	assert.True(t, lockConflict(&mysql.MySQLError{Number: mysqlDeadlock}))
	assert.True(t, lockConflict(fmt.Errorf("insert: %w", &mysql.MySQLError{Number: mysqlLockWaitTimeout})))
	assert.False(t, lockConflict(&mysql.MySQLError{Number: 1062})) // duplicate entry
	assert.False(t, lockConflict(errors.New("connection refused")))

	ctx := context.Background()
	s := newGormStore(t)
	deadlocks := 1
	err := s.db.Callback().Create().Before("gorm:create").Register("ledger_test:deadlock", func(tx *gorm.DB) {
		if deadlocks > 0 {
			deadlocks--
			_ = tx.AddError(&mysql.MySQLError{Number: mysqlDeadlock, Message: "Deadlock found when trying to get lock"})
		}
	})
	require.NoError(t, err)

	err = s.AppendAfter(ctx, 0, record("acc", "10", "10", epoch))
	assert.ErrorIs(t, err, ErrConflict)
	all, err := s.AllFor(ctx, "acc")
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, s.AppendAfter(ctx, 0, record("acc", "10", "10", epoch)))
	all, err = s.AllFor(ctx, "acc")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
