package ledger

import (
	"context"     // Context for store and cache calls
	"errors"      // Error matching
	"sync"        // Per-account locks
	"sync/atomic" // Per-account write generations
	"time"        // Record timestamps and cache TTL

	"bank_ledger/internal/domain"    // Ledger record types
	"bank_ledger/internal/statement" // Statement rendering
	"bank_ledger/internal/store"     // Ledger store

	"github.com/shopspring/decimal" // Decimal amounts
	"github.com/sirupsen/logrus"    // Logrus for structured logging
)

// Cache holds derived per-account values. Misses return false, nil.
type Cache interface {
	GetCache(ctx context.Context, key string, dest any) (bool, error)
	SetCache(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteCache(ctx context.Context, keys ...string) error
}

// Ledger is shared by every account; it owns the store handle.
type Ledger struct {
	store    store.Store        // Append-only record log
	cache    Cache              // Optional balance/statement cache
	ttl      time.Duration      // Cache entry lifetime
	policy   Policy             // Accepted commands
	renderer statement.Renderer // Statement format
	now      func() time.Time   // Record clock
	locks    sync.Map           // account ID -> *sync.Mutex
	gens     sync.Map           // account ID -> *atomic.Uint64, bumped on every write
}

type Option func(*Ledger)

// WithCache enables read-through caching of balances and statements.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(l *Ledger) {
		l.cache = c
		l.ttl = ttl
	}
}

func WithPolicy(p Policy) Option {
	return func(l *Ledger) { l.policy = p }
}

func WithRenderer(r statement.Renderer) Option {
	return func(l *Ledger) { l.renderer = r }
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{store: s, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Account returns a handle for accountID. Accounts exist implicitly once
// they have a record.
func (l *Ledger) Account(accountID string) *Account {
	return &Account{id: accountID, ledger: l}
}

// Policy returns the policy the ledger enforces.
func (l *Ledger) Policy() Policy {
	return l.policy
}

func (l *Ledger) lock(accountID string) *sync.Mutex {
	mu, _ := l.locks.LoadOrStore(accountID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (l *Ledger) generation(accountID string) *atomic.Uint64 {
	g, _ := l.gens.LoadOrStore(accountID, new(atomic.Uint64))
	return g.(*atomic.Uint64)
}

func balanceKey(accountID string) string   { return "balance:" + accountID }
func statementKey(accountID string) string { return "statement:" + accountID }

func validAccountID(accountID string) error {
	switch {
	case accountID == "":
		return invalid("accountId", "must not be empty")
	case len(accountID) > 255:
		return invalid("accountId", "longer than 255 characters")
	}
	return nil
}

// apply runs read-latest, compute, conditional append for one account.
// Writers in this process queue on the account lock; writers in other
// processes are caught by AppendAfter and retried.
func (l *Ledger) apply(ctx context.Context, accountID string, kind domain.Kind, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := validAccountID(accountID); err != nil {
		return decimal.Zero, err
	}
	amount, err := l.policy.normalize(amount)
	if err != nil {
		return decimal.Zero, err
	}
	signed := amount
	if kind == domain.KindWithdrawal {
		signed = amount.Neg()
	}

	mu := l.lock(accountID)
	mu.Lock()
	defer mu.Unlock()

	for attempt := 0; ; attempt++ {
		head, ok, err := l.store.LatestFor(ctx, accountID)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"account_id": accountID,
				"error":      err.Error(),
			}).Error("Failed to read balance")
			return decimal.Zero, err
		}
		var prevID uint
		balance := decimal.Zero
		if ok {
			prevID, balance = head.ID, head.BalanceAfter
		}
		newBalance := balance.Add(signed)
		if newBalance.Abs().GreaterThanOrEqual(maxMagnitude) {
			return decimal.Zero, invalid("balance", "would exceed 99999999.99")
		}
		if signed.IsNegative() && !l.policy.allows(newBalance) {
			return decimal.Zero, ErrInsufficientFunds
		}

		ts := l.now().UTC().Truncate(time.Millisecond)
		if ok && ts.Before(head.Timestamp) {
			// Keep the new record the latest even if the clock stepped back
			ts = head.Timestamp
		}
		rec := &domain.Transaction{
			AccountID:    accountID,
			Amount:       signed,
			BalanceAfter: newBalance,
			Timestamp:    ts,
			Kind:         kind,
		}
		err = l.store.AppendAfter(ctx, prevID, rec)
		if err == nil {
			l.invalidate(ctx, accountID)
			logrus.WithFields(logrus.Fields{
				"account_id": accountID,
				"amount":     signed.StringFixed(Scale),
				"balance":    newBalance.StringFixed(Scale),
				"type":       kind,
			}).Info("Ledger transaction")
			return newBalance, nil
		}
		if !errors.Is(err, store.ErrConflict) || attempt >= l.policy.retries() {
			logrus.WithFields(logrus.Fields{
				"account_id": accountID,
				"type":       kind,
				"attempt":    attempt + 1,
				"error":      err.Error(),
			}).Error("Failed to append transaction")
			return decimal.Zero, err
		}
		logrus.WithField("account_id", accountID).Debug("Concurrent write detected, retrying")
	}
}

// invalidate must run after the record is stored.
func (l *Ledger) invalidate(ctx context.Context, accountID string) {
	if l.cache == nil {
		return
	}
	l.generation(accountID).Add(1)
	if err := l.cache.DeleteCache(ctx, balanceKey(accountID), statementKey(accountID)); err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"error":      err.Error(),
		}).Warn("Failed to invalidate cache")
	}
}

// cached returns the value under key, calling fill on a miss and storing its
// result. Cache failures fall through to fill. A value filled while a
// write to the account landed is dropped again so it cannot outlive the
// write's invalidation.
func cached[T any](ctx context.Context, l *Ledger, accountID, key string, fill func() (T, error)) (T, error) {
	if l.cache == nil {
		return fill()
	}
	var v T
	if found, err := l.cache.GetCache(ctx, key, &v); err == nil && found {
		return v, nil
	} else if err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache read failed")
	}
	gen := l.generation(accountID)
	before := gen.Load()
	v, err := fill()
	if err != nil {
		return v, err
	}
	if gen.Load() != before {
		return v, nil // Written during fill, leave the key empty
	}
	if err := l.cache.SetCache(ctx, key, v, l.ttl); err != nil {
		logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache write failed")
		return v, nil
	}
	if gen.Load() != before {
		// A write's invalidation may have run before our set
		if err := l.cache.DeleteCache(ctx, key); err != nil {
			logrus.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Failed to invalidate cache")
		}
	}
	return v, nil
}
