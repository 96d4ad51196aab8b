package store

import (
	"context" // Context for storage calls
	"sort"    // Newest-first ordering
	"sync"    // Guard for the record slice

	"bank_ledger/internal/domain" // Ledger record types
)

// MemoryStore is an in-process Store. Records live in insertion order.
type MemoryStore struct {
	mu     sync.RWMutex         // Guards nextID and recs
	nextID uint                 // Last assigned record ID
	recs   []domain.Transaction // Records in insertion order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// newer reports whether a sorts before b in newest-first order.
func newer(a, b domain.Transaction) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.ID > b.ID
}

func (s *MemoryStore) Append(_ context.Context, rec *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(rec)
	return nil
}

func (s *MemoryStore) AppendAfter(_ context.Context, prevID uint, rec *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var head uint
	if latest, ok := s.latest(rec.AccountID); ok {
		head = latest.ID
	}
	if head != prevID {
		return ErrConflict
	}
	s.insert(rec)
	return nil
}

// insert assumes s.mu is held.
func (s *MemoryStore) insert(rec *domain.Transaction) {
	s.nextID++
	rec.ID = s.nextID
	s.recs = append(s.recs, *rec)
}

// latest assumes s.mu is held.
func (s *MemoryStore) latest(accountID string) (domain.Transaction, bool) {
	var (
		best  domain.Transaction
		found bool
	)
	for _, r := range s.recs {
		if r.AccountID != accountID {
			continue
		}
		if !found || newer(r, best) {
			best, found = r, true
		}
	}
	return best, found
}

func (s *MemoryStore) LatestFor(_ context.Context, accountID string) (domain.Transaction, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.latest(accountID)
	return rec, ok, nil
}

func (s *MemoryStore) AllFor(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	txs, _, err := s.List(ctx, Filter{AccountID: accountID})
	return txs, err
}

// List pages only when f.PageSize is positive.
func (s *MemoryStore) List(_ context.Context, f Filter) ([]domain.Transaction, int64, error) {
	s.mu.RLock()
	var out []domain.Transaction
	for _, r := range s.recs {
		if f.AccountID != "" && r.AccountID != f.AccountID {
			continue
		}
		if f.Kind != "" && r.Kind != f.Kind {
			continue
		}
		if !f.From.IsZero() && r.Timestamp.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && r.Timestamp.After(f.To) {
			continue
		}
		out = append(out, r)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return newer(out[i], out[j]) })
	total := int64(len(out))
	if f.PageSize > 0 {
		out = window(out, f.offset(), f.PageSize)
	}
	return out, total, nil
}

func (s *MemoryStore) Accounts(_ context.Context, page, pageSize int) ([]domain.AccountSummary, int64, error) {
	s.mu.RLock()
	byID := map[string]*domain.AccountSummary{}
	heads := map[string]domain.Transaction{}
	for _, r := range s.recs {
		sum, ok := byID[r.AccountID]
		if !ok {
			sum = &domain.AccountSummary{AccountID: r.AccountID}
			byID[r.AccountID] = sum
		}
		sum.Records++
		if head, ok := heads[r.AccountID]; !ok || newer(r, head) {
			heads[r.AccountID] = r
		}
	}
	s.mu.RUnlock()

	out := make([]domain.AccountSummary, 0, len(byID))
	for id, sum := range byID {
		sum.Balance = heads[id].BalanceAfter
		sum.LastAt = heads[id].Timestamp
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	total := int64(len(out))
	return window(out, Filter{Page: page, PageSize: pageSize}.offset(), pageSize), total, nil
}

func window[T any](in []T, offset, size int) []T {
	if offset < 0 || offset >= len(in) || size < 1 {
		return []T{}
	}
	end := len(in)
	if size < end-offset {
		end = offset + size
	}
	return in[offset:end]
}
