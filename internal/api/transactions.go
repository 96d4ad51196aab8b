package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Date filters

	"bank_ledger/internal/domain" // Importing domain models
	"bank_ledger/internal/ledger" // Validation errors
	"bank_ledger/internal/store"  // Ledger store

	"github.com/gin-gonic/gin" // Gin web framework
)

const (
	defaultPageSize = 20        // Page size when none is given
	maxPageSize     = 100       // Largest page a caller may request
	maxPage         = 1_000_000 // Larger page numbers are clamped to this
)

// TransactionResponse is one ledger record as returned to clients
type TransactionResponse struct {
	ID        uint        `json:"id"`        // Record ID
	AccountID string      `json:"accountId"` // Owning account
	Amount    float64     `json:"amount"`    // Signed amount
	Balance   float64     `json:"balance"`   // Balance after the record
	Date      string      `json:"date"`      // RFC3339 timestamp
	Type      domain.Kind `json:"type"`      // DEPOSIT or WITHDRAWAL
}

// AccountResponse summarizes one account
type AccountResponse struct {
	AccountID    string  `json:"accountId"`    // Account identifier
	Records      int64   `json:"records"`      // Number of records
	Balance      float64 `json:"balance"`      // Current balance
	LastActivity string  `json:"lastActivity"` // Latest record timestamp
}

func toResponse(txs []domain.Transaction) []TransactionResponse {
	resp := make([]TransactionResponse, len(txs))
	for i, t := range txs {
		resp[i] = TransactionResponse{
			ID:        t.ID,
			AccountID: t.AccountID,
			Amount:    money(t.Amount),
			Balance:   money(t.BalanceAfter),
			Date:      t.Timestamp.UTC().Format(time.RFC3339),
			Type:      t.Kind,
		}
	}
	return resp
}

// pagination reads page and page_size, falling back to defaults when invalid
func pagination(c *gin.Context) (int, int) {
	page := 1                   // Default page number
	pageSize := defaultPageSize // Default page size
	if p := c.Query("page"); p != "" {
		// If valid, set page number
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = min(v, maxPage)
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= maxPageSize {
			pageSize = v
		}
	}
	return page, pageSize
}

// totalPages is the number of pages needed for total items
func totalPages(total int64, pageSize int) int {
	return (int(total) + pageSize - 1) / pageSize
}

// parseDate accepts YYYY-MM-DD or RFC3339. A bare date used as an upper
// bound covers the whole day.
func parseDate(field, value string, endOfDay bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, &ledger.ValidationError{Field: field, Reason: "must be YYYY-MM-DD or RFC3339"}
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return t, nil
}

// listPage runs a filtered page query and writes the paginated response
func listPage(c *gin.Context, s store.Store, f store.Filter) {
	txs, total, err := s.List(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": toResponse(txs),               // List of transactions
		"page":         f.Page,                        // Current page
		"page_size":    f.PageSize,                    // Page size
		"total":        total,                         // Total number of transactions
		"total_pages":  totalPages(total, f.PageSize), // Total pages
	})
}

// AccountTransactionsHandler returns one account's records, newest first
func AccountTransactionsHandler(s store.Store, defaultID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pagination(c)
		listPage(c, s, store.Filter{AccountID: accountFromQuery(c, defaultID), Page: page, PageSize: pageSize})
	}
}

// ListTransactionsHandler returns the whole log, with optional filtering by account, type, or date
func ListTransactionsHandler(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pagination(c)
		f := store.Filter{
			AccountID: c.Query("account_id"), // Filter by account
			Page:      page,                  // Requested page
			PageSize:  pageSize,              // Requested page size
		}
		if kind := c.Query("type"); kind != "" {
			f.Kind = domain.Kind(strings.ToUpper(kind)) // Filter by transaction type
			if !f.Kind.Valid() {
				_ = c.Error(&ledger.ValidationError{Field: "type", Reason: "must be DEPOSIT or WITHDRAWAL"})
				return
			}
		}
		var err error
		if f.From, err = parseDate("from", c.Query("from"), false); err != nil {
			_ = c.Error(err)
			return
		}
		if f.To, err = parseDate("to", c.Query("to"), true); err != nil {
			_ = c.Error(err)
			return
		}
		listPage(c, s, f)
	}
}

// ListAccountsHandler returns every account that has at least one record
func ListAccountsHandler(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pagination(c)
		sums, total, err := s.Accounts(c.Request.Context(), page, pageSize)
		if err != nil {
			_ = c.Error(err)
			return
		}
		resp := make([]AccountResponse, len(sums))
		// Map summaries to response format
		for i, a := range sums {
			resp[i] = AccountResponse{
				AccountID:    a.AccountID,
				Records:      a.Records,
				Balance:      money(a.Balance),
				LastActivity: a.LastAt.UTC().Format(time.RFC3339),
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"accounts":    resp,                        // List of accounts
			"page":        page,                        // Current page
			"page_size":   pageSize,                    // Page size
			"total":       total,                       // Total number of accounts
			"total_pages": totalPages(total, pageSize), // Total pages
		})
	}
}
