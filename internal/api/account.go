package api

import (
	"bytes"         // Raw body checks
	"encoding/json" // Raw JSON amounts
	"net/http"      // HTTP status codes

	"bank_ledger/internal/ledger" // Account ledger

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Decimal amounts
)

// MovementRequest is the body of a deposit or withdrawal
type MovementRequest struct {
	AccountID string          `json:"accountId"` // Optional, defaults to the configured account
	Amount    json.RawMessage `json:"amount"`    // Number or numeric string, defaults to 0
}

// money renders a decimal as a JSON number with cent precision
func money(d decimal.Decimal) float64 {
	return d.Round(ledger.Scale).InexactFloat64()
}

// accountFromQuery returns the accountId query parameter or the default
func accountFromQuery(c *gin.Context, defaultID string) string {
	if id := c.Query("accountId"); id != "" {
		return id // Explicit account
	}
	return defaultID // Implicit default account
}

// parseAmount decodes a raw JSON amount. Missing amounts are 0; malformed
// amounts are 0 unless the ledger runs a strict policy.
func parseAmount(raw json.RawMessage, strict bool) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, nil // Missing amount
	}
	var amount decimal.Decimal
	if err := amount.UnmarshalJSON(raw); err != nil {
		if strict {
			return decimal.Zero, &ledger.ValidationError{Field: "amount", Reason: "must be a number"}
		}
		return decimal.Zero, nil // Silently treat as zero like the original controller
	}
	return amount, nil
}

// bindMovement reads a deposit or withdrawal body, substituting defaults for missing fields
func bindMovement(c *gin.Context, l *ledger.Ledger, defaultID string) (string, decimal.Decimal, error) {
	strict := l.Policy().Strict
	var req MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil && strict {
		return "", decimal.Zero, &ledger.ValidationError{Field: "body", Reason: "must be a JSON object"}
	}
	if req.AccountID == "" {
		req.AccountID = defaultID // Default account
	}
	amount, err := parseAmount(req.Amount, strict)
	if err != nil {
		return "", decimal.Zero, err
	}
	return req.AccountID, amount, nil
}

// DepositHandler appends a deposit and returns the new balance
func DepositHandler(l *ledger.Ledger, defaultID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, amount, err := bindMovement(c, l, defaultID)
		if err != nil {
			_ = c.Error(err) // Rendered by the error middleware
			return
		}
		balance, err := l.Account(accountID).Deposit(c.Request.Context(), amount)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Deposit successful", "balance": money(balance)})
	}
}

// WithdrawHandler appends a withdrawal and returns the new balance
func WithdrawHandler(l *ledger.Ledger, defaultID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, amount, err := bindMovement(c, l, defaultID)
		if err != nil {
			_ = c.Error(err) // Rendered by the error middleware
			return
		}
		balance, err := l.Account(accountID).Withdraw(c.Request.Context(), amount)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Withdrawal successful", "balance": money(balance)})
	}
}

// BalanceHandler returns the current balance of an account
func BalanceHandler(l *ledger.Ledger, defaultID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := accountFromQuery(c, defaultID)
		balance, err := l.Account(accountID).Balance(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"accountId": accountID, "balance": money(balance)})
	}
}

// StatementHandler returns the rendered text statement of an account
func StatementHandler(l *ledger.Ledger, defaultID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		text, err := l.Account(accountFromQuery(c, defaultID)).Statement(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"statement": text})
	}
}
