package api

import (
	"net/http" // HTTP status codes

	"bank_ledger/internal/ledger"     // Account ledger
	"bank_ledger/internal/middleware" // Error mapping and request logging
	"bank_ledger/internal/store"      // Ledger store

	"github.com/gin-gonic/gin" // Gin web framework
)

// Deps are the collaborators the HTTP surface dispatches to
type Deps struct {
	Ledger           *ledger.Ledger // Balance computation
	Store            store.Store    // Read-only listings
	DefaultAccountID string         // Used when a request names no account
}

// NewRouter registers every route on a fresh gin engine
func NewRouter(d Deps) *gin.Engine {
	if d.DefaultAccountID == "" {
		d.DefaultAccountID = "default"
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.Recovery(), middleware.ErrorHandler())

	// Account routes
	account := r.Group("/account")
	account.POST("/deposit", DepositHandler(d.Ledger, d.DefaultAccountID))                // Deposit endpoint
	account.POST("/withdraw", WithdrawHandler(d.Ledger, d.DefaultAccountID))              // Withdraw endpoint
	account.GET("/statement", StatementHandler(d.Ledger, d.DefaultAccountID))             // Statement endpoint
	account.GET("/balance", BalanceHandler(d.Ledger, d.DefaultAccountID))                 // Balance endpoint
	account.GET("/transactions", AccountTransactionsHandler(d.Store, d.DefaultAccountID)) // History endpoint

	// Log-wide routes
	r.GET("/transactions", ListTransactionsHandler(d.Store)) // Whole log
	r.GET("/accounts", ListAccountsHandler(d.Store))         // Known accounts
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Unknown routes
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "path": c.Request.URL.Path})
	})
	return r
}
