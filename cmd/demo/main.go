package main

import (
	"context" // Request-less context for the demo
	"fmt"     // Console output

	"bank_ledger/internal/config"    // Custom package for configuration
	"bank_ledger/internal/db"        // Custom package for database bootstrap
	"bank_ledger/internal/ledger"    // Custom package for the account ledger
	"bank_ledger/internal/statement" // Custom package for statement rendering
	"bank_ledger/internal/store"     // Custom package for the ledger store

	"github.com/shopspring/decimal" // Decimal amounts
	"github.com/sirupsen/logrus"    // Logrus for structured logging
)

// openStore uses MySQL when DB_HOST is set, otherwise keeps the log in memory
func openStore(cfg *config.Config) store.Store {
	if cfg.DBHost == "" {
		return store.NewMemoryStore()
	}
	gdb, err := db.Connect(cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	return store.NewGormStore(gdb)
}

// Runs deposit 1000, deposit 500, withdraw 200 on john_doe and prints the statement
func main() {
	cfg := config.LoadConfig()
	logrus.SetLevel(logrus.WarnLevel) // Keep the console output readable

	ctx := context.Background()
	l := ledger.New(openStore(cfg), ledger.WithRenderer(statement.Renderer{Grouping: cfg.Grouping}))
	account := l.Account("john_doe")

	fmt.Println("Making deposits...")
	for _, amt := range []string{"1000.00", "500.00"} {
		bal, err := account.Deposit(ctx, decimal.RequireFromString(amt))
		if err != nil {
			logrus.Fatalf("deposit failed: %v", err)
		}
		fmt.Printf("Deposited: %s. New balance: %s\n", amt, bal.StringFixed(ledger.Scale))
	}

	fmt.Println("\nMaking withdrawals...")
	bal, err := account.Withdraw(ctx, decimal.RequireFromString("200.00"))
	if err != nil {
		logrus.Fatalf("withdraw failed: %v", err)
	}
	fmt.Printf("Withdrawn: 200.00. New balance: %s\n", bal.StringFixed(ledger.Scale))

	fmt.Println("\nPrinting statement...")
	text, err := account.Statement(ctx)
	if err != nil {
		logrus.Fatalf("statement failed: %v", err)
	}
	fmt.Print(text)

	bal, err = account.Balance(ctx)
	if err != nil {
		logrus.Fatalf("balance failed: %v", err)
	}
	fmt.Printf("\nCurrent balance: %s\n", bal.StringFixed(ledger.Scale))
}
