package main

import (
	"fmt"
	"os"

	"billing/internal/cli"
	"billing/internal/config"
	"billing/internal/logger"

	"github.com/joho/godotenv"
)

//go:generate swag init -d ../.. -g cmd/billing/main.go -o ../../api/swagger --outputTypes go

// @title           Billing Ledger API
// @version         1.0
// @description     Invoices, stock and customer balances for a single retail store.
// @host            localhost:8080
// @BasePath        /
func main() {
	// Missing env files are fine; the process environment still applies.
	_ = godotenv.Load("configs/.env")
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logger: %v\n", err)
		os.Exit(1)
	}

	cli.Execute(cfg)
}
