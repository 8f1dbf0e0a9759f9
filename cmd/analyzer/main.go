package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-analyzer/internal/app"
	"github.com/bimakw/wallet-analyzer/internal/application/services"
	"github.com/bimakw/wallet-analyzer/internal/config"
	"github.com/bimakw/wallet-analyzer/internal/logger"
)

func main() {
	wallet := flag.String("wallet", "", "wallet address to analyze")
	token := flag.String("token", "", "token mint address")
	flag.Parse()

	if err := run(*wallet, *token); err != nil {
		fmt.Fprintf(os.Stderr, "analyzer: %v\n", err)
		os.Exit(1)
	}
}

func run(wallet, token string) error {
	// Reject bad input before dialing the node
	if err := services.ValidateAddresses(wallet, token); err != nil {
		return err
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Stop the analysis on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer application.Close()

	response, err := application.Analysis.Analyze(ctx, wallet, token)
	if err != nil {
		log.Error("Analysis failed", zap.Error(err))
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(response)
}
