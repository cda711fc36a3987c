// ====================================
// File: cmd/listener/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/raydium-listener/internal/bot"
	"github.com/rovshanmuradov/raydium-listener/internal/config"
	"github.com/rovshanmuradov/raydium-listener/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "optional JSON/YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := logger.New(logger.Options{Debug: cfg.DebugLogging, FilePath: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	log.Info("Starting raydium listener",
		zap.String("rpc", cfg.RPCEndpoint),
		zap.String("quote_mint", cfg.QuoteMint),
		zap.String("commitment", cfg.CommitmentLevel))

	runErr := bot.NewRunner(cfg, log).Run(ctx)
	stop()
	if runErr != nil {
		log.Error("Listener stopped with error", zap.Error(runErr))
	} else {
		log.Info("Listener stopped")
	}
	_ = closeLog()

	if runErr != nil {
		os.Exit(1)
	}
}
