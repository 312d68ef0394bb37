package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/FACorreiaa/bookkeeper/pkg/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := InitDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init dependencies", slog.Any("error", err))
		os.Exit(1)
	}
	defer deps.Close()

	if err := run(ctx, deps); err != nil {
		logger.Error("categorization run failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// run categorizes every pending transaction and writes the results back.
func run(ctx context.Context, deps *Dependencies) error {
	logger := deps.Logger

	chart, err := deps.AccountsRepo.LoadChart(ctx)
	if err != nil {
		return err
	}
	logger.Info("chart of accounts loaded", slog.Int("categories", chart.Len()))

	pending, err := deps.TransactionsRepo.ListUncategorized(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		logger.Info("no uncategorized transactions")
		return nil
	}
	logger.Info("categorizing transactions", slog.Int("count", len(pending)))

	results, err := deps.CategorizationService.CategorizeBatch(ctx, pending, chart)
	if err != nil {
		return err
	}

	counts := map[string]int{}
	for _, res := range results {
		counts[string(res.Provenance)]++
		if res.Category == "" {
			continue
		}
		if err := deps.TransactionsRepo.UpdateCategory(ctx, res.TransactionID, res.Category); err != nil {
			logger.Warn("failed to store category",
				slog.String("transaction_id", res.TransactionID.String()),
				slog.Any("error", err),
			)
		}
	}

	logger.Info("categorization run complete",
		slog.Int("total", len(results)),
		slog.Int("rule_matched", counts["rule_matched"]),
		slog.Int("ai_matched", counts["ai_matched"]),
		slog.Int("unresolved", counts["unresolved"]),
	)
	return nil
}
