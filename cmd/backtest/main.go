// Package main runs a single portfolio backtest from the command line.
// The request is a JSON file; prices come inline with the request, from a
// separate prices file, or from ClickHouse.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"defi-portfolio-lab/internal/backtest"
	"defi-portfolio-lab/internal/domain"
	"defi-portfolio-lab/internal/pricesource"
	chstore "defi-portfolio-lab/internal/storage/clickhouse"
)

func main() {
	// Parse flags
	requestPath := flag.String("request", "", "Path to backtest request JSON (required)")
	pricesPath := flag.String("prices", "", "Path to price data JSON (asset id -> daily points)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for stored prices")
	outputJSON := flag.Bool("json", false, "Output full result as JSON")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

	if *requestPath == "" {
		logger.Fatal("--request is required")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	req, err := loadRequest(*requestPath)
	if err != nil {
		logger.Fatalf("load request: %v", err)
	}

	source, closeSource, err := buildPriceSource(ctx, *pricesPath, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("build price source: %v", err)
	}
	defer closeSource()

	runner := backtest.NewRunner(backtest.RunnerOptions{PriceSource: source})
	result, err := runner.Run(ctx, req)
	if err != nil {
		logger.Fatalf("run backtest: %v", err)
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			logger.Fatalf("encode result: %v", err)
		}
		return
	}

	printSummary(result)
}

// loadRequest reads and parses the request file.
func loadRequest(path string) (*domain.BacktestRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var req domain.BacktestRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	return &req, nil
}

// buildPriceSource picks the source for assets without inline prices.
func buildPriceSource(ctx context.Context, pricesPath, clickhouseDSN string) (pricesource.Source, func(), error) {
	noop := func() {}

	switch {
	case pricesPath != "":
		src, err := pricesource.NewFileSource(pricesPath)
		if err != nil {
			return nil, noop, err
		}
		return src, noop, nil
	case clickhouseDSN != "":
		conn, err := chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			return nil, noop, err
		}
		src := pricesource.NewStoreSource(chstore.NewPricePointStore(conn))
		return src, func() { conn.Close() }, nil
	default:
		return nil, noop, nil
	}
}

// printSummary writes a human-readable digest to stdout.
func printSummary(result *domain.BacktestResult) {
	m := result.Metrics
	r := result.Risk

	fmt.Printf("Final value:        %.2f\n", m.FinalValue)
	fmt.Printf("Total invested:     %.2f\n", m.TotalInvested)
	fmt.Printf("Cumulative return:  %.2f%%\n", m.CumulativeReturnPct)
	fmt.Printf("CAGR:               %s\n", fmtOpt(m.CAGRPct, "%.2f%%"))
	fmt.Printf("Volatility (ann.):  %.2f%%\n", r.VolatilityPct)
	fmt.Printf("Max drawdown:       %.2f%%\n", r.MaxDrawdownPct)
	fmt.Printf("Sharpe:             %s\n", fmtOpt(r.Sharpe, "%.4f"))
	fmt.Printf("Integrity score:    %d/100\n", result.Integrity.Score)
	for _, issue := range result.Integrity.Issues {
		fmt.Printf("  - %s\n", issue)
	}
}

func fmtOpt(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}
