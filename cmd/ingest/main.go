// Package main loads daily close prices from a JSON file into ClickHouse
// so later backtests can resolve prices from storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"defi-portfolio-lab/internal/domain"
	"defi-portfolio-lab/internal/pricesource"
	chstore "defi-portfolio-lab/internal/storage/clickhouse"
)

func main() {
	// Parse flags
	pricesPath := flag.String("prices", "", "Path to price data JSON (required)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (required)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[ingest] ", log.LstdFlags)

	if *pricesPath == "" {
		logger.Fatal("--prices is required")
	}
	if *clickhouseDSN == "" {
		logger.Fatal("--clickhouse-dsn is required")
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

	src, err := pricesource.NewFileSource(*pricesPath)
	if err != nil {
		logger.Fatalf("load prices: %v", err)
	}

	conn, err := chstore.NewConn(ctx, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("connect to clickhouse: %v", err)
	}
	defer conn.Close()

	store := chstore.NewPricePointStore(conn)

	total := 0
	for _, assetID := range src.Assets() {
		series := src.Series(assetID)
		points := make([]*domain.StoredPricePoint, 0, len(series))
		for _, p := range series {
			points = append(points, &domain.StoredPricePoint{
				AssetID: assetID,
				Date:    p.Date.Time,
				Price:   p.Price,
			})
		}

		if err := store.InsertBulk(ctx, points); err != nil {
			logger.Fatalf("insert %s: %v", assetID, err)
		}
		logger.Printf("inserted %d points for %s", len(points), assetID)
		total += len(points)
	}

	fmt.Printf("Ingested %d price points\n", total)
}
