// Package main runs a backtest and writes a report bundle to a directory:
// report.md, series.csv, and chart.png.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"defi-portfolio-lab/internal/backtest"
	"defi-portfolio-lab/internal/domain"
	"defi-portfolio-lab/internal/pricesource"
	"defi-portfolio-lab/internal/reporting"
)

func main() {
	// Parse flags
	requestPath := flag.String("request", "", "Path to backtest request JSON (required)")
	pricesPath := flag.String("prices", "", "Path to price data JSON (asset id -> daily points)")
	outputDir := flag.String("output-dir", "reports", "Directory for report files")
	title := flag.String("title", "Backtest Report", "Report title")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	if *requestPath == "" {
		logger.Fatal("--request is required")
	}

	data, err := os.ReadFile(*requestPath)
	if err != nil {
		logger.Fatalf("read request: %v", err)
	}
	var req domain.BacktestRequest
	if err := json.Unmarshal(data, &req); err != nil {
		logger.Fatalf("parse request: %v", err)
	}

	var source pricesource.Source
	if *pricesPath != "" {
		src, err := pricesource.NewFileSource(*pricesPath)
		if err != nil {
			logger.Fatalf("load prices: %v", err)
		}
		source = src
	}

	runner := backtest.NewRunner(backtest.RunnerOptions{PriceSource: source})
	result, err := runner.Run(context.Background(), &req)
	if err != nil {
		logger.Fatalf("run backtest: %v", err)
	}

	report := reporting.NewGenerator().Generate(*title, &req, result)

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Fatalf("create output dir: %v", err)
	}

	mdPath := filepath.Join(*outputDir, "report.md")
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		logger.Fatalf("write markdown: %v", err)
	}

	csvPath := filepath.Join(*outputDir, "series.csv")
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report)), 0o644); err != nil {
		logger.Fatalf("write csv: %v", err)
	}

	chartPath := filepath.Join(*outputDir, "chart.png")
	png, err := reporting.RenderChart(report)
	if err != nil {
		logger.Fatalf("render chart: %v", err)
	}
	if err := os.WriteFile(chartPath, png, 0o644); err != nil {
		logger.Fatalf("write chart: %v", err)
	}

	fmt.Printf("Report written to %s\n", *outputDir)
	fmt.Printf("  %s\n  %s\n  %s\n", mdPath, csvPath, chartPath)
}
