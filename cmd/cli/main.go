package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mizanhq/mizan/internal/config"
	"github.com/mizanhq/mizan/internal/ingest"
	"github.com/mizanhq/mizan/internal/logger"
	"github.com/mizanhq/mizan/internal/report"
	"github.com/mizanhq/mizan/internal/schema"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Name+"-cli", cfg.App.LogLevel, cfg.App.LogFormat)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		runGenerate(log, cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Mizan CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  generate  Generate a financial report from a transactions file")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runGenerate(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	inPath := fs.String("in", "", "Path to a CSV or JSON transactions file")
	outPath := fs.String("out", "", "Write the report here instead of stdout")
	currency := fs.String("currency", cfg.Report.Currency, "Report currency code")
	fs.Parse(os.Args[2:])

	if *inPath == "" {
		log.Fatal().Msg("Error: --in is required")
	}

	f, err := os.Open(*inPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *inPath).Msg("Cannot open transactions file")
	}
	defer f.Close()

	var wireTxs []schema.Transaction
	switch strings.ToLower(filepath.Ext(*inPath)) {
	case ".csv":
		wireTxs, err = ingest.ParseCSV(f)
	case ".json":
		wireTxs, err = ingest.ParseJSON(f)
	default:
		log.Fatal().Str("path", *inPath).Msg("Unsupported file type, want .csv or .json")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse transactions file")
	}

	txs, dropped := schema.ToReportTransactions(wireTxs)
	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("Dropped invalid transactions")
	}

	rep := report.Generate(txs, report.Options{
		Currency:    *currency,
		VATRate:     cfg.Report.VATRate,
		DataSources: []string{filepath.Base(*inPath)},
	})

	out := os.Stdout
	if *outPath != "" {
		out, err = os.Create(*outPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *outPath).Msg("Cannot create output file")
		}
		defer out.Close()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}

	if *outPath != "" {
		log.Info().Str("path", *outPath).Msg("Report written")
	}
}
