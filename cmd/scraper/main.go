package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/christinAjohnsom/zillow-scrape-address-url-zpid/config"
	httpDelivery "github.com/christinAjohnsom/zillow-scrape-address-url-zpid/internal/delivery/http"
	"github.com/christinAjohnsom/zillow-scrape-address-url-zpid/internal/infrastructure/cache"
	"github.com/christinAjohnsom/zillow-scrape-address-url-zpid/internal/infrastructure/export"
	"github.com/christinAjohnsom/zillow-scrape-address-url-zpid/internal/infrastructure/zillow"
	"github.com/christinAjohnsom/zillow-scrape-address-url-zpid/internal/usecase"
)

func main() {
	inputPath := flag.String("input", "", "path to input file, one address/ZPID/listing URL per line")
	outputPath := flag.String("output", "", "output file path (overrides config)")
	outputFormat := flag.String("format", "", "output format: json, csv, or both (overrides config)")
	serve := flag.Bool("serve", false, "run as an HTTP service instead of a one-shot batch")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	setupLogging(*verbose)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	if *outputPath != "" {
		cfg.Output.Path = *outputPath
	}
	if *outputFormat != "" {
		cfg.Output.Format = *outputFormat
	}

	client := zillow.NewClient(zillow.Config{
		BaseURL:       cfg.Zillow.BaseURL,
		UserAgent:     cfg.Zillow.UserAgent,
		Timeout:       cfg.Zillow.Timeout,
		RetryMax:      cfg.Zillow.RetryMax,
		BackoffBase:   cfg.Zillow.BackoffBase,
		BackoffCap:    cfg.Zillow.BackoffCap,
		RatePerSecond: cfg.Zillow.RatePerSecond,
	})
	client.SetDebug(*verbose)

	sessionCache := cache.NewMemoryCache()
	defer sessionCache.Close()
	resolver := usecase.NewResolver(client, sessionCache, usecase.ResolverConfig{
		BaseURL:  cfg.Zillow.BaseURL,
		CacheTTL: cfg.Pipeline.ResolveCacheTTL,
	})

	pipeline, err := usecase.NewPipeline(client, resolver, usecase.PipelineConfig{
		Concurrency: cfg.Pipeline.Concurrency,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("cannot build pipeline")
	}

	if *serve {
		runServer(cfg, pipeline)
		return
	}

	runBatch(cfg, pipeline, *inputPath)
}

// runBatch reads inputs, drives them through the pipeline, and exports
func runBatch(cfg *config.Config, pipeline *usecase.Pipeline, inputPath string) {
	if inputPath == "" {
		log.Fatal().Msg("batch mode requires -input")
	}

	inputs, err := readInputs(inputPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", inputPath).Msg("cannot read inputs")
	}
	if len(inputs) == 0 {
		log.Warn().Str("path", inputPath).Msg("no input values found")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcomes := pipeline.Run(ctx, inputs)

	resolved := 0
	for _, outcome := range outcomes {
		if outcome.OK() {
			resolved++
		}
	}

	format := cfg.Output.Format
	if format == "" {
		format = export.GuessFormat(cfg.Output.Path)
	}

	formats := []string{format}
	if format == "both" {
		formats = []string{"json", "csv"}
	}

	for _, f := range formats {
		exporter, err := export.ForFormat(f)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot build exporter")
		}
		if err := exporter.Export(outcomes, outputPathFor(cfg.Output.Path, f)); err != nil {
			log.Fatal().Err(err).Msg("export failed")
		}
	}

	fmt.Printf("Processed %d inputs, successfully resolved %d properties.\n", len(inputs), resolved)
}

// runServer exposes the pipeline over HTTP
func runServer(cfg *config.Config, pipeline *usecase.Pipeline) {
	handler := httpDelivery.NewHandler(pipeline)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := ":" + cfg.Server.Port
	log.Info().Str("addr", addr).Msg("listening")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// readInputs loads one value per line, skipping blank lines and # comments
func readInputs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var values []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		values = append(values, line)
	}
	return values, scanner.Err()
}

// outputPathFor swaps the extension when exporting both formats from one path
func outputPathFor(path, format string) string {
	if strings.HasSuffix(strings.ToLower(path), "."+format) {
		return path
	}
	if idx := strings.LastIndex(path, "."); idx > 0 {
		return path[:idx] + "." + format
	}
	return path + "." + format
}

func setupLogging(verbose bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
