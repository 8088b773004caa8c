package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	hjson "github.com/hjson/hjson-go/v4"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"startup_valuation/pkg/core/benchmarks"
	"startup_valuation/pkg/core/hybrid"
	"startup_valuation/pkg/core/marketdata"
	"startup_valuation/pkg/core/montecarlo"
	"startup_valuation/pkg/core/report"
	"startup_valuation/pkg/models"
)

func main() {
	// .env is optional; flags and defaults cover everything.
	_ = godotenv.Load()

	inputPath := flag.String("input", "examples/acme_saas.hjson", "Path to the valuation input file (Hjson)")
	tablesPath := flag.String("tables", os.Getenv("VALUATION_TABLES"), "Optional benchmark table override file (.hjson or .yaml)")
	iterations := flag.Int("iterations", 10_000, "Monte Carlo iteration count")
	seed := flag.Int64("seed", 0, "Random seed (0 uses a time-based seed)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	log.Info().Str("tables", *tablesPath).Msg("loading benchmark tables")
	tables, err := benchmarks.Load(*tablesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("benchmark tables invalid")
	}

	input, err := loadInput(*inputPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *inputPath).Msg("could not load valuation input")
	}
	log.Info().
		Str("company", input.CompanyName).
		Str("stage", string(input.Stage)).
		Str("sector", input.Sector).
		Msg("input loaded")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// No live provider is configured; Resolve falls back to the documented
	// default snapshot.
	market := marketdata.Resolve(ctx, nil)

	log.Info().Msg("running hybrid valuation")
	result, err := hybrid.ComputeValuation(ctx, input, hybrid.Options{Tables: tables, Market: &market})
	if err != nil {
		log.Fatal().Err(err).Msg("valuation failed")
	}
	log.Info().
		Float64("weighted_average", result.WeightedAverage).
		Float64("confidence", result.OverallConfidence).
		Int("methods", len(result.MethodResults)).
		Msg("hybrid valuation complete")

	params := montecarlo.Params{Iterations: *iterations, Tables: tables, Market: &market}
	if *seed != 0 {
		params.Seed = seed
	}
	log.Info().Int("iterations", *iterations).Msg("running Monte Carlo simulation")
	sim, err := montecarlo.Run(ctx, input, params)
	if err != nil {
		// The simulation is an independent path; the hybrid report still stands.
		log.Warn().Err(err).Msg("simulation failed; report will omit the risk section")
		sim = nil
	}

	md := report.RenderMarkdown(result, sim)
	if !report.ValidateMarkdown(md) {
		log.Warn().Msg("rendered report failed markdown validation")
	}
	fmt.Println(md)
}

// loadInput reads a ValuationInput from a lenient Hjson file and normalizes
// its stage.
func loadInput(path string) (models.ValuationInput, error) {
	var input models.ValuationInput
	raw, err := os.ReadFile(path)
	if err != nil {
		return input, err
	}
	if err := hjson.Unmarshal(raw, &input); err != nil {
		return input, fmt.Errorf("parsing %s: %w", path, err)
	}
	stage, ok := models.ParseStage(string(input.Stage))
	if !ok {
		return input, fmt.Errorf("unknown stage %q", input.Stage)
	}
	input.Stage = stage
	return input, nil
}
