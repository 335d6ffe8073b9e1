package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"recycling-route-service/internal/adapters/repositories"
	"recycling-route-service/internal/api/dto"
	"recycling-route-service/internal/config"
	"recycling-route-service/internal/report"
	"recycling-route-service/internal/services"
)

// optimize is a one-shot CLI: it plans the week from CSV files, prints the
// result as JSON and can also write an XLSX workbook.
func main() {
	config.Load()

	opts := cliOptions{}
	flag.StringVar(&opts.routes, "routes", config.Get("ROUTES_CSV", "data/weekly_routes.csv"), "weekly routes CSV")
	flag.StringVar(&opts.depots, "depots", config.Get("DEPOTS_CSV", "data/depot_locations.csv"), "depot locations CSV")
	flag.StringVar(&opts.prices, "prices", config.Get("PRICES_CSV", "data/material_prices.csv"), "material prices CSV")
	flag.StringVar(&opts.levelsPath, "levels", config.Get("LEVELS_PATH", ""), "optimization levels YAML (defaults when empty)")
	flag.StringVar(&opts.level, "level", config.Get("DEFAULT_LEVEL", "advanced"), "optimization level")
	flag.IntVar(&opts.maxIterations, "max-iterations", -1, "explicit 2-opt budget; overrides -level when >= 0")
	flag.StringVar(&opts.days, "days", "", "comma separated days to plan (all when empty)")
	flag.IntVar(&opts.workers, "workers", config.GetInt("WORKERS", 0), "days planned in parallel (0 = GOMAXPROCS)")
	flag.StringVar(&opts.xlsx, "xlsx", "", "also write an XLSX report to this path")
	flag.BoolVar(&opts.pretty, "pretty", false, "indent JSON output")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Printf("optimize failed: %v", err)
		stop()
		os.Exit(1)
	}
}

type cliOptions struct {
	routes, depots, prices string
	levelsPath             string
	level                  string
	maxIterations          int
	days                   string
	workers                int
	xlsx                   string
	pretty                 bool
}

func run(ctx context.Context, opts cliOptions, out io.Writer) error {
	levels, err := config.LoadLevelsOrDefault(opts.levelsPath)
	if err != nil {
		return err
	}

	var override *int
	if opts.maxIterations >= 0 {
		override = &opts.maxIterations
	}
	budget, err := levels.Resolve(opts.level, override, "advanced")
	if err != nil {
		return err
	}
	levelName := strings.ToLower(strings.TrimSpace(opts.level))
	if override != nil {
		levelName = ""
	}

	ds, err := repositories.NewCSVDatasetSource(opts.routes, opts.depots, opts.prices).LoadDataset(ctx)
	if err != nil {
		return err
	}

	var days []string
	if opts.days != "" {
		days = strings.Split(opts.days, ",")
	}

	res, err := services.Optimize(ctx, services.OptimizeRequest{
		Requests:      ds.Requests,
		Depots:        ds.Depots,
		Prices:        ds.Prices,
		MaxIterations: budget,
		Rules:         config.BusinessRulesFromEnv(),
		Days:          days,
		Workers:       opts.workers,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(dto.FromOptimizeResult(res, levelName, budget)); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if opts.xlsx != "" {
		if err := report.SaveXLSX(opts.xlsx, res); err != nil {
			return err
		}
		log.Printf("wrote report path=%s", opts.xlsx)
	}

	return nil
}
