package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/alejandrodnm/poolsim/config"
	"github.com/alejandrodnm/poolsim/internal/adapters/csvsample"
	"github.com/alejandrodnm/poolsim/internal/adapters/notify"
	"github.com/alejandrodnm/poolsim/internal/adapters/storage"
	"github.com/alejandrodnm/poolsim/internal/domain"
	"github.com/alejandrodnm/poolsim/internal/ports"
	"github.com/alejandrodnm/poolsim/internal/simulation"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	seedFlag := flag.String("seed", "", "RNG seed (overrides config; empty = random, printed in the report)")
	trials := flag.Int("trials", 0, "bootstrap trials per scenario (overrides config)")
	mode := flag.String("mode", "", "comparison mode: index_paired|all_pairs (overrides config)")
	table := flag.Bool("table", false, "print full tables (default: one line per comparison)")
	jsonOut := flag.Bool("json", false, "print the report as JSON on stdout")
	history := flag.Bool("history", false, "list stored runs and exit")
	fetch := flag.Bool("fetch", false, "fetch block payments into the sample CSV and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *trials > 0 {
		cfg.Simulation.TrialCount = *trials
	}
	if *mode != "" {
		cfg.Simulation.ComparisonMode = strings.ToLower(*mode)
	}
	if *seedFlag != "" {
		seed, err := strconv.ParseUint(*seedFlag, 10, 64)
		if err != nil {
			slog.Error("invalid -seed", "err", err, "seed", *seedFlag)
			os.Exit(1)
		}
		cfg.Simulation.Seed = &seed
	}

	// con -json stdout queda solo para el reporte
	var logOut io.Writer = os.Stdout
	if *jsonOut {
		logOut = os.Stderr
	}
	setupLogger(cfg.Log, logOut)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *fetch {
		if err := runFetch(ctx, cfg.Fetch, cfg.Sample.Path); err != nil {
			slog.Error("fetch failed", "err", err)
			os.Exit(1)
		}
		return
	}

	var store *storage.SQLiteStorage
	if cfg.Storage.DSN != "" {
		store, err = storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
	}

	console := notify.NewConsole(*table)

	if *history {
		if store == nil {
			slog.Error("-history needs storage.dsn")
			os.Exit(1)
		}
		runs, err := store.GetRuns(ctx, 20)
		if err != nil {
			slog.Error("failed to read history", "err", err)
			os.Exit(1)
		}
		console.PrintRuns(runs)
		return
	}

	var reporter ports.Reporter = console
	if *jsonOut {
		reporter = notify.NewJSON()
	}

	reducer, err := simulation.ReducerByName(cfg.Simulation.Reducer)
	if err != nil {
		slog.Error("invalid reducer", "err", err)
		os.Exit(1)
	}

	s := cfg.Simulation
	runCfg := simulation.RunConfig{
		Plan: simulation.StandardPlan(simulation.PlanParams{
			ReferencePoolSize:         s.ReferencePoolSize,
			FeeMultiplier:             *s.FeeMultiplier,
			BlocksPerValidatorPerYear: s.BlocksPerValidatorPerYear,
			PoolSizes:                 s.PoolSizes,
		}),
		TrialCount: s.TrialCount,
		Engine: simulation.EngineConfig{
			Workers: s.Workers,
			Seed:    s.Seed,
			Reducer: reducer,
		},
		Mode: domain.ComparisonMode(s.ComparisonMode),
	}

	slog.Info("poolsim starting",
		"config", *configPath,
		"sample", cfg.Sample.Path,
		"trials", s.TrialCount,
		"reference_pool", s.ReferencePoolSize,
		"fee", *s.FeeMultiplier,
		"mode", s.ComparisonMode,
		"reducer", s.Reducer,
	)

	// un *SQLiteStorage nil dentro de la interfaz no compara igual a nil
	var runStore ports.RunStorage
	if store != nil {
		runStore = store
	}

	source := csvsample.NewLoader(cfg.Sample.Path, cfg.Sample.Column)
	runner, err := simulation.NewRunner(runCfg, source, reporter, runStore)
	if err != nil {
		slog.Error("failed to build runner", "err", err)
		os.Exit(1)
	}

	if _, err := runner.Run(ctx); err != nil {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig, w io.Writer) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}
