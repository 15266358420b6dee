// Command kaosd runs the satellite-to-ground visibility HTTP service:
// loads configuration, opens the ephemeris store, and serves the four
// endpoints of spec.md §6. It also carries an `ingest` subcommand that
// loads a KAOS-style ephemeris text file through C9/C8, since the service
// has no data until something populates the store.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kaosnet/visibility/api"
	"github.com/kaosnet/visibility/config"
	"github.com/kaosnet/visibility/ephemeris"
	"github.com/kaosnet/visibility/ephparse"
	"github.com/kaosnet/visibility/logging"
	"github.com/kaosnet/visibility/metrics"
	"github.com/kaosnet/visibility/orchestrator"
	"github.com/kaosnet/visibility/store"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "ingest" {
		if err := runIngest(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "kaosd ingest:", err)
			os.Exit(1)
		}
		return
	}

	configPath := flag.String("config", "", "path to a YAML/JSON/TOML config file (optional; env vars also read)")
	addr := flag.String("addr", "", "HTTP listen address, overriding config")
	flag.Parse()

	if err := run(*configPath, *addr); err != nil {
		fmt.Fprintln(os.Stderr, "kaosd:", err)
		os.Exit(1)
	}
}

func run(configPath, addrOverride string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if addrOverride != "" {
		cfg.Addr = addrOverride
	}

	log, err := logging.New(logging.Config{
		Level:     cfg.LoggingLevel,
		Directory: cfg.LoggingDirectory,
		FileName:  cfg.LoggingFileName,
	})
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}

	ephStore := store.New(db)
	cache := store.NewCache(db)
	// The default registry is the one promhttp.Handler serves on /metrics.
	m := metrics.New(prometheus.DefaultRegisterer)

	orch := orchestrator.New(ephStore, cache, cfg.CalculationPrecision, ephemeris.Cubic, log, m)
	router := api.NewRouter(orch, log, m)

	log.WithField("addr", cfg.Addr).Info("kaosd listening")
	return http.ListenAndServe(cfg.Addr, router)
}

// runIngest implements `kaosd ingest -file=... -platform-id=... -platform-name=...`,
// parsing a KAOS-style ephemeris text file (C9) and loading it into the
// ephemeris store (C8) — the only way the service's data gets populated.
func runIngest(args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML/JSON/TOML config file (optional; env vars also read)")
	filePath := fs.String("file", "", "path to a KAOS-style ephemeris text file")
	platformID := fs.Int64("platform-id", 0, "platform id to associate the file with")
	platformName := fs.String("platform-name", "", "human-readable satellite name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *filePath == "" || *platformID == 0 || *platformName == "" {
		return fmt.Errorf("ingest requires -file, -platform-id, and -platform-name")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	ephStore := store.New(db)

	f, err := os.Open(*filePath)
	if err != nil {
		return fmt.Errorf("opening ephemeris file: %w", err)
	}
	defer f.Close()

	pf, err := ephparse.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing ephemeris file: %w", err)
	}

	ctx := context.Background()
	if err := ephparse.Load(ctx, ephStore, *platformID, *platformName, pf); err != nil {
		return fmt.Errorf("loading ephemeris file: %w", err)
	}

	fmt.Printf("kaosd ingest: loaded %d samples for platform %d (%s)\n", len(pf.Samples), *platformID, *platformName)
	return nil
}

func openDB(cfg config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.AutoMigrate(&store.Satellite{}, &store.OrbitSegment{}, &store.OrbitSample{}, &store.CacheEntry{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return db, nil
}
