package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/kisy/appmole/pkg/checkpoint"
	"github.com/kisy/appmole/pkg/metrics"
	"github.com/kisy/appmole/pkg/monitor"
	"github.com/kisy/appmole/pkg/registry"
	"github.com/kisy/appmole/pkg/sample"
	"github.com/kisy/appmole/pkg/stats"
	"github.com/kisy/appmole/pkg/store"
	"github.com/kisy/appmole/pkg/store/duckdb"
	"github.com/kisy/appmole/pkg/store/jsonfile"
	"github.com/kisy/appmole/pkg/store/sqlite"
	"github.com/kisy/appmole/web"
)

const defaultConfig = "appmole.toml"

type StoreConfig struct {
	Driver   string `toml:"driver"`
	Path     string `toml:"path"`
	Schedule string `toml:"schedule"`
}

type Config struct {
	Listen          string      `toml:"listen"`
	RefreshInterval int         `toml:"interval"`
	Nettop          string      `toml:"nettop"`
	Interface       string      `toml:"interface"`
	Top             int         `toml:"top"`
	Store           StoreConfig `toml:"store"`
}

func main() {
	var configFile string
	var listenAddr string
	var interval int
	var storeDriver string

	flag.StringVar(&configFile, "config", defaultConfig, "Path to configuration file")
	flag.StringVar(&listenAddr, "listen", "", "Server listen address (overrides config)")
	flag.IntVar(&interval, "interval", 0, "Sampling interval in seconds (default 1)")
	flag.StringVar(&storeDriver, "store", "", "Checkpoint store: json, sqlite or duckdb (overrides config)")
	flag.Parse()

	// Load Config
	var config Config
	if _, err := os.Stat(configFile); err == nil {
		if _, err := toml.DecodeFile(configFile, &config); err != nil {
			log.Fatalf("Failed to parse config file: %v", err)
		}
		log.Printf("Loaded config from %s", configFile)
	} else if os.IsNotExist(err) && configFile != defaultConfig {
		// Only error if user explicitly provided a config file that doesn't exist
		log.Fatalf("Config file not found: %s", configFile)
	}

	// Flag overrides config
	if listenAddr != "" {
		config.Listen = listenAddr
	}
	if interval > 0 {
		config.RefreshInterval = interval
	}
	if storeDriver != "" {
		config.Store.Driver = storeDriver
	}
	applyDefaults(&config)

	log.Println("Starting AppMole...")

	// 1. Checkpoint store
	st, err := openStore(config.Store)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", config.Store.Driver, err)
	}
	defer st.Close()

	// 2. Display names
	reg, err := registry.New(0, nil)
	if err != nil {
		log.Fatalf("Failed to create process registry: %v", err)
	}

	// 3. Aggregator
	sampler := sample.NewNettopSampler(config.Nettop, 0)
	agg := stats.NewAggregator(sampler)
	agg.SetDisplayNamer(reg)
	counters := monitor.NewCounterReader(config.Interface)
	agg.SetCounterReader(counters)
	log.Printf("Monitoring interface: %s", counters.Interface())

	// 4. Restore totals, then keep saving them
	persister := checkpoint.NewPersister(agg, st, config.Store.Schedule)
	if err := persister.Load(context.Background()); err != nil {
		log.Printf("Warning: starting with empty totals: %v", err)
	}
	agg.SetResetHook(func() {
		if err := persister.Save(context.Background()); err != nil {
			log.Printf("Failed to save after reset: %v", err)
		}
	})
	if err := persister.Start(); err != nil {
		log.Fatalf("Failed to start checkpoint schedule: %v", err)
	}

	// 5. Prometheus Exporter
	prometheus.MustRegister(metrics.NewExporter(agg))

	// 6. Web Server
	srv := web.NewServer(agg, config.Listen, config.Top)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Sampling every %d seconds", config.RefreshInterval)
		return agg.Run(gctx, time.Duration(config.RefreshInterval)*time.Second)
	})
	g.Go(func() error {
		return srv.ListenAndServe()
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	runErr := g.Wait()

	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := persister.Stop(saveCtx); err != nil {
		log.Printf("Final save failed: %v", err)
	} else {
		gs := agg.GetGlobalStats()
		log.Printf("Saved totals for %d apps (%s down, %s up)",
			len(agg.Snapshot().TotalBytes), humanize.IBytes(gs.TotalDownload), humanize.IBytes(gs.TotalUpload))
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Fatalf("AppMole stopped: %v", runErr)
	}
}

func applyDefaults(c *Config) {
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = 1
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Nettop == "" {
		c.Nettop = sample.DefaultNettopPath
	}
	if c.Top <= 0 {
		c.Top = web.DefaultTop
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "json"
	}
	if c.Store.Schedule == "" {
		c.Store.Schedule = checkpoint.DefaultSchedule
	}
}

func openStore(c StoreConfig) (store.Store, error) {
	switch c.Driver {
	case "json":
		s, err := jsonfile.NewStore(c.Path)
		if err != nil {
			return nil, err
		}
		log.Printf("Checkpoints: %s", s.Path())
		return s, nil
	case "sqlite":
		s, err := sqlite.NewStore(c.Path)
		if err != nil {
			return nil, err
		}
		log.Printf("Checkpoints: sqlite %s", s.Path())
		return s, nil
	case "duckdb":
		s, err := duckdb.NewStore(c.Path)
		if err != nil {
			return nil, err
		}
		log.Printf("Checkpoints: duckdb %s", s.Path())
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.Driver)
	}
}
