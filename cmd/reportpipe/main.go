package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reportpipe/internal/config"
	"reportpipe/internal/filter"
	"reportpipe/internal/logging"
	"reportpipe/internal/mail"
	"reportpipe/internal/metrics"
	"reportpipe/internal/metrics/datadog"
	"reportpipe/internal/metrics/prompush"
	"reportpipe/internal/pipeline"
	"reportpipe/internal/sched"
	"reportpipe/internal/transform"
	"reportpipe/internal/transform/builtin"

	// register all backends with the warehouse factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "reportpipe/internal/warehouse/all"
)

// main is the entry point for the reportpipe binary. It loads the config,
// optionally initializes a metrics backend, and executes a single run or
// the daily scheduler.
func main() {
	var (
		cfgPath           string
		filtersPath       string
		envPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		dogstatsdAddrFlg  string
		validate          bool
		schedule          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/reportpipe.json", "config JSON path")
	flag.StringVar(&filtersPath, "filters", "", "optional YAML filter catalog overriding the built-in fragments")
	flag.StringVar(&envPath, "env", "", "optional .env file with secrets (default .env if present)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none; env METRICS_BACKEND)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&dogstatsdAddrFlg, "dogstatsd-addr", "", "DogStatsD address (overrides env DOGSTATSD_ADDR)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&schedule, "schedule", false, "run as a daemon on the configured daily schedule")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	if err := config.LoadEnvFile(envPath); err != nil {
		fatalf("load env: %v", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("load config: %v", err)
	}

	catalog := filter.Default()
	if filtersPath != "" {
		catalog, err = filter.LoadCatalog(filtersPath)
		if err != nil {
			fatalf("load filters: %v", err)
		}
	}

	// Validate the config before anything touches the warehouse.
	issues := config.Validate(cfg, catalog)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	setupMetrics(metricsBackendFlg, pushGatewayURLFlg, dogstatsdAddrFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	lgr, closeLog := logging.New(cfg.Log)
	defer closeLog()

	mailer, err := mail.New(cfg.SMTP)
	if err != nil {
		fatalf("smtp config: %v", err)
	}

	p := &pipeline.Pipeline{
		Cfg:        cfg,
		Catalog:    catalog,
		Transforms: registerTransforms(),
		Mailer:     mailer,
		Logger:     lgr,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if schedule {
		d := &sched.Daemon{
			DailyAt: cfg.Schedule.DailyAt,
			Backoff: time.Duration(cfg.Schedule.BackoffSeconds) * time.Second,
			Logger:  lgr,
			Run: func(ctx context.Context) error {
				_, err := p.Run(ctx)
				return err
			},
		}
		if err := d.Start(ctx); err != nil && err != context.Canceled {
			fatalf("scheduler: %v", err)
		}
		return
	}

	start := time.Now()
	sum, err := p.Run(ctx)
	if *verbose {
		log.Printf("run: succeeded=%d failed=%d no_data=%d delivered=%v in %s",
			sum.Succeeded, sum.Failed, sum.NoData, sum.Delivered,
			time.Since(start).Truncate(time.Millisecond))
	}
	if err != nil {
		log.Printf("run failed: %v", err)
		os.Exit(1)
	}
}

// setupMetrics decides the metrics backend: flag → env → disabled.
func setupMetrics(backendName, gwURL, ddAddr string, verbose bool) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend("reportpipe", gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=pushgateway url=%v", gwURL)
		metrics.SetBackend(b)

	case "datadog":
		if ddAddr == "" {
			ddAddr = os.Getenv("DOGSTATSD_ADDR")
		}
		if ddAddr == "" {
			ddAddr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{Addr: ddAddr, Namespace: "reportpipe."})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=datadog addr=%v", ddAddr)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

// registerTransforms wires the per-report transformers. Reports opt in via
// their transform flag; a report without an entry here passes through.
func registerTransforms() *transform.Registry {
	reg := transform.NewRegistry()

	reg.Register("ingresos", transform.Chain{
		builtin.Normalize{FoldHeaders: true},
		builtin.DeDup{Keys: []string{"cuenta", "fecha"}},
		builtin.SortBy{Column: "fecha", Desc: true},
	})
	reg.Register("egresos", transform.Chain{
		builtin.Normalize{FoldHeaders: true},
		builtin.SortBy{Column: "monto", Desc: true},
	})

	return reg
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
