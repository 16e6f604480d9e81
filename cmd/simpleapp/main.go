package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/simpleapp/internal/application"
	"github.com/eugenenazirov/simpleapp/internal/calculator"
	"github.com/eugenenazirov/simpleapp/internal/config"
	"github.com/eugenenazirov/simpleapp/internal/logging"
)

const (
	sampleA int32 = 2
	sampleB int32 = 3
)

var signalNotify = signal.Notify

type cli struct {
	app   *kingpin.Application
	run   *kingpin.CmdClause
	serve *kingpin.CmdClause

	configFile     *string
	port           *string
	overflowPolicy *string
	logLevel       *string
	rateLimitRPS   *float64
	rateLimitBurst *int
}

func newCLI() *cli {
	app := kingpin.New("simpleapp", "SimpleApp - adds two 32-bit integers")
	c := &cli{app: app}

	c.run = app.Command("run", "Print the sum of 2 and 3").Default()

	c.serve = app.Command("serve", "Expose the calculator over HTTP")
	c.configFile = c.serve.Flag("config", "Path to YAML configuration file").String()
	c.port = c.serve.Flag("port", "HTTP port exposed by the service").String()
	c.overflowPolicy = c.serve.Flag("overflow-policy", "Overflow policy: wrap, saturate or error").String()
	c.logLevel = c.serve.Flag("log-level", "Log level: debug, info, warn, error").String()
	c.rateLimitRPS = c.serve.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	c.rateLimitBurst = c.serve.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	return c
}

func (c *cli) overrides() *config.CLIOverrides {
	overrides := &config.CLIOverrides{
		ConfigFile:     *c.configFile,
		Port:           c.port,
		OverflowPolicy: c.overflowPolicy,
		LogLevel:       c.logLevel,
	}

	if *c.rateLimitRPS >= 0 {
		overrides.RateLimitRPS = c.rateLimitRPS
	}

	if *c.rateLimitBurst >= 0 {
		overrides.RateLimitBurst = c.rateLimitBurst
	}

	return overrides
}

func main() {
	c := newCLI()

	switch kingpin.MustParse(c.app.Parse(os.Args[1:])) {
	case c.run.FullCommand():
		if err := run(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "simpleapp: %v\n", err)
			os.Exit(1)
		}
	case c.serve.FullCommand():
		serve(c.overrides())
	}
}

// run prints the sample sum as a single "a + b = sum" line.
func run(w io.Writer) error {
	calc := calculator.New(calculator.PolicyWrap)
	sum, err := calc.Add(sampleA, sampleB)
	if err != nil {
		return fmt.Errorf("add %d and %d: %w", sampleA, sampleB, err)
	}
	if _, err := fmt.Fprintln(w, calculator.FormatSum(sampleA, sampleB, sum)); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

func serve(overrides *config.CLIOverrides) {
	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
	logger.Info("overflow policy active", zap.Stringer("policy", cfg.OverflowPolicy))

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
