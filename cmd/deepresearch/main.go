// Command deepresearch runs one research session from the command line and
// prints the cited report.
//
// Usage:
//
//	deepresearch [flags] "your research question"
//
// Provider API keys (OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY) and
// TAVILY_API_KEY are read from the environment.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/deepresearch-ai/deepresearch"
	"github.com/deepresearch-ai/deepresearch/config"
	"github.com/deepresearch-ai/deepresearch/logging"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		provider   = flag.String("provider", "", "reasoning provider: openai, anthropic or gemini")
		modelName  = flag.String("model", "", "override the provider's default model")
		output     = flag.String("output", "", "directory for markdown session records")
		maxRounds  = flag.Int("max-rounds", 0, "maximum research iterations")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] \"query\"\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	query := flag.Arg(0)

	if err := run(query, *configPath, *provider, *modelName, *output, *maxRounds); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(query, configPath, provider, modelName, output string, maxRounds int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Flags win over file and environment.
	if provider != "" {
		cfg.Provider = provider
	}
	if modelName != "" {
		cfg.Model = modelName
	}
	if output != "" {
		cfg.OutputDir = output
	}
	if maxRounds > 0 {
		cfg.MaxRounds = maxRounds
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := logging.ParseLevel(cfg.Log.Level)
	logger := logging.NewLogger(&logging.Config{
		Level:  level,
		Format: cfg.Log.Format,
	})
	logger.Debug("logging configured", "level", level.String(), "format", cfg.Log.Format)

	dr, err := deepresearch.New(deepresearch.FromConfig(cfg), func(o *deepresearch.Options) {
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := dr.Run(ctx, query)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s\n", report.Text)
	fmt.Printf("\n---\nSession %s finished after %d round(s), %d source(s).\n",
		report.SessionID, report.Rounds, len(report.Sources))
	if report.Locator != "" {
		fmt.Printf("Report saved to: %s\n", report.Locator)
	}
	return nil
}
