package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/leengari/statsbench/internal/config"
	"github.com/leengari/statsbench/internal/logging"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [global options] <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Loads the STATS benchmark tables and parses its query files.\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  load      load tables (and build cache entries)\n")
	fmt.Fprintf(os.Stderr, "  queries   parse a '#' delimited query file\n")
	fmt.Fprintf(os.Stderr, "  schema    print the benchmark registry\n\n")
	fmt.Fprintf(os.Stderr, "Global options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  %s load -data-dir ./datasets/stats/\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s load -table badges -columns none -no-cache\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s queries -file stats_CEB.sql.csv\n", os.Args[0])
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	seqURL := flag.String("seq-url", "", "Seq server URL for structured logs")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: missing command\n\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(afero.NewOsFs(), *configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *seqURL != "" {
		cfg.Log.SeqURL = *seqURL
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeFn := logging.SetupLogger(logging.Options{Level: level, SeqURL: cfg.Log.SeqURL})
	logger, _ = logging.WithRunID(logger)
	slog.SetDefault(logger)

	command, args := flag.Arg(0), flag.Args()[1:]
	logger.Debug("starting command", slog.String("command", command))

	switch command {
	case "load":
		err = runLoad(cfg, args, logger)
	case "queries":
		err = runQueries(args, logger)
	case "schema":
		err = runSchema(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n\n", command)
		flag.Usage()
		closeFn()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", slog.String("command", command), slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeFn()
		os.Exit(1)
	}
	closeFn()
}
