package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"chainlens/chainlens"

	"github.com/joho/godotenv"
)

const (
	configurationVariable = "CHAINLENS_CONFIG"
	logLevelVariable      = "CHAINLENS_LOG_LEVEL"
)

const (
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

// run returns 2 for usage and configuration errors and 1 when the analysis or the output fails.
func run(arguments []string, getenv func(string) string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("chainlens", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configurationPath := flags.String("config", getenv(configurationVariable), "Path to YAML configuration file")
	window := flags.Int("window", chainlens.DefaultRollingWindow, "Rolling correlation window, overrides the configuration (5 to 30)")
	logLevel := flags.String("log-level", getenv(logLevelVariable), "Log level (debug, info, warn, error)")
	jsonOutput := flags.Bool("json", false, "Write the report as JSON instead of tables")
	progress := flags.Bool("progress", false, "Show a progress bar while reading files")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "Usage: chainlens [flags] <snapshot.csv | directory>...")
		flags.PrintDefaults()
	}
	err := flags.Parse(arguments)
	if err != nil {
		return exitUsage
	}
	configuration, err := chainlens.LoadConfiguration(*configurationPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "window" {
			configuration.RollingWindow = *window
		}
	})
	if *logLevel != "" {
		configuration.LogLevel = *logLevel
	}
	if *progress {
		configuration.ShowProgress = true
	}
	err = configuration.Validate()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	log := chainlens.NewLogger(configuration.LogLevel, stderr)
	if flags.NArg() == 0 {
		fmt.Fprintln(stderr, "Upload CSVs first")
		flags.Usage()
		return exitUsage
	}
	paths, err := chainlens.ExpandPaths(flags.Args())
	if err != nil {
		log.Error().Err(err).Msg("Failed to resolve input paths")
		return exitFailure
	}
	files, closeFiles, err := chainlens.OpenSourceFiles(paths)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open input files")
		return exitFailure
	}
	defer closeFiles()
	pipeline := chainlens.NewPipeline(configuration, log).WithProgressOutput(stderr)
	report, err := pipeline.Run(files)
	var emptyResult *chainlens.EmptyResultError
	if errors.As(err, &emptyResult) {
		log.Warn().Int("strikes", emptyResult.Strikes).Msg("No computed strikes")
		return exitFailure
	} else if errors.Is(err, chainlens.ErrNoFiles) {
		fmt.Fprintln(stderr, "Upload CSVs first")
		return exitFailure
	} else if err != nil {
		log.Error().Err(err).Msg("Analysis failed")
		return exitFailure
	}
	if *jsonOutput {
		err = chainlens.WriteJSON(stdout, report)
	} else {
		err = chainlens.RenderReport(stdout, report)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to write report")
		return exitFailure
	}
	return 0
}
