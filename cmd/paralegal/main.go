// Package main is the entry point for the Paralegal legal document
// analyzer CLI. Paralegal runs classification, contradiction detection,
// and remedy generation over plain text legal documents, stores the
// results, and renders reports from the stored analyses.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/harwood/paralegal/cmd/analyze"
	"github.com/harwood/paralegal/cmd/config"
	"github.com/harwood/paralegal/cmd/list"
	"github.com/harwood/paralegal/cmd/report"
	"github.com/harwood/paralegal/cmd/show"
	"github.com/harwood/paralegal/pkg/logger"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	var (
		debug       bool
		logFormat   string
		configFile  string
		showVersion bool
	)

	// Create a new flag set for global flags
	globalFlags := flag.NewFlagSet("paralegal", flag.ExitOnError)
	globalFlags.BoolVar(&debug, "debug", false, "Enable debug logging")
	globalFlags.StringVar(&logFormat, "log-format", "text", "Log format (text or json)")
	globalFlags.StringVar(&configFile, "config", "", "Path to config file")
	globalFlags.BoolVar(&showVersion, "version", false, "Show version information")

	// Parse global flags first
	if err := globalFlags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if showVersion {
		fmt.Printf("paralegal version %s (built %s)\n", version, buildTime) //nolint:forbidigo
		os.Exit(0)
	}

	// Setup logger
	logger.SetupLogger(debug, logFormat)

	// Get the command
	args := globalFlags.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	commandArgs := args[1:]

	// A config file given as a global flag is forwarded to the command.
	if configFile != "" {
		commandArgs = append([]string{"--config", configFile}, commandArgs...)
	}

	// Route to appropriate command
	switch command {
	case "analyze":
		if err := runAnalyze(commandArgs); err != nil {
			logger.Error("analysis failed", "error", err)
			os.Exit(1)
		}
	case "list":
		if err := runList(commandArgs); err != nil {
			logger.Error("list failed", "error", err)
			os.Exit(1)
		}
	case "show":
		if err := runShow(commandArgs); err != nil {
			logger.Error("show failed", "error", err)
			os.Exit(1)
		}
	case "report":
		if err := runReport(commandArgs); err != nil {
			logger.Error("report generation failed", "error", err)
			os.Exit(1)
		}
	case "config":
		if err := runConfig(commandArgs); err != nil {
			logger.Error("config validation failed", "error", err)
			os.Exit(1)
		}
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	//nolint:forbidigo
	fmt.Println(`⚖️  Paralegal Legal Document Analyzer

Usage:
  paralegal [global flags] <command> [command flags]

Commands:
  analyze   Analyze a legal document for issues and remedies
  list      List stored analyses
  show      Show a stored analysis with its issues and remedies
  report    Render a report from a stored analysis
  config    Show and validate the effective configuration
  help      Show this help message

Global Flags:
  --config        Path to config file
  --debug         Enable debug logging
  --log-format    Log format (text or json) (default: text)
  --version       Show version information

Examples:
  paralegal analyze contract.txt
  paralegal analyze lease.txt --document-type lease --output result.json
  paralegal list --status completed --limit 10
  paralegal report latest --format markdown --output report.md

Use "paralegal <command> --help" for more information about a command.`)
}

func runAnalyze(args []string) error {
	return analyze.Run(args)
}

func runList(args []string) error {
	return list.Run(args)
}

func runShow(args []string) error {
	return show.Run(args)
}

func runReport(args []string) error {
	return report.Run(args)
}

func runConfig(args []string) error {
	return config.Run(args)
}
