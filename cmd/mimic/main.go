package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mimicgo/mimic/internal/cli"
	"github.com/mimicgo/mimic/internal/config"
	"github.com/mimicgo/mimic/internal/utils"
)

func main() {
	var (
		configFlag  = flag.String("config", "", "Path to a .mimic.toml configuration file (defaults to discovery next to go.mod)")
		prefixFlag  = flag.String("prefix", "", "Name prefix for generated doubles (overrides configuration)")
		verboseFlag = flag.Bool("verbose", false, "Enable verbose output and detailed error reporting")
		quietFlag   = flag.Bool("quiet", false, "Only show errors and final results")
		cleanFlag   = flag.Bool("clean", false, "Delete generated double files from the specified directories")
		helpFlag    = flag.Bool("help", false, "Show help information")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <directory-paths...>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Mimic Test Double Generator\n")
		fmt.Fprintf(os.Stderr, "Recursively scans directories for Go files with mimic:: directives and generates test doubles.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nArguments:\n")
		fmt.Fprintf(os.Stderr, "  directory-paths    One or more directories to scan for Go files with directives\n")
		fmt.Fprintf(os.Stderr, "                     Supports Go-style patterns like './...' for recursive scanning\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s ./...                      # Scan everything recursively\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s ./internal/store           # Scan one package\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --verbose ./...            # Enable detailed output\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --clean ./...              # Delete generated files\n", os.Args[0])
	}

	flag.Parse()

	if *helpFlag {
		flag.Usage()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Error: At least one directory path is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	var diagnostics *utils.DiagnosticSystem
	if *quietFlag {
		diagnostics = utils.NewQuietDiagnostics()
	} else if *verboseFlag {
		diagnostics = utils.NewVerboseDiagnostics()
	} else {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}

	diagnostics.Section("Mimic Test Double Generator")

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		diagnostics.Error("Configuration failed: %v", err)
		os.Exit(1)
	}
	if *prefixFlag != "" {
		cfg.NamePrefix = *prefixFlag
	}

	if *cleanFlag {
		runClean(cfg, diagnostics, args)
		return
	}

	if *verboseFlag {
		diagnostics.Subsection("Configuration")
		diagnostics.List("Target directories: %s", strings.Join(args, ", "))
		diagnostics.List("Output file: %s", cfg.OutputFile)
		if cfg.NamePrefix != "" {
			diagnostics.List("Name prefix: %s", cfg.NamePrefix)
		}
	}

	dirs, err := cli.ExpandPatterns(args)
	if err != nil {
		diagnostics.Error("Failed to resolve directories: %v", err)
		os.Exit(1)
	}

	diagnostics.Subsection("Double Generation")
	generator := cli.NewGenerator(cfg, diagnostics)
	summary, err := generator.Run(dirs)
	if summary != nil {
		summary.Print(diagnostics, "Generation Summary")
	}
	if err != nil {
		diagnostics.Error("Generation failed: %v", err)
		os.Exit(1)
	}
	diagnostics.Success("Done")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Discover(wd)
}

func runClean(cfg *config.Config, diagnostics *utils.DiagnosticSystem, args []string) {
	diagnostics.Info("Starting cleanup operation...")

	cleaner := cli.NewCleaner(cfg, diagnostics)
	total := &cli.Summary{}
	for _, arg := range args {
		root := strings.TrimSuffix(arg, "/...")
		summary, err := cleaner.Run(root)
		if err != nil {
			diagnostics.Error("Clean operation failed: %v", err)
			os.Exit(1)
		}
		total.FilesRemoved += summary.FilesRemoved
	}
	diagnostics.Success("Removed %d generated file(s)", total.FilesRemoved)
}
