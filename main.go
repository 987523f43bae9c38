package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"grimm.is/georules/cmd"
	"grimm.is/georules/internal/brand"
	"grimm.is/georules/internal/i18n"
)

var printer = i18n.NewCLIPrinter()

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "build":
		buildFlags := flag.NewFlagSet("build", flag.ExitOnError)
		configFile := buildFlags.String("config", brand.DefaultConfigPath(), "Configuration file")
		buildFlags.StringVar(configFile, "c", brand.DefaultConfigPath(), "Configuration file (short)")

		outDir := buildFlags.String("output", "", "Output directory (overrides output_dir)")
		buildFlags.StringVar(outDir, "O", "", "Output directory (short)")

		csvPath := buildFlags.String("csv", "", "Read this CSV instead of downloading the dataset")
		accept := buildFlags.Bool("accept", false, "Also emit ACCEPT rule sets")
		workers := buildFlags.Int("workers", 0, "Countries processed concurrently")
		buildFlags.IntVar(workers, "j", 0, "Workers (short)")
		keepGoing := buildFlags.Bool("continue-on-error", false, "Process every country and report all failures")
		collisions := buildFlags.String("collisions", "", "Collision policy: fail or suffix")

		verbose := buildFlags.Bool("verbose", false, "Verbose output")
		buildFlags.BoolVar(verbose, "v", false, "Verbose output (short)")

		buildFlags.Parse(os.Args[2:])

		explicit := false
		buildFlags.Visit(func(f *flag.Flag) {
			if f.Name == "config" || f.Name == "c" {
				explicit = true
			}
		})

		err := cmd.RunBuild(ctx, cmd.BuildOptions{
			ConfigFile:      *configFile,
			ConfigExplicit:  explicit,
			OutputDir:       *outDir,
			CSVPath:         *csvPath,
			Accept:          *accept,
			Workers:         *workers,
			ContinueOnError: *keepGoing,
			Collisions:      *collisions,
			Verbose:         *verbose,
		})
		if err != nil {
			printer.Fprintf(os.Stderr, "Build failed: %v\n", err)
			os.Exit(1)
		}

	case "fetch":
		fetchFlags := flag.NewFlagSet("fetch", flag.ExitOnError)
		configFile := fetchFlags.String("config", brand.DefaultConfigPath(), "Configuration file")
		fetchFlags.StringVar(configFile, "c", brand.DefaultConfigPath(), "Configuration file (short)")
		verbose := fetchFlags.Bool("verbose", false, "Verbose output")
		fetchFlags.BoolVar(verbose, "v", false, "Verbose output (short)")
		fetchFlags.Parse(os.Args[2:])

		explicit := false
		fetchFlags.Visit(func(f *flag.Flag) {
			if f.Name == "config" || f.Name == "c" {
				explicit = true
			}
		})

		if err := cmd.RunFetch(ctx, *configFile, explicit, *verbose); err != nil {
			printer.Fprintf(os.Stderr, "Fetch failed: %v\n", err)
			os.Exit(1)
		}

	case "check":
		checkFlags := flag.NewFlagSet("check", flag.ExitOnError)
		verbose := checkFlags.Bool("verbose", false, "Verbose output")
		checkFlags.BoolVar(verbose, "v", false, "Verbose output (short)")
		checkFlags.Parse(os.Args[2:])

		configFile := brand.DefaultConfigPath()
		if len(checkFlags.Args()) > 0 {
			configFile = checkFlags.Arg(0)
		}

		if err := cmd.RunCheck(configFile, *verbose); err != nil {
			printer.Fprintf(os.Stderr, "Check failed: %v\n", err)
			os.Exit(1)
		}

	case "diff":
		if len(os.Args) < 4 {
			printer.Println("Usage: " + brand.BinaryName + " diff <old-output-dir> <new-output-dir>")
			os.Exit(1)
		}
		if err := cmd.RunDiff(afero.NewOsFs(), os.Args[2], os.Args[3], os.Stdout); err != nil {
			if !errors.Is(err, cmd.ErrRulesDiffer) {
				printer.Fprintf(os.Stderr, "%v\n", err)
			}
			os.Exit(1)
		}

	case "config":
		if err := cmd.RunConfig(os.Args[2:], os.Stdout); err != nil {
			printer.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

	case "version":
		printer.Printf("%s version %s\n", brand.Name, brand.Version)
		printer.Printf("Build: %s\n", brand.BuildTime)
		if brand.GitCommit != "" {
			printer.Printf("Commit: %s\n", brand.GitCommit)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		printer.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printer.Printf(`%s - %s

Usage:
  %s <command> [options]

Commands:
  build     Generate per-country rule sets
            Options: --output (-O) <dir>, --config (-c) <file>, --csv <file>,
                     --accept, --workers (-j) <n>, --continue-on-error,
                     --collisions <fail|suffix>, --verbose (-v)
  fetch     Download and extract the dataset, print the CSV path
            Options: --config (-c) <file>, --verbose (-v)
  check     Validate configuration file
            Options: --verbose (-v)
  diff      Compare rule artifacts of two output directories
  config    Manage configuration
            Subcommands: init, show, validate
  version   Show version information

Examples:
  %s build -O /var/lib/%s/rules            # Download dataset and build DROP rules
  %s build -O ./rules -csv geo.csv -accept   # Local CSV, DROP and ACCEPT rules
  %s diff ./rules.old ./rules                # Review changes between runs
`, brand.Name, brand.Description, brand.BinaryName,
		brand.BinaryName, brand.LowerName,
		brand.BinaryName,
		brand.BinaryName)
}
