package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"grimm.is/georules/internal/brand"
	"grimm.is/georules/internal/config"
)

// RunConfig handles configuration CLI commands
func RunConfig(args []string, out io.Writer) error {
	if len(args) < 1 {
		printConfigUsage(out)
		return errors.New("missing config command")
	}

	switch args[0] {
	case "init":
		return runConfigInit(args[1:], out)
	case "show":
		return runConfigShow(args[1:], out)
	case "validate":
		if len(args) < 2 {
			return RunCheck("", false)
		}
		return RunCheck(args[1], false)
	default:
		Printer.Fprintf(out, "Unknown config command: %s\n\n", args[0])
		printConfigUsage(out)
		return fmt.Errorf("unknown config command %q", args[0])
	}
}

func printConfigUsage(out io.Writer) {
	Printer.Fprintf(out, `Usage: %s config <command>

Commands:
  init      Write a default configuration file
            Options: --output (-o) <file>, --force
  show      Print the effective configuration (defaults applied) as HCL
  validate  Validate a configuration file (same as check)
`, brand.BinaryName)
}

func runConfigInit(args []string, out io.Writer) error {
	flags := flag.NewFlagSet("config init", flag.ContinueOnError)
	flags.SetOutput(out)
	output := flags.String("output", brand.DefaultConfigPath(), "Where to write the configuration")
	flags.StringVar(output, "o", brand.DefaultConfigPath(), "Where to write the configuration (short)")
	force := flags.Bool("force", false, "Overwrite an existing file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(*output); err == nil && !*force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", *output)
	}

	cfg := config.Default()
	cfg.Source.Member = config.DefaultMember
	if err := config.SaveFile(cfg, *output); err != nil {
		return err
	}
	Printer.Fprintf(out, "Wrote %s\n", *output)
	return nil
}

func runConfigShow(args []string, out io.Writer) error {
	path := brand.DefaultConfigPath()
	explicit := false
	if len(args) > 0 {
		path = args[0]
		explicit = true
	}

	cfg, err := config.LoadOrDefault(path, explicit)
	if err != nil {
		return err
	}
	_, err = out.Write(config.GenerateHCL(cfg))
	return err
}
