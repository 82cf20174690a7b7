package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/Oliver16/fincast/internal/config"
	"github.com/Oliver16/fincast/internal/output"
	"github.com/Oliver16/fincast/internal/projection"
	"github.com/Oliver16/fincast/internal/store"
	"github.com/Oliver16/fincast/internal/tax"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagScenario string
	flagFormat   string
	flagDatabase string
	flagStrict   bool
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "fincast",
	Short: "Household financial projection CLI",
	Long:  "Deterministic month-by-month projection of household finances across what-if scenarios",
}

var projectCmd = &cobra.Command{
	Use:   "project [input-file]",
	Short: "Run a scenario projection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(flagVerbose)

		parser := config.NewInputParser()
		in, err := parser.LoadFromFile(args[0])
		if err != nil {
			return err
		}

		scenarioID := flagScenario
		if scenarioID == "" {
			scenarioID = in.BaselineID()
		}

		engine := projection.NewEngine(tax.NewCalculator(tax.DefaultConfig()), log)
		opts := projection.Options{StrictChanges: flagStrict}

		var result *projection.RunResult
		if flagDatabase != "" {
			db, err := store.Open(flagDatabase, log)
			if err != nil {
				return err
			}
			defer db.Close()
			result, err = engine.RunPersisted(db, in.ToInputs(), scenarioID, opts)
			if err != nil {
				return err
			}
		} else {
			result, err = engine.Run(in.ToInputs(), scenarioID, opts)
			if err != nil {
				return err
			}
		}

		formatter, err := output.NewFormatter(flagFormat)
		if err != nil {
			return err
		}
		rendered, err := formatter.Format(result)
		if err != nil {
			return fmt.Errorf("format result: %w", err)
		}
		_, err = os.Stdout.Write(rendered)
		return err
	},
}

var scenariosCmd = &cobra.Command{
	Use:   "scenarios [input-file]",
	Short: "List the scenarios in an input file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parser := config.NewInputParser()
		in, err := parser.LoadFromFile(args[0])
		if err != nil {
			return err
		}
		for _, sc := range in.Scenarios {
			marker := " "
			if sc.IsBaseline {
				marker = "*"
			}
			parent := ""
			if sc.ParentID != "" {
				parent = fmt.Sprintf(" (parent: %s)", sc.ParentID)
			}
			fmt.Printf("%s %s: %s, %d months, %d changes%s\n",
				marker, sc.ID, sc.Name, sc.HorizonMonths, len(sc.Changes), parent)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "fincast %s (commit %s, built %s)\n", version, commit, date)
		if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
			fmt.Fprintln(os.Stdout, bi.Main.Path)
		}
	},
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func init() {
	projectCmd.Flags().StringVarP(&flagScenario, "scenario", "s", "", "scenario id to run (default: the baseline)")
	projectCmd.Flags().StringVarP(&flagFormat, "format", "f", "table", "output format: table, csv, or json")
	projectCmd.Flags().StringVar(&flagDatabase, "db", "", "sqlite database path to persist records (optional)")
	projectCmd.Flags().BoolVar(&flagStrict, "strict", false, "fail on unknown or malformed changes instead of skipping")
	projectCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
