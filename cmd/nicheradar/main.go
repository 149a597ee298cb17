package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nicheradar",
		Short: "Find underserved content niches by comparing topic momentum against YouTube supply",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(scanCmd())
	root.AddCommand(opportunitiesCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(discoverCmd())
	root.AddCommand(recalculateCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func scanCmd() *cobra.Command {
	var sources []string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Collect posts from all sources and score topic opportunities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(sources)
		},
	}

	cmd.Flags().StringSliceVar(&sources, "source", nil, "specific sources to scan (e.g., reddit,hn,rss)")
	return cmd
}

func opportunitiesCmd() *cobra.Command {
	var (
		jsonOutput bool
		minGap     float64
		phase      string
		watched    bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "opportunities",
		Short: "Show ranked content opportunities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpportunities(jsonOutput, minGap, phase, watched, limit)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().Float64Var(&minGap, "min-gap", 0, "minimum gap score")
	cmd.Flags().StringVar(&phase, "phase", "", "filter by phase (innovation, emergence, growth, maturity, saturated)")
	cmd.Flags().BoolVar(&watched, "watched", false, "watched opportunities only")
	cmd.Flags().IntVar(&limit, "limit", 20, "max opportunities to show")
	return cmd
}

func checkCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check <keyword>",
		Short: "Run a live YouTube supply check for a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func discoverCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "discover <seed>",
		Short: "Expand a seed keyword into sub-niches via autocomplete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func recalculateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recalculate",
		Short: "Rescore every tracked opportunity from stored signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecalculate()
		},
	}
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
