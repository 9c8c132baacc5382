// Command nexrad inspects NEXRAD Level III product files and builds
// pixel-to-radar projection tables.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-nexrad/internal/config"
	"github.com/robert-malhotra/go-nexrad/internal/observability"
	"github.com/robert-malhotra/go-nexrad/nexrad"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if err := newRootCmd(cfg, logger).Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	noProgress bool
}

func newRootCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	a := &app{cfg: cfg, logger: logger}

	rootCmd := &cobra.Command{
		Use:          "nexrad",
		Short:        "Inspect NEXRAD Level III products and build projection tables",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := config.CheckBodySize(a.cfg.MaxBodySize); err != nil {
				return fmt.Errorf("invalid --max-body-size: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().IntVar(&a.cfg.MaxBodySize, "max-body-size", cfg.MaxBodySize, "Ceiling on a decompressed message body in bytes")
	rootCmd.PersistentFlags().BoolVar(&a.noProgress, "no-progress", false, "Disable progress bars")

	rootCmd.AddCommand(
		a.infoCmd(),
		a.packetsCmd(),
		a.radialCmd(),
		a.rasterCmd(),
		a.tabularCmd(),
		a.projectCmd(),
	)
	return rootCmd
}

func (a *app) open(path string) (*nexrad.Message, error) {
	m, err := nexrad.Open(path,
		nexrad.WithLogger(a.logger),
		nexrad.WithMaxBodySize(a.cfg.MaxBodySize),
	)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return m, nil
}
