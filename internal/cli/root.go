package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chernandez90/InsurancePortal/internal/config"
	pkgconfig "github.com/chernandez90/InsurancePortal/pkg/config"
	"github.com/chernandez90/InsurancePortal/pkg/log"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

type options struct {
	cfgFile string
}

// NewRootCmd builds the portal command tree. Running it without a
// subcommand starts the servers.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "portal",
		Short: "Insurance claims portal",
		Long: `portal serves the claims API and the realtime claim hub.

Viewers connected to the hub receive a ClaimUpdated event every time a
claim is submitted.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", pkgconfig.GetEnv("PORTAL_CONFIG", ""),
		"config file (default: ./config/config.yaml, env PORTAL_CONFIG)")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newTokenCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads configuration and initialises logging.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, _, err := config.Load(opts.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.Init(cfg.Log)
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "portal %s\n", Version)
		},
	}
}
