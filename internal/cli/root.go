// Package cli implements searchctl, the operator command line for the search
// service.
package cli

import (
	"context"
	"io"

	"github.com/Ayash-Bera/hirescout/backend/internal/app"
	"github.com/Ayash-Bera/hirescout/backend/internal/config"
	"github.com/Ayash-Bera/hirescout/backend/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type options struct {
	configDir string
	verbose   bool

	// Replaced in tests.
	open func(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*app.Components, error)
}

// NewRootCommand builds the searchctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{open: app.Open}

	root := &cobra.Command{
		Use:   "searchctl",
		Short: "Operate the hybrid freelancer search service",
		Long: `searchctl - operator tools for the hybrid freelancer search
  - run a search and inspect the strategy that served it
  - see which filters a query extracts
  - rebuild the facet index from Postgres`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configDir, "config", ".", "directory containing config.yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newSearchCommand(opts))
	root.AddCommand(newExtractCommand(opts))
	root.AddCommand(newReindexCommand(opts))

	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

func (o *options) load(stderr io.Writer) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadFrom(o.configDir)
	if err != nil {
		return nil, nil, err
	}

	logger := utils.NewLogger(cfg.LogLevel)
	logger.SetOutput(stderr)
	if o.verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	return cfg, logger, nil
}
