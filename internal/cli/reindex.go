package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReindexCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the facet index from Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			components, err := opts.open(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer components.Close()

			freelancers, err := components.Repos.Freelancer.GetAll()
			if err != nil {
				return fmt.Errorf("failed to load profiles: %w", err)
			}
			if err := components.Index.Reindex(cmd.Context(), freelancers); err != nil {
				return err
			}
			if components.Cache != nil {
				if err := components.Cache.InvalidateSearchCache(cmd.Context()); err != nil {
					logger.WithError(err).Warn("Failed to invalidate search cache")
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d profiles into %s\n", len(freelancers), cfg.Index.Path)
			return nil
		},
	}
}
