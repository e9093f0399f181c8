package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/spf13/cobra"
)

type searchFlags struct {
	json            bool
	limit           int
	specializations []string
	experience      []string
	location        string
	minRate         float64
	maxRate         float64
	available       bool
}

func newSearchCommand(opts *options) *cobra.Command {
	flags := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a hybrid search",
		Long: `Run a query through extraction, strategy selection, both backends and
the merge, exactly as the HTTP API does.

Examples:
  searchctl search "senior react developer in Berlin"
  searchctl search --json "logo designer under $40"
  searchctl search --specialization devops --available "kubernetes"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := flags.toFilters(cmd)
			if err != nil {
				return err
			}

			cfg, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			components, err := opts.open(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer components.Close()

			response := components.Search.Search(cmd.Context(), args[0], filters)
			if !response.Success {
				return fmt.Errorf("search failed: %s", response.Error)
			}

			if flags.json {
				return writeJSON(cmd.OutOrStdout(), response)
			}
			writeResults(cmd.OutOrStdout(), response)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.json, "json", false, "output the full response as JSON")
	cmd.Flags().IntVarP(&flags.limit, "limit", "n", 10, "maximum number of candidates")
	cmd.Flags().StringSliceVar(&flags.specializations, "specialization", nil, "required specialization tag (repeatable)")
	cmd.Flags().StringSliceVar(&flags.experience, "experience", nil, "experience level: entry, intermediate or expert")
	cmd.Flags().StringVar(&flags.location, "location", "", "location filter")
	cmd.Flags().Float64Var(&flags.minRate, "min-rate", 0, "minimum hourly rate in dollars")
	cmd.Flags().Float64Var(&flags.maxRate, "max-rate", 0, "maximum hourly rate in dollars")
	cmd.Flags().BoolVar(&flags.available, "available", false, "only available freelancers")

	return cmd
}

// toFilters maps flags onto caller filters. Only flags that were set are applied.
func (f *searchFlags) toFilters(cmd *cobra.Command) (models.SearchFilters, error) {
	var filters models.SearchFilters

	limit := f.limit
	filters.Limit = &limit

	for _, s := range f.specializations {
		filters.Specializations = append(filters.Specializations, models.Specialization(strings.ToLower(s)))
	}
	for _, e := range f.experience {
		filters.ExperienceLevels = append(filters.ExperienceLevels, models.ExperienceLevel(strings.ToLower(e)))
	}
	if f.location != "" {
		location := f.location
		filters.Location = &location
	}
	if cmd.Flags().Changed("min-rate") {
		cents := int(math.Round(f.minRate * 100))
		filters.MinRate = &cents
	}
	if cmd.Flags().Changed("max-rate") {
		cents := int(math.Round(f.maxRate * 100))
		filters.MaxRate = &cents
	}
	if f.available {
		available := true
		filters.AvailableOnly = &available
	}

	return filters, filters.Validate()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeResults(w io.Writer, response models.SearchResponse) {
	if a := response.Analysis; a != nil {
		fmt.Fprintf(w, "strategy: %s  merge: %s  extraction: %s (%.2f)\n",
			a.Strategy, a.MergeAlgorithm, a.ExtractionSource, a.ExtractionConfidence)
		fmt.Fprintf(w, "facet: %s (%d)  semantic: %s (%d)  %dms\n\n",
			a.FacetStatus, a.FacetResults, a.SemanticStatus, a.SemanticResults, a.ProcessingTimeMs)
	}

	if len(response.Candidates) == 0 {
		fmt.Fprintln(w, "No candidates found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tSOURCE\tID\tTITLE\tLEVEL\tRATE\tLOCATION")
	for _, c := range response.Candidates {
		fmt.Fprintf(tw, "%.3f\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.RelevanceScore, c.Source, c.ID, c.Title, c.ExperienceLevel, formatRate(c.HourlyRateMin, c.HourlyRateMax), c.Location)
	}
	tw.Flush()
}

func formatRate(minRate, maxRate *int) string {
	switch {
	case minRate != nil && maxRate != nil:
		return fmt.Sprintf("$%d-%d", *minRate/100, *maxRate/100)
	case minRate != nil:
		return fmt.Sprintf("$%d+", *minRate/100)
	case maxRate != nil:
		return fmt.Sprintf("<$%d", *maxRate/100)
	}
	return "-"
}
