package cli

import (
	"fmt"

	"github.com/Ayash-Bera/hirescout/backend/internal/extraction"
	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/Ayash-Bera/hirescout/backend/internal/strategy"
	"github.com/spf13/cobra"
)

type extractOutput struct {
	Extraction models.ExtractionResult `json:"extraction"`
	Strategy   string                  `json:"strategy"`
	Merge      models.MergeAlgorithm   `json:"merge_algorithm"`
}

func newExtractCommand(opts *options) *cobra.Command {
	var useAI bool

	cmd := &cobra.Command{
		Use:   "extract <query>",
		Short: "Show the filters and strategy a query resolves to",
		Long: `Run filter extraction and strategy selection without touching any backend.
Keyword extraction is used unless --ai is given and OPENAI_API_KEY is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extractors := []extraction.Extractor{}

			cfg, logger, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if useAI {
				if err := cfg.ValidateOpenAI(); err != nil {
					return fmt.Errorf("--ai: %w", err)
				}
				ai, err := extraction.NewAIExtractor(extraction.AIConfig{
					APIKey:  cfg.OpenAI.APIKey,
					BaseURL: cfg.OpenAI.BaseURL,
					Model:   cfg.OpenAI.ChatModel,
					Timeout: cfg.OpenAI.ExtractionTimeout,
				}, logger)
				if err != nil {
					return err
				}
				extractors = append(extractors, ai)
			}
			extractors = append(extractors, extraction.NewManualExtractor())

			result := extraction.NewChain(logger, extractors...).Extract(cmd.Context(), args[0])
			chosen := strategy.NewSelector().Select(strategy.Input{
				Query:            args[0],
				CleanQuery:       result.CleanQuery,
				ExtractedFilters: result.Filters,
				Source:           result.Source,
				Confidence:       result.Confidence,
			})

			return writeJSON(cmd.OutOrStdout(), extractOutput{
				Extraction: result,
				Strategy:   chosen.Label(),
				Merge:      chosen.MergeAlgorithm,
			})
		},
	}

	cmd.Flags().BoolVar(&useAI, "ai", false, "try AI extraction first")
	return cmd
}
