package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	extractFunctionName = "extract_search_filters"
	aiTemperature       = 0.1
	aiBaseConfidence    = 0.3
	aiFieldConfidence   = 0.15
	aiMaxConfidence     = 0.9
)

var (
	ErrAINotConfigured = errors.New("ai extraction is not configured")
	ErrNoFunctionCall  = errors.New("model returned no extraction payload")
)

// AIConfig configures the chat model used for extraction.
type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// AIExtractor asks a chat model to fill the extract_search_filters function.
type AIExtractor struct {
	model   llms.Model
	timeout time.Duration
	logger  *logrus.Logger
}

// NewAIExtractor builds an extractor backed by an OpenAI compatible chat API.
// Without an API key it returns an extractor that always declares failure.
func NewAIExtractor(cfg AIConfig, logger *logrus.Logger) (*AIExtractor, error) {
	if cfg.APIKey == "" {
		return &AIExtractor{logger: logger}, nil
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat client: %w", err)
	}

	return NewAIExtractorWithModel(client, cfg.Timeout, logger), nil
}

func NewAIExtractorWithModel(model llms.Model, timeout time.Duration, logger *logrus.Logger) *AIExtractor {
	return &AIExtractor{
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

func (e *AIExtractor) Name() models.ExtractionSource {
	return models.ExtractionAI
}

func (e *AIExtractor) Configured() bool {
	return e.model != nil
}

func (e *AIExtractor) Extract(ctx context.Context, query string) (models.ExtractionResult, error) {
	if e.model == nil {
		return models.ExtractionResult{}, ErrAINotConfigured
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, query),
	}

	response, err := e.model.GenerateContent(ctx, messages,
		llms.WithTemperature(aiTemperature),
		llms.WithTools([]llms.Tool{extractTool}),
		llms.WithToolChoice(llms.ToolChoice{
			Type:     "function",
			Function: &llms.FunctionReference{Name: extractFunctionName},
		}),
	)
	if err != nil {
		return models.ExtractionResult{}, fmt.Errorf("chat completion failed: %w", err)
	}

	payload, err := functionArguments(response)
	if err != nil {
		return models.ExtractionResult{}, err
	}

	var args extractionArgs
	if err := json.Unmarshal([]byte(payload), &args); err != nil {
		args = extractionArgs{}
		if repairErr := json.Unmarshal([]byte(repairJSON(payload)), &args); repairErr != nil {
			e.logger.WithFields(logrus.Fields{
				"payload": payload,
			}).WithError(err).Warn("Unparseable extraction payload")
			return models.ExtractionResult{}, fmt.Errorf("failed to parse extraction payload: %w", err)
		}
		e.logger.Debug("Extraction payload needed repair")
	}

	result := args.toResult(query)

	e.logger.WithFields(logrus.Fields{
		"clean_query": result.CleanQuery,
		"confidence":  result.Confidence,
		"fields":      result.Filters.NonEmptyFieldCount(),
	}).Debug("AI extraction completed")

	return result, nil
}

// functionArguments pulls the tool call arguments out of a completion, falling
// back to a JSON message body.
func functionArguments(response *llms.ContentResponse) (string, error) {
	if response == nil || len(response.Choices) == 0 {
		return "", ErrNoFunctionCall
	}
	choice := response.Choices[0]

	for _, call := range choice.ToolCalls {
		if call.FunctionCall != nil && call.FunctionCall.Name == extractFunctionName {
			return call.FunctionCall.Arguments, nil
		}
	}
	if choice.FuncCall != nil && choice.FuncCall.Name == extractFunctionName {
		return choice.FuncCall.Arguments, nil
	}

	content := strings.TrimSpace(choice.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "{") {
		return content, nil
	}
	return "", ErrNoFunctionCall
}

type extractionArgs struct {
	Specializations          []string `json:"specializations"`
	ExperienceLevels         []string `json:"experience_levels"`
	MinRate                  *float64 `json:"min_rate"`
	MaxRate                  *float64 `json:"max_rate"`
	Location                 *string  `json:"location"`
	Skills                   []string `json:"skills"`
	AvailabilityHoursPerWeek *float64 `json:"availability_hours_per_week"`
	AvailableOnly            *bool    `json:"available_only"`
	CleanQuery               string   `json:"cleanQuery"`
}

// toResult validates the model output. Unknown tags are dropped and an
// inverted rate band is swapped.
func (a extractionArgs) toResult(query string) models.ExtractionResult {
	var filters models.ExtractedFilters

	seenSpec := make(map[models.Specialization]bool)
	for _, raw := range a.Specializations {
		s := models.Specialization(strings.ToLower(strings.TrimSpace(raw)))
		if s.IsValid() && !seenSpec[s] {
			seenSpec[s] = true
			filters.Specializations = append(filters.Specializations, s)
		}
	}

	seenLevel := make(map[models.ExperienceLevel]bool)
	for _, raw := range a.ExperienceLevels {
		l := models.ExperienceLevel(strings.ToLower(strings.TrimSpace(raw)))
		if l.IsValid() && !seenLevel[l] {
			seenLevel[l] = true
			filters.ExperienceLevels = append(filters.ExperienceLevels, l)
		}
	}

	filters.MinRate = nonNegativeInt(a.MinRate)
	filters.MaxRate = nonNegativeInt(a.MaxRate)
	if filters.MinRate != nil && filters.MaxRate != nil && *filters.MinRate > *filters.MaxRate {
		filters.MinRate, filters.MaxRate = filters.MaxRate, filters.MinRate
	}

	if a.Location != nil {
		if loc := strings.TrimSpace(*a.Location); loc != "" {
			filters.Location = &loc
		}
	}

	seenSkill := make(map[string]bool)
	for _, raw := range a.Skills {
		skill := strings.TrimSpace(raw)
		key := strings.ToLower(skill)
		if skill != "" && !seenSkill[key] {
			seenSkill[key] = true
			filters.Skills = append(filters.Skills, skill)
		}
	}

	if hours := nonNegativeInt(a.AvailabilityHoursPerWeek); hours != nil && *hours > 0 {
		filters.AvailabilityHoursPerWeek = hours
	}
	filters.AvailableOnly = a.AvailableOnly

	clean := a.CleanQuery
	for _, p := range aiCleanupPatterns {
		clean = p.ReplaceAllString(clean, " ")
	}
	clean = tidy(clean)
	if clean == "" {
		clean = tidy(query)
	}

	return models.ExtractionResult{
		Filters:    filters,
		CleanQuery: clean,
		Confidence: aiConfidence(filters),
		Source:     models.ExtractionAI,
	}
}

func aiConfidence(filters models.ExtractedFilters) float64 {
	return math.Min(aiMaxConfidence, aiBaseConfidence+aiFieldConfidence*float64(filters.NonEmptyFieldCount()))
}

func nonNegativeInt(v *float64) *int {
	if v == nil || *v < 0 || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	n := int(math.Round(*v))
	return &n
}
