package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/Ayash-Bera/hirescout/backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	response *llms.ContentResponse
	err      error
	calls    int
	options  llms.CallOptions
	messages []llms.MessageContent
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	f.messages = messages
	for _, opt := range options {
		opt(&f.options)
	}
	return f.response, f.err
}

func (f *fakeModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func toolCallResponse(arguments string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			ToolCalls: []llms.ToolCall{{
				ID:   "call_1",
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      extractFunctionName,
					Arguments: arguments,
				},
			}},
		}},
	}
}

func TestAIExtractor_ParsesToolCall(t *testing.T) {
	model := &fakeModel{response: toolCallResponse(`{
		"specializations": ["frontend_development", "web_development", "astrology"],
		"experience_levels": ["expert"],
		"min_rate": 6800,
		"max_rate": 9200,
		"location": "San Francisco",
		"skills": ["React", "react"],
		"cleanQuery": "React developer with a rate of"
	}`)}
	extractor := NewAIExtractorWithModel(model, 0, logrus.New())

	result, err := extractor.Extract(context.Background(), "Senior React developer with $80/hr rate in San Francisco")
	require.NoError(t, err)

	assert.Equal(t, models.ExtractionAI, result.Source)
	assert.Equal(t, []models.Specialization{models.SpecFrontendDevelopment, models.SpecWebDevelopment}, result.Filters.Specializations)
	assert.Equal(t, []models.ExperienceLevel{models.ExperienceExpert}, result.Filters.ExperienceLevels)
	assert.Equal(t, 6800, *result.Filters.MinRate)
	assert.Equal(t, 9200, *result.Filters.MaxRate)
	assert.Equal(t, "San Francisco", *result.Filters.Location)
	assert.Equal(t, []string{"React"}, result.Filters.Skills)
	assert.Equal(t, "React developer", result.CleanQuery)
	// six populated fields: min(0.9, 0.3 + 0.15*6)
	assert.InDelta(t, 0.9, result.Confidence, 1e-9)

	assert.Equal(t, 1, model.calls)
	assert.InDelta(t, aiTemperature, model.options.Temperature, 1e-9)
	require.Len(t, model.options.Tools, 1)
	assert.Equal(t, extractFunctionName, model.options.Tools[0].Function.Name)
	require.Len(t, model.messages, 2)
}

func TestAIExtractor_ConfidenceScalesWithFields(t *testing.T) {
	model := &fakeModel{response: toolCallResponse(`{"location": "Remote", "cleanQuery": "copywriter"}`)}

	result, err := NewAIExtractorWithModel(model, 0, logrus.New()).Extract(context.Background(), "remote copywriter")
	require.NoError(t, err)
	assert.InDelta(t, 0.45, result.Confidence, 1e-9)

	model.response = toolCallResponse(`{"cleanQuery": "copywriter"}`)
	result, err = NewAIExtractorWithModel(model, 0, logrus.New()).Extract(context.Background(), "copywriter")
	require.NoError(t, err)
	assert.InDelta(t, 0.3, result.Confidence, 1e-9)
}

func TestAIExtractor_SwapsInvertedRates(t *testing.T) {
	model := &fakeModel{response: toolCallResponse(`{"min_rate": 9000, "max_rate": 4000, "cleanQuery": ""}`)}

	result, err := NewAIExtractorWithModel(model, 0, logrus.New()).Extract(context.Background(), "designer under $90")
	require.NoError(t, err)
	assert.Equal(t, 4000, *result.Filters.MinRate)
	assert.Equal(t, 9000, *result.Filters.MaxRate)
	assert.Equal(t, "designer under $90", result.CleanQuery)
}

func TestAIExtractor_FallsBackToMessageContent(t *testing.T) {
	model := &fakeModel{response: &llms.ContentResponse{Choices: []*llms.ContentChoice{{
		Content: "```json\n{\"specializations\":[\"devops\"],\"cleanQuery\":\"kubernetes engineer\"}\n```",
	}}}}

	result, err := NewAIExtractorWithModel(model, 0, logrus.New()).Extract(context.Background(), "kubernetes engineer")
	require.NoError(t, err)
	assert.Equal(t, []models.Specialization{models.SpecDevOps}, result.Filters.Specializations)
	assert.Equal(t, "kubernetes engineer", result.CleanQuery)
}

func TestAIExtractor_RepairsSloppyArguments(t *testing.T) {
	model := &fakeModel{response: toolCallResponse(`{ specializations": ["devops"], cleanQuery: "sre",}`)}

	result, err := NewAIExtractorWithModel(model, 0, logrus.New()).Extract(context.Background(), "sre")
	require.NoError(t, err)
	assert.Equal(t, []models.Specialization{models.SpecDevOps}, result.Filters.Specializations)
	assert.Equal(t, "sre", result.CleanQuery)
}

func TestRepairJSON(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, repairJSON(`{a": 1}`))
	assert.Equal(t, `{"a": 1, "b_c": [2]}`, repairJSON(`{a: 1, b_c: [2,]}`))
	assert.Equal(t, `{"a": "x"}`, repairJSON(`  {"a": "x",}  `))
}

func TestAIExtractor_DeclaresFailure(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		extractor, err := NewAIExtractor(AIConfig{}, logrus.New())
		require.NoError(t, err)
		assert.False(t, extractor.Configured())

		_, err = extractor.Extract(context.Background(), "anything")
		assert.ErrorIs(t, err, ErrAINotConfigured)
	})

	t.Run("transport error", func(t *testing.T) {
		model := &fakeModel{err: errors.New("connection refused")}
		_, err := NewAIExtractorWithModel(model, 0, logrus.New()).Extract(context.Background(), "anything")
		assert.Error(t, err)
	})

	t.Run("no payload", func(t *testing.T) {
		model := &fakeModel{response: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "I cannot help"}}}}
		_, err := NewAIExtractorWithModel(model, 0, logrus.New()).Extract(context.Background(), "anything")
		assert.ErrorIs(t, err, ErrNoFunctionCall)
	})

	t.Run("malformed arguments", func(t *testing.T) {
		model := &fakeModel{response: toolCallResponse(`{"cleanQuery": `)}
		_, err := NewAIExtractorWithModel(model, 0, logrus.New()).Extract(context.Background(), "anything")
		assert.Error(t, err)
	})
}

func TestExtractionSchemaListsEveryTag(t *testing.T) {
	schema := extractionSchema()
	props := schema["properties"].(map[string]any)
	items := props["specializations"].(map[string]any)["items"].(map[string]any)
	assert.Len(t, items["enum"], len(models.AllSpecializations))
	assert.Equal(t, []string{"cleanQuery"}, schema["required"])
}
