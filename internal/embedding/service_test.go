package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vector   []float32
	failures int
	calls    int
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("upstream unavailable")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func fastRetry(maxRetries int) RetryConfig {
	return RetryConfig{MaxRetries: maxRetries, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestService_Unconfigured(t *testing.T) {
	svc, err := NewService(Config{Dimensions: 3}, quietLogger())
	require.NoError(t, err)

	assert.False(t, svc.IsConfigured())
	_, err = svc.Embed(context.Background(), "golang")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = svc.EmbedBatch(context.Background(), []string{"golang"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestService_EmbedRetriesTransientFailures(t *testing.T) {
	fake := &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}, failures: 1}
	svc := NewServiceWithEmbedder(fake, 3, fastRetry(2), quietLogger())

	vector, err := svc.Embed(context.Background(), "golang backend")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
	assert.Equal(t, 2, fake.calls)
}

func TestService_EmbedGivesUpAfterRetries(t *testing.T) {
	fake := &fakeEmbedder{vector: []float32{0.1}, failures: 5}
	svc := NewServiceWithEmbedder(fake, 1, fastRetry(1), quietLogger())

	_, err := svc.Embed(context.Background(), "golang")

	assert.Error(t, err)
	assert.Equal(t, 2, fake.calls)
}

func TestService_RejectsEmptyText(t *testing.T) {
	svc := NewServiceWithEmbedder(&fakeEmbedder{}, 0, fastRetry(0), quietLogger())

	_, err := svc.Embed(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = svc.EmbedBatch(context.Background(), []string{"ok", ""})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestService_DimensionMismatch(t *testing.T) {
	svc := NewServiceWithEmbedder(&fakeEmbedder{vector: []float32{1, 2}}, 3, fastRetry(0), quietLogger())

	_, err := svc.Embed(context.Background(), "golang")
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestService_EmbedBatch(t *testing.T) {
	svc := NewServiceWithEmbedder(&fakeEmbedder{vector: []float32{1, 0}}, 2, fastRetry(0), quietLogger())

	vectors, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, vectors, 3)

	vectors, err = svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestService_CancelledContext(t *testing.T) {
	fake := &fakeEmbedder{vector: []float32{1}}
	svc := NewServiceWithEmbedder(fake, 1, fastRetry(3), quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Embed(ctx, "golang")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, fake.calls)
}

func TestNewService_OpenAICompatibleEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-small", req.Model)

		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			data[i] = map[string]any{"object": "embedding", "index": i, "embedding": []float32{0.5, 0.25}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	defer server.Close()

	svc, err := NewService(Config{
		APIKey:     "sk-test",
		BaseURL:    server.URL,
		Model:      "text-embedding-3-small",
		Dimensions: 2,
	}, quietLogger())
	require.NoError(t, err)
	require.True(t, svc.IsConfigured())

	vector, err := svc.Embed(context.Background(), "senior golang engineer")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vector)
}
