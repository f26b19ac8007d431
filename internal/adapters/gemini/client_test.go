package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/logging"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/service"
)

func stubClient(attempts int) *Client {
	return &Client{
		limiter: service.NewRateLimiter(service.RateLimiterConfigForRPM(6000)),
		retry:   service.NewRetryPolicy(attempts),
		logger:  logging.NewNop(),
	}
}

func countingGenerate(calls *int, text string) generateFunc {
	return func(context.Context) (*genai.GenerateContentResponse, error) {
		*calls++
		if text == "" {
			return &genai.GenerateContentResponse{}, nil
		}
		return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(text)}}},
		}}, nil
	}
}

func TestCall_EmptyAnswerIsFinalWhenAllowed(t *testing.T) {
	calls := 0
	text, err := stubClient(4).call(context.Background(), countingGenerate(&calls, ""), true)

	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Equal(t, 1, calls)
}

func TestCall_EmptyAnswerIsRetryableForCompletion(t *testing.T) {
	calls := 0
	_, err := stubClient(1).call(context.Background(), countingGenerate(&calls, ""), false)

	var de *core.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, core.CodeEmptyResponse, de.Code)
	assert.True(t, core.IsRetryable(err))
	assert.Equal(t, 1, calls)
}

func TestCall_StripsFences(t *testing.T) {
	calls := 0
	text, err := stubClient(2).call(context.Background(), countingGenerate(&calls, "```json\n{\"a\":1}\n```"), false)

	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)
	assert.Equal(t, 1, calls)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{APIKey: "  "}, nil, nil)
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatAuth))
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{}\n```", "{}"},
		{"  plain  ", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripCodeFences(tt.in))
	}
}

func TestFirstText(t *testing.T) {
	assert.Empty(t, firstText(nil))
	assert.Empty(t, firstText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{
				genai.Blob{MIMEType: "image/png"},
				genai.Text("resposta"),
			}}},
		},
	}
	assert.Equal(t, "resposta", firstText(resp))
}

func TestBuildParts(t *testing.T) {
	parts := buildParts(core.ModelRequest{
		Prompt: "descreva",
		Media:  []core.Media{{MIMEType: "image/jpeg", Data: []byte{1, 2}}},
	})
	require.Len(t, parts, 2)
	assert.Equal(t, genai.Text("descreva"), parts[0])
	blob, ok := parts[1].(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", blob.MIMEType)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		category  core.ErrorCategory
		retryable bool
	}{
		{"http 429", &googleapi.Error{Code: 429}, core.ErrCatRateLimit, true},
		{"http 503", &googleapi.Error{Code: 503}, core.ErrCatModel, true},
		{"http 400", &googleapi.Error{Code: 400}, core.ErrCatModel, false},
		{"http 403", &googleapi.Error{Code: 403}, core.ErrCatAuth, false},
		{"wrapped http 500", fmt.Errorf("call: %w", &googleapi.Error{Code: 500}), core.ErrCatModel, true},
		{"grpc exhausted", status.Error(codes.ResourceExhausted, "quota"), core.ErrCatRateLimit, true},
		{"grpc unavailable", status.Error(codes.Unavailable, "down"), core.ErrCatModel, true},
		{"grpc unauthenticated", status.Error(codes.Unauthenticated, "key"), core.ErrCatAuth, false},
		{"deadline", context.DeadlineExceeded, core.ErrCatTimeout, true},
		{"blocked", &genai.BlockedError{}, core.ErrCatModel, false},
		{"unknown", errors.New("boom"), core.ErrCatModel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyError(tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.category, core.GetCategory(err))
			assert.Equal(t, tt.retryable, core.IsRetryable(err))
		})
	}
}

func TestClassifyError_Canceled(t *testing.T) {
	err := classifyError(context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, core.IsRetryable(err))
}

func TestUnavailable(t *testing.T) {
	var u Unavailable
	ctx := context.Background()

	_, err := u.Complete(ctx, core.ModelRequest{Prompt: "x"})
	assert.True(t, core.IsCategory(err, core.ErrCatAuth))

	_, err = u.Transcribe(ctx, "a.mp3")
	assert.True(t, core.IsCategory(err, core.ErrCatAuth))

	assert.Error(t, u.Ping(ctx))
}
