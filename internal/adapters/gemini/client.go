// Package gemini implements the model and transcription ports on top of the
// Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/logging"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/service"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Config holds the client settings.
type Config struct {
	APIKey       string
	Model        string
	Timeout      time.Duration // per call, retries excluded
	MaxRetries   int
	RateLimitRPM int
	Language     string // transcription language hint
}

// Client talks to Gemini. It is safe for concurrent use.
type Client struct {
	client  *genai.Client
	cfg     Config
	limiter *service.RateLimiter
	retry   *service.RetryPolicy
	prompts *service.PromptRenderer
	logger  *logging.Logger
}

// New creates a client. The API key is required.
func New(ctx context.Context, cfg Config, prompts *service.PromptRenderer, logger *logging.Logger) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, core.ErrAuth("gemini API key is not configured")
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Language == "" {
		cfg.Language = "pt"
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, core.ErrNetwork("creating gemini client").WithCause(err)
	}

	return &Client{
		client:  cl,
		cfg:     cfg,
		limiter: service.NewRateLimiter(service.RateLimiterConfigForRPM(cfg.RateLimitRPM)),
		retry:   service.NewRetryPolicy(cfg.MaxRetries + 1),
		prompts: prompts,
		logger:  logger.With("component", "gemini", "model", cfg.Model),
	}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends req and returns the first text part of the answer. An
// empty answer is retried.
func (c *Client) Complete(ctx context.Context, req core.ModelRequest) (string, error) {
	return c.call(ctx, c.generator(req), false)
}

type generateFunc func(ctx context.Context) (*genai.GenerateContentResponse, error)

func (c *Client) generator(req core.ModelRequest) generateFunc {
	m := c.client.GenerativeModel(c.cfg.Model)
	if req.Temperature != nil {
		m.SetTemperature(*req.Temperature)
	}
	if req.JSON {
		m.ResponseMIMEType = "application/json"
	}
	if req.System != "" {
		m.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}
	parts := buildParts(req)
	return func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		return m.GenerateContent(ctx, parts...)
	}
}

// call runs generate under the rate limiter and retry policy. With
// allowEmpty an empty answer is a final, successful result.
func (c *Client) call(ctx context.Context, generate generateFunc, allowEmpty bool) (string, error) {
	var out string
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Acquire(ctx); err != nil {
			return err
		}
		callCtx := ctx
		if c.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
			defer cancel()
		}

		resp, err := generate(callCtx)
		if err != nil {
			return classifyError(err)
		}
		txt := stripCodeFences(firstText(resp))
		if txt == "" && !allowEmpty {
			return core.ErrModel(core.CodeEmptyResponse, "gemini returned an empty response", true)
		}
		out = txt
		return nil
	}, func(attempt int, err error, delay time.Duration) {
		c.logger.WithContext(ctx).Warn("gemini call failed, retrying", "attempt", attempt, "delay", delay, "error", err)
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// Transcribe sends the audio file to the model and returns the spoken text,
// which is empty when nothing was said.
func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", core.ErrExtraction(core.CodeTranscribeFailed, "reading audio").WithCause(err)
	}
	prompt, err := c.prompts.RenderTranscription(service.TranscribePromptParams{Language: c.cfg.Language})
	if err != nil {
		return "", err
	}

	// Silent audio legitimately yields no text.
	var temp float32
	text, err := c.call(ctx, c.generator(core.ModelRequest{
		Prompt:      prompt,
		Media:       []core.Media{{MIMEType: core.MIMEType(path), Data: data}},
		Temperature: &temp,
	}), true)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Ping checks that the configured model exists and the key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.GenerativeModel(c.cfg.Model).Info(ctx); err != nil {
		return classifyError(err)
	}
	return nil
}

func buildParts(req core.ModelRequest) []genai.Part {
	parts := []genai.Part{genai.Text(req.Prompt)}
	for _, m := range req.Media {
		parts = append(parts, genai.Blob{MIMEType: m.MIMEType, Data: m.Data})
	}
	return parts
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// classifyError maps API failures onto domain errors so the retry policy can
// tell transient failures apart.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return core.ErrTimeout("gemini call timed out").WithCause(err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return core.ErrModel(core.CodeBlocked, "gemini blocked the response", false).WithCause(err)
	}

	if code, ok := httpCode(err); ok {
		return fromHTTPCode(code, err)
	}
	return core.ErrModel(core.CodeModelFailed, "gemini call failed", false).WithCause(err)
}

func httpCode(err error) (int, bool) {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code, true
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted:
			return 429, true
		case codes.Unauthenticated:
			return 401, true
		case codes.PermissionDenied:
			return 403, true
		case codes.NotFound:
			return 404, true
		case codes.InvalidArgument:
			return 400, true
		case codes.Unavailable:
			return 503, true
		case codes.Internal:
			return 500, true
		case codes.DeadlineExceeded:
			return 504, true
		}
	}
	return 0, false
}

func fromHTTPCode(code int, err error) error {
	switch {
	case code == 429:
		return core.ErrRateLimit("gemini quota exceeded").WithCause(err)
	case code == 401 || code == 403:
		return core.ErrAuth("gemini rejected the API key").WithCause(err)
	case code == 404:
		return core.ErrNotFound("model", "gemini model").WithCause(err)
	case code == 504:
		return core.ErrTimeout("gemini call timed out").WithCause(err)
	case code >= 500:
		return core.ErrModel(core.CodeModelFailed, fmt.Sprintf("gemini server error (%d)", code), true).WithCause(err)
	default:
		return core.ErrModel(core.CodeModelFailed, fmt.Sprintf("gemini request failed (%d)", code), false).WithCause(err)
	}
}
