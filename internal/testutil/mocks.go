package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

// MockCall records a call to a mock.
type MockCall struct {
	Method    string
	Args      interface{}
	Timestamp time.Time
}

type callLog struct {
	mu    sync.Mutex
	calls []MockCall
}

func (l *callLog) record(method string, args interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, MockCall{Method: method, Args: args, Timestamp: time.Now()})
}

// Calls returns recorded calls.
func (l *callLog) Calls() []MockCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]MockCall{}, l.calls...)
}

// CallCount returns number of calls to a method.
func (l *callLog) CallCount(method string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for _, c := range l.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// MockModel implements core.ModelClient for testing.
type MockModel struct {
	callLog
	completeFunc func(context.Context, core.ModelRequest) (string, error)
	pingFunc     func(context.Context) error
}

// NewMockModel creates a mock model that answers with an empty JSON object.
func NewMockModel() *MockModel {
	return &MockModel{}
}

// Complete mocks a model call.
func (m *MockModel) Complete(ctx context.Context, req core.ModelRequest) (string, error) {
	m.record("Complete", req)
	if m.completeFunc != nil {
		return m.completeFunc(ctx, req)
	}
	return "{}", nil
}

// Ping mocks an availability check.
func (m *MockModel) Ping(ctx context.Context) error {
	m.record("Ping", nil)
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

// WithResponse configures a fixed answer.
func (m *MockModel) WithResponse(output string) *MockModel {
	m.completeFunc = func(context.Context, core.ModelRequest) (string, error) {
		return output, nil
	}
	return m
}

// WithError configures the mock to fail every call.
func (m *MockModel) WithError(err error) *MockModel {
	m.completeFunc = func(context.Context, core.ModelRequest) (string, error) {
		return "", err
	}
	return m
}

// WithCompleteFunc sets a custom completion function.
func (m *MockModel) WithCompleteFunc(fn func(context.Context, core.ModelRequest) (string, error)) *MockModel {
	m.completeFunc = fn
	return m
}

// WithPingFunc sets a custom ping function.
func (m *MockModel) WithPingFunc(fn func(context.Context) error) *MockModel {
	m.pingFunc = fn
	return m
}

// Requests returns the requests received, in call order.
func (m *MockModel) Requests() []core.ModelRequest {
	var out []core.ModelRequest
	for _, c := range m.Calls() {
		if req, ok := c.Args.(core.ModelRequest); ok {
			out = append(out, req)
		}
	}
	return out
}

// MockExtractor implements the feature extraction ports for testing.
type MockExtractor struct {
	callLog
	Info       map[string]any
	InfoErr    error
	Frames     []core.Media
	FramesErr  error
	Transcript string
	SpeechErr  error
	Text       string
	TextErr    error
}

// NewMockExtractor creates an extractor returning empty results.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{Info: map[string]any{}}
}

// Extract returns Info or InfoErr.
func (m *MockExtractor) Extract(_ context.Context, path string) (map[string]any, error) {
	m.record("Extract", path)
	if m.InfoErr != nil {
		return nil, m.InfoErr
	}
	return m.Info, nil
}

// ExtractFrames returns up to n of Frames, or FramesErr.
func (m *MockExtractor) ExtractFrames(_ context.Context, path string, n int) ([]core.Media, error) {
	m.record("ExtractFrames", path)
	if m.FramesErr != nil {
		return nil, m.FramesErr
	}
	if len(m.Frames) > n {
		return m.Frames[:n], nil
	}
	return m.Frames, nil
}

// Transcribe returns Transcript or SpeechErr.
func (m *MockExtractor) Transcribe(_ context.Context, path string) (string, error) {
	m.record("Transcribe", path)
	return m.Transcript, m.SpeechErr
}

// ExtractText returns Text or TextErr.
func (m *MockExtractor) ExtractText(_ context.Context, path string) (string, error) {
	m.record("ExtractText", path)
	return m.Text, m.TextErr
}

// MockAnalyzer implements core.Analyzer for testing.
type MockAnalyzer struct {
	callLog
	name        string
	contentType core.ContentType
	analyzeFunc func(context.Context, core.Input, string) core.Verdict
}

// NewMockAnalyzer creates an analyzer that returns a fixed score.
func NewMockAnalyzer(name string, ct core.ContentType, score float64) *MockAnalyzer {
	return &MockAnalyzer{
		name:        name,
		contentType: ct,
		analyzeFunc: func(context.Context, core.Input, string) core.Verdict {
			return core.Verdict{
				ContentType: ct,
				Score:       core.Float(score),
				MaxScore:    core.DefaultMaxScore,
				AgentName:   name,
			}
		},
	}
}

// Name returns the mock name.
func (m *MockAnalyzer) Name() string {
	return m.name
}

// ContentType returns the mock content type.
func (m *MockAnalyzer) ContentType() core.ContentType {
	return m.contentType
}

// Analyze mocks an analysis.
func (m *MockAnalyzer) Analyze(ctx context.Context, in core.Input, criteria string) core.Verdict {
	m.record("Analyze", in)
	return m.analyzeFunc(ctx, in, criteria)
}

// WithAnalyzeFunc sets a custom analysis function.
func (m *MockAnalyzer) WithAnalyzeFunc(fn func(context.Context, core.Input, string) core.Verdict) *MockAnalyzer {
	m.analyzeFunc = fn
	return m
}

// PingFunc adapts a function to core.Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}
