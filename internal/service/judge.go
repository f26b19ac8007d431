package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/logging"
)

// Default criteria used when the caller gives none.
const (
	DefaultCriteria      = "Avaliação geral de qualidade"
	DefaultBatchCriteria = "Avaliação comparativa"
)

// Kinds of recorded results.
const (
	KindSingle      = "single"
	KindBatch       = "batch"
	KindCompetition = "competition"
)

// Record is one finished judgment handed to a Recorder.
type Record struct {
	ID        string
	Kind      string
	Criteria  string
	CreatedAt time.Time
	Verdicts  []core.Verdict
	Synthesis *core.SynthesisVerdict
}

// Recorder persists finished judgments.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// Judge ties dispatch, fan-out, synthesis and ranking together.
type Judge struct {
	dispatcher *Dispatcher
	fanout     *FanOut
	synthesis  *SynthesisEngine
	recorder   Recorder
	metrics    *MetricsCollector
	logger     *logging.Logger
	now        func() time.Time
}

// JudgeOption configures a Judge.
type JudgeOption func(*Judge)

// WithRecorder stores every judgment through r.
func WithRecorder(r Recorder) JudgeOption {
	return func(j *Judge) {
		j.recorder = r
	}
}

// WithMetrics counts batches and syntheses in m.
func WithMetrics(m *MetricsCollector) JudgeOption {
	return func(j *Judge) {
		j.metrics = m
	}
}

// WithJudgeLogger sets the logger.
func WithJudgeLogger(logger *logging.Logger) JudgeOption {
	return func(j *Judge) {
		j.logger = logger
	}
}

// NewJudge creates a judge.
func NewJudge(dispatcher *Dispatcher, fanout *FanOut, synthesis *SynthesisEngine, opts ...JudgeOption) *Judge {
	j := &Judge{
		dispatcher: dispatcher,
		fanout:     fanout,
		synthesis:  synthesis,
		logger:     logging.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// ResolveType fills in the content type of an item that has none, from its
// path, then its name. Inline text without a path is text.
func ResolveType(item core.Item) core.ContentType {
	if item.Type != "" {
		return item.Type
	}
	if item.Input.Path != "" {
		return core.Classify(item.Input.Path)
	}
	if item.Name != "" {
		if ct := core.Classify(item.Name); ct != core.ContentUnknown {
			return ct
		}
	}
	if item.Input.Text != "" {
		return core.ContentText
	}
	return core.ContentUnknown
}

// AnalyzeSingle judges one item.
func (j *Judge) AnalyzeSingle(ctx context.Context, item core.Item, criteria string) core.Verdict {
	if criteria == "" {
		criteria = DefaultCriteria
	}
	item.Type = ResolveType(item)

	v := j.dispatcher.Dispatch(ctx, item, criteria)
	if item.Name != "" {
		v.ItemName = item.Name
	}
	j.record(ctx, Record{
		ID:       uuid.NewString(),
		Kind:     KindSingle,
		Criteria: criteria,
		Verdicts: []core.Verdict{v},
	})
	return v
}

// AnalyzeMultiple judges every item concurrently and synthesizes the result.
func (j *Judge) AnalyzeMultiple(ctx context.Context, items []core.Item, criteria string) core.BatchResult {
	if criteria == "" {
		criteria = DefaultBatchCriteria
	}
	return j.runBatch(ctx, items, criteria, KindBatch)
}

func (j *Judge) runBatch(ctx context.Context, items []core.Item, criteria, kind string) core.BatchResult {
	id := uuid.NewString()
	log := j.logger.WithContext(ctx).WithBatch(id)

	resolved := make([]core.Item, len(items))
	for i, item := range items {
		item.Type = ResolveType(item)
		resolved[i] = item
	}

	start := j.now()
	verdicts := j.fanout.RunBatch(ctx, resolved, criteria)
	synthesis := j.synthesis.Synthesize(ctx, verdicts, criteria)
	log.Info("batch judged", "items", len(items), "final_score", synthesis.FinalScore, "duration", time.Since(start))
	if j.metrics != nil {
		j.metrics.RecordBatch(kind, synthesis)
	}

	j.record(ctx, Record{
		ID:        id,
		Kind:      kind,
		Criteria:  criteria,
		Verdicts:  verdicts,
		Synthesis: &synthesis,
	})

	return core.BatchResult{
		ID:        id,
		Verdicts:  verdicts,
		Synthesis: synthesis,
		Total:     len(verdicts),
		Criteria:  criteria,
	}
}

// JudgeCompetition analyzes the submissions and ranks them.
func (j *Judge) JudgeCompetition(ctx context.Context, items []core.Item, criteria string) core.CompetitionResult {
	if criteria == "" {
		criteria = DefaultBatchCriteria
	}
	batch := j.runBatch(ctx, items, criteria, KindCompetition)
	ranking := Rank(batch.Verdicts)

	if ranking.Winner != nil {
		j.logger.WithContext(ctx).WithBatch(batch.ID).Info("competition ranked",
			"participants", len(items), "winner", ranking.Winner.ItemName, "score", ranking.Winner.EffectiveScore())
	}

	return core.CompetitionResult{
		ID:           batch.ID,
		Ranking:      ranking.Entries,
		Synthesis:    batch.Synthesis,
		Criteria:     criteria,
		Participants: len(items),
		Winner:       ranking.Winner,
	}
}

func (j *Judge) record(ctx context.Context, rec Record) {
	if j.recorder == nil {
		return
	}
	rec.CreatedAt = j.now()
	if err := j.recorder.Record(ctx, rec); err != nil {
		j.logger.WithContext(ctx).Warn("failed to record judgment", "id", rec.ID, "kind", rec.Kind, "error", err)
	}
}
