package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
	"github.com/hugo-lorenzo-mato/jurado-ai/internal/logging"
)

// DispatcherAgentName is stamped on verdicts produced by the dispatcher itself.
const DispatcherAgentName = "JudgeOrchestrator"

// Dispatcher routes an item to the analyzer registered for its content type.
// Dispatch is a hard boundary: it always returns exactly one verdict.
type Dispatcher struct {
	mu        sync.RWMutex
	analyzers map[core.ContentType]core.Analyzer
	logger    *logging.Logger
	metrics   *MetricsCollector
}

// NewDispatcher creates a dispatcher with the given analyzers registered.
func NewDispatcher(logger *logging.Logger, analyzers ...core.Analyzer) *Dispatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Dispatcher{
		analyzers: make(map[core.ContentType]core.Analyzer),
		logger:    logger,
	}
	for _, a := range analyzers {
		d.Register(a)
	}
	return d
}

// Register adds or replaces the analyzer for its content type.
func (d *Dispatcher) Register(a core.Analyzer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.analyzers[a.ContentType()] = a
}

// SetMetrics records every dispatch into m.
func (d *Dispatcher) SetMetrics(m *MetricsCollector) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics = m
}

// Analyzer returns the analyzer registered for ct.
func (d *Dispatcher) Analyzer(ct core.ContentType) (core.Analyzer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.analyzers[ct]
	return a, ok
}

// Analyzers returns the registered analyzers ordered by content type.
func (d *Dispatcher) Analyzers() []core.Analyzer {
	d.mu.RLock()
	defer d.mu.RUnlock()

	list := make([]core.Analyzer, 0, len(d.analyzers))
	for _, a := range d.analyzers {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ContentType() < list[j].ContentType()
	})
	return list
}

// Dispatch analyzes one item. Unknown or unregistered types produce an error
// verdict without invoking any analyzer; analyzer panics are recovered.
func (d *Dispatcher) Dispatch(ctx context.Context, item core.Item, criteria string) (v core.Verdict) {
	start := time.Now()
	d.mu.RLock()
	metrics := d.metrics
	d.mu.RUnlock()
	if metrics != nil {
		defer func() {
			metrics.RecordAnalysis(v, time.Since(start))
		}()
	}

	ct := item.Type
	if ct == "" {
		ct = core.ContentUnknown
	}

	a, ok := d.Analyzer(ct)
	if !ok || ct == core.ContentUnknown {
		d.logger.WithContext(ctx).Warn("no analyzer for content type", "type", ct, "item", item.Name)
		return core.ErrorVerdict(ct, DispatcherAgentName, core.ErrUnsupportedType(ct))
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.WithContext(ctx).Error("analyzer panicked",
				"agent", a.Name(), "type", ct, "item", item.Name, "panic", fmt.Sprint(r))
			v = core.ErrorVerdict(ct, a.Name(), &core.DomainError{
				Category: core.ErrCatInternal,
				Code:     core.CodePanic,
				Message:  fmt.Sprintf("analyzer panic: %v", r),
			})
		}
	}()

	v = a.Analyze(ctx, item.Input, criteria)
	if v.ContentType == "" {
		v.ContentType = ct
	}
	if v.AgentName == "" {
		v.AgentName = a.Name()
	}
	return v
}
