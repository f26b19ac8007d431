package service

import (
	"sort"
	"sync"
	"time"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

// MetricsCollector aggregates analysis counters for the running process.
type MetricsCollector struct {
	mu      sync.RWMutex
	started time.Time
	totals  MetricsTotals
	agents  map[string]*AgentMetrics
	now     func() time.Time
}

// MetricsTotals holds process-wide counters.
type MetricsTotals struct {
	Analyses          int `json:"analises" yaml:"analises"`
	FailedAnalyses    int `json:"analises_falhadas" yaml:"analises_falhadas"`
	Batches           int `json:"lotes" yaml:"lotes"`
	Competitions      int `json:"competicoes" yaml:"competicoes"`
	Syntheses         int `json:"sinteses" yaml:"sinteses"`
	SynthesisFailures int `json:"sinteses_falhadas" yaml:"sinteses_falhadas"`
}

// AgentMetrics holds per-analyzer metrics.
type AgentMetrics struct {
	Name          string           `json:"nome" yaml:"nome"`
	ContentType   core.ContentType `json:"tipo" yaml:"tipo"`
	Invocations   int              `json:"invocacoes" yaml:"invocacoes"`
	Errors        int              `json:"erros" yaml:"erros"`
	TotalDuration time.Duration    `json:"-" yaml:"-"`
	AvgDurationMS int64            `json:"duracao_media_ms" yaml:"duracao_media_ms"`
	LastError     string           `json:"ultimo_erro,omitempty" yaml:"ultimo_erro,omitempty"`
}

// MetricsSnapshot is a point-in-time copy of the collected metrics.
type MetricsSnapshot struct {
	UptimeSeconds int64          `json:"uptime_segundos" yaml:"uptime_segundos"`
	Totals        MetricsTotals  `json:"totais" yaml:"totais"`
	Agents        []AgentMetrics `json:"agentes" yaml:"agentes"`
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	m := &MetricsCollector{
		agents: make(map[string]*AgentMetrics),
		now:    time.Now,
	}
	m.started = m.now()
	return m
}

// RecordAnalysis records one analyzer invocation.
func (m *MetricsCollector) RecordAnalysis(v core.Verdict, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := v.AgentName
	if name == "" {
		name = DispatcherAgentName
	}
	am, ok := m.agents[name]
	if !ok {
		am = &AgentMetrics{Name: name, ContentType: v.ContentType}
		m.agents[name] = am
	}

	am.Invocations++
	am.TotalDuration += d
	am.AvgDurationMS = (am.TotalDuration / time.Duration(am.Invocations)).Milliseconds()
	m.totals.Analyses++

	if v.Failed() {
		am.Errors++
		am.LastError = v.Error
		m.totals.FailedAnalyses++
	}
}

// RecordBatch records a finished batch and its synthesis.
func (m *MetricsCollector) RecordBatch(kind string, synthesis core.SynthesisVerdict) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if kind == KindCompetition {
		m.totals.Competitions++
	} else {
		m.totals.Batches++
	}
	m.totals.Syntheses++
	if synthesis.Error != "" {
		m.totals.SynthesisFailures++
	}
}

// Snapshot returns a copy of the metrics with agents ordered by name.
func (m *MetricsCollector) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	agents := make([]AgentMetrics, 0, len(m.agents))
	for _, am := range m.agents {
		agents = append(agents, *am)
	}
	sort.Slice(agents, func(i, j int) bool {
		return agents[i].Name < agents[j].Name
	})

	return MetricsSnapshot{
		UptimeSeconds: int64(m.now().Sub(m.started).Seconds()),
		Totals:        m.totals,
		Agents:        agents,
	}
}

// Reset clears all metrics.
func (m *MetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.started = m.now()
	m.totals = MetricsTotals{}
	m.agents = make(map[string]*AgentMetrics)
}
