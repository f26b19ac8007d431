package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hugo-lorenzo-mato/jurado-ai/internal/core"
)

// Status values reported to clients.
const (
	StatusActive        = "Ativo"
	StatusConnectionOK  = "OK"
	StatusMissingAPIKey = "API Key não configurada"
)

// HealthReporter reports which analyzers are registered and whether the
// model connection is configured.
type HealthReporter struct {
	dispatcher    *Dispatcher
	apiConfigured bool

	mu     sync.RWMutex
	probes map[string]core.Pinger
}

// NewHealthReporter creates a reporter over the dispatcher's analyzers.
func NewHealthReporter(dispatcher *Dispatcher, apiConfigured bool) *HealthReporter {
	return &HealthReporter{
		dispatcher:    dispatcher,
		apiConfigured: apiConfigured,
		probes:        make(map[string]core.Pinger),
	}
}

// AddProbe registers a collaborator checked by Probe.
func (h *HealthReporter) AddProbe(name string, p core.Pinger) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.probes[name] = p
}

// Status returns the static liveness report: every registered analyzer and
// the orchestrator are active; the model connection is OK when an API key is
// configured.
func (h *HealthReporter) Status() map[string]string {
	status := make(map[string]string)
	for _, a := range h.dispatcher.Analyzers() {
		status[AgentStatusKey(a.ContentType())] = StatusActive
	}
	status["orchestrator"] = StatusActive
	if h.apiConfigured {
		status["gemini_connection"] = StatusConnectionOK
	} else {
		status["gemini_connection"] = StatusMissingAPIKey
	}
	return status
}

// AgentStatusKey is the status key for the analyzer of ct.
func AgentStatusKey(ct core.ContentType) string {
	return fmt.Sprintf("%s_agent", ct)
}

// ProbeResult is the outcome of one availability check.
type ProbeResult struct {
	Name      string `json:"name" yaml:"name"`
	Available bool   `json:"available" yaml:"available"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms" yaml:"latency_ms"`
}

// Probe pings every registered collaborator concurrently, each bounded by
// timeout, and returns the results sorted by name.
func (h *HealthReporter) Probe(ctx context.Context, timeout time.Duration) []ProbeResult {
	h.mu.RLock()
	names := make([]string, 0, len(h.probes))
	for name := range h.probes {
		names = append(names, name)
	}
	probes := make(map[string]core.Pinger, len(h.probes))
	for k, v := range h.probes {
		probes[k] = v
	}
	h.mu.RUnlock()
	sort.Strings(names)

	results := make([]ProbeResult, len(names))
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			pctx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				pctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			start := time.Now()
			err := probes[name].Ping(pctx)
			results[i] = ProbeResult{
				Name:      name,
				Available: err == nil,
				LatencyMS: time.Since(start).Milliseconds(),
			}
			if err != nil {
				results[i].Error = core.Message(err)
			}
			// A failed ping is a result, not a group error.
			return nil
		})
	}
	_ = g.Wait()
	return results
}
