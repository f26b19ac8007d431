package diagnostics

import (
	"context"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostMetrics holds host resource usage.
type HostMetrics struct {
	CPUModel   string  `json:"cpu_modelo,omitempty" yaml:"cpu_modelo,omitempty"`
	CPUThreads int     `json:"cpu_threads" yaml:"cpu_threads"`
	CPUPercent float64 `json:"cpu_percent" yaml:"cpu_percent"`

	// Memory (in MB)
	MemTotalMB float64 `json:"mem_total_mb" yaml:"mem_total_mb"`
	MemUsedMB  float64 `json:"mem_usada_mb" yaml:"mem_usada_mb"`
	MemPercent float64 `json:"mem_percent" yaml:"mem_percent"`

	// Disk holding the upload spool (in GB)
	SpoolPath   string  `json:"spool" yaml:"spool"`
	DiskFreeGB  float64 `json:"disco_livre_gb" yaml:"disco_livre_gb"`
	DiskPercent float64 `json:"disco_percent" yaml:"disco_percent"`

	LoadAvg1 float64 `json:"load_avg_1" yaml:"load_avg_1"`
	LoadAvg5 float64 `json:"load_avg_5" yaml:"load_avg_5"`

	Goroutines int     `json:"goroutines" yaml:"goroutines"`
	HeapMB     float64 `json:"heap_mb" yaml:"heap_mb"`
}

// HostCollector samples host metrics. Every field is best-effort: a source
// that cannot be read leaves its fields zero.
type HostCollector struct {
	spool string

	mu           sync.Mutex
	lastCPUTotal float64
	lastCPUIdle  float64
	infoDone     bool
	cpuModel     string
	cpuThreads   int
}

// NewHostCollector creates a collector that reports disk usage for spool.
// An empty spool means the system temp directory.
func NewHostCollector(spool string) *HostCollector {
	if spool == "" {
		spool = os.TempDir()
	}
	return &HostCollector{spool: spool}
}

// Collect gathers current host metrics. CPU percent is measured between
// consecutive calls, so the first call reports zero.
func (c *HostCollector) Collect(ctx context.Context) HostMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := HostMetrics{SpoolPath: c.spool}

	if !c.infoDone {
		if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
			c.cpuModel = strings.TrimSpace(infos[0].ModelName)
		}
		if threads, err := cpu.CountsWithContext(ctx, true); err == nil && threads > 0 {
			c.cpuThreads = threads
		}
		c.infoDone = true
	}
	stats.CPUModel = c.cpuModel
	stats.CPUThreads = c.cpuThreads
	c.collectCPU(ctx, &stats)

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.MemTotalMB = float64(vm.Total) / 1024 / 1024
		stats.MemUsedMB = float64(vm.Used) / 1024 / 1024
		stats.MemPercent = vm.UsedPercent
	}

	if usage, err := disk.UsageWithContext(ctx, c.spool); err == nil {
		stats.DiskFreeGB = float64(usage.Free) / 1024 / 1024 / 1024
		stats.DiskPercent = usage.UsedPercent
	}

	if avg, err := load.AvgWithContext(ctx); err == nil {
		stats.LoadAvg1 = avg.Load1
		stats.LoadAvg5 = avg.Load5
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	stats.Goroutines = runtime.NumGoroutine()
	stats.HeapMB = float64(ms.HeapAlloc) / 1024 / 1024

	return stats
}

func (c *HostCollector) collectCPU(ctx context.Context, stats *HostMetrics) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil || len(times) == 0 {
		return
	}

	t := times[0]
	total := t.User + t.Nice + t.System + t.Idle + t.Iowait + t.Irq + t.Softirq + t.Steal
	idle := t.Idle + t.Iowait

	if c.lastCPUTotal > 0 {
		if delta := total - c.lastCPUTotal; delta > 0 {
			stats.CPUPercent = (1 - (idle-c.lastCPUIdle)/delta) * 100
		}
	}
	c.lastCPUTotal = total
	c.lastCPUIdle = idle
}
