package diagnostics

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// DiskProbe fails when the filesystem holding Path has less than MinFreeMB
// free. Uploads are spooled there before analysis.
type DiskProbe struct {
	Path      string
	MinFreeMB uint64
}

// Ping checks free space.
func (p DiskProbe) Ping(ctx context.Context) error {
	usage, err := disk.UsageWithContext(ctx, p.Path)
	if err != nil {
		return fmt.Errorf("reading disk usage of %s: %w", p.Path, err)
	}
	if free := usage.Free / 1024 / 1024; free < p.MinFreeMB {
		return fmt.Errorf("only %d MB free in %s, need %d MB", free, p.Path, p.MinFreeMB)
	}
	return nil
}

// MemoryProbe fails when less than MinAvailableMB of memory is available.
type MemoryProbe struct {
	MinAvailableMB uint64
}

// Ping checks available memory.
func (p MemoryProbe) Ping(ctx context.Context) error {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return fmt.Errorf("reading memory: %w", err)
	}
	if avail := vm.Available / 1024 / 1024; avail < p.MinAvailableMB {
		return fmt.Errorf("only %d MB memory available, need %d MB", avail, p.MinAvailableMB)
	}
	return nil
}
