package action

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/lorikeet-run/lorikeet/internal/plan"
	lkruntime "github.com/lorikeet-run/lorikeet/internal/runtime"
)

// systemRoot is the mount system actions report disk totals for when a
// step doesn't ask about a specific mount (use a disk action for that).
const systemRoot = "/"

// systemAction reads one host-level metric. Reads are serialised through
// Context.SystemMu: the underlying /proc readers gopsutil wraps are not
// safe to interleave across goroutines on every platform.
type systemAction struct{ kind plan.SystemKind }

func (s systemAction) Execute(ctx context.Context, rt *lkruntime.Context) (string, error) {
	rt.SystemMu.Lock()
	defer rt.SystemMu.Unlock()

	switch s.kind {
	case plan.SystemMemTotal:
		v, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			return "", fmt.Errorf("could not read memory stats: %w", err)
		}
		return strconv.FormatUint(v.Total, 10), nil

	case plan.SystemMemFree:
		v, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			return "", fmt.Errorf("could not read memory stats: %w", err)
		}
		return strconv.FormatUint(v.Free, 10), nil

	case plan.SystemMemAvailable:
		v, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			return "", fmt.Errorf("could not read memory stats: %w", err)
		}
		return strconv.FormatUint(v.Available, 10), nil

	case plan.SystemLoadAvg1m:
		l, err := load.AvgWithContext(ctx)
		if err != nil {
			return "", fmt.Errorf("could not read load average: %w", err)
		}
		return strconv.FormatFloat(l.Load1, 'f', 2, 64), nil

	case plan.SystemLoadAvg5m:
		l, err := load.AvgWithContext(ctx)
		if err != nil {
			return "", fmt.Errorf("could not read load average: %w", err)
		}
		return strconv.FormatFloat(l.Load5, 'f', 2, 64), nil

	case plan.SystemLoadAvg15m:
		l, err := load.AvgWithContext(ctx)
		if err != nil {
			return "", fmt.Errorf("could not read load average: %w", err)
		}
		return strconv.FormatFloat(l.Load15, 'f', 2, 64), nil

	case plan.SystemDiskTotal:
		u, err := disk.UsageWithContext(ctx, systemRoot)
		if err != nil {
			return "", fmt.Errorf("could not read disk stats for `%s`: %w", systemRoot, err)
		}
		return strconv.FormatUint(u.Total, 10), nil

	case plan.SystemDiskFree:
		u, err := disk.UsageWithContext(ctx, systemRoot)
		if err != nil {
			return "", fmt.Errorf("could not read disk stats for `%s`: %w", systemRoot, err)
		}
		return strconv.FormatUint(u.Free, 10), nil

	default:
		return "", fmt.Errorf("unknown system metric %v", s.kind)
	}
}
