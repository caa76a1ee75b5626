package action

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/lorikeet-run/lorikeet/internal/plan"
	lkruntime "github.com/lorikeet-run/lorikeet/internal/runtime"
)

// diskAction reports size, used or free space for one mount point via
// statfs(2), rendered as raw bytes, a percentage, or a human-readable unit.
type diskAction struct{ spec *plan.DiskSpec }

func (d diskAction) Execute(_ context.Context, _ *lkruntime.Context) (string, error) {
	spec := d.spec

	var stat unix.Statfs_t
	if err := unix.Statfs(spec.Mount, &stat); err != nil {
		return "", fmt.Errorf("unable to retrieve stats of `%s`: %w", spec.Mount, err)
	}

	blockSize := uint64(stat.Bsize)
	size := stat.Blocks * blockSize
	free := stat.Bavail * blockSize
	used := size - free

	var value uint64
	switch spec.Type {
	case plan.DiskSize:
		value = size
	case plan.DiskUsed:
		value = used
	case plan.DiskFree:
		value = free
	default:
		return "", fmt.Errorf("unknown disk type %v", spec.Type)
	}

	switch spec.OutputType {
	case plan.DiskOutputBytes:
		return strconv.FormatUint(value, 10), nil
	case plan.DiskOutputPercent:
		if size == 0 {
			return "", fmt.Errorf("size for mount `%s` is 0, can't create percentage", spec.Mount)
		}
		pct := math.Round((float64(value) / float64(size)) * 100.0)
		return fmt.Sprintf("%.0f%%", pct), nil
	case plan.DiskOutputHuman:
		return prettyBytes(float64(value)), nil
	default:
		return "", fmt.Errorf("unknown disk output type %v", spec.OutputType)
	}
}

var byteUnits = [...]string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// prettyBytes renders num using the same 1000-based unit ladder as bytes
// output elsewhere in the toolchain, so disk readings stay comparable
// across formats.
func prettyBytes(num float64) string {
	sign := ""
	if num < 0 {
		sign = "-"
		num = -num
	}
	if num < 1 {
		return fmt.Sprintf("%s%v B", sign, num)
	}

	const delimiter = 1000.0
	exponent := int(math.Floor(math.Log(num) / math.Log(delimiter)))
	if exponent > len(byteUnits)-1 {
		exponent = len(byteUnits) - 1
	}

	unit := byteUnits[exponent]
	return fmt.Sprintf("%s%.2f%s", sign, num/math.Pow(delimiter, float64(exponent)), unit)
}
