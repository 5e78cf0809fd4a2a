package archive

import (
	"fmt"

	"github.com/ChuLiYu/taskgen/pkg/types"
)

// Separator terminates every run in the archive.
const Separator = "---"

// FormatTask renders a task as "<index> <bcet> <wcet> <priority>" with times
// to two decimal places.
func FormatTask(t types.Task) string {
	return fmt.Sprintf("%d %.2f %.2f %d", t.Index, t.BCET, t.WCET, t.Priority)
}
