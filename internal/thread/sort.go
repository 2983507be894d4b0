package thread

import (
	"sort"

	"github.com/avivsinai/thread-triage/internal/format"
)

// SortByCreated stable-sorts records by createdDateTime. Records without a
// parsable timestamp sort first; ties keep their input order.
func SortByCreated(records []format.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return createdBefore(records[i], records[j])
	})
}

func sortThreads(threads []format.Thread) {
	sort.SliceStable(threads, func(i, j int) bool {
		a, b := threads[i].Messages, threads[j].Messages
		if len(a) == 0 || len(b) == 0 {
			return len(a) == 0 && len(b) != 0
		}
		return createdBefore(a[0], b[0])
	})
}

func createdBefore(a, b format.Record) bool {
	ta, okA := a.Created()
	tb, okB := b.Created()
	switch {
	case okA && okB:
		return ta.Before(tb)
	case okB:
		return true
	default:
		return false
	}
}
