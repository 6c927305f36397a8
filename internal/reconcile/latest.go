package reconcile

import "sort"

// Latest picks, for every partition, the record with the greatest time and
// returns them most recent first. partition maps a record to its key.
func Latest[T Record](records []T, partition func(T) string) []T {
	best := make(map[string]T)
	for _, r := range records {
		p := partition(r)
		cur, ok := best[p]
		if !ok || r.RecordTime().After(cur.RecordTime()) {
			best[p] = r
		}
	}
	out := make([]T, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].RecordTime(), out[j].RecordTime()
		if ti.Equal(tj) {
			return out[i].RecordID() < out[j].RecordID()
		}
		return ti.After(tj)
	})
	return out
}
