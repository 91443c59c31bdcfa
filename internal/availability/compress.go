package availability

import "sort"

// BlockedRange is a maximal run of consecutive days that all carry the same
// source tag. End is inclusive.
type BlockedRange struct {
	Start  Day       `json:"start_date"`
	End    Day       `json:"end_date"`
	Source SourceTag `json:"source"`
}

// Compress run-length encodes a day map into the minimal sorted range list.
// Returned ranges never overlap, are ordered by start, and no two adjacent
// ranges share a source (they would have been merged).
func Compress(m map[Day]SourceTag) []BlockedRange {
	if len(m) == 0 {
		return nil
	}

	days := make([]Day, 0, len(m))
	for d := range m {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	ranges := make([]BlockedRange, 0)
	current := BlockedRange{Start: days[0], End: days[0], Source: m[days[0]]}
	for _, d := range days[1:] {
		if d == current.End.Next() && m[d] == current.Source {
			current.End = d
			continue
		}
		ranges = append(ranges, current)
		current = BlockedRange{Start: d, End: d, Source: m[d]}
	}
	return append(ranges, current)
}

// Expand is the inverse of Compress: every day from Start to End inclusive
// is written with its range's source. Later ranges win on overlap.
func Expand(ranges []BlockedRange) map[Day]SourceTag {
	m := make(map[Day]SourceTag)
	for _, r := range ranges {
		for _, d := range DaysBetween(r.Start, r.End) {
			m[d] = r.Source
		}
	}
	return m
}
