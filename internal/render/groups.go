package render

// GroupSize is the fixed measure-group window: at most two measures render
// into one preview image.
const GroupSize = 2

// Group is a contiguous, inclusive range of measure numbers.
type Group struct {
	Start int
	End   int
}

// Groups partitions measures 1..total into ascending fixed-size windows.
// Every measure appears in exactly one group; the final group may be
// narrower. A non-positive total yields a single one-measure group so a
// degraded pipeline still produces at least one preview.
func Groups(total int) []Group {
	if total < 1 {
		total = 1
	}
	groups := make([]Group, 0, (total+GroupSize-1)/GroupSize)
	for start := 1; start <= total; start += GroupSize {
		end := start + GroupSize - 1
		if end > total {
			end = total
		}
		groups = append(groups, Group{Start: start, End: end})
	}
	return groups
}
