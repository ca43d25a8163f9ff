package source

import (
	"fmt"
	"sort"
	"strings"
)

// Edit replaces src[Start:End] with Text. An insertion has Start == End.
type Edit struct {
	Start int
	End   int
	Text  string
}

// ApplyEdits applies edits to src. Edits are applied from the last
// position to the first so that no edit shifts the offsets of another.
// Overlapping edits are rejected.
func ApplyEdits(src string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return src, nil
	}
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start > sorted[j].Start
		}
		return sorted[i].End > sorted[j].End
	})

	out := src
	limit := len(src)
	for _, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > len(src) {
			return "", fmt.Errorf("edit [%d:%d] out of range", e.Start, e.End)
		}
		if e.End > limit {
			return "", fmt.Errorf("edit [%d:%d] overlaps a later edit", e.Start, e.End)
		}
		var b strings.Builder
		b.Grow(len(out) - (e.End - e.Start) + len(e.Text))
		b.WriteString(out[:e.Start])
		b.WriteString(e.Text)
		b.WriteString(out[e.End:])
		out = b.String()
		limit = e.Start
	}
	return out, nil
}
