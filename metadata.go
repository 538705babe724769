package specify

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Metadata is arbitrary key value configuration attached to a scope or example.
//
// Metadata is inherited down the scope chain, a child's keys shadow any of its
// parent's keys of the same name. It is shown verbatim in failure reports.
type Metadata map[string]any

// merge returns a new [Metadata] containing m overlaid with each of overrides in turn.
//
// m itself is never modified.
func (m Metadata) merge(overrides ...Metadata) Metadata {
	merged := make(Metadata, len(m))
	maps.Copy(merged, m)
	for _, override := range overrides {
		maps.Copy(merged, override)
	}

	return merged
}

// String returns a stable representation of [Metadata] with keys in sorted order,
// e.g. "{slow: true, test: 5}".
func (m Metadata) String() string {
	keys := slices.Sorted(maps.Keys(m))

	var s strings.Builder
	s.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			s.WriteString(", ")
		}
		fmt.Fprintf(&s, "%s: %v", key, m[key])
	}
	s.WriteByte('}')

	return s.String()
}
