package doctree

// MergeExtras folds one extension's partial output into a node's extras
// map and returns the merged map. The merge is deep:
//
//   - map-valued fields merge recursively, key by key
//   - slice and scalar fields are replaced wholesale
//   - a key absent from src never deletes an existing key in dst
//
// This prevents one extension's output from erasing another's unrelated
// annotations. When two extensions write the same leaf scalar the
// later-executing one wins, which is why overlapping provides are
// surfaced as conflict warnings.
//
// dst is mutated in place and returned; when dst is nil a new map is
// allocated so callers can write back `n.Extras = MergeExtras(n.Extras,
// partial)`. src is never modified, but nested maps from src may be
// shared with the result, so extensions must not retain and mutate what
// they return.
//
// For extensions A and B with disjoint provides, A-then-B and B-then-A
// produce the same map.
func MergeExtras(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, sv := range src {
		dv, exists := dst[key]
		if !exists {
			dst[key] = sv
			continue
		}
		dm, dok := dv.(map[string]any)
		sm, sok := sv.(map[string]any)
		if dok && sok {
			dst[key] = MergeExtras(dm, sm)
			continue
		}
		dst[key] = sv
	}
	return dst
}
