package ecs

// smallest returns the store with the fewest entries, nil if any is missing.
func smallest(stores ...store) store {
	var best store
	for _, s := range stores {
		if s == nil {
			return nil
		}
		if best == nil || s.len() < best.len() {
			best = s
		}
	}
	return best
}

// intersect returns the ids present in every store, iterating the smallest.
func intersect(stores ...store) []entityID {
	base := smallest(stores...)
	if base == nil {
		return nil
	}
	ids := base.ids()
	out := ids[:0]
	for _, id := range ids {
		keep := true
		for _, s := range stores {
			if !s.has(id) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, id)
		}
	}
	return out
}
