package core

// SourceSet accumulates sources across rounds, deduplicated by URL with
// insertion order preserved. First-seen wins for title and snippet, so
// re-merging the same findings is idempotent.
//
// SourceSet is not safe for concurrent use; the iteration engine performs
// all merges single-threaded between component calls.
type SourceSet struct {
	order []Source
	seen  map[string]struct{}
}

// NewSourceSet returns an empty source accumulator.
func NewSourceSet() *SourceSet {
	return &SourceSet{seen: make(map[string]struct{})}
}

// Add inserts a single source unless its URL is already present or empty.
// Reports whether the source was added.
func (s *SourceSet) Add(src Source) bool {
	if src.URL == "" {
		return false
	}
	if _, ok := s.seen[src.URL]; ok {
		return false
	}
	s.seen[src.URL] = struct{}{}
	s.order = append(s.order, src)
	return true
}

// Merge folds every source carried by the findings into the set. The merge
// is pure with respect to its input and idempotent: merging the same batch
// twice yields the same set.
func (s *SourceSet) Merge(findings ...Finding) {
	for _, f := range findings {
		for _, src := range f.Sources {
			s.Add(src)
		}
	}
}

// Len returns the number of distinct URLs accumulated.
func (s *SourceSet) Len() int { return len(s.order) }

// Slice returns a copy of the accumulated sources in insertion order.
func (s *SourceSet) Slice() []Source {
	out := make([]Source, len(s.order))
	copy(out, s.order)
	return out
}
