package core

// Transitions is an allowed-transition table of a status lifecycle: {from: [to...]}.
type Transitions[S ~string] map[S][]S

// Allowed reports whether a record may move from `from` to `to`.
func (t Transitions[S]) Allowed(from, to S) bool {
	for _, s := range t[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Sources returns every status `to` can be reached from.
// Guarded updates use it to only touch records still in one of these.
func (t Transitions[S]) Sources(to S) []S {
	sources := make([]S, 0, 1)
	for from, targets := range t {
		for _, s := range targets {
			if s == to {
				sources = append(sources, from)
				break
			}
		}
	}
	return sources
}

// SourceValues is Sources as filter values.
func (t Transitions[S]) SourceValues(to S) []interface{} {
	srcs := t.Sources(to)
	vals := make([]interface{}, 0, len(srcs))
	for _, s := range srcs {
		vals = append(vals, string(s))
	}
	return vals
}
