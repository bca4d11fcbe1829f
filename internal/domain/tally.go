package domain

// tally counts categorical values in first-seen order.
type tally struct {
	order  []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(value string) {
	if _, ok := t.counts[value]; !ok {
		t.order = append(t.order, value)
	}
	t.counts[value]++
}

// mode returns the most frequent value. Ties go to the value seen first.
// An empty tally yields fallback.
func (t *tally) mode(fallback string) string {
	best, bestCount := fallback, 0
	for _, v := range t.order {
		if c := t.counts[v]; c > bestCount {
			best, bestCount = v, c
		}
	}
	return best
}
