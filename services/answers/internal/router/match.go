package router

// Candidate is a rule whose keywords were all found in a request.
type Candidate struct {
	Specificity int
	Rule        *Rule
}

// Match returns the winning rules for an already normalized request.
//
// A rule is a candidate when every one of its keywords occurs as a
// contiguous substring of the request. Only candidates with the highest
// specificity are kept; ties are all returned, in table order. The result is
// empty, not nil, when nothing matches.
func (t *Table) Match(normalized string) []Candidate {
	found := make([]bool, len(t.patterns))
	iter := t.automaton.IterOverlappingByte([]byte(normalized))
	for m := iter.Next(); m != nil; m = iter.Next() {
		found[m.Pattern()] = true
	}

	best := 0
	cands := []Candidate{}
	for i := range t.rules {
		if !all(found, t.need[i]) {
			continue
		}
		s := t.rules[i].Specificity()
		switch {
		case s > best:
			best = s
			cands = append(cands[:0], Candidate{Specificity: s, Rule: &t.rules[i]})
		case s == best:
			cands = append(cands, Candidate{Specificity: s, Rule: &t.rules[i]})
		}
	}
	return cands
}

func all(found []bool, idx []int) bool {
	for _, i := range idx {
		if !found[i] {
			return false
		}
	}
	return true
}
