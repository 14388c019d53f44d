// Package router maps a free-text question to the canonical question(s) it
// asks and runs the matching backend operations.
//
// A Table is built once at startup from a fixed list of rules. Each request
// is normalized, scanned against every rule's keywords, narrowed to the most
// specific matching rules, and only those rules' operations are called.
package router

import (
	"strings"

	"github.com/cockroachdb/errors"
	aho "github.com/petar-dambovaliev/aho-corasick"

	"github.com/jredh-dev/semweb/services/answers/internal/catalogue"
	"github.com/jredh-dev/semweb/services/answers/internal/normalize"
)

var (
	ErrNoRules       = errors.New("router: no rules")
	ErrEmptyKeywords = errors.New("router: rule has no keywords")
	ErrNilOperation  = errors.New("router: rule has no operation")
	// ErrDuplicateKeyword rejects a rule listing the same keyword twice
	// after normalization, which would inflate its specificity.
	ErrDuplicateKeyword = errors.New("router: duplicate keyword")
)

// Operation produces the answer for one canonical question. It is stored in
// the table and only called when its rule wins a request.
type Operation func() (any, error)

// Rule ties a set of required keywords to a title and an operation.
type Rule struct {
	Title    string
	Keywords []string
	Op       Operation
}

// Specificity is the number of keywords the rule requires.
func (r *Rule) Specificity() int { return len(r.Keywords) }

// Table is an ordered, read-only set of rules. It is safe for concurrent use.
type Table struct {
	rules []Rule

	// patterns are the distinct normalized keywords across all rules;
	// need[i] lists the pattern indices rule i requires.
	patterns  []string
	need      [][]int
	automaton aho.AhoCorasick
}

// NewTable normalizes the keywords of every rule and compiles the matcher.
// Rules keep their declaration order, which is also the order tied winners
// are returned in.
func NewTable(rules []Rule) (*Table, error) {
	if len(rules) == 0 {
		return nil, ErrNoRules
	}

	t := &Table{
		rules: make([]Rule, len(rules)),
		need:  make([][]int, len(rules)),
	}
	index := make(map[string]int)

	for i, r := range rules {
		if r.Op == nil {
			return nil, errors.Wrapf(ErrNilOperation, "rule %q", r.Title)
		}
		if len(r.Keywords) == 0 {
			return nil, errors.Wrapf(ErrEmptyKeywords, "rule %q", r.Title)
		}

		seen := make(map[string]bool, len(r.Keywords))
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			n := normalize.String(strings.TrimSpace(kw))
			if n == "" {
				return nil, errors.Wrapf(ErrEmptyKeywords, "rule %q: blank keyword", r.Title)
			}
			if seen[n] {
				return nil, errors.Wrapf(ErrDuplicateKeyword, "rule %q: %q", r.Title, kw)
			}
			seen[n] = true
			kws = append(kws, n)

			idx, ok := index[n]
			if !ok {
				idx = len(t.patterns)
				index[n] = idx
				t.patterns = append(t.patterns, n)
			}
			t.need[i] = append(t.need[i], idx)
		}

		t.rules[i] = Rule{Title: r.Title, Keywords: kws, Op: r.Op}
	}

	b := aho.NewAhoCorasickBuilder(aho.Opts{DFA: true})
	t.automaton = b.Build(t.patterns)
	return t, nil
}

// Bind builds a table from the catalogue, one rule per entry in catalogue
// order, taking each entry's operation from ops by id.
func Bind(cat *catalogue.Catalogue, ops map[string]Operation) (*Table, error) {
	rules := make([]Rule, 0, len(cat.Entries))
	for _, e := range cat.Entries {
		op, ok := ops[e.ID]
		if !ok {
			return nil, errors.Newf("router: no operation for %s", e.ID)
		}
		rules = append(rules, Rule{Title: e.Title, Keywords: e.Keywords, Op: op})
	}
	return NewTable(rules)
}

// Rules returns the table's rules with normalized keywords.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}
