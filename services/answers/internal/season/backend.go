// Package season is the football season domain shared by every answer
// backend: fixtures, the league table, and the rendering of the canonical
// answers, so that each representation answers with identical text.
package season

import (
	"reflect"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/jredh-dev/semweb/services/answers/internal/router"
)

// ErrNoData is returned by a backend when its source holds nothing to
// answer with. It becomes a null answer, not a failure.
var ErrNoData = errors.New("no data found")

// Backend answers the ten canonical questions over one data representation.
// Implementations load their source once and must be safe for concurrent use.
type Backend interface {
	Name() string
	Leader() (string, error)             // Q1
	MatchesPlayed() (int, error)         // Q2
	TotalGoals() (int, error)            // Q3
	TopScorer() (string, error)          // Q4
	TeamsOver70Goals() ([]string, error) // Q5
	November2008() ([]string, error)     // Q6
	ManUnitedHomeWins() (int, error)     // Q7
	AwayWinsRanking() ([]string, error)  // Q8
	Top6AwayGoals() (string, error)      // Q9
	FirstVsThird() (string, error)       // Q10
}

// Operations binds b's methods to catalogue ids. Nothing is called until the
// router picks a rule.
func Operations(b Backend) map[string]router.Operation {
	return map[string]router.Operation{
		"Q1":  op(b.Leader),
		"Q2":  op(b.MatchesPlayed),
		"Q3":  op(b.TotalGoals),
		"Q4":  op(b.TopScorer),
		"Q5":  op(b.TeamsOver70Goals),
		"Q6":  op(b.November2008),
		"Q7":  op(b.ManUnitedHomeWins),
		"Q8":  op(b.AwayWinsRanking),
		"Q9":  op(b.Top6AwayGoals),
		"Q10": op(b.FirstVsThird),
	}
}

func op[T any](fn func() (T, error)) router.Operation {
	return func() (any, error) {
		v, err := fn()
		if errors.Is(err, ErrNoData) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Answers evaluates every operation of b, keyed by catalogue id.
func Answers(b Backend) (map[string]any, error) {
	out := make(map[string]any)
	for id, fn := range Operations(b) {
		v, err := fn()
		if err != nil {
			return nil, errors.Wrapf(err, "%s %s", b.Name(), id)
		}
		out[id] = v
	}
	return out, nil
}

// Diff lists the ids whose answers differ between two answer sets.
func Diff(want, got map[string]any) []string {
	var ids []string
	for id, w := range want {
		if !reflect.DeepEqual(w, got[id]) {
			ids = append(ids, id)
		}
	}
	for id := range got {
		if _, ok := want[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
