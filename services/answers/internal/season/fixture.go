package season

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// DateLayout is how fixture dates are displayed on every page and in answers.
const DateLayout = "02/01/2006"

// Fixture is one played match.
type Fixture struct {
	Date      time.Time
	Home      string
	Away      string
	HomeGoals int
	AwayGoals int
}

// Score renders the result as "2 - 1".
func (f Fixture) Score() string {
	return fmt.Sprintf("%d - %d", f.HomeGoals, f.AwayGoals)
}

// Line renders the fixture as "01/11/2008 | Arsenal | 2 - 1 | Chelsea".
func (f Fixture) Line() string {
	return f.Date.Format(DateLayout) + " | " + f.Home + " | " + f.Score() + " | " + f.Away
}

// Involves reports whether team played in the fixture.
func (f Fixture) Involves(team string) bool {
	return f.Home == team || f.Away == team
}

// Goals is the total scored by both sides.
func (f Fixture) Goals() int { return f.HomeGoals + f.AwayGoals }

// ParseScore reads "2 - 1" (spacing optional).
func ParseScore(s string) (home, away int, err error) {
	h, a, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, errors.Newf("score %q: missing separator", s)
	}
	if home, err = strconv.Atoi(strings.TrimSpace(h)); err != nil {
		return 0, 0, errors.Wrapf(err, "score %q", s)
	}
	if away, err = strconv.Atoi(strings.TrimSpace(a)); err != nil {
		return 0, 0, errors.Wrapf(err, "score %q", s)
	}
	return home, away, nil
}

// SortFixtures orders fixtures by date, keeping the input order within a day.
func SortFixtures(fs []Fixture) {
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].Date.Before(fs[j].Date) })
}

// InMonth returns the fixtures played in the given month.
func InMonth(fs []Fixture, year int, month time.Month) []Fixture {
	var out []Fixture
	for _, f := range fs {
		if f.Date.Year() == year && f.Date.Month() == month {
			out = append(out, f)
		}
	}
	return out
}

// Lines renders each fixture with Line.
func Lines(fs []Fixture) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Line()
	}
	return out
}

var csvHeader = []string{"date", "home", "away", "home_goals", "away_goals"}

// ReadCSV loads fixtures from a comma separated file with the header
// date,home,away,home_goals,away_goals and ISO dates.
func ReadCSV(r io.Reader) ([]Fixture, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	for i, h := range csvHeader {
		if strings.TrimSpace(header[i]) != h {
			return nil, errors.Newf("column %d is %q, want %q", i+1, header[i], h)
		}
	}

	var fs []Fixture
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read fixture")
		}
		line, _ := cr.FieldPos(0)

		date, err := time.Parse(time.DateOnly, rec[0])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: date", line)
		}
		hg, err := strconv.Atoi(rec[3])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: home goals", line)
		}
		ag, err := strconv.Atoi(rec[4])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: away goals", line)
		}
		if rec[1] == "" || rec[2] == "" || rec[1] == rec[2] {
			return nil, errors.Newf("line %d: bad teams %q vs %q", line, rec[1], rec[2])
		}
		fs = append(fs, Fixture{Date: date, Home: rec[1], Away: rec[2], HomeGoals: hg, AwayGoals: ag})
	}
	SortFixtures(fs)
	return fs, nil
}
