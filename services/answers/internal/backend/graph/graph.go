// Package graph answers the canonical questions with SPARQL queries over the
// knowledge graph built by the crawler.
package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/jredh-dev/semweb/services/answers/internal/graph/sparql"
	"github.com/jredh-dev/semweb/services/answers/internal/graph/store"
	"github.com/jredh-dev/semweb/services/answers/internal/season"
)

const prefixes = "PREFIX schema: <http://schema.org/>\n"

const queryTimeout = 10 * time.Second

// Backend queries a triple store. It is safe for concurrent use.
type Backend struct {
	store *store.Store
}

func New(st *store.Store) *Backend {
	return &Backend{store: st}
}

func (b *Backend) Name() string { return "Knowledge Graph" }

func (b *Backend) query(q string) ([]sparql.Binding, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	rows, err := b.store.Select(ctx, prefixes+q)
	if err != nil {
		return nil, errors.Wrap(err, "knowledge graph query")
	}
	return rows, nil
}

// scalar runs an aggregate query and reads v from its single row.
func (b *Backend) scalar(q, v string) (int, error) {
	rows, err := b.query(q)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, season.ErrNoData
	}
	n, ok := rows[0].Int(v)
	if !ok {
		return 0, season.ErrNoData
	}
	return n, nil
}

// quote renders s as a SPARQL string literal.
func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

func (b *Backend) Leader() (string, error) {
	rows, err := b.query(`
		SELECT ?name WHERE {
			?team a schema:SportsTeam ; schema:position 1 ; schema:name ?name .
		} LIMIT 1`)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", season.ErrNoData
	}
	return rows[0].String("name"), nil
}

func (b *Backend) events() (int, error) {
	return b.scalar(`SELECT (COUNT(?m) AS ?n) WHERE { ?m a schema:SportsEvent }`, "n")
}

func (b *Backend) MatchesPlayed() (int, error) {
	n, err := b.events()
	if err == nil && n == 0 {
		return 0, season.ErrNoData
	}
	return n, err
}

func (b *Backend) TotalGoals() (int, error) {
	rows, err := b.query(`
		SELECT (SUM(?hs) AS ?home) (SUM(?as) AS ?away) WHERE {
			?m a schema:SportsEvent ; schema:homeScore ?hs ; schema:awayScore ?as .
		}`)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, season.ErrNoData
	}
	home, ok1 := rows[0].Int("home")
	away, ok2 := rows[0].Int("away")
	if !ok1 || !ok2 {
		return 0, season.ErrNoData
	}
	return home + away, nil
}

func (b *Backend) TopScorer() (string, error) {
	rows, err := b.query(`
		SELECT ?name ?goals WHERE {
			?team a schema:SportsTeam ; schema:name ?name ;
				schema:goalsScored ?goals ; schema:position ?pos .
		} ORDER BY DESC(?goals) ?pos LIMIT 1`)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", season.ErrNoData
	}
	goals, _ := rows[0].Int("goals")
	return season.TopScorerLine(rows[0].String("name"), goals), nil
}

func (b *Backend) TeamsOver70Goals() ([]string, error) {
	rows, err := b.query(fmt.Sprintf(`
		SELECT ?name WHERE {
			?team a schema:SportsTeam ; schema:name ?name ;
				schema:goalsScored ?goals ; schema:position ?pos .
			FILTER(?goals > %d)
		} ORDER BY ?pos`, season.GoalThreshold))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, season.ErrNoData
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.String("name")
	}
	return out, nil
}

// fixtures returns the matches accepted by filter, in calendar order. The
// filter may refer to ?date, ?home and ?away (team names).
func (b *Backend) fixtures(filter string) ([]season.Fixture, error) {
	q := `
		SELECT ?date ?home ?away ?hs ?as WHERE {
			?m a schema:SportsEvent ; schema:startDate ?date ;
				schema:homeTeam ?ht ; schema:awayTeam ?at ;
				schema:homeScore ?hs ; schema:awayScore ?as .
			?ht schema:name ?home .
			?at schema:name ?away .`
	if filter != "" {
		q += "\n\t\t\tFILTER(" + filter + ")"
	}
	q += "\n\t\t} ORDER BY ?date ?m"

	rows, err := b.query(q)
	if err != nil {
		return nil, err
	}
	out := make([]season.Fixture, 0, len(rows))
	for _, r := range rows {
		date, err := time.Parse(time.DateOnly, r.String("date"))
		if err != nil {
			return nil, errors.Wrapf(err, "knowledge graph: bad startDate %q", r.String("date"))
		}
		hs, _ := r.Int("hs")
		as, _ := r.Int("as")
		out = append(out, season.Fixture{
			Date:      date,
			Home:      r.String("home"),
			Away:      r.String("away"),
			HomeGoals: hs,
			AwayGoals: as,
		})
	}
	return out, nil
}

func (b *Backend) November2008() ([]string, error) {
	month := fmt.Sprintf("%04d-%02d", season.ReportYear, int(season.ReportMonth))
	fs, err := b.fixtures("STRSTARTS(?date, " + quote(month) + ")")
	if err != nil {
		return nil, err
	}
	return season.Lines(fs), nil
}

func (b *Backend) ManUnitedHomeWins() (int, error) {
	rows, err := b.query(`
		SELECT ?team WHERE {
			?team a schema:SportsTeam ; schema:name ` + quote(season.HomeTeam) + ` .
		} LIMIT 1`)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, season.ErrNoData
	}
	return b.scalar(`
		SELECT (COUNT(?m) AS ?wins) WHERE {
			?m a schema:SportsEvent ; schema:homeTeam ?team ;
				schema:homeScore ?hs ; schema:awayScore ?as .
			?team schema:name `+quote(season.HomeTeam)+` .
			FILTER(?hs > ?as)
		}`, "wins")
}

func (b *Backend) names() ([]string, error) {
	rows, err := b.query(`
		SELECT ?name ?pos WHERE {
			?team a schema:SportsTeam ; schema:name ?name ; schema:position ?pos .
		} ORDER BY ?pos`)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.String("name")
	}
	return out, nil
}

// perAwayTeam sums ?v per away team name over the events accepted by filter.
func (b *Backend) perAwayTeam(agg, filter string) (map[string]int, error) {
	q := `
		SELECT ?name (` + agg + ` AS ?n) WHERE {
			?m a schema:SportsEvent ; schema:awayTeam ?team ;
				schema:homeScore ?hs ; schema:awayScore ?as .
			?team schema:name ?name .`
	if filter != "" {
		q += "\n\t\t\tFILTER(" + filter + ")"
	}
	q += "\n\t\t} GROUP BY ?name"

	rows, err := b.query(q)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		n, _ := r.Int("n")
		out[r.String("name")] = n
	}
	return out, nil
}

func (b *Backend) AwayWinsRanking() ([]string, error) {
	n, err := b.events()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, season.ErrNoData
	}
	wins, err := b.perAwayTeam("COUNT(?m)", "?as > ?hs")
	if err != nil {
		return nil, err
	}
	teams, err := b.names()
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		if _, ok := wins[t]; !ok {
			wins[t] = 0
		}
	}
	return season.RankAwayWins(wins), nil
}

func (b *Backend) Top6AwayGoals() (string, error) {
	teams, err := b.names()
	if err != nil {
		return "", err
	}
	if len(teams) == 0 {
		return "", season.ErrNoData
	}
	if len(teams) > season.TopN {
		teams = teams[:season.TopN]
	}
	goals, err := b.perAwayTeam("SUM(?as)", "")
	if err != nil {
		return "", err
	}
	return season.AwayGoalsReport(teams, goals), nil
}

func (b *Backend) FirstVsThird() (string, error) {
	rows, err := b.query(`
		SELECT ?name ?pos WHERE {
			?team a schema:SportsTeam ; schema:name ?name ; schema:position ?pos .
			FILTER(?pos = 1 || ?pos = 3)
		} ORDER BY ?pos`)
	if err != nil {
		return "", err
	}
	if len(rows) != 2 {
		return "", season.ErrNoData
	}
	first, third := quote(rows[0].String("name")), quote(rows[1].String("name"))

	fs, err := b.fixtures(fmt.Sprintf("(?home = %s && ?away = %s) || (?home = %s && ?away = %s)",
		first, third, third, first))
	if err != nil {
		return "", err
	}
	return season.HeadToHeadReport(rows[0].String("name"), rows[1].String("name"), fs), nil
}
