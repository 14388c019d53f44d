package graph

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jredh-dev/semweb/services/answers/internal/crawler"
	"github.com/jredh-dev/semweb/services/answers/internal/graph/schema"
	"github.com/jredh-dev/semweb/services/answers/internal/graph/store"
	"github.com/jredh-dev/semweb/services/answers/internal/season"
	"github.com/jredh-dev/semweb/services/answers/internal/season/sample"
	"github.com/jredh-dev/semweb/services/answers/internal/site"
)

func emptyStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// crawledSample builds the graph the way the service does: render the
// enriched site and crawl its JSON-LD.
func crawledSample(t *testing.T) *Backend {
	t.Helper()
	g, err := site.New(sample.Fixtures())
	require.NoError(t, err)
	dir := t.TempDir()
	_, err = g.Write(site.RDFa, dir)
	require.NoError(t, err)

	st := emptyStore(t)
	stats, err := crawler.New(st, crawler.Options{}).CrawlDir(context.Background(), dir)
	require.NoError(t, err)
	require.Zero(t, stats.Errors)
	return New(st)
}

func TestBackend_Sample(t *testing.T) {
	b := crawledSample(t)
	assert.Equal(t, "Knowledge Graph", b.Name())

	leader, err := b.Leader()
	require.NoError(t, err)
	assert.Equal(t, "Chelsea", leader)

	played, err := b.MatchesPlayed()
	require.NoError(t, err)
	assert.Equal(t, 380, played)

	goals, err := b.TotalGoals()
	require.NoError(t, err)
	assert.Equal(t, 1232, goals)

	top, err := b.TopScorer()
	require.NoError(t, err)
	assert.Equal(t, "Liverpool (108 buts)", top)

	over, err := b.TeamsOver70Goals()
	require.NoError(t, err)
	assert.Equal(t, []string{"Chelsea", "Liverpool", "Arsenal", "Manchester United", "Manchester City"}, over)

	nov, err := b.November2008()
	require.NoError(t, err)
	require.Len(t, nov, 50)
	assert.Equal(t, "01/11/2008 | West Ham United | 3 - 3 | Manchester United", nov[0])
	assert.Equal(t, "29/11/2008 | Portsmouth | 1 - 2 | Blackburn Rovers", nov[49])

	home, err := b.ManUnitedHomeWins()
	require.NoError(t, err)
	assert.Equal(t, 14, home)

	ranking, err := b.AwayWinsRanking()
	require.NoError(t, err)
	require.Len(t, ranking, 20)
	assert.Equal(t, "1. Arsenal - 12 victoires", ranking[0])
	assert.Equal(t, "20. West Ham United - 1 victoires", ranking[19])

	report, err := b.Top6AwayGoals()
	require.NoError(t, err)
	assert.Contains(t, report, "Moyenne (sur 6 équipes) : 38.50 buts")
	assert.Contains(t, report, "Arsenal : 53 buts")

	h2h, err := b.FirstVsThird()
	require.NoError(t, err)
	assert.Equal(t,
		"04/10/2008 | Chelsea | 2 - 3 | Arsenal | Défaite du premier\n"+
			"14/02/2009 | Arsenal | 2 - 1 | Chelsea | Défaite du premier", h2h)
}

func TestBackend_MatchesReference(t *testing.T) {
	want, err := season.Answers(season.NewMemory(sample.Fixtures()))
	require.NoError(t, err)
	got, err := season.Answers(crawledSample(t))
	require.NoError(t, err)
	assert.Empty(t, season.Diff(want, got))
}

func TestBackend_EmptyGraph(t *testing.T) {
	b := New(emptyStore(t))

	_, err := b.Leader()
	assert.ErrorIs(t, err, season.ErrNoData)
	_, err = b.MatchesPlayed()
	assert.ErrorIs(t, err, season.ErrNoData)
	_, err = b.TotalGoals()
	assert.ErrorIs(t, err, season.ErrNoData)
	_, err = b.TopScorer()
	assert.ErrorIs(t, err, season.ErrNoData)
	_, err = b.TeamsOver70Goals()
	assert.ErrorIs(t, err, season.ErrNoData)
	_, err = b.ManUnitedHomeWins()
	assert.ErrorIs(t, err, season.ErrNoData)
	_, err = b.AwayWinsRanking()
	assert.ErrorIs(t, err, season.ErrNoData)
	_, err = b.Top6AwayGoals()
	assert.ErrorIs(t, err, season.ErrNoData)
	_, err = b.FirstVsThird()
	assert.ErrorIs(t, err, season.ErrNoData)

	nov, err := b.November2008()
	require.NoError(t, err)
	assert.NotNil(t, nov)
	assert.Empty(t, nov)

	// Through the router operations a missing answer is null, not a failure.
	answers, err := season.Answers(b)
	require.NoError(t, err)
	assert.Nil(t, answers["Q1"])
}

func TestBackend_HandBuiltGraph(t *testing.T) {
	st := emptyStore(t)
	team := func(name string, pos, goals int64) store.Term {
		iri := store.NewIRI(schema.TeamIRI(name))
		_, err := st.Add(
			store.Triple{S: iri, P: store.NewIRI(schema.RDFType), O: store.NewIRI(schema.SportsTeam)},
			store.Triple{S: iri, P: store.NewIRI(schema.Name), O: store.NewLiteral(name, schema.XSDString)},
			store.Triple{S: iri, P: store.NewIRI(schema.Position), O: store.NewInt(pos)},
			store.Triple{S: iri, P: store.NewIRI(schema.GoalsScored), O: store.NewInt(goals)},
		)
		require.NoError(t, err)
		return iri
	}
	event := func(id, date string, home, away store.Term, hs, as int64) {
		ev := store.NewIRI("http://semweb.local/match/" + id)
		_, err := st.Add(
			store.Triple{S: ev, P: store.NewIRI(schema.RDFType), O: store.NewIRI(schema.SportsEvent)},
			store.Triple{S: ev, P: store.NewIRI(schema.StartDate), O: store.NewLiteral(date, "")},
			store.Triple{S: ev, P: store.NewIRI(schema.HomeTeam), O: home},
			store.Triple{S: ev, P: store.NewIRI(schema.AwayTeam), O: away},
			store.Triple{S: ev, P: store.NewIRI(schema.HomeScore), O: store.NewInt(hs)},
			store.Triple{S: ev, P: store.NewIRI(schema.AwayScore), O: store.NewInt(as)},
		)
		require.NoError(t, err)
	}
	mu := team("Manchester United", 1, 71)
	lfc := team("Liverpool", 2, 71)
	fc := team("Fulham", 3, 40)
	event("a", "2008-11-02", mu, lfc, 2, 0)
	event("b", "2008-12-06", fc, mu, 0, 0)
	event("c", "2009-01-10", mu, fc, 1, 3)

	b := New(st)

	top, err := b.TopScorer()
	require.NoError(t, err)
	assert.Equal(t, "Manchester United (71 buts)", top)

	wins, err := b.ManUnitedHomeWins()
	require.NoError(t, err)
	assert.Equal(t, 1, wins)

	ranking, err := b.AwayWinsRanking()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"1. Fulham - 1 victoires",
		"2. Liverpool - 0 victoires",
		"3. Manchester United - 0 victoires",
	}, ranking)

	nov, err := b.November2008()
	require.NoError(t, err)
	assert.Equal(t, []string{"02/11/2008 | Manchester United | 2 - 0 | Liverpool"}, nov)

	h2h, err := b.FirstVsThird()
	require.NoError(t, err)
	lines := strings.Split(h2h, "\n")
	assert.Equal(t, []string{
		"06/12/2008 | Fulham | 0 - 0 | Manchester United | Match nul",
		"10/01/2009 | Manchester United | 1 - 3 | Fulham | Défaite du premier",
	}, lines)
}
