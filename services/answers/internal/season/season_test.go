package season_test

import (
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jredh-dev/semweb/services/answers/internal/season"
	"github.com/jredh-dev/semweb/services/answers/internal/season/sample"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var small = []season.Fixture{
	{Date: day(2008, 11, 1), Home: "Arsenal", Away: "Chelsea", HomeGoals: 2, AwayGoals: 1},
	{Date: day(2008, 10, 4), Home: "Chelsea", Away: "Fulham", HomeGoals: 0, AwayGoals: 0},
	{Date: day(2008, 11, 8), Home: "Fulham", Away: "Arsenal", HomeGoals: 1, AwayGoals: 3},
	{Date: day(2008, 12, 6), Home: "Chelsea", Away: "Arsenal", HomeGoals: 1, AwayGoals: 1},
}

func TestFixture_Line(t *testing.T) {
	f := season.Fixture{Date: day(2008, 11, 1), Home: "Arsenal", Away: "Chelsea", HomeGoals: 2, AwayGoals: 1}
	assert.Equal(t, "01/11/2008 | Arsenal | 2 - 1 | Chelsea", f.Line())
	assert.Equal(t, "2 - 1", f.Score())
	assert.True(t, f.Involves("Chelsea"))
	assert.False(t, f.Involves("Fulham"))
}

func TestParseScore(t *testing.T) {
	h, a, err := season.ParseScore("2 - 1")
	require.NoError(t, err)
	assert.Equal(t, [2]int{2, 1}, [2]int{h, a})

	h, a, err = season.ParseScore("10-0")
	require.NoError(t, err)
	assert.Equal(t, [2]int{10, 0}, [2]int{h, a})

	for _, bad := range []string{"", "2 1", "x - 1", "1 - y"} {
		_, _, err := season.ParseScore(bad)
		assert.Error(t, err, bad)
	}
}

func TestStandings(t *testing.T) {
	table := season.Standings(small)
	require.Len(t, table, 3)

	assert.Equal(t, "Arsenal", table[0].Team)
	assert.Equal(t, 1, table[0].Position)
	assert.Equal(t, 7, table[0].Points)
	assert.Equal(t, 6, table[0].GoalsFor)
	assert.Equal(t, 3, table[0].GoalDiff())

	// Chelsea two draws and a loss, Fulham one draw and a loss.
	assert.Equal(t, []string{"Arsenal", "Chelsea", "Fulham"}, season.Teams(table))
	assert.Equal(t, 3, table[1].Played)
	assert.Equal(t, 2, table[1].Drawn)
	assert.Equal(t, 1, table[1].Lost)
}

func TestStandings_TieBreakOnName(t *testing.T) {
	fs := []season.Fixture{
		{Date: day(2008, 8, 16), Home: "Wigan Athletic", Away: "Hull City", HomeGoals: 1, AwayGoals: 1},
	}
	table := season.Standings(fs)
	assert.Equal(t, []string{"Hull City", "Wigan Athletic"}, season.Teams(table))
}

func TestBestAttack(t *testing.T) {
	_, ok := season.BestAttack(nil)
	assert.False(t, ok)

	table := []season.Standing{
		{Team: "A", GoalsFor: 50},
		{Team: "B", GoalsFor: 60},
		{Team: "C", GoalsFor: 60},
	}
	best, ok := season.BestAttack(table)
	require.True(t, ok)
	assert.Equal(t, "B", best.Team)
}

func TestRankAwayWins(t *testing.T) {
	got := season.RankAwayWins(map[string]int{"Chelsea": 3, "Arsenal": 3, "Fulham": 5, "Everton": 0})
	assert.Equal(t, []string{
		"1. Fulham - 5 victoires",
		"2. Arsenal - 3 victoires",
		"3. Chelsea - 3 victoires",
		"4. Everton - 0 victoires",
	}, got)
}

func TestAwayWins_IncludesWinlessTeams(t *testing.T) {
	got := season.AwayWins(small)
	assert.Equal(t, map[string]int{"Arsenal": 1, "Chelsea": 0, "Fulham": 0}, got)
}

func TestAwayGoalsReport(t *testing.T) {
	got := season.AwayGoalsReport([]string{"Arsenal", "Chelsea"}, map[string]int{"Arsenal": 4, "Chelsea": 1})
	assert.Equal(t, strings.Join([]string{
		"Buts marqués à l'extérieur par les équipes du Top 6 :",
		"Moyenne (sur 2 équipes) : 2.50 buts",
		"Arsenal : 4 buts",
		"Chelsea : 1 buts",
	}, "\n"), got)

	assert.Contains(t, season.AwayGoalsReport(nil, nil), "Moyenne (sur 0 équipes) : 0.00 buts")
}

func TestHeadToHeadReport(t *testing.T) {
	fs := make([]season.Fixture, len(small))
	copy(fs, small)
	season.SortFixtures(fs)

	got := season.HeadToHeadReport("Arsenal", "Chelsea", fs)
	assert.Equal(t, strings.Join([]string{
		"01/11/2008 | Arsenal | 2 - 1 | Chelsea | Victoire du premier",
		"06/12/2008 | Chelsea | 1 - 1 | Arsenal | Match nul",
	}, "\n"), got)

	got = season.HeadToHeadReport("Chelsea", "Arsenal", fs)
	assert.Contains(t, got, "Arsenal | 2 - 1 | Chelsea | Défaite du premier")

	assert.Equal(t, "Aucune confrontation trouvée entre Arsenal et Everton.",
		season.HeadToHeadReport("Arsenal", "Everton", fs))
}

func TestReadCSV(t *testing.T) {
	in := "date,home,away,home_goals,away_goals\n" +
		"2008-11-08,Fulham,Arsenal,1,3\n" +
		"2008-11-01,Arsenal,Chelsea,2,1\n"
	fs, err := season.ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, fs, 2)
	assert.Equal(t, "01/11/2008 | Arsenal | 2 - 1 | Chelsea", fs[0].Line())

	tests := map[string]string{
		"bad header": "when,home,away,home_goals,away_goals\n",
		"bad date":   "date,home,away,home_goals,away_goals\n01/11/2008,A,B,1,0\n",
		"bad goals":  "date,home,away,home_goals,away_goals\n2008-11-01,A,B,x,0\n",
		"same team":  "date,home,away,home_goals,away_goals\n2008-11-01,A,A,1,0\n",
		"short row":  "date,home,away,home_goals,away_goals\n2008-11-01,A,B,1\n",
	}
	for name, data := range tests {
		_, err := season.ReadCSV(strings.NewReader(data))
		assert.Error(t, err, name)
	}
}

func TestInMonth(t *testing.T) {
	got := season.InMonth(small, 2008, time.November)
	assert.Len(t, got, 2)
	assert.Empty(t, season.InMonth(small, 2009, time.November))
}

func TestMemory_Sample(t *testing.T) {
	m := season.NewMemory(sample.Fixtures())

	leader, err := m.Leader()
	require.NoError(t, err)
	assert.Equal(t, "Chelsea", leader)

	played, err := m.MatchesPlayed()
	require.NoError(t, err)
	assert.Equal(t, 380, played)

	goals, err := m.TotalGoals()
	require.NoError(t, err)
	assert.Equal(t, 1232, goals)

	top, err := m.TopScorer()
	require.NoError(t, err)
	assert.Equal(t, "Liverpool (108 buts)", top)

	over, err := m.TeamsOver70Goals()
	require.NoError(t, err)
	assert.Equal(t, []string{"Chelsea", "Liverpool", "Arsenal", "Manchester United", "Manchester City"}, over)

	nov, err := m.November2008()
	require.NoError(t, err)
	require.Len(t, nov, 50)
	assert.Equal(t, "01/11/2008 | West Ham United | 3 - 3 | Manchester United", nov[0])
	assert.Equal(t, "29/11/2008 | Portsmouth | 1 - 2 | Blackburn Rovers", nov[49])

	wins, err := m.ManUnitedHomeWins()
	require.NoError(t, err)
	assert.Equal(t, 14, wins)

	ranking, err := m.AwayWinsRanking()
	require.NoError(t, err)
	require.Len(t, ranking, 20)
	assert.Equal(t, []string{
		"1. Arsenal - 12 victoires",
		"2. Chelsea - 12 victoires",
		"3. Liverpool - 12 victoires",
		"4. Manchester City - 10 victoires",
	}, ranking[:4])
	assert.Equal(t, "20. West Ham United - 1 victoires", ranking[19])

	report, err := m.Top6AwayGoals()
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"Buts marqués à l'extérieur par les équipes du Top 6 :",
		"Moyenne (sur 6 équipes) : 38.50 buts",
		"Chelsea : 44 buts",
		"Liverpool : 44 buts",
		"Arsenal : 53 buts",
		"Manchester United : 32 buts",
		"Manchester City : 37 buts",
		"Fulham : 21 buts",
	}, "\n"), report)

	h2h, err := m.FirstVsThird()
	require.NoError(t, err)
	assert.Equal(t, "04/10/2008 | Chelsea | 2 - 3 | Arsenal | Défaite du premier\n"+
		"14/02/2009 | Arsenal | 2 - 1 | Chelsea | Défaite du premier", h2h)
}

func TestMemory_Empty(t *testing.T) {
	m := season.NewMemory(nil)
	_, err := m.Leader()
	assert.ErrorIs(t, err, season.ErrNoData)
	_, err = m.TeamsOver70Goals()
	assert.ErrorIs(t, err, season.ErrNoData)
	_, err = m.FirstVsThird()
	assert.ErrorIs(t, err, season.ErrNoData)

	nov, err := m.November2008()
	require.NoError(t, err)
	assert.NotNil(t, nov)
	assert.Empty(t, nov)
}

type failing struct{ *season.Memory }

func (failing) TotalGoals() (int, error) { return 0, errors.New("disk on fire") }

func TestOperations(t *testing.T) {
	ops := season.Operations(season.NewMemory(small))
	require.Len(t, ops, 10)

	v, err := ops["Q1"]()
	require.NoError(t, err)
	assert.Equal(t, "Arsenal", v)

	// Nobody scored more than 70: no data becomes a null answer.
	v, err = ops["Q5"]()
	require.NoError(t, err)
	assert.Nil(t, v)

	// Manchester United is not in this table either.
	v, err = ops["Q7"]()
	require.NoError(t, err)
	assert.Nil(t, v)

	ops = season.Operations(failing{season.NewMemory(small)})
	_, err = ops["Q3"]()
	assert.EqualError(t, err, "disk on fire")
}
