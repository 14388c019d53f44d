package season

import "sort"

// Points awarded per result.
const (
	WinPoints  = 3
	DrawPoints = 1
)

// Standing is one row of the league table.
type Standing struct {
	Position     int
	Team         string
	Played       int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	Points       int
}

// GoalDiff is goals scored minus goals conceded.
func (s Standing) GoalDiff() int { return s.GoalsFor - s.GoalsAgainst }

// Standings builds the league table from played fixtures, ranked by points,
// then goal difference, then goals scored, then team name.
func Standings(fs []Fixture) []Standing {
	rows := make(map[string]*Standing)
	row := func(team string) *Standing {
		s, ok := rows[team]
		if !ok {
			s = &Standing{Team: team}
			rows[team] = s
		}
		return s
	}

	for _, f := range fs {
		h, a := row(f.Home), row(f.Away)
		h.Played++
		a.Played++
		h.GoalsFor += f.HomeGoals
		h.GoalsAgainst += f.AwayGoals
		a.GoalsFor += f.AwayGoals
		a.GoalsAgainst += f.HomeGoals

		switch {
		case f.HomeGoals > f.AwayGoals:
			h.Won++
			a.Lost++
			h.Points += WinPoints
		case f.HomeGoals < f.AwayGoals:
			a.Won++
			h.Lost++
			a.Points += WinPoints
		default:
			h.Drawn++
			a.Drawn++
			h.Points += DrawPoints
			a.Points += DrawPoints
		}
	}

	table := make([]Standing, 0, len(rows))
	for _, s := range rows {
		table = append(table, *s)
	}
	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDiff() != b.GoalDiff() {
			return a.GoalDiff() > b.GoalDiff()
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.Team < b.Team
	})
	for i := range table {
		table[i].Position = i + 1
	}
	return table
}

// BestAttack returns the row with the most goals scored. Ties go to the
// higher placed team. ok is false for an empty table.
func BestAttack(table []Standing) (best Standing, ok bool) {
	for i, s := range table {
		if i == 0 || s.GoalsFor > best.GoalsFor {
			best = s
		}
	}
	return best, len(table) > 0
}

// Teams returns team names in table order.
func Teams(table []Standing) []string {
	out := make([]string, len(table))
	for i, s := range table {
		out[i] = s.Team
	}
	return out
}

// AwayWins counts wins away from home per team. Every team that appears in
// fs has an entry, even with zero wins.
func AwayWins(fs []Fixture) map[string]int {
	out := make(map[string]int)
	for _, f := range fs {
		if _, ok := out[f.Home]; !ok {
			out[f.Home] = 0
		}
		if f.AwayGoals > f.HomeGoals {
			out[f.Away]++
		} else if _, ok := out[f.Away]; !ok {
			out[f.Away] = 0
		}
	}
	return out
}

// AwayGoals sums goals scored away from home per team.
func AwayGoals(fs []Fixture) map[string]int {
	out := make(map[string]int)
	for _, f := range fs {
		out[f.Away] += f.AwayGoals
	}
	return out
}

// HomeWins counts the home wins of team.
func HomeWins(fs []Fixture, team string) int {
	n := 0
	for _, f := range fs {
		if f.Home == team && f.HomeGoals > f.AwayGoals {
			n++
		}
	}
	return n
}
