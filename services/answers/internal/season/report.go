package season

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Fixed parameters of the canonical questions.
const (
	GoalThreshold = 70
	TopN          = 6
	HomeTeam      = "Manchester United"
	ReportYear    = 2008
	ReportMonth   = time.November
)

// Head-to-head result labels, from the point of view of the leader.
const (
	ResultWin  = "Victoire du premier"
	ResultLoss = "Défaite du premier"
	ResultDraw = "Match nul"
)

// TopScorerLine renders "Liverpool (108 buts)".
func TopScorerLine(team string, goals int) string {
	return fmt.Sprintf("%s (%d buts)", team, goals)
}

// RankAwayWins orders teams by away wins, most first, then by name, and
// renders "1. Arsenal - 12 victoires" lines.
func RankAwayWins(wins map[string]int) []string {
	teams := make([]string, 0, len(wins))
	for t := range wins {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool {
		if wins[teams[i]] != wins[teams[j]] {
			return wins[teams[i]] > wins[teams[j]]
		}
		return teams[i] < teams[j]
	})

	out := make([]string, len(teams))
	for i, t := range teams {
		out[i] = fmt.Sprintf("%d. %s - %d victoires", i+1, t, wins[t])
	}
	return out
}

// AwayGoalsReport summarizes away goals for the given teams, in order.
// Teams missing from goals count as zero.
func AwayGoalsReport(top []string, goals map[string]int) string {
	total := 0
	for _, t := range top {
		total += goals[t]
	}
	avg := 0.0
	if len(top) > 0 {
		avg = float64(total) / float64(len(top))
	}

	lines := []string{
		"Buts marqués à l'extérieur par les équipes du Top 6 :",
		fmt.Sprintf("Moyenne (sur %d équipes) : %.2f buts", len(top), avg),
	}
	for _, t := range top {
		lines = append(lines, fmt.Sprintf("%s : %d buts", t, goals[t]))
	}
	return strings.Join(lines, "\n")
}

// HeadToHeadReport lists every fixture between first and other with the
// outcome for first, one line per match in the order given.
func HeadToHeadReport(first, other string, fs []Fixture) string {
	var lines []string
	for _, f := range fs {
		if !f.Involves(first) || !f.Involves(other) {
			continue
		}
		own, opp := f.HomeGoals, f.AwayGoals
		if f.Away == first {
			own, opp = opp, own
		}
		result := ResultDraw
		switch {
		case own > opp:
			result = ResultWin
		case own < opp:
			result = ResultLoss
		}
		lines = append(lines, f.Line()+" | "+result)
	}
	if len(lines) == 0 {
		return fmt.Sprintf("Aucune confrontation trouvée entre %s et %s.", first, other)
	}
	return strings.Join(lines, "\n")
}
