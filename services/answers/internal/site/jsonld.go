package site

import (
	"encoding/json"
	"html/template"

	"github.com/cockroachdb/errors"

	"github.com/jredh-dev/semweb/services/answers/internal/graph/schema"
	"github.com/jredh-dev/semweb/services/answers/internal/season"
)

const jsonLDContext = "https://schema.org"

type ref struct {
	ID string `json:"@id"`
}

type teamNode struct {
	ID            string `json:"@id"`
	Type          string `json:"@type"`
	Name          string `json:"name"`
	Position      int    `json:"position"`
	Points        int    `json:"points"`
	GoalsScored   int    `json:"goalsScored"`
	GoalsConceded int    `json:"goalsConceded"`
}

type eventNode struct {
	ID        string `json:"@id"`
	Type      string `json:"@type"`
	StartDate string `json:"startDate"`
	HomeTeam  ref    `json:"homeTeam"`
	AwayTeam  ref    `json:"awayTeam"`
	HomeScore int    `json:"homeScore"`
	AwayScore int    `json:"awayScore"`
}

type document struct {
	Context string `json:"@context"`
	Graph   []any  `json:"@graph"`
}

func team(s season.Standing) teamNode {
	return teamNode{
		ID:            schema.TeamIRI(s.Team),
		Type:          "SportsTeam",
		Name:          s.Team,
		Position:      s.Position,
		Points:        s.Points,
		GoalsScored:   s.GoalsFor,
		GoalsConceded: s.GoalsAgainst,
	}
}

func event(f fixtureView) eventNode {
	return eventNode{
		ID:        f.IRI,
		Type:      "SportsEvent",
		StartDate: f.ISODate,
		HomeTeam:  ref{ID: schema.TeamIRI(f.Home)},
		AwayTeam:  ref{ID: schema.TeamIRI(f.Away)},
		HomeScore: f.HomeGoals,
		AwayScore: f.AwayGoals,
	}
}

// jsonLD returns the structured data embedded in an enriched page, or an
// empty string for pages that carry none.
func (g *Generator) jsonLD(tmpl, teamName string) (template.JS, error) {
	doc := document{Context: jsonLDContext}

	switch tmpl {
	case "classement.html":
		for _, s := range g.season.Table() {
			doc.Graph = append(doc.Graph, team(s))
		}
	case "calendrier.html":
		for _, f := range g.fixtures {
			doc.Graph = append(doc.Graph, event(f))
		}
	case "equipe.html":
		for _, s := range g.season.Table() {
			if s.Team == teamName {
				doc.Graph = append(doc.Graph, team(s))
			}
		}
	default:
		return "", nil
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, "encode json-ld")
	}
	return template.JS(b), nil
}
