// Package schema names the schema.org terms and resource IRIs used by the
// generated pages and the knowledge graph.
package schema

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jredh-dev/semweb/services/answers/internal/normalize"
)

const (
	Vocab = "http://schema.org/"
	Base  = "http://semweb.local/"

	RDFType    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	XSDInteger = "http://www.w3.org/2001/XMLSchema#integer"
	XSDString  = "http://www.w3.org/2001/XMLSchema#string"
)

// Classes.
const (
	SportsTeam  = Vocab + "SportsTeam"
	SportsEvent = Vocab + "SportsEvent"
)

// Properties.
const (
	Name         = Vocab + "name"
	Position     = Vocab + "position"
	GoalsScored  = Vocab + "goalsScored"
	GoalsAgainst = Vocab + "goalsConceded"
	Points       = Vocab + "points"
	StartDate    = Vocab + "startDate"
	HomeTeam     = Vocab + "homeTeam"
	AwayTeam     = Vocab + "awayTeam"
	HomeScore    = Vocab + "homeScore"
	AwayScore    = Vocab + "awayScore"
)

// Slug folds a team name into a path segment: "Manchester United" becomes
// "manchester-united".
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range normalize.String(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// TeamIRI identifies a club.
func TeamIRI(name string) string {
	return Base + "team/" + Slug(name)
}

// MatchIRI identifies the n-th fixture (from zero) played on date. IRIs sort
// in calendar order as long as a day has fewer than a hundred fixtures.
func MatchIRI(date time.Time, n int) string {
	return fmt.Sprintf("%smatch/%s-%02d", Base, date.Format(time.DateOnly), n)
}
