// Package ical renders season fixtures as an RFC 5545 iCalendar feed, one
// all-day event per match.
package ical

import (
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/jredh-dev/semweb/services/answers/internal/season"
)

// namespace seeds the name-based event UIDs, so a fixture keeps its UID
// across exports.
var namespace = uuid.MustParse("6f1c1e0a-2b0e-4c55-9d0e-5e3b8f0a7c21")

// Options controls the feed.
type Options struct {
	// Name is the calendar name. Empty means "Premier League".
	Name string
	// Team keeps only the fixtures it played in.
	Team string
	// Stamp is written as DTSTAMP. Zero means the date of the last fixture.
	Stamp time.Time
}

// Write renders the fixtures of fs selected by opts and returns the number
// of events written.
func Write(w io.Writer, fs []season.Fixture, opts Options) (int, error) {
	var selected []season.Fixture
	for _, f := range fs {
		if opts.Team == "" || f.Involves(opts.Team) {
			selected = append(selected, f)
		}
	}
	season.SortFixtures(selected)

	name := opts.Name
	if name == "" {
		name = "Premier League"
	}
	if opts.Team != "" {
		name += " - " + opts.Team
	}
	stamp := opts.Stamp
	if stamp.IsZero() && len(selected) > 0 {
		stamp = selected[len(selected)-1].Date
	}

	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//semweb//season//FR\r\n")
	b.WriteString("METHOD:PUBLISH\r\n")
	b.WriteString("CALSCALE:GREGORIAN\r\n")
	writeProp(&b, "NAME", escapeText(name))
	writeProp(&b, "X-WR-CALNAME", escapeText(name))

	for _, f := range selected {
		writeEvent(&b, f, stamp)
	}
	b.WriteString("END:VCALENDAR\r\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return 0, errors.Wrap(err, "write calendar")
	}
	return len(selected), nil
}

// UID is the stable identifier of a fixture's event.
func UID(f season.Fixture) string {
	key := f.Date.Format(time.DateOnly) + "|" + f.Home + "|" + f.Away
	return uuid.NewSHA1(namespace, []byte(key)).String() + "@semweb"
}

func writeEvent(b *strings.Builder, f season.Fixture, stamp time.Time) {
	b.WriteString("BEGIN:VEVENT\r\n")
	writeProp(b, "UID", UID(f))
	writeProp(b, "DTSTAMP", stamp.UTC().Format("20060102T150405Z"))
	writeProp(b, "DTSTART;VALUE=DATE", f.Date.Format("20060102"))
	writeProp(b, "DTEND;VALUE=DATE", f.Date.AddDate(0, 0, 1).Format("20060102"))
	writeProp(b, "SUMMARY", escapeText(f.Home+" "+f.Score()+" "+f.Away))
	writeProp(b, "DESCRIPTION", escapeText(outcome(f)))
	writeProp(b, "STATUS", "CONFIRMED")
	writeProp(b, "CATEGORIES", "Premier League")
	b.WriteString("END:VEVENT\r\n")
}

func outcome(f season.Fixture) string {
	switch {
	case f.HomeGoals > f.AwayGoals:
		return "Victoire de " + f.Home
	case f.AwayGoals > f.HomeGoals:
		return "Victoire de " + f.Away
	default:
		return "Match nul"
	}
}

// writeProp folds content lines at 75 octets without splitting a UTF-8
// sequence.
func writeProp(b *strings.Builder, name, value string) {
	line := name + ":" + value
	limit := 75
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// Continuation lines start with a space.
		limit = 74
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

// escapeText escapes TEXT values per RFC 5545 section 3.3.11.
func escapeText(s string) string {
	return strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`).Replace(s)
}
