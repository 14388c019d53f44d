// Package rdfa answers the canonical questions from the enriched pages by
// reading their RDFa annotations: typeof="SportsTeam" rows of the league
// table, typeof="SportsEvent" rows of the calendar, and the property
// attributes on club pages.
package rdfa

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"github.com/jredh-dev/semweb/internal/logger"
	"github.com/jredh-dev/semweb/services/answers/internal/season"
	"github.com/jredh-dev/semweb/services/answers/internal/site"
)

var firstInt = regexp.MustCompile(`\d+`)

// Team is a SportsTeam resource read from the league table.
type Team struct {
	Name        string
	Position    int
	GoalsScored int
}

type clubPage struct {
	name  string
	goals int
	ok    bool
}

// Backend holds the resources extracted from the enriched pages.
type Backend struct {
	teams    []Team
	fixtures []season.Fixture
	stats    *goquery.Document
	clubs    []clubPage
}

// Open reads every enriched page in dir.
func Open(dir string) (*Backend, error) {
	b := &Backend{}

	table, err := load(dir, site.PageName(site.RDFa, site.Classement))
	if err != nil {
		return nil, err
	}
	b.teams = readTeams(table)

	cal, err := load(dir, site.PageName(site.RDFa, site.Calendrier))
	if err != nil {
		return nil, err
	}
	if b.fixtures, err = readEvents(cal); err != nil {
		return nil, err
	}

	if b.stats, err = load(dir, site.PageName(site.RDFa, site.Statistiques)); err != nil {
		return nil, err
	}

	paths, err := filepath.Glob(filepath.Join(dir, "equipe_*"+site.Enriched+".html"))
	if err != nil {
		return nil, errors.Wrap(err, "list team pages")
	}
	sort.Strings(paths)
	for _, p := range paths {
		doc, err := load(dir, filepath.Base(p))
		if err != nil {
			return nil, err
		}
		b.clubs = append(b.clubs, readClub(doc))
	}

	logger.Named("rdfa").Infow("pages loaded", "dir", dir,
		"teams", len(b.teams), "events", len(b.fixtures), "clubs", len(b.clubs))
	return b, nil
}

func load(dir, name string) (*goquery.Document, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", name)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", name)
	}
	return doc, nil
}

// prop returns the value of the first property element under s: its
// content attribute when present, its text otherwise.
func prop(s *goquery.Selection, name string) string {
	el := s.Find(`[property="` + name + `"]`).First()
	if v, ok := el.Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(el.Text())
}

func propInt(s *goquery.Selection, name string) (int, bool) {
	m := firstInt.FindString(prop(s, name))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	return n, err == nil
}

func readTeams(doc *goquery.Document) []Team {
	var out []Team
	doc.Find(`[typeof="SportsTeam"]`).Each(func(_ int, s *goquery.Selection) {
		t := Team{Name: prop(s, "name")}
		if t.Name == "" {
			return
		}
		t.Position, _ = propInt(s, "position")
		t.GoalsScored, _ = propInt(s, "goalsScored")
		out = append(out, t)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func readEvents(doc *goquery.Document) ([]season.Fixture, error) {
	var (
		out  []season.Fixture
		rerr error
	)
	doc.Find(`[typeof="SportsEvent"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		date, err := time.Parse(time.DateOnly, prop(s, "startDate"))
		if err != nil {
			rerr = errors.Wrapf(err, "event %d: startDate", i)
			return false
		}
		hs, ok1 := propInt(s, "homeScore")
		as, ok2 := propInt(s, "awayScore")
		if !ok1 || !ok2 {
			rerr = errors.Newf("event %d: missing score", i)
			return false
		}
		out = append(out, season.Fixture{
			Date:      date,
			Home:      prop(s, "homeTeam"),
			Away:      prop(s, "awayTeam"),
			HomeGoals: hs,
			AwayGoals: as,
		})
		return true
	})
	return out, rerr
}

func readClub(doc *goquery.Document) clubPage {
	root := doc.Selection
	c := clubPage{name: prop(root, "name")}
	c.goals, c.ok = propInt(root, "goalsScored")
	c.ok = c.ok && c.name != ""
	return c
}

func (b *Backend) Name() string { return "RDFa" }

// Teams returns the SportsTeam resources in table order.
func (b *Backend) Teams() []Team { return b.teams }

func (b *Backend) team(position int) (Team, bool) {
	for _, t := range b.teams {
		if t.Position == position {
			return t, true
		}
	}
	return Team{}, false
}

// statByLabel reads the number following a label in the first stat box.
// These figures carry no RDFa markup.
func (b *Backend) statByLabel(label string) (int, error) {
	var (
		n     int
		found bool
	)
	b.stats.Find("div.stat-box").First().Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := p.Text()
		if !strings.Contains(text, label) {
			return true
		}
		if m := firstInt.FindString(text); m != "" {
			n, _ = strconv.Atoi(m)
			found = true
		}
		return false
	})
	if !found {
		return 0, season.ErrNoData
	}
	return n, nil
}

func (b *Backend) Leader() (string, error) {
	t, ok := b.team(1)
	if !ok {
		return "", season.ErrNoData
	}
	return t.Name, nil
}

func (b *Backend) MatchesPlayed() (int, error) {
	return b.statByLabel("Nombre total de matchs")
}

func (b *Backend) TotalGoals() (int, error) {
	return b.statByLabel("Nombre total de buts")
}

// TopScorer compares goalsScored across club pages, visiting them in
// league order so that ties go to the higher placed club.
func (b *Backend) TopScorer() (string, error) {
	rank := make(map[string]int, len(b.teams))
	for _, t := range b.teams {
		rank[t.Name] = t.Position
	}
	clubs := make([]clubPage, 0, len(b.clubs))
	for _, c := range b.clubs {
		if c.ok {
			clubs = append(clubs, c)
		}
	}
	sort.SliceStable(clubs, func(i, j int) bool { return rank[clubs[i].name] < rank[clubs[j].name] })

	best := -1
	var name string
	for _, c := range clubs {
		if c.goals > best {
			best, name = c.goals, c.name
		}
	}
	if best < 0 {
		return "", season.ErrNoData
	}
	return season.TopScorerLine(name, best), nil
}

func (b *Backend) TeamsOver70Goals() ([]string, error) {
	var out []string
	for _, t := range b.teams {
		if t.GoalsScored > season.GoalThreshold {
			out = append(out, t.Name)
		}
	}
	if len(out) == 0 {
		return nil, season.ErrNoData
	}
	return out, nil
}

func (b *Backend) November2008() ([]string, error) {
	return season.Lines(season.InMonth(b.fixtures, season.ReportYear, season.ReportMonth)), nil
}

func (b *Backend) ManUnitedHomeWins() (int, error) {
	if _, ok := b.byName(season.HomeTeam); !ok {
		return 0, season.ErrNoData
	}
	return season.HomeWins(b.fixtures, season.HomeTeam), nil
}

func (b *Backend) AwayWinsRanking() ([]string, error) {
	if len(b.teams) == 0 {
		return nil, season.ErrNoData
	}
	wins := season.AwayWins(b.fixtures)
	for _, t := range b.teams {
		if _, ok := wins[t.Name]; !ok {
			wins[t.Name] = 0
		}
	}
	return season.RankAwayWins(wins), nil
}

func (b *Backend) Top6AwayGoals() (string, error) {
	if len(b.teams) == 0 {
		return "", season.ErrNoData
	}
	var top []string
	for _, t := range b.teams {
		if len(top) == season.TopN {
			break
		}
		top = append(top, t.Name)
	}
	return season.AwayGoalsReport(top, season.AwayGoals(b.fixtures)), nil
}

func (b *Backend) FirstVsThird() (string, error) {
	first, ok1 := b.team(1)
	third, ok3 := b.team(3)
	if !ok1 || !ok3 {
		return "", season.ErrNoData
	}
	return season.HeadToHeadReport(first.Name, third.Name, b.fixtures), nil
}

func (b *Backend) byName(name string) (Team, bool) {
	for _, t := range b.teams {
		if t.Name == name {
			return t, true
		}
	}
	return Team{}, false
}
