// Package web1 answers the canonical questions by scraping the plain HTML
// site: the league table, the calendar, the statistics page and one page
// per club. Pages are parsed once when the backend is opened.
package web1

import (
	"fmt"
	"os"
	"path/filepath"
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

// Columns of the league table.
const (
	colTeam  = 1
	colGoals = 7
)

type teamPage struct {
	name    string
	results []string
}

// Backend holds the parsed pages. It is read-only after Open.
type Backend struct {
	dir        string
	table      *goquery.Document
	stats      *goquery.Document
	calendar   *goquery.Document
	teams      []teamPage
	teamByName map[string]int
}

// Open parses every page in dir.
func Open(dir string) (*Backend, error) {
	b := &Backend{dir: dir, teamByName: make(map[string]int)}

	var err error
	if b.table, err = load(dir, site.Classement); err != nil {
		return nil, err
	}
	if b.stats, err = load(dir, site.Statistiques); err != nil {
		return nil, err
	}
	if b.calendar, err = load(dir, site.Calendrier); err != nil {
		return nil, err
	}

	paths, err := filepath.Glob(filepath.Join(dir, "equipe_*.html"))
	if err != nil {
		return nil, errors.Wrap(err, "list team pages")
	}
	sort.Strings(paths)
	for _, p := range paths {
		if strings.HasSuffix(p, site.Enriched+".html") {
			continue
		}
		doc, err := load(dir, filepath.Base(p))
		if err != nil {
			return nil, err
		}
		tp := teamPage{name: strings.TrimSpace(doc.Find("h1").First().Text())}
		if tp.name == "" {
			tp.name = "Inconnu"
		}
		doc.Find("div.match-result").Each(func(_ int, s *goquery.Selection) {
			tp.results = append(tp.results, s.Text())
		})
		b.teamByName[tp.name] = len(b.teams)
		b.teams = append(b.teams, tp)
	}

	logger.Named("web1").Infow("pages loaded", "dir", dir, "teams", len(b.teams))
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

func (b *Backend) Name() string { return "Web 1.0" }

// rows returns the data rows of the first table of doc, header skipped.
func rows(doc *goquery.Document) []*goquery.Selection {
	var out []*goquery.Selection
	doc.Find("table").First().Find("tr").Each(func(_ int, s *goquery.Selection) {
		if s.Find("td").Length() > 0 {
			out = append(out, s)
		}
	})
	return out
}

func cell(row *goquery.Selection, i int) string {
	return strings.TrimSpace(row.Find("td").Eq(i).Text())
}

// standings returns the team names in table order.
func (b *Backend) standings() []string {
	var out []string
	for _, r := range rows(b.table) {
		if r.Find("td").Length() > colTeam {
			out = append(out, cell(r, colTeam))
		}
	}
	return out
}

// fixtures reads the calendar. Rows that do not parse are skipped.
func (b *Backend) fixtures() []season.Fixture {
	var out []season.Fixture
	for _, r := range rows(b.calendar) {
		if r.Find("td").Length() < 4 {
			continue
		}
		date, err := time.Parse(season.DateLayout, cell(r, 0))
		if err != nil {
			continue
		}
		score := strings.TrimSpace(r.Find(".score").First().Text())
		if score == "" {
			score = cell(r, 2)
		}
		hg, ag, err := season.ParseScore(score)
		if err != nil {
			continue
		}
		out = append(out, season.Fixture{Date: date, Home: cell(r, 1), Away: cell(r, 3), HomeGoals: hg, AwayGoals: ag})
	}
	return out
}

// statValue returns the text of the n-th paragraph of the box-th stat box
// with its <strong> label removed.
func (b *Backend) statValue(box, n int) (string, bool) {
	p := b.stats.Find("div.stat-box").Eq(box).Find("p").Eq(n)
	if p.Length() == 0 {
		return "", false
	}
	label := strings.TrimSpace(p.Find("strong").Text())
	v := strings.TrimSpace(strings.Replace(strings.TrimSpace(p.Text()), label, "", 1))
	v = strings.TrimSpace(strings.Trim(v, ":"))
	return v, v != ""
}

func (b *Backend) statInt(box, n int) (int, error) {
	v, ok := b.statValue(box, n)
	if !ok {
		return 0, season.ErrNoData
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "statistics box %d", box)
	}
	return i, nil
}

func (b *Backend) Leader() (string, error) {
	teams := b.standings()
	if len(teams) == 0 || teams[0] == "" {
		return "", season.ErrNoData
	}
	return teams[0], nil
}

func (b *Backend) MatchesPlayed() (int, error) { return b.statInt(0, 0) }

func (b *Backend) TotalGoals() (int, error) { return b.statInt(0, 1) }

func (b *Backend) TopScorer() (string, error) {
	team, ok := b.statValue(1, 0)
	if !ok {
		return "", season.ErrNoData
	}
	goals, err := b.statInt(1, 1)
	if err != nil {
		return "", err
	}
	return season.TopScorerLine(team, goals), nil
}

func (b *Backend) TeamsOver70Goals() ([]string, error) {
	var out []string
	for _, r := range rows(b.table) {
		if r.Find("td").Length() <= colGoals {
			continue
		}
		goals, err := strconv.Atoi(cell(r, colGoals))
		if err != nil {
			continue
		}
		if goals > season.GoalThreshold {
			out = append(out, cell(r, colTeam))
		}
	}
	if len(out) == 0 {
		return nil, season.ErrNoData
	}
	return out, nil
}

func (b *Backend) November2008() ([]string, error) {
	month := fmt.Sprintf("/%02d/%d", int(season.ReportMonth), season.ReportYear)
	out := []string{}
	for _, f := range b.fixtures() {
		if strings.Contains(f.Date.Format(season.DateLayout), month) {
			out = append(out, f.Line())
		}
	}
	return out, nil
}

func (b *Backend) ManUnitedHomeWins() (int, error) {
	i, ok := b.teamByName[season.HomeTeam]
	if !ok {
		return 0, season.ErrNoData
	}
	n := 0
	for _, r := range b.teams[i].results {
		if strings.Contains(r, "Domicile") && strings.Contains(r, "Victoire") {
			n++
		}
	}
	return n, nil
}

func (b *Backend) AwayWinsRanking() ([]string, error) {
	if len(b.teams) == 0 {
		return nil, season.ErrNoData
	}
	wins := make(map[string]int, len(b.teams))
	for _, t := range b.teams {
		wins[t.name] = 0
		for _, r := range t.results {
			if strings.Contains(r, "Extérieur") && strings.Contains(r, "Victoire") {
				wins[t.name]++
			}
		}
	}
	return season.RankAwayWins(wins), nil
}

func (b *Backend) Top6AwayGoals() (string, error) {
	top := b.standings()
	if len(top) == 0 {
		return "", season.ErrNoData
	}
	if len(top) > season.TopN {
		top = top[:season.TopN]
	}
	return season.AwayGoalsReport(top, season.AwayGoals(b.fixtures())), nil
}

func (b *Backend) FirstVsThird() (string, error) {
	teams := b.standings()
	if len(teams) < 3 {
		return "", season.ErrNoData
	}
	return season.HeadToHeadReport(teams[0], teams[2], b.fixtures()), nil
}
