// Package site renders a season as static pages: the plain Web 1.0 site,
// and the enriched site carrying RDFa attributes and JSON-LD blocks that
// the crawler turns into the knowledge graph.
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/jredh-dev/semweb/internal/logger"
	"github.com/jredh-dev/semweb/services/answers/internal/graph/schema"
	"github.com/jredh-dev/semweb/services/answers/internal/season"
)

//go:embed templates
var templateFS embed.FS

// Page names shared by the generator and the backends that read the pages.
const (
	Classement   = "classement.html"
	Calendrier   = "calendrier.html"
	Statistiques = "statistiques.html"
	Index        = "index.html"
	Enriched     = "_enrichi"
)

// Flavor selects which representation to render.
type Flavor string

const (
	Web1 Flavor = "web1"
	RDFa Flavor = "rdfa"
)

// PageName returns the file name of a page in the given flavor.
func PageName(f Flavor, page string) string {
	if f == RDFa && page != Index {
		return strings.TrimSuffix(page, ".html") + Enriched + ".html"
	}
	return page
}

// TeamPage returns the file name of a club page: "equipe_Manchester_United.html".
func TeamPage(f Flavor, team string) string {
	return PageName(f, "equipe_"+strings.ReplaceAll(team, " ", "_")+".html")
}

type links struct {
	Classement, Calendrier, Statistiques string
}

type fixtureView struct {
	IRI       string
	Date      string
	ISODate   string
	Home      string
	Away      string
	HomeGoals int
	AwayGoals int
	Score     string
}

type resultView struct {
	Date, Venue, Opponent, Score, Outcome string
}

type teamView struct {
	Name     string
	Page     string
	Standing season.Standing
	Results  []resultView
}

type statsView struct {
	Matches         int
	Goals           int
	Average         string
	BestAttack      string
	BestAttackGoals int
}

type pageData struct {
	Title    string
	Vocab    string
	JSONLD   template.JS
	Links    links
	Table    []season.Standing
	Fixtures []fixtureView
	Teams    []teamView
	Team     teamView
	Stats    statsView
}

// Generator renders one season.
type Generator struct {
	season   *season.Memory
	fixtures []fixtureView
	stats    statsView
	tmpl     map[Flavor]map[string]*template.Template
}

// New prepares a generator for fs. The fixtures need not be sorted.
func New(fs []season.Fixture) (*Generator, error) {
	m := season.NewMemory(fs)
	if len(m.Fixtures()) == 0 {
		return nil, errors.New("site: no fixtures")
	}

	g := &Generator{season: m, tmpl: make(map[Flavor]map[string]*template.Template)}

	perDay := make(map[string]int)
	for _, f := range m.Fixtures() {
		iso := f.Date.Format(time.DateOnly)
		g.fixtures = append(g.fixtures, fixtureView{
			IRI:       schema.MatchIRI(f.Date, perDay[iso]),
			Date:      f.Date.Format(season.DateLayout),
			ISODate:   iso,
			Home:      f.Home,
			Away:      f.Away,
			HomeGoals: f.HomeGoals,
			AwayGoals: f.AwayGoals,
			Score:     f.Score(),
		})
		perDay[iso]++
	}

	matches, _ := m.MatchesPlayed()
	goals, _ := m.TotalGoals()
	best, _ := season.BestAttack(m.Table())
	g.stats = statsView{
		Matches:         matches,
		Goals:           goals,
		Average:         fmt.Sprintf("%.2f", float64(goals)/float64(matches)),
		BestAttack:      best.Team,
		BestAttackGoals: best.GoalsFor,
	}

	funcs := template.FuncMap{"teamIRI": schema.TeamIRI}
	for _, flavor := range []Flavor{Web1, RDFa} {
		g.tmpl[flavor] = make(map[string]*template.Template)
		for _, page := range []string{"index.html", "classement.html", "calendrier.html", "statistiques.html", "equipe.html"} {
			t, err := template.New(page).Funcs(funcs).ParseFS(templateFS,
				"templates/base.html", "templates/"+string(flavor)+"/"+page)
			if err != nil {
				return nil, errors.Wrapf(err, "parse %s/%s", flavor, page)
			}
			g.tmpl[flavor][page] = t
		}
	}
	return g, nil
}

// Write renders every page of a flavor into dir, creating it if needed.
// It returns the number of pages written.
func (g *Generator) Write(f Flavor, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, errors.Wrap(err, "create output dir")
	}

	base := pageData{
		Links: links{
			Classement:   PageName(f, Classement),
			Calendrier:   PageName(f, Calendrier),
			Statistiques: PageName(f, Statistiques),
		},
	}
	if f == RDFa {
		base.Vocab = schema.Vocab
	}

	teams := g.teams(f)
	pages := []struct {
		tmpl, file string
		data       pageData
	}{
		{"index.html", Index, with(base, func(d *pageData) { d.Title = "Accueil"; d.Teams = teams })},
		{"classement.html", PageName(f, Classement), with(base, func(d *pageData) {
			d.Title = "Classement"
			d.Table = g.season.Table()
		})},
		{"calendrier.html", PageName(f, Calendrier), with(base, func(d *pageData) {
			d.Title = "Calendrier"
			d.Fixtures = g.fixtures
		})},
		{"statistiques.html", PageName(f, Statistiques), with(base, func(d *pageData) {
			d.Title = "Statistiques"
			d.Stats = g.stats
		})},
	}
	for _, t := range teams {
		pages = append(pages, struct {
			tmpl, file string
			data       pageData
		}{"equipe.html", t.Page, with(base, func(d *pageData) { d.Title = t.Name; d.Team = t })})
	}

	if f == RDFa {
		for i := range pages {
			doc, err := g.jsonLD(pages[i].tmpl, pages[i].data.Team.Name)
			if err != nil {
				return 0, err
			}
			pages[i].data.JSONLD = doc
		}
	}

	for _, p := range pages {
		var buf bytes.Buffer
		if err := g.tmpl[f][p.tmpl].ExecuteTemplate(&buf, "base", p.data); err != nil {
			return 0, errors.Wrapf(err, "render %s", p.file)
		}
		if err := os.WriteFile(filepath.Join(dir, p.file), buf.Bytes(), 0o644); err != nil {
			return 0, errors.Wrapf(err, "write %s", p.file)
		}
	}

	logger.Logger.Infow("site written", "flavor", f, "dir", dir, "pages", len(pages))
	return len(pages), nil
}

// Generate writes both sites for fs.
func Generate(fs []season.Fixture, web1Dir, rdfaDir string) error {
	g, err := New(fs)
	if err != nil {
		return err
	}
	if _, err := g.Write(Web1, web1Dir); err != nil {
		return errors.Wrap(err, "web1")
	}
	if _, err := g.Write(RDFa, rdfaDir); err != nil {
		return errors.Wrap(err, "rdfa")
	}
	return nil
}

func with(d pageData, fn func(*pageData)) pageData {
	fn(&d)
	return d
}

func (g *Generator) teams(f Flavor) []teamView {
	table := g.season.Table()
	out := make([]teamView, 0, len(table))
	for _, s := range table {
		tv := teamView{Name: s.Team, Page: TeamPage(f, s.Team), Standing: s}
		for _, fx := range g.season.Fixtures() {
			if !fx.Involves(s.Team) {
				continue
			}
			r := resultView{
				Date:     fx.Date.Format(season.DateLayout),
				Venue:    "Domicile",
				Opponent: fx.Away,
				Score:    fx.Score(),
			}
			own, opp := fx.HomeGoals, fx.AwayGoals
			if fx.Away == s.Team {
				r.Venue, r.Opponent = "Extérieur", fx.Home
				own, opp = opp, own
			}
			switch {
			case own > opp:
				r.Outcome = "Victoire"
			case own < opp:
				r.Outcome = "Défaite"
			default:
				r.Outcome = "Match nul"
			}
			tv.Results = append(tv.Results, r)
		}
		out = append(out, tv)
	}
	return out
}
