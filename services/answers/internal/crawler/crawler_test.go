package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jredh-dev/semweb/services/answers/internal/graph/schema"
	"github.com/jredh-dev/semweb/services/answers/internal/graph/store"
	"github.com/jredh-dev/semweb/services/answers/internal/season/sample"
	"github.com/jredh-dev/semweb/services/answers/internal/site"
)

// Each team node yields a type and five properties; each event a type and
// five properties.
const sampleTriples = 20*6 + 380*6

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func enrichedSite(t *testing.T) string {
	t.Helper()
	g, err := site.New(sample.Fixtures())
	require.NoError(t, err)
	dir := t.TempDir()
	_, err = g.Write(site.RDFa, dir)
	require.NoError(t, err)
	return dir
}

func writePage(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestParseBlock(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"object", `{"@type": "SportsTeam"}`, 1},
		{"array", `[{"a": 1}, {"b": 2}, 3]`, 2},
		{"glued", `{"a": 1}{"b": 2}`, 2},
		{"glued with space", "{\"a\": 1}\n  {\"b\": 2} {\"c\": 3}", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objs, err := ParseBlock(tt.text)
			require.NoError(t, err)
			assert.Len(t, objs, tt.want)
		})
	}

	_, err := ParseBlock("not json")
	assert.Error(t, err)
	_, err = ParseBlock("42")
	assert.Error(t, err)
}

func TestExtract(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">{"a": 1}</script>
<script type="text/javascript">var x = 1;</script>
<script type="Application/LD+JSON">  </script>
</head><body>
<script type="application/ld+json">[{"b": 2}]</script>
</body></html>`

	blocks, err := Extract([]byte(page))
	require.NoError(t, err)
	assert.Equal(t, []string{`{"a": 1}`, `[{"b": 2}]`}, blocks)
}

func TestToTriples_InlinesSchemaContext(t *testing.T) {
	obj := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "SportsTeam",
		"name":        "Arsenal",
		"goalsScored": float64(68),
	}
	triples, err := ToTriples(obj, "file:///tmp/page.html", "p1")
	require.NoError(t, err)
	require.Len(t, triples, 3)

	byPred := map[string]store.Triple{}
	for _, tr := range triples {
		assert.Equal(t, store.Blank, tr.S.Kind)
		assert.Contains(t, tr.S.Value, "p1-")
		byPred[tr.P.Value] = tr
	}
	assert.Equal(t, store.NewIRI(schema.SportsTeam), byPred[schema.RDFType].O)
	assert.Equal(t, "Arsenal", byPred[schema.Name].O.Value)
	assert.Equal(t, store.NewInt(68), byPred[schema.GoalsScored].O)

	// the caller's object is left untouched
	assert.Equal(t, "https://schema.org", obj["@context"])
}

func TestCrawlDir_EnrichedSite(t *testing.T) {
	dir := enrichedSite(t)
	st := testStore(t)
	c := New(st, Options{})

	stats, err := c.CrawlDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, Stats{
		PagesSeen:    24,
		PagesParsed:  24,
		Blocks:       22,
		Objects:      22,
		TriplesAdded: sampleTriples,
	}, stats)

	n, err := st.Len()
	require.NoError(t, err)
	assert.Equal(t, sampleTriples, n)

	rows, err := st.Select(context.Background(), `
		PREFIX schema: <http://schema.org/>
		SELECT (COUNT(?m) AS ?n) WHERE { ?m a schema:SportsEvent }`)
	require.NoError(t, err)
	events, _ := rows[0].Int("n")
	assert.Equal(t, 380, events)

	// Crawling again finds only known pages.
	stats, err = c.CrawlDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 48, stats.PagesSeen)
	assert.Equal(t, 24, stats.PagesParsed)
	assert.Equal(t, sampleTriples, stats.TriplesAdded)
}

func TestCrawlDir_MaxPages(t *testing.T) {
	dir := enrichedSite(t)
	stats, err := New(testStore(t), Options{MaxPages: 2}).CrawlDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PagesSeen)
}

func TestCrawlDir_BadBlockDoesNotAbort(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "a.html", `<script type="application/ld+json">{broken</script>`)
	writePage(t, dir, "b.html", `<script type="application/ld+json">
{"@context": "https://schema.org", "@id": "http://semweb.local/team/arsenal", "name": "Arsenal"}
</script>`)
	writePage(t, dir, "notes.txt", `<script type="application/ld+json">{"name": "x"}</script>`)

	stats, err := New(testStore(t), Options{}).CrawlDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PagesSeen)
	assert.Equal(t, 2, stats.Blocks)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.TriplesAdded)
}

func TestCrawlDir_Missing(t *testing.T) {
	_, err := New(testStore(t), Options{}).CrawlDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestCrawlURL_FollowsSameHostLinks(t *testing.T) {
	dir := enrichedSite(t)
	var agents atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "test-agent" {
			agents.Add(1)
		}
		http.FileServer(http.Dir(dir)).ServeHTTP(w, r)
	}))
	defer srv.Close()

	st := testStore(t)
	stats, err := New(st, Options{UserAgent: "test-agent"}).Crawl(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, 24, stats.PagesParsed)
	assert.Equal(t, 22, stats.Blocks)
	assert.Equal(t, sampleTriples, stats.TriplesAdded)
	assert.Zero(t, stats.Errors)
	assert.GreaterOrEqual(t, int(agents.Load()), stats.PagesSeen)
}

func TestCrawlURL_MaxPagesAndBadStart(t *testing.T) {
	dir := enrichedSite(t)
	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()

	stats, err := New(testStore(t), Options{MaxPages: 3}).CrawlURL(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.PagesSeen)

	_, err = New(testStore(t), Options{}).CrawlURL(context.Background(), "not a url")
	assert.Error(t, err)
}
