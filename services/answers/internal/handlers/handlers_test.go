package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jredh-dev/semweb/services/answers/internal/catalogue"
	"github.com/jredh-dev/semweb/services/answers/internal/router"
	"github.com/jredh-dev/semweb/services/answers/internal/season"
	"github.com/jredh-dev/semweb/services/answers/internal/season/sample"
)

type broken struct{ *season.Memory }

func (broken) Leader() (string, error) { return "", errors.New("page unreadable") }

func table(t *testing.T, cat *catalogue.Catalogue, b season.Backend) *router.Table {
	t.Helper()
	tbl, err := router.Bind(cat, season.Operations(b))
	require.NoError(t, err)
	return tbl
}

func testRouter(t *testing.T, methods ...Method) (*chi.Mux, *catalogue.Catalogue) {
	t.Helper()
	cat, err := catalogue.Load()
	require.NoError(t, err)
	mem := season.NewMemory(sample.Fixtures())
	if methods == nil {
		methods = []Method{
			{Slug: SlugWeb1, Name: "Web 1.0", Table: table(t, cat, mem)},
			{Slug: SlugRDFa, Name: "RDFa", Table: table(t, cat, broken{mem})},
			{Slug: SlugGraph, Name: "Knowledge Graph"},
		}
	}
	h, err := New(cat, methods...)
	require.NoError(t, err)
	r := chi.NewRouter()
	h.Routes(r)
	return r, cat
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestAsk(t *testing.T) {
	r, cat := testRouter(t)
	q1, _ := cat.Get("Q1")

	w := get(r, "/api/v1/"+url.PathEscape(q1.Question))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp router.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "quelle equipe est premiere au classement ?", resp.Request)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Question 1", resp.Results[0].Title)
	assert.Equal(t, "Chelsea", resp.Results[0].Answer)
	assert.GreaterOrEqual(t, resp.ProcessingMS, 0.0)
}

func TestAsk_WireFormat(t *testing.T) {
	r, _ := testRouter(t)

	w := get(r, "/api/v1/"+url.PathEscape("Combien de matchs joués cette saison"))
	require.Equal(t, http.StatusOK, w.Code)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Contains(t, raw, "request_question")
	assert.Contains(t, raw, "processing_ms")
	datas, ok := raw["datas"].([]any)
	require.True(t, ok)
	require.Len(t, datas, 1)
	assert.Equal(t, map[string]any{"title": "Question 2", "answer": float64(380)}, datas[0])
}

func TestAsk_DecodesQuestionOnce(t *testing.T) {
	r, _ := testRouter(t)

	cases := map[string]string{
		"percent literal": "taux 50%41",
		"escaped slash":   "buts/match",
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			w := get(r, "/api/v1/"+url.PathEscape(q))
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var resp router.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, q, resp.Request)
		})
	}
}

func TestAsk_NoMatch(t *testing.T) {
	r, _ := testRouter(t)

	w := get(r, "/api/v1/bonjour")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(mustField(t, w.Body.Bytes(), "datas")))
}

func TestAsk_BackendFailure(t *testing.T) {
	r, _ := testRouter(t)

	w := get(r, "/api/rdfa/"+url.PathEscape("Quelle équipe est première au classement"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "Question 1")
	assert.Contains(t, body["error"], "page unreadable")

	// Other questions on the same backend still work.
	w = get(r, "/api/rdfa/"+url.PathEscape("nombre total de buts cette saison"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAsk_UnmountedMethod(t *testing.T) {
	r, _ := testRouter(t)
	w := get(r, "/api/knowledge-graph/classement")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuestions(t *testing.T) {
	r, _ := testRouter(t)
	w := get(r, "/api/questions")
	require.Equal(t, http.StatusOK, w.Code)

	var entries []catalogue.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, catalogue.Size)
	assert.Equal(t, "Q1", entries[0].ID)
	assert.NotEmpty(t, entries[9].Keywords)
}

func TestPages(t *testing.T) {
	r, cat := testRouter(t)
	q1, _ := cat.Get("Q1")

	w := get(r, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), q1.Question)
	assert.Contains(t, w.Body.String(), "/api/v1/")

	w = get(r, "/web-1.0/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<option value="v1">Web 1.0</option>`)

	w = get(r, "/web-3.0/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="rdfa"`)
	assert.NotContains(t, w.Body.String(), `value="knowledge-graph"`)
}

func TestPages_NothingMounted(t *testing.T) {
	r, _ := testRouter(t, Method{Slug: SlugWeb1, Name: "Web 1.0"})
	assert.Equal(t, http.StatusNotFound, get(r, "/web-1.0/").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/web-3.0/").Code)
	assert.Equal(t, http.StatusOK, get(r, "/").Code)
}

func mustField(t *testing.T, body []byte, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &m))
	return m[key]
}
