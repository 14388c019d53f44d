package handlers

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jredh-dev/semweb/internal/logger"
	"github.com/jredh-dev/semweb/services/answers/internal/catalogue"
	"github.com/jredh-dev/semweb/services/answers/internal/router"
	"github.com/jredh-dev/semweb/services/answers/internal/web/templates"
)

// Path segments of the answer endpoints: /api/{slug}/{question}.
const (
	SlugWeb1  = "v1"
	SlugRDFa  = "rdfa"
	SlugGraph = "knowledge-graph"
)

// Method is one representation exposed over HTTP.
type Method struct {
	Slug  string
	Name  string
	Table *router.Table
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	cat       *catalogue.Catalogue
	methods   []Method
	templates map[string]*template.Template
	log       *zap.SugaredLogger
}

// New creates a handler serving the given methods. Methods whose table is
// nil are skipped, so their endpoints answer 404.
func New(cat *catalogue.Catalogue, methods ...Method) (*Handler, error) {
	h := &Handler{
		cat:       cat,
		templates: make(map[string]*template.Template),
		log:       logger.Named("handlers"),
	}
	for _, m := range methods {
		if m.Table == nil {
			h.log.Warnw("method not mounted", "method", m.Name)
			continue
		}
		h.methods = append(h.methods, m)
	}

	for _, page := range []string{"index.html", "search.html"} {
		t, err := template.New(page).ParseFS(templates.FS, "base.html", page)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", page)
		}
		h.templates[page] = t
	}
	return h, nil
}

// Routes registers every page and API route on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Index)
	r.Get("/web-1.0/", h.search("Web 1.0", SlugWeb1))
	r.Get("/web-3.0/", h.search("Web 3.0", SlugRDFa, SlugGraph))

	r.Route("/api", func(r chi.Router) {
		r.Get("/questions", h.Questions)
		for _, m := range h.methods {
			r.Get("/"+m.Slug+"/{question}", h.ask(m))
		}
	})
}

type pageData struct {
	Title     string
	Methods   []Method
	Questions []catalogue.Entry
}

// Index serves the landing page.
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, "index.html", pageData{Title: "Accueil", Methods: h.methods, Questions: h.cat.Entries})
}

// search serves a search page offering the mounted methods among slugs.
func (h *Handler) search(title string, slugs ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var methods []Method
		for _, m := range h.methods {
			for _, s := range slugs {
				if m.Slug == s {
					methods = append(methods, m)
				}
			}
		}
		if len(methods) == 0 {
			http.NotFound(w, r)
			return
		}
		h.render(w, "search.html", pageData{Title: title, Methods: methods, Questions: h.cat.Entries})
	}
}

// Questions lists the canonical questions.
// GET /api/questions
func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, http.StatusOK, h.cat.Entries)
}

// ask answers a free-text question with one method.
// GET /api/{slug}/{question}
func (h *Handler) ask(m Method) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// chi matches on RawPath when set, leaving the parameter escaped.
		q := chi.URLParam(r, "question")
		if r.URL.RawPath != "" {
			if u, err := url.PathUnescape(q); err == nil {
				q = u
			}
		}

		resp, err := m.Table.Route(q)
		if err != nil {
			h.log.Errorw("backend failure", "method", m.Name, "question", q, "error", err)
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.log.Debugw("answered", "method", m.Name, "question", q,
			"results", len(resp.Results), "ms", resp.ProcessingMS)
		jsonOK(w, http.StatusOK, resp)
	}
}

func (h *Handler) render(w http.ResponseWriter, page string, data pageData) {
	var buf bytes.Buffer
	if err := h.templates[page].ExecuteTemplate(&buf, "base", data); err != nil {
		h.log.Errorw("render page", "page", page, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes()) //nolint:errcheck
}

func jsonOK(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
