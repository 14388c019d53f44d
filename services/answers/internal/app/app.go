// Package app assembles the answers service from its configuration: the
// page directories, the knowledge graph and one routing table per
// representation.
package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/jredh-dev/semweb/internal/logger"
	"github.com/jredh-dev/semweb/services/answers/config"
	"github.com/jredh-dev/semweb/services/answers/internal/backend/graph"
	"github.com/jredh-dev/semweb/services/answers/internal/backend/rdfa"
	"github.com/jredh-dev/semweb/services/answers/internal/backend/web1"
	"github.com/jredh-dev/semweb/services/answers/internal/catalogue"
	"github.com/jredh-dev/semweb/services/answers/internal/crawler"
	"github.com/jredh-dev/semweb/services/answers/internal/graph/store"
	"github.com/jredh-dev/semweb/services/answers/internal/handlers"
	"github.com/jredh-dev/semweb/services/answers/internal/router"
	"github.com/jredh-dev/semweb/services/answers/internal/season"
	"github.com/jredh-dev/semweb/services/answers/internal/season/sample"
	"github.com/jredh-dev/semweb/services/answers/internal/site"
)

// App is a ready-to-serve answers service.
type App struct {
	Handler *handlers.Handler
	Methods []handlers.Method
	store   *store.Store
}

// Open loads every representation named by cfg. A representation that
// fails to load is logged and left unmounted; Open only fails when the
// catalogue itself is invalid.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.Named("app")

	cat, err := catalogue.Load()
	if err != nil {
		return nil, errors.Wrap(err, "load catalogue")
	}

	if cfg.GenerateOnStart && (missing(cfg.Web1Dir) || missing(cfg.RDFaDir)) {
		log.Infow("generating pages from the bundled season", "web1", cfg.Web1Dir, "rdfa", cfg.RDFaDir)
		if err := site.Generate(sample.Fixtures(), cfg.Web1Dir, cfg.RDFaDir); err != nil {
			log.Errorw("generate pages", "error", err)
		}
	}

	a := &App{}

	var w1, rd season.Backend
	if b, err := web1.Open(cfg.Web1Dir); err != nil {
		log.Errorw("web 1.0 backend unavailable", "dir", cfg.Web1Dir, "error", err)
	} else {
		w1 = b
	}
	if b, err := rdfa.Open(cfg.RDFaDir); err != nil {
		log.Errorw("rdfa backend unavailable", "dir", cfg.RDFaDir, "error", err)
	} else {
		rd = b
	}

	var kg season.Backend
	if st, err := a.openGraph(ctx, cfg, log); err != nil {
		log.Errorw("knowledge graph unavailable", "db", cfg.GraphDB, "error", err)
	} else {
		a.store = st
		kg = graph.New(st)
	}

	for _, m := range []struct {
		slug string
		b    season.Backend
		name string
	}{
		{handlers.SlugWeb1, w1, "Web 1.0"},
		{handlers.SlugRDFa, rd, "RDFa"},
		{handlers.SlugGraph, kg, "Knowledge Graph"},
	} {
		method := handlers.Method{Slug: m.slug, Name: m.name}
		if m.b != nil {
			t, err := router.Bind(cat, season.Operations(m.b))
			if err != nil {
				a.Close()
				return nil, errors.Wrapf(err, "bind %s", m.name)
			}
			method.Table = t
		}
		a.Methods = append(a.Methods, method)
	}

	a.Handler, err = handlers.New(cat, a.Methods...)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) openGraph(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*store.Store, error) {
	if dir := filepath.Dir(cfg.GraphDB); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create graph dir")
		}
	}
	st, err := store.Open(cfg.GraphDB)
	if err != nil {
		return nil, err
	}

	n, err := st.Len()
	if err != nil {
		st.Close()
		return nil, err
	}
	if n == 0 && cfg.CrawlOnStart {
		stats, err := crawler.New(st, crawler.Options{}).CrawlDir(ctx, cfg.RDFaDir)
		if err != nil {
			log.Warnw("initial crawl failed", "dir", cfg.RDFaDir, "error", err)
		} else {
			log.Infow("knowledge graph built", "pages", stats.PagesParsed, "triples", stats.TriplesAdded, "errors", stats.Errors)
		}
	}
	return st, nil
}

// Close releases the knowledge graph.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func missing(dir string) bool {
	_, err := os.Stat(dir)
	return errors.Is(err, os.ErrNotExist)
}
