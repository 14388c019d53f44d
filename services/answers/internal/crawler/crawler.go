// Package crawler reads pages from a folder or a web site, extracts their
// JSON-LD blocks and loads the resulting RDF into the triple store.
package crawler

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jredh-dev/semweb/internal/logger"
	"github.com/jredh-dev/semweb/services/answers/internal/graph/store"
)

// DefaultUserAgent is sent with every request of a web crawl.
const DefaultUserAgent = "semweb-crawler/1.0"

// Options tune a crawl. The zero value crawls without limit or delay.
type Options struct {
	// MaxPages caps the number of pages read. Zero means no cap.
	MaxPages int
	// Delay is the minimum interval between two requests of a web crawl.
	Delay     time.Duration
	UserAgent string
	Client    *http.Client
}

// Stats summarizes a crawl.
type Stats struct {
	PagesSeen    int `json:"pages_seen"`
	PagesParsed  int `json:"pages_parsed"`
	Blocks       int `json:"jsonld_blocks"`
	Objects      int `json:"jsonld_objects"`
	TriplesAdded int `json:"triples_added"`
	Errors       int `json:"errors"`
}

// Crawler loads pages into a store. A Crawler remembers the pages it has
// ingested, so crawling the same content twice adds nothing.
type Crawler struct {
	store  *store.Store
	opts   Options
	log    *zap.SugaredLogger
	hashes map[string]bool
	stats  Stats
}

func New(st *store.Store, opts Options) *Crawler {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Crawler{
		store:  st,
		opts:   opts,
		log:    logger.Named("crawler"),
		hashes: make(map[string]bool),
	}
}

// Stats returns the running totals of every crawl made with c.
func (c *Crawler) Stats() Stats { return c.stats }

// Crawl dispatches on the source: http(s) URLs are crawled over the network,
// anything else is treated as a local folder.
func (c *Crawler) Crawl(ctx context.Context, source string) (Stats, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return c.CrawlURL(ctx, source)
	}
	return c.CrawlDir(ctx, source)
}

func (c *Crawler) full() bool {
	return c.opts.MaxPages > 0 && c.stats.PagesSeen >= c.opts.MaxPages
}

// CrawlDir ingests every .html and .htm file under dir in lexical order.
func (c *Crawler) CrawlDir(ctx context.Context, dir string) (Stats, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return c.stats, errors.Wrap(err, "crawl folder")
	}
	if !info.IsDir() {
		return c.stats, errors.Newf("crawl folder: %s is not a directory", dir)
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".html" && ext != ".htm" {
			return nil
		}
		if c.full() {
			return filepath.SkipAll
		}

		c.stats.PagesSeen++
		body, err := os.ReadFile(path)
		if err != nil {
			c.fail(path, err)
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		c.ingest(ctx, "file://"+filepath.ToSlash(abs), body)
		return nil
	})
	if err != nil {
		return c.stats, errors.Wrap(err, "walk folder")
	}
	return c.stats, nil
}

// CrawlURL walks a site breadth-first from start, following links that stay
// on the same host.
func (c *Crawler) CrawlURL(ctx context.Context, start string) (Stats, error) {
	root, err := url.Parse(start)
	if err != nil || root.Host == "" {
		return c.stats, errors.Newf("crawl url: invalid start url %q", start)
	}
	root.Fragment = ""

	limit := rate.Inf
	if c.opts.Delay > 0 {
		limit = rate.Every(c.opts.Delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	visited := map[string]bool{root.String(): true}
	queue := []*url.URL{root}
	for len(queue) > 0 && !c.full() {
		page := queue[0]
		queue = queue[1:]

		if err := limiter.Wait(ctx); err != nil {
			return c.stats, errors.Wrap(err, "crawl url")
		}

		c.stats.PagesSeen++
		final, body, err := c.fetch(ctx, page)
		if err != nil {
			c.fail(page.String(), err)
			continue
		}
		visited[final.String()] = true
		c.ingest(ctx, final.String(), body)

		for _, link := range links(final, body) {
			if link.Host != root.Host || visited[link.String()] {
				continue
			}
			visited[link.String()] = true
			queue = append(queue, link)
		}
	}
	return c.stats, nil
}

// fetch GETs an HTML page and returns the URL it was finally served from.
func (c *Crawler) fetch(ctx context.Context, u *url.URL) (*url.URL, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.opts.Client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, errors.Newf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, nil, errors.Newf("not html: %s", ct)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	final := *resp.Request.URL
	final.Fragment = ""
	return &final, body, nil
}

// links returns the absolute http(s) targets of the page's anchors.
func links(base *url.URL, body []byte) []*url.URL {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	var out []*url.URL
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		u := base.ResolveReference(ref)
		if u.Scheme != "http" && u.Scheme != "https" {
			return
		}
		u.Fragment = ""
		out = append(out, u)
	})
	return out
}

// ingest loads one page. Duplicate content is skipped; errors are counted
// and logged without stopping the crawl.
func (c *Crawler) ingest(ctx context.Context, base string, body []byte) {
	sum := sha1.Sum(body)
	hash := hex.EncodeToString(sum[:])
	if c.hashes[hash] {
		c.log.Debugw("duplicate page", "page", base)
		return
	}
	c.hashes[hash] = true
	c.stats.PagesParsed++

	blocks, err := Extract(body)
	if err != nil {
		c.fail(base, err)
		return
	}
	for _, block := range blocks {
		if ctx.Err() != nil {
			return
		}
		c.stats.Blocks++
		objects, err := ParseBlock(block)
		if err != nil {
			c.fail(base, err)
			continue
		}
		for _, obj := range objects {
			c.stats.Objects++
			triples, err := ToTriples(obj, base, hash[:12])
			if err != nil {
				c.fail(base, err)
				continue
			}
			n, err := c.store.Add(triples...)
			if err != nil {
				c.fail(base, err)
				continue
			}
			c.stats.TriplesAdded += n
		}
	}
}

func (c *Crawler) fail(page string, err error) {
	c.stats.Errors++
	c.log.Warnw("crawl error", "page", page, "error", err)
}
