package crawler

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"github.com/piprate/json-gold/ld"

	"github.com/jredh-dev/semweb/services/answers/internal/graph/schema"
	"github.com/jredh-dev/semweb/services/answers/internal/graph/store"
)

// Extract returns the text of every <script type="application/ld+json">
// block of an HTML page, in document order.
func Extract(body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "parse html")
	}
	var blocks []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		typ, _ := s.Attr("type")
		if !strings.EqualFold(strings.TrimSpace(typ), "application/ld+json") {
			return
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	return blocks, nil
}

var glued = regexp.MustCompile(`\}\s*\{`)

// ParseBlock decodes a JSON-LD block into its top-level objects. A block may
// hold one object, an array of objects, or several objects written back to
// back without a separator.
func ParseBlock(text string) ([]map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		repaired := "[" + glued.ReplaceAllString(text, "},{") + "]"
		if err2 := json.Unmarshal([]byte(repaired), &v); err2 != nil {
			return nil, errors.Wrap(err, "decode json-ld")
		}
	}

	var out []map[string]any
	switch x := v.(type) {
	case map[string]any:
		out = append(out, x)
	case []any:
		for _, item := range x {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, obj)
			}
		}
	default:
		return nil, errors.Newf("json-ld block is a %T", v)
	}
	return out, nil
}

// localContext rewrites references to the remote schema.org context into an
// inline vocabulary so expansion never goes to the network.
func localContext(ctx any) any {
	switch c := ctx.(type) {
	case string:
		if strings.Contains(c, "schema.org") {
			return map[string]any{"@vocab": schema.Vocab}
		}
	case []any:
		out := make([]any, len(c))
		for i, item := range c {
			out[i] = localContext(item)
		}
		return out
	}
	return ctx
}

// ToTriples converts one JSON-LD object to RDF. Blank node labels are
// prefixed with scope so nodes from different pages never merge.
func ToTriples(obj map[string]any, base, scope string) ([]store.Triple, error) {
	if ctx, ok := obj["@context"]; ok {
		doc := make(map[string]any, len(obj))
		for k, v := range obj {
			doc[k] = v
		}
		doc["@context"] = localContext(ctx)
		obj = doc
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions(base)
	out, err := proc.ToRDF(obj, opts)
	if err != nil {
		return nil, errors.Wrap(err, "json-ld to rdf")
	}
	dataset, ok := out.(*ld.RDFDataset)
	if !ok {
		return nil, errors.Newf("json-ld to rdf: unexpected %T", out)
	}

	var triples []store.Triple
	for _, quads := range dataset.Graphs {
		for _, q := range quads {
			s, ok1 := term(q.Subject, scope)
			p, ok2 := term(q.Predicate, scope)
			o, ok3 := term(q.Object, scope)
			if !ok1 || !ok2 || !ok3 || p.Kind != store.IRI {
				continue
			}
			triples = append(triples, store.Triple{S: s, P: p, O: o})
		}
	}
	return triples, nil
}

func term(n ld.Node, scope string) (store.Term, bool) {
	switch v := n.(type) {
	case *ld.IRI:
		return store.NewIRI(v.Value), true
	case *ld.BlankNode:
		return store.NewBlank(scope + "-" + strings.TrimPrefix(v.Attribute, "_:")), true
	case *ld.Literal:
		t := store.NewLiteral(v.Value, v.Datatype)
		t.Lang = v.Language
		return t, true
	}
	return store.Term{}, false
}
