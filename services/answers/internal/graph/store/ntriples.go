package store

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/piprate/json-gold/ld"

	"github.com/jredh-dev/semweb/services/answers/internal/graph/schema"
)

const defaultGraph = "@default"

// Node converts the term to its JSON-LD processor form. Plain literals
// become xsd:string and language-tagged ones rdf:langString.
func (t Term) Node() ld.Node {
	switch t.Kind {
	case IRI:
		return ld.NewIRI(t.Value)
	case Blank:
		return ld.NewBlankNode("_:" + t.Value)
	}
	dt := t.Datatype
	switch {
	case t.Lang != "":
		dt = ld.RDFLangString
	case dt == "":
		dt = schema.XSDString
	}
	return ld.NewLiteral(t.Value, dt, t.Lang)
}

// Dataset returns the store's content as the default graph of an RDF
// dataset.
func (s *Store) Dataset() (*ld.RDFDataset, error) {
	triples, err := s.All()
	if err != nil {
		return nil, err
	}
	ds := ld.NewRDFDataset()
	quads := make([]*ld.Quad, 0, len(triples))
	for _, t := range triples {
		quads = append(quads, ld.NewQuad(t.S.Node(), t.P.Node(), t.O.Node(), defaultGraph))
	}
	ds.Graphs[defaultGraph] = quads
	return ds, nil
}

// WriteNTriples dumps the store as N-Triples, one sorted statement per
// line, and returns the number of statements written.
func (s *Store) WriteNTriples(w io.Writer) (int, error) {
	ds, err := s.Dataset()
	if err != nil {
		return 0, err
	}
	out, err := (&ld.NQuadRDFSerializer{}).Serialize(ds)
	if err != nil {
		return 0, errors.Wrap(err, "serialize n-triples")
	}
	text, _ := out.(string)
	if _, err := io.WriteString(w, text); err != nil {
		return 0, errors.Wrap(err, "write n-triples")
	}
	return len(ds.Graphs[defaultGraph]), nil
}
