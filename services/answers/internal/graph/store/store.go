// Package store keeps RDF triples in SQLite.
//
// Every triple is one row of the triples table. Subjects and predicates are
// stored as text (blank nodes as "_:label"); objects carry a kind column so
// IRIs, blank nodes and literals with the same lexical form stay distinct.
// Integer literals keep SQLite's INTEGER storage class, which makes numeric
// comparison and SUM work directly in SQL.
package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"

	"github.com/jredh-dev/semweb/services/answers/internal/graph/schema"
	"github.com/jredh-dev/semweb/services/answers/internal/graph/sparql"
)

// Kind classifies an RDF term.
type Kind int

const (
	IRI Kind = iota
	Blank
	Literal
)

// Term is an RDF node.
type Term struct {
	Kind     Kind
	Value    string
	Datatype string
	Lang     string
}

func NewIRI(v string) Term { return Term{Kind: IRI, Value: v} }

func NewBlank(label string) Term { return Term{Kind: Blank, Value: label} }

// NewLiteral returns a plain literal when datatype is empty.
func NewLiteral(v, datatype string) Term { return Term{Kind: Literal, Value: v, Datatype: datatype} }

func NewInt(n int64) Term {
	return Term{Kind: Literal, Value: strconv.FormatInt(n, 10), Datatype: schema.XSDInteger}
}

// Triple is a subject, predicate, object statement.
type Triple struct {
	S, P, O Term
}

const ddl = `
CREATE TABLE IF NOT EXISTS triples (
	s    TEXT    NOT NULL,
	p    TEXT    NOT NULL,
	o            NOT NULL,
	kind INTEGER NOT NULL,
	dt   TEXT    NOT NULL DEFAULT '',
	lang TEXT    NOT NULL DEFAULT '',
	UNIQUE (s, p, o, kind, dt, lang)
);

CREATE INDEX IF NOT EXISTS idx_triples_sp ON triples(s, p);
CREATE INDEX IF NOT EXISTS idx_triples_po ON triples(p, o);
`

// Store is a triple store backed by one SQLite database. It is safe for
// concurrent use.
type Store struct {
	conn *sql.DB
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	if _, err := conn.Exec(ddl); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "apply schema")
	}
	return &Store{conn: conn}, nil
}

// Close shuts down the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func subject(t Term) string {
	if t.Kind == Blank {
		return "_:" + t.Value
	}
	return t.Value
}

// object returns the value stored in the o column. Blank objects share the
// subject encoding so joins across positions match.
func object(t Term) any {
	if t.Kind == Blank {
		return subject(t)
	}
	if t.Kind == Literal && t.Datatype == schema.XSDInteger {
		if n, err := strconv.ParseInt(t.Value, 10, 64); err == nil {
			return n
		}
	}
	return t.Value
}

// Add inserts triples, ignoring ones already present. It returns how many
// were new.
func (s *Store) Add(triples ...Triple) (int, error) {
	if len(triples) == 0 {
		return 0, nil
	}
	tx, err := s.conn.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO triples (s, p, o, kind, dt, lang) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	added := 0
	for _, t := range triples {
		if t.S.Kind == Literal || t.P.Kind != IRI {
			return 0, errors.Newf("invalid triple %s", t)
		}
		res, err := stmt.Exec(subject(t.S), t.P.Value, object(t.O), int(t.O.Kind), t.O.Datatype, t.O.Lang)
		if err != nil {
			return 0, errors.Wrap(err, "insert triple")
		}
		n, _ := res.RowsAffected()
		added += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit")
	}
	return added, nil
}

// Len returns the number of triples.
func (s *Store) Len() (int, error) {
	var n int
	err := s.conn.QueryRow(`SELECT COUNT(*) FROM triples`).Scan(&n)
	return n, err
}

// All returns every triple in a stable order.
func (s *Store) All() ([]Triple, error) {
	rows, err := s.conn.Query(`SELECT s, p, o, kind, dt, lang FROM triples ORDER BY s, p, kind, CAST(o AS TEXT)`)
	if err != nil {
		return nil, errors.Wrap(err, "query triples")
	}
	defer rows.Close()

	var out []Triple
	for rows.Next() {
		var (
			subj, pred, dt, lang string
			obj                  any
			kind                 int
		)
		if err := rows.Scan(&subj, &pred, &obj, &kind, &dt, &lang); err != nil {
			return nil, errors.Wrap(err, "scan triple")
		}
		t := Triple{P: NewIRI(pred), O: Term{Kind: Kind(kind), Datatype: dt, Lang: lang}}
		if label, ok := strings.CutPrefix(subj, "_:"); ok {
			t.S = NewBlank(label)
		} else {
			t.S = NewIRI(subj)
		}
		switch v := obj.(type) {
		case int64:
			t.O.Value = strconv.FormatInt(v, 10)
		case string:
			t.O.Value = v
		case []byte:
			t.O.Value = string(v)
		default:
			t.O.Value = sparql.Format(v)
		}
		if t.O.Kind == Blank {
			t.O.Value = strings.TrimPrefix(t.O.Value, "_:")
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Select runs a SPARQL SELECT query against the store.
func (s *Store) Select(ctx context.Context, query string) ([]sparql.Binding, error) {
	return sparql.Exec(ctx, s.conn, query)
}
