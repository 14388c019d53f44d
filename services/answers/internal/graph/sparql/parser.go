package sparql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// TermKind classifies a pattern term.
type TermKind int

const (
	TermVar TermKind = iota
	TermIRI
	TermString
	TermInt
)

// Term is a variable or constant in a triple pattern or filter.
type Term struct {
	Kind  TermKind
	Value string
	Int   int64
}

// Pattern is one triple pattern of the WHERE clause.
type Pattern struct {
	S, P, O Term
}

// Projection is one item of the SELECT clause: a variable, or an aggregate
// bound to a new variable with AS.
type Projection struct {
	Var      string
	Agg      string // "", "COUNT" or "SUM"
	Arg      string // aggregated variable, empty for COUNT(*)
	Distinct bool
}

// OrderKey is one ORDER BY key.
type OrderKey struct {
	Var  string
	Desc bool
}

// Expr is a FILTER expression.
type Expr interface{ expr() }

type (
	// Binary is a comparison or logical connective.
	Binary struct {
		Op   string
		L, R Expr
	}
	// Not negates its operand.
	Not struct{ X Expr }
	// Call is a builtin function call.
	Call struct {
		Fn   string
		Args []Expr
	}
	// Operand is a variable or constant.
	Operand struct{ Term Term }
)

func (Binary) expr()  {}
func (Not) expr()     {}
func (Call) expr()    {}
func (Operand) expr() {}

// Query is a parsed SELECT query.
type Query struct {
	Prefixes    map[string]string
	Distinct    bool
	Star        bool
	Projections []Projection
	Patterns    []Pattern
	Filters     []Expr
	GroupBy     []string
	OrderBy     []OrderKey
	Limit       int // -1 when absent
	Offset      int
}

// Columns returns the result variable names in output order. For SELECT *
// that is the order in which variables first appear in the patterns.
func (q *Query) Columns() []string {
	if !q.Star {
		cols := make([]string, len(q.Projections))
		for i, p := range q.Projections {
			cols[i] = p.Var
		}
		return cols
	}
	var cols []string
	seen := map[string]bool{}
	for _, pat := range q.Patterns {
		for _, t := range []Term{pat.S, pat.P, pat.O} {
			if t.Kind == TermVar && !seen[t.Value] {
				seen[t.Value] = true
				cols = append(cols, t.Value)
			}
		}
	}
	return cols
}

type parser struct {
	toks []token
	pos  int
	q    *Query
}

// Parse reads a SELECT query.
func Parse(src string) (*Query, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, q: &Query{Prefixes: map[string]string{}, Limit: -1}}
	if err := p.query(); err != nil {
		return nil, err
	}
	return p.q, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) accept(s string) bool {
	if p.peek().is(s) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(s string) error {
	if t := p.next(); !t.is(s) {
		return p.errorf(t, "expected %q", s)
	}
	return nil
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return errors.Newf("sparql: at %d near %s: %s", t.pos, t, fmt.Sprintf(format, args...))
}

func (p *parser) query() error {
	for p.accept("PREFIX") {
		name := p.next()
		if name.kind != tokPName || !strings.HasSuffix(name.text, ":") {
			return p.errorf(name, "expected prefix name")
		}
		iri := p.next()
		if iri.kind != tokIRI {
			return p.errorf(iri, "expected IRI")
		}
		p.q.Prefixes[strings.TrimSuffix(name.text, ":")] = iri.text
	}

	if err := p.expect("SELECT"); err != nil {
		return err
	}
	if err := p.selectClause(); err != nil {
		return err
	}

	p.accept("WHERE")
	if err := p.expect("{"); err != nil {
		return err
	}
	if err := p.group(); err != nil {
		return err
	}

	if p.accept("GROUP") {
		if err := p.expect("BY"); err != nil {
			return err
		}
		for p.peek().kind == tokVar {
			p.q.GroupBy = append(p.q.GroupBy, p.next().text)
		}
		if len(p.q.GroupBy) == 0 {
			return p.errorf(p.peek(), "expected variable")
		}
	}
	if p.accept("ORDER") {
		if err := p.expect("BY"); err != nil {
			return err
		}
		if err := p.orderKeys(); err != nil {
			return err
		}
	}
	for {
		switch {
		case p.accept("LIMIT"):
			n, err := p.count()
			if err != nil {
				return err
			}
			p.q.Limit = n
		case p.accept("OFFSET"):
			n, err := p.count()
			if err != nil {
				return err
			}
			p.q.Offset = n
		default:
			if t := p.next(); t.kind != tokEOF {
				return p.errorf(t, "unexpected token")
			}
			return nil
		}
	}
}

func (p *parser) count() (int, error) {
	t := p.next()
	if t.kind != tokInt {
		return 0, p.errorf(t, "expected integer")
	}
	n, err := strconv.Atoi(t.text)
	if err != nil || n < 0 {
		return 0, p.errorf(t, "bad count")
	}
	return n, nil
}

func (p *parser) selectClause() error {
	p.q.Distinct = p.accept("DISTINCT")
	if p.accept("*") {
		p.q.Star = true
		return nil
	}
	for {
		t := p.peek()
		switch {
		case t.kind == tokVar:
			p.next()
			p.q.Projections = append(p.q.Projections, Projection{Var: t.text})
		case t.is("("):
			p.next()
			proj, err := p.aggregate()
			if err != nil {
				return err
			}
			p.q.Projections = append(p.q.Projections, proj)
		default:
			if len(p.q.Projections) == 0 {
				return p.errorf(t, "expected projection")
			}
			return nil
		}
	}
}

// aggregate parses "COUNT(?x) AS ?n)" after the opening parenthesis.
func (p *parser) aggregate() (Projection, error) {
	fn := p.next()
	if !fn.is("COUNT") && !fn.is("SUM") {
		return Projection{}, p.errorf(fn, "expected COUNT or SUM")
	}
	proj := Projection{Agg: strings.ToUpper(fn.text)}
	if err := p.expect("("); err != nil {
		return proj, err
	}
	proj.Distinct = p.accept("DISTINCT")
	switch t := p.next(); {
	case t.kind == tokVar:
		proj.Arg = t.text
	case t.is("*") && proj.Agg == "COUNT":
	default:
		return proj, p.errorf(t, "expected variable")
	}
	if err := p.expect(")"); err != nil {
		return proj, err
	}
	if err := p.expect("AS"); err != nil {
		return proj, err
	}
	v := p.next()
	if v.kind != tokVar {
		return proj, p.errorf(v, "expected variable")
	}
	proj.Var = v.text
	return proj, p.expect(")")
}

func (p *parser) orderKeys() error {
	for {
		t := p.peek()
		switch {
		case t.kind == tokVar:
			p.next()
			p.q.OrderBy = append(p.q.OrderBy, OrderKey{Var: t.text})
		case t.is("ASC") || t.is("DESC"):
			p.next()
			if err := p.expect("("); err != nil {
				return err
			}
			v := p.next()
			if v.kind != tokVar {
				return p.errorf(v, "expected variable")
			}
			if err := p.expect(")"); err != nil {
				return err
			}
			p.q.OrderBy = append(p.q.OrderBy, OrderKey{Var: v.text, Desc: t.is("DESC")})
		default:
			if len(p.q.OrderBy) == 0 {
				return p.errorf(t, "expected order key")
			}
			return nil
		}
	}
}

// group parses triple patterns and filters up to the closing brace.
func (p *parser) group() error {
	for {
		switch t := p.peek(); {
		case t.is("}"):
			p.next()
			return nil
		case t.is("."):
			p.next()
		case t.is("FILTER"):
			p.next()
			if err := p.expect("("); err != nil {
				return err
			}
			e, err := p.orExpr()
			if err != nil {
				return err
			}
			if err := p.expect(")"); err != nil {
				return err
			}
			p.q.Filters = append(p.q.Filters, e)
		case t.kind == tokEOF:
			return p.errorf(t, "unclosed group")
		default:
			if err := p.triples(); err != nil {
				return err
			}
		}
	}
}

// triples parses a subject followed by predicate-object lists, expanding
// the ';' and ',' shorthands.
func (p *parser) triples() error {
	s, err := p.term(false)
	if err != nil {
		return err
	}
	for {
		pred, err := p.term(true)
		if err != nil {
			return err
		}
		for {
			o, err := p.term(false)
			if err != nil {
				return err
			}
			p.q.Patterns = append(p.q.Patterns, Pattern{S: s, P: pred, O: o})
			if !p.accept(",") {
				break
			}
		}
		if !p.accept(";") {
			return nil
		}
		// A dangling ';' before '.' or '}' is allowed.
		if t := p.peek(); t.is(".") || t.is("}") {
			return nil
		}
	}
}

func (p *parser) term(predicate bool) (Term, error) {
	t := p.next()
	switch t.kind {
	case tokVar:
		return Term{Kind: TermVar, Value: t.text}, nil
	case tokIRI:
		return Term{Kind: TermIRI, Value: t.text}, nil
	case tokPName:
		iri, err := p.expand(t)
		return Term{Kind: TermIRI, Value: iri}, err
	case tokWord:
		if predicate && t.text == "a" {
			return Term{Kind: TermIRI, Value: rdfType}, nil
		}
	case tokString:
		if predicate {
			break
		}
		if p.accept("^^") {
			dt := p.next()
			iri := dt.text
			if dt.kind == tokPName {
				var err error
				if iri, err = p.expand(dt); err != nil {
					return Term{}, err
				}
			} else if dt.kind != tokIRI {
				return Term{}, p.errorf(dt, "expected datatype")
			}
			if strings.HasSuffix(iri, "#integer") {
				n, err := strconv.ParseInt(t.text, 10, 64)
				if err != nil {
					return Term{}, p.errorf(t, "bad integer literal")
				}
				return Term{Kind: TermInt, Int: n, Value: t.text}, nil
			}
		}
		return Term{Kind: TermString, Value: t.text}, nil
	case tokInt:
		if predicate {
			break
		}
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return Term{}, p.errorf(t, "bad integer")
		}
		return Term{Kind: TermInt, Int: n, Value: t.text}, nil
	}
	return Term{}, p.errorf(t, "unexpected term")
}

func (p *parser) expand(t token) (string, error) {
	prefix, local, _ := strings.Cut(t.text, ":")
	base, ok := p.q.Prefixes[prefix]
	if !ok {
		return "", p.errorf(t, "unknown prefix %q", prefix)
	}
	return base + local, nil
}

func (p *parser) orExpr() (Expr, error) {
	l, err := p.andExpr()
	if err != nil {
		return nil, err
	}
	for p.accept("||") {
		r, err := p.andExpr()
		if err != nil {
			return nil, err
		}
		l = Binary{Op: "||", L: l, R: r}
	}
	return l, nil
}

func (p *parser) andExpr() (Expr, error) {
	l, err := p.relExpr()
	if err != nil {
		return nil, err
	}
	for p.accept("&&") {
		r, err := p.relExpr()
		if err != nil {
			return nil, err
		}
		l = Binary{Op: "&&", L: l, R: r}
	}
	return l, nil
}

var comparisons = []string{"=", "!=", "<", ">", "<=", ">="}

func (p *parser) relExpr() (Expr, error) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	for _, op := range comparisons {
		if p.accept(op) {
			r, err := p.unary()
			if err != nil {
				return nil, err
			}
			return Binary{Op: op, L: l, R: r}, nil
		}
	}
	return l, nil
}

func (p *parser) unary() (Expr, error) {
	t := p.peek()
	switch {
	case t.is("!"):
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Not{X: x}, nil
	case t.is("("):
		p.next()
		e, err := p.orExpr()
		if err != nil {
			return nil, err
		}
		return e, p.expect(")")
	case t.is("STRSTARTS") || t.is("CONTAINS") || t.is("STR"):
		p.next()
		if err := p.expect("("); err != nil {
			return nil, err
		}
		call := Call{Fn: strings.ToUpper(t.text)}
		for {
			arg, err := p.orExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if !p.accept(",") {
				break
			}
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		want := 2
		if call.Fn == "STR" {
			want = 1
		}
		if len(call.Args) != want {
			return nil, p.errorf(t, "%s takes %d arguments", call.Fn, want)
		}
		return call, nil
	}
	term, err := p.term(false)
	if err != nil {
		return nil, err
	}
	return Operand{Term: term}, nil
}
