package sparql

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Table layout the compiled SQL runs against. Object kinds: 0 IRI, 1 blank
// node, 2 literal.
const (
	tableName   = "triples"
	kindIRI     = 0
	kindLiteral = 2
)

type compiler struct {
	q     *Query
	vars  map[string]string // variable -> first column it is bound to
	order []string          // variables in order of first appearance
	conds []string
	args  []any
}

// Compile translates the query to one SQL SELECT over the triples table.
// Each triple pattern becomes a self-join alias; shared variables become
// equality conditions between columns.
func (q *Query) Compile() (string, []any, error) {
	if len(q.Patterns) == 0 {
		return "", nil, errors.New("sparql: empty WHERE clause")
	}
	c := &compiler{q: q, vars: map[string]string{}}

	from := make([]string, len(q.Patterns))
	for i, pat := range q.Patterns {
		alias := fmt.Sprintf("t%d", i)
		from[i] = tableName + " AS " + alias
		if err := c.bind(pat.S, alias, "s"); err != nil {
			return "", nil, err
		}
		if err := c.bind(pat.P, alias, "p"); err != nil {
			return "", nil, err
		}
		if err := c.bind(pat.O, alias, "o"); err != nil {
			return "", nil, err
		}
	}

	for _, f := range q.Filters {
		sql, args, err := c.expr(f)
		if err != nil {
			return "", nil, err
		}
		c.conds = append(c.conds, sql)
		c.args = append(c.args, args...)
	}

	cols, aliases, err := c.projection()
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if q.Distinct {
		b.WriteString("DISTINCT ")
	}
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(" FROM ")
	b.WriteString(strings.Join(from, ", "))
	if len(c.conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(c.conds, " AND "))
	}

	if len(q.GroupBy) > 0 {
		keys := make([]string, len(q.GroupBy))
		for i, v := range q.GroupBy {
			col, ok := c.vars[v]
			if !ok {
				return "", nil, errors.Newf("sparql: GROUP BY unbound variable ?%s", v)
			}
			keys[i] = col
		}
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(keys, ", "))
	}

	if len(q.OrderBy) > 0 {
		keys := make([]string, len(q.OrderBy))
		for i, k := range q.OrderBy {
			col, ok := c.vars[k.Var]
			if aliases[k.Var] {
				col, ok = quote(k.Var), true
			}
			if !ok {
				return "", nil, errors.Newf("sparql: ORDER BY unbound variable ?%s", k.Var)
			}
			if k.Desc {
				col += " DESC"
			}
			keys[i] = col
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(keys, ", "))
	}

	if q.Limit >= 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	if q.Offset > 0 {
		if q.Limit < 0 {
			b.WriteString(" LIMIT -1")
		}
		fmt.Fprintf(&b, " OFFSET %d", q.Offset)
	}
	return b.String(), c.args, nil
}

func (c *compiler) bind(t Term, alias, field string) error {
	col := alias + "." + field
	switch t.Kind {
	case TermVar:
		if prev, ok := c.vars[t.Value]; ok {
			c.conds = append(c.conds, col+" = "+prev)
			return nil
		}
		c.vars[t.Value] = col
		c.order = append(c.order, t.Value)
	case TermIRI:
		c.conds = append(c.conds, col+" = ?")
		c.args = append(c.args, t.Value)
		if field == "o" {
			c.conds = append(c.conds, fmt.Sprintf("%s.kind = %d", alias, kindIRI))
		}
	case TermString, TermInt:
		if field != "o" {
			return errors.Newf("sparql: literal %q in %s position", t.Value, field)
		}
		c.conds = append(c.conds, col+" = ?", fmt.Sprintf("%s.kind = %d", alias, kindLiteral))
		c.args = append(c.args, literal(t))
	}
	return nil
}

func literal(t Term) any {
	if t.Kind == TermInt {
		return t.Int
	}
	return t.Value
}

// projection returns the select list and the set of aggregate aliases.
func (c *compiler) projection() ([]string, map[string]bool, error) {
	q := c.q
	aliases := map[string]bool{}

	if q.Star {
		if len(q.GroupBy) > 0 {
			return nil, nil, errors.New("sparql: SELECT * with GROUP BY")
		}
		cols := make([]string, len(c.order))
		for i, v := range c.order {
			cols[i] = c.vars[v] + " AS " + quote(v)
		}
		return cols, aliases, nil
	}

	grouped := len(q.GroupBy) > 0
	for _, p := range q.Projections {
		if p.Agg != "" {
			grouped = true
		}
	}
	inGroup := map[string]bool{}
	for _, v := range q.GroupBy {
		inGroup[v] = true
	}

	cols := make([]string, 0, len(q.Projections))
	for _, p := range q.Projections {
		if p.Agg == "" {
			col, ok := c.vars[p.Var]
			if !ok {
				return nil, nil, errors.Newf("sparql: unbound variable ?%s", p.Var)
			}
			if grouped && !inGroup[p.Var] {
				return nil, nil, errors.Newf("sparql: ?%s must be grouped or aggregated", p.Var)
			}
			cols = append(cols, col+" AS "+quote(p.Var))
			continue
		}

		if _, clash := c.vars[p.Var]; clash || aliases[p.Var] {
			return nil, nil, errors.Newf("sparql: ?%s is already bound", p.Var)
		}
		arg := "*"
		if p.Arg != "" {
			col, ok := c.vars[p.Arg]
			if !ok {
				return nil, nil, errors.Newf("sparql: unbound variable ?%s", p.Arg)
			}
			arg = col
			if p.Distinct {
				arg = "DISTINCT " + col
			}
		}
		cols = append(cols, p.Agg+"("+arg+") AS "+quote(p.Var))
		aliases[p.Var] = true
	}
	return cols, aliases, nil
}

var sqlOps = map[string]string{
	"=": "=", "!=": "<>", "<": "<", ">": ">", "<=": "<=", ">=": ">=",
	"&&": "AND", "||": "OR",
}

func (c *compiler) expr(e Expr) (string, []any, error) {
	switch e := e.(type) {
	case Operand:
		switch e.Term.Kind {
		case TermVar:
			col, ok := c.vars[e.Term.Value]
			if !ok {
				return "", nil, errors.Newf("sparql: FILTER on unbound variable ?%s", e.Term.Value)
			}
			return col, nil, nil
		default:
			return "?", []any{literal(e.Term)}, nil
		}
	case Not:
		x, args, err := c.expr(e.X)
		if err != nil {
			return "", nil, err
		}
		return "(NOT " + x + ")", args, nil
	case Binary:
		l, largs, err := c.expr(e.L)
		if err != nil {
			return "", nil, err
		}
		r, rargs, err := c.expr(e.R)
		if err != nil {
			return "", nil, err
		}
		return "(" + l + " " + sqlOps[e.Op] + " " + r + ")", append(largs, rargs...), nil
	case Call:
		parts := make([]string, len(e.Args))
		var args []any
		for i, a := range e.Args {
			s, aa, err := c.expr(a)
			if err != nil {
				return "", nil, err
			}
			parts[i] = s
			args = append(args, aa...)
		}
		switch e.Fn {
		case "STR":
			return "CAST(" + parts[0] + " AS TEXT)", args, nil
		case "STRSTARTS":
			return "(instr(CAST(" + parts[0] + " AS TEXT), " + parts[1] + ") = 1)", args, nil
		case "CONTAINS":
			return "(instr(CAST(" + parts[0] + " AS TEXT), " + parts[1] + ") > 0)", args, nil
		}
		return "", nil, errors.Newf("sparql: unsupported function %s", e.Fn)
	}
	return "", nil, errors.Newf("sparql: unsupported expression %T", e)
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
