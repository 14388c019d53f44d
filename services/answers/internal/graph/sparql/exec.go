package sparql

import (
	"context"
	"database/sql"
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Querier is the subset of *sql.DB used to run compiled queries.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Binding maps projected variable names to their values: string, int64,
// float64 or nil.
type Binding map[string]any

// String returns the value of v as text, or "" when unbound.
func (b Binding) String(v string) string {
	return Format(b[v])
}

// Int returns the value of v as an int.
func (b Binding) Int(v string) (int, bool) {
	switch x := b[v].(type) {
	case int64:
		return int(x), true
	case float64:
		if x == math.Trunc(x) {
			return int(x), true
		}
	case string:
		n, err := strconv.Atoi(x)
		return n, err == nil
	}
	return 0, false
}

// Format renders a stored value as text.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

// Exec parses, compiles and runs query against db.
func Exec(ctx context.Context, db Querier, query string) ([]Binding, error) {
	q, err := Parse(query)
	if err != nil {
		return nil, err
	}
	stmt, args, err := q.Compile()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "sparql: run query")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "sparql: columns")
	}

	out := []Binding{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "sparql: scan")
		}
		b := make(Binding, len(cols))
		for i, c := range cols {
			if raw, ok := vals[i].([]byte); ok {
				vals[i] = string(raw)
			}
			b[c] = vals[i]
		}
		out = append(out, b)
	}
	return out, errors.Wrap(rows.Err(), "sparql: rows")
}
