// Package normalize folds text into the form used for keyword matching.
// Questions arrive in French with or without accents and in any case;
// both the rule keywords and the incoming request go through String so
// that "Équipe", "equipe" and "ÉQUIPE" compare equal.
package normalize

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// String lower-cases s and strips combining marks after compatibility
// decomposition. Letters, digits, spaces and punctuation are kept as is.
//
// Lower-casing runs last: NFKD can expand a compatibility character into
// upper-case letters (℡ → TEL), and folding after the decomposition keeps
// String idempotent.
func String(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(folder(), s)
	if err != nil {
		// The chain only fails on invalid transformer state, never on input.
		return s
	}
	return out
}

// All applies String to every element, returning a new slice.
func All(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = String(s)
	}
	return out
}

// folder builds a fresh chain per call: transform.Chain keeps internal
// buffers and is not safe for concurrent use.
func folder() transform.Transformer {
	return transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(unicode.ToLower),
	)
}
