package catalogue

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	require.Len(t, c.Entries, Size)
	assert.Equal(t, 1, c.Version)

	for i, e := range c.Entries {
		assert.Equal(t, fmt.Sprintf("Q%d", i+1), e.ID)
		assert.Equal(t, fmt.Sprintf("Question %d", i+1), e.Title)
		assert.NotEmpty(t, e.Question)
		assert.NotEmpty(t, e.Keywords)
	}
}

func TestLoad_Keywords(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	want := map[string][]string{
		"Q1":  {"première", "classement"},
		"Q5":  {"équipes", "marqué", "plus de 70 buts", "saison"},
		"Q6":  {"matchs", "novembre 2008"},
		"Q8":  {"classement", "équipes", "nombre", "victoires", "extérieur"},
		"Q9":  {"moyenne", "buts marqués", "extérieur", "équipes", "top 6"},
		"Q10": {"confrontations", "historiques", "championnat"},
	}
	for id, kws := range want {
		e, ok := c.Get(id)
		require.True(t, ok, id)
		assert.Equal(t, kws, e.Keywords, id)
	}
}

func TestGet_Unknown(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	_, ok := c.Get("Q11")
	assert.False(t, ok)
}

// build renders a ten-entry document, letting the caller tamper with one entry.
func build(edit func(i int, id, title, kws *string)) []byte {
	var b strings.Builder
	b.WriteString("version: 1\nquestions:\n")
	for i := 1; i <= Size; i++ {
		id, title, kws := fmt.Sprintf("Q%d", i), fmt.Sprintf("Question %d", i), "[alpha, beta]"
		if edit != nil {
			edit(i, &id, &title, &kws)
		}
		fmt.Fprintf(&b, "  - id: %q\n    title: %q\n    question: \"q\"\n    keywords: %s\n", id, title, kws)
	}
	return []byte(b.String())
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{"valid", build(nil), ""},
		{"empty keywords", build(func(i int, _, _, kws *string) {
			if i == 3 {
				*kws = "[]"
			}
		}), "no keywords"},
		{"blank keyword", build(func(i int, _, _, kws *string) {
			if i == 4 {
				*kws = `["  "]`
			}
		}), "blank keyword"},
		{"duplicate keyword", build(func(i int, _, _, kws *string) {
			if i == 6 {
				*kws = `["Équipe", "buts", "EQUIPE"]`
			}
		}), "duplicate keyword"},
		{"duplicate id", build(func(i int, id, _, _ *string) {
			if i == 2 {
				*id = "Q1"
			}
		}), "duplicate id"},
		{"duplicate title", build(func(i int, _, title, _ *string) {
			if i == 2 {
				*title = "Question 1"
			}
		}), "duplicate title"},
		{"missing id", build(func(i int, id, _, _ *string) {
			if i == 5 {
				*id = ""
			}
		}), "missing id"},
		{"too few", []byte("version: 1\nquestions:\n  - id: Q1\n    title: T\n    keywords: [a]\n"), "want 10"},
		{"not yaml", []byte("questions: [::"), "decode catalogue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse(tt.data)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Len(t, c.Entries, Size)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
