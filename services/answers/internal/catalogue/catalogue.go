// Package catalogue holds the ten canonical questions and the keywords that
// route a free-text request to each of them. The data is embedded in the
// binary and versioned alongside the code.
package catalogue

import (
	_ "embed"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/jredh-dev/semweb/services/answers/internal/normalize"
)

// Size is the number of canonical questions every backend answers.
const Size = 10

//go:embed catalogue.yaml
var raw []byte

// Entry is one canonical question.
type Entry struct {
	ID       string   `yaml:"id" json:"id"`
	Title    string   `yaml:"title" json:"title"`
	Question string   `yaml:"question" json:"question"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Catalogue is the ordered list of canonical questions.
type Catalogue struct {
	Version int     `yaml:"version" json:"version"`
	Entries []Entry `yaml:"questions" json:"questions"`
}

// Load parses and validates the embedded catalogue.
func Load() (*Catalogue, error) {
	return Parse(raw)
}

// Parse decodes a catalogue document and validates it.
func Parse(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "decode catalogue")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that the catalogue has exactly Size entries with unique
// ids and titles, and that every entry carries at least one keyword and no
// keyword twice (compared after normalization).
func (c *Catalogue) Validate() error {
	if len(c.Entries) != Size {
		return errors.Newf("catalogue has %d entries, want %d", len(c.Entries), Size)
	}
	ids := make(map[string]bool, len(c.Entries))
	titles := make(map[string]bool, len(c.Entries))
	for i, e := range c.Entries {
		if strings.TrimSpace(e.ID) == "" {
			return errors.Newf("catalogue entry %d: missing id", i)
		}
		if strings.TrimSpace(e.Title) == "" {
			return errors.Newf("catalogue entry %s: missing title", e.ID)
		}
		if ids[e.ID] {
			return errors.Newf("catalogue entry %s: duplicate id", e.ID)
		}
		if titles[e.Title] {
			return errors.Newf("catalogue entry %s: duplicate title %q", e.ID, e.Title)
		}
		ids[e.ID], titles[e.Title] = true, true

		if len(e.Keywords) == 0 {
			return errors.Newf("catalogue entry %s: no keywords", e.ID)
		}
		seen := make(map[string]bool, len(e.Keywords))
		for _, kw := range e.Keywords {
			if strings.TrimSpace(kw) == "" {
				return errors.Newf("catalogue entry %s: blank keyword", e.ID)
			}
			n := normalize.String(strings.TrimSpace(kw))
			if seen[n] {
				return errors.Newf("catalogue entry %s: duplicate keyword %q", e.ID, kw)
			}
			seen[n] = true
		}
	}
	return nil
}

// Get returns the entry with the given id.
func (c *Catalogue) Get(id string) (Entry, bool) {
	for _, e := range c.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}
