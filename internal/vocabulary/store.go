// Package vocabulary holds the immutable table of approved judgment phrases.
// A Store is built once and passed explicitly to every component that reads it.
package vocabulary

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"FeaturedSelector/internal/domain"
)

const defaultMaxWords = 7

//go:embed default.yaml
var defaultVocabulary []byte

// entry mirrors one row of the vocabulary file.
type entry struct {
	En           string  `yaml:"en"`
	It           string  `yaml:"it"`
	Category     string  `yaml:"category"`
	Level        int     `yaml:"level"`
	Shareability float64 `yaml:"shareability"`
}

type file struct {
	MaxWords  int      `yaml:"max_words"`
	Forbidden []string `yaml:"forbidden_phrases"`
	Allowed   []entry  `yaml:"allowed"`
}

// Store is a read-only lookup indexed by category and by primary text.
type Store struct {
	entries    []domain.Judgment
	byCategory map[domain.Category][]domain.Judgment
	byPrimary  map[string]domain.Judgment
	forbidden  []string
	maxWords   int
}

// New validates entries and builds the indexes.
func New(entries []domain.Judgment, forbidden []string, maxWords int) (*Store, error) {
	if maxWords <= 0 {
		maxWords = defaultMaxWords
	}

	s := &Store{
		byCategory: make(map[domain.Category][]domain.Judgment),
		byPrimary:  make(map[string]domain.Judgment, len(entries)),
		maxWords:   maxWords,
	}

	for i, j := range entries {
		j.Primary = strings.TrimSpace(j.Primary)
		j.Secondary = strings.TrimSpace(j.Secondary)
		j.Fallback = false

		switch {
		case j.Primary == "" || j.Secondary == "":
			return nil, fmt.Errorf("vocabulary entry %d: both languages are required", i)
		case !j.Category.Valid():
			return nil, fmt.Errorf("vocabulary entry %d (%q): unknown category %q", i, j.Primary, j.Category)
		case j.Level < 0 || j.Level > 5:
			return nil, fmt.Errorf("vocabulary entry %d (%q): level %d out of range", i, j.Primary, j.Level)
		case j.Shareability < 0 || j.Shareability > 1:
			return nil, fmt.Errorf("vocabulary entry %d (%q): shareability %.2f out of range", i, j.Primary, j.Shareability)
		}
		if _, dup := s.byPrimary[j.Primary]; dup {
			return nil, fmt.Errorf("vocabulary entry %d: duplicate phrase %q", i, j.Primary)
		}

		s.entries = append(s.entries, j)
		s.byPrimary[j.Primary] = j
		s.byCategory[j.Category] = append(s.byCategory[j.Category], j)
	}

	for _, f := range forbidden {
		if f = strings.TrimSpace(f); f != "" {
			s.forbidden = append(s.forbidden, f)
		}
	}

	return s, nil
}

// Parse reads a YAML vocabulary document.
func Parse(raw []byte) (*Store, error) {
	var doc file
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}

	entries := make([]domain.Judgment, 0, len(doc.Allowed))
	for i, e := range doc.Allowed {
		cat, err := domain.ParseCategory(e.Category)
		if err != nil {
			return nil, fmt.Errorf("vocabulary entry %d: %w", i, err)
		}
		entries = append(entries, domain.Judgment{
			Primary:      e.En,
			Secondary:    e.It,
			Category:     cat,
			Level:        e.Level,
			Shareability: e.Shareability,
		})
	}

	return New(entries, doc.Forbidden, doc.MaxWords)
}

// Load reads a vocabulary file from disk.
func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	return Parse(raw)
}

// Default returns the vocabulary compiled into the binary.
func Default() *Store {
	s, err := Parse(defaultVocabulary)
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary is invalid: %v", err))
	}
	return s
}

// ByCategory returns a copy of the entries tagged with c, in file order.
func (s *Store) ByCategory(c domain.Category) []domain.Judgment {
	list := s.byCategory[c]
	out := make([]domain.Judgment, len(list))
	copy(out, list)
	return out
}

// Lookup finds an entry by its primary text.
func (s *Store) Lookup(primary string) (domain.Judgment, bool) {
	j, ok := s.byPrimary[strings.TrimSpace(primary)]
	return j, ok
}

// Forbidden lists the didactic phrases no judgment may contain.
func (s *Store) Forbidden() []string {
	out := make([]string, len(s.forbidden))
	copy(out, s.forbidden)
	return out
}

// MaxWords is the vocabulary's own word ceiling for primary text.
func (s *Store) MaxWords() int {
	return s.maxWords
}

// Len is the number of approved entries.
func (s *Store) Len() int {
	return len(s.entries)
}
