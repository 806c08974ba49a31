package editorial

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Lexicon is a keyword set. Words match whole tokens only; Stems match anywhere.
type Lexicon struct {
	Words []string
	Stems []string
}

// text is a case-folded title prepared for repeated lexicon tests.
type text struct {
	folded string
	tokens map[string]struct{}
}

func newText(s string) text {
	folded := cases.Fold().String(s)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}
	return text{folded: folded, tokens: tokens}
}

// matches reports whether t contains any term of the lexicon.
func (l Lexicon) matches(t text) bool {
	for _, w := range l.Words {
		if _, ok := t.tokens[w]; ok {
			return true
		}
	}
	for _, s := range l.Stems {
		if strings.Contains(t.folded, s) {
			return true
		}
	}
	return false
}

// Match is the exported form of matches for callers holding raw text.
func (l Lexicon) Match(s string) bool {
	return l.matches(newText(s))
}

var (
	commerceHosts = []string{"amazon.", "amzn.", "etsy.", "ebay.", "aliexpress.", "temu.", "shopify."}
	commerceTags  = []string{"shutupandtakemymoney", "gadgets", "buyitforlife"}

	natureLexicon = Lexicon{
		Words: []string{"cat", "cats", "dog", "dogs", "owl", "fox", "bee", "bees", "seal", "seals", "bear", "bears"},
		Stems: []string{"whale", "shark", "crocodile", "octopus", "penguin", "bird", "spider", "snake", "eagle", "wolf", "wolves", "kitten", "puppy"},
	}
	techLexicon = Lexicon{
		Words: []string{"ai", "vr", "ar", "lab", "chip", "nasa"},
		Stems: []string{"robot", "research", "scientist", "prototype", "device", "engineer", "battery", "space", "quantum", "satellite"},
	}
	failureLexicon = Lexicon{
		Words: []string{"bug", "bugs"},
		Stems: []string{"leak", "breach", "outage", "failure", "crash", "broken", "malfunction", "recall", "downtime"},
	}
	gravityLexicon = Lexicon{
		Words: []string{"war", "wars"},
		Stems: []string{"invasion", "genocide", "massacre", "hostage", "terror", "bombing", "airstrike"},
	}

	vetoLexicon = Lexicon{
		Words: []string{"war", "wars", "rape", "dead"},
		Stems: []string{
			"deadly", "murder", "killed", "kills", "killing", "death", "suicide", "terror", "hostage",
			"genocide", "massacre", "shooting", "bomb", "tortur", "behead", "child abuse", "assault",
		},
	}

	graphicLexicon = Lexicon{
		Stems: []string{"blood", "corpse", "assault", "mutilation", "gore"},
	}
)
