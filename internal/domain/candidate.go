package domain

import (
	"strconv"
	"time"
)

// Judgment is an approved two-language annotation phrase.
type Judgment struct {
	Primary      string   `json:"primary" yaml:"en"`
	Secondary    string   `json:"secondary" yaml:"it"`
	Category     Category `json:"category" yaml:"category"`
	Level        int      `json:"level,omitempty" yaml:"level"`
	Shareability float64  `json:"shareability,omitempty" yaml:"shareability"`
	// Fallback marks phrases synthesised outside the vocabulary store.
	Fallback bool `json:"fallback,omitempty" yaml:"-"`
}

// Candidate is an Item enriched by the approval pipeline.
// Only editorial.Approver builds candidates.
type Candidate struct {
	Item
	Category Category `json:"category"`
	Judgment Judgment `json:"judgment"`
	Score    float64  `json:"score"`
	Level    int      `json:"level"`
}

// IsCommerce reports whether the candidate belongs to the oddities side.
func (c Candidate) IsCommerce() bool {
	return c.Category == CategoryCommerce
}

// PriceBand classifies a commerce candidate's price.
type PriceBand string

const (
	BandIdeal      PriceBand = "ideal"
	BandAcceptable PriceBand = "acceptable"
	BandUnknown    PriceBand = "unknown"
	BandReject     PriceBand = "reject"
)

// EditorialNote is the bilingual line attached to a weekly set.
type EditorialNote struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// FeaturedSet is the output of one selection run.
type FeaturedSet struct {
	RunID       string         `json:"runId,omitempty"`
	Period      string         `json:"period"`
	Seed        uint32         `json:"seed"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Hero        *Candidate     `json:"hero"`
	Articles    []Candidate    `json:"articles"`
	Oddities    []Candidate    `json:"oddities"`
	Note        *EditorialNote `json:"note,omitempty"`
}

// Placement pairs a featured candidate with its position label.
type Placement struct {
	Where     string
	Candidate Candidate
}

// Placements flattens hero, articles and oddities in publication order.
func (f FeaturedSet) Placements() []Placement {
	out := make([]Placement, 0, 1+len(f.Articles)+len(f.Oddities))
	if f.Hero != nil {
		out = append(out, Placement{Where: "hero", Candidate: *f.Hero})
	}
	for i, c := range f.Articles {
		out = append(out, Placement{Where: placementLabel("article", i), Candidate: c})
	}
	for i, c := range f.Oddities {
		out = append(out, Placement{Where: placementLabel("oddity", i), Candidate: c})
	}
	return out
}

// Size is the number of featured candidates.
func (f FeaturedSet) Size() int {
	n := len(f.Articles) + len(f.Oddities)
	if f.Hero != nil {
		n++
	}
	return n
}

// Empty reports whether nothing was featured.
func (f FeaturedSet) Empty() bool {
	return f.Size() == 0
}

func placementLabel(section string, idx int) string {
	return section + "#" + strconv.Itoa(idx+1)
}
