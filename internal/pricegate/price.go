package pricegate

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"FeaturedSelector/internal/domain"
)

const (
	currency = `(?:€|\beur(?:o|os)?\b)`
	// amount is a whole digit run or thousands groups ("1.299", "2\u00a0999"), then optional cents.
	// A plain space is not a group separator: "2 129€" is a count and a price.
	amount = `(\d{1,3}(?:[.,\x{00A0}\x{202F}]\d{3})+|\d+)(?:[.,](\d{1,2}))?`
)

var (
	symbolFirst    = regexp.MustCompile(`(?i)` + currency + `\s*` + amount + `(?:\D|$)`)
	amountFirst    = regexp.MustCompile(`(?i)(?:^|\D)` + amount + `\s*` + currency)
	groupSeparator = strings.NewReplacer(".", "", ",", "", "\u00a0", "", "\u202f", "")
)

// ExtractPrice finds the first euro amount in text, e.g. "€9.99", "EUR 12",
// "12,50 €", "1.299 €". Amounts of any size are returned so that callers can
// reject them against a ceiling.
func ExtractPrice(text string) (float64, bool) {
	m := symbolFirst.FindStringSubmatch(text)
	if m == nil {
		m = amountFirst.FindStringSubmatch(text)
	}
	if m == nil {
		return 0, false
	}

	euros, err := strconv.ParseFloat(groupSeparator.Replace(m[1]), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	cents := 0.0
	switch len(m[2]) {
	case 1:
		c, _ := strconv.Atoi(m[2])
		cents = float64(c) / 10
	case 2:
		c, _ := strconv.Atoi(m[2])
		cents = float64(c) / 100
	}

	price := euros + cents
	if price <= 0 {
		return 0, false
	}
	return price, true
}

// PriceOf prefers an explicit item price, then searches title, URL and domain.
func PriceOf(c domain.Candidate) (float64, bool) {
	if c.Price != nil && *c.Price > 0 {
		return *c.Price, true
	}
	for _, src := range []string{c.Title, c.URL, c.Domain} {
		if p, ok := ExtractPrice(src); ok {
			return p, true
		}
	}
	return 0, false
}

// Band classifies the candidate's price. Prices below the core range count as acceptable.
func (r Rules) Band(c domain.Candidate) domain.PriceBand {
	price, ok := PriceOf(c)
	if !ok {
		return domain.BandUnknown
	}
	switch {
	case price >= r.CoreMin && price <= r.CoreMax:
		return domain.BandIdeal
	case price <= r.Ceiling:
		return domain.BandAcceptable
	default:
		return domain.BandReject
	}
}

// Admissible is the hard gate: never above the ceiling, and unknown prices only
// when allowed and the score clears the threshold.
func (r Rules) Admissible(c domain.Candidate) bool {
	switch r.Band(c) {
	case domain.BandIdeal, domain.BandAcceptable:
		return true
	case domain.BandUnknown:
		return r.AllowUnknown && c.Score >= r.MinScore
	default:
		return false
	}
}
