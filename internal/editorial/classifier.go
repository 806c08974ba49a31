package editorial

import (
	"strings"

	"golang.org/x/text/cases"

	"FeaturedSelector/internal/domain"
)

// Classify maps an item to one category. The first matching rule wins:
// commerce host or origin, nature, tech, system failure, gravity, then human behaviour.
func Classify(item domain.Item) domain.Category {
	if isCommerceSource(item) {
		return domain.CategoryCommerce
	}

	title := newText(item.Title)
	switch {
	case natureLexicon.matches(title):
		return domain.CategoryNature
	case techLexicon.matches(title):
		return domain.CategoryTech
	case failureLexicon.matches(title):
		return domain.CategorySystemFailure
	case gravityLexicon.matches(title):
		return domain.CategoryGravity
	default:
		return domain.CategoryHumanBehavior
	}
}

// IsVetoed reports whether the title carries severe-harm terms. It reads the title only.
func IsVetoed(item domain.Item) bool {
	return vetoLexicon.Match(item.Title)
}

// IsGraphic reports graphic terms that lower the score without vetoing.
func IsGraphic(item domain.Item) bool {
	return graphicLexicon.Match(item.Title)
}

func isCommerceSource(item domain.Item) bool {
	fold := cases.Fold()
	host := fold.String(item.Host())
	link := fold.String(item.URL)
	for _, h := range commerceHosts {
		if strings.Contains(host, h) || strings.Contains(link, h) {
			return true
		}
	}

	origin := strings.TrimPrefix(fold.String(strings.TrimSpace(item.Origin)), "r/")
	for _, tag := range commerceTags {
		if origin == tag {
			return true
		}
	}
	return false
}
