package selection

import (
	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/prng"
)

// DefaultNotes is the rotation of weekly editorial notes.
var DefaultNotes = []domain.EditorialNote{
	{Primary: "Things got weird. We stayed.", Secondary: "Le cose si sono fatte strane. Siamo rimasti."},
	{Primary: "Small company. Zero explanations.", Secondary: "Piccola compagnia. Zero spiegazioni."},
	{Primary: "The world did its thing. We noticed.", Secondary: "Il mondo ha fatto il suo. L'abbiamo notato."},
	{Primary: "Nothing urgent. Just this.", Secondary: "Niente di urgente. Solo questo."},
	{Primary: "A quiet selection for loud days.", Secondary: "Una selezione quieta per giorni rumorosi."},
}

// noteFor picks the period's note from a generator of its own, so the note
// never shifts the section shuffles.
func noteFor(notes []domain.EditorialNote, seed uint32) *domain.EditorialNote {
	if len(notes) == 0 {
		return nil
	}
	n := notes[prng.New(seed).Intn(len(notes))]
	return &n
}
