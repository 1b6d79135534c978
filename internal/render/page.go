// Package render turns generated spells, wards and tarot readings into
// Markdown for the terminal, plain text for the clipboard and HTML for PDF
// export. Every function here is pure.
package render

import "github.com/crowlands/crowlands/pkg/domain"

// Mode is how a structured spell is displayed.
type Mode int

const (
	// ModeCard is the condensed single-card summary.
	ModeCard Mode = iota
	// ModeFull shows every section the spell carries.
	ModeFull
)

func (m Mode) String() string {
	if m == ModeCard {
		return "card"
	}
	return "full"
}

// Page is everything a grimoire page shows.
type Page struct {
	Spell       domain.Spell
	Guide       *domain.Guide // nil when no guide was chosen
	ImageBase64 string
}

// NewPage builds a page from a generation result, resolving the guide from
// the echoed archetype or, failing that, the requested guide id.
func NewPage(res domain.GenerationResult, requestedGuide string) Page {
	p := Page{Spell: res.Spell, ImageBase64: res.ImageBase64}
	id := requestedGuide
	if res.Archetype != nil && res.Archetype.ID != "" {
		id = res.Archetype.ID
	}
	if g, ok := domain.LookupGuide(id); ok {
		p.Guide = &g
	}
	return p
}

// PageFromEntry builds a page from a saved grimoire entry.
func PageFromEntry(e domain.SavedGrimoireEntry) Page {
	p := Page{Spell: e.SpellData, ImageBase64: e.ImageBase64}
	if g, ok := domain.LookupGuide(e.ArchetypeID); ok {
		p.Guide = &g
	}
	return p
}

// Degraded reports whether the page can only show raw text.
func (p Page) Degraded() bool {
	return p.Spell.Kind != domain.SpellStructured || p.Spell.Document == nil
}

// DefaultMode is Card when the spell carries a tarot card, else Full.
func DefaultMode(s domain.Spell) Mode {
	if s.Kind == domain.SpellStructured && s.Document != nil && s.Document.TarotCard != nil {
		return ModeCard
	}
	return ModeFull
}

// FullOptions carries view-local state for the full view. None of it is
// persisted.
type FullOptions struct {
	// Done marks completed steps by step number. A nil map renders the steps
	// without checkboxes.
	Done map[int]bool
	// ShowHistory expands the historical context section.
	ShowHistory bool
}
