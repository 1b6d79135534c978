package render

import (
	"fmt"
	"strings"

	"github.com/crowlands/crowlands/pkg/domain"
)

// Markdown renders the page in the given mode. Degraded pages always render
// the raw text alone.
func Markdown(p Page, mode Mode, opts FullOptions) string {
	if p.Degraded() {
		return RawMarkdown(p.Spell.Raw)
	}
	if mode == ModeCard && p.Spell.Document.TarotCard != nil {
		return CardMarkdown(p)
	}
	return FullMarkdown(p, opts)
}

// RawMarkdown shows unparsed model output verbatim as an indented block.
func RawMarkdown(raw string) string {
	var b strings.Builder
	b.WriteString("# Untitled working\n\n")
	b.WriteString("_The spirits spoke plainly this time._\n\n")
	for _, line := range strings.Split(strings.TrimRight(raw, "\n"), "\n") {
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// CardMarkdown is the condensed tarot-card summary.
func CardMarkdown(p Page) string {
	doc := p.Spell.Document
	card := doc.TarotCard
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	if p.Guide != nil {
		fmt.Fprintf(&b, "_%s, %s_\n\n", p.Guide.Name, p.Guide.Title)
	}
	fmt.Fprintf(&b, "## %s\n\n", cardHeading(card))
	if card.Meaning != "" {
		b.WriteString(card.Meaning + "\n\n")
	}
	if card.Imagery != "" {
		fmt.Fprintf(&b, "> %s\n\n", card.Imagery)
	}
	if len(card.Keywords) > 0 {
		fmt.Fprintf(&b, "**%s**\n\n", strings.Join(card.Keywords, " · "))
	}
	if doc.SpokenWords != nil && doc.SpokenWords.MainIncantation != "" {
		fmt.Fprintf(&b, "*%s*\n\n", doc.SpokenWords.MainIncantation)
	}
	fmt.Fprintf(&b, "%d materials · %d steps\n", len(doc.Materials), len(doc.Steps))
	return b.String()
}

func cardHeading(c *domain.TarotCard) string {
	h := c.Name
	if c.Number != "" {
		h = c.Number + " · " + h
	}
	if !c.Upright {
		h += " (reversed)"
	}
	if c.Arcana != "" {
		h += " · " + c.Arcana
	}
	return h
}

// FullMarkdown renders every section the spell carries.
func FullMarkdown(p Page, opts FullOptions) string {
	doc := p.Spell.Document
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	if doc.Subtitle != "" {
		fmt.Fprintf(&b, "_%s_\n\n", doc.Subtitle)
	}
	if p.Guide != nil {
		fmt.Fprintf(&b, "Guided by **%s**, %s\n\n", p.Guide.Name, p.Guide.Title)
	}
	if doc.Introduction != "" {
		b.WriteString(doc.Introduction + "\n\n")
	}
	if doc.TarotCard != nil {
		fmt.Fprintf(&b, "**Card:** %s\n\n", cardHeading(doc.TarotCard))
	}

	if t := doc.Timing; t != nil {
		var parts []string
		for _, s := range []string{t.MoonPhase, t.Day, t.TimeOfDay} {
			if s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 || t.Note != "" {
			b.WriteString("## Timing\n\n")
			if len(parts) > 0 {
				b.WriteString(strings.Join(parts, " · ") + "\n\n")
			}
			if t.Note != "" {
				b.WriteString(t.Note + "\n\n")
			}
		}
	}

	if len(doc.Materials) > 0 {
		b.WriteString("## Materials\n\n")
		for _, m := range doc.Materials {
			line := "- "
			if m.Icon != "" {
				line += m.Icon + " "
			}
			line += m.Name
			if m.Note != "" {
				line += " _(" + m.Note + ")_"
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if len(doc.Steps) > 0 {
		b.WriteString("## Steps\n\n")
		for i, s := range doc.Steps {
			n := stepNumber(s, i)
			fmt.Fprintf(&b, "%d. ", n)
			if opts.Done != nil {
				if opts.Done[n] {
					b.WriteString("[x] ")
				} else {
					b.WriteString("[ ] ")
				}
			}
			fmt.Fprintf(&b, "**%s**: %s", s.Title, s.Instruction)
			if s.Duration != "" {
				fmt.Fprintf(&b, " _(%s)_", s.Duration)
			}
			b.WriteString("\n")
			if s.Note != "" {
				fmt.Fprintf(&b, "   %s\n", s.Note)
			}
		}
		b.WriteString("\n")
	}

	if !doc.SpokenWords.Empty() {
		w := doc.SpokenWords
		b.WriteString("## Spoken words\n\n")
		for _, l := range []struct{ label, text string }{
			{"Invocation", w.Invocation},
			{"Incantation", w.MainIncantation},
			{"Closing", w.Closing},
		} {
			if l.text != "" {
				fmt.Fprintf(&b, "**%s**\n\n> %s\n\n", l.label, l.text)
			}
		}
	}

	if h := doc.HistoricalContext; h != nil {
		writeHistory(&b, h, opts.ShowHistory)
	}

	if len(doc.Variations) > 0 {
		b.WriteString("## Variations\n\n")
		for _, v := range doc.Variations {
			fmt.Fprintf(&b, "- **%s**", v.Title)
			if v.Description != "" {
				b.WriteString(": " + v.Description)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(doc.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range doc.Warnings {
			b.WriteString("- " + w + "\n")
		}
		b.WriteString("\n")
	}

	if w := doc.SuggestedWard; w != nil {
		b.WriteString("## Suggested ward\n\n")
		fmt.Fprintf(&b, "**%s**", w.Name)
		if w.Purpose != "" {
			b.WriteString(": " + w.Purpose)
		}
		b.WriteString("\n\n")
		if w.Description != "" {
			b.WriteString(w.Description + "\n\n")
		}
	}
	return b.String()
}

func writeHistory(b *strings.Builder, h *domain.HistoricalContext, expanded bool) {
	b.WriteString("## Historical context\n\n")
	if !expanded {
		b.WriteString("_Collapsed. Press h to expand._\n\n")
		return
	}
	var head []string
	for _, s := range []string{h.Era, h.Tradition} {
		if s != "" {
			head = append(head, s)
		}
	}
	if len(head) > 0 {
		fmt.Fprintf(b, "_%s_\n\n", strings.Join(head, " · "))
	}
	if h.Summary != "" {
		b.WriteString(h.Summary + "\n\n")
	}
	for _, f := range h.Figures {
		fmt.Fprintf(b, "- **%s**", f.Name)
		if f.Role != "" {
			b.WriteString(", " + f.Role)
		}
		if f.Note != "" {
			b.WriteString(": " + f.Note)
		}
		b.WriteString("\n")
	}
	if len(h.Figures) > 0 {
		b.WriteString("\n")
	}
	for _, c := range h.Citations {
		if c.Quote != "" {
			fmt.Fprintf(b, "> %s\n\n", c.Quote)
		}
		src := c.Source
		if c.Author != "" {
			src = c.Author + ", " + src
		}
		if c.Year != "" {
			src += " (" + c.Year + ")"
		}
		fmt.Fprintf(b, "Source: %s\n\n", src)
	}
}

// stepNumber falls back to the 1-based position when the model omitted the
// number.
func stepNumber(s domain.Step, i int) int {
	if s.Number > 0 {
		return s.Number
	}
	return i + 1
}

// StepNumbers lists the checklist keys of a spell in display order.
func StepNumbers(s domain.Spell) []int {
	if s.Kind != domain.SpellStructured || s.Document == nil {
		return nil
	}
	out := make([]int, len(s.Document.Steps))
	for i, st := range s.Document.Steps {
		out[i] = stepNumber(st, i)
	}
	return out
}

// WardMarkdown renders a ward.
func WardMarkdown(w domain.Ward) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", w.Name)
	if w.Purpose != "" {
		fmt.Fprintf(&b, "_%s_\n\n", w.Purpose)
	}
	if w.Description != "" {
		b.WriteString(w.Description + "\n\n")
	}
	if len(w.Materials) > 0 {
		b.WriteString("## Materials\n\n")
		for _, m := range w.Materials {
			b.WriteString("- " + m + "\n")
		}
		b.WriteString("\n")
	}
	if len(w.Instructions) > 0 {
		b.WriteString("## Instructions\n\n")
		for i, in := range w.Instructions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, in)
		}
		b.WriteString("\n")
	}
	if w.Placement != "" {
		fmt.Fprintf(&b, "**Placement:** %s\n\n", w.Placement)
	}
	if w.ActivationWords != "" {
		fmt.Fprintf(&b, "**Activation**\n\n> %s\n\n", w.ActivationWords)
	}
	if w.HistoricalNote != "" {
		fmt.Fprintf(&b, "## History\n\n%s\n", w.HistoricalNote)
	}
	return b.String()
}

// TarotMarkdown renders a reading.
func TarotMarkdown(r domain.TarotReading) string {
	var b strings.Builder
	b.WriteString("# A reading with Corrie\n\n")
	if r.Question != "" {
		fmt.Fprintf(&b, "> %s\n\n", r.Question)
	}
	for _, c := range r.Cards {
		head := c.Name
		if !c.Upright {
			head += " (reversed)"
		}
		if c.Position != "" {
			head = c.Position + ": " + head
		}
		fmt.Fprintf(&b, "## %s\n\n", head)
		if c.Arcana != "" {
			fmt.Fprintf(&b, "_%s_\n\n", c.Arcana)
		}
		if c.Meaning != "" {
			b.WriteString(c.Meaning + "\n\n")
		}
	}
	if r.Interpretation != "" {
		fmt.Fprintf(&b, "## Interpretation\n\n%s\n\n", r.Interpretation)
	}
	if r.Advice != "" {
		fmt.Fprintf(&b, "## Advice\n\n%s\n\n", r.Advice)
	}
	if r.Closing != "" {
		fmt.Fprintf(&b, "*%s*\n", r.Closing)
	}
	return b.String()
}
