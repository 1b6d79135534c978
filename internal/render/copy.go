package render

import (
	"fmt"
	"strings"

	"github.com/crowlands/crowlands/pkg/domain"
)

// CopyText is the plain-text template written to the clipboard: title,
// introduction, materials, numbered steps and spoken words.
func CopyText(s domain.Spell) string {
	if s.Kind != domain.SpellStructured || s.Document == nil {
		return strings.TrimSpace(s.Raw) + "\n"
	}
	doc := s.Document
	var b strings.Builder

	b.WriteString(s.Title() + "\n")
	if doc.Introduction != "" {
		b.WriteString("\n" + doc.Introduction + "\n")
	}
	if len(doc.Materials) > 0 {
		b.WriteString("\nMaterials:\n")
		for _, m := range doc.Materials {
			b.WriteString("- " + m.Name + "\n")
		}
	}
	if len(doc.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for i, st := range doc.Steps {
			fmt.Fprintf(&b, "%d. %s: %s\n", stepNumber(st, i), st.Title, st.Instruction)
		}
	}
	if !doc.SpokenWords.Empty() {
		w := doc.SpokenWords
		b.WriteString("\nSpoken words:\n")
		if w.Invocation != "" {
			b.WriteString("Invocation: " + w.Invocation + "\n")
		}
		if w.MainIncantation != "" {
			b.WriteString("Incantation: " + w.MainIncantation + "\n")
		}
		if w.Closing != "" {
			b.WriteString("Closing: " + w.Closing + "\n")
		}
	}
	return b.String()
}
