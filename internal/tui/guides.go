package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/crowlands/crowlands/internal/session"
	"github.com/crowlands/crowlands/pkg/domain"
)

// guideChosenMsg sets the default guide for new spells.
type guideChosenMsg struct {
	id  string
	err error
}

// castWithGuideMsg switches to the cast tab with a guide and prompt preset.
type castWithGuideMsg struct {
	id     string
	prompt string
}

type guidesModel struct {
	store     *session.Store
	guides    []domain.Guide
	cursor    int
	detail    bool
	prompt    int // selected sample prompt in detail view
	preferred string
	statusMsg string
	width     int
	height    int
}

func newGuidesModel(store *session.Store, preferred string) guidesModel {
	return guidesModel{
		store:     store,
		guides:    domain.GuidesInOrder(),
		preferred: preferred,
	}
}

func (m guidesModel) Update(msg tea.Msg) (guidesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case guideChosenMsg:
		if msg.err != nil {
			m.statusMsg = "could not remember that guide"
			return m, nil
		}
		m.preferred = msg.id
		if msg.id == "" {
			m.statusMsg = "no default guide"
		} else {
			m.statusMsg = domain.Guides[msg.id].ShortName + " will guide your spells"
		}
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		if m.detail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m guidesModel) updateList(msg tea.KeyMsg) (guidesModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.guides)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		m.detail = true
		m.prompt = 0
	case "s":
		return m, m.choose(m.guides[m.cursor].ID)
	case "x":
		return m, m.choose("")
	case "c":
		return m, castWith(m.guides[m.cursor].ID, "")
	}
	return m, nil
}

func (m guidesModel) updateDetail(msg tea.KeyMsg) (guidesModel, tea.Cmd) {
	g := m.guides[m.cursor]
	switch msg.String() {
	case "esc":
		m.detail = false
	case "j", "down":
		if m.prompt < len(g.SamplePrompts)-1 {
			m.prompt++
		}
	case "k", "up":
		if m.prompt > 0 {
			m.prompt--
		}
	case "enter":
		prompt := ""
		if m.prompt < len(g.SamplePrompts) {
			prompt = g.SamplePrompts[m.prompt]
		}
		return m, castWith(g.ID, prompt)
	case "c":
		return m, castWith(g.ID, "")
	case "s":
		return m, m.choose(g.ID)
	}
	return m, nil
}

// choose persists id as the default guide. An empty id clears it.
func (m guidesModel) choose(id string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		if store == nil {
			return guideChosenMsg{id: id}
		}
		return guideChosenMsg{id: id, err: store.SaveGuide(id)}
	}
}

func castWith(id, prompt string) tea.Cmd {
	return func() tea.Msg { return castWithGuideMsg{id: id, prompt: prompt} }
}

func (m guidesModel) View() string {
	if m.detail {
		return m.viewDetail()
	}

	var b strings.Builder
	b.WriteString(" " + crowLabelStyle.Render("THE GUIDES") + "  " + crowVoiceStyle.Render("Four voices from the old rooms.") + "\n\n")
	if m.statusMsg != "" {
		b.WriteString(" " + dimStyle.Render(m.statusMsg) + "\n\n")
	}

	for i, g := range m.guides {
		cursor := "  "
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
		}
		star := " "
		if g.ID == m.preferred {
			star = goldStyle.Render("★")
		}
		name := GuideStyle(g.ID).Render(g.Name)
		title := GuideAccent(g.ID).Render(g.Title)
		b.WriteString(fmt.Sprintf("%s%s %s  %s\n", cursor, star, name, title))

		w := m.width - 6
		if w < 20 {
			w = 20
		}
		b.WriteString("     " + dimStyle.Render(truncStr(strings.Join(g.Specialties, " · "), w)) + "\n\n")
	}
	return b.String()
}

func (m guidesModel) viewDetail() string {
	g := m.guides[m.cursor]
	w := m.width - 6
	if w < 20 {
		w = 20
	}
	wrap := lipgloss.NewStyle().Width(w)

	var b strings.Builder
	b.WriteString(cardBorder("top", GuideStyle(g.ID).Render(g.Name)+" "+GuideAccent(g.ID).Render(g.Title), g.ColorScheme.Accent, m.width) + "\n")
	indent := func(s string) {
		for _, line := range strings.Split(s, "\n") {
			b.WriteString("   " + line + "\n")
		}
	}
	indent(normalStyle.Render(wrap.Render(g.Bio)))
	b.WriteString("\n")
	indent(sectionLabel("Ritual style") + " " + dimStyle.Render(g.RitualStyle))
	indent(sectionLabel("Specialties") + " " + dimStyle.Render(strings.Join(g.Specialties, ", ")))
	b.WriteString("\n")
	indent(sectionLabel("Tenets"))
	for _, t := range g.Tenets {
		indent("  " + crowVoiceStyle.Render("“"+t+"”"))
	}
	b.WriteString("\n")
	indent(sectionLabel("Ask " + g.ShortName))
	for i, p := range g.SamplePrompts {
		prefix := "  "
		style := dimStyle
		if i == m.prompt {
			prefix = accentStyle.Render("▸") + " "
			style = normalStyle
		}
		indent(prefix + style.Render(p))
	}
	b.WriteString(cardBorder("bottom", "", g.ColorScheme.Accent, m.width) + "\n")
	if m.statusMsg != "" {
		b.WriteString(" " + dimStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}

func sectionLabel(s string) string {
	return metaStyle.Bold(true).Render(s)
}

func (m guidesModel) helpKeys() string {
	if m.detail {
		return helpEntry("j/k", "prompt") + "  " + helpEntry("enter", "cast prompt") + "  " + helpEntry("c", "cast") + "  " +
			helpEntry("s", "set default") + "  " + helpEntry("esc", "back")
	}
	return helpEntry("1-4", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "meet") + "  " +
		helpEntry("c", "cast") + "  " + helpEntry("s", "set default") + "  " + helpEntry("x", "clear") + "  " + helpEntry("?", "help")
}
