package tui

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crowlands/crowlands/internal/render"
	"github.com/crowlands/crowlands/pkg/client"
	"github.com/crowlands/crowlands/pkg/domain"
)

type grimoireMode int

const (
	grimoireModeSpells grimoireMode = iota
	grimoireModeWards
)

type grimoireModel struct {
	client    *client.Client
	acts      *actions
	term      *render.Terminal
	mode      grimoireMode
	spells    []domain.SavedGrimoireEntry
	wards     []domain.SavedWard
	cursor    int
	detail    bool
	page      pageModel
	confirm   bool // waiting for y/n on delete
	filter    string
	editing   bool // typing a filter
	err       error
	width     int
	height    int
	loading   bool
	statusMsg string
}

type savedSpellsLoadedMsg struct {
	spells []domain.SavedGrimoireEntry
	err    error
}

type savedWardsLoadedMsg struct {
	wards []domain.SavedWard
	err   error
}

type deletedMsg struct {
	mode grimoireMode
	id   string
	err  error
}

func newGrimoireModel(c *client.Client, acts *actions) grimoireModel {
	return grimoireModel{client: c, acts: acts, loading: true}
}

func (m grimoireModel) loadSpells() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		spells, err := c.ListSpells(context.Background())
		return savedSpellsLoadedMsg{spells: spells, err: err}
	}
}

func (m grimoireModel) loadWards() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		wards, err := c.ListWards(context.Background())
		return savedWardsLoadedMsg{wards: wards, err: err}
	}
}

func (m grimoireModel) loadCurrent() tea.Cmd {
	if m.mode == grimoireModeWards {
		return m.loadWards()
	}
	return m.loadSpells()
}

func (m grimoireModel) Init() tea.Cmd {
	return m.loadCurrent()
}

func (m grimoireModel) Update(msg tea.Msg) (grimoireModel, tea.Cmd) {
	switch msg := msg.(type) {
	case savedSpellsLoadedMsg:
		m.loading = false
		m.spells = msg.spells
		m.err = msg.err
		if m.cursor >= len(m.spells) {
			m.cursor = 0
		}
		return m, nil

	case savedWardsLoadedMsg:
		m.loading = false
		m.wards = msg.wards
		m.err = msg.err
		if m.cursor >= len(m.wards) {
			m.cursor = 0
		}
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.statusMsg = failureText("delete", msg.err)
			return m, nil
		}
		m.statusMsg = "deleted"
		m.detail = false
		m.removeLocal(msg.mode, msg.id)
		return m, nil

	case savedMsg, exportedMsg:
		var cmd tea.Cmd
		m.page, cmd = m.page.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.page, _ = m.page.Update(msg)
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		if m.confirm {
			return m.updateConfirm(msg)
		}
		if m.editing {
			return m.updateFilter(msg)
		}
		if m.detail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *grimoireModel) removeLocal(mode grimoireMode, id string) {
	switch mode {
	case grimoireModeSpells:
		out := m.spells[:0:0]
		for _, s := range m.spells {
			if s.ID != id {
				out = append(out, s)
			}
		}
		m.spells = out
	case grimoireModeWards:
		out := m.wards[:0:0]
		for _, w := range m.wards {
			if w.ID != id {
				out = append(out, w)
			}
		}
		m.wards = out
	}
	if m.cursor >= m.listLen() && m.cursor > 0 {
		m.cursor = m.listLen() - 1
	}
}

// failureText is the short status line for a failed grimoire call.
func failureText(action string, err error) string {
	if client.IsStatus(err, http.StatusUnauthorized) {
		return "not logged in -- run: crowlands login"
	}
	return action + " failed, try again"
}

func (m grimoireModel) updateConfirm(msg tea.KeyMsg) (grimoireModel, tea.Cmd) {
	m.confirm = false
	if msg.String() != "y" {
		m.statusMsg = "kept"
		return m, nil
	}
	id := m.selectedID()
	if id == "" {
		return m, nil
	}
	mode, c := m.mode, m.client
	return m, func() tea.Msg {
		var err error
		if mode == grimoireModeWards {
			err = c.DeleteWard(context.Background(), id)
		} else {
			err = c.DeleteSpell(context.Background(), id)
		}
		return deletedMsg{mode: mode, id: id, err: err}
	}
}

func (m grimoireModel) updateFilter(msg tea.KeyMsg) (grimoireModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.editing = false
	case "esc":
		m.editing = false
		m.filter = ""
	default:
		m.filter = editRune(m.filter, msg.String())
	}
	m.cursor = 0
	return m, nil
}

// matches reports whether text contains the filter, ignoring case.
func (m grimoireModel) matches(text ...string) bool {
	if m.filter == "" {
		return true
	}
	f := strings.ToLower(m.filter)
	for _, t := range text {
		if strings.Contains(strings.ToLower(t), f) {
			return true
		}
	}
	return false
}

func (m grimoireModel) visibleSpells() []domain.SavedGrimoireEntry {
	if m.filter == "" {
		return m.spells
	}
	var out []domain.SavedGrimoireEntry
	for _, e := range m.spells {
		if m.matches(e.SpellData.Title(), e.ArchetypeName) {
			out = append(out, e)
		}
	}
	return out
}

func (m grimoireModel) visibleWards() []domain.SavedWard {
	if m.filter == "" {
		return m.wards
	}
	var out []domain.SavedWard
	for _, w := range m.wards {
		if m.matches(w.WardData.Name, w.Concern) {
			out = append(out, w)
		}
	}
	return out
}

func (m grimoireModel) updateList(msg tea.KeyMsg) (grimoireModel, tea.Cmd) {
	switch msg.String() {
	case "/":
		m.editing = true
		m.filter = ""
		m.cursor = 0
	case "j", "down":
		if m.cursor < m.listLen()-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if m.listLen() > 0 {
			m.detail = true
			m.page = m.openPage()
		}
	case "w":
		if m.mode == grimoireModeSpells {
			m.mode = grimoireModeWards
		} else {
			m.mode = grimoireModeSpells
		}
		m.cursor = 0
		m.detail = false
		m.filter = ""
		m.loading = true
		return m, m.loadCurrent()
	case "d":
		if m.listLen() > 0 {
			m.confirm = true
		}
	case "r":
		m.loading = true
		return m, m.loadCurrent()
	}
	return m, nil
}

func (m grimoireModel) updateDetail(msg tea.KeyMsg) (grimoireModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.detail = false
		return m, nil
	case "d":
		m.confirm = true
		return m, nil
	case "n", "s":
		return m, nil
	}
	var cmd tea.Cmd
	m.page, cmd = m.page.Update(msg)
	return m, cmd
}

func (m grimoireModel) openPage() pageModel {
	var p pageModel
	if m.mode == grimoireModeWards {
		p = newDocPage(pageWard, render.WardMarkdown(m.visibleWards()[m.cursor].WardData), m.acts, m.term)
	} else {
		p = newSpellPage(render.PageFromEntry(m.visibleSpells()[m.cursor]), m.acts, m.term, false)
	}
	p.width, p.height = m.width, m.height
	return p
}

func (m grimoireModel) selectedID() string {
	if m.mode == grimoireModeWards {
		if w := m.visibleWards(); m.cursor < len(w) {
			return w[m.cursor].ID
		}
		return ""
	}
	if s := m.visibleSpells(); m.cursor < len(s) {
		return s[m.cursor].ID
	}
	return ""
}

func (m grimoireModel) listLen() int {
	if m.mode == grimoireModeWards {
		return len(m.visibleWards())
	}
	return len(m.visibleSpells())
}

func (m grimoireModel) View() string {
	if m.detail {
		v := m.page.View()
		if m.confirm {
			v = " " + noticeStyles[noticeWarning].Render("delete this page? y/n") + "\n" + v
		} else if m.statusMsg != "" {
			v = " " + dimStyle.Render(m.statusMsg) + "\n" + v
		}
		return v
	}

	var b strings.Builder
	if m.width >= 50 {
		b.WriteString(" " + crowLabelStyle.Render("YOUR GRIMOIRE") + "  " + crowVoiceStyle.Render("Every page you kept, in the order you kept it.") + "\n")
	} else {
		b.WriteString(" " + crowLabelStyle.Render("YOUR GRIMOIRE") + "\n")
	}

	if m.mode == grimoireModeSpells {
		b.WriteString(" " + accentStyle.Render("[spells]") + " " + dimStyle.Render("[wards]"))
	} else {
		b.WriteString(" " + dimStyle.Render("[spells]") + " " + accentStyle.Render("[wards]"))
	}
	b.WriteString("  " + helpKeyStyle.Render("w"))
	switch {
	case m.editing:
		b.WriteString("   " + accentStyle.Render("/ "+m.filter+"█"))
	case m.filter != "":
		b.WriteString("   " + accentStyle.Render("/ "+m.filter))
	}
	b.WriteString("\n")

	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if m.confirm {
		b.WriteString(" " + noticeStyles[noticeWarning].Render("delete this page? y/n") + "\n")
	} else if m.statusMsg != "" {
		b.WriteString(" " + dimStyle.Render(m.statusMsg) + "\n")
	}

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + dimStyle.Render(failureText("loading", m.err)))
		return b.String()
	}

	if m.mode == grimoireModeWards {
		return b.String() + m.viewWardList()
	}
	return b.String() + m.viewSpellList()
}

// visibleRange returns the window of rows to draw around the cursor.
func (m grimoireModel) visibleRange(n int) (int, int) {
	maxVisible := m.height - 5
	if maxVisible < 3 {
		maxVisible = 3
	}
	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}
	end := start + maxVisible
	if end > n {
		end = n
	}
	return start, end
}

func (m grimoireModel) row(i int, title, right string) string {
	cursor := "  "
	titleStyle := dimStyle
	if i == m.cursor {
		cursor = accentStyle.Render("▸") + " "
		titleStyle = normalStyle.Bold(true)
	}
	titleWidth := m.width - 4 - len([]rune(right)) - 2
	if titleWidth < 10 {
		titleWidth = 10
	}
	t := truncStr(title, titleWidth)
	pad := titleWidth - len([]rune(t))
	if pad < 0 {
		pad = 0
	}
	line := cursor + titleStyle.Render(t) + strings.Repeat(" ", pad) + "  " + metaStyle.Render(right)
	if i == m.cursor {
		line = selectedRowBg.Render(line)
	}
	return line + "\n"
}

func (m grimoireModel) viewSpellList() string {
	spells := m.visibleSpells()
	if len(spells) == 0 {
		if m.filter != "" {
			return " " + dimStyle.Render("nothing matches")
		}
		return " " + dimStyle.Render("no saved spells yet. Cast one and press s to keep it.")
	}
	var b strings.Builder
	start, end := m.visibleRange(len(spells))
	for i := start; i < end; i++ {
		e := spells[i]
		title := cleanTitle(e.SpellData.Title())
		if title == "" {
			title = "Untitled working"
		}
		right := formatTime(e.CreatedAt)
		if e.ArchetypeName != "" {
			right = e.ArchetypeName + "  " + right
		}
		b.WriteString(m.row(i, title, right))
	}
	if len(spells) > end-start {
		b.WriteString(" " + metaStyle.Render(fmt.Sprintf("%d of %d", m.cursor+1, len(spells))))
	}
	return b.String()
}

func (m grimoireModel) viewWardList() string {
	wards := m.visibleWards()
	if len(wards) == 0 {
		if m.filter != "" {
			return " " + dimStyle.Render("nothing matches")
		}
		return " " + dimStyle.Render("no saved wards yet")
	}
	var b strings.Builder
	start, end := m.visibleRange(len(wards))
	for i := start; i < end; i++ {
		w := wards[i]
		title := w.WardData.Name
		if w.Concern != "" {
			title += " · " + w.Concern
		}
		b.WriteString(m.row(i, cleanTitle(title), formatTime(w.CreatedAt)))
	}
	return b.String()
}

func (m grimoireModel) helpKeys() string {
	if m.detail {
		return m.page.helpKeys() + "  " + helpEntry("d", "delete") + "  " + helpEntry("esc", "back")
	}
	if m.editing {
		return helpEntry("enter", "apply") + "  " + helpEntry("esc", "clear")
	}
	return helpEntry("1-4", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " +
		helpEntry("/", "filter") + "  " + helpEntry("w", "toggle") + "  " + helpEntry("d", "delete") + "  " + helpEntry("r", "reload") + "  " + helpEntry("?", "help")
}
