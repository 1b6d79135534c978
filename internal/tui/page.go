package tui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crowlands/crowlands/internal/export"
	"github.com/crowlands/crowlands/internal/render"
	"github.com/crowlands/crowlands/internal/workflow"
	"github.com/crowlands/crowlands/pkg/domain"
)

type pageKind int

const (
	pageSpell pageKind = iota
	pageTarot
	pageWard
)

// actions are the shared page actions. Each one guards itself against
// running twice, so copies of a pageModel can share them.
type actions struct {
	copy   *workflow.CopyAction
	save   *workflow.SaveAction
	export *workflow.ExportAction
}

// pageIDs numbers pages so save and export results reach only the page that
// started them.
var pageIDs atomic.Uint64

type savedMsg struct {
	page  uint64
	entry *domain.SavedGrimoireEntry
	err   error
}

type exportedMsg struct {
	page uint64
	out  export.Outcome
	err  error
}

// pageModel shows one generated or saved document.
type pageModel struct {
	id          uint64
	kind        pageKind
	page        render.Page
	doc         string // markdown for tarot and ward pages
	mode        render.Mode
	done        map[int]bool
	steps       []int
	stepCursor  int
	showHistory bool
	offset      int
	canSave     bool
	saved       bool
	saving      bool
	exporting   bool
	closed      bool // user asked for a new spell
	acts        *actions
	term        *render.Terminal
	rendered    string
	width       int
	height      int
}

func newSpellPage(p render.Page, acts *actions, term *render.Terminal, canSave bool) pageModel {
	m := pageModel{
		id:      pageIDs.Add(1),
		kind:    pageSpell,
		page:    p,
		mode:    render.DefaultMode(p.Spell),
		done:    map[int]bool{},
		steps:   render.StepNumbers(p.Spell),
		canSave: canSave,
		acts:    acts,
		term:    term,
	}
	return m.refresh()
}

func newDocPage(kind pageKind, md string, acts *actions, term *render.Terminal) pageModel {
	m := pageModel{id: pageIDs.Add(1), kind: kind, doc: md, acts: acts, term: term}
	return m.refresh()
}

// markdown is the source for the current view state.
func (m pageModel) markdown() string {
	if m.kind != pageSpell {
		return m.doc
	}
	return render.Markdown(m.page, m.mode, render.FullOptions{Done: m.done, ShowHistory: m.showHistory})
}

func (m pageModel) refresh() pageModel {
	m.rendered = m.term.Render(m.markdown())
	return m
}

func (m pageModel) Update(msg tea.Msg) (pageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case savedMsg:
		if msg.page != m.id {
			return m, nil
		}
		m.saving = false
		if msg.err == nil {
			m.saved = true
		}
		return m, nil

	case exportedMsg:
		if msg.page != m.id {
			return m, nil
		}
		m.exporting = false
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m pageModel) updateKeys(msg tea.KeyMsg) (pageModel, tea.Cmd) {
	structured := m.kind == pageSpell && !m.page.Degraded()

	switch msg.String() {
	case "j", "down":
		m.offset++
	case "k", "up":
		if m.offset > 0 {
			m.offset--
		}
	case "pgdown", " ":
		m.offset += m.bodyHeight()
	case "pgup":
		m.offset -= m.bodyHeight()
		if m.offset < 0 {
			m.offset = 0
		}
	case "g":
		m.offset = 0
	case "f":
		if !structured {
			return m, nil
		}
		if m.mode == render.ModeFull && m.page.Spell.Document.TarotCard != nil {
			m.mode = render.ModeCard
		} else {
			m.mode = render.ModeFull
		}
		m.offset = 0
		return m.refresh(), nil
	case "h":
		if structured && m.mode == render.ModeFull && m.page.Spell.Document.HistoricalContext != nil {
			m.showHistory = !m.showHistory
			return m.refresh(), nil
		}
	case "]":
		if m.stepCursor < len(m.steps)-1 {
			m.stepCursor++
		}
	case "[":
		if m.stepCursor > 0 {
			m.stepCursor--
		}
	case "x":
		if structured && m.mode == render.ModeFull && len(m.steps) > 0 {
			done := make(map[int]bool, len(m.done)+1)
			for k, v := range m.done {
				done[k] = v
			}
			n := m.steps[m.stepCursor]
			done[n] = !done[n]
			m.done = done
			return m.refresh(), nil
		}
	case "c":
		return m, m.copyCmd()
	case "s":
		if !m.canSave || m.saving || m.acts == nil || m.acts.save.InFlight() {
			return m, nil
		}
		m.saving = true
		return m, m.saveCmd()
	case "p":
		if m.kind != pageSpell || m.exporting || m.acts == nil || m.acts.export.InFlight() {
			return m, nil
		}
		m.exporting = true
		return m, m.exportCmd()
	case "n":
		m.closed = true
	}
	return m, nil
}

func (m pageModel) copyCmd() tea.Cmd {
	if m.acts == nil {
		return nil
	}
	cp := m.acts.copy
	if m.kind == pageSpell {
		spell := m.page.Spell
		return func() tea.Msg {
			cp.Copy(spell)
			return nil
		}
	}
	text := m.doc
	return func() tea.Msg {
		cp.CopyText(text)
		return nil
	}
}

func (m pageModel) saveCmd() tea.Cmd {
	save, page, id := m.acts.save, m.page, m.id
	return func() tea.Msg {
		entry, err := save.Save(context.Background(), page)
		return savedMsg{page: id, entry: entry, err: err}
	}
}

func (m pageModel) exportCmd() tea.Cmd {
	ex, page, id := m.acts.export, m.page, m.id
	return func() tea.Msg {
		out, err := ex.Export(context.Background(), page)
		return exportedMsg{page: id, out: out, err: err}
	}
}

// bodyHeight is the number of document lines shown below the page header.
func (m pageModel) bodyHeight() int {
	h := m.height - 2
	if h < 3 {
		h = 3
	}
	return h
}

func (m pageModel) title() string {
	switch m.kind {
	case pageTarot:
		return "A reading with Corrie"
	case pageWard:
		return "Ward"
	}
	return cleanTitle(m.page.Spell.Title())
}

func (m pageModel) header() string {
	var parts []string
	if m.kind == pageSpell && m.page.Guide != nil {
		parts = append(parts, GuideBadge(m.page.Guide.ID))
	}
	parts = append(parts, crowLabelStyle.Render(truncStr(m.title(), max(m.width-30, 12))))

	var flags []string
	if m.kind == pageSpell && !m.page.Degraded() {
		flags = append(flags, m.mode.String())
		if m.mode == render.ModeFull && len(m.steps) > 0 {
			flags = append(flags, fmt.Sprintf("step %d/%d", m.stepCursor+1, len(m.steps)))
		}
	}
	switch {
	case m.saving:
		flags = append(flags, "saving...")
	case m.saved:
		flags = append(flags, "saved")
	}
	if m.exporting {
		flags = append(flags, "exporting...")
	}
	line := " " + strings.Join(parts, " ")
	if len(flags) > 0 {
		line += "  " + metaStyle.Render(strings.Join(flags, " · "))
	}
	return line
}

func (m pageModel) View() string {
	body, _ := scrollLines(m.rendered, m.offset, m.bodyHeight())
	return m.header() + "\n\n" + body
}

func (m pageModel) helpKeys() string {
	keys := []string{helpEntry("j/k", "scroll"), helpEntry("c", "copy")}
	if m.kind == pageSpell {
		if m.canSave && !m.saved {
			keys = append(keys, helpEntry("s", "save"))
		}
		keys = append(keys, helpEntry("p", "pdf"))
		if !m.page.Degraded() {
			if m.mode == render.ModeCard {
				keys = append(keys, helpEntry("f", "full"))
			} else {
				if m.page.Spell.Document.TarotCard != nil {
					keys = append(keys, helpEntry("f", "card"))
				}
				if len(m.steps) > 0 {
					keys = append(keys, helpEntry("[/]", "step"), helpEntry("x", "done"))
				}
				if m.page.Spell.Document.HistoricalContext != nil {
					keys = append(keys, helpEntry("h", "history"))
				}
			}
		}
	}
	return strings.Join(keys, "  ")
}
