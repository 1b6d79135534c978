package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/crowlands/crowlands/internal/render"
	"github.com/crowlands/crowlands/internal/workflow"
	"github.com/crowlands/crowlands/pkg/client"
	"github.com/crowlands/crowlands/pkg/domain"
)

// Reading messages. Tarot readings and wards share the spell quota.
const (
	msgEmptyQuestion = "Ask the cards a question first."
	msgEmptyConcern  = "Name what needs warding first."
)

type spellGeneratedMsg struct {
	seq uint64
	res *domain.GenerationResult
	err error
}

type readingKind int

const (
	readingTarot readingKind = iota
	readingWard
)

type readingLoadedMsg struct {
	seq   uint64
	kind  readingKind
	tarot *domain.TarotResult
	ward  *domain.WardResult
	err   error
}

type statusLoadedMsg struct {
	status *domain.SubscriptionStatus
	err    error
}

// castModel is the spell request form and the page it produces. It drives
// workflow.Transition directly: responses arrive as messages and the
// returned effects become commands.
type castModel struct {
	client  *client.Client
	logger  *zap.Logger
	acts    *actions
	term    *render.Terminal
	input   textarea.Model
	spinner spinner.Model
	guideID string
	image   bool
	snap    workflow.Snapshot
	seq     uint64
	cancel  context.CancelFunc

	reading       bool
	readingKind   readingKind
	readingSeq    uint64
	readingCancel context.CancelFunc

	page     pageModel
	showPage bool

	width  int
	height int
}

func newCastModel(c *client.Client, logger *zap.Logger, acts *actions, guideID string) castModel {
	ta := textarea.New()
	ta.Placeholder = "What do you seek? A charm for a new home, courage for a hard day..."
	ta.CharLimit = domain.MaxIntentionLen
	ta.ShowLineNumbers = false
	ta.Prompt = "│ "
	ta.SetWidth(60)
	ta.SetHeight(4)
	ta.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Moon))

	return castModel{
		client:  c,
		logger:  logger,
		acts:    acts,
		input:   ta,
		spinner: sp,
		guideID: guideID,
	}
}

func (m castModel) Init() tea.Cmd {
	return textarea.Blink
}

// editing reports whether keystrokes belong to the text area.
func (m castModel) editing() bool {
	return !m.showPage && m.input.Focused() && !m.snap.State.Terminal()
}

func (m castModel) Update(msg tea.Msg) (castModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w := msg.Width - 4
		if w > 100 {
			w = 100
		}
		if w < 20 {
			w = 20
		}
		m.input.SetWidth(w)
		m.page, _ = m.page.Update(msg)
		return m, nil

	case spinner.TickMsg:
		if m.snap.State == workflow.StateSubmitting || m.reading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case spellGeneratedMsg:
		return m.resolve(msg)

	case readingLoadedMsg:
		return m.readingLoaded(msg)

	case savedMsg, exportedMsg:
		var cmd tea.Cmd
		m.page, cmd = m.page.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.showPage {
			var cmd tea.Cmd
			m.page, cmd = m.page.Update(msg)
			if m.page.closed {
				return m.reset(true)
			}
			return m, cmd
		}
		return m.updateKeys(msg)
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m castModel) updateKeys(msg tea.KeyMsg) (castModel, tea.Cmd) {
	switch m.snap.State {
	case workflow.StateLimitReached, workflow.StateFailed:
		switch msg.String() {
		case "enter", "r":
			return m.reset(false)
		case "n":
			return m.reset(true)
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+s":
		return m.submit()
	case "ctrl+t":
		return m.ask(readingTarot)
	case "ctrl+r":
		return m.ask(readingWard)
	case "tab":
		m.guideID = nextGuide(m.guideID)
		return m, nil
	case "shift+tab":
		m.guideID = prevGuide(m.guideID)
		return m, nil
	case "ctrl+g":
		m.image = !m.image
		return m, nil
	case "esc":
		m.input.Blur()
		return m, nil
	}

	if !m.input.Focused() {
		switch msg.String() {
		case "i", "enter":
			cmd := m.input.Focus()
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit validates the form and starts a generation. The submit control is
// disabled while a request is outstanding.
func (m castModel) submit() (castModel, tea.Cmd) {
	if m.snap.State == workflow.StateSubmitting {
		return m, nil
	}
	req := domain.SpellRequest{
		IntentionText: m.input.Value(),
		GuideID:       m.guideID,
		GenerateImage: m.image,
	}.Normalized()
	if err := req.Validate(); err != nil {
		return m.apply(workflow.Invalid{Err: err})
	}
	m.seq++
	return m.apply(workflow.Submitted{Seq: m.seq, Request: req})
}

func (m castModel) apply(ev workflow.Event) (castModel, tea.Cmd) {
	snap, effects := workflow.Transition(m.snap, ev)
	m.snap = snap
	return m.run(effects)
}

// run turns effects into commands.
func (m castModel) run(effects []workflow.Effect) (castModel, tea.Cmd) {
	var cmds []tea.Cmd
	for _, eff := range effects {
		switch eff := eff.(type) {
		case workflow.CallGenerate:
			if m.cancel != nil {
				m.cancel()
			}
			ctx, cancel := context.WithCancel(context.Background())
			m.cancel = cancel
			cmds = append(cmds, generateCmd(ctx, cancel, m.client, eff), m.spinner.Tick)
		case workflow.Notify:
			cmds = append(cmds, noticeCmd(eff))
		case workflow.RefreshStatus:
			cmds = append(cmds, refreshStatusCmd(m.client))
		case workflow.LogError:
			m.logger.Error("spell generation failed", zap.Error(eff.Err))
		case workflow.PromptLogin:
			cmds = append(cmds, func() tea.Msg { return loginPromptMsg{} })
		}
	}
	return m, tea.Batch(cmds...)
}

func generateCmd(ctx context.Context, cancel context.CancelFunc, c *client.Client, call workflow.CallGenerate) tea.Cmd {
	return func() tea.Msg {
		defer cancel()
		res, err := c.GenerateSpell(ctx, call.Request)
		return spellGeneratedMsg{seq: call.Seq, res: res, err: err}
	}
}

func refreshStatusCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		st, err := c.SubscriptionStatus(context.Background())
		return statusLoadedMsg{status: st, err: err}
	}
}

func (m castModel) resolve(msg spellGeneratedMsg) (castModel, tea.Cmd) {
	if m.snap.State != workflow.StateSubmitting || m.snap.Seq != msg.seq {
		m.logger.Debug("discarding superseded response", zap.Uint64("seq", msg.seq))
		return m, nil
	}
	var ev workflow.Event = workflow.Resolved{Seq: msg.seq, Result: msg.res}
	if msg.err != nil {
		ev = workflow.Rejected{Seq: msg.seq, Err: msg.err}
	}
	m, cmd := m.apply(ev)
	m.cancel = nil
	if m.snap.State == workflow.StateSuccess && m.snap.Result != nil {
		page := render.NewPage(*m.snap.Result, m.snap.Request.GuideID)
		m.page = newSpellPage(page, m.acts, m.term, true)
		m.page.width, m.page.height = m.width, m.height
		m.showPage = true
	}
	return m, cmd
}

// abandon drops the outstanding request; its response will be ignored.
func (m castModel) abandon() castModel {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.snap, _ = workflow.Transition(m.snap, workflow.Abandoned{})
	return m.dropReading()
}

// dropReading cancels any tarot or ward fetch and ignores its result.
func (m castModel) dropReading() castModel {
	if m.readingCancel != nil {
		m.readingCancel()
		m.readingCancel = nil
	}
	m.reading = false
	m.readingSeq++
	return m
}

// reset returns to the form. A new spell clears the intention; trying again
// keeps it.
func (m castModel) reset(clear bool) (castModel, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.snap, _ = workflow.Transition(m.snap, workflow.Reset{})
	m = m.dropReading()
	m.showPage = false
	m.page = pageModel{}
	if clear {
		m.input.Reset()
	}
	cmd := m.input.Focus()
	return m, cmd
}

// ask starts a tarot reading or ward suggestion from the text in the form.
func (m castModel) ask(kind readingKind) (castModel, tea.Cmd) {
	if m.reading || m.snap.State == workflow.StateSubmitting {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		msg := msgEmptyQuestion
		if kind == readingWard {
			msg = msgEmptyConcern
		}
		return m, noticeCmd(workflow.Notify{Level: workflow.LevelWarning, Message: msg})
	}
	m.reading = true
	m.readingKind = kind
	m.readingSeq++
	ctx, cancel := context.WithCancel(context.Background())
	m.readingCancel = cancel
	seq, c, guide := m.readingSeq, m.client, m.guideID
	fetch := func() tea.Msg {
		defer cancel()
		if kind == readingWard {
			res, err := c.SuggestWard(ctx, domain.WardRequest{Concern: text, GuideID: guide})
			return readingLoadedMsg{seq: seq, kind: kind, ward: res, err: err}
		}
		res, err := c.CorrieTarot(ctx, domain.TarotRequest{Question: text})
		return readingLoadedMsg{seq: seq, kind: kind, tarot: res, err: err}
	}
	return m, tea.Batch(fetch, m.spinner.Tick)
}

func (m castModel) readingLoaded(msg readingLoadedMsg) (castModel, tea.Cmd) {
	if !m.reading || msg.seq != m.readingSeq {
		return m, nil
	}
	m.reading = false
	m.readingCancel = nil
	if msg.err != nil {
		return m, m.readingFailed(msg.err)
	}

	var md string
	var kind pageKind
	var limit *domain.LimitInfo
	switch msg.kind {
	case readingWard:
		md, kind, limit = render.WardMarkdown(msg.ward.Ward), pageWard, msg.ward.LimitInfo
	default:
		md, kind, limit = render.TarotMarkdown(msg.tarot.Reading), pageTarot, msg.tarot.LimitInfo
	}
	m.page = newDocPage(kind, md, m.acts, m.term)
	m.page.width, m.page.height = m.width, m.height
	m.showPage = true

	cmds := []tea.Cmd{noticeCmd(workflow.Notify{Level: workflow.LevelSuccess, Message: "The crows have returned."})}
	if limit != nil {
		cmds = append(cmds, refreshStatusCmd(m.client))
	}
	return m, tea.Batch(cmds...)
}

// readingFailed maps an error the same way spell generation does.
func (m castModel) readingFailed(err error) tea.Cmd {
	_, effects := workflow.Transition(
		workflow.Snapshot{State: workflow.StateSubmitting, Seq: 1},
		workflow.Rejected{Seq: 1, Err: err},
	)
	var cmds []tea.Cmd
	for _, eff := range effects {
		switch eff := eff.(type) {
		case workflow.Notify:
			cmds = append(cmds, noticeCmd(eff))
		case workflow.LogError:
			m.logger.Error("reading failed", zap.Error(eff.Err))
		case workflow.PromptLogin:
			cmds = append(cmds, func() tea.Msg { return loginPromptMsg{} })
		}
	}
	return tea.Batch(cmds...)
}

func nextGuide(id string) string {
	order := domain.GuideOrder
	if id == "" {
		return order[0]
	}
	for i, g := range order {
		if g == id {
			if i+1 < len(order) {
				return order[i+1]
			}
			return ""
		}
	}
	return ""
}

func prevGuide(id string) string {
	order := domain.GuideOrder
	if id == "" {
		return order[len(order)-1]
	}
	for i, g := range order {
		if g == id {
			if i > 0 {
				return order[i-1]
			}
			return ""
		}
	}
	return ""
}

func (m castModel) View() string {
	if m.showPage {
		return m.page.View()
	}

	var b strings.Builder
	b.WriteString(" " + crowLabelStyle.Render("CAST A SPELL"))
	if m.width >= 50 {
		b.WriteString("  " + crowVoiceStyle.Render("Speak your intention. The crows will carry it."))
	}
	b.WriteString("\n\n")

	// Guide picker
	b.WriteString(" " + dimStyle.Render("guide ") + m.guideLine() + "\n")
	img := dimStyle.Render("[ ] image")
	if m.image {
		img = accentStyle.Render("[x] image")
	}
	b.WriteString(" " + img + "\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch m.snap.State {
	case workflow.StateSubmitting:
		b.WriteString(" " + m.spinner.View() + " " + crowVoiceStyle.Render("The crows are flying...") + "\n")
	case workflow.StateLimitReached:
		b.WriteString(cardBorder("top", goldStyle.Render("The well is dry"), "#d4a844", m.width) + "\n")
		b.WriteString("   " + normalStyle.Render(m.snap.Message) + "\n")
		b.WriteString("   " + dimStyle.Render("Upgrade from the You tab, or come back when your spells renew.") + "\n")
		b.WriteString(cardBorder("bottom", "", "#d4a844", m.width) + "\n")
	case workflow.StateFailed:
		b.WriteString(" " + noticeStyles[noticeError].Render(m.snap.Message) + "\n")
	default:
		switch {
		case m.reading && m.readingKind == readingWard:
			b.WriteString(" " + m.spinner.View() + " " + crowVoiceStyle.Render("The crows are gathering iron and thread...") + "\n")
		case m.reading:
			b.WriteString(" " + m.spinner.View() + " " + crowVoiceStyle.Render("Corrie is laying the cards...") + "\n")
		}
	}
	return b.String()
}

func (m castModel) guideLine() string {
	var parts []string
	none := "none"
	if m.guideID == "" {
		parts = append(parts, selectedStyle.Render("["+none+"]"))
	} else {
		parts = append(parts, dimStyle.Render(none))
	}
	for _, g := range domain.GuidesInOrder() {
		if g.ID == m.guideID {
			parts = append(parts, GuideStyle(g.ID).Render("["+g.ShortName+"]"))
		} else {
			parts = append(parts, dimStyle.Render(g.ShortName))
		}
	}
	return strings.Join(parts, " ")
}

func (m castModel) helpKeys() string {
	if m.showPage {
		return m.page.helpKeys() + "  " + helpEntry("n", "new")
	}
	switch m.snap.State {
	case workflow.StateLimitReached, workflow.StateFailed:
		return helpEntry("enter", "try again") + "  " + helpEntry("n", "new") + "  " + helpEntry("?", "help")
	}
	if !m.input.Focused() {
		return helpEntry("1-4", "tabs") + "  " + helpEntry("enter", "write") + "  " + helpEntry("?", "help") + "  " + helpEntry("q", "quit")
	}
	keys := []string{helpEntry("ctrl+s", "cast"), helpEntry("tab", "guide"), helpEntry("ctrl+g", "image"), helpEntry("ctrl+t", "tarot"), helpEntry("ctrl+r", "ward"), helpEntry("esc", "nav")}
	if m.snap.State == workflow.StateSubmitting {
		keys = keys[1:]
	}
	return strings.Join(keys, "  ")
}
