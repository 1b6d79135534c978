package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/crowlands/crowlands/internal/browser"
	"github.com/crowlands/crowlands/internal/config"
	"github.com/crowlands/crowlands/internal/export"
	"github.com/crowlands/crowlands/internal/render"
	"github.com/crowlands/crowlands/internal/session"
	"github.com/crowlands/crowlands/internal/workflow"
	"github.com/crowlands/crowlands/pkg/client"
	"github.com/crowlands/crowlands/pkg/domain"
)

type view int

const (
	viewCast view = iota
	viewGuides
	viewGrimoire
	viewYou
)

type noticeLevel int

const (
	noticeInfo noticeLevel = iota
	noticeSuccess
	noticeWarning
	noticeError
)

// noticeMsg is a one-line notification shown above the help bar.
type noticeMsg struct {
	level noticeLevel
	text  string
}

// loginPromptMsg asks the user to log in from the shell.
type loginPromptMsg struct{}

// channelMsg wraps a message sent from an action running off the update loop.
type channelMsg struct{ msg tea.Msg }

func toNotice(n workflow.Notify) noticeMsg {
	lvl := noticeInfo
	switch n.Level {
	case workflow.LevelSuccess:
		lvl = noticeSuccess
	case workflow.LevelWarning:
		lvl = noticeWarning
	case workflow.LevelError:
		lvl = noticeError
	}
	return noticeMsg{level: lvl, text: n.Message}
}

func noticeCmd(n workflow.Notify) tea.Cmd {
	msg := toNotice(n)
	return func() tea.Msg { return msg }
}

func waitForNote(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return channelMsg{msg: <-ch} }
}

// Deps wires the TUI to the rest of the client. Zero values fall back to
// working defaults.
type Deps struct {
	Client    *client.Client
	Session   *session.Store
	Config    config.Config
	Logger    *zap.Logger
	Exporter  workflow.Exporter
	Clipboard workflow.Clipboard
	Open      browser.Opener
}

// App is the root Bubbletea model.
type App struct {
	client     *client.Client
	store      *session.Store
	logger     *zap.Logger
	open       browser.Opener
	notes      chan tea.Msg
	view       view
	cast       castModel
	guides     guidesModel
	grimoire   grimoireModel
	you        youModel
	notice     noticeMsg
	helpOpen   bool
	helpCursor int
	helpItems  []helpItem
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// NewApp creates a new TUI application.
func NewApp(d Deps) App {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	open := d.Open
	if open == nil {
		open = browser.Open
	}
	cfg := d.Config

	notes := make(chan tea.Msg, 32)
	notify := func(n workflow.Notify) { notes <- toNotice(n) }

	var tokens client.TokenSource = client.StaticToken("")
	var cached *domain.User
	guide := ""
	if d.Session != nil {
		tokens = d.Session
		guide = d.Session.Guide()
		u, err := d.Session.CachedUser()
		if err != nil {
			logger.Debug("ignoring cached user", zap.Error(err))
		}
		cached = u
	}

	exporter := d.Exporter
	if exporter == nil {
		exporter = export.NewChain(cfg.Export.BrowserBin, cfg.Export.Headless, open, logger)
	}
	outDir := cfg.Export.OutputDir
	if outDir == "" {
		outDir = "."
	}

	acts := &actions{
		copy: workflow.NewCopyAction(d.Clipboard, notify, logger),
		save: workflow.NewSaveAction(workflow.SaveConfig{
			Saver:        d.Client,
			Tokens:       tokens,
			Notify:       notify,
			PromptLogin:  func() { notes <- loginPromptMsg{} },
			Open:         open,
			UpgradeURL:   cfg.UpgradeURL(),
			UpgradeDelay: cfg.UpgradeDelay,
			Logger:       logger,
		}),
		export: workflow.NewExportAction(exporter, outDir, notify, logger),
	}

	return App{
		client:    d.Client,
		store:     d.Session,
		logger:    logger,
		open:      open,
		notes:     notes,
		cast:      newCastModel(d.Client, logger, acts, guide),
		guides:    newGuidesModel(d.Session, guide),
		grimoire:  newGrimoireModel(d.Client, acts),
		you:       newYouModel(d.Client, cached, open, cfg.UpgradeURL()),
		helpItems: helpItemsFor(cfg.WebURL),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.cast.Init(), shimmerTickCmd(), a.you.Init(), waitForNote(a.notes))
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + notice(1) + help(1) = 5 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a = a.withTerminal(render.NewTerminal(min(msg.Width-4, 100)))
		a.cast, _ = a.cast.Update(bodyMsg)
		a.guides, _ = a.guides.Update(bodyMsg)
		a.grimoire, _ = a.grimoire.Update(bodyMsg)
		a.you, _ = a.you.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case channelMsg:
		model, cmd := a.Update(msg.msg)
		return model, tea.Batch(cmd, waitForNote(a.notes))

	case noticeMsg:
		a.notice = msg
		return a, nil

	case loginPromptMsg:
		hint := "Run: crowlands login"
		if a.notice.text != "" && !strings.Contains(a.notice.text, hint) {
			a.notice.text += " " + hint
		} else {
			a.notice = noticeMsg{level: noticeWarning, text: hint}
		}
		return a, nil

	case profileLoadedMsg:
		a.you, _ = a.you.Update(msg)
		if msg.err != nil {
			a.logger.Debug("profile load failed", zap.Error(msg.err))
			return a, nil
		}
		return a, a.cacheUser(msg.profile.User)

	case statusLoadedMsg:
		if msg.err != nil {
			a.logger.Warn("subscription status refresh failed", zap.Error(msg.err))
		}
		a.you, _ = a.you.Update(msg)
		return a, nil

	case spellGeneratedMsg, readingLoadedMsg, spinner.TickMsg:
		var cmd tea.Cmd
		a.cast, cmd = a.cast.Update(msg)
		return a, cmd

	case savedMsg, exportedMsg:
		var c1, c2 tea.Cmd
		a.cast, c1 = a.cast.Update(msg)
		a.grimoire, c2 = a.grimoire.Update(msg)
		return a, tea.Batch(c1, c2)

	case savedSpellsLoadedMsg, savedWardsLoadedMsg, deletedMsg:
		var cmd tea.Cmd
		a.grimoire, cmd = a.grimoire.Update(msg)
		return a, cmd

	case guideChosenMsg:
		a.guides, _ = a.guides.Update(msg)
		if msg.err != nil {
			a.logger.Warn("save guide preference", zap.Error(msg.err))
		} else {
			a.cast.guideID = msg.id
		}
		return a, nil

	case castWithGuideMsg:
		a.view = viewCast
		a.cast.guideID = msg.id
		if a.cast.showPage || a.cast.snap.State.Terminal() {
			a.cast, _ = a.cast.reset(msg.prompt != "")
		}
		if msg.prompt != "" {
			a.cast.input.SetValue(msg.prompt)
		}
		cmd := a.cast.input.Focus()
		return a, cmd

	case tea.KeyMsg:
		a.notice = noticeMsg{}

		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Help overlay captures all keys when open
		if a.helpOpen {
			switch msg.String() {
			case "?", "esc":
				a.helpOpen = false
			case "q":
				return a, tea.Quit
			case "j", "down":
				if a.helpCursor < len(a.helpItems)-1 {
					a.helpCursor++
				}
			case "k", "up":
				if a.helpCursor > 0 {
					a.helpCursor--
				}
			case "enter":
				item := a.helpItems[a.helpCursor]
				if err := a.open(item.url); err != nil {
					a.logger.Debug("open link", zap.String("url", item.url), zap.Error(err))
				}
			}
			return a, nil
		}

		if !a.isEditing() {
			switch msg.String() {
			case "?":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "q":
				return a, tea.Quit
			case "1":
				return a.switchTo(viewCast)
			case "2":
				return a.switchTo(viewGuides)
			case "3":
				return a.switchTo(viewGrimoire)
			case "4":
				return a.switchTo(viewYou)
			}
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewCast:
		a.cast, cmd = a.cast.Update(msg)
	case viewGuides:
		a.guides, cmd = a.guides.Update(msg)
	case viewGrimoire:
		a.grimoire, cmd = a.grimoire.Update(msg)
	case viewYou:
		a.you, cmd = a.you.Update(msg)
	}
	return a, cmd
}

// switchTo changes tabs. Leaving the cast tab abandons any request in
// flight; its response is dropped when it arrives.
func (a App) switchTo(v view) (tea.Model, tea.Cmd) {
	if a.view == v {
		return a, nil
	}
	if a.view == viewCast && (a.cast.snap.State == workflow.StateSubmitting || a.cast.reading) {
		a.cast = a.cast.abandon()
	}
	a.view = v
	switch v {
	case viewGrimoire:
		a.grimoire.loading = true
		a.grimoire.detail = false
		return a, a.grimoire.Init()
	case viewYou:
		a.you.loading = true
		return a, a.you.Init()
	}
	return a, nil
}

func (a App) cacheUser(u *domain.User) tea.Cmd {
	if u == nil || a.store == nil {
		return nil
	}
	store, logger, user := a.store, a.logger, *u
	return func() tea.Msg {
		if err := store.SaveUser(user); err != nil {
			logger.Debug("cache user", zap.Error(err))
		}
		return nil
	}
}

func (a App) withTerminal(t *render.Terminal) App {
	a.cast.term = t
	a.grimoire.term = t
	if a.cast.showPage {
		a.cast.page.term = t
		a.cast.page = a.cast.page.refresh()
	}
	if a.grimoire.detail {
		a.grimoire.page.term = t
		a.grimoire.page = a.grimoire.page.refresh()
	}
	return a
}

func (a App) isEditing() bool {
	switch a.view {
	case viewCast:
		return a.cast.editing()
	case viewGrimoire:
		return a.grimoire.confirm || a.grimoire.editing
	}
	return false
}

// statsLine summarises the account under the logo.
func (a App) statsLine() string {
	u, cached := a.you.displayUser()
	if u == nil {
		if a.you.loggedOut {
			return metaStyle.Render("not logged in")
		}
		return ""
	}
	parts := []string{u.Email}
	tier, cachedTier := a.you.tier()
	if tier != "" {
		t := tier
		if cachedTier {
			t += " (cached)"
		}
		parts = append(parts, t)
	}
	if s := a.you.status; s != nil && s.SpellLimit > 0 {
		parts = append(parts, fmt.Sprintf("%d spells left", s.SpellsRemaining))
	}
	if cached && !cachedTier {
		parts = append(parts, "cached")
	}
	return metaStyle.Render(strings.Join(parts, " · "))
}

func center(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

func (a App) View() string {
	header := center(renderShimmerLogo(a.frame), a.width) + "\n"
	if stats := a.statsLine(); stats != "" {
		header += center(stats, a.width)
	}

	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Cast", viewCast},
		{"2", "Guides", viewGuides},
		{"3", "Grimoire", viewGrimoire},
		{"4", "You", viewYou},
	}

	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		if t.v == viewCast && a.cast.snap.State == workflow.StateSubmitting && a.view != viewCast {
			label += " " + a.cast.spinner.View()
		}
		labelWidth := lipgloss.Width(label)
		leftPad := (colWidth - labelWidth) / 2
		if leftPad < 0 {
			leftPad = 0
		}
		rightPad := colWidth - labelWidth - leftPad
		if rightPad < 0 {
			rightPad = 0
		}
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body, help string
	switch a.view {
	case viewCast:
		body = a.cast.View()
		help = " " + a.cast.helpKeys()
	case viewGuides:
		body = a.guides.View()
		help = " " + a.guides.helpKeys()
	case viewGrimoire:
		body = a.grimoire.View()
		help = " " + a.grimoire.helpKeys()
	case viewYou:
		body = a.you.View()
		help = " " + a.you.helpKeys()
	}

	if a.helpOpen {
		body = helpView(a.helpItems, a.helpCursor)
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "close")
	}

	var noticeBar string
	if a.notice.text != "" {
		noticeBar = " " + noticeStyles[a.notice.level].Render(truncStr(a.notice.text, max(a.width-2, 10)))
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), body, noticeBar, help)
}
