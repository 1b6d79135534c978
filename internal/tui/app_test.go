package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crowlands/crowlands/internal/config"
	"github.com/crowlands/crowlands/internal/session"
	"github.com/crowlands/crowlands/internal/workflow"
	"github.com/crowlands/crowlands/pkg/client"
	"github.com/crowlands/crowlands/pkg/domain"
)

func newTestAppWith(d Deps) App {
	if d.Open == nil {
		d.Open = func(string) error { return nil }
	}
	if d.Config.WebURL == "" {
		d.Config = config.Default()
	}
	a := NewApp(d)
	a.width = 80
	a.height = 30
	return a
}

func newTestApp() App {
	a := newTestAppWith(Deps{})
	a.cast.input.Blur() // nav mode so global keys work
	return a
}

func update(a App, msg tea.Msg) (App, tea.Cmd) {
	model, cmd := a.Update(msg)
	return model.(App), cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestAppTabSwitching(t *testing.T) {
	tests := []struct {
		key      string
		wantView view
	}{
		{"1", viewCast},
		{"2", viewGuides},
		{"3", viewGrimoire},
		{"4", viewYou},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			a := newTestApp()
			a, _ = update(a, keyPress(tc.key))
			if a.view != tc.wantView {
				t.Errorf("after key %q: expected view=%d, got %d", tc.key, tc.wantView, a.view)
			}
		})
	}
}

func TestAppDigitsTypeWhileEditing(t *testing.T) {
	a := newTestAppWith(Deps{})
	if !a.isEditing() {
		t.Fatal("the cast form should start focused")
	}
	a, _ = update(a, keyPress("2"))
	if a.view != viewCast {
		t.Errorf("digits should go to the form while editing, view = %d", a.view)
	}
	if a.cast.input.Value() != "2" {
		t.Errorf("input = %q, want %q", a.cast.input.Value(), "2")
	}
}

func TestAppGlobalQuitOnQ(t *testing.T) {
	a := newTestApp()
	_, cmd := update(a, keyPress("q"))
	if !isQuit(cmd) {
		t.Error("q should quit when not editing")
	}
}

func TestAppQNotFiredWhenEditing(t *testing.T) {
	a := newTestAppWith(Deps{})
	a, _ = update(a, keyPress("q"))
	if a.cast.input.Value() != "q" {
		t.Errorf("q should be typed while editing, input = %q", a.cast.input.Value())
	}
}

func TestAppCtrlCAlwaysQuits(t *testing.T) {
	a := newTestAppWith(Deps{})
	_, cmd := update(a, tea.KeyMsg{Type: tea.KeyCtrlC})
	if !isQuit(cmd) {
		t.Error("ctrl+c should quit even while editing")
	}
}

func TestAppIsEditingGrimoireFilter(t *testing.T) {
	a := newTestApp()
	a.view = viewGrimoire
	a.grimoire.loading = false
	a.grimoire.editing = true
	if !a.isEditing() {
		t.Fatal("grimoire filter should count as editing")
	}
	a, cmd := update(a, keyPress("q"))
	if isQuit(cmd) {
		t.Error("q should go into the filter")
	}
	if a.grimoire.filter != "q" {
		t.Errorf("filter = %q, want q", a.grimoire.filter)
	}
}

func TestAppHelpOverlay(t *testing.T) {
	var opened string
	a := newTestAppWith(Deps{Open: func(url string) error {
		opened = url
		return nil
	}})
	a.cast.input.Blur()

	a, _ = update(a, keyPress("?"))
	if !a.helpOpen {
		t.Fatal("? should open help")
	}
	if !strings.Contains(a.View(), "C R O W L A N D S") {
		t.Errorf("help overlay not rendered:\n%s", a.View())
	}

	a, _ = update(a, keyPress("j"))
	a, _ = update(a, tea.KeyMsg{Type: tea.KeyEnter})
	if want := config.Default().WebURL + "/faq"; opened != want {
		t.Errorf("opened %q, want %q", opened, want)
	}

	a, _ = update(a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.helpOpen {
		t.Error("esc should close help")
	}
}

func TestAppNoticeShownAndClearedOnKey(t *testing.T) {
	a := newTestApp()
	a, _ = update(a, noticeMsg{level: noticeSuccess, text: workflow.MsgSaved})
	if !strings.Contains(a.View(), workflow.MsgSaved) {
		t.Errorf("notice not rendered:\n%s", a.View())
	}
	a, _ = update(a, keyPress("j"))
	if a.notice.text != "" {
		t.Error("a key press should clear the notice")
	}
}

func TestAppChannelMsgUnwraps(t *testing.T) {
	a := newTestApp()
	a, cmd := update(a, channelMsg{msg: noticeMsg{level: noticeWarning, text: workflow.MsgLoginToSave}})
	if a.notice.text != workflow.MsgLoginToSave {
		t.Errorf("notice = %q", a.notice.text)
	}
	if cmd == nil {
		t.Error("the note listener should be re-armed")
	}
}

func TestAppLoginPromptAppendsHint(t *testing.T) {
	a := newTestApp()
	a, _ = update(a, noticeMsg{level: noticeWarning, text: workflow.MsgLoginToSave})
	a, _ = update(a, loginPromptMsg{})
	if a.notice.text != workflow.MsgLoginToSave+" Run: crowlands login" {
		t.Errorf("notice = %q", a.notice.text)
	}
	a, _ = update(a, loginPromptMsg{})
	if strings.Count(a.notice.text, "crowlands login") != 1 {
		t.Errorf("hint should not repeat, got %q", a.notice.text)
	}

	b := newTestApp()
	b, _ = update(b, loginPromptMsg{})
	if b.notice.level != noticeWarning || b.notice.text != "Run: crowlands login" {
		t.Errorf("notice = %+v", b.notice)
	}
}

func TestAppLeavingCastAbandonsRequest(t *testing.T) {
	a := newTestAppWith(Deps{})
	a.cast.input.SetValue("a charm for a new home")
	a, _ = update(a, tea.KeyMsg{Type: tea.KeyCtrlS})
	if a.cast.snap.State != workflow.StateSubmitting {
		t.Fatalf("state = %v, want submitting", a.cast.snap.State)
	}
	seq := a.cast.snap.Seq

	a, _ = update(a, tea.KeyMsg{Type: tea.KeyEsc})
	a, cmd := update(a, keyPress("3"))
	if a.view != viewGrimoire || cmd == nil {
		t.Fatalf("expected grimoire with a load, view = %d", a.view)
	}
	if a.cast.snap.State != workflow.StateIdle {
		t.Errorf("leaving the tab should abandon, state = %v", a.cast.snap.State)
	}

	a, _ = update(a, spellGeneratedMsg{seq: seq, res: &domain.GenerationResult{Spell: domain.UnstructuredSpell("late")}})
	if a.cast.showPage {
		t.Error("the abandoned response must be dropped")
	}
}

func TestAppCastWithGuide(t *testing.T) {
	a := newTestApp()
	a, _ = update(a, keyPress("2"))
	a, cmd := update(a, castWithGuideMsg{id: "maud", prompt: "A charm for a new home."})
	if a.view != viewCast {
		t.Errorf("view = %d, want cast", a.view)
	}
	if a.cast.guideID != "maud" || a.cast.input.Value() != "A charm for a new home." {
		t.Errorf("guide=%q input=%q", a.cast.guideID, a.cast.input.Value())
	}
	if !a.cast.input.Focused() || cmd == nil {
		t.Error("the form should be focused")
	}
}

func TestAppGuideChosenUpdatesCast(t *testing.T) {
	a := newTestApp()
	a, _ = update(a, guideChosenMsg{id: "ezra"})
	if a.cast.guideID != "ezra" || a.guides.preferred != "ezra" {
		t.Errorf("cast guide = %q, preferred = %q", a.cast.guideID, a.guides.preferred)
	}
}

func TestAppCachedUserInStatsLine(t *testing.T) {
	store := session.New(t.TempDir())
	if err := store.SaveUser(domain.User{ID: "u-1", Email: "wren@example.com", SubscriptionTier: domain.TierPaid}); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveGuide("silas"); err != nil {
		t.Fatal(err)
	}
	a := newTestAppWith(Deps{Session: store})

	stats := a.statsLine()
	if !strings.Contains(stats, "wren@example.com") || !strings.Contains(stats, "paid (cached)") {
		t.Errorf("stats = %q", stats)
	}
	if a.cast.guideID != "silas" || a.guides.preferred != "silas" {
		t.Errorf("saved guide not applied: cast=%q guides=%q", a.cast.guideID, a.guides.preferred)
	}
}

func TestAppProfileLoadedRefreshesCache(t *testing.T) {
	store := session.New(t.TempDir())
	if err := store.SaveUser(domain.User{ID: "u-1", Email: "wren@example.com", SubscriptionTier: domain.TierPaid}); err != nil {
		t.Fatal(err)
	}
	a := newTestAppWith(Deps{Session: store})

	live := &domain.User{ID: "u-1", Email: "wren@example.com", SubscriptionTier: domain.TierFree}
	a, cmd := update(a, profileLoadedMsg{profile: &client.Profile{
		User:   live,
		Status: &domain.SubscriptionStatus{SubscriptionTier: domain.TierFree, SpellLimit: 3, SpellsRemaining: 2},
	}})
	if cmd == nil {
		t.Fatal("a live profile should refresh the cache")
	}
	cmd()

	cached, err := store.CachedUser()
	if err != nil || cached == nil || cached.SubscriptionTier != domain.TierFree {
		t.Errorf("cached user = %+v, err = %v", cached, err)
	}
	stats := a.statsLine()
	if strings.Contains(stats, "cached") || !strings.Contains(stats, "2 spells left") {
		t.Errorf("stats = %q", stats)
	}
}

func TestAppViewRendersTabBar(t *testing.T) {
	a := newTestApp()
	view := a.View()
	for _, name := range []string{"Cast", "Guides", "Grimoire", "You"} {
		if !strings.Contains(view, name) {
			t.Errorf("tab bar missing %q", name)
		}
	}
}

func TestAppShimmerFrameIncrements(t *testing.T) {
	a := newTestApp()
	a, cmd := update(a, shimmerTickMsg{})
	if a.frame != 1 || cmd == nil {
		t.Errorf("frame = %d, cmd nil = %v", a.frame, cmd == nil)
	}
}

func TestAppLayoutFitsTerminal(t *testing.T) {
	for _, v := range []view{viewCast, viewGuides, viewGrimoire, viewYou} {
		a := newTestApp()
		a.height = 20
		a.view = v
		a.grimoire.loading = false
		lines := strings.Count(a.View(), "\n") + 1
		if lines > a.height {
			t.Errorf("view %d renders %d lines in a %d-line terminal", v, lines, a.height)
		}
	}
}

func TestAppWindowSizePropagates(t *testing.T) {
	a := newTestApp()
	a, _ = update(a, tea.WindowSizeMsg{Width: 100, Height: 40})
	if a.cast.height != 35 || a.grimoire.height != 35 || a.you.height != 35 || a.guides.height != 35 {
		t.Errorf("body heights: cast=%d grimoire=%d you=%d guides=%d",
			a.cast.height, a.grimoire.height, a.you.height, a.guides.height)
	}
	if a.cast.term == nil {
		t.Error("a terminal renderer should be installed")
	}
}
