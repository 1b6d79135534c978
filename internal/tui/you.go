package tui

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/crowlands/crowlands/internal/browser"
	"github.com/crowlands/crowlands/pkg/client"
	"github.com/crowlands/crowlands/pkg/domain"
)

// profileLoadedMsg carries the account and subscription status.
type profileLoadedMsg struct {
	profile *client.Profile
	err     error
}

// youModel shows the account. Until the backend answers it shows the cached
// user with a "cached" marker; the backend's answer always replaces it.
type youModel struct {
	client     *client.Client
	open       browser.Opener
	upgradeURL string
	cached     *domain.User
	user       *domain.User
	status     *domain.SubscriptionStatus
	loggedOut  bool
	loading    bool
	failed     bool
	statusMsg  string
	width      int
	height     int
}

func newYouModel(c *client.Client, cached *domain.User, open browser.Opener, upgradeURL string) youModel {
	return youModel{
		client:     c,
		cached:     cached,
		open:       open,
		upgradeURL: upgradeURL,
		loading:    true,
	}
}

func (m youModel) Init() tea.Cmd {
	return m.loadProfile()
}

func (m youModel) loadProfile() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		p, err := c.LoadProfile(context.Background())
		return profileLoadedMsg{profile: p, err: err}
	}
}

func (m youModel) Update(msg tea.Msg) (youModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case profileLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.loggedOut = client.IsStatus(msg.err, http.StatusUnauthorized)
			m.failed = !m.loggedOut
			m.status = nil
			return m, nil
		}
		m.failed, m.loggedOut = false, false
		m.user = msg.profile.User
		m.status = msg.profile.Status
		return m, nil

	case statusLoadedMsg:
		if msg.err == nil && msg.status != nil {
			m.status = msg.status
		}
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadProfile()
		case "u":
			if m.upgradeURL == "" || m.open == nil {
				return m, nil
			}
			if err := m.open(m.upgradeURL); err != nil {
				m.statusMsg = "could not open " + m.upgradeURL
			} else {
				m.statusMsg = "opened " + m.upgradeURL
			}
		}
	}
	return m, nil
}

// tier is what the header and this tab display. Only a fresh status from
// the backend is authoritative; the cached value is marked as such and
// nothing is gated on it.
func (m youModel) tier() (tier string, cached bool) {
	switch {
	case m.status != nil:
		return m.status.SubscriptionTier, false
	case m.user != nil && m.user.SubscriptionTier != "":
		return m.user.SubscriptionTier, false
	case m.failed || m.loggedOut:
		return "", false
	case m.cached != nil && m.cached.SubscriptionTier != "":
		return m.cached.SubscriptionTier, true
	}
	return "", false
}

func (m youModel) displayUser() (*domain.User, bool) {
	if m.user != nil {
		return m.user, false
	}
	if m.cached != nil {
		return m.cached, true
	}
	return nil, false
}

func (m youModel) View() string {
	var sb strings.Builder

	if m.loggedOut {
		sb.WriteString(" " + crowLabelStyle.Render("YOU") + "\n\n")
		sb.WriteString("   " + dimStyle.Render("not logged in -- run: crowlands login") + "\n")
		sb.WriteString("   " + dimStyle.Render("new here? run: crowlands register, or crowlands waitlist") + "\n")
		return sb.String()
	}

	u, cachedUser := m.displayUser()
	if u == nil {
		sb.WriteString(" " + crowLabelStyle.Render("YOU") + "\n\n")
		if m.loading {
			sb.WriteString("   " + dimStyle.Render("loading...") + "\n")
		} else {
			sb.WriteString("   " + dimStyle.Render("the crows could not find your account. press r to retry.") + "\n")
		}
		return sb.String()
	}

	name := u.Name
	if name == "" {
		name = u.Email
	}
	line := " " + selectedStyle.Render(name)
	if u.Name != "" {
		line += "  " + dimStyle.Render(u.Email)
	}
	if cachedUser {
		line += "  " + metaStyle.Render("(cached)")
	}
	sb.WriteString(line + "\n")

	tier, cachedTier := m.tier()
	var parts []string
	switch {
	case tier == domain.TierPaid:
		parts = append(parts, goldStyle.Render("paid grimoire"))
	case tier != "":
		parts = append(parts, dimStyle.Render(tier+" grimoire"))
	default:
		parts = append(parts, metaStyle.Render("tier unknown"))
	}
	if cachedTier {
		parts = append(parts, metaStyle.Render("cached"))
	}
	if !u.CreatedAt.IsZero() {
		parts = append(parts, metaStyle.Render("since "+u.CreatedAt.Format("Jan 2006")))
	}
	sb.WriteString("   " + strings.Join(parts, dimStyle.Render(" · ")) + "\n")
	sb.WriteString("   " + crowVoiceStyle.Render(crowQuip(m.status)) + "\n")

	sb.WriteString("\n " + metaStyle.Render("── SPELLS ──") + "\n")
	if m.status == nil {
		if m.loading {
			sb.WriteString("   " + dimStyle.Render("loading...") + "\n")
		} else {
			sb.WriteString("   " + dimStyle.Render("usage unavailable. press r to retry.") + "\n")
		}
	} else {
		sb.WriteString("   " + usageBar(m.status, m.width) + "\n")
		sb.WriteString("   " + metaStyle.Render(fmt.Sprintf("%d cast in total", m.status.TotalSpellsGenerated)) + "\n")
	}

	if m.statusMsg != "" {
		sb.WriteString("\n " + dimStyle.Render(m.statusMsg) + "\n")
	}
	return sb.String()
}

// usageBar renders "used/limit" as a bar. A paid status with no limit shows
// only the count.
func usageBar(s *domain.SubscriptionStatus, width int) string {
	if s.SpellLimit <= 0 {
		return normalStyle.Render(fmt.Sprintf("%d used", s.SpellsUsed))
	}
	w := width / 3
	if w < 10 {
		w = 10
	}
	if w > 40 {
		w = 40
	}
	filled := s.SpellsUsed * w / s.SpellLimit
	if filled > w {
		filled = w
	}
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color("#b08cd8")).Render(strings.Repeat("█", filled)) +
		metaStyle.Render(strings.Repeat("░", w-filled))
	return bar + "  " + normalStyle.Render(fmt.Sprintf("%d of %d used · %d left", s.SpellsUsed, s.SpellLimit, s.SpellsRemaining))
}

func crowQuip(s *domain.SubscriptionStatus) string {
	switch {
	case s == nil:
		return "The crows are counting."
	case s.Paid():
		return "The whole library is open to you."
	case s.SpellsRemaining <= 0:
		return "The well is dry until your spells renew."
	case s.SpellsRemaining == 1:
		return "One spell left. Choose the question well."
	}
	return "Ink enough for a few more pages."
}

func (m youModel) helpKeys() string {
	keys := []string{helpEntry("1-4", "tabs"), helpEntry("r", "refresh")}
	if tier, _ := m.tier(); tier != domain.TierPaid {
		keys = append(keys, helpEntry("u", "upgrade"))
	}
	keys = append(keys, helpEntry("?", "help"), helpEntry("q", "quit"))
	return strings.Join(keys, "  ")
}
