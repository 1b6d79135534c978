package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/crowlands/crowlands/pkg/domain"
)

// Shimmer animation for the CROWLANDS logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "C R O W L A N D S" as a slow wave of candlelight
// moving through dusk violet (#3b2a4f) up to bone (#e8dcc0).
func renderShimmerLogo(frame int) string {
	const text = "CROWLANDS"
	n := len(text)

	var out string
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.08 - x*2.6
		phase += math.Sin(t*0.019) * 1.5

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.4)

		// flicker
		flick := math.Sin(t*0.41+float64(i)*1.7) * 0.04
		b = b*0.78 + flick + 0.16

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(59 + b*(232-59))
		g := clampByte(42 + b*(220-42))
		bl := clampByte(79 + b*(192-79))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)
		out += lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(string(text[i]))

		if i < n-1 {
			out += "  "
		}
	}
	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base styles: ink on parchment-dark
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8a8296"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ece4d4")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c8c0cc"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#564e62"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8a8296"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#564e62"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#b08cd8"))

	// Crow voice: headings and the occasional aside
	crowVoiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c8a84c")).
			Italic(true)

	crowLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844")).
			Bold(true)

	goldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	// Notice levels
	noticeStyles = map[noticeLevel]lipgloss.Style{
		noticeInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8ab4d8")),
		noticeSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#8fc98a")),
		noticeWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#e0b75e")),
		noticeError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#d06060")),
	}

	// Selected row background
	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#221c2a"))
)

// GuideStyle returns a bold style in the guide's primary color, lightened
// for dark terminals. Unknown guides get the neutral dim color.
func GuideStyle(guideID string) lipgloss.Style {
	g, ok := domain.LookupGuide(guideID)
	if !ok {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8296")).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(lighten(g.ColorScheme.Primary, 0.45))).Bold(true)
}

// GuideAccent returns the guide's accent color style.
func GuideAccent(guideID string) lipgloss.Style {
	g, ok := domain.LookupGuide(guideID)
	if !ok {
		return goldStyle
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(g.ColorScheme.Accent))
}

// GuideBadge returns a short colored badge, e.g. "[Maud]". Empty for no guide.
func GuideBadge(guideID string) string {
	g, ok := domain.LookupGuide(guideID)
	if !ok {
		return ""
	}
	return GuideStyle(guideID).Render("[" + g.ShortName + "]")
}

// lighten mixes a hex color toward white by f (0..1).
func lighten(hex string, f float64) string {
	r, g, b := hexToRGB(hex)
	mix := func(c int) int { return clampByte(float64(c) + (255-float64(c))*f) }
	return fmt.Sprintf("#%02X%02X%02X", mix(r), mix(g), mix(b))
}

// cardBorder renders the top or bottom border of a framed card.
// pos: "top" or "bottom". label: optional header text (top only).
func cardBorder(pos, label, baseColor string, width int) string {
	w := width - 4
	if w < 10 {
		w = 10
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(baseColor))
	if pos == "bottom" {
		return style.Render(" └" + strings.Repeat("─", w))
	}
	if label == "" {
		return style.Render(" ┌" + strings.Repeat("─", w))
	}
	header := " ┌ " + label + " "
	remaining := w - lipgloss.Width(header) + 2
	if remaining < 1 {
		remaining = 1
	}
	return style.Render(" ┌ ") + label + " " + style.Render(strings.Repeat("─", remaining))
}

// hexToRGB parses a hex color string (#RRGGBB) into r,g,b ints.
func hexToRGB(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 128, 128, 128
	}
	var r, g, b int
	_, _ = fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b) //nolint:errcheck
	return r, g, b
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	url   string
}

// helpItemsFor lists the site pages under webURL.
func helpItemsFor(webURL string) []helpItem {
	host := strings.TrimPrefix(strings.TrimPrefix(webURL, "https://"), "http://")
	page := func(label, path string) helpItem {
		return helpItem{label: label, desc: host + path, url: webURL + path}
	}
	return []helpItem{
		page("About", "/about"),
		page("FAQ", "/faq"),
		page("Privacy Policy", "/privacy"),
		page("Pricing", "/pricing"),
		page("Website", ""),
	}
}

// helpView renders the interactive help overlay with a cursor.
func helpView(items []helpItem, cursor int) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#b08cd8")).
		Bold(true).
		Render("C R O W L A N D S")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(`"Ask plainly. The crows remember everything."`)

	attrib := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#D4A017")).
		Render("- Corrie Vance, 1913")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	selStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#b08cd8"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"crowlands", "Open the spellbook (interactive TUI)"},
		{"crowlands cast", "Cast a spell from the shell"},
		{"crowlands login", "Log in with email and password"},
		{"crowlands logout", "Clear your session"},
		{"crowlands grimoire", "List your saved spells"},
		{"crowlands version", "Show version"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n  %s\n  %s\n\n", title, quote, attrib)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range items {
		label := cmdStyle.Render(fmt.Sprintf("%-20s", item.label))
		prefix := "    "
		if i == cursor {
			label = selStyle.Render(fmt.Sprintf("%-20s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(item.desc))
	}
	return b.String()
}
