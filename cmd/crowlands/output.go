package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/crowlands/crowlands/internal/render"
	"github.com/crowlands/crowlands/internal/workflow"
)

const loginHint = "Run: crowlands login"

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#34d474"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d4a844"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e05252"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// notifier prints workflow notifications as single lines.
func notifier(w io.Writer) workflow.Notifier {
	return func(n workflow.Notify) {
		switch n.Level {
		case workflow.LevelSuccess:
			fmt.Fprintln(w, successStyle.Render("✓ "+n.Message))
		case workflow.LevelWarning:
			fmt.Fprintln(w, warningStyle.Render("! "+n.Message))
		case workflow.LevelError:
			fmt.Fprintln(w, errorStyle.Render("✗ "+n.Message))
		default:
			fmt.Fprintln(w, n.Message)
		}
	}
}

// reportFailure tells the user what went wrong with an API call, using the
// same mapping as spell generation, and returns errShown.
func (c *cli) reportFailure(w io.Writer, what string, err error) error {
	_, effects := workflow.Transition(
		workflow.Snapshot{State: workflow.StateSubmitting, Seq: 1},
		workflow.Rejected{Seq: 1, Err: err},
	)
	c.perform(w, what, effects)
	return errShown
}

func (c *cli) perform(w io.Writer, what string, effects []workflow.Effect) {
	notify := notifier(w)
	for _, eff := range effects {
		switch eff := eff.(type) {
		case workflow.Notify:
			notify(eff)
		case workflow.LogError:
			c.logger.Error(what+" failed", zap.Error(eff.Err))
		case workflow.PromptLogin:
			fmt.Fprintln(w, dimStyle.Render(loginHint))
		}
	}
}

// printMarkdown styles md with glamour when w is a terminal and writes it
// unchanged otherwise.
func printMarkdown(w io.Writer, md string) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(w, md)
		return
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width > 100 {
		width = 100
	}
	fmt.Fprint(w, render.NewTerminal(width).Render(md))
}

// prompter reads answers from the command's input.
type prompter struct {
	in  io.Reader
	out io.Writer
	sc  *bufio.Scanner
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, out: out, sc: bufio.NewScanner(in)}
}

func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(p.sc.Text()), nil
}

// password reads without echo from a terminal, or a plain line otherwise.
func (p *prompter) password(prompt string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.line(prompt)
	}
	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (p *prompter) confirm(prompt string) bool {
	ans, err := p.line(prompt + " [y/N] ")
	if err != nil {
		return false
	}
	ans = strings.ToLower(ans)
	return ans == "y" || ans == "yes"
}
