package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var crowGreetings = [...]string{
	"The crows have been circling your door since supper.",
	"Maud left the kettle on. You're letting it boil dry.",
	"A crow brought us a button from your coat. We'd like to return it.",
	"Corrie laid three cards for you this morning. She won't say which.",
	"Ezra has your planetary hour worked out. It started four minutes ago.",
	"Silas says someone on your side of the veil keeps asking after you.",
	"The grimoire has a blank page with your name pencilled at the top.",
	"Salt on the sill, thread on the latch. We only need your word.",
	"The crows do not knock twice. This is the second knock.",
	"Every charm in the book began as somebody's worry. Bring yours.",
	"We keep the old ways in a tin by the stove. The lid is loose.",
	"A murder of crows is a committee. It has voted to let you in.",
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0b75e")).Bold(true)
	quoteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	attribStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b2f4a"))
)

func printHelp(w io.Writer, root *cobra.Command) {
	title := titleStyle.Render("C R O W L A N D S")
	quote := quoteStyle.Render(`"Say what you seek. The crows will fetch the rest."`)
	attrib := attribStyle.Render("The Crows")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	fmt.Fprintf(w, "\n  %s\n\n  %s\n    %s\n\n  Commands:\n", title, quote, attrib)
	fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", "crowlands")), dimStyle.Render("Open the grimoire (interactive)"))
	for _, c := range root.Commands() {
		if !c.IsAvailableCommand() {
			continue
		}
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", "crowlands "+c.Name())), dimStyle.Render(c.Short))
	}
	fmt.Fprintf(w, "\n  %s\n\n", dimStyle.Render(`Run "crowlands <command> --help" for flags.`))
}

func printGreeting(w io.Writer) {
	msg := crowGreetings[rand.IntN(len(crowGreetings))]

	fmt.Fprintf(w, "\n%s\n\n%s\n%s\n\n%s\n\n",
		titleStyle.Render("CROWLANDS"),
		quoteStyle.Render(msg),
		attribStyle.Render("The Crows"),
		dimStyle.Render("Not logged in. To enter: crowlands login"),
	)
}
