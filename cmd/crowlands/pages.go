package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crowlands/crowlands/pkg/client"
	"github.com/crowlands/crowlands/pkg/domain"
)

func (c *cli) guidesCmd() *cobra.Command {
	var forget bool
	cmd := &cobra.Command{
		Use:   "guides",
		Short: "List the four guides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if forget {
				if err := c.store.SaveGuide(""); err != nil {
					return err
				}
				fmt.Fprintln(out, "No default guide. Spells are cast without one.")
				return nil
			}
			preferred := c.store.Guide()
			for _, g := range domain.GuidesInOrder() {
				mark := " "
				if g.ID == preferred {
					mark = "★"
				}
				name := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(g.ColorScheme.Accent)).Render(g.Name)
				fmt.Fprintf(out, "%s %-7s %s, %s\n", mark, g.ID, name, g.Title)
				fmt.Fprintf(out, "          %s\n", dimStyle.Render(g.RitualStyle))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&forget, "clear", false, "forget the default guide")
	return cmd
}

func (c *cli) guideCmd() *cobra.Command {
	var setDefault bool
	cmd := &cobra.Command{
		Use:       "guide <id>",
		Short:     "Show a guide, or make them your default",
		Args:      cobra.ExactArgs(1),
		ValidArgs: domain.GuideOrder,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, ok := domain.LookupGuide(strings.ToLower(args[0]))
			if !ok {
				return fmt.Errorf("unknown guide %q (choose from %s)", args[0], strings.Join(domain.GuideOrder, ", "))
			}
			out := cmd.OutOrStdout()
			if setDefault {
				if err := c.store.SaveGuide(g.ID); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s will guide your spells.\n", g.ShortName)
				return nil
			}
			printMarkdown(out, guideMarkdown(g))
			return nil
		},
	}
	cmd.Flags().BoolVar(&setDefault, "default", false, "cast with this guide unless told otherwise")
	return cmd
}

func guideMarkdown(g domain.Guide) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n*%s*\n\n%s\n\n", g.Name, g.Title, g.Bio)
	fmt.Fprintf(&b, "**Ritual style:** %s\n\n", g.RitualStyle)
	if len(g.Specialties) > 0 {
		fmt.Fprintf(&b, "**Specialties:** %s\n\n", strings.Join(g.Specialties, ", "))
	}
	if len(g.Tenets) > 0 {
		b.WriteString("## Tenets\n\n")
		for _, t := range g.Tenets {
			fmt.Fprintf(&b, "- %s\n", t)
		}
		b.WriteString("\n")
	}
	if len(g.SamplePrompts) > 0 {
		b.WriteString("## Try asking\n\n")
		for _, p := range g.SamplePrompts {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	return b.String()
}

func (c *cli) waitlistCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "waitlist <email>",
		Short: "Join the waitlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			req := domain.WaitlistRequest{Email: strings.TrimSpace(args[0]), Name: name, Source: "cli"}
			if err := req.Validate(); err != nil {
				return fmt.Errorf("%q is not an email address we can write to", args[0])
			}
			err := c.api.JoinWaitlist(cmd.Context(), req)
			switch {
			case err == nil:
				fmt.Fprintln(out, successStyle.Render("✓ You're on the list. The crows will find you."))
			case errors.Is(err, client.ErrAlreadyOnWaitlist):
				fmt.Fprintln(out, "You're already on the list.")
			default:
				return c.reportFailure(cmd.ErrOrStderr(), "join waitlist", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "your name")
	return cmd
}

// pageCmd opens one of the public web pages, printing the URL when no
// browser is available.
func (c *cli) pageCmd(page, short string) *cobra.Command {
	return &cobra.Command{
		Use:   page,
		Short: short,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			url := c.cfg.PageURL(page)
			if err := c.open(url); err != nil {
				c.logger.Debug("open page failed", zap.String("url", url), zap.Error(err))
				fmt.Fprintln(cmd.OutOrStdout(), url)
			}
		},
	}
}
