package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/crowlands/crowlands/internal/render"
	"github.com/crowlands/crowlands/pkg/domain"
)

func (c *cli) grimoireCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grimoire",
		Short: "Your saved spells",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved spells",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := c.listSpells(cmd)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Your grimoire is empty. Cast a spell and save it with --save.")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{shortID(e.ID), e.SpellData.Title(), guideLabel(e), e.CreatedAt.Format("2 Jan 2006")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), listTable([]string{"ID", "TITLE", "GUIDE", "SAVED"}, rows))
			return nil
		},
	}

	var flags pageFlags
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved spell",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.findSpell(cmd, args[0])
			if err != nil {
				return err
			}
			return c.showPage(cmd, render.PageFromEntry(*e), flags, false)
		},
	}
	flags.register(show, false)

	var yes bool
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved spell",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.findSpell(cmd, args[0])
			if err != nil {
				return err
			}
			return c.confirmDelete(cmd, yes, e.SpellData.Title(), func(ctx context.Context) error {
				return c.api.DeleteSpell(ctx, e.ID)
			})
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	var dir string
	exp := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a saved spell as a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.findSpell(cmd, args[0])
			if err != nil {
				return err
			}
			if _, err := c.exportAction(cmd.ErrOrStderr(), dir).Export(cmd.Context(), render.PageFromEntry(*e)); err != nil {
				return errShown
			}
			return nil
		},
	}
	exp.Flags().StringVar(&dir, "dir", "", "where the PDF is written (default from config)")

	cmd.AddCommand(list, show, del, exp)
	return cmd
}

func (c *cli) wardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wards",
		Short: "Your saved wards",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved wards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireLogin(cmd); err != nil {
				return err
			}
			wards, err := c.api.ListWards(cmd.Context())
			if err != nil {
				return c.reportFailure(cmd.ErrOrStderr(), "list wards", err)
			}
			if len(wards) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No wards kept yet.")
				return nil
			}
			rows := make([][]string, 0, len(wards))
			for _, w := range wards {
				rows = append(rows, []string{shortID(w.ID), w.WardData.Name, w.Concern, w.CreatedAt.Format("2 Jan 2006")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), listTable([]string{"ID", "WARD", "AGAINST", "SAVED"}, rows))
			return nil
		},
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved ward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requireLogin(cmd); err != nil {
				return err
			}
			wards, err := c.api.ListWards(cmd.Context())
			if err != nil {
				return c.reportFailure(cmd.ErrOrStderr(), "list wards", err)
			}
			ids := make([]string, len(wards))
			for i, w := range wards {
				ids[i] = w.ID
			}
			i, err := matchID(ids, args[0])
			if err != nil {
				return err
			}
			return c.confirmDelete(cmd, yes, wards[i].WardData.Name, func(ctx context.Context) error {
				return c.api.DeleteWard(ctx, wards[i].ID)
			})
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(list, del)
	return cmd
}

func (c *cli) requireLogin(cmd *cobra.Command) error {
	if c.store.HasToken() {
		return nil
	}
	fmt.Fprintln(cmd.ErrOrStderr(), warningStyle.Render("! Log in to open your grimoire."))
	fmt.Fprintln(cmd.ErrOrStderr(), dimStyle.Render(loginHint))
	return errShown
}

func (c *cli) listSpells(cmd *cobra.Command) ([]domain.SavedGrimoireEntry, error) {
	if err := c.requireLogin(cmd); err != nil {
		return nil, err
	}
	entries, err := c.api.ListSpells(cmd.Context())
	if err != nil {
		return nil, c.reportFailure(cmd.ErrOrStderr(), "list spells", err)
	}
	return entries, nil
}

func (c *cli) findSpell(cmd *cobra.Command, id string) (*domain.SavedGrimoireEntry, error) {
	entries, err := c.listSpells(cmd)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	i, err := matchID(ids, id)
	if err != nil {
		return nil, err
	}
	return &entries[i], nil
}

func (c *cli) confirmDelete(cmd *cobra.Command, yes bool, name string, del func(context.Context) error) error {
	if !yes && !newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).confirm(fmt.Sprintf("Delete %q?", name)) {
		fmt.Fprintln(cmd.OutOrStdout(), "Kept.")
		return nil
	}
	if err := del(cmd.Context()); err != nil {
		return c.reportFailure(cmd.ErrOrStderr(), "delete", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q.\n", name)
	return nil
}

// matchID finds id in ids by exact match or unique prefix, so the short ids
// printed by the list commands can be typed back.
func matchID(ids []string, id string) (int, error) {
	if id == "" {
		return -1, errors.New("an id is required")
	}
	for i, candidate := range ids {
		if candidate == id {
			return i, nil
		}
	}
	found := -1
	for i, candidate := range ids {
		if strings.HasPrefix(candidate, id) {
			if found >= 0 {
				return -1, fmt.Errorf("%q matches more than one entry", id)
			}
			found = i
		}
	}
	if found < 0 {
		return -1, fmt.Errorf("nothing in your grimoire matches %q", id)
	}
	return found, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func guideLabel(e domain.SavedGrimoireEntry) string {
	if e.ArchetypeName == "" {
		return "-"
	}
	return e.ArchetypeName
}

func listTable(headers []string, rows [][]string) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Render()
}
