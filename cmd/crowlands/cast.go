package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crowlands/crowlands/internal/export"
	"github.com/crowlands/crowlands/internal/render"
	"github.com/crowlands/crowlands/internal/workflow"
	"github.com/crowlands/crowlands/pkg/domain"
)

// pageFlags are the actions offered on any spell page.
type pageFlags struct {
	full bool
	save bool
	pdf  bool
	copy bool
	dir  string
}

func (f *pageFlags) register(cmd *cobra.Command, withSave bool) {
	cmd.Flags().BoolVar(&f.full, "full", false, "show the full page even when a tarot card is drawn")
	if withSave {
		cmd.Flags().BoolVar(&f.save, "save", false, "save the spell to your grimoire")
	}
	cmd.Flags().BoolVar(&f.pdf, "pdf", false, "export the spell as a PDF")
	cmd.Flags().BoolVar(&f.copy, "copy", false, "copy the spell text to the clipboard")
	cmd.Flags().StringVar(&f.dir, "dir", "", "where PDFs are written (default from config)")
}

func (c *cli) castCmd() *cobra.Command {
	var (
		guide string
		image bool
		flags pageFlags
	)
	cmd := &cobra.Command{
		Use:   "cast <intention...>",
		Short: "Cast a spell for your intention",
		Long: `Sends your intention to the crows and prints the spell they bring back.

Example:
  crowlands cast --guide maud "a charm to bring warmth back to an old house"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			notes := cmd.ErrOrStderr()
			if guide == "" {
				guide = c.store.Guide()
			}
			if guide != "" && !domain.ValidGuideID(guide) {
				return fmt.Errorf("unknown guide %q (choose from %s)", guide, strings.Join(domain.GuideOrder, ", "))
			}

			wf := workflow.New(c.api,
				workflow.WithNotifier(notifier(notes)),
				workflow.WithLogger(c.logger),
				workflow.WithLoginPrompt(func() { fmt.Fprintln(notes, dimStyle.Render(loginHint)) }),
				workflow.WithStatusRefresh(c.api, func(st *domain.SubscriptionStatus) {
					c.logger.Debug("status refreshed", zap.Int("remaining", st.SpellsRemaining))
				}),
			)
			defer wf.Wait()

			req := domain.SpellRequest{
				IntentionText: strings.Join(args, " "),
				GuideID:       guide,
				GenerateImage: image,
			}
			snap, err := wf.Generate(cmd.Context(), req)
			if err != nil {
				var verr *workflow.ValidationError
				if errors.As(err, &verr) {
					return errShown
				}
				return err
			}

			switch snap.State {
			case workflow.StateSuccess:
			case workflow.StateLimitReached:
				fmt.Fprintln(notes, dimStyle.Render("More spells: "+c.cfg.UpgradeURL()))
				return errShown
			default:
				return errShown
			}

			page := render.NewPage(*snap.Result, guide)
			if info := snap.Result.LimitInfo; info != nil && info.SpellLimit > 0 {
				fmt.Fprintln(notes, dimStyle.Render(fmt.Sprintf("%d of %d spells left", info.SpellsRemaining, info.SpellLimit)))
			}
			return c.showPage(cmd, page, flags, true)
		},
	}
	cmd.Flags().StringVarP(&guide, "guide", "g", "", "guide id: corrie, ezra, maud or silas (default: your saved guide)")
	cmd.Flags().BoolVar(&image, "image", false, "ask for an illustration")
	flags.register(cmd, true)
	return cmd
}

// showPage prints page and runs the actions its flags ask for.
func (c *cli) showPage(cmd *cobra.Command, page render.Page, flags pageFlags, canSave bool) error {
	out, notes := cmd.OutOrStdout(), cmd.ErrOrStderr()
	mode := render.DefaultMode(page.Spell)
	if flags.full || page.Degraded() {
		mode = render.ModeFull
	}
	printMarkdown(out, render.Markdown(page, mode, render.FullOptions{}))

	notify := notifier(notes)
	failed := false
	if flags.copy {
		workflow.NewCopyAction(workflow.SystemClipboard{Terminal: notes}, notify, c.logger).Copy(page.Spell)
	}
	if flags.save && canSave {
		save := workflow.NewSaveAction(workflow.SaveConfig{
			Saver:        c.api,
			Tokens:       c.store,
			Notify:       notify,
			PromptLogin:  func() { fmt.Fprintln(notes, dimStyle.Render(loginHint)) },
			Open:         c.open,
			UpgradeURL:   c.cfg.UpgradeURL(),
			UpgradeDelay: c.cfg.UpgradeDelay,
			AfterFunc:    waitThen,
			Logger:       c.logger,
		})
		if _, err := save.Save(cmd.Context(), page); err != nil {
			failed = true
		}
	}
	if flags.pdf {
		if _, err := c.exportAction(notes, flags.dir).Export(cmd.Context(), page); err != nil {
			failed = true
		}
	}
	if failed {
		return errShown
	}
	return nil
}

func (c *cli) exportAction(notes io.Writer, dir string) *workflow.ExportAction {
	if dir == "" {
		dir = c.cfg.Export.OutputDir
	}
	if dir == "" {
		dir = "."
	}
	chain := export.NewChain(c.cfg.Export.BrowserBin, c.cfg.Export.Headless, c.open, c.logger)
	return workflow.NewExportAction(chain, dir, notifier(notes), c.logger)
}

// waitThen runs f after d on the calling goroutine, so a one-shot command
// does not exit before the upgrade page opens.
func waitThen(d time.Duration, f func()) *time.Timer {
	time.Sleep(d)
	f()
	return nil
}

func (c *cli) tarotCmd() *cobra.Command {
	var spread string
	cmd := &cobra.Command{
		Use:   "tarot <question...>",
		Short: "Ask Corrie for a tarot reading",
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return errors.New("ask Corrie a question first")
			}
			res, err := c.generateReading(cmd.Context(), func(ctx context.Context) (string, error) {
				r, err := c.api.CorrieTarot(ctx, domain.TarotRequest{Question: question, Spread: spread})
				if err != nil {
					return "", err
				}
				return render.TarotMarkdown(r.Reading), nil
			})
			if err != nil {
				return c.reportFailure(cmd.ErrOrStderr(), "tarot reading", err)
			}
			printMarkdown(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&spread, "spread", "", "spread to lay, e.g. three-card")
	return cmd
}

func (c *cli) wardCmd() *cobra.Command {
	var guide string
	cmd := &cobra.Command{
		Use:   "ward <concern...>",
		Short: "Ask for a ward against a concern",
		RunE: func(cmd *cobra.Command, args []string) error {
			concern := strings.TrimSpace(strings.Join(args, " "))
			if concern == "" {
				return errors.New("name the concern the ward should guard against")
			}
			if guide == "" {
				guide = c.store.Guide()
			}
			res, err := c.generateReading(cmd.Context(), func(ctx context.Context) (string, error) {
				r, err := c.api.SuggestWard(ctx, domain.WardRequest{Concern: concern, GuideID: guide})
				if err != nil {
					return "", err
				}
				return render.WardMarkdown(r.Ward), nil
			})
			if err != nil {
				return c.reportFailure(cmd.ErrOrStderr(), "ward suggestion", err)
			}
			printMarkdown(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&guide, "guide", "g", "", "guide id (default: your saved guide)")
	return cmd
}

// generateReading runs one AI call and logs how long it took.
func (c *cli) generateReading(ctx context.Context, call func(context.Context) (string, error)) (string, error) {
	start := time.Now()
	md, err := call(ctx)
	c.logger.Debug("reading finished", zap.Duration("took", time.Since(start)), zap.Error(err))
	return md, err
}
