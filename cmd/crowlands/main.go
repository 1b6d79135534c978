package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crowlands/crowlands/internal/browser"
	"github.com/crowlands/crowlands/internal/config"
	"github.com/crowlands/crowlands/internal/logging"
	"github.com/crowlands/crowlands/internal/session"
	"github.com/crowlands/crowlands/internal/tui"
	"github.com/crowlands/crowlands/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// errShown means the failure was already reported to the user.
var errShown = errors.New("already reported")

func main() {
	root := newRootCmd(&cli{open: browser.Open})
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errShown) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// cli holds what every command shares. It is filled in by setup before any
// command runs.
type cli struct {
	verbose bool
	open    browser.Opener

	cfg    *config.Config
	store  *session.Store
	logger *zap.Logger
	api    *client.Client
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "crowlands",
		Short: "Where The Crowlands: spells, readings and wards from your terminal",
		Long: `Crowlands casts spells shaped by one of four guides, keeps them in your
grimoire and exports them as PDFs.

Run without arguments to open the interactive grimoire.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: c.runTUI,
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.emailCmd(),
		c.castCmd(),
		c.tarotCmd(),
		c.wardCmd(),
		c.guidesCmd(),
		c.guideCmd(),
		c.grimoireCmd(),
		c.wardsCmd(),
		c.waitlistCmd(),
		c.pageCmd("about", "About Where The Crowlands"),
		c.pageCmd("faq", "Frequently asked questions"),
		c.pageCmd("privacy", "Privacy policy"),
		versionCmd(),
	)

	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != root {
			defaultHelp(cmd, args)
			return
		}
		printHelp(cmd.OutOrStdout(), root)
	})
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	dir, err := session.DefaultDir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	opts := logging.Options{Level: cfg.Log.Level, Verbose: c.verbose}
	if cmd == cmd.Root() {
		// The TUI owns the terminal.
		opts.Dir = filepath.Join(dir, "logs")
	}
	logger, err := logging.New(opts)
	if err != nil {
		return err
	}

	var clientOpts []client.Option
	if cfg.RequestTimeout > 0 {
		clientOpts = append(clientOpts, client.WithTimeout(cfg.RequestTimeout))
	}
	if cfg.GenerateTimeout > 0 {
		clientOpts = append(clientOpts, client.WithGenerateTimeout(cfg.GenerateTimeout))
	}

	c.cfg = cfg
	c.logger = logger
	c.store = session.New(dir)
	c.api = client.New(cfg.APIURL, c.store, clientOpts...)
	logger.Debug("configured", zap.String("api", cfg.APIURL), zap.String("dir", dir))
	return nil
}

func (c *cli) runTUI(*cobra.Command, []string) error {
	app := tui.NewApp(tui.Deps{
		Client:  c.api,
		Session: c.store,
		Config:  *c.cfg,
		Logger:  c.logger,
		Open:    c.open,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "crowlands "+version)
		},
	}
}
