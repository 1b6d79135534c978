package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crowlands/crowlands/pkg/client"
	"github.com/crowlands/crowlands/pkg/domain"
)

func (c *cli) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with your email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			p := newPrompter(cmd.InOrStdin(), out)
			if email == "" {
				var err error
				if email, err = p.line("Email: "); err != nil {
					return err
				}
			}
			password, err := p.password("Password: ")
			if err != nil {
				return err
			}

			resp, err := c.api.Login(cmd.Context(), email, password)
			if err != nil {
				if client.IsStatus(err, http.StatusUnauthorized) {
					fmt.Fprintln(out, errorStyle.Render("✗ That email and password do not match."))
					return errShown
				}
				return c.reportFailure(out, "login", err)
			}
			if err := c.store.SaveLogin(*resp); err != nil {
				return err
			}
			fmt.Fprintf(out, "Logged in as %s\n", resp.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			p := newPrompter(cmd.InOrStdin(), out)
			var err error
			if email == "" {
				if email, err = p.line("Email: "); err != nil {
					return err
				}
			}
			password, err := p.password("Password: ")
			if err != nil {
				return err
			}
			again, err := p.password("Again: ")
			if err != nil {
				return err
			}
			if password != again {
				return errors.New("passwords do not match")
			}

			resp, err := c.api.Register(cmd.Context(), email, password, name)
			if err != nil {
				var httpErr *client.HTTPError
				if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusBadRequest {
					fmt.Fprintln(out, errorStyle.Render("✗ "+httpErr.Message))
					return errShown
				}
				return c.reportFailure(out, "register", err)
			}
			if err := c.store.SaveLogin(*resp); err != nil {
				return err
			}
			fmt.Fprintf(out, "Welcome, %s. Your grimoire is open.\n", displayName(resp.User))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear your session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			had, err := c.store.Clear()
			if err != nil {
				return err
			}
			if !had {
				fmt.Fprintln(cmd.OutOrStdout(), "Already logged out.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show your account and spell usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !c.store.HasToken() {
				printGreeting(out)
				return nil
			}

			profile, err := c.api.LoadProfile(cmd.Context())
			if err != nil {
				if client.IsStatus(err, http.StatusUnauthorized) {
					return c.reportFailure(out, "whoami", err)
				}
				c.logger.Warn("load profile failed", zap.Error(err))
				cached, _ := c.store.CachedUser() //nolint:errcheck // a bad cache reads as no cache
				if cached == nil {
					return c.reportFailure(out, "whoami", err)
				}
				printUser(out, *cached, "tier unknown (offline)")
				return nil
			}
			if err := c.store.SaveUser(*profile.User); err != nil {
				c.logger.Debug("cache user", zap.Error(err))
			}
			tier := ""
			if profile.Status != nil {
				tier = profile.Status.SubscriptionTier
			}
			printUser(out, *profile.User, tier)
			printUsage(out, profile.Status)
			return nil
		},
	}
}

func (c *cli) emailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "email <new-address>",
		Short: "Change your account email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !c.store.HasToken() {
				fmt.Fprintln(out, loginHint)
				return errShown
			}
			p := newPrompter(cmd.InOrStdin(), out)
			password, err := p.password("Current password: ")
			if err != nil {
				return err
			}
			u, err := c.api.UpdateEmail(cmd.Context(), args[0], password)
			if err != nil {
				var httpErr *client.HTTPError
				if errors.As(err, &httpErr) {
					switch httpErr.StatusCode {
					case http.StatusUnauthorized:
						fmt.Fprintln(out, errorStyle.Render("✗ That password is not right."))
						return errShown
					case http.StatusBadRequest:
						fmt.Fprintln(out, errorStyle.Render("✗ "+httpErr.Message))
						return errShown
					}
				}
				return c.reportFailure(out, "email change", err)
			}
			if err := c.store.SaveUser(*u); err != nil {
				c.logger.Debug("cache user", zap.Error(err))
			}
			fmt.Fprintf(out, "Your email is now %s\n", u.Email)
			return nil
		},
	}
}

func displayName(u domain.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

func printUser(w io.Writer, u domain.User, tier string) {
	fmt.Fprintf(w, "%s <%s>\n", displayName(u), u.Email)
	if tier == "" {
		tier = "tier unknown"
	}
	fmt.Fprintf(w, "  %s", tier)
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(w, " · since %s", u.CreatedAt.Format("January 2006"))
	}
	fmt.Fprintln(w)
}

func printUsage(w io.Writer, st *domain.SubscriptionStatus) {
	if st == nil {
		return
	}
	var b strings.Builder
	if st.SpellLimit > 0 {
		fmt.Fprintf(&b, "  %d of %d spells used · %d left", st.SpellsUsed, st.SpellLimit, st.SpellsRemaining)
	} else {
		fmt.Fprintf(&b, "  %d spells used", st.SpellsUsed)
	}
	fmt.Fprintf(&b, " · %d cast in total", st.TotalSpellsGenerated)
	fmt.Fprintln(w, b.String())
}
