package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sakif/snippetbox/internal/apperror"
)

func (c *cli) signupCommand() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "signup <username>",
		Short: "Create an account on the auth server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := c.password(password)
			if err != nil {
				return err
			}
			var username string
			err = c.spin("Creating account", func() error {
				username, err = c.app.Auth.Signup(cmd.Context(), args[0], pw)
				return err
			})
			if err != nil {
				return err
			}
			c.ui.Success("Account %s created. Sign in with `snippets login %s`.", username, username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")
	return cmd
}

func (c *cli) loginCommand() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:     "login <username>",
		Aliases: []string{"signin"},
		Short:   "Sign in and cache the session",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := c.password(password)
			if err != nil {
				return err
			}
			var username string
			err = c.spin("Signing in", func() error {
				username, err = c.app.Auth.Signin(cmd.Context(), args[0], pw)
				return err
			})
			if err != nil {
				return err
			}
			c.ui.Success("Signed in as %s", username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")
	return cmd
}

func (c *cli) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the cached session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			c.ui.Success("Signed out")
			return nil
		},
	}
}

func (c *cli) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Call the protected endpoint with the cached token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			msg, err := c.app.Auth.Whoami(cmd.Context())
			if err != nil {
				return err
			}
			c.ui.Println(msg)
			return nil
		},
	}
}

func (c *cli) pingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the auth server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Auth.Ping(cmd.Context()); err != nil {
				return err
			}
			c.ui.Success("Server is up")
			return nil
		},
	}
}

// password returns flagValue, or reads one from the input: without echo on
// a terminal, as the first line otherwise.
func (c *cli) password(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if f, ok := c.opts.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.opts.Err, "Password: ")
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.opts.Err)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(c.opts.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", apperror.ValidationFailed("password", "Password is required")
	}
	return line, nil
}

// spin runs fn behind a spinner when output is a terminal.
func (c *cli) spin(text string, fn func() error) error {
	if !c.ui.color {
		return fn()
	}
	spinner, err := pterm.DefaultSpinner.
		WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithRemoveWhenDone(true).
		Start(text)
	if err != nil {
		return fn()
	}
	err = fn()
	_ = spinner.Stop()
	return err
}
