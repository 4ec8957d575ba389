package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/snippetbox/internal/config"
)

// Options are the process-level inputs of a run.
type Options struct {
	In   io.Reader
	Out  io.Writer
	Err  io.Writer
	Open OpenFunc
}

// cli carries the state shared by every command of one invocation.
type cli struct {
	opts    Options
	cfgFile string
	server  string
	store   string
	verbose bool

	app *App
	ui  *UI
}

// Run executes the snippets command line with args and closes the store
// afterwards.
func Run(ctx context.Context, args []string, opts Options) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Open == nil {
		opts.Open = OpenApp
	}

	c := &cli{opts: opts}
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	err := root.ExecuteContext(ctx)
	if c.app != nil {
		if closeErr := c.app.Close(); closeErr != nil {
			c.app.Logger.Warn("closing store", slog.String("error", closeErr.Error()))
		}
	}
	return err
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "snippets",
		Short: "A personal code snippet manager",
		Long: `snippets keeps code snippets with tags, favorites, a trash bin and
per-snippet version history in a local store. Accounts live on the
snippetbox auth server; sign in once and the session is cached.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default "+config.DefaultDir()+"/config.yaml)")
	flags.StringVar(&c.server, "server", "", "auth server URL")
	flags.StringVar(&c.store, "store", "", "path of the local store")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddGroup(
		&cobra.Group{ID: "snippets", Title: "Snippet Commands:"},
		&cobra.Group{ID: "account", Title: "Account Commands:"},
	)

	for _, cmd := range []*cobra.Command{
		c.addCommand(), c.editCommand(), c.draftCommand(),
		c.listCommand(), c.showCommand(), c.tagsCommand(), c.languagesCommand(),
		c.favCommand(), c.deleteCommand(), c.trashCommand(), c.restoreCommand(), c.purgeCommand(),
		c.historyCommand(), c.revertCommand(),
		c.exportCommand(), c.importCommand(),
	} {
		cmd.GroupID = "snippets"
		c.gate(cmd)
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{
		c.signupCommand(), c.loginCommand(), c.logoutCommand(), c.whoamiCommand(), c.pingCommand(),
	} {
		cmd.GroupID = "account"
		root.AddCommand(cmd)
	}
	root.AddCommand(c.themeCommand())

	return root
}

// setup loads the config and opens the App before any command runs.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	v := config.NewClientViper(c.cfgFile)
	flags := cmd.Root().PersistentFlags()
	if err := v.BindPFlag(config.KeyServerURL, flags.Lookup("server")); err != nil {
		return err
	}
	if err := v.BindPFlag(config.KeyStorePath, flags.Lookup("store")); err != nil {
		return err
	}

	cfg, err := config.LoadClient(v)
	if err != nil {
		return err
	}

	logger := newLogger(c.opts.Err, cfg.LogLevel, c.verbose)
	app, err := c.opts.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	c.app = app

	dark, err := app.Prefs.DarkMode(cmd.Context())
	if err != nil {
		logger.Warn("reading theme preference", slog.String("error", err.Error()))
	}
	c.ui = NewUI(c.opts.Out, dark)
	return nil
}

// gate makes cmd and its subcommands refuse to run when nobody is signed in.
func (c *cli) gate(cmd *cobra.Command) {
	cmd.PreRunE = c.requireSession
	for _, sub := range cmd.Commands() {
		c.gate(sub)
	}
}

func (c *cli) requireSession(cmd *cobra.Command, _ []string) error {
	username, err := c.app.RequireUser(cmd.Context())
	if err != nil {
		return err
	}
	c.app.Logger.Debug("session", slog.String("username", username))
	return nil
}

func newLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelWarn
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
