package cli

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-privateplot/internal/logging"
	"github.com/goliatone/go-privateplot/internal/logging/console"
	"github.com/goliatone/go-privateplot/internal/remote"
	"github.com/goliatone/go-privateplot/internal/settings"
	"github.com/goliatone/go-privateplot/internal/terminal"
	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

// Env holds the process resources the commands run against.
type Env struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// Dir is where settings files are looked up and relative paths resolve.
	Dir string
	// Lookup reads environment variables.
	Lookup func(string) (string, bool)
	// HTTPClient overrides the client used for the instance API.
	HTTPClient *http.Client
	// SkipDotEnv disables loading Dir/.env.
	SkipDotEnv bool
}

// DefaultEnv binds the standard streams and the working directory.
func DefaultEnv() Env {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return Env{
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
		Dir:    dir,
		Lookup: os.LookupEnv,
	}
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

type app struct {
	env      Env
	opts     *RootOptions
	printer  *terminal.Printer
	provider interfaces.LoggerProvider
}

// NewRootCommand creates the privateplot command tree.
func NewRootCommand(env Env) *cobra.Command {
	env = normalizeEnv(env)
	a := &app{
		env:     env,
		opts:    &RootOptions{},
		printer: terminal.New(env.Out, env.Err),
	}
	a.provider = a.loggerProvider()

	cmd := &cobra.Command{
		Use:           "privateplot",
		Short:         "Publish markdown articles to a privateplot instance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.provider = a.loggerProvider()
			return nil
		},
	}
	cmd.SetIn(env.In)
	cmd.SetOut(env.Out)
	cmd.SetErr(env.Err)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return invalidInput(err)
	})

	cmd.PersistentFlags().BoolVarP(&a.opts.Verbose, "verbose", "v", false, "print diagnostic logs to stderr")

	cmd.AddCommand(newPublishCommand(a))
	cmd.AddCommand(newDeleteCommand(a))
	cmd.AddCommand(newListCommand(a))
	cmd.AddCommand(newSettingsCommand(a))
	cmd.AddCommand(newLinksCommand(a))
	return cmd
}

// Execute runs the command tree with args and returns the exit code.
func Execute(ctx context.Context, env Env, args []string) int {
	env = normalizeEnv(env)
	cmd := NewRootCommand(env)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		terminal.New(env.Out, env.Err).Error(err.Error())
	}
	return ExitCode(err)
}

func normalizeEnv(env Env) Env {
	if env.In == nil {
		env.In = os.Stdin
	}
	if env.Out == nil {
		env.Out = os.Stdout
	}
	if env.Err == nil {
		env.Err = os.Stderr
	}
	if env.Lookup == nil {
		env.Lookup = os.LookupEnv
	}
	if env.Dir == "" {
		env.Dir = "."
	}
	return env
}

func (a *app) loggerProvider() interfaces.LoggerProvider {
	level := console.LevelError
	if a.opts.Verbose {
		level = console.LevelDebug
	}
	return console.NewProvider(console.Options{
		Writer:   a.env.Err,
		MinLevel: &level,
		Styled:   a.printer.Styled(),
	})
}

func (a *app) loader() *settings.Loader {
	opts := []settings.Option{
		settings.WithLookup(a.env.Lookup),
		settings.WithLogger(logging.ModuleLogger(a.provider, "privateplot.settings")),
	}
	if a.env.SkipDotEnv {
		opts = append(opts, settings.WithoutDotEnv())
	}
	return settings.NewLoader(a.env.Dir, opts...)
}

// client resolves settings and builds the instance client.
func (a *app) client() (*remote.Client, error) {
	loaded, err := a.loader().Load()
	if err != nil {
		return nil, err
	}
	if loaded.HostDefaulted {
		a.printer.Warning("No instance host configured, using " + settings.DefaultHost)
	}
	opts := []remote.Option{remote.WithLogger(logging.RemoteLogger(a.provider))}
	if a.env.HTTPClient != nil {
		opts = append(opts, remote.WithHTTPClient(a.env.HTTPClient))
	}
	return remote.New(remote.Config{Host: loaded.Host(), Token: loaded.Token()}, opts...), nil
}

func (a *app) prompter() *terminal.Prompter {
	return terminal.NewPrompter(a.printer, a.env.In)
}

func (a *app) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.env.Dir, path)
}

func exactArgs(n int) cobra.PositionalArgs {
	check := cobra.ExactArgs(n)
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return invalidInput(err)
		}
		return nil
	}
}

func maxArgs(n int) cobra.PositionalArgs {
	check := cobra.MaximumNArgs(n)
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return invalidInput(err)
		}
		return nil
	}
}
