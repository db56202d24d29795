// Package cli implements the fightmatch subcommands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	service "github.com/okian/fightmatch/internal/app"
	"github.com/okian/fightmatch/internal/config"
	"github.com/okian/fightmatch/pkg/logger"
)

// Exit codes returned by Run.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type command struct {
	name    string
	summary string
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = []command{ //nolint:gochecknoglobals // fixed command table
	{"scrape", "Download UFCStats event and fight pages since a date", (*App).scrape},
	{"build-dataset", "Parse raw pages into fighters, events, bouts and stats", (*App).buildDataset},
	{"features", "Build the per-fighter features table", (*App).features},
	{"snapshots", "Build the per-bout training snapshot table", (*App).snapshots},
	{"recommend", "Print recommended matchups with explanations", (*App).recommend},
	{"opponents", "Print suggested opponents for one fighter", (*App).opponents},
	{"serve", "Run the HTTP API over the features table", (*App).serve},
}

// errUsage marks a flag or argument error that was already reported.
var errUsage = errors.New("usage")

// App runs one subcommand against a loaded configuration.
type App struct {
	stdout      io.Writer
	stderr      io.Writer
	log         logger.Logger
	cfg         *config.Config
	serviceOpts []service.Option
}

// New creates an App writing results to stdout and diagnostics to stderr.
func New(stdout, stderr io.Writer, opts ...Option) *App {
	a := &App{stdout: stdout, stderr: stderr, log: logger.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes args, which exclude the program name, and returns the
// process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.usage()
		return ExitUsage
	}
	name := args[0]
	if name == "help" || name == "-h" || name == "--help" {
		a.usage()
		return ExitOK
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(a.stderr, "unknown command %q\n\n", name)
		a.usage()
		return ExitUsage
	}

	if a.cfg == nil {
		cfg, err := config.Load(ctx)
		if err != nil {
			fmt.Fprintf(a.stderr, "load config: %v\n", err)
			return ExitError
		}
		a.cfg = cfg
	}

	err := cmd.run(a, ctx, args[1:])
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, flag.ErrHelp):
		return ExitOK
	case errors.Is(err, errUsage):
		return ExitUsage
	default:
		fmt.Fprintf(a.stderr, "%s: %v\n", name, err)
		return ExitError
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.stderr, "usage: fightmatch <command> [flags]")
	fmt.Fprintln(a.stderr)
	fmt.Fprintln(a.stderr, "commands:")
	for _, c := range commands {
		fmt.Fprintf(a.stderr, "  %-14s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(a.stderr, "  %-14s %s\n", "help", "Show this message")
	fmt.Fprintln(a.stderr)
	fmt.Fprintln(a.stderr, "Run 'fightmatch <command> -h' for the flags of a command.")
}

func (a *App) newService(extra ...service.Option) *service.Service {
	opts := append([]service.Option{service.WithLogger(a.log)}, a.serviceOpts...)
	return service.New(a.cfg, append(opts, extra...)...)
}

// flags returns a flag set that reports errors on stderr without exiting.
func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("fightmatch "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// parse wraps flag errors so Run reports them as usage errors.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %v\n", fs.Args())
		return errUsage
	}
	return nil
}
