package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"sort"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/hrdash/apiclient"
	"github.com/jrsteele09/hrdash/internal/app"
	"github.com/jrsteele09/hrdash/internal/config"
	"github.com/jrsteele09/hrdash/internal/logging"
	"github.com/jrsteele09/hrdash/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// errNotSignedIn has already been explained to the user
var errNotSignedIn = errors.New("not signed in")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, nil)
	stop()
	if err != nil {
		if !errors.Is(err, errNotSignedIn) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

type cli struct {
	app    *app.App
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	usage     string
	protected bool
	run       func(ctx context.Context, c *cli, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"login":     {"login -u USER [-p PASSWORD] [-remember]", false, loginCommand},
		"logout":    {"logout", false, logoutCommand},
		"whoami":    {"whoami", true, whoamiCommand},
		"stats":     {"stats [-limit N]", true, statsCommand},
		"reports":   {"reports [-page N] [-size N] [-risk LEVEL] [-period TYPE] [-user NAME] [-search TEXT] [-from DATE] [-to DATE]", true, reportsCommand},
		"report":    {"report ID", true, reportCommand},
		"analytics": {"analytics [-days N]", true, analyticsCommand},
		"export":    {"export [-id ID] [-xlsx] [-o FILE] [report filters]", true, exportCommand},
		"download":  {"download [-o FILE] PATH_OR_URL", true, downloadCommand},
	}
}

// run executes one command. extra options are applied to the app after configuration; tests use
// them to point storage and the client at fakes.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, extra []app.Option) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	global := flag.NewFlagSet("hrdash", flag.ContinueOnError)
	global.SetOutput(stderr)
	envFile := global.String("env", ".env", "env file to load")
	dumpMetrics := global.Bool("metrics", false, "print client metrics after the command")
	global.Usage = func() { usage(stderr) }
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		displayAppname(stdout, "hrdash")
		usage(stdout)
		return nil
	}

	name := global.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		usage(stderr)
		return errors.Errorf("unknown command %q", name)
	}

	cfg := config.New(*envFile)
	logging.Setup(cfg.GetLogLevel(), true, stderr)

	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	opts := append([]app.Option{app.WithNavigator(cliNavigator{w: stderr})}, extra...)
	a, err := app.New(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close storage")
		}
	}()
	c.app = a

	if cmd.protected {
		if err := c.requireSession(ctx); err != nil {
			return err
		}
	}
	err = cmd.run(ctx, c, global.Args()[1:])
	if *dumpMetrics {
		if merr := a.WriteMetrics(stderr); merr != nil {
			log.Warn().Err(merr).Msg("Failed to write metrics")
		}
	}
	return err
}

// requireSession runs the route guard; anonymous users are pointed at the login command
func (c *cli) requireSession(ctx context.Context) error {
	_, err := c.app.Guard.Require(ctx)
	var redirect *session.RedirectError
	if errors.As(err, &redirect) {
		fmt.Fprintln(c.stderr, "Not signed in. Run 'hrdash login -u USER' first.")
		return errNotSignedIn
	}
	return err
}

// cliNavigator turns the login redirect into a hint on stderr
type cliNavigator struct {
	w io.Writer
}

var _ apiclient.Navigator = cliNavigator{}

func (n cliNavigator) Navigate(route string) {
	if route == session.LoginRoute {
		fmt.Fprintln(n.w, "Your session has expired. Run 'hrdash login -u USER' to sign in again.")
		return
	}
	log.Debug().Str("route", route).Msg("Navigation requested")
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hrdash [-env FILE] [-metrics] COMMAND [ARGS]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  hrdash %s\n", commands[name].usage)
	}
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}
