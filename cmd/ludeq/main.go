// Command ludeq runs the LudEQ three-band equalizer outside a plugin host.
//
// Usage:
//
//	ludeq params [--json] [--save]
//	ludeq response [--freq=F,...] [--measured]
//	ludeq render IN OUT [--bits=N]
//	ludeq live [IN] [--mqtt-broker=HOST]
//
// Parameters are loaded from the state file (default
// ~/.config/ludeq/state.json) and can be overridden per run:
//
//	ludeq --set peak_gain=+6 --set peak_freq=2500 render in.wav out.wav
//
// Every flag can also be given as a LUDEQ_* environment variable.
package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/W47K3R9/LudEQ/dsp/eq"
	"github.com/W47K3R9/LudEQ/internal/cli"
)

var version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	Version  versionFlag       `short:"v" help:"Show version information."`
	LogLevel string            `default:"warn" enum:"debug,info,warn,error" env:"LUDEQ_LOG_LEVEL" help:"Log level (debug, info, warn, error)."`
	State    string            `default:"~/.config/ludeq/state.json" env:"LUDEQ_STATE" help:"Parameter state file."`
	NoState  bool              `env:"LUDEQ_NO_STATE" help:"Neither read nor write the state file."`
	Set      map[string]string `short:"s" env:"LUDEQ_SET" placeholder:"PARAM=VALUE" help:"Override a parameter for this run, e.g. peak_gain=+6."`

	Params   paramsCmd   `cmd:"" help:"Print the parameters and their current values."`
	Response responseCmd `cmd:"" help:"Print the magnitude response of the current settings."`
	Render   renderCmd   `cmd:"" help:"Equalize a WAV or MP3 file into a WAV file."`
	Live     liveCmd     `cmd:"" help:"Play a file through the equalizer with a terminal editor."`
}

type versionFlag bool

func (versionFlag) BeforeReset(app *kong.Kong, vars kong.Vars) error {
	cli.PrintVersion(app.Stdout, vars["version"])
	app.Exit(0)

	return nil
}

// runContext is bound into every command's Run method.
type runContext struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	store  *eq.Store

	// statePath is the expanded state file path, empty when disabled.
	statePath string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var (
		app      CLI
		exited   bool
		exitCode int
	)

	parser, err := kong.New(&app,
		kong.Name("ludeq"),
		kong.Description("Three-band parametric equalizer: low cut, peak and high cut."),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) {
			exited = true
			exitCode = code
		}),
	)
	if err != nil {
		cli.PrintError(stderr, err.Error())
		return 1
	}

	ctx, err := parser.Parse(args)
	if exited {
		return exitCode
	}
	if err != nil {
		cli.PrintError(stderr, err.Error())
		return 2
	}

	logOut := stderr
	if strings.HasPrefix(ctx.Command(), "live") {
		// Log lines would tear the terminal UI.
		logOut = io.Discard
		if app.Live.LogFile != "" {
			f, err := os.OpenFile(app.Live.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				cli.PrintError(stderr, err.Error())
				return 1
			}
			defer f.Close()
			logOut = f
		}
	}

	logger, err := cli.NewLogger(logOut, app.LogLevel)
	if err != nil {
		cli.PrintError(stderr, err.Error())
		return 2
	}

	rc := &runContext{
		stdout: stdout,
		stderr: stderr,
		logger: logger,
		store:  eq.NewStore(eq.WithLogger(logger)),
	}

	if !app.NoState {
		path, err := expandPath(app.State)
		if err != nil {
			cli.PrintError(stderr, err.Error())
			return 1
		}
		rc.statePath = path

		if err := loadState(rc.store, path, logger); err != nil {
			cli.PrintError(stderr, err.Error())
			return 1
		}
	}

	if err := applyOverrides(rc.store, app.Set); err != nil {
		cli.PrintError(stderr, err.Error())
		return 2
	}

	if err := ctx.Run(rc); err != nil {
		cli.PrintError(stderr, err.Error())
		return 1
	}

	return 0
}
