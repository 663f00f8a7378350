package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"boxlayout/pkg/config"
	"boxlayout/pkg/report"
)

const appName = "boxlayout"

// initializeAppContext loads configuration and prepares logging after the
// command line has been parsed.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		return ctx, nil
	}
	env := envFromContext(ctx)

	var err error
	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if env.Log, env.logCloser, err = env.Cfg.Logging.Prepare(cmd.Bool("debug")); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("runtime", runtime.Version()))
	if len(configFile) == 0 {
		env.Log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)
	env.Log.Debug("Program ended", zap.Duration("elapsed", env.uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	if er := env.close(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to close log: %w", er))
	}
	return
}

// errWasHandled is set once an error has been logged, so main does not
// print it again.
var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := envFromContext(ctx)
	if env.Cfg != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func newApp(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:            appName,
		Usage:           "box model layout engine for XML and JavaScript view trees",
		HideHelpCommand: true,
		Writer:          stdout,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log at debug level regardless of configuration"},
		},
		Commands: []*cli.Command{
			{
				Name:         "layout",
				Usage:        "Lays out a document and prints the geometry of every box",
				OnUsageError: usageErrorHandler,
				Action:       runLayout,
				ArgsUsage:    "SOURCE [DESTINATION]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: string(report.FormatYAML),
						Usage: "report `FORMAT` (yaml or json)"},
				},
			},
			{
				Name:         "render",
				Usage:        "Lays out a document and paints it into a PNG image",
				OnUsageError: usageErrorHandler,
				Action:       runRender,
				ArgsUsage:    "SOURCE DESTINATION",
			},
			{
				Name:         "compare",
				Usage:        "Paints a document and compares the picture with a reference image",
				OnUsageError: usageErrorHandler,
				Action:       runCompare,
				ArgsUsage:    "SOURCE REFERENCE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "tolerance", Aliases: []string{"t"}, Value: 2,
						Usage: "largest per channel `DIFFERENCE` still counted as equal"},
					&cli.IntFlag{Name: "fuzz", Usage: "match pixels within `RADIUS` of their position"},
					&cli.FloatFlag{Name: "max-different", Usage: "accept up to `PERCENT` different pixels"},
					&cli.StringFlag{Name: "diff", Usage: "write a difference image to `FILE` on mismatch"},
				},
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "[DESTINATION]",
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(contextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	var err error
	// os.Exit skips deferred calls, so this must stay the only deferred function
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = newApp(os.Stdout).Run(ctx, os.Args)
}
