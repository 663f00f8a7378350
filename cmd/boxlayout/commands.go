package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"boxlayout/pkg/config"
	"boxlayout/pkg/images"
	"boxlayout/pkg/render"
	"boxlayout/pkg/report"
)

var (
	errMissingArgument = errors.New("missing argument")
	errMismatch        = errors.New("picture differs from reference")
)

// output opens the destination file, or the command writer when name is
// empty.
func output(cmd *cli.Command, name string) (io.Writer, func() error, error) {
	if name == "" {
		return cmd.Root().Writer, func() error { return nil }, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create destination file '%s': %w", name, err)
	}
	return f, f.Close, nil
}

func runLayout(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)
	src := cmd.Args().Get(0)
	if src == "" {
		return fmt.Errorf("%w: SOURCE", errMissingArgument)
	}
	format, err := report.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	p, err := newPipeline(env)
	if err != nil {
		return err
	}
	res, err := p.run(src)
	if err != nil {
		return err
	}

	out, closeOut, err := output(cmd, cmd.Args().Get(1))
	if err != nil {
		return err
	}
	defer func() {
		if er := closeOut(); er != nil && err == nil {
			err = er
		}
	}()
	if err := report.New(res, env.Cfg.ViewportRect()).Encode(out, format); err != nil {
		return err
	}
	env.Log.Debug("Layout reported", zap.String("source", src), zap.String("format", string(format)), zap.Int("boxes", len(res.Boxes)))
	return nil
}

func runRender(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	src, dst := cmd.Args().Get(0), cmd.Args().Get(1)
	if src == "" || dst == "" {
		return fmt.Errorf("%w: SOURCE and DESTINATION are required", errMissingArgument)
	}

	p, err := newPipeline(env)
	if err != nil {
		return err
	}
	res, err := p.run(src)
	if err != nil {
		return err
	}
	painter, err := p.painter()
	if err != nil {
		return err
	}
	vp := env.Cfg.ViewportRect()
	if err := painter.SavePNG(dst, res, int(vp.Width), int(vp.Height)); err != nil {
		return err
	}
	env.Log.Info("Rendered", zap.String("source", src), zap.String("destination", dst), zap.Int("boxes", len(res.Boxes)))
	return nil
}

func runCompare(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	src, ref := cmd.Args().Get(0), cmd.Args().Get(1)
	if src == "" || ref == "" {
		return fmt.Errorf("%w: SOURCE and REFERENCE are required", errMissingArgument)
	}

	expected, err := images.NewCache("").Load(ref)
	if err != nil {
		return fmt.Errorf("unable to load reference: %w", err)
	}
	p, err := newPipeline(env)
	if err != nil {
		return err
	}
	res, err := p.run(src)
	if err != nil {
		return err
	}
	painter, err := p.painter()
	if err != nil {
		return err
	}
	vp := env.Cfg.ViewportRect()
	actual := painter.Paint(res, int(vp.Width), int(vp.Height))

	result, err := render.Compare(actual, expected, render.CompareOptions{
		Tolerance:           cmd.Int("tolerance"),
		FuzzyRadius:         cmd.Int("fuzz"),
		MaxDifferentPercent: cmd.Float("max-different"),
	})
	if err != nil {
		return err
	}
	env.Log.Info("Compared",
		zap.String("source", src),
		zap.String("reference", ref),
		zap.Int("different", result.DifferentPixels),
		zap.Int("total", result.TotalPixels),
		zap.Int("max_difference", result.MaxDifference))
	if result.Match {
		return nil
	}
	if name := cmd.String("diff"); name != "" {
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("unable to create diff image '%s': %w", name, err)
		}
		defer f.Close()
		if err := png.Encode(f, result.Diff); err != nil {
			return fmt.Errorf("unable to write diff image: %w", err)
		}
	}
	return fmt.Errorf("%w: %d of %d pixels", errMismatch, result.DifferentPixels, result.TotalPixels)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var (
		data  []byte
		state string
	)
	if cmd.Bool("default") {
		state = "default"
		data, err = config.Prepare()
	} else {
		state = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	fname := cmd.Args().Get(0)
	out, closeOut, err := output(cmd, fname)
	if err != nil {
		return err
	}
	defer func() {
		if er := closeOut(); er != nil && err == nil {
			err = er
		}
	}()
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	if fname == "" {
		fname = "STDOUT"
	}
	env.Log.Debug("Configuration written", zap.String("state", state), zap.String("file", fname))
	return nil
}
