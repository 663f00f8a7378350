package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"boxlayout/pkg/config"
	"boxlayout/pkg/css"
	"boxlayout/pkg/images"
	"boxlayout/pkg/layout"
	"boxlayout/pkg/render"
	"boxlayout/pkg/script"
	"boxlayout/pkg/text"
	"boxlayout/pkg/view"
)

// pipeline turns an input file into laid out geometry: load, run scripts,
// style, lay out.
type pipeline struct {
	cfg      *config.Config
	log      *zap.Logger
	measurer text.Measurer
	faces    render.FaceSource
}

func newPipeline(env *localEnv) (*pipeline, error) {
	p := &pipeline{cfg: env.Cfg, log: env.Log, measurer: text.BasicMeasurer{}}
	if path := env.Cfg.Text.FontPath; path != "" {
		m, err := text.NewFaceMeasurer(path)
		if err != nil {
			return nil, fmt.Errorf("unable to prepare text measurement: %w", err)
		}
		p.measurer, p.faces = m, m
	}
	return p, nil
}

// load reads markup, or builds the tree with a script when the input is
// JavaScript.
func (p *pipeline) load(path string) (*view.Document, error) {
	if strings.EqualFold(filepath.Ext(path), ".js") {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read script: %w", err)
		}
		return script.New(p.log).Build(string(src))
	}

	cache := images.NewCache(filepath.Dir(path))
	doc, err := view.NewLoader(p.log, view.WithImages(cache)).LoadFile(path)
	if err != nil {
		return nil, err
	}
	if len(doc.Scripts) > 0 {
		if err := script.New(p.log).Execute(doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (p *pipeline) layout(doc *view.Document) (*layout.Result, error) {
	registry := css.NewRegistry(p.log, css.WithStrictLookups(p.cfg.Layout.StrictProperties))
	registry.Register("font-size", css.Length(p.cfg.Text.DefaultSize), true)

	if err := view.NewStyler(registry, p.measurer, p.log).Apply(doc); err != nil {
		if errors.Is(err, view.ErrHierarchy) {
			return nil, err
		}
		for _, w := range multierr.Errors(err) {
			p.log.Warn("Style declaration dropped", zap.Error(w))
		}
	}

	engine := layout.NewEngine(p.log, layout.WithMaxDepth(p.cfg.Layout.MaxDepth))
	res, err := engine.Layout(doc.Root, p.cfg.ViewportRect())
	if err != nil {
		return nil, fmt.Errorf("unable to lay out document: %w", err)
	}
	return res, nil
}

func (p *pipeline) run(path string) (*layout.Result, error) {
	doc, err := p.load(path)
	if err != nil {
		return nil, err
	}
	return p.layout(doc)
}

func (p *pipeline) painter() (*render.Painter, error) {
	colors, err := p.cfg.Render.Colors()
	if err != nil {
		return nil, err
	}
	opts := render.Options{
		Background:   colors.Background,
		Outlines:     p.cfg.Render.Outlines,
		OutlineColor: colors.Outline,
	}
	return render.NewPainter(opts, p.faces, p.log), nil
}
