package script

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"boxlayout/pkg/view"
)

// ErrNoRoot is returned when a standalone script never sets document.root.
var ErrNoRoot = errors.New("script did not set document.root")

// Engine runs JavaScript that builds or edits a view tree. Each engine owns
// one goja runtime and is not safe for concurrent use.
type Engine struct {
	log *zap.Logger
	vm  *goja.Runtime
}

func New(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{log: log.Named("script"), vm: goja.New()}
	registerConsole(e.vm, e.log)
	return e
}

// Execute runs the document's scripts in order against its tree. The first
// failing script stops execution.
func (e *Engine) Execute(doc *view.Document) error {
	registerGlobals(e.vm, doc)
	for i, src := range doc.Scripts {
		if _, err := e.vm.RunString(src); err != nil {
			return fmt.Errorf("script %d: %w", i, err)
		}
	}
	e.log.Debug("Scripts executed", zap.Int("scripts", len(doc.Scripts)))
	return nil
}

// Build runs a standalone script that creates a document from scratch by
// assigning document.root.
func (e *Engine) Build(src string) (*view.Document, error) {
	doc := &view.Document{}
	registerGlobals(e.vm, doc)
	if _, err := e.vm.RunString(src); err != nil {
		return nil, fmt.Errorf("unable to build document: %w", err)
	}
	if doc.Root == nil {
		return nil, ErrNoRoot
	}
	return doc, nil
}
