package css

import (
	"errors"
	"fmt"
	"image/color"
	"sort"

	"go.uber.org/zap"
)

// ErrUnknownProperty is reported for lookups of properties that were never registered.
var ErrUnknownProperty = errors.New("unknown property")

// Property describes a registered longhand property.
type Property struct {
	Name      string
	Default   Value
	Inherited bool
}

// Registry maps property names to their defaults. It is built once by the
// caller and shared by reference with every Style created from it.
type Registry struct {
	log    *zap.Logger
	strict bool
	props  map[string]Property
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithStrictLookups makes lookups of unregistered properties panic instead of
// logging and falling back to none. Meant for development builds and tests.
func WithStrictLookups(strict bool) RegistryOption {
	return func(r *Registry) {
		r.strict = strict
	}
}

// NewRegistry creates a registry pre-populated with the standard properties.
func NewRegistry(log *zap.Logger, opts ...RegistryOption) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{
		log:   log.Named("css-registry"),
		props: make(map[string]Property, 64),
	}
	for _, opt := range opts {
		opt(r)
	}
	registerStandard(r)
	return r
}

// Register adds or replaces a property.
func (r *Registry) Register(name string, def Value, inherited bool) {
	r.props[name] = Property{Name: name, Default: def, Inherited: inherited}
}

// Lookup returns the registered property.
func (r *Registry) Lookup(name string) (Property, bool) {
	p, ok := r.props[name]
	return p, ok
}

// Known reports whether name is registered.
func (r *Registry) Known(name string) bool {
	_, ok := r.props[name]
	return ok
}

// Names returns all registered property names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.props))
	for n := range r.props {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// defaultFor returns the default of name, handling unregistered names
// according to the registry mode.
func (r *Registry) defaultFor(name string) Value {
	if p, ok := r.props[name]; ok {
		return p.Default
	}
	if r.strict {
		panic(fmt.Errorf("css: %w: %q", ErrUnknownProperty, name))
	}
	r.log.Warn("Lookup of unregistered property", zap.String("property", name))
	return None()
}

func registerStandard(r *Registry) {
	zero := Length(0)
	for _, side := range []string{"top", "right", "bottom", "left"} {
		r.Register("margin-"+side, zero, false)
		r.Register("padding-"+side, zero, false)
		r.Register("border-"+side+"-width", zero, false)
		r.Register(side, Auto(), false)
	}

	r.Register("width", Auto(), false)
	r.Register("height", Auto(), false)
	r.Register("min-width", zero, false)
	r.Register("min-height", zero, false)
	r.Register("max-width", None(), false)
	r.Register("max-height", None(), false)

	r.Register("layout", Keyword("block"), false)
	r.Register("display", Keyword("block"), false)
	r.Register("position", Keyword("static"), false)
	r.Register("clear", None(), false)
	r.Register("overflow", Keyword("visible"), false)

	r.Register("flex-direction", Keyword("row"), false)
	r.Register("flex-wrap", Keyword("nowrap"), false)
	r.Register("flex-grow", Length(0), false)
	r.Register("flex-shrink", Length(1), false)
	r.Register("flex-basis", Auto(), false)
	r.Register("order", Length(0), false)
	r.Register("justify-content", Keyword("flex-start"), false)
	r.Register("align-items", Keyword("stretch"), false)

	r.Register("text-align", Keyword("left"), true)
	r.Register("font-size", Length(13), true)
	r.Register("line-height", Auto(), true)
	r.Register("color", Color(color.RGBA{A: 0xff}), true)
	r.Register("white-space", Keyword("normal"), true)

	r.Register("background-color", None(), false)
	r.Register("background-image", None(), false)
	r.Register("border-color", Color(color.RGBA{A: 0xff}), false)
	r.Register("border-style", Keyword("solid"), false)
	r.Register("box-shadow", None(), false)
}
