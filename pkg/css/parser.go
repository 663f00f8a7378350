package css

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrMalformed is wrapped by every error reported for a dropped declaration.
var ErrMalformed = errors.New("malformed declaration")

// Declaration is one longhand property assignment produced by the parser.
// Shadows is only set for box-shadow and Gradient for background-image.
type Declaration struct {
	Property  string
	Value     Value
	Shadows   []Shadow
	Gradient  *Gradient
	Important bool
}

// Parser turns declaration blocks and stylesheets into longhand declarations.
type Parser struct {
	log      *zap.Logger
	registry *Registry
}

// NewParser creates a parser validating property names against registry.
func NewParser(registry *Registry, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser"), registry: registry}
}

// ParseDeclarations parses an inline declaration block ("margin: 1px; width: 50%").
// Malformed declarations are dropped; the returned error lists them and the
// valid declarations are returned regardless.
func (p *Parser) ParseDeclarations(text string) ([]Declaration, error) {
	parser := css.NewParser(parse.NewInputString(text), true)

	var (
		decls []Declaration
		errs  error
	)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				errs = multierr.Append(errs, fmt.Errorf("%w: %v", ErrMalformed, err))
			}
			return decls, errs
		case css.DeclarationGrammar:
			out, err := p.declaration(string(data), parser.Values())
			if err != nil {
				p.log.Debug("Dropping declaration", zap.String("property", string(data)), zap.Error(err))
				errs = multierr.Append(errs, err)
				continue
			}
			decls = append(decls, out...)
		case css.CustomPropertyGrammar:
			// custom properties are not supported
			continue
		}
	}
}

func (p *Parser) declaration(name string, tokens []css.Token) ([]Declaration, error) {
	tokens, important := stripImportant(tokens)
	decls, err := p.longhands(strings.ToLower(strings.TrimSpace(name)), components(tokens))
	if err != nil {
		return nil, err
	}
	if important {
		for i := range decls {
			decls[i].Important = true
		}
	}
	return decls, nil
}

func (p *Parser) longhands(name string, comps []component) ([]Declaration, error) {
	if len(comps) == 0 {
		return nil, fmt.Errorf("%w: %s: empty value", ErrMalformed, name)
	}
	if expand, ok := shorthands[name]; ok {
		return expand(name, comps)
	}
	if !p.registry.Known(name) {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, name, ErrUnknownProperty)
	}
	if len(comps) != 1 {
		return nil, fmt.Errorf("%w: %s: expected a single value, got %d", ErrMalformed, name, len(comps))
	}
	v, err := longhandValue(name, comps[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, name, err)
	}
	return []Declaration{{Property: name, Value: v}}, nil
}

// tokenize lexes a bare value string.
func tokenize(value string) []css.Token {
	l := css.NewLexer(parse.NewInputString(value))
	var tokens []css.Token
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			return tokens
		}
		tokens = append(tokens, css.Token{TokenType: tt, Data: append([]byte(nil), data...)})
	}
}

// component is one whitespace separated piece of a value: a single token, a
// function call with its argument tokens, or a comma.
type component struct {
	tok  css.Token
	args []css.Token
}

func (c component) isComma() bool { return c.tok.TokenType == css.CommaToken }

func (c component) ident() string {
	if c.tok.TokenType != css.IdentToken {
		return ""
	}
	return strings.ToLower(string(c.tok.Data))
}

func (c component) String() string {
	if c.tok.TokenType != css.FunctionToken {
		return string(c.tok.Data)
	}
	var sb strings.Builder
	sb.Write(c.tok.Data)
	for _, a := range c.args {
		sb.Write(a.Data)
	}
	return sb.String()
}

func components(tokens []css.Token) []component {
	var out []component
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch t.TokenType {
		case css.WhitespaceToken, css.CommentToken:
			continue
		case css.FunctionToken:
			c := component{tok: t}
			depth := 1
			for i++; i < len(tokens); i++ {
				switch tokens[i].TokenType {
				case css.FunctionToken, css.LeftParenthesisToken:
					depth++
				case css.RightParenthesisToken:
					depth--
				}
				if depth == 0 {
					break
				}
				c.args = append(c.args, tokens[i])
			}
			out = append(out, c)
		default:
			out = append(out, component{tok: t})
		}
	}
	return out
}

// stripImportant removes a trailing "!important" and reports whether it was
// there.
func stripImportant(tokens []css.Token) ([]css.Token, bool) {
	for i := len(tokens) - 1; i > 0; i-- {
		if tokens[i].TokenType == css.WhitespaceToken {
			continue
		}
		if tokens[i].TokenType == css.IdentToken && strings.EqualFold(string(tokens[i].Data), "important") {
			for j := i - 1; j >= 0; j-- {
				if tokens[j].TokenType == css.DelimToken && string(tokens[j].Data) == "!" {
					return tokens[:j], true
				}
				if tokens[j].TokenType != css.WhitespaceToken {
					break
				}
			}
		}
		break
	}
	return tokens, false
}

func isColorProperty(name string) bool {
	return name == "color" || strings.HasSuffix(name, "-color")
}

// longhandValue converts one component into the value of property name.
func longhandValue(name string, c component) (Value, error) {
	if isColorProperty(name) {
		if c.ident() == "inherit" {
			return Inherit(), nil
		}
		if c.ident() == "none" {
			return None(), nil
		}
		col, err := parseColor(c)
		if err != nil {
			return Value{}, err
		}
		return Color(col), nil
	}
	switch name {
	case "flex-direction":
		if v, ok := flexDirection(c); ok {
			return v, nil
		}
		return Value{}, fmt.Errorf("invalid flex-direction %q", c)
	case "flex-wrap":
		if v, ok := flexWrap(c); ok {
			return v, nil
		}
		return Value{}, fmt.Errorf("invalid flex-wrap %q", c)
	}
	return parseComponent(c)
}

// parseComponent converts a generic single component.
func parseComponent(c component) (Value, error) {
	switch c.tok.TokenType {
	case css.IdentToken:
		switch k := c.ident(); k {
		case "auto":
			return Auto(), nil
		case "inherit":
			return Inherit(), nil
		case "none":
			return None(), nil
		default:
			return Keyword(k), nil
		}
	case css.NumberToken:
		n, err := strconv.ParseFloat(string(c.tok.Data), 64)
		if err != nil {
			return Value{}, err
		}
		return Length(n), nil
	case css.PercentageToken:
		n, err := strconv.ParseFloat(strings.TrimSuffix(string(c.tok.Data), "%"), 64)
		if err != nil {
			return Value{}, err
		}
		return Percent(n), nil
	case css.DimensionToken:
		px, err := parseDimension(string(c.tok.Data))
		if err != nil {
			return Value{}, err
		}
		return Length(px), nil
	case css.HashToken, css.FunctionToken:
		col, err := parseColor(c)
		if err != nil {
			return Value{}, err
		}
		return Color(col), nil
	}
	return Value{}, fmt.Errorf("unexpected token %q", c)
}

// parseLength accepts lengths and percentages only.
func parseLength(c component) (Value, bool) {
	switch c.tok.TokenType {
	case css.NumberToken, css.PercentageToken, css.DimensionToken:
		v, err := parseComponent(c)
		return v, err == nil
	}
	return Value{}, false
}

var unitScale = map[string]float64{
	"px": 1,
	"pt": 4.0 / 3.0,
	"pc": 16,
	"in": 96,
	"cm": 96 / 2.54,
	"mm": 96 / 25.4,
}

// parseDimension converts a dimension token ("12pt") to pixels.
func parseDimension(s string) (float64, error) {
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' || ((r == 'e' || r == 'E') && i > 0 && i+1 < len(s) && unicode.IsDigit(rune(s[i+1]))) {
			numEnd = i + 1
			continue
		}
		break
	}
	if numEnd == 0 {
		return 0, fmt.Errorf("invalid dimension %q", s)
	}
	n, err := strconv.ParseFloat(s[:numEnd], 64)
	if err != nil {
		return 0, err
	}
	unit := strings.ToLower(s[numEnd:])
	scale, ok := unitScale[unit]
	if !ok {
		return 0, fmt.Errorf("unsupported unit %q", unit)
	}
	return n * scale, nil
}
