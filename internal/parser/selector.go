package parser

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/xpath"
)

// XPathPrefix marks a selector candidate as an XPath expression.
const XPathPrefix = "xpath:"

// Kind identifies the selector language of a candidate.
type Kind int

const (
	CSS Kind = iota
	XPath
)

func (k Kind) String() string {
	if k == XPath {
		return "xpath"
	}
	return "css"
}

// Selector is a compiled selector candidate.
type Selector struct {
	Kind Kind
	Expr string

	css   cascadia.Selector
	xpath *xpath.Expr
}

// Compile parses a raw candidate. Candidates starting with "xpath:" are
// XPath expressions, everything else is CSS.
func Compile(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Selector{}, fmt.Errorf("empty selector")
	}

	if expr, ok := strings.CutPrefix(raw, XPathPrefix); ok {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			return Selector{}, fmt.Errorf("empty xpath expression")
		}
		compiled, err := xpath.Compile(expr)
		if err != nil {
			return Selector{}, err
		}
		return Selector{Kind: XPath, Expr: expr, xpath: compiled}, nil
	}

	compiled, err := cascadia.Compile(raw)
	if err != nil {
		return Selector{}, err
	}
	return Selector{Kind: CSS, Expr: raw, css: compiled}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(raw string) Selector {
	s, err := Compile(raw)
	if err != nil {
		panic(fmt.Sprintf("parser: compile %q: %v", raw, err))
	}
	return s
}

// CompileAll compiles an ordered candidate list, keeping the order.
func CompileAll(raws []string) ([]Selector, error) {
	out := make([]Selector, 0, len(raws))
	for _, raw := range raws {
		s, err := Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", raw, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// String returns the selector in its raw candidate form.
func (s Selector) String() string {
	if s.Kind == XPath {
		return XPathPrefix + s.Expr
	}
	return s.Expr
}
