// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

// package parser parses Graphite target expressions into an [ast.Node] tree.
//
// Grammar:
//
//	start    → function | metric
//	function → identifier '(' params? ')'
//	params   → param (',' param)*
//	param    → function | number | seriesRef | bool | metric | string
//	metric   → segment ('.' segment)*
//	segment  → identifier | number | bool | '{' ... '}' identifier? | '[[' identifier ']]'
package parser

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/korrel8r/metricq/pkg/ast"
)

// Parser implements the query.Parser interface.
type Parser struct{}

// Parse parses a target expression, see [Parse].
func (Parser) Parse(s string) ast.Node { return Parse(s) }

// Parse returns the syntax tree for target expression s.
//
// Returns nil if s contains no expression.
// Returns an [*ast.Error] if s cannot be parsed, never panics.
func Parse(s string) (n ast.Node) {
	p := &parser{input: s, tokens: newLexer(s).tokenize()}
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*ast.Error); ok {
				n = e
				return
			}
			panic(r)
		}
	}()
	return p.start()
}

type parser struct {
	input  string
	tokens []token
	index  int
}

var seriesRefPattern = regexp.MustCompile(`^#[A-Z]`)

func (p *parser) start() ast.Node {
	if p.match(tokEOF) {
		return nil
	}
	var n ast.Node
	if f := p.functionCall(); f != nil {
		n = f
	} else if m := p.metricExpression(); m != nil {
		n = m
	} else {
		p.errorMark("Expected metric or function")
	}
	if !p.match(tokEOF) {
		p.errorMark("Expected end of expression")
	}
	return n
}

func (p *parser) functionCall() ast.Node {
	if !p.match(tokIdentifier, tokLParen) {
		return nil
	}
	f := &ast.Function{Name: p.consume().Value}
	p.consume() // '('
	f.Params = p.functionParameters()
	if !p.match(tokRParen) {
		p.errorMark("Expected closing parenthesis")
	}
	p.consume()
	return f
}

func (p *parser) functionParameters() []ast.Node {
	var params []ast.Node
	if p.match(tokRParen) || p.match(tokEOF) {
		return params
	}
	for {
		params = append(params, p.parameter())
		if !p.match(tokComma) {
			return params
		}
		p.consume()
	}
}

func (p *parser) parameter() ast.Node {
	for _, try := range []func() ast.Node{
		p.functionCall, p.numericLiteral, p.seriesRefExpression,
		p.boolExpression, p.metricExpression, p.stringLiteral,
	} {
		if n := try(); n != nil {
			return n
		}
	}
	p.errorMark("Expected parameter")
	return nil
}

func (p *parser) numericLiteral() ast.Node {
	if !p.match(tokNumber) {
		return nil
	}
	// A number followed by '.' is the start of a metric path, e.g. 1.foo
	if p.peek(1).Type == tokDot {
		return nil
	}
	t := p.consume()
	v, err := strconv.ParseFloat(t.Value, 64)
	if err != nil {
		panic(&ast.Error{Message: fmt.Sprintf("Invalid number %q", t.Value), Pos: t.Pos})
	}
	return &ast.Number{Value: v}
}

func (p *parser) seriesRefExpression() ast.Node {
	if !p.match(tokIdentifier) || !seriesRefPattern.MatchString(p.current().Value) {
		return nil
	}
	return &ast.SeriesRef{Value: p.consume().Value}
}

func (p *parser) boolExpression() ast.Node {
	if !p.match(tokBool) || p.peek(1).Type == tokDot {
		return nil
	}
	return &ast.Bool{Value: p.consume().Value == "true"}
}

func (p *parser) stringLiteral() ast.Node {
	if !p.match(tokString) {
		return nil
	}
	t := p.consume()
	if t.Unclosed {
		panic(&ast.Error{Message: "Unclosed string parameter", Pos: t.Pos})
	}
	return &ast.String{Value: t.Value}
}

func (p *parser) metricExpression() ast.Node {
	if !p.match(tokTemplateStart) && !p.match(tokIdentifier) && !p.match(tokNumber) &&
		!p.match(tokBool) && !p.match(tokLBrace) {
		return nil
	}
	m := &ast.Metric{Segments: []ast.Segment{p.metricSegment()}}
	for p.match(tokDot) {
		p.consume()
		m.Segments = append(m.Segments, p.metricSegment())
	}
	return m
}

func (p *parser) metricSegment() ast.Segment {
	if s, ok := p.curlyBraceSegment(); ok {
		return s
	}
	if p.match(tokIdentifier) || p.match(tokNumber) || p.match(tokBool) {
		t := p.consume()
		// A decimal number inside a path is two segments: a.1.5 is [a 1 5]
		if before, after, found := strings.Cut(t.Value, "."); found && t.Type == tokNumber {
			p.tokens = slices.Insert(p.tokens, p.index,
				token{Type: tokDot, Value: ".", Pos: t.Pos + len(before)},
				token{Type: tokNumber, Value: after, Pos: t.Pos + len(before) + 1})
			return ast.Segment{Value: before}
		}
		return ast.Segment{Value: t.Value}
	}
	if !p.match(tokTemplateStart) {
		p.errorMark("Expected metric identifier")
	}
	p.consume()
	if !p.match(tokIdentifier) {
		p.errorMark("Expected identifier after templateStart")
	}
	name := p.consume().Value
	if !p.match(tokTemplateEnd) {
		p.errorMark("Expected templateEnd")
	}
	p.consume()
	return ast.Segment{Value: "[[" + name + "]]"}
}

// curlyBraceSegment parses a glob segment like {a,b} or prefix{a,b}suffix
func (p *parser) curlyBraceSegment() (ast.Segment, bool) {
	if !p.match(tokIdentifier, tokLBrace) && !p.match(tokLBrace) {
		return ast.Segment{}, false
	}
	b := &strings.Builder{}
	for !p.match(tokEOF) && !p.match(tokRBrace) {
		b.WriteString(p.consume().Value)
	}
	if !p.match(tokRBrace) {
		p.errorMark("Expected closing '}'")
	}
	b.WriteString(p.consume().Value)
	if p.match(tokIdentifier) {
		b.WriteString(p.consume().Value)
	}
	return ast.Segment{Value: b.String()}, true
}

func (p *parser) peek(offset int) token {
	if i := p.index + offset; i < len(p.tokens) {
		return p.tokens[i]
	}
	return token{Type: tokEOF, Pos: len(p.input)}
}

func (p *parser) current() token { return p.peek(0) }

func (p *parser) consume() token {
	t := p.current()
	p.index++
	return t
}

// match is true if the next tokens have the given types.
func (p *parser) match(types ...tokenType) bool {
	for i, t := range types {
		if p.peek(i).Type != t {
			return false
		}
	}
	return true
}

func (p *parser) errorMark(text string) {
	t := p.current()
	panic(&ast.Error{Message: text + " instead found " + t.Type.String(), Pos: t.Pos})
}
