package macro

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ExprError reports an expression that steps outside the allowed arithmetic
// subset, references an unknown variable, or fails to evaluate (division by
// zero, sqrt of a negative, ...).
type ExprError struct {
	Expr string
	Msg  string
}

func (e *ExprError) Error() string {
	return fmt.Sprintf("expr %q: %s", e.Expr, e.Msg)
}

// Eval evaluates a restricted arithmetic expression over named variables.
//
// The grammar is deliberately closed: numeric literals, variables, binary
// + - * / % **, unary + -, and calls to min/max/abs/sqrt. Nothing else
// parses. The parser is hand rolled so no host evaluation machinery is ever
// reachable from configuration input.
func Eval(expr string, vars map[string]float64) (float64, error) {
	p := &exprParser{src: expr, vars: vars}
	v, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return 0, p.errorf("unexpected %q", p.src[p.pos])
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, p.errorf("result is not finite")
	}
	return v, nil
}

type exprParser struct {
	src  string
	pos  int
	vars map[string]float64
}

func (p *exprParser) errorf(format string, args ...any) error {
	return &ExprError{Expr: p.src, Msg: fmt.Sprintf(format, args...)}
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// accept consumes tok if it is next in the input.
func (p *exprParser) accept(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		// "*" must not swallow the first half of "**".
		if tok == "*" && strings.HasPrefix(p.src[p.pos:], "**") {
			return false
		}
		p.pos += len(tok)
		return true
	}
	return false
}

// sum := product (("+"|"-") product)*
func (p *exprParser) parseSum() (float64, error) {
	left, err := p.parseProduct()
	if err != nil {
		return 0, err
	}
	for {
		switch {
		case p.accept("+"):
			right, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			left += right
		case p.accept("-"):
			right, err := p.parseProduct()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

// product := unary (("*"|"/"|"%") unary)*
func (p *exprParser) parseProduct() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch {
		case p.accept("*"):
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case p.accept("/"):
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, p.errorf("division by zero")
			}
			left /= right
		case p.accept("%"):
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, p.errorf("modulo by zero")
			}
			left = math.Mod(left, right)
		default:
			return left, nil
		}
	}
}

// unary := ("+"|"-") unary | power
func (p *exprParser) parseUnary() (float64, error) {
	if p.accept("-") {
		v, err := p.parseUnary()
		return -v, err
	}
	if p.accept("+") {
		return p.parseUnary()
	}
	return p.parsePower()
}

// power := primary ("**" unary)?   (right associative, binds tighter than
// unary minus on its base, like conventional arithmetic)
func (p *exprParser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	if !p.accept("**") {
		return base, nil
	}
	exp, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	v := math.Pow(base, exp)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, p.errorf("pow(%g, %g) is not finite", base, exp)
	}
	return v, nil
}

// primary := number | name | name "(" args ")" | "(" sum ")"
func (p *exprParser) parsePrimary() (float64, error) {
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		v, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		if !p.accept(")") {
			return 0, p.errorf("missing closing parenthesis")
		}
		return v, nil
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	case isIdentStart(c):
		return p.parseNameOrCall()
	case c == 0:
		return 0, p.errorf("unexpected end of expression")
	}
	return 0, p.errorf("unexpected %q", c)
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= '0' && c <= '9' || c == '.' {
			p.pos++
			continue
		}
		break
	}
	f, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, p.errorf("bad number %q", p.src[start:p.pos])
	}
	return f, nil
}

func (p *exprParser) parseNameOrCall() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]
	if p.peek() != '(' {
		v, ok := p.vars[name]
		if !ok {
			return 0, p.errorf("unknown variable %q", name)
		}
		return v, nil
	}
	p.pos++ // consume '('
	args, err := p.parseArgs()
	if err != nil {
		return 0, err
	}
	return p.call(name, args)
}

func (p *exprParser) parseArgs() ([]float64, error) {
	var args []float64
	if p.peek() == ')' {
		p.pos++
		return args, nil
	}
	for {
		v, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		if p.accept(",") {
			continue
		}
		if p.accept(")") {
			return args, nil
		}
		return nil, p.errorf("missing closing parenthesis in call")
	}
}

// The full set of callable functions. Anything else is rejected.
func (p *exprParser) call(name string, args []float64) (float64, error) {
	switch name {
	case "min":
		if len(args) == 0 {
			return 0, p.errorf("min needs at least one argument")
		}
		v := args[0]
		for _, a := range args[1:] {
			v = math.Min(v, a)
		}
		return v, nil
	case "max":
		if len(args) == 0 {
			return 0, p.errorf("max needs at least one argument")
		}
		v := args[0]
		for _, a := range args[1:] {
			v = math.Max(v, a)
		}
		return v, nil
	case "abs":
		if len(args) != 1 {
			return 0, p.errorf("abs takes exactly one argument")
		}
		return math.Abs(args[0]), nil
	case "sqrt":
		if len(args) != 1 {
			return 0, p.errorf("sqrt takes exactly one argument")
		}
		if args[0] < 0 {
			return 0, p.errorf("sqrt of negative value %g", args[0])
		}
		return math.Sqrt(args[0]), nil
	}
	return 0, p.errorf("function %q not allowed", name)
}

func isIdentStart(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c))
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}
