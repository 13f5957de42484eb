package sparql

import (
	"fmt"
	"strings"
)

var aggregates = map[string]bool{
	"COUNT":        true,
	"SUM":          true,
	"MIN":          true,
	"MAX":          true,
	"AVG":          true,
	"SAMPLE":       true,
	"GROUP_CONCAT": true,
}

// parseExpression parses a full expression with the usual SPARQL precedence:
// || binds loosest, then &&, relational, additive, multiplicative and unary.
func (p *Parser) parseExpression() (Expression, error) {
	p.skipWhitespace()
	return p.parseOr()
}

func (p *Parser) parseOr() (Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		p.skipWhitespace()
		if !p.matchSymbol("||") {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Operation{Operator: "||", Args: []Expression{left, right}}
	}
}

func (p *Parser) parseAnd() (Expression, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		p.skipWhitespace()
		if !p.matchSymbol("&&") {
			return left, nil
		}
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &Operation{Operator: "&&", Args: []Expression{left, right}}
	}
}

func (p *Parser) parseRelational() (Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()

	for _, op := range []string{"!=", "<=", ">=", "=", "<", ">"} {
		if p.matchSymbol(op) {
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			return &Operation{Operator: op, Args: []Expression{left, right}}, nil
		}
	}

	operator := ""
	switch {
	case p.matchKeyword("IN"):
		operator = "in"
	case p.lookingAtKeyword("NOT"):
		save := p.pos
		p.matchKeyword("NOT")
		p.skipWhitespace()
		if !p.matchKeyword("IN") {
			p.pos = save
			return left, nil
		}
		operator = "notin"
	default:
		return left, nil
	}
	list, err := p.parseArgumentList()
	if err != nil {
		return nil, err
	}
	return &Operation{Operator: operator, Args: append([]Expression{left}, list...)}, nil
}

func (p *Parser) parseAdditive() (Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		p.skipWhitespace()
		ch := p.peek()
		if ch != '+' && ch != '-' {
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &Operation{Operator: string(ch), Args: []Expression{left, right}}
	}
}

func (p *Parser) parseMultiplicative() (Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipWhitespace()
		ch := p.peek()
		if ch != '*' && ch != '/' {
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Operation{Operator: string(ch), Args: []Expression{left, right}}
	}
}

func (p *Parser) parseUnary() (Expression, error) {
	p.skipWhitespace()
	switch p.peek() {
	case '!':
		p.advance()
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Operation{Operator: "!", Args: []Expression{arg}}, nil
	case '-':
		if isDigit(p.peekAt(1)) {
			return p.parseNumber()
		}
		p.advance()
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Operation{Operator: "UMINUS", Args: []Expression{arg}}, nil
	case '+':
		p.advance()
		return p.parseUnary()
	}
	return p.parsePrimary()
}

// parsePrimary parses a bracketed expression, a built-in call, an aggregate
// or a constant. FILTER, HAVING and ORDER BY conditions start here.
func (p *Parser) parsePrimary() (Expression, error) {
	p.skipWhitespace()
	ch := p.peek()

	switch {
	case ch == '(':
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return expr, nil
	case ch == '?' || ch == '$':
		return p.parseVariable()
	case ch == '"' || ch == '\'':
		return p.parseLiteral()
	case ch == '<':
		iri, err := p.parseIRIRef()
		if err != nil {
			return nil, err
		}
		return IRI{Value: iri}, nil
	case isDigit(ch) || ch == '.' && isDigit(p.peekAt(1)):
		return p.parseNumber()
	case ch == ':':
		iri, err := p.parsePrefixedName()
		if err != nil {
			return nil, err
		}
		return IRI{Value: iri}, nil
	case isLetter(ch):
		return p.parseNamedPrimary()
	case ch == 0:
		return nil, p.errorf("unexpected end of expression")
	default:
		return nil, p.errorf("unexpected character %q in expression", ch)
	}
}

func (p *Parser) parseNamedPrimary() (Expression, error) {
	start := p.pos
	word := p.readWhile(isNameChar)
	if ch := p.peek(); ch == ':' || ch == '-' || ch == '.' {
		p.pos = start
		iri, err := p.parsePrefixedName()
		if err != nil {
			return nil, err
		}
		return IRI{Value: iri}, nil
	}

	upper := strings.ToUpper(word)
	switch {
	case upper == "TRUE":
		return Literal{Value: "true", Datatype: XSDBoolean}, nil
	case upper == "FALSE":
		return Literal{Value: "false", Datatype: XSDBoolean}, nil
	case upper == "EXISTS":
		return p.parseExists(false)
	case upper == "NOT":
		p.skipWhitespace()
		if !p.matchKeyword("EXISTS") {
			return nil, p.errorf("expected EXISTS after NOT")
		}
		return p.parseExists(true)
	case aggregates[upper]:
		return p.parseAggregate(upper)
	}

	args, err := p.parseArgumentList()
	if err != nil {
		return nil, fmt.Errorf("call to %s: %w", word, err)
	}
	return &Operation{Operator: strings.ToLower(word), Args: args}, nil
}

func (p *Parser) parseExists(negated bool) (Expression, error) {
	p.skipWhitespace()
	patterns, err := p.parseGroupGraphPattern()
	if err != nil {
		return nil, err
	}
	return &Exists{Negated: negated, Patterns: patterns}, nil
}

func (p *Parser) parseAggregate(name string) (Expression, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	agg := &Aggregate{Name: strings.ToLower(name)}

	p.skipWhitespace()
	if p.matchKeyword("DISTINCT") {
		agg.Distinct = true
		p.skipWhitespace()
	}

	if p.peek() == '*' {
		if name != "COUNT" {
			return nil, p.errorf("only COUNT accepts *")
		}
		p.advance()
		agg.Star = true
	} else {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		agg.Expression = expr
	}

	p.skipWhitespace()
	if name == "GROUP_CONCAT" && p.peek() == ';' {
		p.advance()
		p.skipWhitespace()
		if !p.matchKeyword("SEPARATOR") {
			return nil, p.errorf("expected SEPARATOR")
		}
		if err := p.expect('='); err != nil {
			return nil, err
		}
		p.skipWhitespace()
		sep, err := p.parseString()
		if err != nil {
			return nil, err
		}
		agg.Separator = sep
	}

	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return agg, nil
}

// parseArgumentList parses ( expr, expr, ... ). An empty list is allowed.
func (p *Parser) parseArgumentList() ([]Expression, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.peek() == ')' {
		p.advance()
		return nil, nil
	}

	var args []Expression
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, expr)
		p.skipWhitespace()
		if p.peek() == ',' {
			p.advance()
			continue
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return args, nil
	}
}

func (p *Parser) matchSymbol(symbol string) bool {
	if !strings.HasPrefix(p.input[p.pos:], symbol) {
		return false
	}
	// After an operand "<" is always the comparison, never an IRI.
	p.pos += len(symbol)
	return true
}
