package sparql

import (
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError reports malformed or unsupported query text.
type SyntaxError struct {
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("sparql: syntax error at offset %d: %s", e.Offset, e.Message)
}

// Parser is a recursive-descent SPARQL parser over a single query string.
type Parser struct {
	input    string
	pos      int
	length   int
	prefixes map[string]string
	base     string
}

// NewParser creates a parser for input with the default prefixes in scope.
func NewParser(input string) *Parser {
	prefixes := make(map[string]string, len(DefaultPrefixes))
	for k, v := range DefaultPrefixes {
		prefixes[k] = v
	}
	return &Parser{
		input:    input,
		length:   len(input),
		prefixes: prefixes,
	}
}

// Parse parses a complete SELECT or ASK query.
func Parse(input string) (*Query, error) {
	return NewParser(input).Parse()
}

// Parse parses the parser's input.
func (p *Parser) Parse() (*Query, error) {
	query := &Query{}

	if err := p.parsePrologue(); err != nil {
		return nil, err
	}

	p.skipWhitespace()
	switch {
	case p.matchKeyword("SELECT"):
		query.Type = QuerySelect
		if err := p.parseSelect(query); err != nil {
			return nil, err
		}
	case p.matchKeyword("ASK"):
		query.Type = QueryAsk
		if err := p.parseAsk(query); err != nil {
			return nil, err
		}
	case p.matchKeyword("CONSTRUCT"), p.matchKeyword("DESCRIBE"):
		return nil, p.errorf("only SELECT and ASK queries are supported")
	default:
		return nil, p.errorf("expected SELECT or ASK")
	}

	p.skipWhitespace()
	if p.pos < p.length {
		return nil, p.errorf("unexpected trailing input %q", p.remainder(20))
	}

	query.Prefixes = p.prefixes
	query.Base = p.base
	return query, nil
}

func (p *Parser) parsePrologue() error {
	for {
		p.skipWhitespace()
		switch {
		case p.matchKeyword("PREFIX"):
			p.skipWhitespace()
			name := p.readWhile(isPrefixChar)
			if p.peek() != ':' {
				return p.errorf("expected ':' after prefix name %q", name)
			}
			p.advance()
			p.skipWhitespace()
			iri, err := p.parseIRIRef()
			if err != nil {
				return err
			}
			p.prefixes[name] = iri
		case p.matchKeyword("BASE"):
			p.skipWhitespace()
			iri, err := p.parseIRIRef()
			if err != nil {
				return err
			}
			p.base = iri
		default:
			return nil
		}
	}
}

func (p *Parser) parseSelect(query *Query) error {
	p.skipWhitespace()
	if p.matchKeyword("DISTINCT") {
		query.Distinct = true
	} else if p.matchKeyword("REDUCED") {
		query.Reduced = true
	}

	p.skipWhitespace()
	if p.peek() == '*' {
		p.advance()
		query.Star = true
	} else {
		for {
			p.skipWhitespace()
			ch := p.peek()
			if ch == '?' || ch == '$' {
				v, err := p.parseVariable()
				if err != nil {
					return err
				}
				query.Variables = append(query.Variables, SelectItem{Variable: v})
				continue
			}
			if ch == '(' {
				p.advance()
				expr, err := p.parseExpression()
				if err != nil {
					return err
				}
				p.skipWhitespace()
				if !p.matchKeyword("AS") {
					return p.errorf("expected AS in select expression")
				}
				p.skipWhitespace()
				v, err := p.parseVariable()
				if err != nil {
					return err
				}
				if err := p.expect(')'); err != nil {
					return err
				}
				query.Variables = append(query.Variables, SelectItem{Variable: v, Expression: expr})
				continue
			}
			break
		}
		if len(query.Variables) == 0 {
			return p.errorf("expected at least one projected variable")
		}
	}

	p.skipWhitespace()
	if p.matchKeyword("FROM") {
		return p.errorf("FROM clauses are not supported")
	}

	p.skipWhitespace()
	p.matchKeyword("WHERE")
	where, err := p.parseGroupGraphPattern()
	if err != nil {
		return fmt.Errorf("where clause: %w", err)
	}
	query.Where = where

	return p.parseSolutionModifiers(query)
}

func (p *Parser) parseAsk(query *Query) error {
	p.skipWhitespace()
	p.matchKeyword("WHERE")
	where, err := p.parseGroupGraphPattern()
	if err != nil {
		return fmt.Errorf("where clause: %w", err)
	}
	query.Where = where
	return p.parseSolutionModifiers(query)
}

func (p *Parser) parseSolutionModifiers(query *Query) error {
	p.skipWhitespace()
	if p.matchKeyword("GROUP") {
		p.skipWhitespace()
		if !p.matchKeyword("BY") {
			return p.errorf("expected BY after GROUP")
		}
		for {
			p.skipWhitespace()
			if !p.startsCondition() {
				break
			}
			expr, err := p.parseCondition()
			if err != nil {
				return err
			}
			query.GroupBy = append(query.GroupBy, expr)
		}
		if len(query.GroupBy) == 0 {
			return p.errorf("expected grouping condition")
		}
	}

	p.skipWhitespace()
	if p.matchKeyword("HAVING") {
		for {
			p.skipWhitespace()
			if !p.startsCondition() || p.peek() == '?' || p.peek() == '$' {
				break
			}
			expr, err := p.parseCondition()
			if err != nil {
				return err
			}
			query.Having = append(query.Having, expr)
		}
		if len(query.Having) == 0 {
			return p.errorf("expected having condition")
		}
	}

	p.skipWhitespace()
	if p.matchKeyword("ORDER") {
		p.skipWhitespace()
		if !p.matchKeyword("BY") {
			return p.errorf("expected BY after ORDER")
		}
	orderLoop:
		for {
			p.skipWhitespace()
			descending := false
			switch {
			case p.matchKeyword("ASC"):
			case p.matchKeyword("DESC"):
				descending = true
			default:
				if !p.startsCondition() {
					break orderLoop
				}
				expr, err := p.parseCondition()
				if err != nil {
					return err
				}
				query.OrderBy = append(query.OrderBy, Ordering{Expression: expr})
				continue
			}
			p.skipWhitespace()
			if p.peek() != '(' {
				return p.errorf("expected '(' after ASC/DESC")
			}
			expr, err := p.parsePrimary()
			if err != nil {
				return err
			}
			query.OrderBy = append(query.OrderBy, Ordering{Expression: expr, Descending: descending})
		}
		if len(query.OrderBy) == 0 {
			return p.errorf("expected order condition")
		}
	}

	for {
		p.skipWhitespace()
		switch {
		case p.matchKeyword("LIMIT"):
			n, err := p.parseInteger()
			if err != nil {
				return err
			}
			query.Limit = n
		case p.matchKeyword("OFFSET"):
			n, err := p.parseInteger()
			if err != nil {
				return err
			}
			query.Offset = n
		case p.matchKeyword("VALUES"):
			return p.errorf("VALUES clauses are not supported")
		default:
			return nil
		}
	}
}

// startsCondition reports whether the next token can begin a GROUP BY,
// HAVING or ORDER BY condition.
func (p *Parser) startsCondition() bool {
	ch := p.peek()
	if ch == '(' || ch == '?' || ch == '$' {
		return true
	}
	if !isLetter(ch) {
		return false
	}
	for _, kw := range []string{"LIMIT", "OFFSET", "ORDER", "HAVING", "VALUES", "GROUP"} {
		if p.lookingAtKeyword(kw) {
			return false
		}
	}
	return true
}

func (p *Parser) parseCondition() (Expression, error) {
	ch := p.peek()
	if ch == '?' || ch == '$' {
		return p.parseVariable()
	}
	return p.parsePrimary()
}

func (p *Parser) parseInteger() (int, error) {
	p.skipWhitespace()
	start := p.pos
	digits := p.readWhile(isDigit)
	if digits == "" {
		return 0, &SyntaxError{Offset: start, Message: "expected integer"}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, &SyntaxError{Offset: start, Message: fmt.Sprintf("invalid integer %q", digits)}
	}
	return n, nil
}

// parseGroupGraphPattern parses { ... } and returns its patterns.
func (p *Parser) parseGroupGraphPattern() ([]Pattern, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}

	var patterns []Pattern
	appendTriples := func(triples []Triple) {
		if n := len(patterns); n > 0 {
			if bgp, ok := patterns[n-1].(*BGP); ok {
				bgp.Triples = append(bgp.Triples, triples...)
				return
			}
		}
		patterns = append(patterns, &BGP{Triples: triples})
	}

	for {
		p.skipWhitespace()
		ch := p.peek()

		switch {
		case ch == 0:
			return nil, p.errorf("unterminated group pattern")
		case ch == '}':
			p.advance()
			return patterns, nil
		case ch == '.':
			p.advance()
		case ch == '{':
			group, err := p.parseGroupOrUnion()
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, group)
		case p.matchKeyword("FILTER"):
			p.skipWhitespace()
			expr, err := p.parsePrimary()
			if err != nil {
				return nil, fmt.Errorf("filter: %w", err)
			}
			patterns = append(patterns, &Filter{Expression: expr})
		case p.matchKeyword("OPTIONAL"):
			p.skipWhitespace()
			inner, err := p.parseGroupGraphPattern()
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, &Optional{Patterns: inner})
		case p.matchKeyword("MINUS"):
			p.skipWhitespace()
			inner, err := p.parseGroupGraphPattern()
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, &Minus{Patterns: inner})
		case p.matchKeyword("SERVICE"):
			service, err := p.parseService()
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, service)
		case p.matchKeyword("BIND"):
			bind, err := p.parseBind()
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, bind)
		case p.matchKeyword("VALUES"):
			return nil, p.errorf("VALUES blocks are not supported")
		case p.matchKeyword("GRAPH"):
			return nil, p.errorf("GRAPH blocks are not supported")
		case p.lookingAtKeyword("SELECT"):
			return nil, p.errorf("sub-selects are not supported")
		default:
			triples, err := p.parseTriplesSameSubject()
			if err != nil {
				return nil, err
			}
			appendTriples(triples)
		}
	}
}

// parseGroupOrUnion parses { ... } [UNION { ... }]*.
func (p *Parser) parseGroupOrUnion() (Pattern, error) {
	first, err := p.parseGroupGraphPattern()
	if err != nil {
		return nil, err
	}
	branches := []Pattern{branch(first)}
	for {
		p.skipWhitespace()
		if !p.matchKeyword("UNION") {
			break
		}
		p.skipWhitespace()
		next, err := p.parseGroupGraphPattern()
		if err != nil {
			return nil, err
		}
		branches = append(branches, branch(next))
	}
	if len(branches) == 1 {
		return &Group{Patterns: first}, nil
	}
	return &Union{Patterns: branches}, nil
}

func branch(patterns []Pattern) Pattern {
	if len(patterns) == 1 {
		return patterns[0]
	}
	return &Group{Patterns: patterns}
}

func (p *Parser) parseService() (*Service, error) {
	p.skipWhitespace()
	service := &Service{}
	if p.matchKeyword("SILENT") {
		service.Silent = true
		p.skipWhitespace()
	}
	name, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("service name: %w", err)
	}
	service.Name = name
	p.skipWhitespace()
	inner, err := p.parseGroupGraphPattern()
	if err != nil {
		return nil, err
	}
	service.Patterns = inner
	return service, nil
}

func (p *Parser) parseBind() (*Bind, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if !p.matchKeyword("AS") {
		return nil, p.errorf("expected AS in BIND")
	}
	p.skipWhitespace()
	v, err := p.parseVariable()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return &Bind{Expression: expr, Variable: v}, nil
}

// parseTriplesSameSubject parses a subject followed by a property list,
// expanding the ; and , shorthands.
func (p *Parser) parseTriplesSameSubject() ([]Triple, error) {
	subject, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}

	var triples []Triple
	for {
		p.skipWhitespace()
		predicate, err := p.parseVerb()
		if err != nil {
			return nil, fmt.Errorf("predicate: %w", err)
		}

		for {
			p.skipWhitespace()
			object, err := p.parseTerm()
			if err != nil {
				return nil, fmt.Errorf("object: %w", err)
			}
			triples = append(triples, Triple{Subject: subject, Predicate: predicate, Object: object})

			p.skipWhitespace()
			if p.peek() != ',' {
				break
			}
			p.advance()
		}

		p.skipWhitespace()
		if p.peek() != ';' {
			return triples, nil
		}
		for p.peek() == ';' {
			p.advance()
			p.skipWhitespace()
		}
		if ch := p.peek(); ch == '.' || ch == '}' {
			return triples, nil
		}
	}
}

// parseVerb parses a predicate: a variable or a property path.
func (p *Parser) parseVerb() (Predicate, error) {
	if ch := p.peek(); ch == '?' || ch == '$' {
		return p.parseVariable()
	}
	return p.parsePath()
}

func (p *Parser) parsePath() (Predicate, error) {
	first, err := p.parsePathSequence()
	if err != nil {
		return nil, err
	}
	items := []Predicate{first}
	for {
		p.skipWhitespace()
		if p.peek() != '|' {
			break
		}
		p.advance()
		p.skipWhitespace()
		next, err := p.parsePathSequence()
		if err != nil {
			return nil, err
		}
		items = append(items, next)
	}
	if len(items) == 1 {
		return first, nil
	}
	return &Path{Type: PathAlternative, Items: items}, nil
}

func (p *Parser) parsePathSequence() (Predicate, error) {
	first, err := p.parsePathEltOrInverse()
	if err != nil {
		return nil, err
	}
	items := []Predicate{first}
	for {
		p.skipWhitespace()
		if p.peek() != '/' {
			break
		}
		p.advance()
		p.skipWhitespace()
		next, err := p.parsePathEltOrInverse()
		if err != nil {
			return nil, err
		}
		items = append(items, next)
	}
	if len(items) == 1 {
		return first, nil
	}
	return &Path{Type: PathSequence, Items: items}, nil
}

func (p *Parser) parsePathEltOrInverse() (Predicate, error) {
	if p.peek() == '^' {
		p.advance()
		p.skipWhitespace()
		elt, err := p.parsePathElt()
		if err != nil {
			return nil, err
		}
		return &Path{Type: PathInverse, Items: []Predicate{elt}}, nil
	}
	return p.parsePathElt()
}

func (p *Parser) parsePathElt() (Predicate, error) {
	primary, err := p.parsePathPrimary()
	if err != nil {
		return nil, err
	}
	// Modifiers bind without whitespace; a '?' followed by a name is the
	// object variable, not a modifier.
	switch ch := p.peek(); ch {
	case '*', '+':
		p.advance()
		return &Path{Type: PathType(string(ch)), Items: []Predicate{primary}}, nil
	case '?':
		if !isNameChar(p.peekAt(1)) {
			p.advance()
			return &Path{Type: PathZeroOrOne, Items: []Predicate{primary}}, nil
		}
	}
	return primary, nil
}

func (p *Parser) parsePathPrimary() (Predicate, error) {
	switch ch := p.peek(); {
	case ch == '(':
		p.advance()
		p.skipWhitespace()
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return path, nil
	case ch == '!':
		return nil, p.errorf("negated property sets are not supported")
	case ch == '<':
		iri, err := p.parseIRIRef()
		if err != nil {
			return nil, err
		}
		return IRI{Value: iri}, nil
	case ch == 'a' && !isPrefixedNameChar(p.peekAt(1)) && p.peekAt(1) != ':':
		p.advance()
		return IRI{Value: TypeIRI}, nil
	default:
		iri, err := p.parsePrefixedName()
		if err != nil {
			return nil, err
		}
		return IRI{Value: iri}, nil
	}
}

// parseTerm parses a subject or object term.
func (p *Parser) parseTerm() (Term, error) {
	p.skipWhitespace()
	ch := p.peek()

	switch {
	case ch == '?' || ch == '$':
		return p.parseVariable()
	case ch == '<':
		iri, err := p.parseIRIRef()
		if err != nil {
			return nil, err
		}
		return IRI{Value: iri}, nil
	case ch == '"' || ch == '\'':
		return p.parseLiteral()
	case ch == '_' && p.peekAt(1) == ':':
		p.advance()
		p.advance()
		label := p.readWhile(isNameChar)
		if label == "" {
			return nil, p.errorf("invalid blank node label")
		}
		return BlankNode{Label: label}, nil
	case ch == '[':
		return nil, p.errorf("anonymous blank nodes are not supported")
	case isDigit(ch) || ((ch == '-' || ch == '+') && (isDigit(p.peekAt(1)) || p.peekAt(1) == '.')):
		return p.parseNumber()
	case p.matchKeyword("true"):
		return Literal{Value: "true", Datatype: XSDBoolean}, nil
	case p.matchKeyword("false"):
		return Literal{Value: "false", Datatype: XSDBoolean}, nil
	case ch == ':' || isLetter(ch):
		iri, err := p.parsePrefixedName()
		if err != nil {
			return nil, err
		}
		return IRI{Value: iri}, nil
	case ch == 0:
		return nil, p.errorf("unexpected end of input")
	default:
		return nil, p.errorf("unexpected character %q", ch)
	}
}

func (p *Parser) parseVariable() (Variable, error) {
	if ch := p.peek(); ch != '?' && ch != '$' {
		return Variable{}, p.errorf("expected variable")
	}
	p.advance()
	name := p.readWhile(isNameChar)
	if name == "" {
		return Variable{}, p.errorf("invalid variable name")
	}
	return Variable{Name: name}, nil
}

func (p *Parser) parseIRIRef() (string, error) {
	if p.peek() != '<' {
		return "", p.errorf("expected '<' to start IRI")
	}
	p.advance()
	iri := p.readWhile(func(ch byte) bool { return ch != '>' && ch != ' ' && ch != '\n' })
	if p.peek() != '>' {
		return "", p.errorf("unterminated IRI")
	}
	p.advance()
	if p.base != "" && !strings.Contains(iri, ":") {
		iri = p.base + iri
	}
	return iri, nil
}

func (p *Parser) parsePrefixedName() (string, error) {
	start := p.pos
	prefix := p.readWhile(isPrefixChar)
	if p.peek() != ':' {
		p.pos = start
		return "", p.errorf("expected prefixed name")
	}
	p.advance()

	local := p.readWhile(isPrefixedNameChar)
	// A trailing '.' terminates the triple rather than belonging to the name.
	for strings.HasSuffix(local, ".") {
		local = local[:len(local)-1]
		p.pos--
	}

	namespace, ok := p.prefixes[prefix]
	if !ok {
		return "", &SyntaxError{Offset: start, Message: fmt.Sprintf("undefined prefix %q", prefix)}
	}
	return namespace + local, nil
}

func (p *Parser) parseLiteral() (Literal, error) {
	value, err := p.parseString()
	if err != nil {
		return Literal{}, err
	}
	lit := Literal{Value: value}
	switch {
	case p.peek() == '@':
		p.advance()
		lit.Language = p.readWhile(func(ch byte) bool { return isLetter(ch) || isDigit(ch) || ch == '-' })
		if lit.Language == "" {
			return Literal{}, p.errorf("invalid language tag")
		}
	case p.peek() == '^' && p.peekAt(1) == '^':
		p.advance()
		p.advance()
		var datatype string
		if p.peek() == '<' {
			datatype, err = p.parseIRIRef()
		} else {
			datatype, err = p.parsePrefixedName()
		}
		if err != nil {
			return Literal{}, fmt.Errorf("datatype: %w", err)
		}
		lit.Datatype = datatype
	}
	return lit, nil
}

func (p *Parser) parseString() (string, error) {
	quote := p.peek()
	if quote != '"' && quote != '\'' {
		return "", p.errorf("expected string literal")
	}
	long := p.peekAt(1) == quote && p.peekAt(2) == quote
	if long {
		p.pos += 3
	} else {
		p.advance()
	}

	var sb strings.Builder
	for {
		if p.pos >= p.length {
			return "", p.errorf("unterminated string literal")
		}
		ch := p.peek()
		if ch == '\\' {
			p.advance()
			esc := p.peek()
			p.advance()
			switch esc {
			case 't':
				sb.WriteByte('\t')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case '"', '\'', '\\':
				sb.WriteByte(esc)
			case 'u':
				if p.pos+4 > p.length {
					return "", p.errorf("invalid unicode escape")
				}
				r, err := strconv.ParseUint(p.input[p.pos:p.pos+4], 16, 32)
				if err != nil {
					return "", p.errorf("invalid unicode escape")
				}
				sb.WriteRune(rune(r))
				p.pos += 4
			default:
				return "", p.errorf("invalid escape sequence \\%c", esc)
			}
			continue
		}
		if ch == quote {
			if !long {
				p.advance()
				return sb.String(), nil
			}
			if p.peekAt(1) == quote && p.peekAt(2) == quote {
				p.pos += 3
				return sb.String(), nil
			}
		} else if !long && (ch == '\n' || ch == '\r') {
			return "", p.errorf("newline in string literal")
		}
		sb.WriteByte(ch)
		p.advance()
	}
}

func (p *Parser) parseNumber() (Literal, error) {
	start := p.pos
	if ch := p.peek(); ch == '-' || ch == '+' {
		p.advance()
	}
	p.readWhile(isDigit)
	datatype := XSDInteger
	if p.peek() == '.' && isDigit(p.peekAt(1)) {
		p.advance()
		p.readWhile(isDigit)
		datatype = XSDDecimal
	}
	if ch := p.peek(); ch == 'e' || ch == 'E' {
		p.advance()
		if ch := p.peek(); ch == '-' || ch == '+' {
			p.advance()
		}
		if p.readWhile(isDigit) == "" {
			return Literal{}, p.errorf("invalid exponent")
		}
		datatype = XSDDouble
	}
	text := p.input[start:p.pos]
	if text == "" || text == "-" || text == "+" {
		return Literal{}, &SyntaxError{Offset: start, Message: "invalid number"}
	}
	return Literal{Value: text, Datatype: datatype}, nil
}

// Lexical helpers.

func (p *Parser) skipWhitespace() {
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			p.pos++
			continue
		}
		if ch == '#' {
			for p.pos < p.length && p.input[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		return
	}
}

func (p *Parser) peek() byte {
	return p.peekAt(0)
}

func (p *Parser) peekAt(offset int) byte {
	if p.pos+offset >= p.length {
		return 0
	}
	return p.input[p.pos+offset]
}

func (p *Parser) advance() {
	if p.pos < p.length {
		p.pos++
	}
}

func (p *Parser) expect(ch byte) error {
	p.skipWhitespace()
	if p.peek() != ch {
		return p.errorf("expected %q", ch)
	}
	p.advance()
	return nil
}

func (p *Parser) readWhile(pred func(byte) bool) string {
	start := p.pos
	for p.pos < p.length && pred(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

// lookingAtKeyword reports whether a case-insensitive keyword starts at the
// current position, without consuming it.
func (p *Parser) lookingAtKeyword(keyword string) bool {
	end := p.pos + len(keyword)
	if end > p.length || !strings.EqualFold(p.input[p.pos:end], keyword) {
		return false
	}
	return end == p.length || !isNameChar(p.input[end]) && p.input[end] != ':'
}

// matchKeyword consumes keyword if it starts at the current position.
func (p *Parser) matchKeyword(keyword string) bool {
	if !p.lookingAtKeyword(keyword) {
		return false
	}
	p.pos += len(keyword)
	return true
}

func (p *Parser) remainder(n int) string {
	end := p.pos + n
	if end > p.length {
		end = p.length
	}
	return p.input[p.pos:end]
}

func (p *Parser) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: p.pos, Message: fmt.Sprintf(format, args...)}
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isNameChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}

func isPrefixChar(ch byte) bool {
	return isNameChar(ch) || ch == '-'
}

func isPrefixedNameChar(ch byte) bool {
	return isNameChar(ch) || ch == '-' || ch == '.' || ch == '%'
}
