package syntax

// Parse tokenizes and parses a pattern into an AST.
func Parse(pattern string) (Node, error) {
	tokens, err := Tokenize(pattern)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}

// ParseTokens parses a token sequence produced by Tokenize. Precedence from
// tightest to loosest: grouping, repetition, concatenation, alternation.
func ParseTokens(tokens []Token) (Node, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != TokenEnd {
		end := 0
		if len(tokens) > 0 {
			end = tokens[len(tokens)-1].Pos
		}
		return nil, &SyntaxError{Pos: end, Reason: "token sequence is not terminated"}
	}
	for _, tok := range tokens[:len(tokens)-1] {
		if tok.Kind == TokenEnd {
			return nil, &SyntaxError{Pos: tok.Pos, Reason: "end of pattern before last token"}
		}
	}

	p := &parser{tokens: tokens}
	node, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}

	tok := p.peek()
	switch tok.Kind {
	case TokenEnd:
		return node, nil
	case TokenRParen:
		return nil, &SyntaxError{Pos: tok.Pos, Reason: "unmatched ')'"}
	default:
		return nil, &SyntaxError{Pos: tok.Pos, Reason: "unexpected " + tok.Kind.String()}
	}
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEnd {
		p.pos++
	}
	return tok
}

func (p *parser) parseAlternation() (Node, error) {
	left, count, err := p.parseConcat()
	if err != nil {
		return nil, err
	}

	for p.peek().Kind == TokenPipe {
		pipe := p.next()
		if count == 0 {
			return nil, &SyntaxError{Pos: pipe.Pos, Reason: "empty left operand of '|'"}
		}

		var right Node
		right, count, err = p.parseConcat()
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, &SyntaxError{Pos: pipe.Pos, Reason: "empty right operand of '|'"}
		}
		left = &Alternate{Left: left, Right: right}
	}

	return left, nil
}

// parseConcat returns the folded sequence and the number of items in it.
// Zero items yields Empty.
func (p *parser) parseConcat() (Node, int, error) {
	var result Node
	count := 0

	for {
		switch p.peek().Kind {
		case TokenPipe, TokenRParen, TokenEnd:
			if count == 0 {
				return &Empty{}, 0, nil
			}
			return result, count, nil
		}

		item, err := p.parseRepeat()
		if err != nil {
			return nil, 0, err
		}
		if result == nil {
			result = item
		} else {
			result = &Concat{Left: result, Right: item}
		}
		count++
	}
}

func (p *parser) parseRepeat() (Node, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	var node Node
	switch p.peek().Kind {
	case TokenStar:
		node = &Star{Inner: atom}
	case TokenPlus:
		node = &Plus{Inner: atom}
	case TokenQuestion:
		node = &Optional{Inner: atom}
	default:
		return atom, nil
	}
	p.next()

	if tok := p.peek(); isRepeat(tok.Kind) {
		return nil, &SyntaxError{Pos: tok.Pos, Reason: "repetition operator " + tok.Kind.String() + " cannot be chained"}
	}
	return node, nil
}

func (p *parser) parseAtom() (Node, error) {
	tok := p.next()
	switch tok.Kind {
	case TokenLiteral:
		return &Literal{Char: tok.Char}, nil
	case TokenDot:
		return &AnyChar{}, nil
	case TokenLParen:
		inner, err := p.parseAlternation()
		if err != nil {
			return nil, err
		}
		if p.peek().Kind != TokenRParen {
			return nil, &SyntaxError{Pos: tok.Pos, Reason: "unmatched '('"}
		}
		p.next()
		return inner, nil
	case TokenStar, TokenPlus, TokenQuestion:
		return nil, &SyntaxError{Pos: tok.Pos, Reason: "missing operand for " + tok.Kind.String()}
	default:
		return nil, &SyntaxError{Pos: tok.Pos, Reason: "unexpected " + tok.Kind.String()}
	}
}

func isRepeat(k TokenKind) bool {
	return k == TokenStar || k == TokenPlus || k == TokenQuestion
}
