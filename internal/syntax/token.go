package syntax

import (
	"unicode/utf8"
)

// TokenKind identifies the kind of a lexical token.
type TokenKind int

const (
	TokenLiteral TokenKind = iota
	TokenStar
	TokenPlus
	TokenQuestion
	TokenPipe
	TokenLParen
	TokenRParen
	TokenDot
	TokenEnd
)

var tokenKindNames = [...]string{
	TokenLiteral:  "literal",
	TokenStar:     "'*'",
	TokenPlus:     "'+'",
	TokenQuestion: "'?'",
	TokenPipe:     "'|'",
	TokenLParen:   "'('",
	TokenRParen:   "')'",
	TokenDot:      "'.'",
	TokenEnd:      "end of pattern",
}

func (k TokenKind) String() string {
	if int(k) < 0 || int(k) >= len(tokenKindNames) {
		return "unknown"
	}
	return tokenKindNames[k]
}

// Token is a single lexical unit of a pattern.
type Token struct {
	Kind TokenKind
	// Char is set for TokenLiteral only.
	Char rune
	// Pos is the byte offset of the token in the pattern.
	Pos int
}

// operators maps the dialect's metacharacters to their token kinds.
var operators = map[rune]TokenKind{
	'*': TokenStar,
	'+': TokenPlus,
	'?': TokenQuestion,
	'|': TokenPipe,
	'(': TokenLParen,
	')': TokenRParen,
	'.': TokenDot,
}

// reserved characters are not part of the dialect and must be escaped.
var reserved = map[rune]bool{
	'[': true,
	']': true,
	'{': true,
	'}': true,
	'^': true,
	'$': true,
}

// Tokenize splits a pattern into tokens. The returned slice always ends with
// a TokenEnd positioned at len(pattern).
func Tokenize(pattern string) ([]Token, error) {
	tokens := make([]Token, 0, len(pattern)+1)
	i := 0

	for i < len(pattern) {
		r, size := utf8.DecodeRuneInString(pattern[i:])
		if r == utf8.RuneError && size == 1 {
			return nil, &LexError{Pos: i, Reason: "invalid UTF-8"}
		}
		if isControl(r) {
			return nil, &LexError{Pos: i, Reason: "illegal character"}
		}

		if r == '\\' {
			if i+size >= len(pattern) {
				return nil, &LexError{Pos: i, Reason: "dangling escape"}
			}
			esc, escSize := utf8.DecodeRuneInString(pattern[i+size:])
			if isControl(esc) {
				return nil, &LexError{Pos: i + size, Reason: "illegal character"}
			}
			if !isEscapable(esc) {
				return nil, &LexError{Pos: i, Reason: "unknown escape"}
			}
			tokens = append(tokens, Token{Kind: TokenLiteral, Char: esc, Pos: i})
			i += size + escSize
			continue
		}

		if kind, ok := operators[r]; ok {
			tokens = append(tokens, Token{Kind: kind, Pos: i})
		} else if reserved[r] {
			return nil, &LexError{Pos: i, Reason: "unsupported metacharacter"}
		} else {
			tokens = append(tokens, Token{Kind: TokenLiteral, Char: r, Pos: i})
		}
		i += size
	}

	tokens = append(tokens, Token{Kind: TokenEnd, Pos: len(pattern)})
	return tokens, nil
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

func isEscapable(r rune) bool {
	if r == '\\' || reserved[r] {
		return true
	}
	_, ok := operators[r]
	return ok
}
