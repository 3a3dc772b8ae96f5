package syntax

import (
	"errors"
	"fmt"
)

var (
	ErrLex    = errors.New("lex error")
	ErrSyntax = errors.New("syntax error")
)

// LexError reports a malformed escape or an illegal character in a pattern.
type LexError struct {
	// Pos is the byte offset of the offending character.
	Pos    int
	Reason string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at position %d: %s", e.Pos, e.Reason)
}

func (e *LexError) Is(target error) bool { return target == ErrLex }

// SyntaxError reports a structurally invalid token sequence.
type SyntaxError struct {
	// Pos is the byte offset of the offending token.
	Pos    int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Reason)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// Position returns the byte offset carried by a lex or syntax error.
func Position(err error) (int, bool) {
	var lexErr *LexError
	if errors.As(err, &lexErr) {
		return lexErr.Pos, true
	}
	var synErr *SyntaxError
	if errors.As(err, &synErr) {
		return synErr.Pos, true
	}
	return 0, false
}
