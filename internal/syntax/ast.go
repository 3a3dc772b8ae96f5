package syntax

import "strconv"

// NodeType identifies the kind of AST node.
type NodeType int

const (
	NodeLiteral NodeType = iota
	NodeAnyChar
	NodeEmpty
	NodeConcat
	NodeAlternate
	NodeStar
	NodePlus
	NodeOptional
)

// Node is the interface for all pattern AST nodes. Trees are immutable once
// parsed and composite nodes own their children exclusively.
type Node interface {
	Type() NodeType
	// String renders the node in a fully parenthesised canonical form.
	String() string
}

// Literal matches exactly one occurrence of Char.
type Literal struct {
	Char rune
}

func (n *Literal) Type() NodeType { return NodeLiteral }

func (n *Literal) String() string {
	if isEscapable(n.Char) {
		return `\` + string(n.Char)
	}
	if n.Char < 0x20 || n.Char == 0x7f {
		return strconv.QuoteRune(n.Char)
	}
	return string(n.Char)
}

// AnyChar matches exactly one arbitrary character.
type AnyChar struct{}

func (n *AnyChar) Type() NodeType { return NodeAnyChar }
func (n *AnyChar) String() string { return "." }

// Empty matches the zero-length input.
type Empty struct{}

func (n *Empty) Type() NodeType { return NodeEmpty }
func (n *Empty) String() string { return "()" }

// Concat matches Left immediately followed by Right.
type Concat struct {
	Left, Right Node
}

func (n *Concat) Type() NodeType { return NodeConcat }
func (n *Concat) String() string { return "(" + n.Left.String() + n.Right.String() + ")" }

// Alternate matches Left or Right.
type Alternate struct {
	Left, Right Node
}

func (n *Alternate) Type() NodeType { return NodeAlternate }
func (n *Alternate) String() string { return "(" + n.Left.String() + "|" + n.Right.String() + ")" }

// Star matches zero or more repetitions of Inner.
type Star struct {
	Inner Node
}

func (n *Star) Type() NodeType { return NodeStar }
func (n *Star) String() string { return "(" + n.Inner.String() + ")*" }

// Plus matches one or more repetitions of Inner.
type Plus struct {
	Inner Node
}

func (n *Plus) Type() NodeType { return NodePlus }
func (n *Plus) String() string { return "(" + n.Inner.String() + ")+" }

// Optional matches zero or one occurrence of Inner.
type Optional struct {
	Inner Node
}

func (n *Optional) Type() NodeType { return NodeOptional }
func (n *Optional) String() string { return "(" + n.Inner.String() + ")?" }

// Size returns the number of nodes in the tree rooted at n.
func Size(n Node) int {
	switch v := n.(type) {
	case *Concat:
		return 1 + Size(v.Left) + Size(v.Right)
	case *Alternate:
		return 1 + Size(v.Left) + Size(v.Right)
	case *Star:
		return 1 + Size(v.Inner)
	case *Plus:
		return 1 + Size(v.Inner)
	case *Optional:
		return 1 + Size(v.Inner)
	default:
		return 1
	}
}
