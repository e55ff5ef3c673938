// Package lang defines the tagged-tree program representation shared by the
// enumerative synthesizer and the genetic evolution engine. Trees are plain
// values: cloning is always a deep copy and equality is always structural,
// which is what the crossover and subtree-replacement logic relies on.
package lang

import (
	"fmt"
	"strings"
)

// Kind discriminates the AST node variants.
type Kind int

const (
	// KindVar references the Index-th positional input argument.
	KindVar Kind = iota
	// KindConst is a literal value (int, bool, or list).
	KindConst
	// KindPrim is a zero-argument reference to a named primitive.
	KindPrim
	// KindApply applies the named primitive Op to the evaluated Children.
	KindApply
)

// Node is a single AST node. Exactly one of the payload fields is
// meaningful for a given Kind: Index for KindVar, Lit for KindConst,
// Op for KindPrim and KindApply, Children for KindApply only.
type Node struct {
	Kind     Kind
	Index    int
	Lit      Value
	Op       string
	Children []*Node
}

// Var returns a node referencing input argument i.
func Var(i int) *Node {
	return &Node{Kind: KindVar, Index: i}
}

// Const returns a literal node.
func Const(v Value) *Node {
	return &Node{Kind: KindConst, Lit: v}
}

// Prim returns a leaf reference to the named primitive.
func Prim(name string) *Node {
	return &Node{Kind: KindPrim, Op: name}
}

// Apply returns an application of the named primitive to children.
func Apply(op string, children ...*Node) *Node {
	return &Node{Kind: KindApply, Op: op, Children: children}
}

// Size returns the node count of the tree. Every node costs 1, including
// constant leaves with compound literals.
func (n *Node) Size() int {
	if n == nil {
		return 0
	}
	size := 1
	for _, c := range n.Children {
		size += c.Size()
	}
	return size
}

// Clone returns a deep copy sharing no nodes with the receiver.
// Literal values are copied where they are lists.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{Kind: n.Kind, Index: n.Index, Lit: CloneValue(n.Lit), Op: n.Op}
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return cp
}

// Equal reports deep structural equality. Clones compare equal to their
// originals.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Kind != other.Kind {
		return false
	}
	switch n.Kind {
	case KindVar:
		return n.Index == other.Index
	case KindConst:
		return ValuesEqual(n.Lit, other.Lit)
	case KindPrim:
		return n.Op == other.Op
	case KindApply:
		if n.Op != other.Op || len(n.Children) != len(other.Children) {
			return false
		}
		for i := range n.Children {
			if !n.Children[i].Equal(other.Children[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Render converts the tree to its human-readable code form,
// e.g. "add(arg0, 1)".
func (n *Node) Render() string {
	switch n.Kind {
	case KindVar:
		return fmt.Sprintf("arg%d", n.Index)
	case KindConst:
		return FormatValue(n.Lit)
	case KindPrim:
		return n.Op
	case KindApply:
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = c.Render()
		}
		return fmt.Sprintf("%s(%s)", n.Op, strings.Join(parts, ", "))
	}
	return "unknown"
}

// Subtrees returns every subtree of n in pre-order, root first. The slice
// indexes are the crossover and mutation points used by the genetic engine.
func (n *Node) Subtrees() []*Node {
	var out []*Node
	var walk func(node *Node)
	walk = func(node *Node) {
		out = append(out, node)
		for _, c := range node.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// ReplaceSubtree returns a new tree in which the subtree at the given
// pre-order index is replaced by repl. Replacement is by structural
// identity: every occurrence equal to the selected subtree is replaced,
// so recursive copies behave the same as their originals. An out-of-range
// index returns an unchanged clone.
func (n *Node) ReplaceSubtree(index int, repl *Node) *Node {
	subtrees := n.Subtrees()
	if index < 0 || index >= len(subtrees) {
		return n.Clone()
	}
	target := subtrees[index]

	var rebuild func(node *Node) *Node
	rebuild = func(node *Node) *Node {
		if node.Equal(target) {
			return repl.Clone()
		}
		if node.Kind != KindApply {
			return node.Clone()
		}
		children := make([]*Node, len(node.Children))
		for i, c := range node.Children {
			children[i] = rebuild(c)
		}
		return &Node{Kind: KindApply, Op: node.Op, Children: children}
	}
	return rebuild(n)
}

// MaxVarIndex returns the largest argument index referenced anywhere in
// the tree, or -1 when the tree reads no arguments.
func (n *Node) MaxVarIndex() int {
	max := -1
	for _, sub := range n.Subtrees() {
		if sub.Kind == KindVar && sub.Index > max {
			max = sub.Index
		}
	}
	return max
}
