package ir

import "github.com/oxhq/kernelforge/internal/kerrors"

// SymbolKind discriminates the Symbol sum type of the data model. Go has
// no native sum types, so the variant is carried as an explicit tag and
// dispatched on with a type switch or a Kind() comparison rather than
// through a hierarchy of interface methods — see SPEC_FULL.md §9 on
// preferring dispatch tables over deep polymorphism.
type SymbolKind int

const (
	KindRoot SymbolKind = iota
	KindClass
	KindMethod
	KindVariable
	KindUserLibraryVariable
	KindLiteral
	KindExpression
	KindCreator
)

func (k SymbolKind) String() string {
	switch k {
	case KindRoot:
		return "Root"
	case KindClass:
		return "Class"
	case KindMethod:
		return "Method"
	case KindVariable:
		return "Variable"
	case KindUserLibraryVariable:
		return "UserLibraryVariable"
	case KindLiteral:
		return "Literal"
	case KindExpression:
		return "Expression"
	case KindCreator:
		return "Creator"
	default:
		return "Unknown"
	}
}

// Modifier captures the host-language declaration modifier relevant to
// capture analysis: whether a variable is immutable once assigned.
type Modifier int

const (
	ModifierNone Modifier = iota
	ModifierFinal
)

// LiteralKind enumerates the recognized literal constant kinds.
type LiteralKind int

const (
	LiteralBool LiteralKind = iota
	LiteralChar
	LiteralInt
	LiteralFloat
	LiteralString
)

// Symbol is any member of the symbol sum type. Every variant carries a
// small integer Identifier distinguishing homonyms in the same scope, and
// a back-edge to its enclosing scope.
type Symbol interface {
	SymbolKind() SymbolKind
	Identifier() int
	Enclosing() *Scope
}

// Scope is a scope-bearing symbol: Root, Class, or Method. It owns a
// name -> ordered-symbol-sequence mapping for its direct children, plus
// the overall declaration order needed for pre-order enumeration.
type Scope struct {
	kind       SymbolKind
	id         int
	parent     *Scope
	Name       string       // empty for Root
	BodyRange  TokenAddress // Class.body_range
	Signature  string       // Method.signature
	children   map[string][]Symbol
	all        []Symbol // declaration order, this scope only
}

func (s *Scope) SymbolKind() SymbolKind { return s.kind }
func (s *Scope) Identifier() int        { return s.id }
func (s *Scope) Enclosing() *Scope      { return s.parent }

// NewRoot creates the top-level scope for one compiled file.
func NewRoot() *Scope {
	return &Scope{kind: KindRoot, children: map[string][]Symbol{}}
}

// NewClass creates a Class scope nested in parent.
func NewClass(parent *Scope, name string, id int, bodyRange TokenAddress) *Scope {
	return &Scope{kind: KindClass, id: id, parent: parent, Name: name, BodyRange: bodyRange, children: map[string][]Symbol{}}
}

// NewMethod creates a Method scope nested in parent.
func NewMethod(parent *Scope, name string, id int, signature string) *Scope {
	return &Scope{kind: KindMethod, id: id, parent: parent, Name: name, Signature: signature, children: map[string][]Symbol{}}
}

func symbolName(sym Symbol) string {
	switch v := sym.(type) {
	case *Scope:
		return v.Name
	case *Variable:
		return v.Name
	case *Creator:
		return v.AttributedObjectName
	default:
		return ""
	}
}

// Declare adds sym as a child of the scope. It fails with
// kerrors.ErrDuplicateInScope only when a symbol of the same kind and
// identifier already exists among the scope's direct children.
func (s *Scope) Declare(sym Symbol) error {
	name := symbolName(sym)
	for _, existing := range s.children[name] {
		if existing.SymbolKind() == sym.SymbolKind() && existing.Identifier() == sym.Identifier() {
			return kerrors.ErrDuplicateInScope
		}
	}
	s.children[name] = append(s.children[name], sym)
	s.all = append(s.all, sym)
	return nil
}

// LookupInScope returns the matching direct children of s, in declaration
// order.
func (s *Scope) LookupInScope(name string, kind SymbolKind) []Symbol {
	var out []Symbol
	for _, sym := range s.children[name] {
		if sym.SymbolKind() == kind {
			out = append(out, sym)
		}
	}
	return out
}

// LookupUpward walks s and its enclosing scopes until a match is found,
// returning the lexically nearest binding (the most recently declared
// matching symbol in the nearest scope that has one).
func (s *Scope) LookupUpward(name string, kind SymbolKind) Symbol {
	for scope := s; scope != nil; scope = scope.parent {
		matches := scope.LookupInScope(name, kind)
		if len(matches) > 0 {
			return matches[len(matches)-1]
		}
	}
	return nil
}

// Collect enumerates all children of kind in declaration (pre-order) order.
// When recursive is true, nested Class/Method scopes are also descended
// into in the order they were declared.
func (s *Scope) Collect(kind SymbolKind, recursive bool) []Symbol {
	var out []Symbol
	for _, sym := range s.all {
		if sym.SymbolKind() == kind {
			out = append(out, sym)
		}
		if recursive {
			if child, ok := sym.(*Scope); ok {
				out = append(out, child.Collect(kind, true)...)
			}
		}
	}
	return out
}

// Children returns every direct child in declaration order.
func (s *Scope) Children() []Symbol { return append([]Symbol(nil), s.all...) }
