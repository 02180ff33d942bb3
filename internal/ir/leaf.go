package ir

// Variable is a declared local, field, or parameter. When IsUserLibrary is
// set, the variable's declared type is a collection class recognized by
// the user-library catalog.
type Variable struct {
	id             int
	parent         *Scope
	Name           string
	TypeName       string
	TypeParameters []string // ordered, e.g. ["Int32"] for Array<Int32>
	Modifier       Modifier
	StatementRange TokenAddress
	IsUserLibrary  bool
}

func (v *Variable) SymbolKind() SymbolKind {
	if v.IsUserLibrary {
		return KindUserLibraryVariable
	}
	return KindVariable
}
func (v *Variable) Identifier() int   { return v.id }
func (v *Variable) Enclosing() *Scope { return v.parent }

// NewVariable declares a Variable symbol.
func NewVariable(parent *Scope, id int, name, typeName string, typeParams []string, mod Modifier, rng TokenAddress) *Variable {
	return &Variable{id: id, parent: parent, Name: name, TypeName: typeName, TypeParameters: typeParams, Modifier: mod, StatementRange: rng}
}

// Literal is a boolean/char/int/float/string constant symbol.
type Literal struct {
	id       int
	parent   *Scope
	LitKind  LiteralKind
	Value    string
	TypeName string
}

func (l *Literal) SymbolKind() SymbolKind { return KindLiteral }
func (l *Literal) Identifier() int        { return l.id }
func (l *Literal) Enclosing() *Scope      { return l.parent }

func NewLiteral(parent *Scope, id int, kind LiteralKind, value, typeName string) *Literal {
	return &Literal{id: id, parent: parent, LitKind: kind, Value: value, TypeName: typeName}
}

// Expression is an opaque host-source fragment, passed through literally
// wherever it is used as an argument.
type Expression struct {
	id     int
	parent *Scope
	Text   string
}

func (e *Expression) SymbolKind() SymbolKind { return KindExpression }
func (e *Expression) Identifier() int        { return e.id }
func (e *Expression) Enclosing() *Scope      { return e.parent }

func NewExpression(parent *Scope, id int, text string) *Expression {
	return &Expression{id: id, parent: parent, Text: text}
}

// Creator models a `new Foo(args...)` construction.
type Creator struct {
	id                    int
	parent                *Scope
	AttributedObjectName  string
	Arguments             []Symbol
	StatementRange        TokenAddress
}

func (c *Creator) SymbolKind() SymbolKind { return KindCreator }
func (c *Creator) Identifier() int        { return c.id }
func (c *Creator) Enclosing() *Scope      { return c.parent }

func NewCreator(parent *Scope, id int, objName string, args []Symbol, rng TokenAddress) *Creator {
	return &Creator{id: id, parent: parent, AttributedObjectName: objName, Arguments: args, StatementRange: rng}
}
