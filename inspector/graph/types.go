package graph

import "strings"

// Separator joins path segments of a qualified name
const Separator = "::"

// Kind identifies an invokable definition
type Kind string

const (
	KindFunction Kind = "Function" // free function
	KindMethod   Kind = "Method"   // function declared in an impl block
)

// CallKind identifies how a call site names its target
type CallKind int

const (
	// CallDirect is a call through a (possibly multi segment) path, e.g. foo() or a::b::foo()
	CallDirect CallKind = iota
	// CallMethod is a call made through a receiver, e.g. x.foo()
	CallMethod
)

func (k CallKind) String() string {
	if k == CallMethod {
		return "method"
	}
	return "direct"
}

// Location represents a source span
type Location struct {
	Path  string
	Start int // 1 based line
	End   int // 1 based line
}

// CallSite represents a call expression found in a definition body
type CallSite struct {
	Kind CallKind
	Path []string // path segments, direct calls only
	Name string   // last path segment or method name
	Line int
}

// Raw returns the call target as written in source
func (c *CallSite) Raw() string {
	if c.Kind == CallMethod || len(c.Path) == 0 {
		return c.Name
	}
	return strings.Join(c.Path, Separator)
}

// Definition represents a named, invokable body: a free function or a type-bound method
type Definition struct {
	Name          string   // simple name
	QualifiedName string   // scope::[Type::]name
	Owner         string   // implementing type simple name, methods only
	Scope         []string // lexical scope the definition was declared in
	Kind          Kind
	Public        bool
	Location      *Location
	Calls         []*CallSite // call sites in body pre-order
}

// IsMethod returns true if definition is bound to a type
func (d *Definition) IsMethod() bool {
	return d.Kind == KindMethod
}

// OwnerPath returns qualified path of the owning type, e.g. app::store::Cache
func (d *Definition) OwnerPath() []string {
	if d.Owner == "" {
		return nil
	}
	return append(append([]string{}, d.Scope...), d.Owner)
}

// SplitName splits a qualified name into its segments
func SplitName(name string) []string {
	if name == "" {
		return nil
	}
	return strings.Split(name, Separator)
}

// JoinName joins segments into a qualified name
func JoinName(segments ...string) string {
	return strings.Join(segments, Separator)
}
