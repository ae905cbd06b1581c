package graph

import "strings"

// Scope represents the lexical context: an ordered stack of module names
type Scope struct {
	names []string
}

// NewScope creates a scope rooted at the given names (typically the unit name)
func NewScope(root ...string) *Scope {
	s := &Scope{}
	for _, name := range root {
		if name != "" {
			s.names = append(s.names, name)
		}
	}
	return s
}

// Push enters a nested scope
func (s *Scope) Push(name string) {
	s.names = append(s.names, name)
}

// Pop leaves the innermost scope
func (s *Scope) Pop() {
	if len(s.names) > 0 {
		s.names = s.names[:len(s.names)-1]
	}
}

// Path returns a copy of the current scope names
func (s *Scope) Path() []string {
	return append([]string{}, s.names...)
}

// Depth returns number of scope names
func (s *Scope) Depth() int {
	return len(s.names)
}

// Qualify joins the current scope with name
func (s *Scope) Qualify(name string) string {
	return Qualify(s.names, name)
}

// String returns the joined scope
func (s *Scope) String() string {
	return strings.Join(s.names, Separator)
}

// Qualify joins scope names with name; an empty scope leaves name unchanged
func Qualify(scope []string, name string) string {
	if len(scope) == 0 {
		return name
	}
	return strings.Join(scope, Separator) + Separator + name
}
