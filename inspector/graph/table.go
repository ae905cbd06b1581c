package graph

// Table represents a unit definition table: qualified name to definition,
// plus a type to methods index used to resolve calls made through an instance
type Table struct {
	Unit        string        // unit (crate) name, may be empty
	Definitions []*Definition // definitions in declaration order
	Files       []string      // canonical paths of parsed files in visit order

	definitionMap map[string]int          // qualified name to position
	typeMethods   map[string][]*Definition // type simple name to its methods
	types         []string                 // type names in declaration order
}

// NewTable creates a definition table for a unit
func NewTable(unit string) *Table {
	return &Table{
		Unit:          unit,
		definitionMap: make(map[string]int),
		typeMethods:   make(map[string][]*Definition),
	}
}

// Add registers a definition; returns false if the qualified name is already taken
func (t *Table) Add(def *Definition) bool {
	if t.definitionMap == nil {
		t.definitionMap = make(map[string]int)
		t.typeMethods = make(map[string][]*Definition)
	}
	if _, ok := t.definitionMap[def.QualifiedName]; ok {
		return false
	}
	t.Definitions = append(t.Definitions, def)
	t.definitionMap[def.QualifiedName] = len(t.Definitions) - 1
	if def.IsMethod() {
		if _, ok := t.typeMethods[def.Owner]; !ok {
			t.types = append(t.types, def.Owner)
		}
		t.typeMethods[def.Owner] = append(t.typeMethods[def.Owner], def)
	}
	return true
}

// Lookup retrieves a definition by qualified name
func (t *Table) Lookup(name string) *Definition {
	if idx, ok := t.definitionMap[name]; ok && idx < len(t.Definitions) {
		return t.Definitions[idx]
	}
	return nil
}

// Has returns true if qualified name is defined
func (t *Table) Has(name string) bool {
	_, ok := t.definitionMap[name]
	return ok
}

// Methods returns methods declared for a type simple name
func (t *Table) Methods(typeName string) []*Definition {
	return t.typeMethods[typeName]
}

// Types returns type names with methods in declaration order
func (t *Table) Types() []string {
	return t.types
}

// LookupMethod returns the method of the first declared type exposing methodName.
// Methods of unrelated types sharing a name are not disambiguated.
func (t *Table) LookupMethod(methodName string) *Definition {
	for _, typeName := range t.types {
		for _, method := range t.typeMethods[typeName] {
			if method.Name == methodName {
				return method
			}
		}
	}
	return nil
}

// AddFile records a parsed file
func (t *Table) AddFile(path string) {
	t.Files = append(t.Files, path)
}

// Len returns number of definitions
func (t *Table) Len() int {
	return len(t.Definitions)
}
