package callgraph

// Edge represents a discovered call from caller to callee
type Edge struct {
	Caller   string `yaml:"caller"`
	Callee   string `yaml:"callee"`
	Sequence uint64 `yaml:"sequence"`
	Unit     string `yaml:"unit,omitempty"` // unit that discovered the call
}

// UnitCalls represents one unit traversal result: edges in discovery order, not yet sequenced
type UnitCalls struct {
	Unit  string   `yaml:"unit"`
	Root  string   `yaml:"root,omitempty"`
	Nodes []string `yaml:"nodes,omitempty"` // resolved entry definitions
	Edges []*Edge  `yaml:"edges,omitempty"`
}

// AddEdge appends an unsequenced edge
func (u *UnitCalls) AddEdge(caller, callee string) {
	u.Edges = append(u.Edges, &Edge{Caller: caller, Callee: callee, Unit: u.Unit})
}

// AddNode records a node that exists independently of edges
func (u *UnitCalls) AddNode(name string) {
	for _, candidate := range u.Nodes {
		if candidate == name {
			return
		}
	}
	u.Nodes = append(u.Nodes, name)
}
