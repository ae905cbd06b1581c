package repository

// Kind identifies the Cargo target a unit was discovered from
type Kind string

const (
	KindBin     Kind = "bin"
	KindLib     Kind = "lib"
	KindExample Kind = "example"
)

// Unit represents a source unit: one crate target with its own entry file
type Unit struct {
	Name    string // normalized crate name, '-' replaced with '_'
	Path    string // entry file
	Root    string // crate directory
	Kind    Kind
	Version string // package version, as declared
}

// Project represents a detected Cargo project
type Project struct {
	RootPath     string // Absolute path to the directory holding the outermost Cargo.toml
	Name         string // package name, empty for virtual workspaces
	Workspace    bool   // true if manifest declares [workspace]
	RelativePath string // Path from project root to the inspected location
	Manifest     *Manifest
}
