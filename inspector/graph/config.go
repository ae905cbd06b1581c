package graph

// Config controls which declarations an inspector registers
type Config struct {
	IncludeTests bool // register #[cfg(test)] modules and #[test] functions
}

// DefaultConfig returns default inspector config
func DefaultConfig() *Config {
	return &Config{
		IncludeTests: false,
	}
}
