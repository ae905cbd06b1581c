package dot

// Palette orders colors from early to late calls
var Palette = []string{
	// blues
	"#1e40af", "#1d4ed8", "#2563eb", "#3b82f6", "#60a5fa",
	// purples
	"#6d28d9", "#7c3aed", "#8b5cf6", "#a78bfa",
	// pinks
	"#be185d", "#db2777", "#ec4899", "#f472b6",
	// greens
	"#166534", "#16a34a", "#22c55e", "#4ade80", "#86efac",
	// yellows
	"#facc15", "#fbbf24", "#f59e0b",
	// oranges
	"#ea580c", "#f97316", "#fb923c",
	// reds
	"#dc2626", "#b91c1c", "#991b1b",
}

const (
	// Neutral colors a node no edge points to
	Neutral = "black"
)

// DefaultColor colors targets when the graph has at most one edge
var DefaultColor = Palette[0]

// colorIndex scales sequence from [1, total] into [0, size-1]
func colorIndex(sequence uint64, total int, size int) int {
	if total <= 1 || size == 0 {
		return 0
	}
	idx := (sequence - 1) * uint64(size-1) / uint64(total-1)
	if idx >= uint64(size) {
		idx = uint64(size - 1)
	}
	return int(idx)
}
