package charts

import (
	"hash/fnv"
	"strings"
)

// Colors for the categories the backend classifier emits. Pinned so a
// category keeps its color across fetches, filters and exports.
var categoryColors = map[string]string{
	"fruits":     "#22c55e",
	"vegetables": "#84cc16",
	"meat":       "#ef4444",
	"seafood":    "#0ea5e9",
	"dairy":      "#eab308",
	"bakery":     "#f97316",
	"snacks":     "#ec4899",
	"beverages":  "#14b8a6",
	"alcohol":    "#a855f7",
	"household":  "#64748b",
	"other":      "#94a3b8",
}

var colorPalette = []string{
	"#7e5cff", "#0ea5e9", "#f97316", "#22c55e", "#eab308",
	"#ec4899", "#14b8a6", "#a855f7", "#ef4444", "#64748b",
}

// CategoryColor returns a stable color for a category name. Unknown
// categories hash into a fixed palette so the same name always maps to the
// same color.
func CategoryColor(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return categoryColors["other"]
	}
	if color, ok := categoryColors[key]; ok {
		return color
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return colorPalette[int(h.Sum32())%len(colorPalette)]
}
