package graph

// Node colors.
const (
	TaggedColor  = "#3B82F6"
	DefaultColor = "#94A3B8"
)

// FallbackEdgeColor is used for categories missing from the palette.
const FallbackEdgeColor = "#9CA3AF"

var categoryPalette = map[string]string{
	"yellow": "#FCD34D",
	"black":  "#6B7280",
	"green":  "#34D399",
	"red":    "#F87171",
}

// CategoryColor returns the palette color for category, or FallbackEdgeColor.
func CategoryColor(category string) string {
	if c, ok := categoryPalette[category]; ok {
		return c
	}
	return FallbackEdgeColor
}

// Categories returns a copy of the palette.
func Categories() map[string]string {
	out := make(map[string]string, len(categoryPalette))
	for k, v := range categoryPalette {
		out[k] = v
	}
	return out
}
