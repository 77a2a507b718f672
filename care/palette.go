package care

import "strings"

// Color is a display colour, "#RRGGBB".
type Color string

// Palette is the fixed set of caregiver colours, in suggestion order.
var Palette = []Color{
	"#FF0000", // rouge
	"#FF7F00", // orange
	"#FFFF00", // jaune
	"#00FF00", // vert
	"#0000FF", // bleu
	"#4B0082", // indigo
	"#9400D3", // violet
}

// NormalizeColor upper-cases a hex colour so "#ff0000" matches the palette.
func NormalizeColor(c Color) Color {
	return Color(strings.ToUpper(strings.TrimSpace(string(c))))
}

// InPalette reports whether c is one of the palette colours.
func InPalette(c Color) bool {
	c = NormalizeColor(c)
	for _, p := range Palette {
		if p == c {
			return true
		}
	}
	return false
}

// UsedColors collects the colours of caregivers, skipping the one being edited.
func UsedColors(caregivers []Caregiver, except CaregiverID) map[Color]bool {
	used := make(map[Color]bool)
	for _, cg := range caregivers {
		if cg.ID == except || cg.Color == "" {
			continue
		}
		used[NormalizeColor(cg.Color)] = true
	}
	return used
}

// SuggestColor returns the first palette colour nobody uses, or "" when
// all are taken.
func SuggestColor(used map[Color]bool) Color {
	for _, c := range Palette {
		if !used[c] {
			return c
		}
	}
	return ""
}
