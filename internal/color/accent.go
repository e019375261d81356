// Package color picks accent colors for imprints.
package color

import (
	"hash/fnv"
	"strings"
)

// Palette is the set of imprint accents. Every entry keeps body text readable on both the
// light and the dark theme, so the dashboard never has to adjust an accent per theme.
var Palette = []string{
	"#C0392B", // brick
	"#D35400", // rust
	"#B7950B", // ochre
	"#7D8F1E", // olive
	"#27865B", // fern
	"#148F8F", // teal
	"#2874A6", // cobalt
	"#3E5BA9", // indigo
	"#6C4BA3", // violet
	"#943E8C", // plum
	"#B03A62", // raspberry
	"#6E6259", // slate brown
}

// Accent returns the palette color for an imprint name. Names that differ only in case
// or spacing ("Nightjar Press", " nightjar  press") share a color, so an imprint keeps its
// accent when it is re-entered or renamed cosmetically.
func Accent(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(foldName(name)))
	return Palette[h.Sum32()%uint32(len(Palette))]
}

func foldName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
