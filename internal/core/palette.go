package core

// Color is a category swatch drawn from Palette.
type Color string

// FallbackTextColor is used for colours outside the palette.
const FallbackTextColor = "hsl(var(--foreground))"

// Palette lists the background swatches in display order.
var Palette = []Color{
	"hsl(326, 100%, 97%)", // magenta
	"hsl(0, 100%, 97%)",   // red
	"hsl(16, 100%, 97%)",  // volcano
	"hsl(33, 100%, 96%)",  // orange
	"hsl(45, 100%, 96%)",  // gold
	"hsl(82, 98%, 96%)",   // lime
	"hsl(135, 84%, 96%)",  // green
	"hsl(180, 96%, 96%)",  // cyan
	"hsl(211, 100%, 96%)", // blue
	"hsl(221, 100%, 97%)", // geekblue
	"hsl(265, 100%, 97%)", // purple
}

// textPalette pairs with Palette by index.
var textPalette = []string{
	"hsl(326, 70%, 45%)",
	"hsl(0, 60%, 45%)",
	"hsl(16, 70%, 45%)",
	"hsl(33, 80%, 45%)",
	"hsl(45, 80%, 45%)",
	"hsl(82, 50%, 40%)",
	"hsl(135, 50%, 40%)",
	"hsl(180, 60%, 40%)",
	"hsl(211, 70%, 45%)",
	"hsl(221, 70%, 45%)",
	"hsl(265, 55%, 45%)",
}

func (c Color) index() int {
	for i, p := range Palette {
		if p == c {
			return i
		}
	}
	return -1
}

// Valid reports whether c is one of the palette swatches.
func (c Color) Valid() bool {
	return c.index() >= 0
}

// TextColor returns the contrasting text colour paired with c.
func (c Color) TextColor() string {
	if i := c.index(); i >= 0 {
		return textPalette[i]
	}
	return FallbackTextColor
}
