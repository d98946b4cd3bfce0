package rulers

import (
	"image"
	"image/color"
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// glyph returns the pattern for a digit; anything else is blank.
func glyph(ch rune) [5]uint8 {
	if ch >= '0' && ch <= '9' {
		return digitPatterns[ch-'0']
	}
	return [5]uint8{}
}

// labelWidth returns the width in pixels of label drawn at scale.
func labelWidth(label string, scale int) int {
	n := len(label)
	if n == 0 {
		return 0
	}
	return n*3*scale + (n-1)*scale
}

// drawLabel draws label with its top-left corner at (x, y). Pixels outside
// output are skipped.
func drawLabel(output *image.RGBA, label string, x, y int, col color.RGBA, scale int) {
	if scale < 1 {
		scale = 1
	}
	bounds := output.Bounds()
	for i, ch := range label {
		pattern := glyph(ch)
		charX := x + i*4*scale
		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if pattern[row]&(1<<(2-c)) == 0 {
					continue
				}
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						px := charX + c*scale + dx
						py := y + row*scale + dy
						if (image.Point{X: px, Y: py}).In(bounds) {
							output.SetRGBA(px, py, col)
						}
					}
				}
			}
		}
	}
}
