// Package rulers draws the inch rulers along the scene canvas.
package rulers

import (
	"math"
	"strconv"
)

const (
	// PixelsPerInch is the scene resolution the rulers assume.
	PixelsPerInch = 48

	// Subdivisions is the number of ticks per inch.
	Subdivisions = 16

	// Standard ruler lengths in inches.
	HorizontalLength = 32.8
	VerticalLength   = 100.0
)

// Mark is a single ruler tick.
type Mark struct {
	Position float64 // scene units from the ruler origin
	Length   float64 // tick length in screen units
	Label    string  // inch number, set on whole inches only
}

// TickLength returns the tick length for the i-th sixteenth.
func TickLength(i int) float64 {
	switch {
	case i%16 == 0:
		return 20
	case i%8 == 0:
		return 15
	case i%4 == 0:
		return 10
	default:
		return 5
	}
}

// Marks returns every tick of a ruler length inches long, including the one
// at zero.
func Marks(length float64) []Mark {
	if length <= 0 {
		return nil
	}
	n := int(math.Floor(length*Subdivisions + 1e-9))
	marks := make([]Mark, 0, n+1)
	for i := 0; i <= n; i++ {
		m := Mark{
			Position: float64(i) / Subdivisions * PixelsPerInch,
			Length:   TickLength(i),
		}
		if i%Subdivisions == 0 {
			m.Label = strconv.Itoa(i / Subdivisions)
		}
		marks = append(marks, m)
	}
	return marks
}
