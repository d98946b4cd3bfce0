package rulers

import (
	"image"
	"testing"

	"tint-care/pkg/geometry"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarksOneInch(t *testing.T) {
	marks := Marks(1)
	require.Len(t, marks, 17)

	assert.Equal(t, Mark{Position: 0, Length: 20, Label: "0"}, marks[0])
	assert.Equal(t, 5.0, marks[1].Length)
	assert.Equal(t, 3.0, marks[1].Position)
	assert.Equal(t, 10.0, marks[4].Length)
	assert.Equal(t, 15.0, marks[8].Length)
	assert.Equal(t, Mark{Position: 48, Length: 20, Label: "1"}, marks[16])

	for i, m := range marks[1:16] {
		assert.Empty(t, m.Label, "tick %d", i+1)
	}
}

func TestMarksStandardLengths(t *testing.T) {
	h := Marks(HorizontalLength)
	assert.Len(t, h, 525) // 32.8 * 16 = 524.8
	assert.Equal(t, "32", h[512].Label)

	v := Marks(VerticalLength)
	assert.Len(t, v, 1601)
	assert.Equal(t, "100", v[1600].Label)
	assert.Equal(t, 4800.0, v[1600].Position)
}

func TestMarksEmpty(t *testing.T) {
	assert.Nil(t, Marks(0))
	assert.Nil(t, Marks(-3))
}

func TestRulerDraws(t *testing.T) {
	test.NewApp()
	r := NewHorizontal()
	r.Resize(fyne.NewSize(200, Thickness))

	img := r.draw(200, Thickness)
	// zero tick at the left edge
	assert.Equal(t, uint8(0), img.(*image.RGBA).RGBAAt(0, 10).R)
	// no tick halfway between the first two sixteenths
	assert.Equal(t, uint8(255), img.(*image.RGBA).RGBAAt(1, 10).R)

	r.SetView(geometry.Point2D{X: 48}, 1)
	img = r.draw(200, Thickness)
	// inch 1 now sits at the origin and the 1.5 inch tick at x=24
	assert.Equal(t, uint8(0), img.(*image.RGBA).RGBAAt(24, 12).R)
}
