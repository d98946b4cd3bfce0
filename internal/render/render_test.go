package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"tint-care/internal/scene"
	"tint-care/pkg/colorutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallEditor() *scene.Editor {
	opts := scene.DefaultOptions()
	opts.Width, opts.Height = 300, 200
	return scene.NewEditor(opts)
}

func TestExportSize(t *testing.T) {
	e := smallEditor()
	img := Export(e.Snapshot(), 0)
	assert.Equal(t, image.Rect(0, 0, 300, 200), img.Bounds())

	img = Export(e.Snapshot(), 2)
	assert.Equal(t, image.Rect(0, 0, 600, 400), img.Bounds())
}

func TestExportEmptyIsTransparent(t *testing.T) {
	img := Export(smallEditor().Snapshot(), 0)
	assert.Equal(t, uint8(0), img.RGBAAt(150, 100).A)
}

func TestRectangleStroke(t *testing.T) {
	e := smallEditor()
	e.AddShape(scene.KindRectangle) // 40x40 at (100,100)

	img := Export(e.Snapshot(), 0)
	assert.Greater(t, img.RGBAAt(100, 120).A, uint8(100), "left edge is stroked")
	assert.Equal(t, uint8(0), img.RGBAAt(120, 120).A, "interior stays transparent")
	assert.Equal(t, uint8(0), img.RGBAAt(50, 50).A)
}

func TestFilledPath(t *testing.T) {
	e := smallEditor()
	s := e.AddShape(scene.KindRectangle)
	s.Fill = colorutil.Gold

	img := Export(e.Snapshot(), 0)
	got := img.RGBAAt(120, 120)
	assert.Equal(t, colorutil.Gold.R, got.R)
	assert.Equal(t, uint8(255), got.A)
}

func TestImageShape(t *testing.T) {
	e := smallEditor()
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := range 100 {
		for x := range 100 {
			src.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	s := e.AddImage(src, "red.png")
	s.Left, s.Top = 10, 10
	s.ScaleX, s.ScaleY = 0.5, 0.5

	img := Export(e.Snapshot(), 0)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(30, 30))
	assert.Equal(t, uint8(0), img.RGBAAt(80, 80).A)
}

func TestRotationMovesStroke(t *testing.T) {
	e := smallEditor()
	line := e.AddShape(scene.KindLine)
	before := Export(e.Snapshot(), 0)

	e.SetActive(line)
	e.RotateActive()
	after := Export(e.Snapshot(), 0)
	assert.NotEqual(t, before.Pix, after.Pix)
}

func TestInteractiveSelection(t *testing.T) {
	e := smallEditor()
	s := e.AddShape(scene.KindRectangle)
	e.SetActive(s)

	plain := Rasterize(e.Snapshot(), Options{})
	framed := Rasterize(e.Snapshot(), Options{Interactive: true})
	// handle square at the top-left corner
	assert.Equal(t, uint8(0), plain.RGBAAt(97, 97).A)
	assert.NotEqual(t, uint8(0), framed.RGBAAt(97, 97).A)
}

func TestBackground(t *testing.T) {
	img := Rasterize(smallEditor().Snapshot(), Options{Width: 10, Height: 10, Background: colorutil.White})
	assert.Equal(t, image.Rect(0, 0, 10, 10), img.Bounds())
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(5, 5))
}

func TestPNGRoundTrip(t *testing.T) {
	e := smallEditor()
	e.AddShape(scene.KindCircle)
	img := Export(e.Snapshot(), 0)

	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, img))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

func TestDataURL(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	url, err := EncodeDataURL(img)
	require.NoError(t, err)
	assert.Contains(t, url, "data:image/png;base64,")

	data, mediaType, err := DecodeDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mediaType)
	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

func TestDecodeDataURLPlain(t *testing.T) {
	data, mediaType, err := DecodeDataURL("data:,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mediaType)
	assert.Equal(t, "hello world", string(data))

	_, _, err = DecodeDataURL("http://example.com/a.png")
	assert.ErrorIs(t, err, ErrNotDataURL)

	_, _, err = DecodeDataURL("data:image/png;base64")
	assert.ErrorIs(t, err, ErrNotDataURL)
}
