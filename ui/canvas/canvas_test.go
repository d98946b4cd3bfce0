package canvas

import (
	"image"
	"testing"

	"tint-care/internal/scene"
	"tint-care/pkg/geometry"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCanvas(t *testing.T) (*SceneCanvas, *scene.Editor) {
	t.Helper()
	test.NewApp()
	opts := scene.DefaultOptions()
	opts.Width, opts.Height = 1000, 1000
	e := scene.NewEditor(opts)
	sc := NewSceneCanvas(e)
	sc.Resize(fyne.NewSize(200, 200))
	return sc, e
}

func TestCoordinateMapping(t *testing.T) {
	sc, e := newTestCanvas(t)
	e.SetZoom(2)
	sc.ScrollTo(geometry.Point2D{X: 100, Y: 50})

	p := sc.ToScene(fyne.NewPos(20, 40))
	assert.InDelta(t, 110, p.X, 1e-9)
	assert.InDelta(t, 70, p.Y, 1e-9)
	assert.Equal(t, fyne.NewPos(20, 40), sc.ToCanvas(p))
}

func TestScrollClampsToScene(t *testing.T) {
	sc, _ := newTestCanvas(t)
	sc.ScrollTo(geometry.Point2D{X: -50, Y: 5000})
	// 1000 scene units tall, 200 visible at zoom 1
	assert.Equal(t, geometry.Point2D{X: 0, Y: 800}, sc.Origin())
}

func TestTapSelects(t *testing.T) {
	sc, e := newTestCanvas(t)
	rect := e.AddShape(scene.KindRectangle)

	sc.Tapped(&fyne.PointEvent{Position: fyne.NewPos(100, 120)})
	assert.Same(t, rect, e.Active())

	sc.Tapped(&fyne.PointEvent{Position: fyne.NewPos(10, 10)})
	assert.Nil(t, e.Active())

	e.SetActive(rect)
	sc.TappedSecondary(&fyne.PointEvent{})
	assert.Nil(t, e.Active())
}

func TestDragMovesShape(t *testing.T) {
	sc, e := newTestCanvas(t)
	rect := e.AddShape(scene.KindRectangle)

	sc.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(110, 120)},
		Dragged:    fyne.NewDelta(10, 0),
	})
	sc.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(110, 125)},
		Dragged:    fyne.NewDelta(0, 5),
	})
	sc.DragEnd()

	assert.Equal(t, 110.0, rect.Left)
	assert.Equal(t, 105.0, rect.Top)
}

func TestDragOnEmptySpacePans(t *testing.T) {
	sc, e := newTestCanvas(t)
	sc.ScrollTo(geometry.Point2D{X: 300, Y: 300})

	sc.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(50, 50)},
		Dragged:    fyne.NewDelta(20, 10),
	})
	sc.DragEnd()

	assert.Equal(t, geometry.Point2D{X: 280, Y: 290}, sc.Origin())
	assert.Equal(t, 0, e.Len())
}

func TestDragDrawsStroke(t *testing.T) {
	sc, e := newTestCanvas(t)
	e.ToggleFreehand()

	for i := 1; i <= 5; i++ {
		sc.Dragged(&fyne.DragEvent{
			PointEvent: fyne.PointEvent{Position: fyne.NewPos(float32(10*i), 20)},
			Dragged:    fyne.NewDelta(10, 0),
		})
	}
	sc.DragEnd()

	shapes := e.Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, scene.KindPath, shapes[0].Kind)
}

func TestWheelPans(t *testing.T) {
	sc, _ := newTestCanvas(t)
	var got geometry.Point2D
	sc.SetOnViewChange(func(origin geometry.Point2D, zoom float64) { got = origin })

	sc.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, -40)})
	assert.Equal(t, geometry.Point2D{X: 0, Y: 40}, got)
}

func TestZoomKeepsCentre(t *testing.T) {
	sc, e := newTestCanvas(t)
	sc.ScrollTo(geometry.Point2D{X: 200, Y: 200})
	centre := sc.ToScene(fyne.NewPos(100, 100))

	sc.ZoomIn()
	assert.InDelta(t, 1.2, e.Zoom(), 1e-9)
	after := sc.ToScene(fyne.NewPos(100, 100))
	assert.InDelta(t, centre.X, after.X, 1e-6)
	assert.InDelta(t, centre.Y, after.Y, 1e-6)

	sc.ActualSize()
	assert.Equal(t, 1.0, e.Zoom())
}

func TestDrawShowsPage(t *testing.T) {
	sc, e := newTestCanvas(t)
	e.AddShape(scene.KindRectangle)

	img := sc.draw(200, 200).(*image.RGBA)
	assert.Equal(t, uint8(255), img.RGBAAt(50, 50).R, "page is white")
	assert.Less(t, img.RGBAAt(100, 120).R, uint8(128), "rectangle edge is dark")
}
