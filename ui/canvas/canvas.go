// Package canvas provides the scene canvas with pan, zoom and pointer editing.
package canvas

import (
	"image"
	"image/draw"
	"math"
	"sync"

	"tint-care/internal/render"
	"tint-care/internal/scene"
	"tint-care/pkg/colorutil"
	"tint-care/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const (
	// DefaultZoomStep is the zoom delta applied by the zoom buttons.
	DefaultZoomStep = 0.2

	// hitTolerance is the pick distance in screen units.
	hitTolerance = 4.0

	// scrollSpeed converts wheel units to screen units.
	scrollSpeed = 1.0
)

// dragMode is what the drag in progress does.
type dragMode int

const (
	dragNone dragMode = iota
	dragStroke
	dragMove
	dragPan
)

// SceneCanvas displays an editor's scene and turns pointer input into edits.
// It keeps its own viewport: origin is the scene point shown at the top-left
// corner and the scale comes from the editor zoom.
type SceneCanvas struct {
	widget.BaseWidget

	editor *scene.Editor
	raster *fynecanvas.Raster

	mu       sync.Mutex
	origin   geometry.Point2D
	drag     dragMode
	zoomStep float64

	// Callbacks
	onViewChange func(origin geometry.Point2D, zoom float64)
}

// NewSceneCanvas creates a canvas bound to editor. The canvas refreshes on
// every editor change.
func NewSceneCanvas(editor *scene.Editor) *SceneCanvas {
	sc := &SceneCanvas{editor: editor, zoomStep: DefaultZoomStep}
	sc.raster = fynecanvas.NewRaster(sc.draw)
	sc.ExtendBaseWidget(sc)
	editor.OnChange(sc.Refresh)
	return sc
}

// SetOnViewChange sets the callback fired when the viewport pans or zooms.
func (sc *SceneCanvas) SetOnViewChange(cb func(origin geometry.Point2D, zoom float64)) {
	sc.onViewChange = cb
}

// SetZoomStep sets the delta used by ZoomIn and ZoomOut.
func (sc *SceneCanvas) SetZoomStep(step float64) {
	if step > 0 {
		sc.zoomStep = step
	}
}

// CreateRenderer implements fyne.Widget.
func (sc *SceneCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(sc.raster)
}

// MinSize keeps the canvas usable in small windows.
func (sc *SceneCanvas) MinSize() fyne.Size {
	return fyne.NewSize(200, 200)
}

// Refresh redraws the raster.
func (sc *SceneCanvas) Refresh() {
	sc.raster.Refresh()
}

// Origin returns the scene point at the top-left corner of the view.
func (sc *SceneCanvas) Origin() geometry.Point2D {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.origin
}

// ScrollTo moves the viewport so that p is at the top-left corner.
func (sc *SceneCanvas) ScrollTo(p geometry.Point2D) {
	sc.mu.Lock()
	sc.origin = sc.clamp(p, sc.editor.Zoom())
	sc.mu.Unlock()
	sc.viewChanged()
}

// ToScene converts a position on the canvas into scene coordinates.
func (sc *SceneCanvas) ToScene(pos fyne.Position) geometry.Point2D {
	zoom := sc.editor.Zoom()
	origin := sc.Origin()
	return geometry.Point2D{
		X: origin.X + float64(pos.X)/zoom,
		Y: origin.Y + float64(pos.Y)/zoom,
	}
}

// ToCanvas converts a scene point into a canvas position.
func (sc *SceneCanvas) ToCanvas(p geometry.Point2D) fyne.Position {
	zoom := sc.editor.Zoom()
	origin := sc.Origin()
	return fyne.NewPos(float32((p.X-origin.X)*zoom), float32((p.Y-origin.Y)*zoom))
}

// ZoomIn increases the zoom by one step, keeping the view centre fixed.
func (sc *SceneCanvas) ZoomIn() {
	sc.zoomAround(func() { sc.editor.AdjustZoom(sc.zoomStep) })
}

// ZoomOut decreases the zoom by one step, keeping the view centre fixed.
func (sc *SceneCanvas) ZoomOut() {
	sc.zoomAround(func() { sc.editor.AdjustZoom(-sc.zoomStep) })
}

// ActualSize resets the zoom to 1.
func (sc *SceneCanvas) ActualSize() {
	sc.zoomAround(func() { sc.editor.SetZoom(1) })
}

func (sc *SceneCanvas) zoomAround(change func()) {
	size := sc.Size()
	centre := fyne.NewPos(size.Width/2, size.Height/2)
	before := sc.ToScene(centre)

	change()

	zoom := sc.editor.Zoom()
	sc.mu.Lock()
	sc.origin = sc.clamp(geometry.Point2D{
		X: before.X - float64(centre.X)/zoom,
		Y: before.Y - float64(centre.Y)/zoom,
	}, zoom)
	sc.mu.Unlock()
	sc.viewChanged()
}

// clamp keeps the viewport over the scene. Caller holds sc.mu.
func (sc *SceneCanvas) clamp(p geometry.Point2D, zoom float64) geometry.Point2D {
	w, h := sc.editor.Size()
	size := sc.Size()
	maxX := math.Max(0, w-float64(size.Width)/zoom)
	maxY := math.Max(0, h-float64(size.Height)/zoom)
	return geometry.Point2D{
		X: math.Max(0, math.Min(maxX, p.X)),
		Y: math.Max(0, math.Min(maxY, p.Y)),
	}
}

func (sc *SceneCanvas) viewChanged() {
	if sc.onViewChange != nil {
		sc.onViewChange(sc.Origin(), sc.editor.Zoom())
	}
	sc.Refresh()
}

// Tapped selects the topmost shape under the pointer.
func (sc *SceneCanvas) Tapped(ev *fyne.PointEvent) {
	if sc.editor.DrawingMode() {
		return
	}
	sc.editor.Select(sc.ToScene(ev.Position), hitTolerance/sc.editor.Zoom())
}

// TappedSecondary clears the selection.
func (sc *SceneCanvas) TappedSecondary(*fyne.PointEvent) {
	sc.editor.SetActive(nil)
}

// Dragged records a freehand stroke in drawing mode. Otherwise a drag that
// starts on a shape moves it and a drag on empty space pans the view.
func (sc *SceneCanvas) Dragged(ev *fyne.DragEvent) {
	zoom := sc.editor.Zoom()
	p := sc.ToScene(ev.Position)

	sc.mu.Lock()
	mode := sc.drag
	sc.mu.Unlock()

	if mode == dragNone {
		start := sc.ToScene(ev.Position.Subtract(ev.Dragged))
		switch {
		case sc.editor.DrawingMode():
			mode = dragStroke
			sc.editor.BeginStroke(start)
		case sc.editor.Select(start, hitTolerance/zoom) != nil:
			mode = dragMove
		default:
			mode = dragPan
		}
		sc.mu.Lock()
		sc.drag = mode
		sc.mu.Unlock()
	}

	dx := float64(ev.Dragged.DX) / zoom
	dy := float64(ev.Dragged.DY) / zoom
	switch mode {
	case dragStroke:
		sc.editor.ExtendStroke(p)
	case dragMove:
		sc.editor.MoveActive(dx, dy)
	case dragPan:
		sc.mu.Lock()
		sc.origin = sc.clamp(geometry.Point2D{X: sc.origin.X - dx, Y: sc.origin.Y - dy}, zoom)
		sc.mu.Unlock()
		sc.viewChanged()
	}
}

// DragEnd finishes the drag in progress.
func (sc *SceneCanvas) DragEnd() {
	sc.mu.Lock()
	mode := sc.drag
	sc.drag = dragNone
	sc.mu.Unlock()

	if mode == dragStroke {
		sc.editor.EndStroke()
	}
}

// Scrolled pans the view with the wheel.
func (sc *SceneCanvas) Scrolled(ev *fyne.ScrollEvent) {
	zoom := sc.editor.Zoom()
	sc.mu.Lock()
	sc.origin = sc.clamp(geometry.Point2D{
		X: sc.origin.X - float64(ev.Scrolled.DX)*scrollSpeed/zoom,
		Y: sc.origin.Y - float64(ev.Scrolled.DY)*scrollSpeed/zoom,
	}, zoom)
	sc.mu.Unlock()
	sc.viewChanged()
}

// draw renders the visible part of the scene at device resolution.
func (sc *SceneCanvas) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 {
		return out
	}

	// the raster is sized in device pixels, the widget in logical units
	pixelScale := 1.0
	if size := sc.Size(); size.Width > 0 {
		pixelScale = float64(w) / float64(size.Width)
	}

	snap := sc.editor.Snapshot()
	origin := sc.Origin()
	scale := snap.Zoom * pixelScale

	draw.Draw(out, out.Bounds(), image.NewUniform(colorutil.LightGray), image.Point{}, draw.Src)
	page := image.Rect(
		int(math.Round(-origin.X*scale)), int(math.Round(-origin.Y*scale)),
		int(math.Round((snap.Width-origin.X)*scale)), int(math.Round((snap.Height-origin.Y)*scale)),
	)
	draw.Draw(out, page, image.NewUniform(colorutil.White), image.Point{}, draw.Src)

	shapes := render.Rasterize(snap, render.Options{
		Scale:       scale,
		Width:       w,
		Height:      h,
		Origin:      origin,
		Interactive: true,
	})
	draw.Draw(out, out.Bounds(), shapes, image.Point{}, draw.Over)
	return out
}
