package scene

import (
	"image"
	"image/color"
	"iter"
	"math"
	"sync"

	"tint-care/pkg/colorutil"
	"tint-care/pkg/geometry"
)

// Options configures a new editor session.
type Options struct {
	Width, Height    float64
	ZoomMin, ZoomMax float64
	BrushWidth       float64
	Stroke           color.NRGBA
	Fill             color.NRGBA

	// Placement of images loaded onto the canvas.
	ImageLeft, ImageTop, ImageScale float64
}

// DefaultOptions returns the stock editor settings.
func DefaultOptions() Options {
	return Options{
		Width:      1575,
		Height:     4800,
		ZoomMin:    0.1,
		ZoomMax:    10,
		BrushWidth: 3,
		Stroke:     colorutil.Black,
		Fill:       colorutil.Transparent,
		ImageLeft:  250,
		ImageTop:   250,
		ImageScale: 0.2,
	}
}

// Editor is one editing session: it owns a scene and its undo history.
// All methods are safe for concurrent use; change listeners are invoked
// synchronously after every mutation, outside the lock.
type Editor struct {
	mu      sync.Mutex
	opts    Options
	scene   *Scene
	history History
	stroke  []geometry.Point2D // freehand stroke in progress

	listeners []func()
}

// NewEditor creates an editor session with an empty scene.
func NewEditor(opts Options) *Editor {
	if opts.ZoomMin <= 0 {
		opts.ZoomMin = math.SmallestNonzeroFloat64
	}
	if opts.ZoomMax < opts.ZoomMin {
		opts.ZoomMax = math.Inf(1)
	}
	return &Editor{
		opts:  opts,
		scene: NewScene(opts.Width, opts.Height),
	}
}

// OnChange registers a listener called after every mutation.
func (e *Editor) OnChange(listener func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, listener)
}

func (e *Editor) notify() {
	e.mu.Lock()
	listeners := e.listeners
	e.mu.Unlock()

	for _, listener := range listeners {
		listener()
	}
}

// update runs fn under the lock and notifies listeners if fn reports a change.
func (e *Editor) update(fn func() bool) bool {
	e.mu.Lock()
	changed := fn()
	e.mu.Unlock()
	if changed {
		e.notify()
	}
	return changed
}

// AddShape appends a default-configured shape of the given kind. Paths and
// images carry data of their own and are created with AddPath and AddImage;
// for those kinds AddShape returns nil.
func (e *Editor) AddShape(kind Kind) *Shape {
	shape := newShape(kind)
	shape.Stroke = e.opts.Stroke
	shape.Fill = e.opts.Fill

	switch kind {
	case KindCircle:
		shape.Left, shape.Top = 100, 100
		shape.Width, shape.Height = 40, 40 // radius 20
	case KindRectangle:
		shape.Left, shape.Top = 100, 100
		shape.Width, shape.Height = 40, 40
	case KindLine:
		// segment (50,100)-(200,200) placed at (170,150)
		shape.Left, shape.Top = 170, 150
		shape.Width, shape.Height = 150, 100
		shape.Points = []geometry.Point2D{{X: 0, Y: 0}, {X: 150, Y: 100}}
		shape.Fill = colorutil.Transparent
	case KindPath, KindImage:
		return nil
	}

	e.update(func() bool {
		e.scene.Add(shape)
		return true
	})
	return shape
}

// AddImage inserts a decoded image at the configured default position and scale.
func (e *Editor) AddImage(img image.Image, source string) *Shape {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	shape := newShape(KindImage)
	shape.Image = img
	shape.Source = source
	shape.Width, shape.Height = float64(b.Dx()), float64(b.Dy())
	shape.Left, shape.Top = e.opts.ImageLeft, e.opts.ImageTop
	shape.ScaleX, shape.ScaleY = e.opts.ImageScale, e.opts.ImageScale
	shape.StrokeWidth = 0

	e.update(func() bool {
		e.scene.Add(shape)
		return true
	})
	return shape
}

// AddPath appends a path through the given scene points. Fewer than two
// points produce nothing.
func (e *Editor) AddPath(points []geometry.Point2D, closed bool) *Shape {
	if len(points) < 2 {
		return nil
	}
	e.mu.Lock()
	width := e.opts.BrushWidth
	if e.scene.brush != nil {
		width = e.scene.brush.Width
	}
	e.mu.Unlock()

	shape := pathShape(points, width, e.opts.Stroke)
	shape.Closed = closed
	e.update(func() bool {
		e.scene.Add(shape)
		return true
	})
	return shape
}

// AddOutline adds a closed path traced from an image shape. The polygon is
// in the image's pixel coordinates and is mapped through the shape's
// current transform.
func (e *Editor) AddOutline(source *Shape, polygon []geometry.Point2D) *Shape {
	if source == nil || len(polygon) < 2 {
		return nil
	}
	e.mu.Lock()
	t := source.Transform()
	e.mu.Unlock()

	points := make([]geometry.Point2D, len(polygon))
	for i, p := range polygon {
		points[i] = t.Apply(p)
	}
	return e.AddPath(points, true)
}

func pathShape(points []geometry.Point2D, width float64, stroke color.NRGBA) *Shape {
	bb := geometry.BoundingBox(points)
	shape := newShape(KindPath)
	shape.Left, shape.Top = bb.X, bb.Y
	shape.Width, shape.Height = bb.Width, bb.Height
	shape.Points = geometry.Translate(points, -bb.X, -bb.Y)
	shape.StrokeWidth = width
	shape.Stroke = stroke
	shape.Fill = colorutil.Transparent
	return shape
}

// ToggleFreehand flips drawing mode, installing the brush on first entry.
// It returns the new mode.
func (e *Editor) ToggleFreehand() bool {
	var mode bool
	e.update(func() bool {
		e.scene.drawingMode = !e.scene.drawingMode
		if e.scene.drawingMode && e.scene.brush == nil {
			e.scene.brush = &Brush{Width: e.opts.BrushWidth}
		}
		if !e.scene.drawingMode {
			e.stroke = nil
		}
		mode = e.scene.drawingMode
		return true
	})
	return mode
}

// DrawingMode reports whether freehand drawing is on.
func (e *Editor) DrawingMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.drawingMode
}

// Brush returns the freehand brush, or nil before drawing mode was first entered.
func (e *Editor) Brush() *Brush {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.brush
}

// BeginStroke starts recording a freehand stroke at p. Ignored outside drawing mode.
func (e *Editor) BeginStroke(p geometry.Point2D) {
	e.update(func() bool {
		if !e.scene.drawingMode {
			return false
		}
		e.stroke = []geometry.Point2D{p}
		return true
	})
}

// ExtendStroke appends p to the stroke in progress.
func (e *Editor) ExtendStroke(p geometry.Point2D) {
	e.update(func() bool {
		if !e.scene.drawingMode || e.stroke == nil {
			return false
		}
		e.stroke = append(e.stroke, p)
		return true
	})
}

// EndStroke finishes the stroke in progress and adds it as a path shape.
func (e *Editor) EndStroke() *Shape {
	e.mu.Lock()
	points := e.stroke
	e.stroke = nil
	e.mu.Unlock()

	if shape := e.AddPath(points, false); shape != nil {
		return shape
	}
	if points != nil {
		e.notify()
	}
	return nil
}

// DeleteActive removes the selected shape. It is a no-op without a selection.
// Deleted shapes are not recorded in the history.
func (e *Editor) DeleteActive() bool {
	return e.update(func() bool {
		active := e.scene.Active()
		if active == nil {
			return false
		}
		return e.scene.Remove(active)
	})
}

// AdjustZoom adds delta to the zoom factor, clamped to the configured bounds,
// and returns the new zoom.
func (e *Editor) AdjustZoom(delta float64) float64 {
	var zoom float64
	e.update(func() bool {
		zoom = e.clampZoom(e.scene.zoom + delta)
		changed := e.scene.zoom != zoom
		e.scene.zoom = zoom
		return changed
	})
	return zoom
}

// SetZoom sets the zoom factor, clamped to the configured bounds.
func (e *Editor) SetZoom(zoom float64) float64 {
	zoom = e.clampZoom(zoom)
	e.update(func() bool {
		changed := e.scene.zoom != zoom
		e.scene.zoom = zoom
		return changed
	})
	return zoom
}

func (e *Editor) clampZoom(zoom float64) float64 {
	return math.Max(e.opts.ZoomMin, math.Min(e.opts.ZoomMax, zoom))
}

// Zoom returns the current zoom factor.
func (e *Editor) Zoom() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.zoom
}

// withActive applies fn to the active shape.
func (e *Editor) withActive(fn func(*Shape)) bool {
	return e.update(func() bool {
		active := e.scene.Active()
		if active == nil {
			return false
		}
		fn(active)
		return true
	})
}

// RotateActive turns the selected shape a further 90 degrees clockwise.
// The angle is not normalized.
func (e *Editor) RotateActive() bool {
	return e.withActive(func(s *Shape) { s.Angle += 90 })
}

// MirrorActiveHorizontal toggles the selected shape's horizontal flip.
func (e *Editor) MirrorActiveHorizontal() bool {
	return e.withActive(func(s *Shape) { s.FlipX = !s.FlipX })
}

// MirrorActiveVertical toggles the selected shape's vertical flip.
func (e *Editor) MirrorActiveVertical() bool {
	return e.withActive(func(s *Shape) { s.FlipY = !s.FlipY })
}

// MoveActive translates the selected shape by (dx, dy) scene units.
func (e *Editor) MoveActive(dx, dy float64) bool {
	return e.withActive(func(s *Shape) {
		s.Left += dx
		s.Top += dy
	})
}

// Select makes the topmost shape under p active, or clears the selection
// when nothing is hit. tolerance is in scene units.
func (e *Editor) Select(p geometry.Point2D, tolerance float64) *Shape {
	var hit *Shape
	e.update(func() bool {
		shapes := e.scene.shapes
		for i := len(shapes) - 1; i >= 0; i-- {
			if shapes[i].Contains(p, tolerance) {
				hit = shapes[i]
				break
			}
		}
		changed := e.scene.active != hit
		e.scene.SetActive(hit)
		return changed
	})
	return hit
}

// SetActive selects shape; nil clears the selection.
func (e *Editor) SetActive(shape *Shape) {
	e.update(func() bool {
		prev := e.scene.active
		e.scene.SetActive(shape)
		return prev != e.scene.active
	})
}

// Active returns the selected shape, or nil.
func (e *Editor) Active() *Shape {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.Active()
}

// Undo removes the most recently inserted shape, whatever is selected, and
// records it for Redo. It is a no-op on an empty scene.
func (e *Editor) Undo() bool {
	return e.update(func() bool {
		last := e.scene.Pop()
		if last == nil {
			return false
		}
		e.history.RecordRemoval(last)
		return true
	})
}

// Redo re-appends the most recently undone shape. It is a no-op when the
// history is empty. A shape that is somehow still live is dropped rather
// than inserted twice.
func (e *Editor) Redo() bool {
	return e.update(func() bool {
		for {
			shape := e.history.Pop()
			if shape == nil {
				return false
			}
			if e.scene.Contains(shape) {
				continue
			}
			e.scene.Add(shape)
			return true
		}
	})
}

// Shapes returns the shapes in z-order.
func (e *Editor) Shapes() []*Shape {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.Shapes()
}

// Len returns the number of shapes in the scene.
func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.Len()
}

// HistoryLen returns the number of undone shapes available to Redo.
func (e *Editor) HistoryLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Len()
}

// Size returns the logical scene size.
func (e *Editor) Size() (width, height float64) {
	return e.opts.Width, e.opts.Height
}

// ExportCoordinates returns the geometry of every shape in z-order. Each
// range over the sequence starts from the shapes present at that moment and
// computes records as they are consumed, so it always reflects the current
// scene.
func (e *Editor) ExportCoordinates() iter.Seq[Coordinates] {
	return func(yield func(Coordinates) bool) {
		for _, s := range e.Shapes() {
			e.mu.Lock()
			c := s.Coordinates()
			e.mu.Unlock()
			if !yield(c) {
				return
			}
		}
	}
}

// Snapshot is a consistent copy of the editor state for rendering.
type Snapshot struct {
	Width, Height float64
	Zoom          float64
	DrawingMode   bool
	Shapes        []Shape
	Active        int                // index into Shapes, -1 when nothing is selected
	Stroke        []geometry.Point2D // freehand stroke in progress
	BrushWidth    float64
}

// Snapshot copies the current state under the lock.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Width:       e.scene.Width,
		Height:      e.scene.Height,
		Zoom:        e.scene.zoom,
		DrawingMode: e.scene.drawingMode,
		Shapes:      make([]Shape, len(e.scene.shapes)),
		Active:      -1,
		Stroke:      append([]geometry.Point2D(nil), e.stroke...),
		BrushWidth:  e.opts.BrushWidth,
	}
	if e.scene.brush != nil {
		snap.BrushWidth = e.scene.brush.Width
	}
	for i, s := range e.scene.shapes {
		snap.Shapes[i] = *s
		if s == e.scene.active {
			snap.Active = i
		}
	}
	return snap
}
