// Package render rasterizes a scene snapshot into pixels.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"tint-care/internal/scene"
	"tint-care/pkg/colorutil"
	"tint-care/pkg/geometry"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"
)

// circleSegments is the number of polygon edges used for ellipses.
const circleSegments = 72

// Options controls a rasterization pass.
type Options struct {
	// Scale is device pixels per scene unit. Zero means 1.
	Scale float64

	// Output size in pixels. Zero means the scene size times Scale.
	Width, Height int

	// Origin is the scene point drawn at the output's top-left corner.
	Origin geometry.Point2D

	// Background fills the output before drawing; nil leaves it transparent.
	Background color.Color

	// Interactive adds the selection frame and the stroke in progress.
	Interactive bool
}

// Rasterize draws the snapshot into a new RGBA image.
func Rasterize(snap scene.Snapshot, opts Options) *image.RGBA {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = int(math.Ceil(snap.Width * scale))
	}
	if h <= 0 {
		h = int(math.Ceil(snap.Height * scale))
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if opts.Background != nil {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	}

	view := geometry.Scale(scale, scale).Compose(geometry.Translation(-opts.Origin.X, -opts.Origin.Y))
	for i := range snap.Shapes {
		drawShape(dst, &snap.Shapes[i], view)
	}

	if opts.Interactive {
		if snap.Active >= 0 && snap.Active < len(snap.Shapes) {
			drawSelection(dst, &snap.Shapes[snap.Active], view)
		}
		if len(snap.Stroke) >= 2 {
			pts := applyAll(view, snap.Stroke)
			strokePolyline(dst, pts, false, snap.BrushWidth*scale, colorutil.Black)
		}
	}
	return dst
}

// Export renders the whole scene for saving or printing. A multiplier of
// zero or less renders at full resolution.
func Export(snap scene.Snapshot, multiplier float64) *image.RGBA {
	if multiplier <= 0 {
		multiplier = 1
	}
	return Rasterize(snap, Options{Scale: multiplier})
}

func drawShape(dst *image.RGBA, s *scene.Shape, view geometry.AffineTransform) {
	t := view.Compose(s.Transform())
	lineWidth := s.StrokeWidth * math.Sqrt(math.Abs(t.A*t.D-t.B*t.C))

	switch s.Kind {
	case scene.KindCircle:
		local := geometry.CirclePoints(geometry.NewRect(0, 0, s.Width, s.Height), circleSegments)
		outline(dst, applyAll(t, local), true, lineWidth, s)
	case scene.KindRectangle:
		local := []geometry.Point2D{{X: 0, Y: 0}, {X: s.Width, Y: 0}, {X: s.Width, Y: s.Height}, {X: 0, Y: s.Height}}
		outline(dst, applyAll(t, local), true, lineWidth, s)
	case scene.KindLine:
		strokePolyline(dst, applyAll(t, s.Points), false, lineWidth, s.Stroke)
	case scene.KindPath:
		pts := applyAll(t, s.Points)
		if s.Closed && !colorutil.IsTransparent(s.Fill) {
			fillPolygon(dst, pts, s.Fill)
		}
		strokePolyline(dst, pts, s.Closed, lineWidth, s.Stroke)
	case scene.KindImage:
		drawImage(dst, s.Image, t)
	}
}

func outline(dst *image.RGBA, pts []geometry.Point2D, closed bool, lineWidth float64, s *scene.Shape) {
	if !colorutil.IsTransparent(s.Fill) {
		fillPolygon(dst, pts, s.Fill)
	}
	if lineWidth > 0 {
		strokePolyline(dst, pts, closed, lineWidth, s.Stroke)
	}
}

func drawImage(dst *image.RGBA, img image.Image, t geometry.AffineTransform) {
	if img == nil {
		return
	}
	b := img.Bounds()
	t = t.Compose(geometry.Translation(-float64(b.Min.X), -float64(b.Min.Y)))
	s2d := f64.Aff3(t.Elements())
	xdraw.BiLinear.Transform(dst, s2d, img, b, xdraw.Over, nil)
}

func drawSelection(dst *image.RGBA, s *scene.Shape, view geometry.AffineTransform) {
	corners := s.Corners()
	pts := applyAll(view, corners[:])
	strokePolyline(dst, pts, true, 1.5, colorutil.Selection)

	const handle = 4.0
	for _, p := range pts {
		square := []geometry.Point2D{
			{X: p.X - handle, Y: p.Y - handle},
			{X: p.X + handle, Y: p.Y - handle},
			{X: p.X + handle, Y: p.Y + handle},
			{X: p.X - handle, Y: p.Y + handle},
		}
		fillPolygon(dst, square, colorutil.White)
		strokePolyline(dst, square, true, 1, colorutil.Selection)
	}
}

func applyAll(t geometry.AffineTransform, pts []geometry.Point2D) []geometry.Point2D {
	out := make([]geometry.Point2D, len(pts))
	for i, p := range pts {
		out[i] = t.Apply(p)
	}
	return out
}

// mask is a rasterizer covering the part of dst touched by a set of points.
type mask struct {
	z    *vector.Rasterizer
	area image.Rectangle
}

func newMask(dst *image.RGBA, pts []geometry.Point2D, pad float64) *mask {
	bb := geometry.BoundingBox(pts)
	area := image.Rect(
		int(math.Floor(bb.X-pad)), int(math.Floor(bb.Y-pad)),
		int(math.Ceil(bb.X+bb.Width+pad))+1, int(math.Ceil(bb.Y+bb.Height+pad))+1,
	).Intersect(dst.Bounds())
	if area.Empty() {
		return nil
	}
	return &mask{z: vector.NewRasterizer(area.Dx(), area.Dy()), area: area}
}

func (m *mask) polygon(pts []geometry.Point2D) {
	if len(pts) < 3 {
		return
	}
	ox, oy := float64(m.area.Min.X), float64(m.area.Min.Y)
	m.z.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		m.z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	m.z.ClosePath()
}

func (m *mask) draw(dst *image.RGBA, c color.Color) {
	m.z.DrawOp = draw.Over
	m.z.Draw(dst, m.area, image.NewUniform(c), image.Point{})
}

func fillPolygon(dst *image.RGBA, pts []geometry.Point2D, c color.Color) {
	if len(pts) < 3 {
		return
	}
	m := newMask(dst, pts, 0)
	if m == nil {
		return
	}
	m.polygon(pts)
	m.draw(dst, c)
}

// strokePolyline draws a polyline of the given width with round joins.
// Every sub-polygon is wound the same way so overlaps saturate instead of
// cancelling.
func strokePolyline(dst *image.RGBA, pts []geometry.Point2D, closed bool, width float64, c color.Color) {
	if len(pts) < 2 || width <= 0 {
		return
	}
	hw := math.Max(width/2, 0.5)
	m := newMask(dst, pts, hw+1)
	if m == nil {
		return
	}

	if closed {
		pts = append(pts[:len(pts):len(pts)], pts[0])
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*hw, dx/l*hw
		m.polygon([]geometry.Point2D{
			{X: a.X + nx, Y: a.Y + ny},
			{X: b.X + nx, Y: b.Y + ny},
			{X: b.X - nx, Y: b.Y - ny},
			{X: a.X - nx, Y: a.Y - ny},
		})
	}
	if hw > 1 {
		for _, p := range pts {
			m.polygon(joint(p, hw))
		}
	}
	m.draw(dst, c)
}

// joint returns a disc around p, wound to match the stroke segments.
func joint(p geometry.Point2D, r float64) []geometry.Point2D {
	const n = 16
	out := make([]geometry.Point2D, n)
	for i := range n {
		a := -float64(i) * 2 * math.Pi / n
		out[i] = geometry.Point2D{X: p.X + r*math.Cos(a), Y: p.Y + r*math.Sin(a)}
	}
	return out
}
