// Package scene provides the drawing surface model: shapes, the ordered
// scene, the undo history and the editor session that ties them together.
package scene

import (
	"image"
	"image/color"
	"math"

	"tint-care/pkg/geometry"

	"github.com/oklog/ulid/v2"
)

// Kind identifies the type of a shape.
type Kind int

const (
	KindCircle Kind = iota
	KindRectangle
	KindLine
	KindPath // freehand stroke or traced outline
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindRectangle:
		return "rectangle"
	case KindLine:
		return "line"
	case KindPath:
		return "path"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Shape is one element of the scene.
//
// Left/Top is the unrotated top-left corner in scene coordinates. Width and
// Height are the intrinsic (unscaled) size; rotation and flips are applied
// around the centre of the scaled box. Points of lines and paths are in local
// coordinates within [0,Width]x[0,Height].
type Shape struct {
	ID   string
	Kind Kind

	Left, Top      float64
	Width, Height  float64
	ScaleX, ScaleY float64
	Angle          float64 // degrees, clockwise, not normalized
	FlipX, FlipY   bool

	Stroke      color.NRGBA
	StrokeWidth float64
	Fill        color.NRGBA

	Points []geometry.Point2D // KindLine, KindPath
	Closed bool               // KindPath: join last point to first

	Image  image.Image // KindImage
	Source string      // KindImage: where the image came from
}

// Coordinates is the exported geometry record of a shape.
type Coordinates struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Angle  float64 `json:"angle"`
}

func newShape(kind Kind) *Shape {
	return &Shape{
		ID:          ulid.Make().String(),
		Kind:        kind,
		ScaleX:      1,
		ScaleY:      1,
		StrokeWidth: 1,
	}
}

// Coordinates returns the shape's position, scaled size and angle.
func (s *Shape) Coordinates() Coordinates {
	return Coordinates{
		Left:   s.Left,
		Top:    s.Top,
		Width:  s.Width * s.ScaleX,
		Height: s.Height * s.ScaleY,
		Angle:  s.Angle,
	}
}

// Transform maps local shape coordinates to scene coordinates.
func (s *Shape) Transform() geometry.AffineTransform {
	sx, sy := s.ScaleX, s.ScaleY
	cx := s.Left + s.Width*math.Abs(sx)/2
	cy := s.Top + s.Height*math.Abs(sy)/2
	if s.FlipX {
		sx = -sx
	}
	if s.FlipY {
		sy = -sy
	}
	return geometry.Translation(cx, cy).
		Compose(geometry.Rotation(geometry.Radians(s.Angle))).
		Compose(geometry.Scale(sx, sy)).
		Compose(geometry.Translation(-s.Width/2, -s.Height/2))
}

// Corners returns the four corners of the shape's box in scene coordinates.
func (s *Shape) Corners() [4]geometry.Point2D {
	t := s.Transform()
	return [4]geometry.Point2D{
		t.Apply(geometry.Point2D{X: 0, Y: 0}),
		t.Apply(geometry.Point2D{X: s.Width, Y: 0}),
		t.Apply(geometry.Point2D{X: s.Width, Y: s.Height}),
		t.Apply(geometry.Point2D{X: 0, Y: s.Height}),
	}
}

// Contains reports whether the scene point p hits the shape. tolerance is in
// scene units and widens thin shapes so they can be picked.
func (s *Shape) Contains(p geometry.Point2D, tolerance float64) bool {
	inv, ok := s.Transform().Inverse()
	if !ok {
		return false
	}
	local := inv.Apply(p)

	scale := math.Min(math.Abs(s.ScaleX), math.Abs(s.ScaleY))
	if scale == 0 {
		return false
	}
	tol := tolerance / scale

	switch s.Kind {
	case KindCircle:
		rx, ry := s.Width/2+tol, s.Height/2+tol
		dx, dy := local.X-s.Width/2, local.Y-s.Height/2
		return dx*dx/(rx*rx)+dy*dy/(ry*ry) <= 1
	case KindLine, KindPath:
		pts := s.Points
		if s.Closed && len(pts) > 2 {
			pts = append(pts[:len(pts):len(pts)], pts[0])
		}
		return geometry.PolylineDistance(local, pts) <= s.StrokeWidth/2+tol
	default:
		return geometry.NewRect(0, 0, s.Width, s.Height).Inset(-tol).Contains(local)
	}
}
