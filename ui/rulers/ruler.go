package rulers

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"tint-care/pkg/colorutil"
	"tint-care/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// Thickness is the ruler's size across its axis.
const Thickness = 40

// Orientation selects the ruler axis.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// Ruler is an inch ruler that follows the canvas viewport.
type Ruler struct {
	widget.BaseWidget

	orientation Orientation
	marks       []Mark
	raster      *fynecanvas.Raster

	offset float64 // scene units at the ruler's start
	zoom   float64
}

// New creates a ruler length inches long.
func New(orientation Orientation, length float64) *Ruler {
	r := &Ruler{orientation: orientation, marks: Marks(length), zoom: 1}
	r.raster = fynecanvas.NewRaster(r.draw)
	r.ExtendBaseWidget(r)
	return r
}

// NewHorizontal creates the standard 32.8 inch ruler.
func NewHorizontal() *Ruler { return New(Horizontal, HorizontalLength) }

// NewVertical creates the standard 100 inch ruler.
func NewVertical() *Ruler { return New(Vertical, VerticalLength) }

// SetView aligns the ruler with the canvas viewport.
func (r *Ruler) SetView(origin geometry.Point2D, zoom float64) {
	if r.orientation == Horizontal {
		r.offset = origin.X
	} else {
		r.offset = origin.Y
	}
	r.zoom = zoom
	r.raster.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (r *Ruler) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(r.raster)
}

// MinSize fixes the ruler thickness.
func (r *Ruler) MinSize() fyne.Size {
	return fyne.NewSize(Thickness, Thickness)
}

func (r *Ruler) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(colorutil.White), image.Point{}, draw.Src)

	pixelScale := 1.0
	if size := r.Size(); size.Width > 0 && size.Height > 0 {
		if r.orientation == Horizontal {
			pixelScale = float64(h) / float64(size.Height)
		} else {
			pixelScale = float64(w) / float64(size.Width)
		}
	}
	scale := r.zoom * pixelScale
	ink := color.RGBA{A: 255}
	fontScale := max(1, int(math.Round(2*pixelScale)))

	for _, m := range r.marks {
		pos := int(math.Round((m.Position - r.offset) * scale))
		length := int(math.Round(m.Length * pixelScale))
		if r.orientation == Horizontal {
			if pos < 0 || pos >= w {
				continue
			}
			fill(out, image.Rect(pos, 0, pos+1, length), ink)
			if m.Label != "" {
				x := pos - labelWidth(m.Label, fontScale)/2
				drawLabel(out, m.Label, x, length+2*fontScale, ink, fontScale)
			}
		} else {
			if pos < 0 || pos >= h {
				continue
			}
			fill(out, image.Rect(0, pos, length, pos+1), ink)
			if m.Label != "" {
				drawLabel(out, m.Label, length+2*fontScale, pos-5*fontScale/2, ink, fontScale)
			}
		}
	}

	// border
	b := out.Bounds()
	fill(out, image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+1), ink)
	fill(out, image.Rect(b.Min.X, b.Max.Y-1, b.Max.X, b.Max.Y), ink)
	fill(out, image.Rect(b.Min.X, b.Min.Y, b.Min.X+1, b.Max.Y), ink)
	fill(out, image.Rect(b.Max.X-1, b.Min.Y, b.Max.X, b.Max.Y), ink)
	return out
}

func fill(out *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(out, r, image.NewUniform(c), image.Point{}, draw.Src)
}
