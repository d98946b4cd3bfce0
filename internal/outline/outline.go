// Package outline traces the silhouette of a reference image into a polygon.
package outline

import (
	"errors"
	"image"
	"math"

	"tint-care/pkg/geometry"

	"gocv.io/x/gocv"
)

// ErrNoOutline is returned when no contour is large enough to trace.
var ErrNoOutline = errors.New("no outline found")

// Options configures outline tracing.
type Options struct {
	BlurSize int     // Gaussian kernel size, forced odd
	MinArea  float64 // Minimum contour area in pixels
	Epsilon  float64 // Simplification tolerance as a fraction of the contour length
}

// DefaultOptions returns default tracing options.
func DefaultOptions() Options {
	return Options{
		BlurSize: 5,
		MinArea:  400,
		Epsilon:  0.002,
	}
}

// Trace finds the largest dark shape on a light background and returns its
// simplified outline in image pixel coordinates.
func Trace(img image.Image, opts Options) ([]geometry.Point2D, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrNoOutline
	}

	mat := ImageToMat(img)
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	if k := opts.BlurSize; k > 1 {
		if k%2 == 0 {
			k++
		}
		gocv.GaussianBlur(gray, &gray, image.Point{k, k}, 0, 0, gocv.BorderDefault)
	}

	// Otsu picks the threshold; inverted so the vehicle becomes foreground.
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(gray, &mask, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	best, bestArea := -1, opts.MinArea
	for i := 0; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area >= bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return nil, ErrNoOutline
	}

	contour := contours.At(best)
	epsilon := math.Max(opts.Epsilon*gocv.ArcLength(contour, true), 0.5)
	approx := gocv.ApproxPolyDP(contour, epsilon, true)
	defer approx.Close()

	pts := approx.ToPoints()
	if len(pts) < 3 {
		return nil, ErrNoOutline
	}
	out := make([]geometry.Point2D, len(pts))
	for i, p := range pts {
		out[i] = geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
	}
	return out, nil
}

// ImageToMat converts a Go image.Image to a gocv.Mat in BGR format.
// Transparent pixels are composited onto white.
func ImageToMat(img image.Image) gocv.Mat {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// premultiplied, so add the missing white
			white := 0xffff - a
			mat.SetUCharAt(y, x*3+0, uint8((b+white)>>8))
			mat.SetUCharAt(y, x*3+1, uint8((g+white)>>8))
			mat.SetUCharAt(y, x*3+2, uint8((r+white)>>8))
		}
	}

	return mat
}
