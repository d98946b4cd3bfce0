package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInverseRoundTrip(t *testing.T) {
	tr := Translation(250, 250).
		Compose(Rotation(Radians(90))).
		Compose(Scale(0.2, -0.5))

	inv, ok := tr.Inverse()
	require.True(t, ok)

	p := Point2D{X: 12, Y: -7}
	back := inv.Apply(tr.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}

func TestInverseSingular(t *testing.T) {
	_, ok := Scale(0, 1).Inverse()
	assert.False(t, ok)
}

func TestRotationClockwiseOnScreen(t *testing.T) {
	p := Rotation(Radians(90)).Apply(Point2D{X: 1, Y: 0})
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 1, p.Y, 1e-9)
}

func TestBoundingBox(t *testing.T) {
	bb := BoundingBox([]Point2D{{X: 3, Y: 4}, {X: -1, Y: 10}, {X: 5, Y: 0}})
	assert.Equal(t, Rect{X: -1, Y: 0, Width: 6, Height: 10}, bb)
	assert.Equal(t, Rect{}, BoundingBox(nil))
}

func TestPolylineDistance(t *testing.T) {
	line := []Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}

	assert.InDelta(t, 2, PolylineDistance(Point2D{X: 5, Y: 2}, line), 1e-9)
	assert.InDelta(t, 1, PolylineDistance(Point2D{X: 11, Y: 5}, line), 1e-9)
	assert.True(t, math.IsInf(PolylineDistance(Point2D{}, nil), 1))
}

func TestCirclePoints(t *testing.T) {
	pts := CirclePoints(Rect{X: 0, Y: 0, Width: 40, Height: 40}, 8)
	require.Len(t, pts, 8)
	for _, p := range pts {
		assert.InDelta(t, 20, p.Distance(Point2D{X: 20, Y: 20}), 1e-9)
	}
}
