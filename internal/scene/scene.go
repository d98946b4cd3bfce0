package scene

// Brush configures freehand drawing.
type Brush struct {
	Width float64
}

// Scene is the ordered collection of shapes on the drawing surface.
// Z-order is insertion order. Scene is not safe for concurrent use; the
// Editor guards it.
type Scene struct {
	Width, Height float64

	shapes      []*Shape
	active      *Shape
	zoom        float64
	drawingMode bool
	brush       *Brush
}

// NewScene creates an empty scene of the given logical size.
func NewScene(width, height float64) *Scene {
	return &Scene{Width: width, Height: height, zoom: 1}
}

// Add appends a shape on top of the scene.
func (s *Scene) Add(shape *Shape) {
	s.shapes = append(s.shapes, shape)
}

// Remove deletes the shape from the scene, clearing the selection if it was
// active. It reports whether the shape was present.
func (s *Scene) Remove(shape *Shape) bool {
	i := s.Index(shape)
	if i < 0 {
		return false
	}
	s.shapes = append(s.shapes[:i], s.shapes[i+1:]...)
	if s.active == shape {
		s.active = nil
	}
	return true
}

// Pop removes and returns the most recently inserted shape, or nil.
func (s *Scene) Pop() *Shape {
	if len(s.shapes) == 0 {
		return nil
	}
	last := s.shapes[len(s.shapes)-1]
	s.shapes[len(s.shapes)-1] = nil
	s.shapes = s.shapes[:len(s.shapes)-1]
	if s.active == last {
		s.active = nil
	}
	return last
}

// Index returns the z-position of shape, or -1.
func (s *Scene) Index(shape *Shape) int {
	for i, sh := range s.shapes {
		if sh == shape {
			return i
		}
	}
	return -1
}

// Contains reports whether shape is currently live in the scene.
func (s *Scene) Contains(shape *Shape) bool {
	return s.Index(shape) >= 0
}

// Len returns the number of shapes.
func (s *Scene) Len() int {
	return len(s.shapes)
}

// Shapes returns a copy of the shape list in z-order.
func (s *Scene) Shapes() []*Shape {
	out := make([]*Shape, len(s.shapes))
	copy(out, s.shapes)
	return out
}

// Active returns the selected shape, or nil.
func (s *Scene) Active() *Shape {
	return s.active
}

// SetActive selects shape. Passing nil or a shape not in the scene clears the selection.
func (s *Scene) SetActive(shape *Shape) {
	if shape != nil && !s.Contains(shape) {
		shape = nil
	}
	s.active = shape
}
