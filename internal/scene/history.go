package scene

// History is a linear stack of shapes removed by undo. It holds references,
// so redo re-inserts the very object that undo removed.
type History struct {
	stack []*Shape
}

// RecordRemoval pushes a removed shape.
func (h *History) RecordRemoval(shape *Shape) {
	h.stack = append(h.stack, shape)
}

// Pop removes and returns the most recently recorded shape, or nil.
func (h *History) Pop() *Shape {
	if len(h.stack) == 0 {
		return nil
	}
	top := h.stack[len(h.stack)-1]
	h.stack[len(h.stack)-1] = nil
	h.stack = h.stack[:len(h.stack)-1]
	return top
}

// Len returns the stack depth.
func (h *History) Len() int {
	return len(h.stack)
}
