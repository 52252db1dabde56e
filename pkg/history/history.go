// Package history keeps undo and redo stacks of whole snapshots.
package history

// History holds the snapshots an editor can go back and forth between. The
// current value lives with the caller; History only stores the values
// around it.
type History[T any] struct {
	undo []T
	redo []T
}

func New[T any]() *History[T] {
	return &History[T]{}
}

// Record saves prev, the value before a structural edit. Any redo history is
// discarded.
func (h *History[T]) Record(prev T) {
	h.undo = append(h.undo, prev)
	clear(h.redo)
	h.redo = h.redo[:0]
}

// Undo returns the value to adopt instead of current and saves current for
// Redo. ok is false when there is nothing to undo.
func (h *History[T]) Undo(current T) (prev T, ok bool) {
	if len(h.undo) == 0 {
		return prev, false
	}
	prev = pop(&h.undo)
	h.redo = append(h.redo, current)
	return prev, true
}

// Redo is the reverse of Undo.
func (h *History[T]) Redo(current T) (next T, ok bool) {
	if len(h.redo) == 0 {
		return next, false
	}
	next = pop(&h.redo)
	h.undo = append(h.undo, current)
	return next, true
}

func (h *History[T]) CanUndo() bool { return len(h.undo) > 0 }
func (h *History[T]) CanRedo() bool { return len(h.redo) > 0 }

// Depth returns the sizes of the undo and redo stacks.
func (h *History[T]) Depth() (undo, redo int) {
	return len(h.undo), len(h.redo)
}

// Reset drops both stacks.
func (h *History[T]) Reset() {
	h.undo = nil
	h.redo = nil
}

func pop[T any](stack *[]T) T {
	s := *stack
	v := s[len(s)-1]
	var zero T
	s[len(s)-1] = zero
	*stack = s[:len(s)-1]
	return v
}
