// Package frame provides the explicit work-stack TreeDiffer uses in
// place of native recursion for its two-sided merge-walk, so that walk
// keeps per-thread stack usage flat regardless of tree depth. Subtrees
// present on only one side are expanded by ordinary recursion, one Go
// stack frame per nesting level.
package frame

import "github.com/emirpasic/gods/stacks/arraystack"

// Stack is a typed wrapper over gods' array-backed stack.
type Stack[T any] struct {
	s *arraystack.Stack
}

// New returns an empty stack.
func New[T any]() *Stack[T] {
	return &Stack[T]{s: arraystack.New()}
}

// Push pushes v onto the top of the stack.
func (st *Stack[T]) Push(v T) {
	st.s.Push(v)
}

// Peek returns the top element without removing it.
func (st *Stack[T]) Peek() (T, bool) {
	v, ok := st.s.Peek()
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Pop removes and returns the top element.
func (st *Stack[T]) Pop() (T, bool) {
	v, ok := st.s.Pop()
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Empty reports whether the stack has no elements.
func (st *Stack[T]) Empty() bool {
	return st.s.Empty()
}
