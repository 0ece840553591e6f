package util

import "slices"

// Stack is a LIFO work list.
type Stack[A any] struct {
	items []A
}

func (s *Stack[A]) Push(v ...A) {
	s.items = append(s.items, v...)
}

// PushOrdered pushes items so that they are popped in the order they are given.
func (s *Stack[A]) PushOrdered(items []A) {
	for _, v := range slices.Backward(items) {
		s.items = append(s.items, v)
	}
}

func (s *Stack[A]) Pop() (ret A, ok bool) {
	if len(s.items) == 0 {
		return ret, false
	}
	last := len(s.items) - 1
	ret = s.items[last]
	s.items = s.items[:last]
	return ret, true
}

func (s *Stack[A]) Len() int {
	return len(s.items)
}
