package mlfq

import "container/list"

// Queue is an ordered set with O(1) removal by identity.
type Queue[T comparable] struct {
	items *list.List
	index map[T]*list.Element
}

// NewQueue creates an empty queue.
func NewQueue[T comparable]() *Queue[T] {
	return &Queue[T]{items: list.New(), index: make(map[T]*list.Element)}
}

// PushBack appends v. It returns false when v is already queued.
func (q *Queue[T]) PushBack(v T) bool {
	if _, ok := q.index[v]; ok {
		return false
	}
	q.index[v] = q.items.PushBack(v)
	return true
}

// Remove unlinks v, keeping the order of the remaining members.
func (q *Queue[T]) Remove(v T) bool {
	elem, ok := q.index[v]
	if !ok {
		return false
	}
	q.items.Remove(elem)
	delete(q.index, v)
	return true
}

// MoveToBack moves v to the tail.
func (q *Queue[T]) MoveToBack(v T) bool {
	elem, ok := q.index[v]
	if !ok {
		return false
	}
	q.items.MoveToBack(elem)
	return true
}

// Contains reports whether v is queued.
func (q *Queue[T]) Contains(v T) bool {
	_, ok := q.index[v]
	return ok
}

// Len returns the number of members.
func (q *Queue[T]) Len() int {
	return q.items.Len()
}

// Each calls fn for every member in order until fn returns false.
// fn must not mutate the queue.
func (q *Queue[T]) Each(fn func(v T) bool) {
	for elem := q.items.Front(); elem != nil; elem = elem.Next() {
		if !fn(elem.Value.(T)) {
			return
		}
	}
}

// Items returns the members in order.
func (q *Queue[T]) Items() []T {
	ret := make([]T, 0, q.items.Len())
	q.Each(func(v T) bool {
		ret = append(ret, v)
		return true
	})
	return ret
}
