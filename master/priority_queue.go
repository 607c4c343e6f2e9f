package master

import "math/rand"

type lesser[T any] interface {
	Less(other T) bool
}

// priorityTree is a randomized meldable heap: each node keeps up to four
// children, all no smaller than itself. A nil tree is empty.
type priorityTree[T lesser[T]] struct {
	children [4]*priorityTree[T]
	element  T
	parent   *priorityTree[T]
	size     int // only maintained on the root
}

func (t *priorityTree[T]) detach(replacement *priorityTree[T]) {
	if t == nil || t.parent == nil {
		return
	}
	for i, child := range t.parent.children {
		if child == t {
			t.parent.children[i] = replacement
			break
		}
	}
	t.parent = nil
}

func (q1 *priorityTree[T]) meld(q2 *priorityTree[T]) *priorityTree[T] {
	if q1 == nil {
		q2.detach(nil)
		return q2
	}
	if q2 == nil {
		q1.detach(nil)
		return q1
	}
	if q1 == q2 {
		return q1
	}
	size := q1.size + q2.size
	if q2.element.Less(q1.element) {
		q1, q2 = q2, q1
	}
	root := q1
	root.detach(nil)
	root.size = size

	for {
		idx := rand.Intn(len(q1.children))
		if q1.children[idx] == nil {
			q2.parent = q1
			q1.children[idx] = q2
			break
		}
		// descend while the child is no larger than q2
		if !q2.element.Less(q1.children[idx].element) {
			q1 = q1.children[idx]
			continue
		}
		// q2 takes the child's slot; the displaced subtree is melded below q2
		displaced := q1.children[idx]
		q1.children[idx] = q2
		q2.parent = q1
		q1, q2 = q2, displaced
	}
	return root
}

func (t *priorityTree[T]) push(element T) *priorityTree[T] {
	return t.meld(&priorityTree[T]{element: element, size: 1})
}

// pop removes the minimum and returns it with the remaining tree. It must be
// called on a root.
func (t *priorityTree[T]) pop() (T, *priorityTree[T]) {
	size := t.size - 1
	var rest *priorityTree[T]
	for _, child := range t.children {
		if child != nil {
			child.parent = nil
			child.size = 0
			rest = rest.meld(child)
		}
	}
	if rest != nil {
		rest.size = size
	}
	return t.element, rest
}

func (t *priorityTree[T]) len() int {
	if t == nil {
		return 0
	}
	return t.size
}
