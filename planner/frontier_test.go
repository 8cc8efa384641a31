package planner

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrontierOrdering(t *testing.T) {
	var q frontier
	heap.Init(&q)
	q.push(&node{f: 5, g: 1, id: 3})
	q.push(&node{f: 5, g: 3, id: 4})
	q.push(&node{f: 4, g: 0, id: 5})
	q.push(&node{f: 5, g: 3, id: 2})
	q.push(&node{f: 6, g: 9, id: 1})

	var got []int
	for q.Len() > 0 {
		got = append(got, q.pop().id)
	}
	// f ascending, then deeper first, then oldest first.
	assert.Equal(t, []int{5, 2, 4, 3, 1}, got)
}
