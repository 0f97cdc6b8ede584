package datastructure

import (
	"errors"
)

type PriorityQueueNode struct {
	rank float64
	item Index
}

func (p PriorityQueueNode) GetItem() Index {
	return p.item
}

func (p PriorityQueueNode) GetRank() float64 {
	return p.rank
}

// MinHeap is a d-ary min heap over vertex handles. pos tracks where each item sits so
// DecreaseKey runs in O(log_d n).
type MinHeap struct {
	heap []PriorityQueueNode
	pos  map[Index]int
	d    int
}

func NewBinaryHeap() *MinHeap {
	return NewdAryHeap(2)
}

func NewFourAryHeap() *MinHeap {
	return NewdAryHeap(4)
}

func NewdAryHeap(d int) *MinHeap {
	return &MinHeap{
		heap: make([]PriorityQueueNode, 0),
		pos:  make(map[Index]int),
		d:    d,
	}
}

func (h *MinHeap) parent(index int) int {
	return (index - 1) / h.d
}

// heapifyUp moves index towards the root while its rank is smaller than its parent's.
func (h *MinHeap) heapifyUp(index int) {
	for index != 0 && h.heap[index].rank < h.heap[h.parent(index)].rank {
		h.swap(index, h.parent(index))
		index = h.parent(index)
	}
}

// heapifyDown moves index towards the leaves while a child has a smaller rank.
func (h *MinHeap) heapifyDown(index int) {
	for {
		leftMostChild := index*h.d + 1
		if leftMostChild >= len(h.heap) {
			return
		}

		sentinel := min(leftMostChild+h.d, len(h.heap))
		smallest := leftMostChild
		for i := leftMostChild + 1; i < sentinel; i++ {
			if h.heap[i].rank < h.heap[smallest].rank {
				smallest = i
			}
		}

		if h.heap[smallest].rank >= h.heap[index].rank {
			return
		}
		h.swap(index, smallest)
		index = smallest
	}
}

func (h *MinHeap) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.pos[h.heap[i].item] = i
	h.pos[h.heap[j].item] = j
}

func (h *MinHeap) IsEmpty() bool {
	return len(h.heap) == 0
}

func (h *MinHeap) Size() int {
	return len(h.heap)
}

func (h *MinHeap) Contains(item Index) bool {
	_, ok := h.pos[item]
	return ok
}

// Insert adds item; an item already in the heap is an error, use DecreaseKey.
func (h *MinHeap) Insert(item Index, rank float64) error {
	if h.Contains(item) {
		return errors.New("item already in heap")
	}
	h.heap = append(h.heap, PriorityQueueNode{rank: rank, item: item})
	index := len(h.heap) - 1
	h.pos[item] = index
	h.heapifyUp(index)
	return nil
}

func (h *MinHeap) GetMin() (PriorityQueueNode, error) {
	if h.IsEmpty() {
		return PriorityQueueNode{}, errors.New("heap is empty")
	}
	return h.heap[0], nil
}

// ExtractMin pops the item with the smallest rank.
func (h *MinHeap) ExtractMin() (PriorityQueueNode, error) {
	if h.IsEmpty() {
		return PriorityQueueNode{}, errors.New("heap is empty")
	}
	root := h.heap[0]
	last := len(h.heap) - 1
	h.swap(0, last)
	h.heap = h.heap[:last]
	delete(h.pos, root.item)
	if len(h.heap) > 0 {
		h.heapifyDown(0)
	}
	return root, nil
}

// DecreaseKey lowers the rank of an item already in the heap.
func (h *MinHeap) DecreaseKey(item Index, rank float64) error {
	index, ok := h.pos[item]
	if !ok || h.heap[index].rank < rank {
		return errors.New("invalid item or new rank")
	}
	h.heap[index].rank = rank
	h.heapifyUp(index)
	return nil
}
