package overlay

import (
	"slices"

	"timeful/internal/model"
)

// queue is the engine's private working list of blocks, kept in ascending
// start order. It never aliases the caller's slice.
type queue struct {
	blocks []model.TimeBlock
}

func newQueue(blocks []model.TimeBlock) *queue {
	q := queue{
		blocks: slices.Clone(blocks),
	}

	slices.SortStableFunc(
		q.blocks,
		func(a, b model.TimeBlock) int {
			return a.StartDate.Compare(b.StartDate)
		},
	)

	return &q
}

func (q *queue) empty() bool {
	return len(q.blocks) == 0
}

func (q *queue) front() model.TimeBlock {
	return q.blocks[0]
}

func (q *queue) pop() model.TimeBlock {
	block := q.blocks[0]
	q.blocks = q.blocks[1:]

	return block
}

// insert places block ahead of every queued block that does not start
// strictly before it.
func (q *queue) insert(block model.TimeBlock) {
	at, _ := slices.BinarySearchFunc(
		q.blocks,
		block,
		func(queued, target model.TimeBlock) int {
			if queued.StartDate.Before(target.StartDate) {
				return -1
			}

			return 1
		},
	)

	q.blocks = slices.Insert(q.blocks, at, block)
}
