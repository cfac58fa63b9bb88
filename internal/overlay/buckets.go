package overlay

import "timeful/internal/model"

// buckets maps a day index to the blocks placed on that day. Indexes may run
// past the anchor count when a timezone shift spills blocks into the
// following local day.
type buckets struct {
	days map[int][]model.DayBlock

	// reserved counts anchors plus days added for windows crossing local
	// midnight; highest is the largest index that received a block.
	reserved int
	highest  int
}

func newBuckets(anchors int) *buckets {
	return &buckets{
		days:     make(map[int][]model.DayBlock, anchors),
		reserved: anchors,
		highest:  -1,
	}
}

func (b *buckets) add(day int, block model.DayBlock) {
	b.days[day] = append(b.days[day], block)

	if day > b.highest {
		b.highest = day
	}
}

// reserve adds one day to the sequence.
func (b *buckets) reserve() {
	b.reserved++
}

func (b *buckets) size() int {
	return max(b.reserved, b.highest+1)
}

// dense returns the sequence with an empty, non-nil slice for days without
// blocks.
func (b *buckets) dense() [][]model.DayBlock {
	result := make([][]model.DayBlock, b.size())

	for i := range result {
		if blocks, has := b.days[i]; has {
			result[i] = blocks

			continue
		}

		result[i] = []model.DayBlock{}
	}

	return result
}
