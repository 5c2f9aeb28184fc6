package scan

import "fmt"

// BlockRange represents an inclusive block range.
type BlockRange struct {
	From uint64
	To   uint64
}

// Len returns the number of blocks in the range.
func (r BlockRange) Len() uint64 {
	return r.To - r.From + 1
}

// Halve splits the range into two non-empty halves. Single-block ranges cannot be halved.
func (r BlockRange) Halve() (BlockRange, BlockRange, bool) {
	if r.To <= r.From {
		return r, BlockRange{}, false
	}
	mid := r.From + (r.To-r.From)/2
	return BlockRange{From: r.From, To: mid}, BlockRange{From: mid + 1, To: r.To}, true
}

// SplitRange splits a block range into batches of size batchSize.
func SplitRange(from, to, batchSize uint64) ([]BlockRange, error) {
	if batchSize == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to block must be >= from block")
	}

	ranges := make([]BlockRange, 0, (to-from)/batchSize+1)
	for start := from; ; {
		end := to
		if to-start+1 > batchSize {
			end = start + batchSize - 1
		}
		ranges = append(ranges, BlockRange{From: start, To: end})
		if end == to {
			break
		}
		start = end + 1
	}

	return ranges, nil
}

// Stride returns from, from+step, ... up to to, always ending with to.
func Stride(from, to, step uint64) ([]uint64, error) {
	if step == 0 {
		return nil, fmt.Errorf("stride must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to block must be >= from block")
	}
	blocks := make([]uint64, 0, (to-from)/step+2)
	for b := from; b <= to; b += step {
		blocks = append(blocks, b)
		if to-b < step {
			break
		}
	}
	if blocks[len(blocks)-1] != to {
		blocks = append(blocks, to)
	}
	return blocks, nil
}
