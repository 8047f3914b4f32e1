/*
	Package planner implements C3: grouping an ordered list of block
	coordinates into batched request URLs under a byte-length budget
	(spec.md §4.3), and the analogous byte-budget grouping used by writes
	(spec.md §4.6).  Both share the same index-preservation contract:
	flattening the indices of every emitted batch reproduces the original
	input order exactly once each.
*/
package planner

import (
	"fmt"

	"github.com/fiji-hpc/hpc-datastore-go/dvid"
)

// Selector holds the scalar (timepoint, channel, angle) values appended to
// every block coordinate suffix.
type Selector struct {
	Timepoint int32
	Channel   int32
	Angle     int32
}

// Batch is one planned request: the URL to hit and the original indices
// (into the caller's coords slice) whose block suffixes were appended to it,
// in the order they were appended.
type Batch struct {
	URL     string
	Indices []int
}

// suffix formats the six-segment block suffix "/cx/cy/cz/t/c/a".
func suffix(c dvid.Vector3[int32], sel Selector) string {
	return fmt.Sprintf("/%d/%d/%d/%d/%d/%d", c.X, c.Y, c.Z, sel.Timepoint, sel.Channel, sel.Angle)
}

// PlanURLs groups coords into (url, indices) batches such that appending a
// block's suffix to the in-progress URL never pushes it past maxURLLength.
// A suffix that exactly fits is included (strict '>' test, not '>=').
// Every index from 0..len(coords) appears in exactly one batch, in order.
// A suffix that does not fit even after sessionURL alone is still appended,
// so that batch's URL is longer than maxURLLength.
func PlanURLs(coords []dvid.Vector3[int32], sessionURL string, sel Selector, maxURLLength int) []Batch {
	var batches []Batch
	url := sessionURL
	var indices []int

	flush := func() {
		if len(indices) > 0 {
			batches = append(batches, Batch{URL: url, Indices: indices})
		}
		url = sessionURL
		indices = nil
	}

	for i, c := range coords {
		suf := suffix(c, sel)
		if len(url)+len(suf) > maxURLLength {
			flush()
		}
		url += suf
		indices = append(indices, i)
	}
	flush()
	return batches
}

// ByteGroup is one planned write batch: the original indices whose encoded
// block payloads are concatenated, in order, into a single POST body.
type ByteGroup struct {
	Indices []int
}

// GroupByByteBudget groups n items (by index) into batches of up to
// maxPerBatch items each, used for spec.md §4.6's write-batch grouping
// (⌊writeBatchBytes / (elemSize·bx·by·bz)⌋ blocks per POST). It gives the
// same index-preservation guarantee PlanURLs offers for reads.
func GroupByByteBudget(n int, maxPerBatch int) []ByteGroup {
	if maxPerBatch < 1 {
		maxPerBatch = 1
	}
	var groups []ByteGroup
	for start := 0; start < n; start += maxPerBatch {
		end := start + maxPerBatch
		if end > n {
			end = n
		}
		indices := make([]int, end-start)
		for i := range indices {
			indices[i] = start + i
		}
		groups = append(groups, ByteGroup{Indices: indices})
	}
	return groups
}

// MaxBlocksPerWriteBatch computes ⌊writeBatchBytes / (elemSize·bx·by·bz)⌋,
// floored at 1 so even an oversized single block is still its own batch.
func MaxBlocksPerWriteBatch(writeBatchBytes, elemSize int, blockDim dvid.Vector3[int32]) int {
	blockBytes := int64(elemSize) * int64(blockDim.X) * int64(blockDim.Y) * int64(blockDim.Z)
	if blockBytes <= 0 {
		return 1
	}
	n := int64(writeBatchBytes) / blockBytes
	if n < 1 {
		return 1
	}
	return int(n)
}
