// Package smooth merges landmark trees across skipped frames.
//
// Merging is a structural running average: matching leaves are averaged
// pairwise, so repeated merges weigh recent samples more than a true mean
// would. Trees of different sizes merge over their common prefix only.
package smooth

import "github.com/ayusman/mocap-replay/internal/detector"

// Merge folds sample into acc in place and returns acc.
//
//   - two leaves: each coordinate becomes (acc + sample) / 2, acc's index is kept
//   - empty acc, leaf sample: acc becomes a copy of the leaf
//   - empty acc, non-empty sample: acc takes over sample's children
//   - two branches: children are merged pairwise over the shorter length
//
// A leaf paired with a branch is left untouched. acc takes ownership of any
// nodes it adopts from sample. A nil acc returns sample itself.
func Merge(acc, sample *detector.Tree) *detector.Tree {
	if sample == nil {
		return acc
	}
	if acc == nil {
		return sample
	}
	merge(acc, sample)
	return acc
}

func merge(acc, sample *detector.Tree) {
	if acc == nil || sample == nil {
		return
	}

	if acc.IsEmpty() && sample.IsLeaf() {
		lm := *sample.Leaf
		acc.Leaf = &lm
		acc.Children = nil
		return
	}

	if acc.IsLeaf() || sample.IsLeaf() {
		if acc.IsLeaf() && sample.IsLeaf() {
			Average(acc.Leaf, sample.Leaf)
		}
		return
	}

	if len(acc.Children) == 0 {
		if len(sample.Children) != 0 {
			acc.Children = sample.Children
		}
		return
	}

	n := min(len(acc.Children), len(sample.Children))
	for i := 0; i < n; i++ {
		merge(acc.Children[i], sample.Children[i])
	}
}

// Average replaces acc's coordinates with the midpoint of acc and sample.
func Average(acc, sample *detector.IndexedLandmark) {
	for i := range acc.Landmark {
		acc.Landmark[i] = (acc.Landmark[i] + sample.Landmark[i]) / 2
	}
}
