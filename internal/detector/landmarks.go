// Package detector reshapes recorded landmark frames into feature-specific
// nested structures for the replay pipeline.
package detector

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Feature keys as written by the recording exporter.
const (
	PoseKey      = "pose_world_landmarks"
	LeftHandKey  = "left_hand_world_landmarks"
	RightHandKey = "right_hand_world_landmarks"
	FaceKey      = "face_world_landmarks"
)

// Landmark is a single tracked point (x, y, z).
type Landmark [3]float64

// IndexedLandmark pairs a landmark with its position inside the source group.
type IndexedLandmark struct {
	Index    int
	Landmark Landmark
}

// Tree is the nested shape produced per tick and accumulated between flushes.
// A node is either a leaf holding one landmark or a branch of ordered
// children. A branch with no children is an empty group.
type Tree struct {
	Leaf     *IndexedLandmark
	Children []*Tree
}

// NewLeaf returns a leaf node for the landmark at index.
func NewLeaf(index int, lm Landmark) *Tree {
	return &Tree{Leaf: &IndexedLandmark{Index: index, Landmark: lm}}
}

// NewBranch returns a branch node with the given children.
func NewBranch(children ...*Tree) *Tree {
	if children == nil {
		children = []*Tree{}
	}
	return &Tree{Children: children}
}

// IsLeaf reports whether t holds a landmark.
func (t *Tree) IsLeaf() bool {
	return t != nil && t.Leaf != nil
}

// IsEmpty reports whether t is nil or a branch without children.
func (t *Tree) IsEmpty() bool {
	return t == nil || (t.Leaf == nil && len(t.Children) == 0)
}

// Len returns the number of direct children (0 for leaves).
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Children)
}

// Clone returns a deep copy of t.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	if t.Leaf != nil {
		lm := *t.Leaf
		return &Tree{Leaf: &lm}
	}
	out := &Tree{Children: make([]*Tree, len(t.Children))}
	for i, c := range t.Children {
		out.Children[i] = c.Clone()
	}
	return out
}

// Landmarks returns every leaf under t in depth-first order.
func (t *Tree) Landmarks() []IndexedLandmark {
	var out []IndexedLandmark
	var walk func(n *Tree)
	walk = func(n *Tree) {
		if n == nil {
			return
		}
		if n.Leaf != nil {
			out = append(out, *n.Leaf)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t)
	return out
}

// MarshalJSON encodes leaves as [index, [x, y, z]] and branches as arrays,
// the layout retargeting consumers expect.
func (t *Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *Tree) encode(buf *bytes.Buffer) error {
	if t == nil {
		buf.WriteString("[]")
		return nil
	}
	if t.Leaf != nil {
		buf.WriteByte('[')
		buf.WriteString(strconv.Itoa(t.Leaf.Index))
		buf.WriteString(",")
		coords, err := json.Marshal(t.Leaf.Landmark)
		if err != nil {
			return err
		}
		buf.Write(coords)
		buf.WriteByte(']')
		return nil
	}
	buf.WriteByte('[')
	for i, c := range t.Children {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := c.encode(buf); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

// toGroup converts a raw coordinate list into a branch of indexed leaves.
// Short coordinate arrays are zero-filled and extra components are dropped.
func toGroup(raw [][]float64) *Tree {
	group := &Tree{Children: make([]*Tree, 0, len(raw))}
	for idx, coords := range raw {
		var lm Landmark
		copy(lm[:], coords)
		group.Children = append(group.Children, NewLeaf(idx, lm))
	}
	return group
}
