package detector

import (
	"errors"
	"strconv"
	"testing"

	"github.com/ayusman/mocap-replay/internal/capture"
)

// shape describes a tree's nesting as group cardinalities, e.g. "[[[21]],[[21]]]".
func shape(t *Tree) string {
	if t.IsLeaf() {
		return "."
	}
	leaves := 0
	out := "["
	for _, c := range t.Children {
		if c.IsLeaf() {
			leaves++
			continue
		}
		if out != "[" {
			out += ","
		}
		out += shape(c)
	}
	if leaves > 0 {
		if out != "[" {
			out += ","
		}
		out += strconv.Itoa(leaves)
	}
	return out + "]"
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"HAND", KindHand},
		{"pose", KindPose},
		{" Face ", KindFace},
		{"HOLISTIC", KindHolistic},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.name)
		if err != nil {
			t.Errorf("ParseKind(%q) error = %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	t.Run("unknown kind", func(t *testing.T) {
		_, err := ParseKind("FEET")
		if !errors.Is(err, ErrUnknownKind) {
			t.Errorf("expected ErrUnknownKind, got %v", err)
		}
	})
}

func TestDetector_ContainsFeatures(t *testing.T) {
	full := HolisticRecord(0)

	tests := []struct {
		kind    Kind
		rec     capture.FeatureRecord
		want    bool
		comment string
	}{
		{KindPose, PoseRecord(0), true, "pose present"},
		{KindPose, HandsRecord(0, 0), false, "pose missing"},
		{KindHand, HandsRecord(0, 0), true, "both hands"},
		{KindHand, capture.FeatureRecord{LeftHandKey: nil}, false, "right hand missing"},
		{KindFace, full, true, "face present"},
		{KindFace, PoseRecord(0), false, "face missing"},
		{KindHolistic, PoseRecord(0), true, "holistic needs only pose"},
		{KindHolistic, HandsRecord(0, 0), false, "holistic without pose"},
	}

	for _, tt := range tests {
		d := New(tt.kind, nil)
		if got := d.ContainsFeatures(tt.rec); got != tt.want {
			t.Errorf("%s (%s): got %v, want %v", tt.kind, tt.comment, got, tt.want)
		}
	}
}

func TestDetector_Extract(t *testing.T) {
	t.Run("pose is a flat group with positional indices", func(t *testing.T) {
		d := New(KindPose, nil)
		rec := capture.FeatureRecord{PoseKey: {{1, 2, 3}, {4, 5, 6}}}

		out := d.Extract(rec)

		if out.Len() != 2 {
			t.Fatalf("expected 2 landmarks, got %d", out.Len())
		}
		second := out.Children[1].Leaf
		if second.Index != 1 || second.Landmark != (Landmark{4, 5, 6}) {
			t.Errorf("unexpected second landmark: %+v", second)
		}
	})

	t.Run("layouts per kind", func(t *testing.T) {
		tests := []struct {
			kind Kind
			want string
		}{
			{KindPose, "[33]"},
			{KindHand, "[[[21]],[[21]]]"},
			{KindFace, "[[468]]"},
			{KindHolistic, "[[[[21]],[[21]]],[],[33]]"},
		}
		for _, tt := range tests {
			got := shape(New(tt.kind, nil).Extract(HolisticRecord(0.5)))
			if got != tt.want {
				t.Errorf("%s: shape = %s, want %s", tt.kind, got, tt.want)
			}
		}
	})

	t.Run("absent features keep the layout", func(t *testing.T) {
		tests := []struct {
			kind Kind
			want string
		}{
			{KindPose, "[]"},
			{KindHand, "[[[]],[[]]]"},
			{KindFace, "[[]]"},
			{KindHolistic, "[[[[]],[[]]],[],[]]"},
		}
		for _, tt := range tests {
			got := shape(New(tt.kind, nil).Extract(capture.FeatureRecord{}))
			if got != tt.want {
				t.Errorf("%s: shape = %s, want %s", tt.kind, got, tt.want)
			}
		}
	})

	t.Run("short coordinates are zero filled", func(t *testing.T) {
		d := New(KindPose, nil)
		out := d.Extract(capture.FeatureRecord{PoseKey: {{7}, {1, 2, 3, 4}}})

		if out.Children[0].Leaf.Landmark != (Landmark{7, 0, 0}) {
			t.Errorf("expected zero fill, got %v", out.Children[0].Leaf.Landmark)
		}
		if out.Children[1].Leaf.Landmark != (Landmark{1, 2, 3}) {
			t.Errorf("expected truncation, got %v", out.Children[1].Leaf.Landmark)
		}
	})
}

func TestDetector_Update(t *testing.T) {
	records := []capture.FeatureRecord{
		PoseRecord(1),
		PoseRecord(2),
		HandsRecord(0, 0), // no pose
		PoseRecord(4),
	}
	d := New(KindPose, capture.NewSource(records))

	for i := range records {
		out, frame := d.Update(nil, i+1)
		if out == nil {
			t.Fatalf("frame %d: unexpected exhaustion", i+1)
		}
		if frame != i+1 {
			t.Errorf("frame number changed: got %d, want %d", frame, i+1)
		}
		if got := shape(out); i != 2 && got != "[33]" {
			t.Errorf("frame %d: shape %s", i+1, got)
		}
	}

	if d.Incomplete() != 1 {
		t.Errorf("expected 1 incomplete frame, got %d", d.Incomplete())
	}

	if out, _ := d.Update(nil, 5); out != nil {
		t.Error("expected nil after exhaustion")
	}
}

func TestTree_MarshalJSON(t *testing.T) {
	tree := NewBranch(
		NewBranch(NewLeaf(0, Landmark{0.5, 1, -2})),
		NewBranch(),
	)

	data, err := tree.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}

	want := `[[[0,[0.5,1,-2]]],[]]`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestTree_Clone(t *testing.T) {
	orig := NewBranch(NewLeaf(3, Landmark{1, 1, 1}))
	cp := orig.Clone()

	cp.Children[0].Leaf.Landmark[0] = 9

	if orig.Children[0].Leaf.Landmark[0] != 1 {
		t.Error("clone shares leaf storage with original")
	}
	if cp.Children[0].Leaf.Index != 3 {
		t.Errorf("clone lost index: %d", cp.Children[0].Leaf.Index)
	}
}
