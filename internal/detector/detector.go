package detector

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ayusman/mocap-replay/internal/capture"
)

// ErrUnknownKind is returned when a feature kind name is not recognized.
var ErrUnknownKind = errors.New("unknown detection type")

// Kind selects which features a Detector extracts.
type Kind int

const (
	KindHand Kind = iota
	KindPose
	KindFace
	KindHolistic
)

// ParseKind maps a detection type name (HAND, POSE, FACE, HOLISTIC) to a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "HAND":
		return KindHand, nil
	case "POSE":
		return KindPose, nil
	case "FACE":
		return KindFace, nil
	case "HOLISTIC":
		return KindHolistic, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

func (k Kind) String() string {
	switch k {
	case KindHand:
		return "HAND"
	case KindPose:
		return "POSE"
	case KindFace:
		return "FACE"
	case KindHolistic:
		return "HOLISTIC"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Detector pulls records from a recording and reshapes them into the
// nested layout of its Kind. It is the head stage of a replay chain.
type Detector struct {
	kind       Kind
	source     *capture.Source
	incomplete int
}

// New creates a Detector of the given kind reading from src.
func New(kind Kind, src *capture.Source) *Detector {
	return &Detector{kind: kind, source: src}
}

// Kind returns the detector's feature kind.
func (d *Detector) Kind() Kind {
	return d.kind
}

// Source returns the recording the detector reads from.
func (d *Detector) Source() *capture.Source {
	return d.source
}

// Incomplete returns how many frames lacked the features this kind requires.
func (d *Detector) Incomplete() int {
	return d.incomplete
}

// ContainsFeatures reports whether rec carries every key this kind requires.
// The check is advisory: Extract still runs on incomplete records.
func (d *Detector) ContainsFeatures(rec capture.FeatureRecord) bool {
	switch d.kind {
	case KindHand:
		return hasKeys(rec, LeftHandKey, RightHandKey)
	case KindFace:
		return hasKeys(rec, FaceKey)
	default:
		return hasKeys(rec, PoseKey)
	}
}

// Extract reshapes rec into this kind's fixed layout:
//
//	POSE      group
//	HAND      [[left], [right]]
//	FACE      [face]
//	HOLISTIC  [[[left], [right]], [], pose]
//
// Absent features become empty groups so the layout never changes.
func (d *Detector) Extract(rec capture.FeatureRecord) *Tree {
	switch d.kind {
	case KindHand:
		return handPair(rec)
	case KindFace:
		return NewBranch(toGroup(rec[FaceKey]))
	case KindHolistic:
		// Face is not extracted for holistic runs; the slot stays empty.
		return NewBranch(handPair(rec), NewBranch(), toGroup(rec[PoseKey]))
	default:
		return toGroup(rec[PoseKey])
	}
}

// Update pulls the next record and returns its reshaped tree. It returns nil
// once the recording is exhausted. The input tree is ignored.
func (d *Detector) Update(_ *Tree, frame int) (*Tree, int) {
	rec, ok := d.source.Next()
	if !ok {
		return nil, frame
	}

	if !d.ContainsFeatures(rec) {
		d.incomplete++
		slog.Debug("detector: frame missing required features",
			"kind", d.kind.String(),
			"frame", frame,
		)
	}

	return d.Extract(rec), frame
}

func handPair(rec capture.FeatureRecord) *Tree {
	return NewBranch(
		NewBranch(toGroup(rec[LeftHandKey])),
		NewBranch(toGroup(rec[RightHandKey])),
	)
}

func hasKeys(rec capture.FeatureRecord, keys ...string) bool {
	for _, k := range keys {
		if _, ok := rec[k]; !ok {
			return false
		}
	}
	return true
}
