package detector

import "github.com/ayusman/mocap-replay/internal/capture"

// Landmark counts emitted by the recording exporter per feature.
const (
	NumPoseLandmarks = 33
	NumHandLandmarks = 21
	NumFaceLandmarks = 468
)

// UniformGroup returns n coordinate arrays all set to (v, v, v).
func UniformGroup(n int, v float64) [][]float64 {
	group := make([][]float64, n)
	for i := range group {
		group[i] = []float64{v, v, v}
	}
	return group
}

// PoseRecord returns a record holding only a full pose with every
// landmark at (v, v, v).
func PoseRecord(v float64) capture.FeatureRecord {
	return capture.FeatureRecord{
		PoseKey: UniformGroup(NumPoseLandmarks, v),
	}
}

// HandsRecord returns a record with both hands, left at (l, l, l) and
// right at (r, r, r).
func HandsRecord(l, r float64) capture.FeatureRecord {
	return capture.FeatureRecord{
		LeftHandKey:  UniformGroup(NumHandLandmarks, l),
		RightHandKey: UniformGroup(NumHandLandmarks, r),
	}
}

// HolisticRecord returns a record carrying pose, both hands and face,
// all landmarks at (v, v, v).
func HolisticRecord(v float64) capture.FeatureRecord {
	return capture.FeatureRecord{
		PoseKey:      UniformGroup(NumPoseLandmarks, v),
		LeftHandKey:  UniformGroup(NumHandLandmarks, v),
		RightHandKey: UniformGroup(NumHandLandmarks, v),
		FaceKey:      UniformGroup(NumFaceLandmarks, v),
	}
}
