package engine

import (
	"errors"
	"fmt"
)

// Landmark indices follow the 33-point pose topology shared with the
// upstream detector. Only the indices the analyzers read are named.
const (
	LandmarkNose          = 0
	LandmarkLeftEar       = 7
	LandmarkRightEar      = 8
	LandmarkLeftShoulder  = 11
	LandmarkRightShoulder = 12
	LandmarkLeftHip       = 23
	LandmarkRightHip      = 24
	LandmarkLeftKnee      = 25
	LandmarkRightKnee     = 26
	LandmarkLeftAnkle     = 27
	LandmarkRightAnkle    = 28
	LandmarkLeftHeel      = 29
	LandmarkRightHeel     = 30
	LandmarkLeftFootIndex = 31
	LandmarkRightFootTip  = 32

	// MinLandmarks is the smallest landmark list the engine accepts.
	MinLandmarks = 33

	// visibilityThreshold gates landmark usage. A landmark at exactly
	// 0.5 is NOT usable; the comparison is strictly greater-than.
	visibilityThreshold = 0.5
)

// ErrLandmarkIndex reports a detection result whose landmark list is
// shorter than the topology requires. This is a caller contract
// violation, not a recoverable condition.
var ErrLandmarkIndex = errors.New("landmark index out of bounds")

// Landmark is a single detected body point, normalized to the source
// image dimensions.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Visibility float64 `json:"visibility"`
}

// Usable reports whether the landmark is visible enough to enter a
// calculation that requires it.
func (l Landmark) Usable() bool {
	return l.Visibility > visibilityThreshold
}

// DetectionResult is one view's worth of landmark detections.
type DetectionResult struct {
	Landmarks   []Landmark `json:"landmarks" binding:"required"`
	Confidence  float64    `json:"confidence"`
	ImageWidth  int        `json:"image_width" binding:"required"`
	ImageHeight int        `json:"image_height" binding:"required"`
}

// Validate checks the caller contract: every index the analyzers read
// must exist. Coordinate normalization is assumed, not verified.
func (d *DetectionResult) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil detection result", ErrLandmarkIndex)
	}
	if len(d.Landmarks) < MinLandmarks {
		return fmt.Errorf("%w: got %d landmarks, need %d", ErrLandmarkIndex, len(d.Landmarks), MinLandmarks)
	}
	return nil
}

// pixel converts a landmark's normalized coordinates to pixel space.
func (d *DetectionResult) pixel(l Landmark) (float64, float64) {
	return l.X * float64(d.ImageWidth), l.Y * float64(d.ImageHeight)
}

// bilateral selects the more visible of a left/right landmark pair when
// a single representative point is needed. Selection, not averaging:
// the occluded side would otherwise drag the measurement.
func (d *DetectionResult) bilateral(leftIdx, rightIdx int) Landmark {
	left, right := d.Landmarks[leftIdx], d.Landmarks[rightIdx]
	if right.Visibility > left.Visibility {
		return right
	}
	return left
}
