package posedetector

import (
	"context"

	"github.com/example/posture-api/internal/engine"
)

// Views accepted by the detector.
const (
	ViewFrontal  = "frontal"
	ViewSagittal = "sagittal"
)

// Client exposes the subset of the upstream pose-detection service the
// analysis flow uses. Implementations return the full 33-point
// topology with coordinates normalized to the image dimensions.
type Client interface {
	Detect(ctx context.Context, view string, imageBytes []byte) (*engine.DetectionResult, error)
}
