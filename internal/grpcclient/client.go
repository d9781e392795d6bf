package grpcclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/posture-api/internal/engine"
	"github.com/example/posture-api/internal/logging"
	"github.com/example/posture-api/internal/posedetector"
)

// detectMethod is the full method name of the landmark RPC on the
// Python detector service. Both sides exchange structpb payloads so
// the landmark schema can evolve without regenerating stubs.
const detectMethod = "/posedetector.v1.PoseDetector/DetectLandmarks"

// DialPoseDetector returns a ready-to-use client for the pose
// detection service.
func DialPoseDetector(ctx context.Context, addr string, logger *zap.Logger) (posedetector.Client, *grpc.ClientConn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(
		dialCtx,
		addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		wrapped := logging.NewOperationError("grpcclient.dial_pose_detector", "", err)
		logger.Error("failed to dial pose detector", zap.Error(wrapped), zap.String("addr", addr))
		return nil, nil, wrapped
	}
	return &grpcPoseDetector{conn: conn, logger: logger}, conn, nil
}

type grpcPoseDetector struct {
	conn   *grpc.ClientConn
	logger *zap.Logger
}

func (g *grpcPoseDetector) Detect(ctx context.Context, view string, imageBytes []byte) (*engine.DetectionResult, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		"view":       view,
		"image_data": base64.StdEncoding.EncodeToString(imageBytes),
	})
	if err != nil {
		return nil, logging.NewOperationError("grpcclient.encode_request", "", err)
	}

	resp := &structpb.Struct{}
	if err := g.conn.Invoke(ctx, detectMethod, req, resp); err != nil {
		wrapped := logging.NewOperationError("grpcclient.detect_landmarks", "", err)
		g.logger.Error("pose detector call failed", zap.Error(wrapped), zap.String("view", view))
		return nil, wrapped
	}

	result, err := decodeDetection(resp)
	if err != nil {
		return nil, logging.NewOperationError("grpcclient.decode_response", "", err)
	}
	return result, nil
}

// decodeDetection maps the detector's struct payload onto the engine's
// detection type. Expected shape:
//
//	{landmarks: [{x, y, visibility}, ...], confidence, image_width, image_height}
func decodeDetection(s *structpb.Struct) (*engine.DetectionResult, error) {
	fields := s.GetFields()

	list := fields["landmarks"].GetListValue()
	if list == nil {
		return nil, fmt.Errorf("detector response missing landmarks")
	}

	landmarks := make([]engine.Landmark, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		entry := v.GetStructValue()
		if entry == nil {
			return nil, fmt.Errorf("landmark %d is not an object", i)
		}
		ef := entry.GetFields()
		landmarks = append(landmarks, engine.Landmark{
			X:          ef["x"].GetNumberValue(),
			Y:          ef["y"].GetNumberValue(),
			Visibility: ef["visibility"].GetNumberValue(),
		})
	}

	result := &engine.DetectionResult{
		Landmarks:   landmarks,
		Confidence:  fields["confidence"].GetNumberValue(),
		ImageWidth:  int(fields["image_width"].GetNumberValue()),
		ImageHeight: int(fields["image_height"].GetNumberValue()),
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}
