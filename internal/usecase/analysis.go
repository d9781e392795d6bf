package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/posture-api/internal/engine"
	"github.com/example/posture-api/internal/logging"
	"github.com/example/posture-api/internal/posedetector"
	"github.com/example/posture-api/internal/repository"
)

// AnalysisRepository defines the persistence operations needed by the
// use case.
type AnalysisRepository interface {
	Save(ctx context.Context, record *repository.AnalysisRecord) error
	FindByAnalysisIDAndUser(ctx context.Context, analysisID, userID string) (*repository.AnalysisRecord, error)
	AggregateSummary(ctx context.Context) (*repository.SummaryAggregation, error)
}

// AnalysisUseCase orchestrates the posture engine, persistence,
// caching, and the upstream detector.
type AnalysisUseCase struct {
	repo           AnalysisRepository
	cache          Cache
	detector       posedetector.Client
	analyzer       *engine.Analyzer
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// cachedAnalysis is the redis payload for a completed analysis.
type cachedAnalysis struct {
	AnalysisID         string    `json:"analysis_id"`
	UserID             string    `json:"user_id"`
	PrimaryDysfunction string    `json:"primary_dysfunction"`
	WorstSeverity      string    `json:"worst_severity"`
	ResultJSON         string    `json:"result_json"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewAnalysisUseCase constructs a new use case instance. The detector
// may be nil when the deployment only accepts pre-detected landmarks.
func NewAnalysisUseCase(repo AnalysisRepository, cache Cache, detector posedetector.Client, logger *zap.Logger) *AnalysisUseCase {
	return &AnalysisUseCase{
		repo:           repo,
		cache:          cache,
		detector:       detector,
		analyzer:       engine.NewAnalyzer(nil),
		logger:         logger.Named("analysis_usecase"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// ErrDetectorUnavailable is returned when the image path is requested
// without a configured pose detector.
var ErrDetectorUnavailable = errors.New("pose detector not configured")

// AnalyzePosture runs the engine over two pre-detected views and
// persists and caches the outcome.
func (uc *AnalysisUseCase) AnalyzePosture(ctx context.Context, userID string, frontal, sagittal *engine.DetectionResult) (string, *engine.AnalysisResult, error) {
	analysisID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.analyze_posture", analysisID)

	cacheKey := analysisCacheKey(analysisID)
	if err := uc.withRedisRetry(ctx, analysisID, "cache.set.processing", func() error {
		return uc.cache.Set(ctx, cacheKey, "processing", time.Minute)
	}); err != nil {
		opLogger.Error("failed to set processing flag", zap.Error(err))
		return "", nil, err
	}

	result, err := uc.analyzer.Analyze(frontal, sagittal)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.engine_analyze", analysisID, err)
		opLogger.Error("engine analysis failed", zap.Error(wrapped))
		return "", nil, wrapped
	}

	serializedResult, err := json.Marshal(result)
	if err != nil {
		opLogger.Error("failed to serialize analysis result", zap.Error(err))
		return "", nil, err
	}

	record := &repository.AnalysisRecord{
		AnalysisID:           analysisID,
		UserID:               userID,
		PrimaryDysfunction:   result.PrimaryDysfunction,
		WorstSeverity:        string(worstSeverity(result.Classifications)),
		CraniovertebralAngle: result.Metrics.HeadPosture.CraniovertebralAngle,
		ClassificationCount:  len(result.Classifications),
		ResultJSON:           string(serializedResult),
		CreatedAt:            time.Now().UTC(),
	}
	if err := uc.repo.Save(ctx, record); err != nil {
		wrapped := logging.NewOperationError("usecase.save_analysis", analysisID, err)
		opLogger.Error("failed to persist analysis record", zap.Error(wrapped))
		return "", nil, wrapped
	}

	cached := cachedAnalysis{
		AnalysisID:         analysisID,
		UserID:             userID,
		PrimaryDysfunction: record.PrimaryDysfunction,
		WorstSeverity:      record.WorstSeverity,
		ResultJSON:         record.ResultJSON,
		CreatedAt:          record.CreatedAt,
	}
	serialized, err := json.Marshal(cached)
	if err != nil {
		opLogger.Error("failed to serialize cache payload", zap.Error(err))
		return "", nil, err
	}

	if err := uc.withRedisRetry(ctx, analysisID, "cache.set.result", func() error {
		return uc.cache.Set(ctx, cacheKey, string(serialized), 5*time.Minute)
	}); err != nil {
		opLogger.Error("failed to cache analysis result", zap.Error(err))
		return "", nil, err
	}

	return analysisID, result, nil
}

// AnalyzeImages forwards the two view images to the pose detector and
// runs the landmark path on the detections.
func (uc *AnalysisUseCase) AnalyzeImages(ctx context.Context, userID string, frontalImage, sagittalImage []byte) (string, *engine.AnalysisResult, error) {
	if uc.detector == nil {
		return "", nil, ErrDetectorUnavailable
	}

	frontal, err := uc.detector.Detect(ctx, posedetector.ViewFrontal, frontalImage)
	if err != nil {
		return "", nil, logging.NewOperationError("usecase.detect_frontal", "", err)
	}
	sagittal, err := uc.detector.Detect(ctx, posedetector.ViewSagittal, sagittalImage)
	if err != nil {
		return "", nil, logging.NewOperationError("usecase.detect_sagittal", "", err)
	}

	return uc.AnalyzePosture(ctx, userID, frontal, sagittal)
}

// GetResult retrieves a cached analysis or falls back to persistence.
func (uc *AnalysisUseCase) GetResult(ctx context.Context, userID, analysisID string) (*repository.AnalysisRecord, error) {
	cacheKey := analysisCacheKey(analysisID)
	if cached, err := uc.withRedisGet(ctx, analysisID, "cache.get.result", cacheKey); err == nil {
		var payload cachedAnalysis
		if err := json.Unmarshal([]byte(cached), &payload); err != nil {
			logging.WithOperation(uc.logger, "usecase.get_result", analysisID).Warn("failed to decode cached result", zap.Error(err))
		} else if payload.AnalysisID != "" && payload.UserID == userID {
			return &repository.AnalysisRecord{
				AnalysisID:         payload.AnalysisID,
				UserID:             payload.UserID,
				PrimaryDysfunction: payload.PrimaryDysfunction,
				WorstSeverity:      payload.WorstSeverity,
				ResultJSON:         payload.ResultJSON,
				CreatedAt:          payload.CreatedAt,
			}, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		logging.WithOperation(uc.logger, "usecase.get_result", analysisID).Warn("failed to read cache", zap.Error(err))
	}

	record, err := uc.repo.FindByAnalysisIDAndUser(ctx, analysisID, userID)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func analysisCacheKey(analysisID string) string {
	return fmt.Sprintf("analysis:%s", analysisID)
}

// worstSeverity returns the highest severity present across the
// classifications.
func worstSeverity(classifications []engine.PostureClassification) engine.Severity {
	worst := engine.SeverityMild
	for _, c := range classifications {
		switch c.Severity {
		case engine.SeveritySevere:
			return engine.SeveritySevere
		case engine.SeverityModerate:
			worst = engine.SeverityModerate
		}
	}
	return worst
}

func (uc *AnalysisUseCase) withRedisRetry(ctx context.Context, analysisID, operation string, fn func() error) error {
	if uc.retryAttempts <= 1 {
		err := fn()
		return logging.NewOperationError(operation, analysisID, err)
	}

	backoff := uc.initialBackoff
	opLogger := logging.WithOperation(uc.logger, operation, analysisID)
	var err error
	for attempt := 0; attempt < uc.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, analysisID, ctx.Err())
			case <-time.After(backoff):
			}
			if next := backoff * 2; next <= uc.maxBackoff {
				backoff = next
			}
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				opLogger.Info("redis operation succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return nil
		}

		if !isTransientError(err) || attempt == uc.retryAttempts-1 {
			opLogger.Error("redis operation failed", zap.Error(err), zap.Int("attempt", attempt+1))
			return logging.NewOperationError(operation, analysisID, err)
		}

		opLogger.Warn("transient redis error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, analysisID, err)
}

func (uc *AnalysisUseCase) withRedisGet(ctx context.Context, analysisID, operation, cacheKey string) (string, error) {
	var result string
	err := uc.withRedisRetry(ctx, analysisID, operation, func() error {
		value, err := uc.cache.Get(ctx, cacheKey)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return true
	}

	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) && temporary.Temporary() {
		return true
	}

	return false
}
