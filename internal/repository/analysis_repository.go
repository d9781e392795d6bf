package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/posture-api/internal/logging"
)

// AnalysisRecord is a persisted posture analysis. The full engine
// output is stored as JSON; the indexed columns exist for querying and
// aggregation.
type AnalysisRecord struct {
	ID                   uint      `gorm:"primaryKey"`
	AnalysisID           string    `gorm:"column:analysis_id;uniqueIndex;size:64"`
	UserID               string    `gorm:"column:user_id;index;size:64"`
	PrimaryDysfunction   string    `gorm:"column:primary_dysfunction;size:64"`
	WorstSeverity        string    `gorm:"column:worst_severity;size:16"`
	CraniovertebralAngle float64   `gorm:"column:craniovertebral_angle"`
	ClassificationCount  int       `gorm:"column:classification_count"`
	ResultJSON           string    `gorm:"column:result_json;type:text"`
	CreatedAt            time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name.
func (AnalysisRecord) TableName() string {
	return "analysis_records"
}

// SummaryAggregation is the raw aggregate pulled from the database.
type SummaryAggregation struct {
	TotalCount        int64
	SevereCount       int64
	AverageCVA        float64
	DysfunctionCounts map[string]int64
}

// AnalysisRepository provides persistence APIs for analysis records.
type AnalysisRepository struct {
	db             *gorm.DB
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewAnalysisRepository creates a repository with default retry
// settings for transient database errors.
func NewAnalysisRepository(db *gorm.DB, logger *zap.Logger) *AnalysisRepository {
	return &AnalysisRepository{
		db:             db,
		logger:         logger.Named("analysis_repository"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// AutoMigrate ensures the schema is available.
func (r *AnalysisRepository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&AnalysisRecord{})
}

// Save persists an analysis record.
func (r *AnalysisRepository) Save(ctx context.Context, record *AnalysisRecord) error {
	return r.executeWithRetry(ctx, "repository.save_analysis", record.AnalysisID, func() error {
		return r.db.WithContext(ctx).Create(record).Error
	})
}

// FindByAnalysisIDAndUser retrieves an analysis scoped to its owner.
func (r *AnalysisRepository) FindByAnalysisIDAndUser(ctx context.Context, analysisID, userID string) (*AnalysisRecord, error) {
	var record AnalysisRecord
	if err := r.db.WithContext(ctx).First(&record, "analysis_id = ? AND user_id = ?", analysisID, userID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// AggregateSummary computes service-wide analysis aggregates.
func (r *AnalysisRepository) AggregateSummary(ctx context.Context) (*SummaryAggregation, error) {
	agg := &SummaryAggregation{DysfunctionCounts: make(map[string]int64)}

	row := r.db.WithContext(ctx).
		Model(&AnalysisRecord{}).
		Select("COUNT(*), COALESCE(SUM(CASE WHEN worst_severity = 'severe' THEN 1 ELSE 0 END), 0), COALESCE(AVG(craniovertebral_angle), 0)").
		Row()
	if err := row.Scan(&agg.TotalCount, &agg.SevereCount, &agg.AverageCVA); err != nil {
		return nil, err
	}

	type dysfunctionCount struct {
		PrimaryDysfunction string
		Count              int64
	}
	var counts []dysfunctionCount
	err := r.db.WithContext(ctx).
		Model(&AnalysisRecord{}).
		Select("primary_dysfunction, COUNT(*) as count").
		Group("primary_dysfunction").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		agg.DysfunctionCounts[c.PrimaryDysfunction] = c.Count
	}

	return agg, nil
}

// executeWithRetry retries transient database failures with
// exponential backoff, wrapping the terminal error with operation
// context.
func (r *AnalysisRepository) executeWithRetry(ctx context.Context, operation, analysisID string, fn func() error) error {
	backoff := r.initialBackoff
	opLogger := logging.WithOperation(r.logger, operation, analysisID)

	var err error
	for attempt := 0; attempt < r.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, analysisID, ctx.Err())
			case <-time.After(backoff):
			}
			if next := backoff * 2; next <= r.maxBackoff {
				backoff = next
			}
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				opLogger.Info("database operation succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return nil
		}

		if !isTransientError(err) || attempt == r.retryAttempts-1 {
			opLogger.Error("database operation failed", zap.Error(err), zap.Int("attempt", attempt+1))
			return logging.NewOperationError(operation, analysisID, err)
		}

		opLogger.Warn("transient database error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, analysisID, err)
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
