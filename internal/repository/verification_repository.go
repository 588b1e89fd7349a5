package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/kyc-api/internal/logging"
)

// KycVerification is a persisted verification decision.
type KycVerification struct {
	ID        uint   `gorm:"primaryKey"`
	RequestID string `gorm:"column:request_id;uniqueIndex;size:64"`
	UserID    string `gorm:"column:user_id;index;size:64"`

	FullName       string `gorm:"column:full_name;size:256"`
	BirthDate      string `gorm:"column:birth_date;size:16"`
	DocumentNumber string `gorm:"column:document_number;size:64"`
	Nationality    string `gorm:"column:nationality;size:8"`
	FieldSource    string `gorm:"column:field_source;size:8"`

	FaceScore      float64 `gorm:"column:face_score"`
	LivenessScore  float64 `gorm:"column:liveness_score"`
	OCRConfidence  float64 `gorm:"column:ocr_confidence"`
	SanctionsScore float64 `gorm:"column:sanctions_score"`
	OverallScore   float64 `gorm:"column:overall_score"`

	Passed  bool   `gorm:"column:passed"`
	Reason  string `gorm:"column:reason;size:32"`
	Details string `gorm:"column:details;type:text"`

	SHA1Hash  string `gorm:"column:sha1_hash;index;size:40"`
	LatencyMs int64  `gorm:"column:latency_ms"`

	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name.
func (KycVerification) TableName() string {
	return "kyc_verifications"
}

// MetricsAggregation holds the raw SQL aggregates behind the metrics summary.
type MetricsAggregation struct {
	TotalCount       int64
	PassedCount      int64
	AverageOverall   float64
	AverageLatencyMs float64
}

// VerificationRepository provides persistence APIs for verification records.
type VerificationRepository struct {
	db             *gorm.DB
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewVerificationRepository creates a new repository instance.
func NewVerificationRepository(db *gorm.DB, logger *zap.Logger) *VerificationRepository {
	return &VerificationRepository{
		db:             db,
		logger:         logger.Named("verification_repository"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// AutoMigrate ensures the schema is available.
func (r *VerificationRepository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&KycVerification{})
}

// Save persists a verification record.
func (r *VerificationRepository) Save(ctx context.Context, record *KycVerification) error {
	return r.executeWithRetry(ctx, "repository.save", record.RequestID, func() error {
		return r.db.WithContext(ctx).Create(record).Error
	})
}

// FindByRequestIDAndUser retrieves a record matching the request and owner.
func (r *VerificationRepository) FindByRequestIDAndUser(ctx context.Context, requestID, userID string) (*KycVerification, error) {
	var record KycVerification
	err := r.executeWithRetry(ctx, "repository.find_by_request", requestID, func() error {
		return r.db.WithContext(ctx).First(&record, "request_id = ? AND user_id = ?", requestID, userID).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindDuplicatesByHash lists other verifications of the same user that
// uploaded a byte-identical document image.
func (r *VerificationRepository) FindDuplicatesByHash(ctx context.Context, userID, hash, excludeRequestID string) ([]*KycVerification, error) {
	if hash == "" {
		return nil, nil
	}
	var records []*KycVerification
	err := r.executeWithRetry(ctx, "repository.find_duplicates", excludeRequestID, func() error {
		return r.db.WithContext(ctx).
			Where("user_id = ? AND sha1_hash = ? AND request_id <> ?", userID, hash, excludeRequestID).
			Order("created_at DESC").
			Find(&records).Error
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// AggregateMetrics computes totals over all persisted verifications.
func (r *VerificationRepository) AggregateMetrics(ctx context.Context) (*MetricsAggregation, error) {
	var agg MetricsAggregation
	err := r.executeWithRetry(ctx, "repository.aggregate_metrics", "", func() error {
		return r.db.WithContext(ctx).
			Model(&KycVerification{}).
			Select(
				"COUNT(*) AS total_count, " +
					"COALESCE(SUM(CASE WHEN passed THEN 1 ELSE 0 END), 0) AS passed_count, " +
					"COALESCE(AVG(overall_score), 0) AS average_overall, " +
					"COALESCE(AVG(latency_ms), 0) AS average_latency_ms").
			Scan(&agg).Error
	})
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

func (r *VerificationRepository) executeWithRetry(ctx context.Context, operation, requestID string, fn func() error) error {
	if r.retryAttempts <= 1 {
		return logging.NewOperationError(operation, requestID, fn())
	}

	backoff := r.initialBackoff
	opLogger := logging.WithOperation(r.logger, operation, requestID)
	var err error
	for attempt := 0; attempt < r.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, requestID, ctx.Err())
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
			return logging.NewOperationError(operation, requestID, err)
		}

		opLogger.Warn("transient database error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, requestID, err)
}

func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) && temporary.Temporary() {
		return true
	}

	return false
}
