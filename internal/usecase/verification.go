package usecase

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/kyc-api/internal/docfields"
	"github.com/example/kyc-api/internal/faceengine"
	"github.com/example/kyc-api/internal/imaging"
	"github.com/example/kyc-api/internal/liveness"
	"github.com/example/kyc-api/internal/logging"
	"github.com/example/kyc-api/internal/metrics"
	"github.com/example/kyc-api/internal/mrz"
	"github.com/example/kyc-api/internal/repository"
	"github.com/example/kyc-api/internal/sanctions"
)

// Aggregation weights for the overall score.
const (
	faceWeight      = 0.55
	livenessWeight  = 0.20
	ocrWeight       = 0.15
	sanctionsWeight = 0.10
)

var (
	// ErrNoFaceOnDocument means the engine found no face on the ID image.
	ErrNoFaceOnDocument = errors.New("no face detected on the document image")
	// ErrNoFaceOnSelfie means the engine found no face on the selfie.
	ErrNoFaceOnSelfie = errors.New("no face detected on the selfie image")
)

// VerificationRepository defines the persistence operations needed by the use case.
type VerificationRepository interface {
	Save(ctx context.Context, record *repository.KycVerification) error
	FindByRequestIDAndUser(ctx context.Context, requestID, userID string) (*repository.KycVerification, error)
	FindDuplicatesByHash(ctx context.Context, userID, hash, excludeRequestID string) ([]*repository.KycVerification, error)
	AggregateMetrics(ctx context.Context) (*repository.MetricsAggregation, error)
}

// SanctionsScreener screens a name against sanctions and PEP lists.
type SanctionsScreener interface {
	Query(ctx context.Context, name, birthDate string, topK int) ([]sanctions.Match, error)
}

// Thresholds are the decision knobs of the pipeline.
type Thresholds struct {
	FacePass      float64
	LivenessPass  float64
	SanctionsFlag float64
	SanctionsTopK int
}

// VerifyInput carries one upload's worth of request data.
type VerifyInput struct {
	UserID  string
	IDFront []byte
	IDBack  []byte
	Selfie  []byte

	// Caller-declared values, used only when neither MRZ nor OCR yields
	// the field.
	FullName  string
	BirthDate string
}

// ExtractedFields are the merged identity attributes of one verification.
type ExtractedFields struct {
	FullName       string `json:"full_name,omitempty"`
	BirthDate      string `json:"dob,omitempty"`
	DocumentNumber string `json:"document_number,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
	ExpiryDate     string `json:"expiry_date,omitempty"`
	Address        string `json:"address,omitempty"`
	Source         string `json:"source"`
}

// Scores are the numeric outputs of each pipeline stage.
type Scores struct {
	FaceMatch      float64 `json:"face_match"`
	Liveness       float64 `json:"liveness"`
	OCRConfidence  float64 `json:"ocr_confidence"`
	SanctionsMatch float64 `json:"sanctions_match"`
	Overall        float64 `json:"overall"`
}

// Decision is the aggregated outcome of one verification request.
type Decision struct {
	RequestID        string            `json:"request_id"`
	Extracted        ExtractedFields   `json:"extracted"`
	Scores           Scores            `json:"scores"`
	SanctionsMatches []sanctions.Match `json:"sanctions_matches"`
	Passed           bool              `json:"passed"`
	Reason           string            `json:"reason"`
}

// DuplicateReport lists verifications of the same user sharing a document image.
type DuplicateReport struct {
	Request    *repository.KycVerification
	Duplicates []*repository.KycVerification
}

// VerificationUseCase runs the KYC pipeline and owns caching and persistence
// of its decisions.
type VerificationUseCase struct {
	repo           VerificationRepository
	cache          Cache
	engine         faceengine.Client
	screener       SanctionsScreener
	logger         *zap.Logger
	thresholds     Thresholds
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

type cachedDecision struct {
	RequestID      string    `json:"request_id"`
	UserID         string    `json:"user_id"`
	FullName       string    `json:"full_name"`
	FaceScore      float64   `json:"face_score"`
	LivenessScore  float64   `json:"liveness_score"`
	OCRConfidence  float64   `json:"ocr_confidence"`
	SanctionsScore float64   `json:"sanctions_score"`
	OverallScore   float64   `json:"overall_score"`
	Passed         bool      `json:"passed"`
	Reason         string    `json:"reason"`
	Hash           string    `json:"sha1_hash"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewVerificationUseCase constructs a new use case instance.
func NewVerificationUseCase(repo VerificationRepository, cache Cache, engine faceengine.Client, screener SanctionsScreener, thresholds Thresholds, logger *zap.Logger) *VerificationUseCase {
	return &VerificationUseCase{
		repo:           repo,
		cache:          cache,
		engine:         engine,
		screener:       screener,
		logger:         logger.Named("verification_usecase"),
		thresholds:     thresholds,
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// Verify runs the full pipeline for one upload: MRZ and OCR extraction, face
// matching, the liveness heuristic, sanctions screening, aggregation, then
// persistence and caching of the decision.
func (uc *VerificationUseCase) Verify(ctx context.Context, input VerifyInput) (*Decision, error) {
	requestID := uuid.NewString()
	started := time.Now()
	opLogger := logging.WithOperation(uc.logger, "usecase.verify", requestID)

	cacheKey := fmt.Sprintf("kyc:decision:%s", requestID)
	if err := uc.withRedisRetry(ctx, requestID, "cache.set.processing", func() error {
		return uc.cache.Set(ctx, cacheKey, "processing", time.Minute)
	}); err != nil {
		opLogger.Error("failed to set processing flag", zap.Error(err))
		return nil, err
	}

	extracted := uc.extractFields(ctx, requestID, input)

	faceScore, err := uc.matchFaces(ctx, requestID, input)
	if err != nil {
		return nil, err
	}

	liveScore, err := uc.scoreLiveness(requestID, input.Selfie)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.liveness", requestID, err)
		opLogger.Error("liveness scoring failed", zap.Error(wrapped))
		metrics.VerificationErrors.WithLabelValues("liveness").Inc()
		return nil, wrapped
	}

	matches, sanctionsScore, sanctionsFlag := uc.screenSanctions(ctx, requestID, extracted.FullName, extracted.BirthDate)

	ocrConf := extracted.ocrConfidence
	scores := aggregate(faceScore, liveScore, ocrConf, sanctionsScore, uc.thresholds.FacePass)

	passed := faceScore >= uc.thresholds.FacePass &&
		liveScore >= uc.thresholds.LivenessPass &&
		!sanctionsFlag
	reason := decideReason(faceScore, liveScore, sanctionsFlag, uc.thresholds)

	decision := &Decision{
		RequestID:        requestID,
		Extracted:        extracted.ExtractedFields,
		Scores:           scores,
		SanctionsMatches: matches,
		Passed:           passed,
		Reason:           reason,
	}

	hash := sha1.Sum(input.IDFront)
	hashHex := hex.EncodeToString(hash[:])
	record := &repository.KycVerification{
		RequestID:      requestID,
		UserID:         input.UserID,
		FullName:       extracted.FullName,
		BirthDate:      extracted.BirthDate,
		DocumentNumber: extracted.DocumentNumber,
		Nationality:    extracted.Nationality,
		FieldSource:    extracted.Source,
		FaceScore:      scores.FaceMatch,
		LivenessScore:  scores.Liveness,
		OCRConfidence:  scores.OCRConfidence,
		SanctionsScore: scores.SanctionsMatch,
		OverallScore:   scores.Overall,
		Passed:         passed,
		Reason:         reason,
		SHA1Hash:       hashHex,
		LatencyMs:      time.Since(started).Milliseconds(),
		CreatedAt:      time.Now().UTC(),
	}
	record.Details = fmt.Sprintf("passed:%t reason:%s overall:%.4f hash:%s", passed, reason, scores.Overall, hashHex)

	if err := uc.repo.Save(ctx, record); err != nil {
		wrapped := logging.NewOperationError("usecase.save_record", requestID, err)
		opLogger.Error("failed to persist verification record", zap.Error(wrapped))
		metrics.VerificationErrors.WithLabelValues("persist").Inc()
		return nil, wrapped
	}

	cached := cachedDecision{
		RequestID:      record.RequestID,
		UserID:         record.UserID,
		FullName:       record.FullName,
		FaceScore:      record.FaceScore,
		LivenessScore:  record.LivenessScore,
		OCRConfidence:  record.OCRConfidence,
		SanctionsScore: record.SanctionsScore,
		OverallScore:   record.OverallScore,
		Passed:         record.Passed,
		Reason:         record.Reason,
		Hash:           record.SHA1Hash,
		CreatedAt:      record.CreatedAt,
	}
	serialized, err := json.Marshal(cached)
	if err != nil {
		opLogger.Error("failed to serialize decision", zap.Error(err))
		return nil, err
	}
	if err := uc.withRedisRetry(ctx, requestID, "cache.set.decision", func() error {
		return uc.cache.Set(ctx, cacheKey, string(serialized), 5*time.Minute)
	}); err != nil {
		opLogger.Error("failed to cache decision", zap.Error(err))
		return nil, err
	}

	metrics.VerificationsTotal.WithLabelValues(reason).Inc()
	return decision, nil
}

type mergedFields struct {
	ExtractedFields
	ocrConfidence float64
}

// extractFields runs MRZ then OCR over the document images and merges the
// results. MRZ values win, then OCR, then caller-declared form values. A
// failing MRZ read degrades to OCR-only and a failing OCR read degrades to
// MRZ-plus-form: extraction never fails the request on its own.
func (uc *VerificationUseCase) extractFields(ctx context.Context, requestID string, input VerifyInput) mergedFields {
	opLogger := logging.WithOperation(uc.logger, "usecase.extract_fields", requestID)

	var mrzRecord *mrz.Record
	mrzStart := time.Now()
	lines, err := uc.engine.ReadMRZLines(ctx, input.IDFront)
	if err != nil {
		opLogger.Warn("mrz read failed, falling back to ocr", zap.Error(err))
	} else if len(lines) > 0 {
		rec, parseErr := mrz.Parse(lines)
		if parseErr != nil {
			opLogger.Debug("mrz parse rejected lines", zap.Error(parseErr))
		} else {
			mrzRecord = rec
		}
	}
	metrics.StageDuration.WithLabelValues("mrz").Observe(time.Since(mrzStart).Seconds())

	ocrStart := time.Now()
	pages := make([][]faceengine.Word, 0, 2)
	frontWords, err := uc.engine.RecognizeText(ctx, input.IDFront)
	if err != nil {
		opLogger.Warn("front ocr failed", zap.Error(err))
	} else {
		pages = append(pages, frontWords)
	}
	if len(input.IDBack) > 0 {
		backWords, err := uc.engine.RecognizeText(ctx, input.IDBack)
		if err != nil {
			opLogger.Warn("back ocr failed", zap.Error(err))
		} else {
			pages = append(pages, backWords)
		}
	}
	ocrFields, ocrConf := docfields.Extract(pages...)
	metrics.StageDuration.WithLabelValues("ocr").Observe(time.Since(ocrStart).Seconds())

	if mrzRecord == nil {
		mrzRecord = &mrz.Record{}
	}

	merged := mergedFields{ocrConfidence: ocrConf}
	merged.FullName = firstNonEmpty(mrzRecord.FullName, ocrFields.FullName, input.FullName)
	merged.BirthDate = firstNonEmpty(mrzRecord.BirthDate, ocrFields.BirthDate, input.BirthDate)
	merged.DocumentNumber = firstNonEmpty(mrzRecord.DocumentNumber, ocrFields.DocumentNumber)
	merged.Nationality = firstNonEmpty(mrzRecord.Nationality, ocrFields.Nationality)
	merged.ExpiryDate = firstNonEmpty(mrzRecord.ExpiryDate, ocrFields.ExpiryDate)
	merged.Address = ocrFields.Address
	merged.Source = "ocr"
	if mrzRecord.DocumentNumber != "" {
		merged.Source = "mrz"
	}
	return merged
}

func (uc *VerificationUseCase) matchFaces(ctx context.Context, requestID string, input VerifyInput) (float64, error) {
	opLogger := logging.WithOperation(uc.logger, "usecase.match_faces", requestID)
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("face").Observe(time.Since(start).Seconds())
	}()

	docFace, err := uc.engine.DetectAndEmbed(ctx, input.IDFront)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.detect_document_face", requestID, err)
		opLogger.Error("document face detection failed", zap.Error(wrapped))
		metrics.VerificationErrors.WithLabelValues("face").Inc()
		return 0, wrapped
	}
	if docFace == nil {
		return 0, ErrNoFaceOnDocument
	}

	selfieFace, err := uc.engine.DetectAndEmbed(ctx, input.Selfie)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.detect_selfie_face", requestID, err)
		opLogger.Error("selfie face detection failed", zap.Error(wrapped))
		metrics.VerificationErrors.WithLabelValues("face").Inc()
		return 0, wrapped
	}
	if selfieFace == nil {
		return 0, ErrNoFaceOnSelfie
	}

	return CosineSimilarity(docFace.Embedding, selfieFace.Embedding), nil
}

func (uc *VerificationUseCase) scoreLiveness(requestID string, selfie []byte) (float64, error) {
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("liveness").Observe(time.Since(start).Seconds())
	}()

	img, err := imaging.Decode(selfie)
	if err != nil {
		return 0, err
	}
	return liveness.Score(img), nil
}

// screenSanctions never fails the request: any lookup error degrades to an
// empty match list.
func (uc *VerificationUseCase) screenSanctions(ctx context.Context, requestID, fullName, birthDate string) ([]sanctions.Match, float64, bool) {
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("sanctions").Observe(time.Since(start).Seconds())
	}()

	if fullName == "" {
		return []sanctions.Match{}, 0, false
	}

	matches, err := uc.screener.Query(ctx, fullName, birthDate, uc.thresholds.SanctionsTopK)
	if err != nil {
		logging.WithOperation(uc.logger, "usecase.screen_sanctions", requestID).
			Warn("sanctions lookup failed, continuing without matches", zap.Error(err))
		metrics.SanctionsLookupFailures.Inc()
		return []sanctions.Match{}, 0, false
	}
	if len(matches) == 0 {
		return []sanctions.Match{}, 0, false
	}

	top := matches[0].Score
	return matches, top, top >= uc.thresholds.SanctionsFlag
}

// CosineSimilarity compares two embeddings. Either side nil or zero-length
// scores 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA)*math.Sqrt(normB) + 1e-9
	return dot / denom
}

func aggregate(face, live, ocr, sanctionsScore, facePass float64) Scores {
	faceComponent := clamp01((face - facePass + 0.2) / 0.2)
	liveComponent := clamp01(live)
	ocrComponent := clamp01(ocr)
	sanctionsComponent := clamp01(1.0 - sanctionsScore)

	overall := faceWeight*faceComponent +
		livenessWeight*liveComponent +
		ocrWeight*ocrComponent +
		sanctionsWeight*sanctionsComponent

	return Scores{
		FaceMatch:      face,
		Liveness:       live,
		OCRConfidence:  ocr,
		SanctionsMatch: sanctionsScore,
		Overall:        overall,
	}
}

func decideReason(face, live float64, sanctionsFlag bool, t Thresholds) string {
	switch {
	case sanctionsFlag:
		return "sanctions_flag"
	case face < t.FacePass:
		return "low_face_match"
	case live < t.LivenessPass:
		return "low_liveness"
	default:
		return "ok"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// GetResult retrieves a cached decision or falls back to persistence.
func (uc *VerificationUseCase) GetResult(ctx context.Context, userID, requestID string) (*repository.KycVerification, error) {
	cacheKey := fmt.Sprintf("kyc:decision:%s", requestID)
	if cached, err := uc.withRedisGet(ctx, requestID, "cache.get.decision", cacheKey); err == nil {
		var payload cachedDecision
		if err := json.Unmarshal([]byte(cached), &payload); err != nil {
			logging.WithOperation(uc.logger, "usecase.get_result", requestID).Warn("failed to decode cached decision", zap.Error(err))
			metrics.CacheHits.WithLabelValues("decode_error").Inc()
		} else {
			metrics.CacheHits.WithLabelValues("hit").Inc()
			record := &repository.KycVerification{
				RequestID:      requestID,
				UserID:         userID,
				FullName:       payload.FullName,
				FaceScore:      payload.FaceScore,
				LivenessScore:  payload.LivenessScore,
				OCRConfidence:  payload.OCRConfidence,
				SanctionsScore: payload.SanctionsScore,
				OverallScore:   payload.OverallScore,
				Passed:         payload.Passed,
				Reason:         payload.Reason,
				SHA1Hash:       payload.Hash,
				CreatedAt:      payload.CreatedAt,
			}
			if payload.UserID != "" {
				record.UserID = payload.UserID
			}
			if payload.RequestID != "" {
				record.RequestID = payload.RequestID
			}
			return record, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		logging.WithOperation(uc.logger, "usecase.get_result", requestID).Warn("failed to read cache", zap.Error(err))
	} else {
		metrics.CacheHits.WithLabelValues("miss").Inc()
	}

	record, err := uc.repo.FindByRequestIDAndUser(ctx, requestID, userID)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetDuplicateReport builds a duplicate detection report for a verification request.
func (uc *VerificationUseCase) GetDuplicateReport(ctx context.Context, userID, requestID string) (*DuplicateReport, error) {
	record, err := uc.repo.FindByRequestIDAndUser(ctx, requestID, userID)
	if err != nil {
		return nil, err
	}

	duplicates, err := uc.repo.FindDuplicatesByHash(ctx, userID, record.SHA1Hash, record.RequestID)
	if err != nil {
		return nil, err
	}

	return &DuplicateReport{
		Request:    record,
		Duplicates: duplicates,
	}, nil
}

func (uc *VerificationUseCase) withRedisRetry(ctx context.Context, requestID, operation string, fn func() error) error {
	if uc.retryAttempts <= 1 {
		return logging.NewOperationError(operation, requestID, fn())
	}

	backoff := uc.initialBackoff
	opLogger := logging.WithOperation(uc.logger, operation, requestID)
	var err error
	for attempt := 0; attempt < uc.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, requestID, ctx.Err())
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
			return logging.NewOperationError(operation, requestID, err)
		}

		opLogger.Warn("transient redis error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, requestID, err)
}

func (uc *VerificationUseCase) withRedisGet(ctx context.Context, requestID, operation, cacheKey string) (string, error) {
	var result string
	err := uc.withRedisRetry(ctx, requestID, operation, func() error {
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
