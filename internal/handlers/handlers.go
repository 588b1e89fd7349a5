package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/kyc-api/internal/auth"
	"github.com/example/kyc-api/internal/imaging"
	"github.com/example/kyc-api/internal/repository"
	"github.com/example/kyc-api/internal/usecase"
)

// MaxUploadSize caps each uploaded image.
const MaxUploadSize = 8 << 20

// VerificationService is the slice of the use case the HTTP layer needs.
type VerificationService interface {
	Verify(ctx context.Context, input usecase.VerifyInput) (*usecase.Decision, error)
	GetResult(ctx context.Context, userID, requestID string) (*repository.KycVerification, error)
	GetDuplicateReport(ctx context.Context, userID, requestID string) (*usecase.DuplicateReport, error)
	GetMetricsSummary(ctx context.Context) (*usecase.MetricsSummary, error)
}

// RegisterRoutes wires the HTTP handlers to the Gin router.
func RegisterRoutes(router *gin.Engine, svc VerificationService, authMiddleware gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/kyc", authMiddleware)

	api.POST("/verify", func(c *gin.Context) {
		userID, ok := auth.GetUserID(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}

		idFront, ok := readImagePart(c, "id_front", true)
		if !ok {
			return
		}
		selfie, ok := readImagePart(c, "selfie", true)
		if !ok {
			return
		}
		idBack, ok := readImagePart(c, "id_back", false)
		if !ok {
			return
		}

		decision, err := svc.Verify(c.Request.Context(), usecase.VerifyInput{
			UserID:    userID,
			IDFront:   idFront,
			IDBack:    idBack,
			Selfie:    selfie,
			FullName:  strings.TrimSpace(c.PostForm("full_name")),
			BirthDate: strings.TrimSpace(c.PostForm("dob")),
		})
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, usecase.ErrNoFaceOnDocument), errors.Is(err, usecase.ErrNoFaceOnSelfie):
				status = http.StatusUnprocessableEntity
			case errors.Is(err, imaging.ErrNotAnImage):
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, decision)
	})

	api.GET("/result/:id", func(c *gin.Context) {
		userID, ok := auth.GetUserID(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}
		requestID := c.Param("id")

		record, err := svc.GetResult(c.Request.Context(), userID, requestID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"request_id":      record.RequestID,
			"user_id":         record.UserID,
			"full_name":       record.FullName,
			"face_match":      record.FaceScore,
			"liveness":        record.LivenessScore,
			"ocr_confidence":  record.OCRConfidence,
			"sanctions_match": record.SanctionsScore,
			"overall":         record.OverallScore,
			"passed":          record.Passed,
			"reason":          record.Reason,
			"created_at":      record.CreatedAt,
		})
	})

	api.GET("/duplicates/:id", func(c *gin.Context) {
		userID, ok := auth.GetUserID(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}

		report, err := svc.GetDuplicateReport(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
			return
		}

		duplicates := make([]gin.H, 0, len(report.Duplicates))
		for _, d := range report.Duplicates {
			duplicates = append(duplicates, gin.H{
				"request_id": d.RequestID,
				"passed":     d.Passed,
				"reason":     d.Reason,
				"created_at": d.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"request_id":      report.Request.RequestID,
			"sha1_hash":       report.Request.SHA1Hash,
			"duplicate_count": len(duplicates),
			"duplicates":      duplicates,
		})
	})

	api.GET("/metrics/summary", func(c *gin.Context) {
		summary, err := svc.GetMetricsSummary(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate metrics"})
			return
		}
		c.JSON(http.StatusOK, summary)
	})
}

// readImagePart pulls one uploaded image out of the multipart form,
// enforcing the size cap, an image/* content type, and decodability. It
// writes the error response itself and reports success via the bool.
func readImagePart(c *gin.Context, name string, required bool) ([]byte, bool) {
	file, err := c.FormFile(name)
	if err != nil {
		if !required && errors.Is(err, http.ErrMissingFile) {
			return nil, true
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " image is required"})
		return nil, false
	}

	if file.Size > MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": name + " exceeds the upload size limit"})
		return nil, false
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": name + " must be an image"})
		return nil, false
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to open " + name})
		return nil, false
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read " + name})
		return nil, false
	}
	if len(data) > MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": name + " exceeds the upload size limit"})
		return nil, false
	}

	if _, err := imaging.Decode(data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " image upload"})
		return nil, false
	}
	return data, true
}
