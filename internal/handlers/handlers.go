package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/posture-api/internal/auth"
	"github.com/example/posture-api/internal/engine"
	"github.com/example/posture-api/internal/usecase"
)

// MaxUploadSize bounds a single view image.
const MaxUploadSize = 5 << 20

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// analyzeRequest carries two pre-detected landmark sets, one per view.
type analyzeRequest struct {
	Frontal  *engine.DetectionResult `json:"frontal" binding:"required"`
	Sagittal *engine.DetectionResult `json:"sagittal" binding:"required"`
}

// RegisterRoutes wires the HTTP handlers to the Gin router.
func RegisterRoutes(router *gin.Engine, uc *usecase.AnalysisUseCase, authMiddleware gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1", authMiddleware)

	v1.POST("/analyses", func(c *gin.Context) {
		userID, ok := auth.GetUserID(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}

		var req analyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "frontal and sagittal detections are required"})
			return
		}

		analysisID, result, err := uc.AnalyzePosture(c.Request.Context(), userID, req.Frontal, req.Sagittal)
		if err != nil {
			if errors.Is(err, engine.ErrLandmarkIndex) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"analysis_id": analysisID,
			"result":      result,
		})
	})

	v1.POST("/analyses/images", func(c *gin.Context) {
		userID, ok := auth.GetUserID(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}

		frontalImage, status, err := readImagePart(c, "frontal")
		if err != nil {
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		sagittalImage, status, err := readImagePart(c, "sagittal")
		if err != nil {
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		analysisID, result, err := uc.AnalyzeImages(c.Request.Context(), userID, frontalImage, sagittalImage)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrDetectorUnavailable):
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "pose detection is not available"})
			case errors.Is(err, engine.ErrLandmarkIndex):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusBadGateway, gin.H{"error": "pose detection failed"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"analysis_id": analysisID,
			"result":      result,
		})
	})

	v1.GET("/analyses/:id", func(c *gin.Context) {
		userID, ok := auth.GetUserID(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}

		analysisID := c.Param("id")
		record, err := uc.GetResult(c.Request.Context(), userID, analysisID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"analysis_id":         record.AnalysisID,
			"user_id":             record.UserID,
			"primary_dysfunction": record.PrimaryDysfunction,
			"worst_severity":      record.WorstSeverity,
			"result":              json.RawMessage(record.ResultJSON),
			"created_at":          record.CreatedAt,
		})
	})

	v1.GET("/reports/summary", func(c *gin.Context) {
		report, err := uc.GetSummary(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, report)
	})
}

// readImagePart pulls one bounded, type-checked image out of the
// multipart form. The returned status accompanies a non-nil error.
func readImagePart(c *gin.Context, field string) ([]byte, int, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return nil, http.StatusBadRequest, errors.New(field + " image is required")
	}
	if file.Size > MaxUploadSize {
		return nil, http.StatusRequestEntityTooLarge, errors.New(field + " image exceeds the upload limit")
	}
	if err := checkImageType(file); err != nil {
		return nil, http.StatusUnsupportedMediaType, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("unable to open " + field + " image")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxUploadSize+1))
	if err != nil {
		return nil, http.StatusInternalServerError, errors.New("failed to read " + field + " image")
	}
	if len(data) > MaxUploadSize {
		return nil, http.StatusRequestEntityTooLarge, errors.New(field + " image exceeds the upload limit")
	}
	return data, http.StatusOK, nil
}

func checkImageType(file *multipart.FileHeader) error {
	contentType := file.Header.Get("Content-Type")
	if _, ok := allowedImageTypes[contentType]; !ok {
		return errors.New("unsupported image content type " + contentType)
	}
	return nil
}
