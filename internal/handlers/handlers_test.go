package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/example/posture-api/internal/auth"
	"github.com/example/posture-api/internal/engine"
	"github.com/example/posture-api/internal/repository"
	"github.com/example/posture-api/internal/usecase"
)

const testJWTSecret = "test-secret"

type stubRepository struct {
	records []*repository.AnalysisRecord
}

func (s *stubRepository) Save(ctx context.Context, record *repository.AnalysisRecord) error {
	s.records = append(s.records, record)
	return nil
}

func (s *stubRepository) FindByAnalysisIDAndUser(ctx context.Context, analysisID, userID string) (*repository.AnalysisRecord, error) {
	for _, r := range s.records {
		if r.AnalysisID == analysisID && r.UserID == userID {
			return r, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *stubRepository) AggregateSummary(ctx context.Context) (*repository.SummaryAggregation, error) {
	return &repository.SummaryAggregation{DysfunctionCounts: map[string]int64{}}, nil
}

type noopCache struct{}

func (noopCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (noopCache) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("cache miss")
}

func newTestRouter(t *testing.T) (*gin.Engine, *stubRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.MaxMultipartMemory = MaxUploadSize

	repo := &stubRepository{}
	uc := usecase.NewAnalysisUseCase(repo, noopCache{}, nil, zap.NewNop())
	RegisterRoutes(router, uc, auth.JWTMiddleware(testJWTSecret, ""))
	return router, repo
}

func testDetectionPayload(landmarkCount int) map[string]interface{} {
	landmarks := make([]map[string]float64, landmarkCount)
	for i := range landmarks {
		landmarks[i] = map[string]float64{"x": 0.5, "y": 0.5, "visibility": 0.9}
	}
	return map[string]interface{}{
		"landmarks":    landmarks,
		"confidence":   0.95,
		"image_width":  640,
		"image_height": 480,
	}
}

func TestAnalyzeRequiresAuthentication(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(map[string]interface{}{
		"frontal":  testDetectionPayload(engine.MinLandmarks),
		"sagittal": testDetectionPayload(engine.MinLandmarks),
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.Code)
	}
}

func TestAnalyzeAcceptsLandmarkPayload(t *testing.T) {
	router, repo := newTestRouter(t)

	body, _ := json.Marshal(map[string]interface{}{
		"frontal":  testDetectionPayload(engine.MinLandmarks),
		"sagittal": testDetectionPayload(engine.MinLandmarks),
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildTestToken(t, "user-123"))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.Code, resp.Body.String())
	}

	var payload struct {
		AnalysisID string                 `json:"analysis_id"`
		Result     *engine.AnalysisResult `json:"result"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.AnalysisID == "" {
		t.Fatal("expected analysis id in response")
	}
	if payload.Result == nil || len(payload.Result.Classifications) == 0 {
		t.Fatal("expected classifications in response")
	}
	if len(repo.records) != 1 || repo.records[0].UserID != "user-123" {
		t.Fatalf("expected one record owned by user-123, got %+v", repo.records)
	}
}

func TestAnalyzeRejectsShortLandmarkList(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(map[string]interface{}{
		"frontal":  testDetectionPayload(12),
		"sagittal": testDetectionPayload(engine.MinLandmarks),
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildTestToken(t, "user-123"))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.Code)
	}
}

func TestImageUploadRejectsLargePayload(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := buildImageBody(t, "image/png", bytes.Repeat([]byte("a"), MaxUploadSize+1))
	req := httptest.NewRequest(http.MethodPost, "/v1/analyses/images", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+buildTestToken(t, "user-123"))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status %d, got %d", http.StatusRequestEntityTooLarge, resp.Code)
	}
}

func TestImageUploadRejectsUnsupportedContentType(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := buildImageBody(t, "text/plain", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/v1/analyses/images", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+buildTestToken(t, "user-123"))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected status %d, got %d", http.StatusUnsupportedMediaType, resp.Code)
	}
}

func TestImageUploadWithoutDetectorIsUnavailable(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := buildImageBody(t, "image/jpeg", []byte("front-and-side"))
	req := httptest.NewRequest(http.MethodPost, "/v1/analyses/images", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+buildTestToken(t, "user-123"))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, resp.Code)
	}
}

func TestGetAnalysisScopedToOwner(t *testing.T) {
	router, repo := newTestRouter(t)
	repo.records = append(repo.records, &repository.AnalysisRecord{
		AnalysisID:         "known",
		UserID:             "user-123",
		PrimaryDysfunction: engine.SyndromeIdeal,
		ResultJSON:         `{"primary_dysfunction":"Ideal Posture"}`,
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/analyses/known", nil)
	req.Header.Set("Authorization", "Bearer "+buildTestToken(t, "someone-else"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status %d for foreign analysis, got %d", http.StatusNotFound, resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/analyses/known", nil)
	req.Header.Set("Authorization", "Bearer "+buildTestToken(t, "user-123"))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.Code, resp.Body.String())
	}
}

// buildImageBody writes a multipart form with both view images sharing
// the given content type and payload.
func buildImageBody(t *testing.T, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, field := range []string{"frontal", "sagittal"} {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="upload"`)
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("failed to create multipart part: %v", err)
		}
		if _, err := part.Write(payload); err != nil {
			t.Fatalf("failed to write payload: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	return body, writer.FormDataContentType()
}

func buildTestToken(t *testing.T, subject string) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}
