package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"winelist/internal/domain"
	"winelist/internal/export"
	"winelist/internal/handler"
	"winelist/internal/middleware"
	"winelist/internal/service"
	"winelist/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setAuthContext(c *gin.Context, userID uuid.UUID) {
	c.Set(middleware.ContextKeyUserID, userID)
	c.Set(middleware.ContextKeyRole, "authenticated")
}

func newImportRequest(t *testing.T, body interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, "/ocr-wine-import", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestImportHandler_Import_Success(t *testing.T) {
	mockSvc := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockSvc)

	userID := uuid.New()
	restaurantID := uuid.New()
	jobID := uuid.New()

	mockSvc.On("Import", mock.Anything, service.ImportInput{
		UserID:       userID,
		RestaurantID: restaurantID,
		Bucket:       "wine-lists",
		Path:         "r1/carta.pdf",
	}).Return(&service.ImportResult{
		JobID:         jobID,
		Items:         []domain.WineItem{{Nome: "Lugana", Prezzo: "22", Confidence: 0.85}},
		RawOCRPreview: "Lugana\n22",
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = newImportRequest(t, handler.ImportRequest{
		RistoranteID:  restaurantID.String(),
		StorageBucket: "wine-lists",
		StoragePath:   "r1/carta.pdf",
	})
	setAuthContext(c, userID)

	h.Import(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, jobID.String(), resp["job_id"])
	assert.Equal(t, "Lugana\n22", resp["raw_ocr_preview"])
	items := resp["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Lugana", items[0].(map[string]interface{})["nome"])
	mockSvc.AssertExpectations(t)
}

func TestImportHandler_Import_EmptyItemsSerializeAsArray(t *testing.T) {
	mockSvc := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockSvc)

	mockSvc.On("Import", mock.Anything, mock.Anything).
		Return(&service.ImportResult{JobID: uuid.New(), Items: []domain.WineItem{}}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = newImportRequest(t, handler.ImportRequest{RistoranteID: uuid.NewString(), StorageBucket: "b", StoragePath: "p.jpg"})
	setAuthContext(c, uuid.New())

	h.Import(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)
}

func TestImportHandler_Import_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"ristorante_id":`},
		{"missing restaurant", `{"storage_bucket":"b","storage_path":"p"}`},
		{"missing bucket", `{"ristorante_id":"` + uuid.NewString() + `","storage_path":"p"}`},
		{"blank path", `{"ristorante_id":"` + uuid.NewString() + `","storage_bucket":"b","storage_path":"  "}`},
		{"invalid restaurant id", `{"ristorante_id":"nope","storage_bucket":"b","storage_path":"p"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(mocks.MockImportService)
			h := handler.NewImportHandler(mockSvc)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodPost, "/ocr-wine-import", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")
			setAuthContext(c, uuid.New())

			h.Import(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
			mockSvc.AssertNotCalled(t, "Import", mock.Anything, mock.Anything)
		})
	}
}

func TestImportHandler_Import_NoUserContext(t *testing.T) {
	mockSvc := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = newImportRequest(t, handler.ImportRequest{RistoranteID: uuid.NewString(), StorageBucket: "b", StoragePath: "p"})

	h.Import(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestImportHandler_Import_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"subscription", domain.ErrSubscriptionRequired, http.StatusPaymentRequired, "subscription required"},
		{"not owner", domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"restaurant missing", domain.ErrRestaurantNotFound, http.StatusNotFound, "restaurant not found"},
		{"unsupported file", errors.Join(errors.New("ocr"), domain.ErrUnsupportedFileType), http.StatusBadRequest, "unsupported file type"},
		{"upstream", &domain.UpstreamError{Service: "vision", StatusCode: 503, Body: "backend down"}, http.StatusInternalServerError, "vision error (status 503): backend down"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "disk on fire"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(mocks.MockImportService)
			h := handler.NewImportHandler(mockSvc)
			mockSvc.On("Import", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = newImportRequest(t, handler.ImportRequest{RistoranteID: uuid.NewString(), StorageBucket: "b", StoragePath: "p"})
			setAuthContext(c, uuid.New())

			h.Import(c)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestImportHandler_GetJob(t *testing.T) {
	mockSvc := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockSvc)

	userID := uuid.New()
	jobID := uuid.New()
	mockSvc.On("GetJob", mock.Anything, userID, jobID).Return(&service.JobDetail{
		Job:   &domain.ImportJob{ID: jobID, Status: domain.JobStatusDone, Progress: 100},
		Items: []domain.ImportItem{{JobID: jobID, NameGuess: "Soave", PriceGuess: "18"}},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/ocr-wine-import/jobs/"+jobID.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}
	setAuthContext(c, userID)

	h.GetJob(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp service.JobDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.JobStatusDone, resp.Job.Status)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Soave", resp.Items[0].NameGuess)
}

func TestImportHandler_GetJob_InvalidID(t *testing.T) {
	mockSvc := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/ocr-wine-import/jobs/abc", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	setAuthContext(c, uuid.New())

	h.GetJob(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid id", w.Body.String())
}

func TestImportHandler_GetJob_NotFound(t *testing.T) {
	mockSvc := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockSvc)
	jobID := uuid.New()
	mockSvc.On("GetJob", mock.Anything, mock.Anything, jobID).Return(nil, domain.ErrJobNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}
	setAuthContext(c, uuid.New())

	h.GetJob(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "import job not found", w.Body.String())
}

func TestImportHandler_Export(t *testing.T) {
	mockSvc := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockSvc)

	userID := uuid.New()
	jobID := uuid.New()
	mockSvc.On("ExportJob", mock.Anything, userID, jobID, export.FormatCSV).Return(&service.ExportResult{
		URL: "https://signed.example/x.csv", Key: "exports/r/x.csv", Format: "csv", ExpiresIn: 3600,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/ocr-wine-import/jobs/"+jobID.String()+"/export?format=csv", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}
	setAuthContext(c, userID)

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://signed.example/x.csv", resp["url"])
	assert.Equal(t, float64(3600), resp["expires_in"])
	mockSvc.AssertExpectations(t)
}

func TestImportHandler_Export_DefaultsToXLSX(t *testing.T) {
	mockSvc := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockSvc)
	jobID := uuid.New()
	mockSvc.On("ExportJob", mock.Anything, mock.Anything, jobID, export.FormatXLSX).
		Return(&service.ExportResult{URL: "u", Format: "xlsx"}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/x", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}
	setAuthContext(c, uuid.New())

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestImportHandler_Export_UnknownFormat(t *testing.T) {
	mockSvc := new(mocks.MockImportService)
	h := handler.NewImportHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/x?format=pdf", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: uuid.NewString()}}
	setAuthContext(c, uuid.New())

	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "ExportJob", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
