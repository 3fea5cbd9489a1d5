package router_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"winelist/internal/domain"
	"winelist/internal/handler"
	"winelist/internal/router"
	"winelist/internal/service"
	"winelist/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testRouter struct {
	engine  *gin.Engine
	auth    *mocks.MockAuthService
	imports *mocks.MockImportService
}

func newTestRouter(t *testing.T) *testRouter {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	auth := new(mocks.MockAuthService)
	imports := new(mocks.MockImportService)
	engine := router.Setup(
		auth,
		handler.NewImportHandler(imports),
		handler.NewHealthHandler(sqlx.NewDb(db, "pgx")),
		[]string{"https://app.example.com"},
	)
	return &testRouter{engine: engine, auth: auth, imports: imports}
}

func (tr *testRouter) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	tr.engine.ServeHTTP(w, req)
	return w
}

func TestRouter_Healthz(t *testing.T) {
	tr := newTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	w := tr.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_ImportRequiresToken(t *testing.T) {
	tr := newTestRouter(t)

	req, _ := http.NewRequest(http.MethodPost, "/ocr-wine-import", bytes.NewBufferString(`{}`))
	w := tr.do(req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	tr.imports.AssertNotCalled(t, "Import", mock.Anything, mock.Anything)
}

func TestRouter_ImportAuthenticated(t *testing.T) {
	tr := newTestRouter(t)
	userID := uuid.New()
	restaurantID := uuid.New()

	tr.auth.On("ValidateToken", "tok").Return(&service.Claims{UserID: userID}, nil)
	tr.imports.On("Import", mock.Anything, service.ImportInput{
		UserID: userID, RestaurantID: restaurantID, Bucket: "b", Path: "p.pdf",
	}).Return(&service.ImportResult{JobID: uuid.New(), Items: []domain.WineItem{}}, nil)

	body := `{"ristorante_id":"` + restaurantID.String() + `","storage_bucket":"b","storage_path":"p.pdf"}`
	req, _ := http.NewRequest(http.MethodPost, "/ocr-wine-import", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer tok")
	req.Header.Set("Content-Type", "application/json")
	w := tr.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	tr.imports.AssertExpectations(t)
}

func TestRouter_WrongMethod(t *testing.T) {
	tr := newTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/ocr-wine-import", http.NoBody)
	w := tr.do(req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "method not allowed", w.Body.String())
}

func TestRouter_Preflight(t *testing.T) {
	tr := newTestRouter(t)

	req, _ := http.NewRequest(http.MethodOptions, "/ocr-wine-import", http.NoBody)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := tr.do(req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	tr.auth.AssertNotCalled(t, "ValidateToken", mock.Anything)
}

func TestRouter_UnknownRoute(t *testing.T) {
	tr := newTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/nope", http.NoBody)
	w := tr.do(req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not found", w.Body.String())
}

func TestRouter_SwaggerDoc(t *testing.T) {
	tr := newTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/swagger/doc.json", http.NoBody)
	w := tr.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/ocr-wine-import")
}
