package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/issafronov/qrlink/internal/app/apperrors"
	"github.com/issafronov/qrlink/internal/app/config"
	"github.com/issafronov/qrlink/internal/app/handlers"
	"github.com/issafronov/qrlink/internal/app/models"
	"github.com/issafronov/qrlink/internal/app/service"
	"github.com/issafronov/qrlink/internal/app/session"
	"github.com/issafronov/qrlink/internal/app/storage"
	"github.com/issafronov/qrlink/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	CreateLinkFunc   func(ctx context.Context, destinationURL string) (*models.CreateResult, error)
	ListLinksFunc    func(ctx context.Context) ([]models.LinkRecord, error)
	GetLinkFunc      func(ctx context.Context, id string) (models.LinkRecord, error)
	EditLinkFunc     func(ctx context.Context, id, destinationURL string) (*models.LinkRecord, error)
	DeleteLinkFunc   func(ctx context.Context, id string) error
	PreviewFunc      func(ctx context.Context, record models.LinkRecord) ([]byte, error)
	RedirectLinkFunc func(record models.LinkRecord) (string, error)
	PingFunc         func(ctx context.Context) error
}

func (m *mockService) CreateLink(ctx context.Context, destinationURL string) (*models.CreateResult, error) {
	if m.CreateLinkFunc != nil {
		return m.CreateLinkFunc(ctx, destinationURL)
	}
	return &models.CreateResult{}, nil
}

func (m *mockService) ListLinks(ctx context.Context) ([]models.LinkRecord, error) {
	if m.ListLinksFunc != nil {
		return m.ListLinksFunc(ctx)
	}
	return nil, nil
}

func (m *mockService) GetLink(ctx context.Context, id string) (models.LinkRecord, error) {
	if m.GetLinkFunc != nil {
		return m.GetLinkFunc(ctx, id)
	}
	return models.LinkRecord{}, nil
}

func (m *mockService) EditLink(ctx context.Context, id, destinationURL string) (*models.LinkRecord, error) {
	if m.EditLinkFunc != nil {
		return m.EditLinkFunc(ctx, id, destinationURL)
	}
	return &models.LinkRecord{}, nil
}

func (m *mockService) DeleteLink(ctx context.Context, id string) error {
	if m.DeleteLinkFunc != nil {
		return m.DeleteLinkFunc(ctx, id)
	}
	return nil
}

func (m *mockService) Preview(ctx context.Context, record models.LinkRecord) ([]byte, error) {
	if m.PreviewFunc != nil {
		return m.PreviewFunc(ctx, record)
	}
	return []byte("png"), nil
}

func (m *mockService) RedirectLink(record models.LinkRecord) (string, error) {
	if m.RedirectLinkFunc != nil {
		return m.RedirectLinkFunc(record)
	}
	return "", nil
}

func (m *mockService) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

var _ service.Service = (*mockService)(nil)

func newTestHandler(t *testing.T, svc service.Service, store storage.Storage) *handlers.Handler {
	t.Helper()
	if store == nil {
		store = storage.NewMemoryStorage()
	}
	cfg := &config.Config{BaseURL: "http://localhost:8080"}
	h, err := handlers.NewHandler(cfg, svc, store, session.New(16))
	require.NoError(t, err)
	return h
}

func TestCreateLinkHandle(t *testing.T) {
	svc := &mockService{
		CreateLinkFunc: func(ctx context.Context, destinationURL string) (*models.CreateResult, error) {
			return &models.CreateResult{
				Record:      &models.LinkRecord{ID: "rec-1", DestinationURL: destinationURL},
				RedirectURL: "http://localhost:8080/q?url=https%3A%2F%2Fexample.com",
				PNG:         []byte("png-bytes"),
			}, nil
		},
	}
	h := newTestHandler(t, svc, nil)

	body, _ := json.Marshal(models.URLData{URL: "https://example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/links", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.CreateLinkHandle(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

	var response models.LinkResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	assert.Equal(t, "rec-1", response.Record.ID)
	assert.NotEmpty(t, response.QRCodeBase64)
	assert.Empty(t, response.PersistError)
}

func TestCreateLinkHandle_InvalidBody(t *testing.T) {
	h := newTestHandler(t, &mockService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/links", strings.NewReader("invalid-json"))
	w := httptest.NewRecorder()

	h.CreateLinkHandle(w, req)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestCreateLinkHandle_BlankDestination(t *testing.T) {
	svc := &mockService{
		CreateLinkFunc: func(ctx context.Context, destinationURL string) (*models.CreateResult, error) {
			return nil, apperrors.ErrInvalidDestination
		},
	}
	h := newTestHandler(t, svc, nil)

	body, _ := json.Marshal(models.URLData{URL: "   "})
	req := httptest.NewRequest(http.MethodPost, "/api/links", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.CreateLinkHandle(w, req)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestCreateLinkHandle_PersistFailureStillCreated(t *testing.T) {
	svc := &mockService{
		CreateLinkFunc: func(ctx context.Context, destinationURL string) (*models.CreateResult, error) {
			return &models.CreateResult{
				RedirectURL: "http://localhost:8080/q?url=https%3A%2F%2Fexample.com",
				PNG:         []byte("png-bytes"),
				PersistErr:  apperrors.ErrStoreUnavailable,
			}, nil
		},
	}
	h := newTestHandler(t, svc, nil)

	body, _ := json.Marshal(models.URLData{URL: "https://example.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/links", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.CreateLinkHandle(w, req)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	var response models.LinkResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	assert.Nil(t, response.Record)
	assert.NotEmpty(t, response.QRCodeBase64)
	assert.Contains(t, response.PersistError, "unavailable")
}

func TestGetLinksHandle_NoContent(t *testing.T) {
	svc := &mockService{
		ListLinksFunc: func(ctx context.Context) ([]models.LinkRecord, error) {
			return []models.LinkRecord{}, nil
		},
	}
	h := newTestHandler(t, svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
	w := httptest.NewRecorder()

	h.GetLinksHandle(w, req)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}

func TestEditLinkHandle(t *testing.T) {
	svc := &mockService{
		EditLinkFunc: func(ctx context.Context, id, destinationURL string) (*models.LinkRecord, error) {
			return &models.LinkRecord{ID: id, DestinationURL: destinationURL}, nil
		},
	}
	h := newTestHandler(t, svc, nil)

	body, _ := json.Marshal(models.URLData{URL: "https://changed.example.com"})
	req := httptest.NewRequest(http.MethodPut, "/api/links/rec-1", bytes.NewReader(body))
	req = testutils.WithURLParam(req, "id", "rec-1")
	w := httptest.NewRecorder()

	h.EditLinkHandle(w, req)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var rec models.LinkRecord
	require.NoError(t, json.NewDecoder(res.Body).Decode(&rec))
	assert.Equal(t, "https://changed.example.com", rec.DestinationURL)
}

func TestEditLinkHandle_NotFound(t *testing.T) {
	svc := &mockService{
		EditLinkFunc: func(ctx context.Context, id, destinationURL string) (*models.LinkRecord, error) {
			return nil, apperrors.ErrNotFound
		},
	}
	h := newTestHandler(t, svc, nil)

	body, _ := json.Marshal(models.URLData{URL: "https://example.com"})
	req := httptest.NewRequest(http.MethodPut, "/api/links/missing", bytes.NewReader(body))
	req = testutils.WithURLParam(req, "id", "missing")
	w := httptest.NewRecorder()

	h.EditLinkHandle(w, req)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestDeleteLinkHandle(t *testing.T) {
	svc := &mockService{}
	h := newTestHandler(t, svc, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/links/rec-1", nil)
	req = testutils.WithURLParam(req, "id", "rec-1")
	w := httptest.NewRecorder()

	h.DeleteLinkHandle(w, req)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}

func TestDeleteLinkHandle_NotFound(t *testing.T) {
	svc := &mockService{
		DeleteLinkFunc: func(ctx context.Context, id string) error {
			return apperrors.ErrNotFound
		},
	}
	h := newTestHandler(t, svc, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/links/missing", nil)
	req = testutils.WithURLParam(req, "id", "missing")
	w := httptest.NewRecorder()

	h.DeleteLinkHandle(w, req)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestPreviewHandle(t *testing.T) {
	svc := &mockService{
		GetLinkFunc: func(ctx context.Context, id string) (models.LinkRecord, error) {
			return models.LinkRecord{ID: id, DestinationURL: "https://example.com"}, nil
		},
		PreviewFunc: func(ctx context.Context, record models.LinkRecord) ([]byte, error) {
			return []byte("png-preview"), nil
		},
	}
	h := newTestHandler(t, svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/links/rec-1/qr", nil)
	req = testutils.WithURLParam(req, "id", "rec-1")
	w := httptest.NewRecorder()

	h.PreviewHandle(w, req)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
	assert.Equal(t, "png-preview", w.Body.String())
}

func TestCopyLinkHandle(t *testing.T) {
	svc := &mockService{
		GetLinkFunc: func(ctx context.Context, id string) (models.LinkRecord, error) {
			return models.LinkRecord{ID: id, DestinationURL: "https://example.com"}, nil
		},
		RedirectLinkFunc: func(record models.LinkRecord) (string, error) {
			return "http://localhost:8080/q?url=https%3A%2F%2Fexample.com", nil
		},
	}
	h := newTestHandler(t, svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/links/rec-1/copy", nil)
	req = testutils.WithURLParam(req, "id", "rec-1")
	w := httptest.NewRecorder()

	h.CopyLinkHandle(w, req)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var response map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&response))
	assert.Equal(t, "http://localhost:8080/q?url=https%3A%2F%2Fexample.com", response["redirect_url"])
}

func TestRedirectHandle_Inline(t *testing.T) {
	h := newTestHandler(t, &mockService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/q?url=https%3A%2F%2Fopenai.com", nil)
	w := httptest.NewRecorder()

	h.RedirectHandle(w, req)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, w.Body.String(), "https://openai.com")
	assert.Contains(t, w.Body.String(), "location.replace")
}

func TestRedirectHandle_ByID(t *testing.T) {
	store := storage.NewMemoryStorage()
	rec, err := store.Create(context.Background(), "example.com/path")
	require.NoError(t, err)

	h := newTestHandler(t, &mockService{}, store)

	req := httptest.NewRequest(http.MethodGet, "/q?id="+rec.ID, nil)
	w := httptest.NewRecorder()

	h.RedirectHandle(w, req)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	// схема дополняется перед использованием
	assert.Contains(t, w.Body.String(), "https://example.com/path")
}

func TestRedirectHandle_MissingPayload(t *testing.T) {
	h := newTestHandler(t, &mockService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/q", nil)
	w := httptest.NewRecorder()

	h.RedirectHandle(w, req)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, w.Body.String(), "no identifying information present")
	assert.NotContains(t, w.Body.String(), "location.replace")
}

func TestRedirectHandle_RecordRemoved(t *testing.T) {
	h := newTestHandler(t, &mockService{}, storage.NewMemoryStorage())

	req := httptest.NewRequest(http.MethodGet, "/q?id=gone", nil)
	w := httptest.NewRecorder()

	h.RedirectHandle(w, req)
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, w.Body.String(), "record not found or removed")
}

func TestRouterWiring(t *testing.T) {
	store := storage.NewMemoryStorage()
	h := newTestHandler(t, &mockService{}, store)

	r := chi.NewRouter()
	r.Get("/api/links/{id}/qr", h.PreviewHandle)

	ts := httptest.NewServer(r)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/api/links/rec-1/qr")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
