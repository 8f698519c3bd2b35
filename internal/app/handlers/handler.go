package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/issafronov/qrlink/internal/app/apperrors"
	"github.com/issafronov/qrlink/internal/app/config"
	"github.com/issafronov/qrlink/internal/app/models"
	"github.com/issafronov/qrlink/internal/app/service"
	"github.com/issafronov/qrlink/internal/app/session"
	"github.com/issafronov/qrlink/internal/app/storage"
	"github.com/issafronov/qrlink/internal/middleware/logger"
)

// Handler обслуживает HTTP-интерфейс сервиса QR-ссылок
type Handler struct {
	config  *config.Config
	svc     service.Service
	storage storage.Storage
	session *session.Session
}

// NewHandler создаёт обработчик запросов
func NewHandler(config *config.Config, svc service.Service, store storage.Storage, sess *session.Session) (*Handler, error) {
	return &Handler{
		config:  config,
		svc:     svc,
		storage: store,
		session: sess,
	}, nil
}

// CreateLinkHandle создаёт QR-ссылку по JSON-запросу {"url": ...}
func (h *Handler) CreateLinkHandle(res http.ResponseWriter, req *http.Request) {
	var data models.URLData
	if err := json.NewDecoder(req.Body).Decode(&data); err != nil {
		http.Error(res, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	h.session.SetLoading(true)
	defer h.session.SetLoading(false)

	result, err := h.svc.CreateLink(req.Context(), data.URL)
	if err != nil {
		writeError(res, err)
		return
	}

	response := models.LinkResponse{
		Record:       result.Record,
		RedirectURL:  result.RedirectURL,
		QRCodeBase64: base64.StdEncoding.EncodeToString(result.PNG),
	}
	if result.PersistErr != nil {
		response.PersistError = result.PersistErr.Error()
	}

	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(res).Encode(response); err != nil {
		logger.Log.Info("Failed to encode create response", zap.Error(err))
	}
}

// GetLinksHandle возвращает все записи, новые первыми
func (h *Handler) GetLinksHandle(res http.ResponseWriter, req *http.Request) {
	links, err := h.svc.ListLinks(req.Context())
	if err != nil {
		writeError(res, err)
		return
	}

	if len(links) == 0 {
		res.WriteHeader(http.StatusNoContent)
		return
	}

	res.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(res).Encode(links); err != nil {
		logger.Log.Info("Failed to encode links response", zap.Error(err))
	}
}

// EditLinkHandle заменяет целевой URL записи
func (h *Handler) EditLinkHandle(res http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	var data models.URLData
	if err := json.NewDecoder(req.Body).Decode(&data); err != nil {
		http.Error(res, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	h.session.StartEditing(id)
	defer h.session.StopEditing()

	rec, err := h.svc.EditLink(req.Context(), id, data.URL)
	if err != nil {
		writeError(res, err)
		return
	}

	res.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(res).Encode(rec); err != nil {
		logger.Log.Info("Failed to encode edit response", zap.Error(err))
	}
}

// DeleteLinkHandle удаляет запись
func (h *Handler) DeleteLinkHandle(res http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	if err := h.svc.DeleteLink(req.Context(), id); err != nil {
		writeError(res, err)
		return
	}
	res.WriteHeader(http.StatusNoContent)
}

// PreviewHandle отдаёт PNG-превью QR-кода записи
func (h *Handler) PreviewHandle(res http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	rec, err := h.svc.GetLink(req.Context(), id)
	if err != nil {
		writeError(res, err)
		return
	}

	png, err := h.svc.Preview(req.Context(), rec)
	if err != nil {
		writeError(res, err)
		return
	}

	res.Header().Set("Content-Type", "image/png")
	if _, err := res.Write(png); err != nil {
		logger.Log.Info("Failed to write preview", zap.String("id", id), zap.Error(err))
	}
}

// CopyLinkHandle возвращает URL редиректа записи для буфера обмена
// и отмечает запись скопированной в состоянии сеанса
func (h *Handler) CopyLinkHandle(res http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	rec, err := h.svc.GetLink(req.Context(), id)
	if err != nil {
		writeError(res, err)
		return
	}

	redirectURL, err := h.svc.RedirectLink(rec)
	if err != nil {
		writeError(res, err)
		return
	}
	h.session.MarkCopied(id)

	res.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(res).Encode(map[string]string{"redirect_url": redirectURL}); err != nil {
		logger.Log.Info("Failed to encode copy response", zap.Error(err))
	}
}

// writeError сопоставляет ошибки приложения с HTTP-статусами
func writeError(res http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidDestination):
		http.Error(res, err.Error(), http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrNotFound):
		http.Error(res, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		http.Error(res, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
	default:
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
