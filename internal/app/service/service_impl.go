package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/issafronov/qrlink/internal/app/apperrors"
	"github.com/issafronov/qrlink/internal/app/models"
	"github.com/issafronov/qrlink/internal/app/payload"
	"github.com/issafronov/qrlink/internal/app/qrencode"
	"github.com/issafronov/qrlink/internal/app/session"
	"github.com/issafronov/qrlink/internal/app/storage"
	"github.com/issafronov/qrlink/internal/middleware/logger"
)

type qrlinkService struct {
	storage storage.Storage
	encoder qrencode.Encoder
	session *session.Session
	baseURL string
}

// NewService создаёт новый экземпляр сервиса
func NewService(storage storage.Storage, encoder qrencode.Encoder, sess *session.Session, baseURL string) Service {
	return &qrlinkService{
		storage: storage,
		encoder: encoder,
		session: sess,
		baseURL: baseURL,
	}
}

// CreateLink рендерит QR-код и сохраняет запись
func (s *qrlinkService) CreateLink(ctx context.Context, destinationURL string) (*models.CreateResult, error) {
	trimmed := strings.TrimSpace(destinationURL)
	if trimmed == "" {
		return nil, apperrors.ErrInvalidDestination
	}

	encoded, err := payload.EncodeInline(trimmed)
	if err != nil {
		return nil, err
	}
	redirectURL := payload.RedirectURL(s.baseURL, encoded)

	png, err := s.encoder.Render(redirectURL, qrencode.DefaultOptions)
	if err != nil {
		logger.Log.Info("Failed to render QR code", zap.Error(err))
		return nil, err
	}

	result := &models.CreateResult{
		RedirectURL: redirectURL,
		PNG:         png,
	}

	rec, err := s.storage.Create(ctx, trimmed)
	if err != nil {
		// код уже отрендерен и пригоден к использованию, поэтому сбой
		// сохранения не отменяет результат, а возвращается рядом с ним
		logger.Log.Info("Failed to persist link record", zap.Error(err))
		result.PersistErr = err
		return result, nil
	}

	result.Record = &rec
	return result, nil
}

// ListLinks возвращает все записи из хранилища
func (s *qrlinkService) ListLinks(ctx context.Context) ([]models.LinkRecord, error) {
	return s.storage.List(ctx)
}

// GetLink возвращает запись по идентификатору
func (s *qrlinkService) GetLink(ctx context.Context, id string) (models.LinkRecord, error) {
	return s.storage.GetByID(ctx, id)
}

// EditLink заменяет целевой URL записи
func (s *qrlinkService) EditLink(ctx context.Context, id, destinationURL string) (*models.LinkRecord, error) {
	trimmed := strings.TrimSpace(destinationURL)
	if trimmed == "" {
		return nil, apperrors.ErrInvalidDestination
	}

	if err := s.storage.Update(ctx, id, trimmed); err != nil {
		return nil, err
	}

	// превью отрендерено против прежнего URL; следующий запрос превью
	// отрендерит его заново
	s.session.InvalidatePreview(id)

	rec, err := s.storage.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteLink удаляет запись и её превью
func (s *qrlinkService) DeleteLink(ctx context.Context, id string) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		return err
	}
	s.session.InvalidatePreview(id)
	return nil
}

// Preview возвращает превью QR-кода записи
func (s *qrlinkService) Preview(ctx context.Context, record models.LinkRecord) ([]byte, error) {
	if png, ok := s.session.Preview(record.ID); ok {
		return png, nil
	}

	encoded, err := payload.EncodeInline(record.DestinationURL)
	if err != nil {
		return nil, err
	}

	png, err := s.encoder.Render(payload.RedirectURL(s.baseURL, encoded), qrencode.PreviewOptions)
	if err != nil {
		logger.Log.Info("Failed to render QR preview", zap.String("id", record.ID), zap.Error(err))
		return nil, err
	}

	s.session.PutPreview(record.ID, png)
	return png, nil
}

// RedirectLink возвращает URL редиректа для записи
func (s *qrlinkService) RedirectLink(record models.LinkRecord) (string, error) {
	encoded, err := payload.EncodeInline(record.DestinationURL)
	if err != nil {
		return "", err
	}
	return payload.RedirectURL(s.baseURL, encoded), nil
}

func (s *qrlinkService) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}
