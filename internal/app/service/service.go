package service

import (
	"context"

	"github.com/issafronov/qrlink/internal/app/models"
)

// Service определяет бизнес-логику жизненного цикла QR-ссылок
type Service interface {
	// CreateLink рендерит QR-код для целевого URL и сохраняет запись.
	// Ошибка сохранения не отменяет рендер: изображение возвращается
	// всегда, а сбой хранилища передаётся в CreateResult.PersistErr.
	CreateLink(ctx context.Context, destinationURL string) (*models.CreateResult, error)

	// ListLinks возвращает все записи, новые первыми
	ListLinks(ctx context.Context) ([]models.LinkRecord, error)

	// GetLink возвращает запись по идентификатору
	GetLink(ctx context.Context, id string) (models.LinkRecord, error)

	// EditLink заменяет целевой URL записи и сбрасывает её превью
	EditLink(ctx context.Context, id, destinationURL string) (*models.LinkRecord, error)

	// DeleteLink удаляет запись и её превью
	DeleteLink(ctx context.Context, id string) error

	// Preview возвращает превью QR-кода записи, рендеря его при
	// отсутствии в кеше
	Preview(ctx context.Context, record models.LinkRecord) ([]byte, error)

	// RedirectLink возвращает URL редиректа для записи
	RedirectLink(record models.LinkRecord) (string, error)

	// Ping пингует хранилище
	Ping(ctx context.Context) error
}
