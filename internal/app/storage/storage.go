package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/issafronov/qrlink/internal/app/apperrors"
	"github.com/issafronov/qrlink/internal/app/models"
)

// Storage определяет контракт хранилища записей ссылок.
// Идентификаторы назначает само хранилище при создании.
type Storage interface {
	// Create сохраняет новую запись и возвращает её с назначенным id
	Create(ctx context.Context, destinationURL string) (models.LinkRecord, error)

	// List возвращает все записи, новые первыми; при равном времени
	// создания порядок стабилен (позже вставленная — раньше в списке)
	List(ctx context.Context) ([]models.LinkRecord, error)

	// GetByID возвращает запись по идентификатору
	GetByID(ctx context.Context, id string) (models.LinkRecord, error)

	// Update заменяет целевой URL записи
	Update(ctx context.Context, id, destinationURL string) error

	// Delete удаляет запись
	Delete(ctx context.Context, id string) error

	// Ping проверяет доступность хранилища
	Ping(ctx context.Context) error
}

type memoryRecord struct {
	rec models.LinkRecord
	seq uint64
}

// MemoryStorage хранит записи в памяти процесса
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	seq     uint64
}

// NewMemoryStorage создаёт пустое хранилище в памяти
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]memoryRecord)}
}

func (s *MemoryStorage) Create(ctx context.Context, destinationURL string) (models.LinkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	rec := models.LinkRecord{
		ID:             uuid.NewString(),
		DestinationURL: destinationURL,
		CreatedAt:      time.Now().UTC(),
	}
	s.records[rec.ID] = memoryRecord{rec: rec, seq: s.seq}
	return rec, nil
}

func (s *MemoryStorage) List(ctx context.Context) ([]models.LinkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]memoryRecord, 0, len(s.records))
	for _, mr := range s.records {
		all = append(all, mr)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].rec.CreatedAt.Equal(all[j].rec.CreatedAt) {
			return all[i].rec.CreatedAt.After(all[j].rec.CreatedAt)
		}
		return all[i].seq > all[j].seq
	})

	result := make([]models.LinkRecord, len(all))
	for i, mr := range all {
		result[i] = mr.rec
	}
	return result, nil
}

func (s *MemoryStorage) GetByID(ctx context.Context, id string) (models.LinkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mr, ok := s.records[id]
	if !ok {
		return models.LinkRecord{}, apperrors.ErrNotFound
	}
	return mr.rec, nil
}

func (s *MemoryStorage) Update(ctx context.Context, id, destinationURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mr, ok := s.records[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	mr.rec.DestinationURL = destinationURL
	s.records[id] = mr
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
