package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/issafronov/qrlink/internal/app/config"
	"github.com/issafronov/qrlink/internal/app/models"
	"github.com/issafronov/qrlink/internal/middleware/logger"
)

const timeLayout = time.RFC3339Nano

// fileEntry — одна строка журнала. Каждая мутация дописывает полный
// снимок записи; при чтении побеждает последняя строка для id.
type fileEntry struct {
	ID             string `json:"id"`
	DestinationURL string `json:"destination_url"`
	CreatedAt      string `json:"created_at"`
	IsDeleted      bool   `json:"is_deleted"`
}

// FileStorage хранит записи в JSON-журнале на диске поверх
// восстановленного в память состояния
type FileStorage struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	memory *MemoryStorage
}

// NewFileStorage открывает журнал и восстанавливает состояние из него
func NewFileStorage(config *config.Config) (*FileStorage, error) {
	file, err := os.OpenFile(config.FileStoragePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}

	fs := &FileStorage{
		file:   file,
		writer: bufio.NewWriter(file),
		memory: NewMemoryStorage(),
	}
	if err := fs.replay(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (f *FileStorage) replay() error {
	scanner := bufio.NewScanner(f.file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry fileEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			logger.Log.Info("Skipping corrupted storage entry", zap.Error(err))
			continue
		}
		f.applyEntry(entry)
	}
	return scanner.Err()
}

func (f *FileStorage) applyEntry(entry fileEntry) {
	rec, err := recordFromEntry(entry)
	if err != nil {
		logger.Log.Info("Skipping storage entry with bad timestamp", zap.String("id", entry.ID), zap.Error(err))
		return
	}
	f.memory.mu.Lock()
	defer f.memory.mu.Unlock()
	if entry.IsDeleted {
		delete(f.memory.records, entry.ID)
		return
	}
	mr, exists := f.memory.records[entry.ID]
	if !exists {
		f.memory.seq++
		mr = memoryRecord{seq: f.memory.seq}
	}
	mr.rec = rec
	f.memory.records[entry.ID] = mr
}

func (f *FileStorage) appendEntry(entry fileEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		logger.Log.Info("Failed to marshal storage entry", zap.Error(err))
		return err
	}
	if _, err := f.writer.Write(data); err != nil {
		logger.Log.Info("Failed to write storage entry", zap.String("id", entry.ID), zap.Error(err))
		return err
	}
	if err := f.writer.WriteByte('\n'); err != nil {
		logger.Log.Info("Error writing data new line", zap.Error(err))
		return err
	}
	return f.writer.Flush()
}

func (f *FileStorage) Create(ctx context.Context, destinationURL string) (models.LinkRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, err := f.memory.Create(ctx, destinationURL)
	if err != nil {
		return models.LinkRecord{}, err
	}
	if err := f.appendEntry(entryFromRecord(rec, false)); err != nil {
		return models.LinkRecord{}, err
	}
	return rec, nil
}

func (f *FileStorage) List(ctx context.Context) ([]models.LinkRecord, error) {
	return f.memory.List(ctx)
}

func (f *FileStorage) GetByID(ctx context.Context, id string) (models.LinkRecord, error) {
	return f.memory.GetByID(ctx, id)
}

func (f *FileStorage) Update(ctx context.Context, id, destinationURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memory.Update(ctx, id, destinationURL); err != nil {
		return err
	}
	rec, err := f.memory.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return f.appendEntry(entryFromRecord(rec, false))
}

func (f *FileStorage) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, err := f.memory.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := f.memory.Delete(ctx, id); err != nil {
		return err
	}
	return f.appendEntry(entryFromRecord(rec, true))
}

func (f *FileStorage) Ping(ctx context.Context) error {
	return nil
}

// Close сбрасывает буфер и закрывает журнал
func (f *FileStorage) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.writer.Flush(); err != nil {
		return err
	}
	return f.file.Close()
}

func entryFromRecord(rec models.LinkRecord, deleted bool) fileEntry {
	return fileEntry{
		ID:             rec.ID,
		DestinationURL: rec.DestinationURL,
		CreatedAt:      rec.CreatedAt.Format(timeLayout),
		IsDeleted:      deleted,
	}
}

func recordFromEntry(entry fileEntry) (models.LinkRecord, error) {
	createdAt, err := time.Parse(timeLayout, entry.CreatedAt)
	if err != nil {
		return models.LinkRecord{}, err
	}
	return models.LinkRecord{
		ID:             entry.ID,
		DestinationURL: entry.DestinationURL,
		CreatedAt:      createdAt,
	}, nil
}
