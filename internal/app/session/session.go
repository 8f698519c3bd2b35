package session

import (
	"container/list"
	"sync"
	"time"
)

const copiedFeedbackTTL = 2 * time.Second

// Session — состояние одного сеанса работы со списком ссылок.
// Заменяет собой разрозненные глобальные флаги представления: признак
// загрузки, идентификатор редактируемой записи, индикатор скопированной
// ссылки. Владеет кешем превью; между сеансами не разделяется
// и не сохраняется.
type Session struct {
	mu       sync.Mutex
	loading  bool
	editing  string
	copiedID string
	copiedAt time.Time
	cache    *previewCache
}

// New создаёт сеанс с кешем превью указанной вместимости
func New(cacheSize int) *Session {
	return &Session{cache: newPreviewCache(cacheSize)}
}

// SetLoading выставляет признак выполняющейся операции
func (s *Session) SetLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}

// Loading возвращает признак выполняющейся операции
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// StartEditing отмечает запись как редактируемую
func (s *Session) StartEditing(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = id
}

// StopEditing снимает отметку редактирования
func (s *Session) StopEditing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = ""
}

// EditingID возвращает идентификатор редактируемой записи или пустую строку
func (s *Session) EditingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// MarkCopied запоминает, чья ссылка была скопирована
func (s *Session) MarkCopied(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.copiedID = id
	s.copiedAt = time.Now()
}

// CopiedID возвращает идентификатор записи со свежей отметкой копирования.
// Отметка живёт ограниченное время, как и визуальный индикатор "Copied!".
func (s *Session) CopiedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.copiedID == "" || time.Since(s.copiedAt) > copiedFeedbackTTL {
		return ""
	}
	return s.copiedID
}

// Preview возвращает закешированное превью для записи
func (s *Session) Preview(id string) ([]byte, bool) {
	return s.cache.get(id)
}

// PutPreview кеширует превью записи; прежнее значение замещается
func (s *Session) PutPreview(id string, png []byte) {
	s.cache.set(id, png)
}

// InvalidatePreview удаляет превью записи из кеша.
// Отсутствующая запись не является ошибкой.
func (s *Session) InvalidatePreview(id string) {
	s.cache.remove(id)
}

type cacheEntry struct {
	key string
	png []byte
}

// previewCache — LRU-кеш отрендеренных превью, не более одной записи на id
type previewCache struct {
	mu    sync.Mutex
	ll    *list.List
	items map[string]*list.Element
	max   int
}

func newPreviewCache(max int) *previewCache {
	if max <= 0 {
		max = 1
	}
	return &previewCache{
		ll:    list.New(),
		items: make(map[string]*list.Element, max),
		max:   max,
	}
}

func (c *previewCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, ok := c.items[key]; ok {
		c.ll.MoveToFront(ele)
		ent := ele.Value.(*cacheEntry)
		return ent.png, true
	}
	return nil, false
}

func (c *previewCache) set(key string, png []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, ok := c.items[key]; ok {
		c.ll.MoveToFront(ele)
		ent := ele.Value.(*cacheEntry)
		ent.png = png
		return
	}

	ele := c.ll.PushFront(&cacheEntry{key: key, png: png})
	c.items[key] = ele

	if c.ll.Len() > c.max {
		c.removeOldest()
	}
}

func (c *previewCache) remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, ok := c.items[key]; ok {
		c.ll.Remove(ele)
		delete(c.items, key)
	}
}

func (c *previewCache) removeOldest() {
	ele := c.ll.Back()
	if ele == nil {
		return
	}
	c.ll.Remove(ele)
	ent := ele.Value.(*cacheEntry)
	delete(c.items, ent.key)
}
