package models

import "time"

// LinkRecord представляет запись ссылки: идентификатор, назначенный
// хранилищем при создании, целевой URL и время создания.
type LinkRecord struct {
	ID             string    `json:"id"`
	DestinationURL string    `json:"destination_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// URLData представляет входную структуру для создания или изменения ссылки
type URLData struct {
	URL string `json:"url"`
}

// CreateResult содержит результат создания QR-ссылки.
// Рендер и сохранение — два независимых исхода одной операции:
// изображение возвращается всегда, а ошибка сохранения (если была)
// передаётся отдельно в PersistErr.
type CreateResult struct {
	Record      *LinkRecord
	RedirectURL string
	PNG         []byte
	PersistErr  error
}

// LinkResponse представляет выходную структуру после создания QR-ссылки
type LinkResponse struct {
	Record       *LinkRecord `json:"record,omitempty"`
	RedirectURL  string      `json:"redirect_url"`
	QRCodeBase64 string      `json:"qr_code_base64"`
	PersistError string      `json:"persist_error,omitempty"`
}
