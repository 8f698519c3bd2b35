package apperrors

import "errors"

// Ошибки уровня приложения. Хендлеры и резолвер сопоставляют их
// с HTTP-статусами и пользовательскими сообщениями.
var (
	// ErrInvalidDestination возвращается при пустом или состоящем из пробелов
	// целевом URL. Проверяется до любого обращения к хранилищу.
	ErrInvalidDestination = errors.New("invalid destination url")

	// ErrMissingPayload возвращается, когда во входящем запросе нет
	// ни одного распознаваемого параметра редиректа.
	ErrMissingPayload = errors.New("missing redirect payload")

	// ErrNotFound возвращается, когда запись с указанным идентификатором
	// отсутствует в хранилище.
	ErrNotFound = errors.New("link record not found")

	// ErrStoreUnavailable возвращается при сбое транспорта или бэкенда хранилища.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrEncodeFailure возвращается при сбое рендеринга QR-кода.
	ErrEncodeFailure = errors.New("qr encode failure")
)
