package payload

import (
	"net/url"
	"strings"

	"github.com/issafronov/qrlink/internal/app/apperrors"
)

// Strategy определяет способ разрешения полезной нагрузки QR-кода
type Strategy int

const (
	// StrategyInline — целевой URL закодирован прямо в полезной нагрузке
	StrategyInline Strategy = iota
	// StrategyByID — полезная нагрузка содержит идентификатор записи,
	// который нужно искать в хранилище
	StrategyByID
)

const (
	// RedirectPath — путь точки входа редиректа
	RedirectPath = "/q"
	// ParamID — ключ параметра с идентификатором записи
	ParamID = "id"
	// ParamURL — ключ параметра с закодированным целевым URL
	ParamURL = "url"
)

// Payload представляет разобранную полезную нагрузку QR-кода.
// Активна ровно одна стратегия.
type Payload struct {
	Strategy Strategy
	Value    string
}

// EncodeInline кодирует целевой URL в строку параметров запроса.
// Возвращает ошибку, если URL пуст после обрезки пробелов.
func EncodeInline(destinationURL string) (string, error) {
	trimmed := strings.TrimSpace(destinationURL)
	if trimmed == "" {
		return "", apperrors.ErrInvalidDestination
	}
	values := url.Values{}
	values.Set(ParamURL, trimmed)
	return values.Encode(), nil
}

// EncodeByID кодирует идентификатор записи в строку параметров запроса
func EncodeByID(id string) string {
	values := url.Values{}
	values.Set(ParamID, id)
	return values.Encode()
}

// Decode разбирает строку параметров запроса в Payload.
// При наличии обоих ключей приоритет у идентификатора: путь через
// хранилище считается каноническим. Если нет ни одного распознаваемого
// ключа — ErrMissingPayload.
func Decode(rawQuery string) (Payload, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Payload{}, apperrors.ErrMissingPayload
	}
	if values.Has(ParamID) {
		return Payload{Strategy: StrategyByID, Value: values.Get(ParamID)}, nil
	}
	if values.Has(ParamURL) {
		return Payload{Strategy: StrategyInline, Value: values.Get(ParamURL)}, nil
	}
	return Payload{}, apperrors.ErrMissingPayload
}

// RedirectURL собирает абсолютный URL редиректа вида <base>/q?<payload>
func RedirectURL(baseURL, payloadString string) string {
	return strings.TrimRight(baseURL, "/") + RedirectPath + "?" + payloadString
}
