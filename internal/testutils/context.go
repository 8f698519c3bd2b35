package testutils

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// WithURLParam добавляет к запросу URL-параметр chi-роутера
func WithURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
