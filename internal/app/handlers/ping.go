package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/issafronov/qrlink/internal/middleware/logger"
)

// Ping проверяет доступность хранилища
func (h *Handler) Ping(res http.ResponseWriter, req *http.Request) {
	logger.Log.Info("PingHandle", zap.String("url", req.URL.String()))
	if err := h.svc.Ping(req.Context()); err != nil {
		res.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(res, err.Error())
		return
	}
	res.WriteHeader(http.StatusOK)
}
