package pprof

import (
	"net/http"
	_ "net/http/pprof"

	"go.uber.org/zap"

	"github.com/issafronov/qrlink/internal/middleware/logger"
)

// Start запускает pprof-сервер
func Start() {
	go func() {
		logger.Log.Info("Starting pprof server", zap.String("address", "localhost:6060"))
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			logger.Log.Info("pprof server error", zap.Error(err))
		}
	}()
}
