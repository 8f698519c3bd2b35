package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/issafronov/qrlink/internal/app/apperrors"
	"github.com/issafronov/qrlink/internal/app/resolver"
	"github.com/issafronov/qrlink/internal/middleware/logger"
)

// Страница-посредник повторяет поведение исходного интерфейса:
// видимый отсчёт раз в секунду и отдельный короткий таймер фактического
// перехода. location.replace не оставляет страницу в истории.
var redirectTmpl = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Redirecting...</title></head>
<body>
<h1>Redirecting...</h1>
<p>Taking you to your destination in <span id="countdown">{{.Countdown}}</span> seconds</p>
<p>Destination: <code>{{.Destination}}</code></p>
<p><a href="#" onclick="go(); return false;">Go Now &rarr;</a></p>
<script>
var destination = {{.Destination}};
var remaining = {{.Countdown}};
var navigated = false;
function go() {
  if (navigated) { return; }
  navigated = true;
  window.location.replace(destination);
}
var countdownInterval = setInterval(function () {
  remaining--;
  document.getElementById('countdown').textContent = remaining;
  if (remaining <= 0) {
    clearInterval(countdownInterval);
    go();
  }
}, 1000);
setTimeout(go, {{.NavigateDelayMs}});
</script>
</body>
</html>
`))

var redirectErrorTmpl = template.Must(template.New("redirectError").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Invalid QR Code</title></head>
<body>
<h1>Invalid QR Code</h1>
<p>{{.Reason}}</p>
<p><a href="/">Create New QR Code</a></p>
</body>
</html>
`))

type redirectPage struct {
	Destination     string
	Countdown       int
	NavigateDelayMs int64
}

type redirectErrorPage struct {
	Reason string
}

// RedirectHandle — точка входа редиректа /q. Разрешает полезную нагрузку
// через резолвер и отдаёт страницу-посредник либо страницу ошибки.
func (h *Handler) RedirectHandle(res http.ResponseWriter, req *http.Request) {
	r := resolver.New(h.storage, nil)

	if err := r.Resolve(req.Context(), req.URL.RawQuery); err != nil {
		logger.Log.Debug("Redirect payload not resolved",
			zap.String("query", req.URL.RawQuery),
			zap.Error(err),
		)
		status := http.StatusBadRequest
		if errors.Is(err, apperrors.ErrNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, apperrors.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		res.Header().Set("Content-Type", "text/html; charset=utf-8")
		res.WriteHeader(status)
		if err := redirectErrorTmpl.Execute(res, redirectErrorPage{Reason: r.Reason()}); err != nil {
			logger.Log.Info("Failed to render redirect error page", zap.Error(err))
		}
		return
	}

	page := redirectPage{
		Destination:     r.Destination(),
		Countdown:       resolver.CountdownTicks,
		NavigateDelayMs: resolver.DefaultTiming.NavigateDelay.Milliseconds(),
	}
	res.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := redirectTmpl.Execute(res, page); err != nil {
		logger.Log.Info("Failed to render redirect page", zap.Error(err))
	}
}
