package resolver

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/issafronov/qrlink/internal/app/apperrors"
	"github.com/issafronov/qrlink/internal/app/payload"
	"github.com/issafronov/qrlink/internal/app/storage"
)

// State — состояние резолвера редиректа
type State int

const (
	// StateParsing — разбор входящей полезной нагрузки
	StateParsing State = iota
	// StateResolved — целевой URL определён
	StateResolved
	// StateCountingDown — идёт обратный отсчёт перед переходом
	StateCountingDown
	// StateNavigated — переход выполнен; терминальное состояние
	StateNavigated
	// StateError — поглощающее состояние ошибки
	StateError
)

// Причины перехода в StateError, показываемые пользователю
const (
	ReasonNoPayload = "no identifying information present"
	ReasonNotFound  = "record not found or removed"
)

// CountdownTicks — число видимых тактов обратного отсчёта
const CountdownTicks = 3

// Timing задаёт интервалы таймеров резолвера
type Timing struct {
	// TickInterval — период видимого отсчёта
	TickInterval time.Duration
	// NavigateDelay — задержка таймера фактического перехода
	NavigateDelay time.Duration
}

// DefaultTiming повторяет поведение исходного интерфейса: отсчёт раз в
// секунду и переход через короткую фиксированную задержку. Два таймера
// намеренно независимы; срабатывает тот, что раньше, второй становится
// холостым.
var DefaultTiming = Timing{
	TickInterval:  time.Second,
	NavigateDelay: 100 * time.Millisecond,
}

// Resolver превращает полезную нагрузку QR-кода в подтверждённый целевой
// URL и управляет переходом: автоматическим по таймерам либо ручным.
type Resolver struct {
	storage storage.Storage
	// Navigate вызывается ровно один раз при переходе
	navigate func(destination string)
	// OnTick вызывается на каждом такте отсчёта с числом оставшихся секунд
	OnTick func(remaining int)
	// Timing можно заменить до вызова Start
	Timing Timing

	mu          sync.Mutex
	state       State
	destination string
	reason      string
	remaining   int
	navigated   bool
	cancelled   bool
	navTimer    *time.Timer
	done        chan struct{}
	doneOnce    sync.Once
}

// New создаёт резолвер. navigate может быть nil, если переход
// обрабатывается снаружи (например, страницей-посредником).
func New(store storage.Storage, navigate func(destination string)) *Resolver {
	return &Resolver{
		storage:  store,
		navigate: navigate,
		Timing:   DefaultTiming,
		state:    StateParsing,
		done:     make(chan struct{}),
	}
}

// Resolve разбирает строку запроса и определяет целевой URL.
// Переводит резолвер в StateResolved либо в StateError.
func (r *Resolver) Resolve(ctx context.Context, rawQuery string) error {
	p, err := payload.Decode(rawQuery)
	if err != nil {
		r.fail(ReasonNoPayload)
		return err
	}

	var destination string
	switch p.Strategy {
	case payload.StrategyByID:
		if strings.TrimSpace(p.Value) == "" {
			r.fail(ReasonNoPayload)
			return apperrors.ErrMissingPayload
		}
		rec, err := r.storage.GetByID(ctx, p.Value)
		if err != nil {
			r.fail(ReasonNotFound)
			return err
		}
		destination = rec.DestinationURL
	case payload.StrategyInline:
		destination = p.Value
	}

	r.mu.Lock()
	r.destination = NormalizeDestination(destination)
	r.state = StateResolved
	r.mu.Unlock()
	return nil
}

// Start запускает обратный отсчёт и таймер перехода.
// Допустим только из StateResolved.
func (r *Resolver) Start() {
	r.mu.Lock()
	if r.state != StateResolved || r.cancelled {
		r.mu.Unlock()
		return
	}
	r.state = StateCountingDown
	r.remaining = CountdownTicks
	r.navTimer = time.AfterFunc(r.Timing.NavigateDelay, r.fireNavigate)
	r.mu.Unlock()

	go r.runCountdown()
}

func (r *Resolver) runCountdown() {
	ticker := time.NewTicker(r.Timing.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			if r.navigated || r.cancelled {
				r.mu.Unlock()
				return
			}
			r.remaining--
			remaining := r.remaining
			onTick := r.OnTick
			r.mu.Unlock()

			if onTick != nil {
				onTick(remaining)
			}
			if remaining <= 0 {
				r.fireNavigate()
				return
			}
		case <-r.done:
			return
		}
	}
}

// NavigateNow выполняет немедленный ручной переход. Идемпотентен
// с автоматическим путём: побеждает сработавший первым.
func (r *Resolver) NavigateNow() {
	r.mu.Lock()
	ready := r.state == StateResolved || r.state == StateCountingDown
	r.mu.Unlock()
	if ready {
		r.fireNavigate()
	}
}

func (r *Resolver) fireNavigate() {
	r.mu.Lock()
	if r.navigated || r.cancelled || r.destination == "" {
		r.mu.Unlock()
		return
	}
	r.navigated = true
	r.state = StateNavigated
	if r.navTimer != nil {
		r.navTimer.Stop()
	}
	destination := r.destination
	navigate := r.navigate
	r.mu.Unlock()

	r.doneOnce.Do(func() { close(r.done) })
	if navigate != nil {
		navigate(destination)
	}
}

// Cancel останавливает все таймеры. После вызова переход невозможен.
func (r *Resolver) Cancel() {
	r.mu.Lock()
	r.cancelled = true
	if r.navTimer != nil {
		r.navTimer.Stop()
	}
	r.mu.Unlock()

	r.doneOnce.Do(func() { close(r.done) })
}

func (r *Resolver) fail(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateError
	r.reason = reason
}

// State возвращает текущее состояние
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Destination возвращает нормализованный целевой URL
func (r *Resolver) Destination() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destination
}

// Reason возвращает причину ошибки для показа пользователю
func (r *Resolver) Reason() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reason
}

// Remaining возвращает число оставшихся тактов отсчёта
func (r *Resolver) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// NormalizeDestination дополняет URL схемой https://, если не указана
// ни http://, ни https://. Применяется к обеим стратегиям одинаково.
func NormalizeDestination(destination string) string {
	if strings.HasPrefix(destination, "http://") || strings.HasPrefix(destination, "https://") {
		return destination
	}
	return "https://" + destination
}
