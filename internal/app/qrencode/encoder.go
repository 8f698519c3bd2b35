package qrencode

import (
	"fmt"
	"image/color"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/issafronov/qrlink/internal/app/apperrors"
)

// Options задают параметры рендеринга QR-кода
type Options struct {
	// PixelSize — размер стороны изображения в пикселях
	PixelSize int
	// Margin — ширина тихой зоны; при нуле рамка отключается
	Margin int
	// Foreground — цвет модулей кода
	Foreground color.Color
	// Background — цвет фона
	Background color.Color
}

// DefaultOptions — параметры полноразмерного кода (выдаётся при создании)
var DefaultOptions = Options{
	PixelSize:  300,
	Margin:     2,
	Foreground: color.RGBA{R: 0x1F, G: 0x29, B: 0x37, A: 0xFF},
	Background: color.White,
}

// PreviewOptions — уменьшенные параметры для превью в списке ссылок
var PreviewOptions = Options{
	PixelSize:  200,
	Margin:     1,
	Foreground: color.RGBA{R: 0x1F, G: 0x29, B: 0x37, A: 0xFF},
	Background: color.White,
}

// Encoder рендерит текст в PNG-изображение QR-кода
type Encoder interface {
	Render(text string, opts Options) ([]byte, error)
}

type qrEncoder struct{}

// New создаёт энкодер на базе skip2/go-qrcode
func New() Encoder {
	return &qrEncoder{}
}

// Render кодирует текст в QR-код уровня коррекции Medium и возвращает PNG
func (e *qrEncoder) Render(text string, opts Options) ([]byte, error) {
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrEncodeFailure, err)
	}

	if opts.Foreground != nil {
		q.ForegroundColor = opts.Foreground
	}
	if opts.Background != nil {
		q.BackgroundColor = opts.Background
	}
	q.DisableBorder = opts.Margin <= 0

	size := opts.PixelSize
	if size <= 0 {
		size = DefaultOptions.PixelSize
	}

	png, err := q.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrEncodeFailure, err)
	}
	return png, nil
}
