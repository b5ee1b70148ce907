package engine

import (
	"context"
	"errors"

	"github.com/njchilds90/mathcmd/plot"
)

// Plotter turns a canonical expression into a figure. *plot.Sampler is the
// default implementation.
type Plotter interface {
	Plot(ctx context.Context, expression, title string) (*plot.Figure, error)
}

// OCR extracts text from an image.
type OCR interface {
	Extract(ctx context.Context, image []byte) (string, error)
}

// Backend availability failures. Their messages are shown to the user as
// the extracted text.
var (
	ErrOCRUnavailable  = errors.New("OCR Library not installed on server.")
	ErrTesseractAbsent = errors.New("Tesseract Binary not found on server.")
)

// UnavailableOCR is the OCR used when no backend is configured.
type UnavailableOCR struct{}

func (UnavailableOCR) Extract(context.Context, []byte) (string, error) {
	return "", ErrOCRUnavailable
}

// OCRFunc adapts a function to OCR.
type OCRFunc func(ctx context.Context, image []byte) (string, error)

func (f OCRFunc) Extract(ctx context.Context, image []byte) (string, error) { return f(ctx, image) }
