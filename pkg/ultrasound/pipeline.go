package ultrasound

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"sonoview/internal/models"
	"sonoview/pkg/envelope"
)

// floor keeps log compression finite for zero envelope samples.
const floor = 1e-6

var (
	// ErrEmptyField is returned when FormImage receives a nil or empty field.
	ErrEmptyField = errors.New("echo field is empty")

	// ErrNonFiniteSample is returned when a field contains NaN or Inf.
	ErrNonFiniteSample = errors.New("echo field contains non-finite samples")
)

// LogCompress converts envelope magnitudes to decibels: 20*log10(v + 1e-6).
func LogCompress(env []float64) []float64 {
	out := make([]float64, len(env))
	for i, v := range env {
		out[i] = 20 * math.Log10(v+floor)
	}
	return out
}

// Normalize shifts values so the minimum is 0 and scales them so the
// maximum is 1. A constant input has no range to stretch and maps to 0.5
// everywhere.
func Normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	copy(out, values)
	floats.AddConst(-floats.Min(out), out)

	span := floats.Max(out)
	if !(span > 0) {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	for i := range out {
		out[i] /= span
	}
	return out
}

// Quantize maps [0, 1] values onto 8-bit intensities by truncation. Values
// outside the range saturate.
func Quantize(values []float64, width, height int) (*models.DisplayImage, error) {
	img, err := models.NewDisplayImage(width, height)
	if err != nil {
		return nil, err
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("quantize: %d values for a %dx%d image", len(values), width, height)
	}

	for i, v := range values {
		scaled := v * 255
		switch {
		case !(scaled > 0):
			img.Pix[i] = 0
		case scaled >= 255:
			img.Pix[i] = 255
		default:
			img.Pix[i] = uint8(scaled)
		}
	}
	return img, nil
}

// stages keeps every intermediate product of FormImage.
type stages struct {
	envelope   *models.EnvelopeField
	compressed []float64
	normalized []float64
	display    *models.DisplayImage
}

func formStages(field *models.EchoField) (*stages, error) {
	if field == nil || field.Lines <= 0 || field.Samples <= 0 || len(field.Data) == 0 {
		return nil, ErrEmptyField
	}
	if len(field.Data) != field.Lines*field.Samples {
		return nil, fmt.Errorf("%w: %d samples for %d lines x %d samples",
			models.ErrInvalidDimensions, len(field.Data), field.Lines, field.Samples)
	}
	for i, v := range field.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: index %d is %g", ErrNonFiniteSample, i, v)
		}
	}

	st := &stages{}
	st.envelope = envelope.Detect(field)
	st.compressed = LogCompress(st.envelope.Data)
	st.normalized = Normalize(st.compressed)

	display, err := Quantize(st.normalized, field.Samples, field.Lines)
	if err != nil {
		return nil, err
	}
	st.display = display
	return st, nil
}

// FormImage turns a raw echo field into a displayable image: envelope
// detection along each scan line, log compression, normalization and 8-bit
// quantization. Image row y is scan line y.
func FormImage(field *models.EchoField) (*models.DisplayImage, error) {
	st, err := formStages(field)
	if err != nil {
		return nil, err
	}
	return st.display, nil
}
