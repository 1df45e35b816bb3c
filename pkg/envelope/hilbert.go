// Package envelope extracts the amplitude envelope of echo lines through the
// analytic signal.
package envelope

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"sonoview/internal/models"
)

// Transformer computes analytic signals of a fixed length. It caches the
// Gonum FFT plans so a whole field can be processed without reallocating.
// A Transformer is not safe for concurrent use.
type Transformer struct {
	n        int
	fft      *fourier.FFT
	ifft     *fourier.CmplxFFT
	coeffs   []complex128
	spectrum []complex128
}

// NewTransformer prepares a transformer for sequences of length n.
func NewTransformer(n int) *Transformer {
	return &Transformer{
		n:        n,
		fft:      fourier.NewFFT(n),
		ifft:     fourier.NewCmplxFFT(n),
		coeffs:   make([]complex128, n/2+1),
		spectrum: make([]complex128, n),
	}
}

// Len returns the sequence length the transformer was built for.
func (t *Transformer) Len() int { return t.n }

// AnalyticSignal returns x + i*H(x), where H is the Hilbert transform.
//
// The spectrum of x is kept at DC (and Nyquist for even lengths), doubled
// for positive frequencies and zeroed for negative ones, then transformed
// back. dst is reused when it has length n.
func (t *Transformer) AnalyticSignal(dst []complex128, x []float64) []complex128 {
	if len(x) != t.n {
		panic("envelope: sequence length mismatch")
	}
	if len(dst) != t.n {
		dst = make([]complex128, t.n)
	}

	// Real input only needs the non-negative half of the spectrum.
	t.fft.Coefficients(t.coeffs, x)

	for i := range t.spectrum {
		t.spectrum[i] = 0
	}
	t.spectrum[0] = t.coeffs[0]
	if t.n%2 == 0 {
		for k := 1; k < t.n/2; k++ {
			t.spectrum[k] = 2 * t.coeffs[k]
		}
		if t.n > 1 {
			t.spectrum[t.n/2] = t.coeffs[t.n/2]
		}
	} else {
		for k := 1; k <= (t.n-1)/2; k++ {
			t.spectrum[k] = 2 * t.coeffs[k]
		}
	}

	t.ifft.Sequence(dst, t.spectrum)

	// Gonum transforms are unnormalized.
	scale := complex(1/float64(t.n), 0)
	for i := range dst {
		dst[i] *= scale
	}
	return dst
}

// AnalyticSignal is a convenience wrapper for one-off sequences.
func AnalyticSignal(x []float64) []complex128 {
	return NewTransformer(len(x)).AnalyticSignal(nil, x)
}

// Envelope returns the magnitude of the analytic signal of x.
func Envelope(x []float64) []float64 {
	analytic := AnalyticSignal(x)
	out := make([]float64, len(analytic))
	for i, c := range analytic {
		out[i] = cmplx.Abs(c)
	}
	return out
}

// Detect computes the envelope of every scan line of field, along the depth
// (sample) axis.
func Detect(field *models.EchoField) *models.EnvelopeField {
	out := &models.EnvelopeField{
		Lines:   field.Lines,
		Samples: field.Samples,
		Data:    make([]float64, len(field.Data)),
	}

	t := NewTransformer(field.Samples)
	analytic := make([]complex128, field.Samples)
	for l := 0; l < field.Lines; l++ {
		analytic = t.AnalyticSignal(analytic, field.Line(l))
		dst := out.Line(l)
		for s, c := range analytic {
			dst[s] = cmplx.Abs(c)
		}
	}
	return out
}
