// Package echo simulates the raw reflectivity of a circular organ as seen by
// a set of scan lines.
package echo

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"sonoview/internal/models"
)

var (
	// ErrInvalidDimensions is returned for non-positive line or sample counts.
	ErrInvalidDimensions = models.ErrInvalidDimensions

	// ErrInvalidRadius is returned when the organ radius is outside (0, 1].
	ErrInvalidRadius = errors.New("organ radius must be in (0, 1]")

	// ErrInvalidParameter is returned for negative noise or smoothing values.
	ErrInvalidParameter = errors.New("invalid generator parameter")
)

// Params holds the echo field generation parameters.
type Params struct {
	// Lines is the number of azimuthal scan lines
	Lines int

	// Samples is the number of range samples per scan line
	Samples int

	// OrganRadius is the disc radius on the normalized [-1, 1] grid
	OrganRadius float64

	// NoiseLevel scales zero-mean unit-variance Gaussian noise
	NoiseLevel float64

	// SmoothingSigma is the Gaussian blur standard deviation in grid cells.
	// Zero disables smoothing.
	SmoothingSigma float64
}

// DefaultParams returns the parameters used by the generate command.
func DefaultParams() Params {
	return Params{
		Lines:          128,
		Samples:        1024,
		OrganRadius:    0.5,
		NoiseLevel:     0.1,
		SmoothingSigma: 3,
	}
}

// Validate reports the first parameter that the generator cannot use.
func (p Params) Validate() error {
	if p.Lines <= 0 || p.Samples <= 0 {
		return fmt.Errorf("%w: got %d lines x %d samples", ErrInvalidDimensions, p.Lines, p.Samples)
	}
	if !(p.OrganRadius > 0 && p.OrganRadius <= 1) {
		return fmt.Errorf("%w: got %g", ErrInvalidRadius, p.OrganRadius)
	}
	if !(p.NoiseLevel >= 0) {
		return fmt.Errorf("%w: noise level %g", ErrInvalidParameter, p.NoiseLevel)
	}
	if !(p.SmoothingSigma >= 0) {
		return fmt.Errorf("%w: smoothing sigma %g", ErrInvalidParameter, p.SmoothingSigma)
	}
	return nil
}

// linspace returns n evenly spaced values over [lo, hi]. A single point
// sits at lo.
func linspace(n int, lo, hi float64) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// OrganMask reports, for every cell of the line-major grid, whether it lies
// inside the organ disc.
func OrganMask(p Params) ([]bool, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	x := linspace(p.Lines, -1, 1)
	y := linspace(p.Samples, -1, 1)

	mask := make([]bool, p.Lines*p.Samples)
	for l := 0; l < p.Lines; l++ {
		for s := 0; s < p.Samples; s++ {
			mask[l*p.Samples+s] = math.Hypot(x[l], y[s]) <= p.OrganRadius
		}
	}
	return mask, nil
}

// GenerateOrganEchoes builds a disc-shaped reflectivity map, adds Gaussian
// noise drawn from src and smooths the result.
//
// The returned field has p.Lines scan lines of p.Samples depth samples each.
// A nil src draws from the process-wide generator, which makes the output
// non-reproducible.
func GenerateOrganEchoes(p Params, src rand.Source) (*models.EchoField, error) {
	mask, err := OrganMask(p)
	if err != nil {
		return nil, err
	}

	field, err := models.NewEchoField(p.Lines, p.Samples)
	if err != nil {
		return nil, err
	}

	for i, inside := range mask {
		if inside {
			field.Data[i] = 1.0
		}
	}

	if p.NoiseLevel > 0 {
		noise := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
		for i := range field.Data {
			field.Data[i] += p.NoiseLevel * noise.Rand()
		}
	}

	field.Data = GaussianFilter(field.Data, field.Lines, field.Samples, p.SmoothingSigma)

	return field, nil
}
