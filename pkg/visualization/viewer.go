// Package visualization turns fields and display images into files a person
// can look at: grayscale images, zoomed renders, A-line and histogram plots.
package visualization

import (
	"errors"
	"fmt"

	"sonoview/internal/models"
)

// ErrInvalidAxis is returned for an axis other than "line" or "depth".
var ErrInvalidAxis = errors.New("invalid axis")

// Viewer extracts 1-D profiles from a field of scan lines.
type Viewer struct {
	field *models.EchoField

	// samplingFrequency in Hz, used to label depth in time units
	samplingFrequency float64
}

// NewViewer creates a viewer over field. samplingFrequency may be zero when
// sample indices are good enough as depth labels.
func NewViewer(field *models.EchoField, samplingFrequency float64) *Viewer {
	return &Viewer{
		field:             field,
		samplingFrequency: samplingFrequency,
	}
}

// ExtractProfile returns a copy of one profile through the field.
//
// axis "line" returns scan line position along depth (an A-line); axis
// "depth" returns the lateral profile across all lines at sample position.
func (v *Viewer) ExtractProfile(axis string, position int) ([]float64, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	switch axis {
	case "line", "l":
		if position >= v.field.Lines {
			return nil, fmt.Errorf("position %d exceeds line count %d", position, v.field.Lines)
		}
		out := make([]float64, v.field.Samples)
		copy(out, v.field.Line(position))
		return out, nil

	case "depth", "d":
		if position >= v.field.Samples {
			return nil, fmt.Errorf("position %d exceeds sample count %d", position, v.field.Samples)
		}
		out := make([]float64, v.field.Lines)
		for l := range out {
			out[l] = v.field.At(l, position)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %s (must be line or depth)", ErrInvalidAxis, axis)
	}
}

// DepthAxis returns the abscissa for an A-line: microseconds of round trip
// time when a sampling frequency is known, sample indices otherwise.
func (v *Viewer) DepthAxis() []float64 {
	axis := make([]float64, v.field.Samples)
	for i := range axis {
		if v.samplingFrequency > 0 {
			axis[i] = float64(i) / v.samplingFrequency * 1e6
		} else {
			axis[i] = float64(i)
		}
	}
	return axis
}

// SaveALine plots scan line `line` of the field to path.
func (v *Viewer) SaveALine(line int, title, path string) error {
	profile, err := v.ExtractProfile("line", line)
	if err != nil {
		return err
	}

	xLabel := "sample"
	if v.samplingFrequency > 0 {
		xLabel = "time (us)"
	}
	return PlotProfile(v.DepthAxis(), profile, title, xLabel, "amplitude", path)
}
