package models

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidDimensions is returned when a field is requested with a
// non-positive number of scan lines or samples.
var ErrInvalidDimensions = errors.New("field dimensions must be positive")

// EchoField is a grid of reflectivity samples.
//
// Data is stored line-major: sample s of scan line l lives at
// Data[l*Samples+s], so every scan line is one contiguous run of depth
// samples.
type EchoField struct {
	// Lines is the number of azimuthal scan lines
	Lines int

	// Samples is the number of range (depth) samples per line
	Samples int

	// Data holds Lines*Samples values
	Data []float64
}

// EnvelopeField holds the magnitude of the analytic signal of every scan
// line. It shares the layout of EchoField.
type EnvelopeField = EchoField

// NewEchoField allocates a zeroed field.
func NewEchoField(lines, samples int) (*EchoField, error) {
	if lines <= 0 || samples <= 0 {
		return nil, fmt.Errorf("%w: got %d lines x %d samples", ErrInvalidDimensions, lines, samples)
	}
	return &EchoField{
		Lines:   lines,
		Samples: samples,
		Data:    make([]float64, lines*samples),
	}, nil
}

// At returns sample s of scan line l.
func (f *EchoField) At(l, s int) float64 {
	return f.Data[l*f.Samples+s]
}

// Set stores v as sample s of scan line l.
func (f *EchoField) Set(l, s int, v float64) {
	f.Data[l*f.Samples+s] = v
}

// Line returns scan line l. The returned slice aliases the field data.
func (f *EchoField) Line(l int) []float64 {
	return f.Data[l*f.Samples : (l+1)*f.Samples]
}

// Clone returns a deep copy of the field.
func (f *EchoField) Clone() *EchoField {
	data := make([]float64, len(f.Data))
	copy(data, f.Data)
	return &EchoField{Lines: f.Lines, Samples: f.Samples, Data: data}
}

// Transpose returns a new field with the roles of lines and samples swapped.
func (f *EchoField) Transpose() *EchoField {
	out := &EchoField{Lines: f.Samples, Samples: f.Lines, Data: make([]float64, len(f.Data))}
	for l := 0; l < f.Lines; l++ {
		for s := 0; s < f.Samples; s++ {
			out.Data[s*f.Lines+l] = f.Data[l*f.Samples+s]
		}
	}
	return out
}

// DisplayImage is an 8-bit grayscale image ready for rendering.
// Row y holds scan line y, so Width equals the samples per line and Height
// equals the number of lines.
type DisplayImage struct {
	Width  int
	Height int

	// Stride is the distance in bytes between vertically adjacent pixels.
	// It always equals Width.
	Stride int

	Pix []uint8
}

// NewDisplayImage allocates a black image of the given size.
func NewDisplayImage(width, height int) (*DisplayImage, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d image", ErrInvalidDimensions, width, height)
	}
	return &DisplayImage{
		Width:  width,
		Height: height,
		Stride: width,
		Pix:    make([]uint8, width*height),
	}, nil
}

// At returns the intensity at column x of row y.
func (d *DisplayImage) At(x, y int) uint8 {
	return d.Pix[y*d.Stride+x]
}

// Gray exposes the image as an *image.Gray sharing the pixel buffer.
func (d *DisplayImage) Gray() *image.Gray {
	return &image.Gray{
		Pix:    d.Pix,
		Stride: d.Stride,
		Rect:   image.Rect(0, 0, d.Width, d.Height),
	}
}
