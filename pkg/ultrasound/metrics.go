package ultrasound

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"sonoview/internal/models"
)

// ImageMetrics summarizes the appearance of a generated image.
type ImageMetrics struct {
	// Mean and StdDev of all display intensities
	Mean   float64
	StdDev float64

	// Entropy of the intensity histogram in bits
	Entropy float64

	// OrganMean and BackgroundMean are the mean intensities inside and
	// outside the simulated organ
	OrganMean      float64
	BackgroundMean float64

	// ContrastDB is 20*log10(OrganMean/BackgroundMean). Zero when either
	// mean is zero.
	ContrastDB float64

	// SpeckleSNR is the organ mean divided by the organ standard deviation,
	// the usual measure of fully developed speckle.
	SpeckleSNR float64
}

// ComputeMetrics measures img. mask selects organ pixels and must match
// the pixel count; a nil mask leaves the organ statistics at zero.
func ComputeMetrics(img *models.DisplayImage, mask []bool) ImageMetrics {
	var m ImageMetrics
	if img == nil || len(img.Pix) == 0 {
		return m
	}

	values := make([]float64, len(img.Pix))
	hist := make([]float64, 256)
	for i, p := range img.Pix {
		values[i] = float64(p)
		hist[p]++
	}

	m.Mean, m.StdDev = stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		m.StdDev = 0
	}

	for i := range hist {
		hist[i] /= float64(len(values))
	}
	m.Entropy = stat.Entropy(hist) / math.Ln2

	if len(mask) != len(values) {
		return m
	}

	var organ, background []float64
	for i, inside := range mask {
		if inside {
			organ = append(organ, values[i])
		} else {
			background = append(background, values[i])
		}
	}

	var organStd float64
	if len(organ) > 0 {
		m.OrganMean = stat.Mean(organ, nil)
	}
	if len(organ) > 1 {
		organStd = stat.StdDev(organ, nil)
	}
	if len(background) > 0 {
		m.BackgroundMean = stat.Mean(background, nil)
	}
	if m.OrganMean > 0 && m.BackgroundMean > 0 {
		m.ContrastDB = 20 * math.Log10(m.OrganMean/m.BackgroundMean)
	}
	if organStd > 0 {
		m.SpeckleSNR = m.OrganMean / organStd
	}
	return m
}
