package echo

import "math"

// truncate is the number of standard deviations the kernel extends on
// each side of its centre.
const truncate = 4.0

// gaussianKernel returns normalized 1-D Gaussian weights of radius
// int(truncate*sigma+0.5).
func gaussianKernel(sigma float64) []float64 {
	radius := int(truncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)

	sum := 0.0
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-0.5 * float64(i*i) / (sigma * sigma))
		kernel[i+radius] = w
		sum += w
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// reflectIndex maps an out-of-range index back into [0, n) using half-sample
// symmetric reflection (d c b a | a b c d | d c b a). The pattern repeats
// with period 2n so kernels wider than the signal still land in range.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// convolve1D applies kernel along one axis of a row-major rows x cols grid.
// When alongRows is true every row is filtered, otherwise every column.
func convolve1D(src []float64, rows, cols int, kernel []float64, alongRows bool) []float64 {
	dst := make([]float64, len(src))
	radius := len(kernel) / 2

	if alongRows {
		for r := 0; r < rows; r++ {
			row := src[r*cols : (r+1)*cols]
			for c := 0; c < cols; c++ {
				acc := 0.0
				for k := -radius; k <= radius; k++ {
					acc += kernel[k+radius] * row[reflectIndex(c+k, cols)]
				}
				dst[r*cols+c] = acc
			}
		}
		return dst
	}

	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			acc := 0.0
			for k := -radius; k <= radius; k++ {
				acc += kernel[k+radius] * src[reflectIndex(r+k, rows)*cols+c]
			}
			dst[r*cols+c] = acc
		}
	}
	return dst
}

// GaussianFilter smooths a row-major rows x cols grid with an isotropic
// Gaussian of standard deviation sigma (in cells). Boundaries are handled
// by reflection. A sigma of zero returns an unmodified copy.
func GaussianFilter(data []float64, rows, cols int, sigma float64) []float64 {
	if sigma <= 0 {
		out := make([]float64, len(data))
		copy(out, data)
		return out
	}

	kernel := gaussianKernel(sigma)
	tmp := convolve1D(data, rows, cols, kernel, false)
	return convolve1D(tmp, rows, cols, kernel, true)
}
