package echo

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noiseless(lines, samples int) Params {
	return Params{
		Lines:       lines,
		Samples:     samples,
		OrganRadius: 0.5,
	}
}

func TestGenerateOrganEchoesShape(t *testing.T) {
	dims := [][2]int{{1, 1}, {1, 7}, {4, 4}, {3, 16}, {16, 3}, {128, 64}}
	for _, d := range dims {
		p := DefaultParams()
		p.Lines, p.Samples = d[0], d[1]

		field, err := GenerateOrganEchoes(p, rand.NewPCG(1, 2))
		require.NoError(t, err)
		assert.Equal(t, d[0], field.Lines)
		assert.Equal(t, d[1], field.Samples)
		assert.Len(t, field.Data, d[0]*d[1])
	}
}

func TestGenerateOrganEchoesDeterministicWithSeed(t *testing.T) {
	p := DefaultParams()
	p.Lines, p.Samples = 32, 64

	a, err := GenerateOrganEchoes(p, rand.NewPCG(7, 11))
	require.NoError(t, err)
	b, err := GenerateOrganEchoes(p, rand.NewPCG(7, 11))
	require.NoError(t, err)
	c, err := GenerateOrganEchoes(p, rand.NewPCG(8, 11))
	require.NoError(t, err)

	for i := range a.Data {
		require.Equal(t, math.Float64bits(a.Data[i]), math.Float64bits(b.Data[i]), "cell %d", i)
	}
	assert.NotEqual(t, a.Data, c.Data)
}

func TestGenerateOrganEchoesDiscShape(t *testing.T) {
	p := noiseless(17, 33)
	p.OrganRadius = 0.6

	field, err := GenerateOrganEchoes(p, nil)
	require.NoError(t, err)

	x := linspace(p.Lines, -1, 1)
	y := linspace(p.Samples, -1, 1)
	for l := 0; l < p.Lines; l++ {
		for s := 0; s < p.Samples; s++ {
			want := 0.0
			if math.Hypot(x[l], y[s]) <= p.OrganRadius {
				want = 1.0
			}
			assert.InDelta(t, want, field.At(l, s), 1e-12, "line %d sample %d", l, s)
		}
	}
}

func TestGenerateOrganEchoesFourByFour(t *testing.T) {
	field, err := GenerateOrganEchoes(noiseless(4, 4), nil)
	require.NoError(t, err)

	// Only the four cells at (+-1/3, +-1/3) are within 0.5 of the origin.
	for l := 0; l < 4; l++ {
		for s := 0; s < 4; s++ {
			want := 0.0
			if (l == 1 || l == 2) && (s == 1 || s == 2) {
				want = 1.0
			}
			assert.InDelta(t, want, field.At(l, s), 1e-12, "line %d sample %d", l, s)
		}
	}
	for _, corner := range [][2]int{{0, 0}, {0, 3}, {3, 0}, {3, 3}} {
		assert.Equal(t, 0.0, field.At(corner[0], corner[1]))
	}
}

func TestGenerateOrganEchoesNoiseStatistics(t *testing.T) {
	p := noiseless(64, 64)
	p.OrganRadius = 0.01 // only background cells
	p.NoiseLevel = 0.5

	field, err := GenerateOrganEchoes(p, rand.NewPCG(3, 5))
	require.NoError(t, err)

	var sum, sumSq float64
	for _, v := range field.Data {
		sum += v
		sumSq += v * v
	}
	n := float64(len(field.Data))
	mean := sum / n
	std := math.Sqrt(sumSq/n - mean*mean)
	assert.InDelta(t, 0.0, mean, 0.05)
	assert.InDelta(t, 0.5, std, 0.05)
}

func TestGenerateOrganEchoesSmoothingKeepsRange(t *testing.T) {
	p := noiseless(32, 32)
	p.SmoothingSigma = 3

	field, err := GenerateOrganEchoes(p, nil)
	require.NoError(t, err)

	for _, v := range field.Data {
		assert.GreaterOrEqual(t, v, -1e-12)
		assert.LessOrEqual(t, v, 1+1e-12)
	}
	// Blurring pulls the disc centre below 1 only slightly and lifts the edge.
	assert.Greater(t, field.At(16, 16), 0.9)
	assert.Greater(t, field.At(16, 7), 0.0)
	assert.Less(t, field.At(16, 7), 1.0)
}

func TestGenerateOrganEchoesRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   error
	}{
		{"zero lines", Params{Lines: 0, Samples: 4, OrganRadius: 0.5}, ErrInvalidDimensions},
		{"negative samples", Params{Lines: 4, Samples: -1, OrganRadius: 0.5}, ErrInvalidDimensions},
		{"zero radius", Params{Lines: 4, Samples: 4}, ErrInvalidRadius},
		{"radius above one", Params{Lines: 4, Samples: 4, OrganRadius: 1.01}, ErrInvalidRadius},
		{"nan radius", Params{Lines: 4, Samples: 4, OrganRadius: math.NaN()}, ErrInvalidRadius},
		{"negative noise", Params{Lines: 4, Samples: 4, OrganRadius: 0.5, NoiseLevel: -1}, ErrInvalidParameter},
		{"negative sigma", Params{Lines: 4, Samples: 4, OrganRadius: 0.5, SmoothingSigma: -1}, ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, err := GenerateOrganEchoes(tt.params, nil)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, field)
		})
	}
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{-1}, linspace(1, -1, 1))
	assert.Equal(t, []float64{-1, 1}, linspace(2, -1, 1))
	got := linspace(5, -1, 1)
	want := []float64{-1, -0.5, 0, 0.5, 1}
	assert.InDeltaSlice(t, want, got, 1e-15)
}

func TestOrganMaskCount(t *testing.T) {
	mask, err := OrganMask(noiseless(4, 4))
	require.NoError(t, err)

	inside := 0
	for _, m := range mask {
		if m {
			inside++
		}
	}
	assert.Equal(t, 4, inside)
}
