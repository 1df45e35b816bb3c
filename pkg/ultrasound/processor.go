// Package ultrasound forms B-mode style images from simulated echo fields.
//
// The image formation consists of several steps:
// 1. Generating the echo field of a circular organ (package echo)
// 2. Envelope detection along each scan line (package envelope)
// 3. Logarithmic compression
// 4. Normalization to [0, 1]
// 5. Quantization to 8-bit grayscale
// 6. Calculating image quality metrics
package ultrasound

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"time"

	"sonoview/internal/logger"
	"sonoview/internal/models"
	"sonoview/pkg/config"
	"sonoview/pkg/echo"
	"sonoview/pkg/visualization"
)

const component = "ultrasound"

// DefaultSamplingFrequency is the nominal 40 MHz RF sampling rate.
const DefaultSamplingFrequency = 40e6

// Params holds the image generation parameters.
type Params struct {
	// Echo configures the simulated organ and noise.
	Echo echo.Params

	// SamplingFrequency of the simulated RF lines in Hz. It is accepted for
	// completeness; the image formation math does not depend on it.
	SamplingFrequency float64

	// SaveIntermediaryResults determines whether every stage is written to
	// IntermediaryDir as an image.
	SaveIntermediaryResults bool

	// IntermediaryDir is the directory where intermediary results will be saved.
	IntermediaryDir string
}

// DefaultParams returns the fixed parameters of the generate command:
// 128 lines, 1024 samples per line, organ radius 0.5 and 40 MHz sampling.
func DefaultParams() Params {
	return Params{
		Echo:              echo.DefaultParams(),
		SamplingFrequency: DefaultSamplingFrequency,
	}
}

// ParamsFromConfig maps the generator and output sections of cfg.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Echo: echo.Params{
			Lines:          cfg.Generator.Lines,
			Samples:        cfg.Generator.Samples,
			OrganRadius:    cfg.Generator.OrganRadius,
			NoiseLevel:     cfg.Generator.NoiseLevel,
			SmoothingSigma: cfg.Generator.SmoothingSigma,
		},
		SamplingFrequency:       cfg.Generator.SamplingFrequency,
		SaveIntermediaryResults: cfg.Output.SaveIntermediaryResults,
		IntermediaryDir:         cfg.Output.IntermediaryDir,
	}
}

// Processor runs the complete generation pipeline. Each call to Process
// produces a fresh image; nothing from a previous run is mutated.
type Processor struct {
	params *Params
	src    rand.Source
	log    logger.Logger

	// field, st and metrics describe the most recent run
	field   *models.EchoField
	st      *stages
	metrics ImageMetrics
}

// NewProcessor creates a processor. src feeds the noise generator and may
// be nil for a non-reproducible run. A nil log discards messages.
func NewProcessor(params *Params, src rand.Source, log logger.Logger) *Processor {
	if log == nil {
		log = logger.Nop()
	}
	return &Processor{
		params: params,
		src:    src,
		log:    log,
	}
}

// Process generates an echo field and forms the display image.
func (p *Processor) Process() (*models.DisplayImage, error) {
	start := time.Now()

	p.log.Info(component, "generating organ echoes", map[string]interface{}{
		"lines":   p.params.Echo.Lines,
		"samples": p.params.Echo.Samples,
		"radius":  p.params.Echo.OrganRadius,
		"noise":   p.params.Echo.NoiseLevel,
		"sigma":   p.params.Echo.SmoothingSigma,
	})
	field, err := echo.GenerateOrganEchoes(p.params.Echo, p.src)
	if err != nil {
		return nil, fmt.Errorf("failed to generate echo field: %w", err)
	}

	p.log.Debug(component, "forming image", nil)
	st, err := formStages(field)
	if err != nil {
		return nil, fmt.Errorf("failed to form image: %w", err)
	}

	mask, err := echo.OrganMask(p.params.Echo)
	if err != nil {
		return nil, fmt.Errorf("failed to build organ mask: %w", err)
	}

	p.field = field
	p.st = st
	p.metrics = ComputeMetrics(st.display, mask)

	if p.params.SaveIntermediaryResults {
		p.saveIntermediaryResults()
	}

	p.log.Info(component, "image generated", map[string]interface{}{
		"width":       st.display.Width,
		"height":      st.display.Height,
		"contrast_db": p.metrics.ContrastDB,
		"elapsed":     time.Since(start).String(),
	})
	return st.display, nil
}

// Metrics returns the quality metrics of the most recent run.
func (p *Processor) Metrics() ImageMetrics {
	return p.metrics
}

// EchoField returns the raw field of the most recent run, or nil.
func (p *Processor) EchoField() *models.EchoField {
	return p.field
}

// saveIntermediaryResults writes every stage of the last run. Failures are
// logged and otherwise ignored so a full disk never loses the image.
func (p *Processor) saveIntermediaryResults() {
	dir := p.params.IntermediaryDir
	w, h := p.field.Samples, p.field.Lines

	outputs := []struct {
		name string
		save func(path string) error
	}{
		{"01_echo_field.png", func(path string) error {
			return visualization.SaveImage(visualization.FieldImage(p.field.Data, w, h), path)
		}},
		{"02_envelope.png", func(path string) error {
			return visualization.SaveImage(visualization.FieldImage(p.st.envelope.Data, w, h), path)
		}},
		{"03_log_compressed.png", func(path string) error {
			return visualization.SaveImage(visualization.FieldImage(p.st.compressed, w, h), path)
		}},
		{"04_display.png", func(path string) error {
			return visualization.SaveImage(p.st.display.Gray(), path)
		}},
		{"05_center_aline.png", func(path string) error {
			viewer := visualization.NewViewer(p.st.envelope, p.params.SamplingFrequency)
			return viewer.SaveALine(p.field.Lines/2, "Envelope of the centre scan line", path)
		}},
		{"06_histogram.png", func(path string) error {
			return visualization.PlotHistogram(p.st.display, 64, path)
		}},
	}

	for _, out := range outputs {
		path := filepath.Join(dir, out.name)
		if err := out.save(path); err != nil {
			p.log.Warning(component, "failed to save intermediary result", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			continue
		}
		p.log.Debug(component, "saved intermediary result", map[string]interface{}{"path": path})
	}
}

// GenerateUltrasoundImage produces the standard synthetic image: 128 scan
// lines of 1024 samples through an organ of radius 0.5, sampled at 40 MHz.
func GenerateUltrasoundImage(src rand.Source) (*models.DisplayImage, error) {
	params := DefaultParams()
	return NewProcessor(&params, src, nil).Process()
}
