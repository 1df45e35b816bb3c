package visualization

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"sonoview/internal/models"
)

// PlotProfile draws y against x as a line plot and saves it to path. The
// format follows the extension (png, svg, pdf...).
func PlotProfile(x, y []float64, title, xLabel, yLabel, path string) error {
	if len(x) != len(y) {
		return fmt.Errorf("profile length mismatch: %d x values, %d y values", len(x), len(y))
	}

	pts := make(plotter.XYs, len(y))
	for i := range y {
		pts[i] = plotter.XY{X: x[i], Y: y[i]}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build line: %w", err)
	}
	line.Width = vg.Points(1)
	p.Add(line)

	return savePlot(p, 10*vg.Inch, 4*vg.Inch, path)
}

// PlotHistogram saves the intensity histogram of img to path.
func PlotHistogram(img *models.DisplayImage, bins int, path string) error {
	if img == nil || len(img.Pix) == 0 {
		return fmt.Errorf("histogram of an empty image")
	}

	values := make(plotter.Values, len(img.Pix))
	for i, p := range img.Pix {
		values[i] = float64(p)
	}

	p := plot.New()
	p.Title.Text = "Intensity histogram"
	p.X.Label.Text = "intensity"
	p.Y.Label.Text = "pixels"

	h, err := plotter.NewHist(values, bins)
	if err != nil {
		return fmt.Errorf("failed to build histogram: %w", err)
	}
	p.Add(h)

	return savePlot(p, 6*vg.Inch, 4*vg.Inch, path)
}

func savePlot(p *plot.Plot, w, h vg.Length, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create plot directory: %w", err)
	}
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	return nil
}
