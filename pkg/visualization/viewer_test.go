package visualization

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sonoview/internal/models"
)

// testField builds a field where every value encodes its line and sample.
func testField(t *testing.T, lines, samples int) *models.EchoField {
	field, err := models.NewEchoField(lines, samples)
	if err != nil {
		t.Fatalf("Failed to create field: %v", err)
	}
	for l := 0; l < lines; l++ {
		for s := 0; s < samples; s++ {
			field.Set(l, s, float64(l*1000+s))
		}
	}
	return field
}

// TestNewViewer verifies that a new viewer is created with the correct parameters
func TestNewViewer(t *testing.T) {
	field := testField(t, 4, 8)
	viewer := NewViewer(field, 40e6)

	if viewer.field != field {
		t.Errorf("Expected viewer to keep the field pointer")
	}
	if viewer.samplingFrequency != 40e6 {
		t.Errorf("Expected sampling frequency %g, got %g", 40e6, viewer.samplingFrequency)
	}
}

// TestExtractProfile verifies that A-lines and lateral profiles are extracted
func TestExtractProfile(t *testing.T) {
	field := testField(t, 4, 8)
	viewer := NewViewer(field, 0)

	aline, err := viewer.ExtractProfile("line", 2)
	if err != nil {
		t.Fatalf("Failed to extract A-line: %v", err)
	}
	if len(aline) != 8 {
		t.Fatalf("Expected A-line length 8, got %d", len(aline))
	}
	for s, v := range aline {
		if v != float64(2000+s) {
			t.Errorf("A-line sample %d: expected %d, got %f", s, 2000+s, v)
		}
	}

	// The profile must be a copy
	aline[0] = -1
	if field.At(2, 0) == -1 {
		t.Errorf("ExtractProfile returned a view into the field")
	}

	lateral, err := viewer.ExtractProfile("depth", 5)
	if err != nil {
		t.Fatalf("Failed to extract lateral profile: %v", err)
	}
	if len(lateral) != 4 {
		t.Fatalf("Expected lateral profile length 4, got %d", len(lateral))
	}
	for l, v := range lateral {
		if v != float64(l*1000+5) {
			t.Errorf("Lateral profile line %d: expected %d, got %f", l, l*1000+5, v)
		}
	}

	if _, err := viewer.ExtractProfile("diagonal", 0); !errors.Is(err, ErrInvalidAxis) {
		t.Errorf("Expected ErrInvalidAxis, got %v", err)
	}
	if _, err := viewer.ExtractProfile("line", 4); err == nil {
		t.Error("Expected error for out of bounds line, got nil")
	}
	if _, err := viewer.ExtractProfile("depth", 8); err == nil {
		t.Error("Expected error for out of bounds depth, got nil")
	}
	if _, err := viewer.ExtractProfile("line", -1); err == nil {
		t.Error("Expected error for negative position, got nil")
	}
}

// TestDepthAxis verifies the A-line abscissa in samples and microseconds
func TestDepthAxis(t *testing.T) {
	field := testField(t, 1, 5)

	samples := NewViewer(field, 0).DepthAxis()
	for i, v := range samples {
		if v != float64(i) {
			t.Errorf("Expected sample index %d, got %f", i, v)
		}
	}

	micros := NewViewer(field, 40e6).DepthAxis()
	if got := micros[4]; got < 0.0999 || got > 0.1001 {
		t.Errorf("Expected 0.1us at sample 4 for 40MHz, got %f", got)
	}
}

// TestSaveALine verifies that an A-line plot is written to disk
func TestSaveALine(t *testing.T) {
	tmpDir := t.TempDir()
	viewer := NewViewer(testField(t, 3, 64), 40e6)

	path := filepath.Join(tmpDir, "plots", "aline.png")
	if err := viewer.SaveALine(1, "Centre A-line", path); err != nil {
		t.Fatalf("Failed to save A-line: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("A-line plot not created: %v", err)
	}
	if info.Size() == 0 {
		t.Error("A-line plot is empty")
	}

	if err := viewer.SaveALine(7, "missing", filepath.Join(tmpDir, "bad.png")); err == nil {
		t.Error("Expected error for out of range line, got nil")
	}
}
