package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"lessondeck/internal/domain"
)

func TestPDFWritesOnePagePerSlide(t *testing.T) {
	drawings := map[int]domain.DrawingModel{
		0: domain.EmptyDrawing().AddStroke(domain.Stroke{
			Points: []domain.Point{{X: 10, Y: 10}, {X: 200, Y: 120}},
			Color:  "#FF0000",
			Width:  3,
			Mode:   domain.ModeDraw,
		}),
		2: domain.EmptyDrawing().AddTextBox(domain.Point{X: 40, Y: 40}, "#000000"),
	}

	path := filepath.Join(t.TempDir(), "deck.pdf")
	if err := PDF(path, 3, drawings); err != nil {
		t.Fatalf("export: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
	got := bytes.Count(raw, []byte("/Type /Page")) - bytes.Count(raw, []byte("/Type /Pages"))
	if got != 3 {
		t.Fatalf("page count = %d, want 3", got)
	}
}

func TestPDFEmptyDeckStillProducesAPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := PDF(path, 0, nil); err != nil {
		t.Fatalf("export: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("output is empty")
	}
}

func TestHexColor(t *testing.T) {
	cases := []struct {
		in      string
		r, g, b int
	}{
		{"#FF0000", 255, 0, 0},
		{"#00ff00", 0, 255, 0},
		{"#00F", 0, 0, 255},
		{"purple", 0, 0, 0},
		{"", 0, 0, 0},
	}
	for _, c := range cases {
		r, g, b := hexColor(c.in)
		if r != c.r || g != c.g || b != c.b {
			t.Errorf("hexColor(%q) = %d,%d,%d want %d,%d,%d", c.in, r, g, b, c.r, c.g, c.b)
		}
	}
}
