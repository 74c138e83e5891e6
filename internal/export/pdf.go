package export

import (
	"fmt"
	"sort"

	"github.com/jung-kurt/gofpdf"

	"lessondeck/internal/domain"
)

// pxToMM converts capture-pixel coordinates to the A4 landscape page.
// Capture space is device-local, so this is a fixed scale rather than a
// faithful reprojection; fidelity is the renderer's concern, not ours.
const pxToMM = 0.22

// PDF writes one page per slide with that slide's annotations: strokes
// as polylines in their color and width, erase strokes in white, text
// boxes as labels at their position. Slides with no drawing still get a
// page so numbering matches the deck.
func PDF(path string, slideCount int, drawings map[int]domain.DrawingModel) error {
	p := gofpdf.New("L", "mm", "A4", "")
	p.SetFont("Helvetica", "", 12)

	indices := make([]int, 0, len(drawings))
	for i := range drawings {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	if slideCount < 1 {
		if len(indices) == 0 {
			slideCount = 1
		} else {
			slideCount = indices[len(indices)-1] + 1
		}
	}

	for i := 0; i < slideCount; i++ {
		p.AddPage()
		m, ok := drawings[i]
		if !ok {
			continue
		}
		drawSlide(p, m)
	}

	if err := p.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawSlide(p *gofpdf.Fpdf, m domain.DrawingModel) {
	for _, stroke := range m.Paths {
		if len(stroke.Points) < 2 {
			continue
		}
		r, g, b := hexColor(stroke.Color)
		if stroke.Mode == domain.ModeErase {
			r, g, b = 255, 255, 255
		}
		p.SetDrawColor(r, g, b)
		p.SetLineWidth(stroke.Width * pxToMM)
		for i := 1; i < len(stroke.Points); i++ {
			from, to := stroke.Points[i-1], stroke.Points[i]
			p.Line(from.X*pxToMM, from.Y*pxToMM, to.X*pxToMM, to.Y*pxToMM)
		}
	}

	for _, box := range m.TextBoxes {
		r, g, b := hexColor(box.Color)
		p.SetTextColor(r, g, b)
		p.Text(box.X*pxToMM, box.Y*pxToMM, box.Text)
	}
	p.SetTextColor(0, 0, 0)
}

// hexColor parses #RRGGBB (or #RGB); anything unparseable renders black.
func hexColor(s string) (int, int, int) {
	if len(s) == 4 && s[0] == '#' {
		s = "#" + string(s[1]) + string(s[1]) + string(s[2]) + string(s[2]) + string(s[3]) + string(s[3])
	}
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0
	}
	var r, g, b int
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0
	}
	return r, g, b
}
