package overlay

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"safemap/internal/models"
)

// heatMinIntensity drops faint cells so the basemap stays readable
const heatMinIntensity = 0.08

var heatGlyphs = []rune{'░', '▒', '▓', '█'}

var heatRamp = []colorful.Color{
	mustHex("#1e3a8a"),
	mustHex("#16a34a"),
	mustHex("#facc15"),
	mustHex("#f97316"),
	mustHex("#dc2626"),
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("overlay: bad heat colour %q: %v", s, err))
	}
	return c
}

// HeatLayer accumulates weighted samples per cell and shades them on a colour ramp
type HeatLayer struct {
	Points []models.HeatPoint
}

// NewHeatLayer builds a heat layer
func NewHeatLayer(points []models.HeatPoint) *HeatLayer {
	return &HeatLayer{Points: points}
}

// Draw bins samples into cells with a 3x3 blur kernel, normalizes by the densest cell
// and paints each cell above the floor
func (l *HeatLayer) Draw(c Canvas, p Projector) {
	w, h := c.Width(), c.Height()
	if w <= 0 || h <= 0 || len(l.Points) == 0 {
		return
	}

	grid := make([]float64, w*h)
	for _, hp := range l.Points {
		sp := p.Project(hp.LatLon)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				x, y := sp.X+dx, sp.Y+dy
				if x < 0 || x >= w || y < 0 || y >= h {
					continue
				}
				k := 0.5
				if dx == 0 && dy == 0 {
					k = 1
				}
				grid[y*w+x] += hp.Weight * k
			}
		}
	}

	maxVal := 0.0
	for _, v := range grid {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		return
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t := grid[y*w+x] / maxVal
			if t < heatMinIntensity {
				continue
			}
			c.Set(x, y, HeatGlyph(t), tcell.StyleDefault.Foreground(HeatColor(t)))
		}
	}
}

// HeatColor maps an intensity in [0,1] onto the ramp
func HeatColor(t float64) tcell.Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	seg := t * float64(len(heatRamp)-1)
	i := int(seg)
	if i >= len(heatRamp)-1 {
		i = len(heatRamp) - 2
	}

	r, g, b := heatRamp[i].BlendHcl(heatRamp[i+1], seg-float64(i)).Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// HeatGlyph picks a denser shade block for higher intensity
func HeatGlyph(t float64) rune {
	i := int(t * float64(len(heatGlyphs)))
	if i >= len(heatGlyphs) {
		i = len(heatGlyphs) - 1
	}
	if i < 0 {
		i = 0
	}
	return heatGlyphs[i]
}
