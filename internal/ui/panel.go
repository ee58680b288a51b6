package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"safemap/internal/controller"
	"safemap/internal/render"
)

var (
	StylePanel       = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StylePanelDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	StyleStatus      = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	StyleError       = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	StyleAlert       = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorRed).Bold(true)
	StyleListItem    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StyleListSelect  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	StyleModeActive  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	StyleLegendRoute = tcell.StyleDefault.Foreground(tcell.ColorLime)
)

// box is a bordered, opaque screen region
type box struct {
	x, y          int
	width, height int
}

// clear blanks the inside of the box
func (b box) clear(screen tcell.Screen) {
	for row := b.y + 1; row < b.y+b.height-1; row++ {
		for col := b.x + 1; col < b.x+b.width-1; col++ {
			screen.SetContent(col, row, ' ', nil, tcell.StyleDefault)
		}
	}
}

// border draws the outline with a centred title
func (b box) border(screen tcell.Screen, title string) {
	style := render.StyleLabel

	screen.SetContent(b.x, b.y, '┌', nil, style)
	screen.SetContent(b.x+b.width-1, b.y, '┐', nil, style)
	screen.SetContent(b.x, b.y+b.height-1, '└', nil, style)
	screen.SetContent(b.x+b.width-1, b.y+b.height-1, '┘', nil, style)

	for i := 1; i < b.width-1; i++ {
		screen.SetContent(b.x+i, b.y, '─', nil, style)
		screen.SetContent(b.x+i, b.y+b.height-1, '─', nil, style)
	}

	for i := 1; i < b.height-1; i++ {
		screen.SetContent(b.x, b.y+i, '│', nil, style)
		screen.SetContent(b.x+b.width-1, b.y+i, '│', nil, style)
	}

	if title != "" {
		title = " " + title + " "
		tx := b.x + (b.width-runewidth.StringWidth(title))/2
		putText(screen, tx, b.y, b.width-2, title, StylePanel.Bold(true))
	}
}

// line writes text on an inner row, truncated to the box
func (b box) line(screen tcell.Screen, row int, text string, style tcell.Style) {
	if row < 1 || row >= b.height-1 {
		return
	}
	putText(screen, b.x+2, b.y+row, b.width-4, text, style)
}

// putText draws text cut to maxWidth cells and returns the cells used
func putText(screen tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) int {
	if maxWidth <= 0 {
		return 0
	}
	text = runewidth.Truncate(text, maxWidth, "…")

	col := x
	for _, ch := range text {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		screen.SetContent(col, y, ch, nil, style)
		col += w
	}
	return col - x
}

// ControlPanel shows the interaction mode, status line and route legend
type ControlPanel struct {
	box
}

// NewControlPanel creates a new control panel
func NewControlPanel(x, y, width, height int) *ControlPanel {
	return &ControlPanel{box{x: x, y: y, width: width, height: height}}
}

// Draw renders the control panel
func (p *ControlPanel) Draw(screen tcell.Screen, c *controller.Controller) {
	p.clear(screen)
	p.border(screen, "Safety Map")

	navStyle, reportStyle := StylePanelDim, StylePanelDim
	switch c.Mode() {
	case controller.ModeSelectingStart, controller.ModeSelectingEnd:
		navStyle = StyleModeActive
	case controller.ModeReporting:
		reportStyle = StyleModeActive
	}
	col := p.x + 2
	col += putText(screen, col, p.y+1, p.width-4, "[n] Navigate", navStyle) + 2
	putText(screen, col, p.y+1, p.x+p.width-2-col, "[i] Report", reportStyle)

	tracking := "off"
	if c.Tracking() {
		tracking = "on"
		if pos := c.Position(); pos != nil {
			tracking = fmt.Sprintf("%s ±%.0fm", pos.Position, pos.Accuracy)
		}
	}

	p.line(screen, 2, c.Mode().Hint(), StylePanel)
	p.line(screen, 3, "Tracking: "+tracking, StylePanelDim)

	status := c.Status()
	style := StyleStatus
	if strings.HasPrefix(status, "Error:") {
		style = StyleError
	}
	p.line(screen, 4, status, style)

	route := c.Route()
	switch {
	case route.Result() != nil:
		p.line(screen, 5, fmt.Sprintf("• Safest route  %.1f km", route.Result().Length()/1000), StyleLegendRoute)
	case route.Pending():
		p.line(screen, 5, "• Safest route  …", StyleLegendRoute)
	}
}

// LayersPanel shows the overlay toggles
type LayersPanel struct {
	box
}

// NewLayersPanel creates a new layers panel
func NewLayersPanel(x, y, width, height int) *LayersPanel {
	return &LayersPanel{box{x: x, y: y, width: width, height: height}}
}

// Draw renders one checkbox per toggleable overlay
func (p *LayersPanel) Draw(screen tcell.Screen, v controller.Visibility) {
	p.clear(screen)
	p.border(screen, "Layers")

	for i, kind := range controller.Toggleable {
		mark := ' '
		if v.Get(kind) {
			mark = 'x'
		}
		p.line(screen, i+1, fmt.Sprintf("%d [%c] %s", i+1, mark, kind), StylePanel)
	}
}

// AlertText is the proximity banner message
const AlertText = "CAUTION: ENTERING HIGH-DENSITY CRIME ZONE"

// drawAlertBanner draws the proximity warning across the top row
func drawAlertBanner(screen tcell.Screen, width int) {
	for x := 0; x < width; x++ {
		screen.SetContent(x, 0, ' ', nil, StyleAlert)
	}

	text := "⚠ " + AlertText + "  (d: dismiss)"
	x := (width - runewidth.StringWidth(text)) / 2
	if x < 0 {
		x = 0
	}
	putText(screen, x, 0, width, text, StyleAlert)
}

// contains reports whether a screen cell lies inside the box
func (b box) contains(x, y int) bool {
	return x >= b.x && x < b.x+b.width && y >= b.y && y < b.y+b.height
}

// row returns the content row under a cell, counting from 0 below the top border
func (b box) row(x, y int) (int, bool) {
	if !b.contains(x, y) || y == b.y || y == b.y+b.height-1 {
		return 0, false
	}
	return y - b.y - 1, true
}
