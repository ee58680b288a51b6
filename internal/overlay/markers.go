package overlay

import (
	"github.com/gdamore/tcell/v2"
)

// MarkerKind is the closed set of point symbols drawn on the map
type MarkerKind int

const (
	MarkerHotspot MarkerKind = iota
	MarkerPolice
	MarkerHospital
	MarkerReport
	MarkerRouteStart
	MarkerRouteEnd
	MarkerUser
	markerKindCount
)

type markerSymbol struct {
	glyph rune
	style tcell.Style
}

var markerSymbols = [markerKindCount]markerSymbol{
	MarkerHotspot:    {'▲', tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)},
	MarkerPolice:     {'P', tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy).Bold(true)},
	MarkerHospital:   {'H', tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkRed).Bold(true)},
	MarkerReport:     {'!', tcell.StyleDefault.Foreground(tcell.ColorViolet).Bold(true)},
	MarkerRouteStart: {'S', tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreen).Bold(true)},
	MarkerRouteEnd:   {'E', tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorRed).Bold(true)},
	MarkerUser:       {'◉', tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue).Bold(true)},
}

// Glyph returns the character drawn for the marker kind
func (k MarkerKind) Glyph() rune {
	return markerSymbols[k].glyph
}

// Style returns the style drawn for the marker kind
func (k MarkerKind) Style() tcell.Style {
	return markerSymbols[k].style
}
