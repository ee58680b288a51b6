package render

import (
	"safemap/internal/geo"

	"github.com/gdamore/tcell/v2"
)

// Style definitions for basemap features and chrome
var (
	StyleBoundary  = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	StyleCoastline = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
	StyleRoad      = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	StylePlace     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StyleLabel     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	StyleCrosshair = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// GetStyleForFeature returns the appropriate style for a feature type
func GetStyleForFeature(ftype geo.FeatureType) tcell.Style {
	switch ftype {
	case geo.FeatureBoundary:
		return StyleBoundary
	case geo.FeatureCoastline:
		return StyleCoastline
	case geo.FeatureRoad:
		return StyleRoad
	case geo.FeaturePlace:
		return StylePlace
	default:
		return tcell.StyleDefault
	}
}

// GetCharForFeature returns the appropriate character for drawing a feature
func GetCharForFeature(ftype geo.FeatureType) rune {
	switch ftype {
	case geo.FeatureBoundary:
		return '-'
	case geo.FeatureCoastline:
		return '~'
	case geo.FeatureRoad:
		return '='
	default:
		return '·'
	}
}
