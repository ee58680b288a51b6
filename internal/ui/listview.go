package ui

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"

	"safemap/internal/models"
	"safemap/internal/render"
)

// ListView displays a scrollable list of user-reported incidents, newest first
type ListView struct {
	incidents     []models.Incident
	selectedIndex int
	scrollOffset  int
	maxVisible    int
	box
}

// NewListView creates a new incident list view
func NewListView(x, y, width, height int) *ListView {
	l := &ListView{box: box{x: x, y: y, width: width, height: height}}
	l.UpdateDimensions(x, y, width, height)
	return l
}

// Update refreshes the incident list
func (l *ListView) Update(incidents []models.Incident) {
	sorted := make([]models.Incident, len(incidents))
	copy(sorted, incidents)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.After(sorted[j].Timestamp)
		}
		return sorted[i].ID > sorted[j].ID
	})
	l.incidents = sorted

	if l.selectedIndex >= len(l.incidents) {
		l.selectedIndex = len(l.incidents) - 1
	}
	if l.selectedIndex < 0 {
		l.selectedIndex = 0
	}

	l.adjustScroll()
}

// SelectNext moves selection down
func (l *ListView) SelectNext() {
	if l.selectedIndex < len(l.incidents)-1 {
		l.selectedIndex++
		l.adjustScroll()
	}
}

// SelectPrev moves selection up
func (l *ListView) SelectPrev() {
	if l.selectedIndex > 0 {
		l.selectedIndex--
		l.adjustScroll()
	}
}

// adjustScroll adjusts scroll offset to keep selected item visible
func (l *ListView) adjustScroll() {
	if l.selectedIndex >= l.scrollOffset+l.maxVisible {
		l.scrollOffset = l.selectedIndex - l.maxVisible + 1
	}

	if l.selectedIndex < l.scrollOffset {
		l.scrollOffset = l.selectedIndex
	}

	if l.scrollOffset < 0 {
		l.scrollOffset = 0
	}
}

// GetSelected returns the currently selected incident
func (l *ListView) GetSelected() *models.Incident {
	if l.selectedIndex >= 0 && l.selectedIndex < len(l.incidents) {
		return &l.incidents[l.selectedIndex]
	}
	return nil
}

// Draw renders the list view to the screen
func (l *ListView) Draw(screen tcell.Screen) {
	l.clear(screen)
	l.border(screen, fmt.Sprintf("Reports (%d)", len(l.incidents)))

	if len(l.incidents) == 0 {
		l.line(screen, 1, "No reports yet", StylePanelDim)
		return
	}

	visibleCount := min(l.maxVisible, len(l.incidents)-l.scrollOffset)
	for i := 0; i < visibleCount; i++ {
		idx := l.scrollOffset + i
		inc := l.incidents[idx]

		text := fmt.Sprintf("%-10s %s", incidentTime(inc), inc.Category)
		if inc.Description != "" {
			text += ": " + inc.Description
		}

		style := StyleListItem
		if idx == l.selectedIndex {
			style = StyleListSelect
		}

		y := l.y + i + 1
		for col := l.x + 1; col < l.x+l.width-1; col++ {
			screen.SetContent(col, y, ' ', nil, style)
		}
		putText(screen, l.x+1, y, l.width-2, text, style)
	}

	if len(l.incidents) > l.maxVisible {
		screen.SetContent(l.x+l.width-2, l.y, '↕', nil, render.StyleLabel)
	}
}

func incidentTime(inc models.Incident) string {
	if inc.Timestamp.IsZero() {
		return fmt.Sprintf("#%d", inc.ID)
	}
	return inc.Timestamp.Local().Format("Jan 2 15:04")
}

// UpdateDimensions updates the view dimensions
func (l *ListView) UpdateDimensions(x, y, width, height int) {
	l.box = box{x: x, y: y, width: width, height: height}
	l.maxVisible = height - 2
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
	l.adjustScroll()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
