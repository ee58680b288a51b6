package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"safemap/internal/controller"
	"safemap/internal/models"
)

// ReportView is the modal incident form
type ReportView struct {
	box
}

// NewReportView creates a report form centred on a screen of the given size
func NewReportView(screenWidth, screenHeight int) *ReportView {
	r := &ReportView{}
	r.UpdateDimensions(screenWidth, screenHeight)
	return r
}

// Draw renders the form for the workflow's current state
func (r *ReportView) Draw(screen tcell.Screen, w *controller.ReportWorkflow) {
	if !w.Open() {
		return
	}

	r.clear(screen)
	r.border(screen, "Report Incident")

	r.line(screen, 1, "Location: "+w.Location().String(), StylePanelDim)

	// Category chooser: the selected one is highlighted, Tab cycles
	col := r.x + 2
	col += putText(screen, col, r.y+3, r.width-4, "Category: ", StylePanel)
	for _, c := range models.Categories {
		style := StylePanelDim
		if c == w.Category() {
			style = StyleModeActive
		}
		if col+len(c)+1 >= r.x+r.width-2 {
			break
		}
		col += putText(screen, col, r.y+3, r.x+r.width-2-col, string(c), style) + 1
	}

	r.line(screen, 5, "Description:", StylePanel)
	cursor := "_"
	if w.State() == controller.ReportSubmitting {
		cursor = ""
	}
	r.line(screen, 6, "> "+tail(w.Description(), r.width-8)+cursor, StyleListItem)

	if msg := w.Error(); msg != "" {
		r.line(screen, 8, msg, StyleError)
	} else if w.State() == controller.ReportSubmitting {
		r.line(screen, 8, "Submitting...", StyleStatus)
	}

	help := "Tab: category  Enter: submit  Esc: cancel"
	putText(screen, r.x+(r.width-len(help))/2, r.y+r.height-1, r.width-2, help, StylePanelDim)
}

// tail keeps the end of s so the text being typed stays visible
func tail(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return fmt.Sprintf("…%s", string(runes[len(runes)-max+1:]))
}

// UpdateDimensions re-centres the form
func (r *ReportView) UpdateDimensions(screenWidth, screenHeight int) {
	width := min(72, screenWidth-4)
	height := 11
	r.box = box{
		x:      (screenWidth - width) / 2,
		y:      (screenHeight - height) / 2,
		width:  width,
		height: height,
	}
}
