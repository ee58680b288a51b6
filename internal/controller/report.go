package controller

import (
	"context"
	"errors"
	"strings"

	"safemap/internal/api"
	"safemap/internal/geo"
	"safemap/internal/models"
)

// ErrEmptyDescription rejects a report before any request is made
var ErrEmptyDescription = errors.New("controller: incident description is empty")

// ReportState is the incident form lifecycle
type ReportState int

const (
	ReportClosed ReportState = iota
	ReportOpen
	ReportSubmitting
)

// String returns a string representation of the report state
func (s ReportState) String() string {
	switch s {
	case ReportClosed:
		return "Closed"
	case ReportOpen:
		return "Open"
	case ReportSubmitting:
		return "Submitting"
	default:
		return "Unknown"
	}
}

// ReportWorkflow is the incident form. The location is fixed when the form opens.
type ReportWorkflow struct {
	state       ReportState
	location    geo.LatLon
	category    models.Category
	description string
	err         string
	seq         uint64
}

func newReportWorkflow() ReportWorkflow {
	return ReportWorkflow{category: models.CategorySuspicious}
}

func (w *ReportWorkflow) State() ReportState        { return w.state }
func (w *ReportWorkflow) Location() geo.LatLon      { return w.location }
func (w *ReportWorkflow) Category() models.Category { return w.category }
func (w *ReportWorkflow) Description() string       { return w.description }

// Error returns the message shown inside the form after a failed submit
func (w *ReportWorkflow) Error() string { return w.err }

// Open reports whether the form is shown
func (w *ReportWorkflow) Open() bool { return w.state != ReportClosed }

func (w *ReportWorkflow) open(at geo.LatLon) {
	w.seq++
	w.state = ReportOpen
	w.location = at
	w.err = ""
}

// close hides the form and resets its fields. A submission still in flight is orphaned.
func (w *ReportWorkflow) close() {
	w.seq++
	w.state = ReportClosed
	w.location = geo.LatLon{}
	w.category = models.CategorySuspicious
	w.description = ""
	w.err = ""
}

func (w *ReportWorkflow) setDescription(text string) {
	if w.state == ReportOpen {
		w.description = text
	}
}

func (w *ReportWorkflow) setCategory(c models.Category) {
	if w.state == ReportOpen && c.Valid() {
		w.category = c
	}
}

// submit validates the form and returns the request. Validation failures make no request.
func (w *ReportWorkflow) submit(backend Backend) (Cmd, error) {
	if w.state != ReportOpen {
		return nil, nil
	}
	if strings.TrimSpace(w.description) == "" {
		w.err = "Please describe the incident."
		return nil, ErrEmptyDescription
	}

	w.state = ReportSubmitting
	w.err = ""

	seq := w.seq
	report := models.IncidentReport{
		Location:    w.location,
		Category:    w.category,
		Description: strings.TrimSpace(w.description),
	}
	return func(ctx context.Context) Msg {
		return reportSubmitted{seq: seq, err: backend.ReportIncident(ctx, report)}
	}, nil
}

// apply handles the submit result for the current form. Results for a discarded form
// are ignored.
func (w *ReportWorkflow) apply(msg reportSubmitted) {
	if msg.seq != w.seq || w.state != ReportSubmitting {
		return
	}

	if msg.err == nil {
		w.close()
		return
	}

	// Keep the input so the user can retry
	w.state = ReportOpen
	w.err = "Failed to report incident"
	if detail := api.Detail(msg.err); detail != "" {
		w.err += ": " + detail
	}
}
