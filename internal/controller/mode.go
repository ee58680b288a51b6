package controller

// Mode decides what a map click means
type Mode int

const (
	ModeView Mode = iota
	ModeSelectingStart
	ModeSelectingEnd
	ModeReporting
)

// String returns a string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeView:
		return "View"
	case ModeSelectingStart:
		return "Select Start"
	case ModeSelectingEnd:
		return "Select End"
	case ModeReporting:
		return "Report"
	default:
		return "Unknown"
	}
}

// Hint is the instruction shown to the user for the mode
func (m Mode) Hint() string {
	switch m {
	case ModeSelectingStart:
		return "Click the map to set the START point"
	case ModeSelectingEnd:
		return "Click the map to set the END point"
	case ModeReporting:
		return "Click the map where the incident happened"
	default:
		return "n: navigate  i: report  t: track"
	}
}
