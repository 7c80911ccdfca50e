package views

import "peopledir/internal/domain"

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// Messages for view switching
type (
	SwitchToDirectoryMsg struct{}

	// SwitchToOrgChartMsg opens the org chart; an empty RootID keeps the
	// current root or falls back to the configured one
	SwitchToOrgChartMsg struct {
		RootID domain.EmployeeID
	}

	SwitchToFormMsg struct{}

	SwitchToHelpMsg struct{}

	// BackMsg returns from an overlay view to the one it covered
	BackMsg struct{}

	// OpenFileMsg asks the app to show a local file, such as an export
	OpenFileMsg struct {
		Path string
	}
)
