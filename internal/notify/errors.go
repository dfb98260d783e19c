package notify

// ErrorTypeConfig marks errors caused by an invalid device configuration.
const ErrorTypeConfig = "config"

// ConfigHint is shown alongside configuration errors.
const ConfigHint = "The configuration appears to be invalid. Check settings.json and restart the device."

// ServerError is an application error reported by the device.
type ServerError struct {
	Type      string
	Exc       string
	Traceback string
}

// ErrorNotice is what the error modal shows.
type ErrorNotice struct {
	ServerError
	// Hint is set only for configuration errors.
	Hint string
}

// ErrorDisplay renders the error modal. A nil notice closes it.
type ErrorDisplay interface {
	ShowError(n *ErrorNotice)
}

// ErrorSlot keeps the single most recent server error. No history is kept.
type ErrorSlot struct {
	display ErrorDisplay
	current *ErrorNotice
}

// NewErrorSlot creates an empty slot.
func NewErrorSlot(display ErrorDisplay) *ErrorSlot {
	return &ErrorSlot{display: display}
}

// Show replaces the current error and opens the modal.
func (s *ErrorSlot) Show(e ServerError) ErrorNotice {
	n := ErrorNotice{ServerError: e}
	if e.Type == ErrorTypeConfig {
		n.Hint = ConfigHint
	}
	s.current = &n
	s.display.ShowError(&n)
	return n
}

// Current returns the error being shown, if any.
func (s *ErrorSlot) Current() (ErrorNotice, bool) {
	if s.current == nil {
		return ErrorNotice{}, false
	}
	return *s.current, true
}

// Dismiss closes the modal.
func (s *ErrorSlot) Dismiss() {
	if s.current == nil {
		return
	}
	s.current = nil
	s.display.ShowError(nil)
}

// MultiErrorDisplay fans out to several displays in order.
type MultiErrorDisplay []ErrorDisplay

// ShowError forwards n to every display.
func (m MultiErrorDisplay) ShowError(n *ErrorNotice) {
	for _, d := range m {
		d.ShowError(n)
	}
}
