package console

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows progress on a terminal and does nothing elsewhere.
type Spinner struct {
	spinner *spinner.Spinner
	enabled bool
}

// NewSpinner creates a spinner writing to w with the given message.
// It is disabled when w is not a terminal.
func NewSpinner(w io.Writer, message string) *Spinner {
	s := &Spinner{enabled: IsTerminal(w)}

	if s.enabled {
		s.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
		s.spinner.Suffix = " " + message
		_ = s.spinner.Color("cyan") //nolint:errcheck // uncoloured spinner is fine
	}

	return s
}

// Start begins the animation.
func (s *Spinner) Start() {
	if s.enabled && s.spinner != nil {
		s.spinner.Start()
	}
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	if s.enabled && s.spinner != nil {
		s.spinner.Stop()
	}
}

// UpdateMessage changes the text shown next to the spinner.
func (s *Spinner) UpdateMessage(message string) {
	if s.enabled && s.spinner != nil {
		s.spinner.Lock()
		s.spinner.Suffix = " " + message
		s.spinner.Unlock()
	}
}

// IsEnabled reports whether the spinner draws anything.
func (s *Spinner) IsEnabled() bool {
	return s.enabled
}
