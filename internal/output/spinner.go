package output

import (
	"fmt"
	"io"
	"time"

	"github.com/theckman/yacspin"
)

// Spinner shows progress for a blocking operation. On a non-terminal writer
// it degrades to plain start and finish lines.
type Spinner struct {
	w       io.Writer
	message string
	spinner *yacspin.Spinner
}

// NewSpinner prepares a spinner for message. Call Start to show it.
func NewSpinner(w io.Writer, message string) *Spinner {
	s := &Spinner{w: w, message: message}
	if !IsTerminal(w) {
		return s
	}
	spinner, err := yacspin.New(yacspin.Config{
		Writer:            w,
		Frequency:         200 * time.Millisecond,
		CharSet:           yacspin.CharSets[14],
		Prefix:            "   ",
		Suffix:            " ",
		Message:           message,
		StopCharacter:     "✅",
		StopColors:        []string{"fgGreen"},
		StopFailCharacter: "❌",
		StopFailColors:    []string{"fgRed"},
	})
	if err == nil {
		s.spinner = spinner
	}
	return s
}

func (s *Spinner) Start() {
	if s.spinner == nil {
		fmt.Fprintf(s.w, "   %s...\n", s.message)
		return
	}
	_ = s.spinner.Start()
}

// Stop marks the operation as done.
func (s *Spinner) Stop() {
	if s.spinner == nil {
		fmt.Fprintf(s.w, "   ✅ %s\n", s.message)
		return
	}
	_ = s.spinner.Stop()
}

// Fail marks the operation as failed.
func (s *Spinner) Fail() {
	if s.spinner == nil {
		fmt.Fprintf(s.w, "   ❌ %s\n", s.message)
		return
	}
	_ = s.spinner.StopFail()
}
