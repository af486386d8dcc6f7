package tui

import (
	"context"

	"github.com/tinytelemetry/thermotray/internal/sampler"

	tea "github.com/charmbracelet/bubbletea"
)

// DetailToggler switches detail text production on and off at the source of
// frames. *sampler.Scheduler implements it.
type DetailToggler interface {
	SetDetailVisible(bool)
	DetailVisible() bool
}

// SourceReadyMsg is sent once hardware enumeration has finished and the
// sampler is running.
type SourceReadyMsg struct {
	Frames  *sampler.Mailbox
	Toggler DetailToggler
	// Err is set when no sensors were found and the dashboard runs against
	// an empty source.
	Err error
}

// frameMsg carries one sampler frame into the bubbletea loop.
type frameMsg struct {
	frame sampler.Frame
}

// waitForFrame blocks on the mailbox off the UI goroutine. It yields nil
// once ctx is done, which ends the chain.
func waitForFrame(ctx context.Context, mb *sampler.Mailbox) tea.Cmd {
	return func() tea.Msg {
		f, err := mb.Next(ctx)
		if err != nil {
			return nil
		}
		return frameMsg{frame: f}
	}
}
