package ui

import "time"

// TickMsg drives meter and curve refreshes.
type TickMsg time.Time

// PlaybackDoneMsg reports that the audio source ended or failed.
type PlaybackDoneMsg struct {
	Err error
}

// StatusMsg replaces the status line, e.g. with the remote-control state.
type StatusMsg string
