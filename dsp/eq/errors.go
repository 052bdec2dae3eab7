package eq

import "errors"

var (
	// ErrInvalidSampleRate is returned by Prepare for a non-positive or
	// non-finite sample rate.
	ErrInvalidSampleRate = errors.New("eq: invalid sample rate")
	// ErrInvalidBlockSize is returned by Prepare for a non-positive block size.
	ErrInvalidBlockSize = errors.New("eq: invalid block size")
	// ErrInvalidChannels is returned by Prepare when the channel count is
	// outside [1, MaxChannels].
	ErrInvalidChannels = errors.New("eq: invalid channel count")
	// ErrInvalidState is returned by RestoreState for malformed state data.
	ErrInvalidState = errors.New("eq: invalid state")
)
