package host

import "errors"

var (
	// ErrUnsupportedFormat is returned for files that are neither PCM WAV
	// nor MP3, and for WAV files with a sample format Render cannot handle.
	ErrUnsupportedFormat = errors.New("host: unsupported audio format")
	// ErrTooManyChannels is returned when a stream has more channels than
	// the engine or the output device supports.
	ErrTooManyChannels = errors.New("host: too many channels")
)
