package audio

import (
	"errors"
	"fmt"
	"io"
)

var (
	ErrEmpty       = errors.New("audio upload is empty")
	ErrTooLarge    = errors.New("audio upload exceeds size limit")
	ErrWrongFormat = errors.New("audio upload does not match configured encoding")
)

// Intake reads uploads for one fixed encoding and sample rate
type Intake struct {
	format     Format
	sampleRate int
	maxBytes   int64
}

// NewIntake returns an intake for the given speech API encoding
func NewIntake(encoding string, sampleRate int, maxBytes int64) (*Intake, error) {
	format, ok := LookupFormat(encoding)
	if !ok {
		return nil, fmt.Errorf("unsupported audio encoding: %s", encoding)
	}
	return &Intake{format: format, sampleRate: sampleRate, maxBytes: maxBytes}, nil
}

// Format returns the accepted format
func (in *Intake) Format() Format {
	return in.format
}

// MaxBytes returns the upload size limit, 0 meaning unlimited
func (in *Intake) MaxBytes() int64 {
	return in.maxBytes
}

// Read consumes r once and returns the recording bytes
func (in *Intake) Read(r io.Reader) ([]byte, error) {
	limited := r
	if in.maxBytes > 0 {
		limited = io.LimitReader(r, in.maxBytes+1)
	}

	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if in.maxBytes > 0 && int64(len(data)) > in.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, in.maxBytes)
	}
	if !in.format.Matches(data) {
		return nil, fmt.Errorf("%w: expected %s", ErrWrongFormat, in.format.Encoding)
	}

	// WAV carries its own sample rate which the recognizer must agree with
	if in.format.Encoding == "LINEAR16" && in.sampleRate > 0 {
		h, _ := ParseWAVHeader(data)
		if int(h.SampleRate) != in.sampleRate {
			return nil, fmt.Errorf("%w: sample rate %d, expected %d", ErrWrongFormat, h.SampleRate, in.sampleRate)
		}
	}
	return data, nil
}
