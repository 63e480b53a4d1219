// Package audio validates uploaded recordings before they are sent for recognition.
package audio

import (
	"bytes"
	"strings"
)

// Format describes one accepted recording encoding
type Format struct {
	Encoding    string // speech API encoding name
	Extension   string
	ContentType string
	magic       func(data []byte) bool
}

var (
	ebmlMagic = []byte{0x1A, 0x45, 0xDF, 0xA3}
	oggMagic  = []byte("OggS")
	flacMagic = []byte("fLaC")
)

var formats = map[string]Format{
	"WEBM_OPUS": {
		Encoding:    "WEBM_OPUS",
		Extension:   ".webm",
		ContentType: "audio/webm",
		magic:       func(d []byte) bool { return bytes.HasPrefix(d, ebmlMagic) },
	},
	"OGG_OPUS": {
		Encoding:    "OGG_OPUS",
		Extension:   ".ogg",
		ContentType: "audio/ogg",
		magic:       func(d []byte) bool { return bytes.HasPrefix(d, oggMagic) },
	},
	"FLAC": {
		Encoding:    "FLAC",
		Extension:   ".flac",
		ContentType: "audio/flac",
		magic:       func(d []byte) bool { return bytes.HasPrefix(d, flacMagic) },
	},
	"LINEAR16": {
		Encoding:    "LINEAR16",
		Extension:   ".wav",
		ContentType: "audio/wav",
		magic: func(d []byte) bool {
			_, err := ParseWAVHeader(d)
			return err == nil
		},
	},
	"MP3": {
		Encoding:    "MP3",
		Extension:   ".mp3",
		ContentType: "audio/mpeg",
		magic: func(d []byte) bool {
			// ID3 tag or an MPEG frame sync
			return bytes.HasPrefix(d, []byte("ID3")) || (len(d) > 1 && d[0] == 0xFF && d[1]&0xE0 == 0xE0)
		},
	},
}

// LookupFormat returns the format for a speech API encoding name
func LookupFormat(encoding string) (Format, bool) {
	f, ok := formats[strings.ToUpper(encoding)]
	return f, ok
}

// Matches reports whether data starts like a recording in this format
func (f Format) Matches(data []byte) bool {
	if f.magic == nil {
		return true
	}
	return f.magic(data)
}
