// Package transcription turns an uploaded voice recording into text.
package transcription

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/voicebudget/voice-ledger/pkg/logger"
)

// Transcriber converts raw audio bytes into a transcript
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Provider names accepted in Config.Provider
const (
	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
)

// Config represents the configuration for the transcription service
type Config struct {
	Provider        string `toml:"provider"`
	Encoding        string `toml:"encoding"`
	SampleRateHertz int    `toml:"sample_rate_hertz"`
	LanguageCode    string `toml:"language_code"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`

	// Google Cloud Speech
	CredentialsFile string `toml:"-"` // GOOGLE_APPLICATION_CREDENTIALS
	Endpoint        string `toml:"endpoint"`

	// OpenAI audio transcriptions
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"-"` // OPENAI_API_KEY
}

// TranscriptionError is returned when the speech service is unreachable or yields no result
type TranscriptionError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *TranscriptionError) Error() string {
	msg := fmt.Sprintf("transcription failed (%s): %s", e.Provider, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

// Deps are the shared collaborators a transcriber may need
type Deps struct {
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// New builds the transcriber selected by cfg.Provider
func New(ctx context.Context, cfg Config, deps Deps) (Transcriber, error) {
	switch cfg.Provider {
	case ProviderGoogle, "":
		t, err := NewGoogleTranscriber(ctx, cfg, deps.HTTPClient, deps.Logger)
		if err != nil {
			return nil, err
		}
		return t, nil
	case ProviderOpenAI:
		t, err := NewOpenAITranscriber(cfg, deps.HTTPClient, deps.Logger)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown transcription provider: %s", cfg.Provider)
	}
}

// joinAlternatives concatenates transcripts in order with no separator
func joinAlternatives(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p)
	}
	return b.String()
}

// languageBase strips the region from a BCP-47 tag, "zh-TW" -> "zh"
func languageBase(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		return strings.ToLower(tag[:i])
	}
	return strings.ToLower(tag)
}
