package transcription

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/speech/v1"

	"github.com/voicebudget/voice-ledger/pkg/logger"
)

// GoogleTranscriber calls the Cloud Speech-to-Text v1 recognize endpoint
type GoogleTranscriber struct {
	service *speech.Service
	config  Config
	timeout time.Duration
	logger  *logger.Logger
}

// NewGoogleTranscriber creates a speech client. Credentials come from cfg.CredentialsFile.
// An explicit Endpoint without credentials talks to an unauthenticated emulator through
// httpClient. Authenticated calls keep the transport built by the Google client library.
func NewGoogleTranscriber(ctx context.Context, cfg Config, httpClient *http.Client, log *logger.Logger) (*GoogleTranscriber, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.Endpoint != "":
		opts = append(opts, option.WithoutAuthentication())
		if httpClient != nil {
			opts = append(opts, option.WithHTTPClient(httpClient))
		}
	}

	service, err := speech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	return &GoogleTranscriber{
		service: service,
		config:  cfg,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		logger:  log.Named("google-speech"),
	}, nil
}

// Transcribe sends the whole recording in one synchronous recognize call
func (t *GoogleTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	req := &speech.RecognizeRequest{
		Config: &speech.RecognitionConfig{
			Encoding:        t.config.Encoding,
			SampleRateHertz: int64(t.config.SampleRateHertz),
			LanguageCode:    t.config.LanguageCode,
		},
		Audio: &speech.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(audio),
		},
	}

	start := time.Now()
	resp, err := t.service.Speech.Recognize(req).Context(ctx).Do()
	if err != nil {
		return "", &TranscriptionError{Provider: ProviderGoogle, Reason: "recognize request failed", Err: err}
	}
	if len(resp.Results) == 0 {
		return "", &TranscriptionError{Provider: ProviderGoogle, Reason: "no recognition results"}
	}

	var parts []string
	for _, result := range resp.Results {
		for _, alt := range result.Alternatives {
			parts = append(parts, alt.Transcript)
		}
	}
	transcript := joinAlternatives(parts)

	t.logger.Debug("Recognized audio",
		logger.Int("audio_bytes", len(audio)),
		logger.Int("results", len(resp.Results)),
		logger.Duration("elapsed", time.Since(start)))

	return transcript, nil
}
