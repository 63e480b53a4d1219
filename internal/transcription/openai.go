package transcription

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/voicebudget/voice-ledger/internal/audio"
	"github.com/voicebudget/voice-ledger/pkg/logger"
)

// OpenAITranscriber uses the OpenAI-compatible audio transcription endpoint
type OpenAITranscriber struct {
	client   openai.Client
	model    string
	language string
	format   audio.Format
	logger   *logger.Logger
}

// NewOpenAITranscriber creates a transcriber. The API key is required up front.
func NewOpenAITranscriber(cfg Config, httpClient *http.Client, log *logger.Logger) (*OpenAITranscriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required for the openai transcription provider")
	}
	format, ok := audio.LookupFormat(cfg.Encoding)
	if !ok {
		return nil, fmt.Errorf("unsupported audio encoding: %s", cfg.Encoding)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	if cfg.TimeoutSeconds > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second))
	}

	return &OpenAITranscriber{
		client:   openai.NewClient(opts...),
		model:    cfg.Model,
		language: languageBase(cfg.LanguageCode),
		format:   format,
		logger:   log.Named("openai-stt"),
	}, nil
}

// Transcribe uploads the recording as a multipart file
func (t *OpenAITranscriber) Transcribe(ctx context.Context, data []byte) (string, error) {
	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(data), "voice"+t.format.Extension, t.format.ContentType),
		Model: openai.AudioModel(t.model),
	}
	if t.language != "" {
		params.Language = openai.String(t.language)
	}

	start := time.Now()
	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", &TranscriptionError{Provider: ProviderOpenAI, Reason: "transcription request failed", Err: err}
	}

	t.logger.Debug("Transcribed audio",
		logger.Int("audio_bytes", len(data)),
		logger.String("model", t.model),
		logger.Duration("elapsed", time.Since(start)))

	return resp.Text, nil
}
