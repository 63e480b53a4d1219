// Package voice runs the upload pipeline from recording to stored ledger record.
package voice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voicebudget/voice-ledger/internal/classifier"
	"github.com/voicebudget/voice-ledger/internal/ledger"
	"github.com/voicebudget/voice-ledger/internal/transcription"
	"github.com/voicebudget/voice-ledger/pkg/logger"
)

// RecordCreator persists a normalized record
type RecordCreator interface {
	Create(ctx context.Context, record *ledger.Record) (*ledger.Record, error)
}

// Pipeline runs one upload as a single linear sequence. It holds no per-request state.
type Pipeline struct {
	transcriber transcription.Transcriber
	completer   classifier.Completer
	records     RecordCreator
	logger      *logger.Logger
	now         func() time.Time
}

// NewPipeline creates a new voice pipeline
func NewPipeline(
	transcriber transcription.Transcriber,
	completer classifier.Completer,
	records RecordCreator,
	logger *logger.Logger,
) *Pipeline {
	return &Pipeline{
		transcriber: transcriber,
		completer:   completer,
		records:     records,
		logger:      logger.Named("voice-pipeline"),
		now:         time.Now,
	}
}

// Process transcribes audio, classifies the transcript and stores the record.
// Any stage failure aborts the upload and nothing is persisted.
func (p *Pipeline) Process(ctx context.Context, audio []byte) (*ledger.Record, error) {
	log := p.logger.With(logger.String("upload_id", uuid.NewString()))
	start := time.Now()

	transcript, err := p.transcriber.Transcribe(ctx, audio)
	if err != nil {
		log.Error("Transcription failed", logger.Error(err))
		return nil, err
	}
	log.Debug("Transcribed upload",
		logger.Int("audio_bytes", len(audio)),
		logger.String("transcript", transcript))

	prompt := classifier.BuildPrompt(transcript)

	reply, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		log.Error("Completion failed", logger.Error(err))
		return nil, err
	}
	log.Debug("Model replied", logger.String("reply", reply))

	extraction, err := classifier.Extract(reply)
	if err != nil {
		log.Error("Model reply could not be parsed", logger.Error(err))
		return nil, err
	}

	record, err := Normalize(extraction, transcript, p.now())
	if err != nil {
		log.Error("Model reply failed validation",
			logger.String("category", extraction.Category),
			logger.String("type", extraction.Type),
			logger.Error(err))
		return nil, err
	}

	created, err := p.records.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to store voice record: %w", err)
	}

	log.Info("Voice record stored",
		logger.Int64("id", created.ID),
		logger.String("category", string(created.Category)),
		logger.Int64("amount", created.Amount),
		logger.Duration("elapsed", time.Since(start)))

	return created, nil
}
