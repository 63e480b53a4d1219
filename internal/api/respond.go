package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/voicebudget/voice-ledger/internal/audio"
	"github.com/voicebudget/voice-ledger/internal/classifier"
	"github.com/voicebudget/voice-ledger/internal/ledger"
	"github.com/voicebudget/voice-ledger/internal/transcription"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v as the response body with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps domain and pipeline errors onto HTTP statuses
func statusFor(err error) int {
	var (
		validationErr    *ledger.ValidationError
		notFoundErr      *ledger.NotFoundError
		transcriptionErr *transcription.TranscriptionError
		authErr          *classifier.AuthError
		upstreamErr      *classifier.UpstreamError
		formatErr        *classifier.FormatError
		maxBytesErr      *http.MaxBytesError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr), errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, audio.ErrTooLarge), errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, audio.ErrEmpty), errors.Is(err, audio.ErrWrongFormat):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &transcriptionErr), errors.As(err, &upstreamErr), errors.As(err, &formatErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
