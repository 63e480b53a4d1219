package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/voicebudget/voice-ledger/internal/audio"
	"github.com/voicebudget/voice-ledger/internal/ledger"
	"github.com/voicebudget/voice-ledger/pkg/logger"
)

// multipartOverhead is the room allowed on top of the audio limit for multipart framing
const multipartOverhead = 1 << 20

// RecordService is the ledger behaviour the API exposes
type RecordService interface {
	Create(ctx context.Context, record *ledger.Record) (*ledger.Record, error)
	Get(ctx context.Context, id int64) (*ledger.Record, error)
	Update(ctx context.Context, id int64, record *ledger.Record) (*ledger.Record, error)
	Delete(ctx context.Context, id int64) error
	Summary(ctx context.Context, filter ledger.Filter) (*ledger.Summary, error)
}

// VoiceProcessor turns an uploaded recording into a stored record
type VoiceProcessor interface {
	Process(ctx context.Context, audio []byte) (*ledger.Record, error)
}

// Handler serves the ledger HTTP API
type Handler struct {
	records   RecordService
	voice     VoiceProcessor
	intake    *audio.Intake
	startedAt time.Time
	logger    *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(records RecordService, voice VoiceProcessor, intake *audio.Intake, logger *logger.Logger) *Handler {
	return &Handler{
		records:   records,
		voice:     voice,
		intake:    intake,
		startedAt: time.Now(),
		logger:    logger.Named("api-handler"),
	}
}

// recordRequest is the body accepted by create and update
type recordRequest struct {
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Amount      *int64     `json:"amount"`
	Type        string     `json:"type"`
	Time        *time.Time `json:"time,omitempty"`
}

func (req *recordRequest) toRecord() (*ledger.Record, error) {
	if req.Amount == nil {
		return nil, &ledger.ValidationError{Field: "amount", Reason: "is required"}
	}
	rec := &ledger.Record{
		Description: req.Description,
		Category:    ledger.Category(req.Category),
		Amount:      *req.Amount,
		Type:        ledger.Type(req.Type),
	}
	if req.Time != nil {
		rec.Time = *req.Time
	}
	return rec, nil
}

// UploadVoice handles POST /api/upload
func (h *Handler) UploadVoice(w http.ResponseWriter, r *http.Request) {
	if limit := h.intake.MaxBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.fail(w, r, err)
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	data, err := h.intake.Read(file)
	if err != nil {
		h.logger.Warn("Rejected voice upload",
			logger.String("filename", header.Filename),
			logger.Int64("size", header.Size),
			logger.Error(err))
		h.fail(w, r, err)
		return
	}

	record, err := h.voice.Process(r.Context(), data)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// GetSummary handles GET /api/records/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	var filter ledger.Filter
	var err error

	query := r.URL.Query()
	if filter.Year, err = optionalInt(query.Get("year"), "year"); err != nil {
		h.fail(w, r, err)
		return
	}
	if filter.Month, err = optionalInt(query.Get("month"), "month"); err != nil {
		h.fail(w, r, err)
		return
	}
	if filter.Day, err = optionalInt(query.Get("day"), "day"); err != nil {
		h.fail(w, r, err)
		return
	}

	summary, err := h.records.Summary(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// CreateRecord handles POST /api/records. The server always sets the time.
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	record, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}
	record.Time = time.Time{}

	created, err := h.records.Create(r.Context(), record)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// GetRecord handles GET /api/records/{id}
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	record, err := h.records.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// UpdateRecord handles PUT /api/records/{id}
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}
	record, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	updated, err := h.records.Update(r.Context(), id, record)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteRecord handles DELETE /api/records/{id}
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	if err := h.records.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles GET /api/health
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
	})
}

func (h *Handler) decodeRecord(w http.ResponseWriter, r *http.Request) (*ledger.Record, bool) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return nil, false
	}
	record, err := req.toRecord()
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return record, true
}

func (h *Handler) recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid record id: %s", raw))
		return 0, false
	}
	return id, true
}

// fail writes the mapped status and logs server-side failures
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err))
	}
	writeError(w, status, err.Error())
}

func optionalInt(raw, field string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &ledger.ValidationError{Field: field, Value: raw, Reason: "must be an integer"}
	}
	return &v, nil
}
