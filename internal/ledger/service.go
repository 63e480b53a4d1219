package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/voicebudget/voice-ledger/pkg/logger"
)

// Event names emitted after a successful write
const (
	EventCreated = "record.created"
	EventUpdated = "record.updated"
	EventDeleted = "record.deleted"
)

// Store is the persistence contract for records. Each call must be atomic on its own.
type Store interface {
	Create(ctx context.Context, record *Record) (int64, error)
	Get(ctx context.Context, id int64) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
	Update(ctx context.Context, record *Record) error
	// Delete reports whether a record was removed. Unknown ids are not an error.
	Delete(ctx context.Context, id int64) (bool, error)
}

// EventPublisher is notified after a record write has been persisted
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, event string, record *Record) error
}

// Service applies the ledger rules on top of a Store
type Service struct {
	store  Store
	events EventPublisher
	logger *logger.Logger
	now    func() time.Time
}

// NewService creates a new ledger service. events may be nil.
func NewService(store Store, events EventPublisher, logger *logger.Logger) *Service {
	return &Service{
		store:  store,
		events: events,
		logger: logger.Named("ledger"),
		now:    time.Now,
	}
}

// Create validates and persists a new record. A zero Time is stamped with server time.
func (s *Service) Create(ctx context.Context, record *Record) (*Record, error) {
	if err := record.canonicalize(); err != nil {
		return nil, err
	}
	if record.Time.IsZero() {
		record.Time = s.now()
	}

	id, err := s.store.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}
	record.ID = id

	s.logger.Info("Record created",
		logger.Int64("id", record.ID),
		logger.String("category", string(record.Category)),
		logger.String("type", string(record.Type)),
		logger.Int64("amount", record.Amount))

	s.publish(ctx, EventCreated, record)
	return record, nil
}

// Get returns a single record
func (s *Service) Get(ctx context.Context, id int64) (*Record, error) {
	record, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// Update replaces every mutable field of record id. A zero Time is stamped with server time.
func (s *Service) Update(ctx context.Context, id int64, record *Record) (*Record, error) {
	if err := record.canonicalize(); err != nil {
		return nil, err
	}
	record.ID = id
	if record.Time.IsZero() {
		record.Time = s.now()
	}

	err := s.store.Update(ctx, record)
	if errors.Is(err, ErrNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	s.logger.Info("Record updated", logger.Int64("id", id))
	s.publish(ctx, EventUpdated, record)
	return record, nil
}

// Delete removes record id. Unknown ids are a no-op and publish nothing.
func (s *Service) Delete(ctx context.Context, id int64) error {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if !removed {
		s.logger.Debug("Delete matched no record", logger.Int64("id", id))
		return nil
	}

	s.logger.Info("Record deleted", logger.Int64("id", id))
	s.publish(ctx, EventDeleted, &Record{ID: id})
	return nil
}

// Summary loads every record and aggregates the ones matching filter
func (s *Service) Summary(ctx context.Context, filter Filter) (*Summary, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return Summarize(records, filter), nil
}

// publish never fails the caller since the write is already committed
func (s *Service) publish(ctx context.Context, event string, record *Record) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRecordEvent(ctx, event, record); err != nil {
		s.logger.Error("Failed to publish record event",
			logger.String("event", event),
			logger.Int64("id", record.ID),
			logger.Error(err))
	}
}
