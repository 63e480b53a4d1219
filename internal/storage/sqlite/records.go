package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/voicebudget/voice-ledger/internal/ledger"
	"github.com/voicebudget/voice-ledger/pkg/logger"
)

const recordColumns = `id, description, category, amount, type, time`

// RecordStorage handles storage of ledger records
type RecordStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

var _ ledger.Store = (*RecordStorage)(nil)

// NewRecordStorage creates a new SQLite record storage on a migrated database
func NewRecordStorage(db *sql.DB, logger *logger.Logger) *RecordStorage {
	return &RecordStorage{
		db:     db,
		logger: logger.Named("sqlite-records"),
	}
}

// Create inserts a record and returns its new id
func (s *RecordStorage) Create(ctx context.Context, record *ledger.Record) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO records (description, category, amount, type, time)
		VALUES (?, ?, ?, ?, ?)`,
		record.Description,
		string(record.Category),
		record.Amount,
		string(record.Type),
		record.Time.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	s.logger.Debug("Inserted record", logger.Int64("id", id))
	return id, nil
}

// Get returns the record with the given id or ledger.ErrNotFound
func (s *RecordStorage) Get(ctx context.Context, id int64) (*ledger.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = ?`, id)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// List returns every record ordered by id
func (s *RecordStorage) List(ctx context.Context) ([]*ledger.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := []*ledger.Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

// Update overwrites every column except id
func (s *RecordStorage) Update(ctx context.Context, record *ledger.Record) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE records
		SET description = ?, category = ?, amount = ?, type = ?, time = ?
		WHERE id = ?`,
		record.Description,
		string(record.Category),
		record.Amount,
		string(record.Type),
		record.Time.Format(time.RFC3339Nano),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// Delete removes the record and reports whether a row matched. Unknown ids are not an error.
func (s *RecordStorage) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*ledger.Record, error) {
	var (
		record             ledger.Record
		category, typ, raw string
	)
	if err := row.Scan(
		&record.ID,
		&record.Description,
		&category,
		&record.Amount,
		&typ,
		&raw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse time of record %d: %w", record.ID, err)
	}
	record.Time = t
	record.Category = ledger.Category(category)
	record.Type = ledger.Type(typ)
	return &record, nil
}
