package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/voicebudget/voice-ledger/internal/ledger"
	"github.com/voicebudget/voice-ledger/pkg/logger"
)

func newTestStorage(t *testing.T) *RecordStorage {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRecordStorage(db, logger.NewNop())
}

func TestRecordStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	when := time.Date(2024, time.May, 1, 12, 30, 15, 123456789, time.FixedZone("CST", 8*3600))

	id, err := s.Create(ctx, &ledger.Record{
		Description: "午餐吃了一百二",
		Category:    ledger.CategoryFood,
		Amount:      120,
		Type:        ledger.TypeExpense,
		Time:        when,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != id || got.Description != "午餐吃了一百二" || got.Category != ledger.CategoryFood ||
		got.Amount != 120 || got.Type != ledger.TypeExpense {
		t.Errorf("record = %+v", got)
	}
	if !got.Time.Equal(when) || got.Time.Day() != 1 {
		t.Errorf("time = %v, want %v", got.Time, when)
	}
}

func TestRecordStorageUpdateAndList(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	now := time.Now()

	id1, _ := s.Create(ctx, &ledger.Record{Category: ledger.CategoryFood, Amount: 1, Type: ledger.TypeExpense, Time: now})
	id2, _ := s.Create(ctx, &ledger.Record{Category: ledger.CategoryOther, Amount: 2, Type: ledger.TypeIncome, Time: now})

	err := s.Update(ctx, &ledger.Record{ID: id1, Description: "taxi", Category: ledger.CategoryTransport, Amount: 300, Type: ledger.TypeExpense, Time: now})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].ID != id1 || all[1].ID != id2 {
		t.Fatalf("List = %+v", all)
	}
	if all[0].Category != ledger.CategoryTransport || all[0].Amount != 300 || all[0].Description != "taxi" {
		t.Errorf("updated record = %+v", all[0])
	}
}

func TestRecordStorageDeleteReportsRemoval(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	id, err := s.Create(ctx, &ledger.Record{Category: ledger.CategoryFood, Amount: 1, Type: ledger.TypeExpense, Time: time.Now()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if removed, err := s.Delete(ctx, id); err != nil || !removed {
		t.Fatalf("Delete = %v, %v", removed, err)
	}
	if removed, err := s.Delete(ctx, id); err != nil || removed {
		t.Fatalf("second Delete = %v, %v, want no-op", removed, err)
	}
}

func TestRecordStorageAmountLimit(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.Create(context.Background(), &ledger.Record{Category: ledger.CategoryFood, Amount: ledger.MaxAmount + 1, Type: ledger.TypeExpense, Time: time.Now()})
	if err == nil {
		t.Fatal("expected the amount check constraint to reject the row")
	}
}

func TestRecordStorageNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	if _, err := s.Get(ctx, 42); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
	err := s.Update(ctx, &ledger.Record{ID: 42, Category: ledger.CategoryFood, Type: ledger.TypeExpense, Time: time.Now()})
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("Update = %v, want ErrNotFound", err)
	}
	if removed, err := s.Delete(ctx, 42); err != nil || removed {
		t.Errorf("Delete of unknown id should be a no-op, got %v, %v", removed, err)
	}
}

func TestRecordStorageListEmpty(t *testing.T) {
	all, err := newTestStorage(t).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Errorf("List = %v, want empty slice", all)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	for i := 0; i < 2; i++ {
		db, err := Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		db.Close()
	}
}
