package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/voicebudget/voice-ledger/internal/ledger"
	"github.com/voicebudget/voice-ledger/internal/storage/memory"
	"github.com/voicebudget/voice-ledger/pkg/logger"
)

type recordedEvent struct {
	name string
	id   int64
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *fakePublisher) PublishRecordEvent(_ context.Context, event string, record *ledger.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{name: event, id: record.ID})
	return p.err
}

func newService(pub ledger.EventPublisher) *ledger.Service {
	return ledger.NewService(memory.New(), pub, logger.NewNop())
}

func TestCreateDefaultsTypeToExpense(t *testing.T) {
	svc := newService(nil)
	before := time.Now()

	rec, err := svc.Create(context.Background(), &ledger.Record{
		Description: "午餐",
		Category:    "飲食",
		Amount:      120,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID == 0 {
		t.Error("id not assigned")
	}
	if rec.Type != ledger.TypeExpense {
		t.Errorf("type = %q, want expense", rec.Type)
	}
	if rec.Category != ledger.CategoryFood {
		t.Errorf("category = %q, want food", rec.Category)
	}
	if rec.Time.Before(before) {
		t.Errorf("time %v not stamped", rec.Time)
	}
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc := newService(nil)
	_, err := svc.Create(context.Background(), &ledger.Record{Category: "旅遊", Amount: 1})
	var verr *ledger.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestUpdateReplacesFields(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)
	created, err := svc.Create(ctx, &ledger.Record{Description: "bus", Category: "transport", Amount: 15})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	when := time.Date(2024, time.March, 3, 8, 0, 0, 0, time.UTC)
	updated, err := svc.Update(ctx, created.ID, &ledger.Record{
		Description: "salary",
		Category:    "其他",
		Amount:      30000,
		Type:        "收入",
		Time:        when,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Description != "salary" || got.Category != ledger.CategoryOther ||
		got.Amount != 30000 || got.Type != ledger.TypeIncome || !got.Time.Equal(when) {
		t.Errorf("stored record = %+v", got)
	}
	if updated.ID != created.ID {
		t.Errorf("id changed: %d -> %d", created.ID, updated.ID)
	}
}

func TestUpdateWithoutTimeStampsNow(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)
	created, _ := svc.Create(ctx, &ledger.Record{Category: "food", Amount: 1})

	updated, err := svc.Update(ctx, created.ID, &ledger.Record{Category: "food", Amount: 2})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Time.IsZero() {
		t.Error("update left time empty")
	}
}

func TestUpdateUnknownIDIsNotFound(t *testing.T) {
	svc := newService(nil)
	_, err := svc.Update(context.Background(), 404, &ledger.Record{Category: "food", Amount: 1})

	var nf *ledger.NotFoundError
	if !errors.As(err, &nf) || nf.ID != 404 {
		t.Fatalf("err = %v, want NotFoundError for 404", err)
	}
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(pub)
	if err := svc.Delete(context.Background(), 12345); err != nil {
		t.Fatalf("Delete unknown id: %v", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("delete of unknown id published %v", pub.events)
	}
}

func TestSummaryReadsStore(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil)
	may := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.Local)
	june := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.Local)

	for _, r := range []*ledger.Record{
		{Category: "food", Amount: 100, Type: "expense", Time: may},
		{Category: "other", Amount: 500, Type: "income", Time: may},
		{Category: "food", Amount: 999, Type: "expense", Time: june},
	} {
		if _, err := svc.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	month := 5
	sum, err := svc.Summary(ctx, ledger.Filter{Month: &month})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(sum.Records) != 2 || sum.Income != 500 || sum.Expense != 100 || sum.Total != 400 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestEventsPublishedAndFailuresSwallowed(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newService(pub)

	rec, err := svc.Create(ctx, &ledger.Record{Category: "food", Amount: 5})
	if err != nil {
		t.Fatalf("Create should succeed even if publish fails: %v", err)
	}
	if _, err := svc.Update(ctx, rec.ID, &ledger.Record{Category: "food", Amount: 6}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	want := []string{ledger.EventCreated, ledger.EventUpdated, ledger.EventDeleted}
	if len(pub.events) != len(want) {
		t.Fatalf("events = %v", pub.events)
	}
	for i, e := range pub.events {
		if e.name != want[i] || e.id != rec.ID {
			t.Errorf("event[%d] = %+v, want %s/%d", i, e, want[i], rec.ID)
		}
	}
}
