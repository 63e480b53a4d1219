package voice

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/voicebudget/voice-ledger/internal/classifier"
	"github.com/voicebudget/voice-ledger/internal/ledger"
)

// Normalize turns a model extraction into a record. The transcript always becomes the
// description and time is the server clock.
func Normalize(ex *classifier.Extraction, transcript string, now time.Time) (*ledger.Record, error) {
	category, err := ledger.ParseCategory(ex.Category)
	if err != nil {
		return nil, err
	}
	typ, err := ledger.ParseType(ex.Type)
	if err != nil {
		return nil, err
	}
	amount, err := coerceAmount(ex)
	if err != nil {
		return nil, err
	}

	return &ledger.Record{
		Description: transcript,
		Category:    category,
		Amount:      amount,
		Type:        typ,
		Time:        now,
	}, nil
}

// coerceAmount accepts integers and decimals, rounding the latter to whole units.
// Results are bounded by ledger.MaxAmount.
func coerceAmount(ex *classifier.Extraction) (int64, error) {
	raw := strings.TrimSpace(ex.Amount.String())
	if raw == "" {
		return 0, &ledger.ValidationError{Field: "amount", Reason: "missing from model reply"}
	}

	f, err := ex.Amount.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, &ledger.ValidationError{Field: "amount", Value: raw, Reason: "not a number"}
	}
	if n, err := ex.Amount.Int64(); err == nil {
		f = float64(n)
	} else {
		f = math.Round(f)
	}

	// range is checked on the float so out-of-range values never reach the int64 conversion
	if f < 0 {
		return 0, &ledger.ValidationError{Field: "amount", Value: raw, Reason: "must not be negative"}
	}
	if f > float64(ledger.MaxAmount) {
		return 0, &ledger.ValidationError{Field: "amount", Value: raw, Reason: fmt.Sprintf("must not exceed %d", ledger.MaxAmount)}
	}
	return int64(f), nil
}
