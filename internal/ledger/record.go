package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MaxAmount is the largest amount a single record may carry
const MaxAmount int64 = math.MaxInt32

// Category is the canonical spending category code stored on a record
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryOther         Category = "other"
)

// Type tells whether a record adds to or takes from the balance
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// categoryLabels holds the labels the language model is asked to answer with
var categoryLabels = []struct {
	Label    string
	Category Category
}{
	{"飲食", CategoryFood},
	{"交通", CategoryTransport},
	{"娛樂", CategoryEntertainment},
	{"購物", CategoryShopping},
	{"其他", CategoryOther},
}

var typeLabels = []struct {
	Label string
	Type  Type
}{
	{"收入", TypeIncome},
	{"支出", TypeExpense},
}

// Record is a single ledger entry
type Record struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Amount      int64     `json:"amount"`
	Type        Type      `json:"type"`
	Time        time.Time `json:"time"`
}

// CategoryLabels returns the model-facing category labels in prompt order
func CategoryLabels() []string {
	labels := make([]string, len(categoryLabels))
	for i, c := range categoryLabels {
		labels[i] = c.Label
	}
	return labels
}

// TypeLabels returns the model-facing type labels in prompt order
func TypeLabels() []string {
	labels := make([]string, len(typeLabels))
	for i, t := range typeLabels {
		labels[i] = t.Label
	}
	return labels
}

// ParseCategory accepts either a canonical code or a model label
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range categoryLabels {
		if s == c.Label || strings.EqualFold(s, string(c.Category)) {
			return c.Category, nil
		}
	}
	return "", &ValidationError{Field: "category", Value: s, Reason: "not one of " + strings.Join(CategoryLabels(), "/")}
}

// ParseType accepts either a canonical code or a model label. Blank means expense.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TypeExpense, nil
	}
	for _, t := range typeLabels {
		if s == t.Label || strings.EqualFold(s, string(t.Type)) {
			return t.Type, nil
		}
	}
	return "", &ValidationError{Field: "type", Value: s, Reason: "not one of " + strings.Join(TypeLabels(), "/")}
}

// Label returns the model-facing label for the category
func (c Category) Label() string {
	for _, l := range categoryLabels {
		if l.Category == c {
			return l.Label
		}
	}
	return string(c)
}

// Validate checks the record invariants. Time is stamped by the service so it is not checked here.
func (r *Record) Validate() error {
	if _, err := ParseCategory(string(r.Category)); err != nil {
		return err
	}
	if _, err := ParseType(string(r.Type)); err != nil {
		return err
	}
	if r.Amount < 0 {
		return &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if r.Amount > MaxAmount {
		return &ValidationError{Field: "amount", Value: fmt.Sprint(r.Amount), Reason: fmt.Sprintf("must not exceed %d", MaxAmount)}
	}
	return nil
}

// canonicalize rewrites labels to codes and fills the default type
func (r *Record) canonicalize() error {
	category, err := ParseCategory(string(r.Category))
	if err != nil {
		return err
	}
	typ, err := ParseType(string(r.Type))
	if err != nil {
		return err
	}
	r.Category = category
	r.Type = typ
	return r.Validate()
}
