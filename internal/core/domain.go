package core

import (
	"errors"
	"time"
)

const (
	Expense Kind = "expense"
	Income  Kind = "income"
)

// Categories is the fixed set of entry categories. Names are matched
// case-sensitively; unknown values are rejected at normalization time.
var Categories = []string{
	"Food & Dining",
	"Transportation",
	"Shopping",
	"Bills & Utilities",
	"Entertainment",
	"Healthcare",
	"Education",
	"Housing",
	"Other",
}

type (
	Kind string

	Money struct {
		Cents int64
	}

	// Record is one canonical income/expense entry. Immutable once
	// created; edits are modeled as replace, never in-place mutation.
	Record struct {
		ID          string // assigned by storage, empty until persisted
		Category    string
		Amount      Money
		Kind        Kind
		Description string
		CustomDate  time.Time // zero when the entry has no explicit date
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidKind     = errors.New("invalid kind")
	ErrInvalidDate     = errors.New("invalid date")
	ErrMalformedFile   = errors.New("malformed csv file")
	ErrNotFound        = errors.New("record not found")
)

var categorySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		m[c] = struct{}{}
	}
	return m
}()

// ValidCategory reports whether name is one of the enumerated categories.
func ValidCategory(name string) bool {
	_, ok := categorySet[name]
	return ok
}

func (k Kind) Valid() bool {
	return k == Expense || k == Income
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// EffectiveDate is the instant the record is attributed to: the custom
// date when one was supplied, otherwise the creation time.
func (r Record) EffectiveDate() time.Time {
	if !r.CustomDate.IsZero() {
		return r.CustomDate
	}
	return r.CreatedAt
}

func (r Record) Validate() error {
	if !ValidCategory(r.Category) {
		return ErrInvalidCategory
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if !r.Kind.Valid() {
		return ErrInvalidKind
	}
	if r.EffectiveDate().IsZero() {
		return ErrInvalidDate
	}
	return nil
}
