package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	payCash   payMethod = "cash"
	payDebit  payMethod = "debit"
	payCredit payMethod = "credit"
)

type payMethod string

// InstrumentRef identifies how a record was paid: cash, a debit card, a
// credit card, or nothing at all (the zero value). Card references carry
// the instrument id after a colon on the wire ("debit:<id>", "credit:<id>").
type InstrumentRef struct {
	method payMethod
	id     string
}

var ErrInvalidInstrumentRef = errors.New("invalid payment instrument reference")

func CashRef() InstrumentRef { return InstrumentRef{method: payCash} }

func DebitRef(instrumentID string) InstrumentRef {
	return InstrumentRef{method: payDebit, id: instrumentID}
}

func CreditRef(instrumentID string) InstrumentRef {
	return InstrumentRef{method: payCredit, id: instrumentID}
}

// ParseInstrumentRef parses the wire form. An empty string is the absent
// reference (zero value).
func ParseInstrumentRef(s string) (InstrumentRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return InstrumentRef{}, nil
	}
	if s == string(payCash) {
		return CashRef(), nil
	}
	method, id, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(id) == "" {
		return InstrumentRef{}, fmt.Errorf("%w: %q", ErrInvalidInstrumentRef, s)
	}
	switch payMethod(method) {
	case payDebit:
		return DebitRef(strings.TrimSpace(id)), nil
	case payCredit:
		return CreditRef(strings.TrimSpace(id)), nil
	}
	return InstrumentRef{}, fmt.Errorf("%w: %q", ErrInvalidInstrumentRef, s)
}

// String returns the wire form; empty for the absent reference.
func (r InstrumentRef) String() string {
	switch r.method {
	case payCash:
		return string(payCash)
	case payDebit, payCredit:
		return string(r.method) + ":" + r.id
	}
	return ""
}

func (r InstrumentRef) IsZero() bool { return r.method == "" }

func (r InstrumentRef) IsCash() bool { return r.method == payCash }

func (r InstrumentRef) IsDebit() bool { return r.method == payDebit }

func (r InstrumentRef) IsCredit() bool { return r.method == payCredit }

// InstrumentID returns the referenced card id, empty for cash or absent.
func (r InstrumentRef) InstrumentID() string { return r.id }
