// Package core implements the transaction aggregation engine: it turns a
// chronologically ordered transaction history into a month-keyed report of
// spending and income, with optional merchant exclusion and offsetting
// payment-pair suppression.
package core

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRecord = errors.New("invalid transaction record")
	ErrInvalidDate   = errors.New("invalid transaction time")
	ErrInvalidKey    = errors.New("invalid month key")
)

type (
	// Transaction is a single record as returned by the upstream API.
	// Amount is in cents; negative is a debit, non-negative a credit.
	Transaction struct {
		ID          string `json:"transaction-id"`
		AccountID   string `json:"account-id,omitempty"`
		Merchant    string `json:"merchant"`
		RawMerchant string `json:"raw-merchant,omitempty"`
		Amount      int64  `json:"amount"`
		Time        string `json:"transaction-time"`
		IsPending   bool   `json:"is-pending,omitempty"`
	}

	// Account is an upstream account record. Carried for completeness; the
	// aggregation engine does not consume it.
	Account struct {
		ID            string `json:"account-id"`
		Name          string `json:"name"`
		InstitutionID string `json:"institution-id,omitempty"`
		Balance       int64  `json:"balance"`
	}
)

// Accepted transaction-time layouts. The upstream API emits RFC3339 with
// millisecond precision; the remaining layouts cover timezone-less and
// date-only values seen in exported histories.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp parses the wire transaction time, normalized to UTC.
// All calendar math (month keys, the 24h matching window) derives from this
// value. A value that parses under none of the accepted layouts reports
// ErrInvalidDate.
func (t Transaction) Timestamp() (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.ParseInLocation(layout, t.Time, time.UTC); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (transaction %s)", ErrInvalidDate, t.Time, t.ID)
}
