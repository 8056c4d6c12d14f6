package amqp

import (
	"encoding/json"
	"time"
)

// ReportMessage summarizes a completed aggregation run for downstream
// consumers. It carries report totals only; consumers that need the month
// breakdown re-run the report or read the exported sheet.
type ReportMessage struct {
	MessageID          string    `json:"message-id"`
	UID                int64     `json:"uid"`
	IgnoreDonuts       bool      `json:"ignore-donuts"`
	IgnoreCCPayments   bool      `json:"ignore-cc-payments"`
	MonthCount         int       `json:"month-count"`
	IgnoredCount       int       `json:"ignored-count"`
	AverageSpentCents  int64     `json:"average-spent-cents"`
	AverageIncomeCents int64     `json:"average-income-cents"`
	GeneratedAt        time.Time `json:"generated-at"`
}

// SyncMessage announces a completed refresh of the local transaction cache.
type SyncMessage struct {
	MessageID        string    `json:"message-id"`
	UID              int64     `json:"uid"`
	TransactionCount int       `json:"transaction-count"`
	AccountCount     int       `json:"account-count"`
	Timestamp        time.Time `json:"timestamp"`
}

// NewSyncMessage creates a sync announcement for the given user and counts.
func NewSyncMessage(uid int64, transactionCount, accountCount int, messageID string) *SyncMessage {
	return &SyncMessage{
		MessageID:        messageID,
		UID:              uid,
		TransactionCount: transactionCount,
		AccountCount:     accountCount,
		Timestamp:        time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportMessageFromJSON creates a message from JSON bytes
func ReportMessageFromJSON(data []byte) (*ReportMessage, error) {
	var msg ReportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ToJSON converts the message to JSON bytes
func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncMessageFromJSON creates a message from JSON bytes
func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
