package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"scadenze/internal/recurring"
)

// ChangeOp is the kind of change a TransactionChangedMessage reports.
type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// TransactionChangedMessage tells consumers that the transaction feed changed.
// It carries only the id; consumers re-read the feed.
type TransactionChangedMessage struct {
	TransactionID string    `json:"transaction_id"`
	Op            ChangeOp  `json:"op"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionChangedMessage creates a change message stamped with the current time.
func NewTransactionChangedMessage(id string, op ChangeOp) *TransactionChangedMessage {
	return &TransactionChangedMessage{
		TransactionID: id,
		Op:            op,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionChangedMessageFromJSON decodes and validates a change message.
func TransactionChangedMessageFromJSON(data []byte) (*TransactionChangedMessage, error) {
	var msg TransactionChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Op {
	case OpInsert, OpUpdate, OpDelete:
	default:
		return nil, fmt.Errorf("unknown change op %q", msg.Op)
	}
	return &msg, nil
}

// ObligationAlertMessage announces an upcoming obligation worth attention.
type ObligationAlertMessage struct {
	RunID        string    `json:"run_id"`
	Date         string    `json:"date"`
	Label        string    `json:"label"`
	CanonicalKey string    `json:"canonical_key"`
	AmountCents  int64     `json:"amount_cents"`
	Risk         string    `json:"risk"`
	Cadence      string    `json:"cadence"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewObligationAlertMessage builds an alert for one predicted event.
func NewObligationAlertMessage(runID string, ev recurring.PredictedEvent) *ObligationAlertMessage {
	return &ObligationAlertMessage{
		RunID:        runID,
		Date:         ev.Date.String(),
		Label:        ev.Label,
		CanonicalKey: ev.CanonicalKey,
		AmountCents:  ev.Amount.Cents,
		Risk:         string(ev.Risk),
		Cadence:      string(ev.Cadence),
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ObligationAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ObligationAlertMessageFromJSON creates a message from JSON bytes
func ObligationAlertMessageFromJSON(data []byte) (*ObligationAlertMessage, error) {
	var msg ObligationAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
