package amqp

import (
	"encoding/json"
	"time"
)

const (
	EventExpenseCreated  = "expense.created"
	EventExpenseDeleted  = "expense.deleted"
	EventImportCompleted = "import.completed"
)

// Event is a lightweight notification. Consumers that need the full expense
// fetch it by ID.
type Event struct {
	Type      string    `json:"type"`
	ExpenseID int64     `json:"expense_id,omitempty"`
	Category  string    `json:"category,omitempty"`
	Anomaly   bool      `json:"anomaly,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	Saved     int       `json:"saved,omitempty"`
	Skipped   int       `json:"skipped,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseCreated(id int64, category string, anomaly bool) *Event {
	return &Event{
		Type:      EventExpenseCreated,
		ExpenseID: id,
		Category:  category,
		Anomaly:   anomaly,
		Timestamp: time.Now().UTC(),
	}
}

func NewExpenseDeleted(id int64) *Event {
	return &Event{
		Type:      EventExpenseDeleted,
		ExpenseID: id,
		Timestamp: time.Now().UTC(),
	}
}

func NewImportCompleted(runID string, saved, skipped int) *Event {
	return &Event{
		Type:      EventImportCompleted,
		RunID:     runID,
		Saved:     saved,
		Skipped:   skipped,
		Timestamp: time.Now().UTC(),
	}
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
