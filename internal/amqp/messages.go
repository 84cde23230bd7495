package amqp

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"
)

// SheetSavedMessage announces that a sheet was written to the primary
// backend. The mirror worker re-reads the sheet itself, so the message
// carries no cell data.
type SheetSavedMessage struct {
	ID          string    `json:"id"`
	Sheet       string    `json:"sheet"`
	Rows        int       `json:"rows"`
	WithHistory bool      `json:"with_history"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewSheetSavedMessage(sheet string, rows int, withHistory bool) *SheetSavedMessage {
	return &SheetSavedMessage{
		ID:          ulid.Make().String(),
		Sheet:       sheet,
		Rows:        rows,
		WithHistory: withHistory,
		Timestamp:   time.Now(),
	}
}

func (m *SheetSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SheetSavedMessageFromJSON(data []byte) (*SheetSavedMessage, error) {
	var msg SheetSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
