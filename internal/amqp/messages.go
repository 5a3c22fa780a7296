package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExportParams carries whichever report parameters the job's kind needs.
type ExportParams struct {
	Month           int    `json:"month,omitempty"`
	Year            int    `json:"year,omitempty"`
	Quarter         int    `json:"quarter,omitempty"`
	Query           string `json:"query,omitempty"`
	AuthorizationID int64  `json:"authorization_id,omitempty"`
}

// ExportJobMessage asks a worker to build one report file. The worker
// rebuilds the report from the database, so the message stays small.
type ExportJobMessage struct {
	JobID       uuid.UUID    `json:"job_id"`
	Kind        string       `json:"kind"`
	Params      ExportParams `json:"params"`
	Format      string       `json:"format"`
	RequestedAt time.Time    `json:"requested_at"`
	// Attempt counts failed runs; the first delivery is attempt 0.
	Attempt int `json:"attempt,omitempty"`
}

// NewExportJobMessage creates a job with a fresh random id.
func NewExportJobMessage(kind string, params ExportParams, format string) *ExportJobMessage {
	return &ExportJobMessage{
		JobID:       uuid.New(),
		Kind:        kind,
		Params:      params,
		Format:      format,
		RequestedAt: time.Now().UTC(),
	}
}

func (m *ExportJobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExportJobMessageFromJSON(data []byte) (*ExportJobMessage, error) {
	var msg ExportJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
