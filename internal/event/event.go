// Package event defines the ordered event vocabulary emitted by a
// discovery or enrichment session: status, company, error, done.
package event

import "github.com/sells-group/leadscout/internal/model"

// Type discriminates events on the stream.
type Type string

const (
	TypeStatus  Type = "status"
	TypeCompany Type = "company"
	TypeError   Type = "error"
	TypeDone    Type = "done"
)

// Event is a single entry in a session's event stream. Exactly one
// done event terminates every stream; error events are interleaved and
// non-terminal.
type Event struct {
	Type    Type           `json:"type"`
	Message string         `json:"message,omitempty"`
	Data    *model.Company `json:"data,omitempty"`
}

// Status builds a progress event.
func Status(msg string) Event {
	return Event{Type: TypeStatus, Message: msg}
}

// CompanyFound builds a company event carrying the full record.
func CompanyFound(c model.Company) Event {
	return Event{Type: TypeCompany, Data: &c}
}

// Error builds a non-terminal error event.
func Error(msg string) Event {
	return Event{Type: TypeError, Message: msg}
}

// Done builds the terminal event, optionally carrying a summary.
func Done(msg string) Event {
	return Event{Type: TypeDone, Message: msg}
}
