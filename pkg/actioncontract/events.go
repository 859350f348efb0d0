package actioncontract

// EventGuideIssued is published after a payment guide was issued successfully
const EventGuideIssued = "payment_guide.issued"

// EventPayload represents a domain event published to the events queue
type EventPayload struct {
	EventType  string            `json:"eventType"`           // Event type identifier (e.g., "payment_guide.issued")
	OccurredAt string            `json:"occurredAt"`          // RFC 3339 timestamp when the event occurred
	SessionID  string            `json:"sessionId,omitempty"` // Agent session the event belongs to
	Data       map[string]string `json:"data,omitempty"`      // Event-specific data (optional)
}
