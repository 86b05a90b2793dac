package model

// EventKind identifies the type of a domain event pushed to clients.
type EventKind string

const (
	EventNewQuote     EventKind = "new-quote"
	EventQuoteUpdated EventKind = "quote-updated"
	EventNewMessage   EventKind = "new-message"
	EventNewPayment   EventKind = "new-payment"
	EventMatchFound   EventKind = "match-found"
	EventConnection   EventKind = "connection"
)

// String returns the wire name of the event kind.
func (k EventKind) String() string { return string(k) }

// DomainEvent is a transient, typed notification routed to the live
// connections of one or more users. It is never persisted.
type DomainEvent struct {
	Kind    EventKind `json:"type"`
	UserIDs []string  `json:"-"`    // target users; not part of the wire payload
	Data    any       `json:"data"` // JSON-serializable body
}

// NewEvent builds an event targeting the given users.
func NewEvent(kind EventKind, data any, userIDs ...string) DomainEvent {
	return DomainEvent{Kind: kind, Data: data, UserIDs: userIDs}
}
