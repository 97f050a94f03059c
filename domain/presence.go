package domain

// PresenceEntry records that a user currently holds a live real-time
// connection. ConnID identifies the socket; the process owning it is the only
// one able to deliver on it.
type PresenceEntry struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	ConnID string `json:"socketId"`
}

// ReplyContext is the resolved annotation of a replied-to message.
type ReplyContext struct {
	ID       string `json:"id"`
	Body     string `json:"message"`
	From     string `json:"from"`
	To       string `json:"to"`
	FromName string `json:"replyFrom"`
	ToName   string `json:"replyTo"`
}

// DeliveryEvent is the transient payload published on the relay when a
// private message is sent. It is discarded after the delivery attempt and is
// never persisted or retried; the durable copy lives in the message store.
type DeliveryEvent struct {
	MessageID string        `json:"id"`
	From      string        `json:"from"`
	To        string        `json:"to"`
	ConnID    string        `json:"socketId"`
	Body      string        `json:"message"`
	Reply     *ReplyContext `json:"replyMessage,omitempty"`
}
