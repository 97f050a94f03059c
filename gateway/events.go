package gateway

import "encoding/json"

// Wire event names. The surface is kept compatible with the original web
// client: incoming announce/init, message, private-message; outgoing
// clients-list, receive-message, message, delivery-warning.
const (
	EventAnnounce        = "announce"
	EventInit            = "init"
	EventMessage         = "message"
	EventPrivateMessage  = "private-message"
	EventClientsList     = "clients-list"
	EventReceiveMessage  = "receive-message"
	EventDeliveryWarning = "delivery-warning"
)

// envelope frames every event in both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func encodeEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Event: event, Data: raw})
}

// initPayload carries the optional display name of an announce/init event.
type initPayload struct {
	DisplayName string `json:"displayName"`
}

// broadcastPayload is the body of a legacy all-broadcast message.
type broadcastPayload struct {
	Message string `json:"message"`
}

// privateMessagePayload is the client request to send a direct message.
// From is ignored in favor of the authenticated identity; Reply optionally
// names the id of the message being replied to.
type privateMessagePayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
	Reply   string `json:"reply,omitempty"`
}

// namedParty is a participant with the display name resolved.
type namedParty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// receivePayload is pushed to sockets on delivery, mirroring the shape the
// original client renders.
type receivePayload struct {
	ID      string     `json:"id"`
	From    namedParty `json:"from"`
	To      namedParty `json:"to"`
	Message string     `json:"message"`
	ConnID  string     `json:"socketId"`
	Reply   any        `json:"replyMessage,omitempty"`
}

type warningPayload struct {
	Message string `json:"message"`
}
