// Package relay is the cross-process broadcast channel used to move delivery
// events from the process that accepted a message to every process, so the
// one holding the recipient's live socket can deliver it.
//
// The relay is best-effort: no persistence, no replay for late subscribers,
// at-most-once delivery. Events published by one process on one subject reach
// subscribers in publish order; nothing is guaranteed across subjects.
package relay

// DeliverSubject is the well-known subject carrying chat delivery events.
const DeliverSubject = "chat.deliver"

type Relay interface {
	// Publish broadcasts fire-and-forget; an error means the event was not
	// handed to the bus, never that no subscriber received it.
	Publish(subject string, payload []byte) error
	// Subscribe registers a handler invoked once per published event.
	Subscribe(subject string, handler func(payload []byte)) (Subscription, error)
}

type Subscription interface {
	Unsubscribe() error
}
