package relay

import (
	"fmt"

	"fintrack/errors"

	"github.com/nats-io/nats.go"
)

// NATSRelay is the production Relay over core NATS publish/subscribe. The
// client's own reconnect loop (configured in cmd/server) is the only retry
// mechanism; the relay itself buffers nothing.
type NATSRelay struct {
	nc *nats.Conn
}

func NewNATSRelay(nc *nats.Conn) *NATSRelay {
	return &NATSRelay{nc: nc}
}

func (r *NATSRelay) Publish(subject string, payload []byte) error {
	if err := r.nc.Publish(subject, payload); err != nil {
		return fmt.Errorf("%w: publish %s: %v", errors.ErrConnectivity, subject, err)
	}
	return nil
}

func (r *NATSRelay) Subscribe(subject string, handler func(payload []byte)) (Subscription, error) {
	sub, err := r.nc.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: subscribe %s: %v", errors.ErrConnectivity, subject, err)
	}
	return sub, nil
}
