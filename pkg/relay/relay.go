// relay/relay.go
package relay

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/henryktews/vue-storefront/pkg/codec"
)

// Event is the envelope published after every endpoint dispatch.
type Event struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	Integration string    `json:"integration"`
	Endpoint    string    `json:"endpoint"`
	Status      int       `json:"status"`
	LatencyMS   int64     `json:"latencyMs"`
	At          time.Time `json:"at"`
}

// NewEvent stamps identity and time; the caller fills the rest.
func NewEvent(topic, integration, endpoint string, status int, latency time.Duration) Event {
	return Event{
		ID:          uuid.NewString(),
		Topic:       topic,
		Integration: integration,
		Endpoint:    endpoint,
		Status:      status,
		LatencyMS:   latency.Milliseconds(),
		At:          time.Now().UTC(),
	}
}

// Publisher ships encoded events somewhere. The forward-relay impl is
// built from env; without a target the noop is used.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

func encode(ev Event) ([]byte, error) { return codec.JSON.Marshal(ev) }
