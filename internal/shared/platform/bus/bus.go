package bus

import "context"

// Keyer expone la clave de partición de un evento (o de su agregado).
type Keyer interface {
	PartitionKey() string
}

// EventPublisher publica eventos de integración. La semántica de topic y el
// formato del payload los decide cada adapter.
type EventPublisher interface {
	Publish(ctx context.Context, event interface{}) error
}
