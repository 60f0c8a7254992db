package events

import (
	"context"
	"sync"

	sharedBus "github.com/rmarben/usergraph/internal/shared/platform/bus"
)

// InMemoryEventBus es un bus de eventos de un solo topic sobre canales de Go.
// Sirve como sustituto de Kafka en despliegues locales y en tests.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	subscribers []chan interface{}
	topic       string
}

var _ sharedBus.EventPublisher = (*InMemoryEventBus)(nil)

func NewInMemoryEventBus(topic string) *InMemoryEventBus {
	return &InMemoryEventBus{topic: topic}
}

// Publish reparte el evento a todos los suscriptores sin bloquear al emisor;
// un suscriptor con el buffer lleno pierde el evento.
func (b *InMemoryEventBus) Publish(ctx context.Context, event interface{}) error {
	b.mu.RLock()
	subs := make([]chan interface{}, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub <- event:
		default:
		}
	}
	return nil
}

// Subscribe registra un nuevo oyente con el buffer indicado.
func (b *InMemoryEventBus) Subscribe(bufferSize int) <-chan interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(chan interface{}, bufferSize)
	b.subscribers = append(b.subscribers, sub)
	return sub
}

// Topic devuelve el topic que maneja este bus.
func (b *InMemoryEventBus) Topic() string {
	return b.topic
}
