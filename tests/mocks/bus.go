package mocks

import (
	"context"
	"sync"

	sharedEvents "github.com/rmarben/usergraph/internal/shared/events"
)

// DummyPublisher acumula los eventos publicados para poder inspeccionarlos.
type DummyPublisher struct {
	mu     sync.Mutex
	Events []interface{}
}

func (p *DummyPublisher) Publish(ctx context.Context, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

// Types devuelve los tipos de los eventos de integración publicados, en orden.
func (p *DummyPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []string
	for _, e := range p.Events {
		if evt, ok := e.(sharedEvents.IntegrationEvent); ok {
			types = append(types, evt.Type)
		}
	}
	return types
}
