package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedBus "github.com/rmarben/usergraph/internal/shared/platform/bus"
)

// KafkaPublisher publica eventos de integración en un topic de Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(writer *kafka.Writer, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Si el evento expone clave de partición, se respeta para mantener el
	// orden por agregado.
	var key []byte
	if keyer, ok := event.(sharedBus.Keyer); ok {
		key = []byte(keyer.PartitionKey())
	}

	msg := kafka.Message{Key: key, Value: data}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("error publishing to Kafka", zap.Error(err))
		return err
	}

	p.log.Debug("event published", zap.Any("event", event))
	return nil
}

// Verificación estática
var _ sharedBus.EventPublisher = (*KafkaPublisher)(nil)
