package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/jhoicas/Pedidos-api/internal/application/ports"
	"github.com/jhoicas/Pedidos-api/pkg/logger"
)

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// Envelope sobre estándar de los eventos de dominio publicados.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

// KafkaPublisher publica eventos del ciclo de vida de reservas y pedidos.
// Best-effort: los fallos se loguean y nunca fallan la operación de origen.
type KafkaPublisher struct {
	w        *kafkago.Writer
	producer string
	log      *logger.Logger
}

// NewKafkaPublisher construye el publicador sobre un topic único.
func NewKafkaPublisher(brokers []string, topic, producer string, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			RequiredAcks: kafkago.RequireOne,
		},
		producer: producer,
		log:      log,
	}
}

// Publish serializa el envelope y lo escribe con el tipo de evento como header.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.log.Warn().Err(err).Str("event_type", eventType).Msg("serializar payload de evento")
		return
	}
	env := Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     p.producer,
		Payload:      body,
	}
	value, err := json.Marshal(env)
	if err != nil {
		p.log.Warn().Err(err).Str("event_type", eventType).Msg("serializar envelope de evento")
		return
	}
	msg := kafkago.Message{
		Key:   []byte(env.EventID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "x-event-type", Value: []byte(eventType)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		p.log.Warn().Err(err).Str("event_type", eventType).Msg("publicar evento")
	}
}

// Close cierra el writer subyacente.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
