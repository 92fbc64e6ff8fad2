package event

import (
	"encoding/json"

	"github.com/LisaMariaKleiner/quizly/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Routing keys for quiz lifecycle events.
const (
	QuizCreated = "quiz.created"
	QuizDeleted = "quiz.deleted"
)

// QuizEvent is the payload published on quiz lifecycle changes.
type QuizEvent struct {
	QuizID        uint   `json:"quiz_id"`
	UserID        uint   `json:"user_id"`
	Title         string `json:"title,omitempty"`
	QuestionCount int    `json:"question_count,omitempty"`
}

// Publisher emits application events. Publishing is best-effort: the API
// request that triggered an event never fails because the broker did.
type Publisher interface {
	Publish(eventType string, payload any) error
	Close()
}

type rabbitPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher connects to RabbitMQ and declares a durable topic exchange.
// When no broker is configured (or it is unreachable at startup) a no-op
// publisher is returned so single-node deployments run without one.
func NewPublisher(cfg *config.Config) Publisher {
	if cfg.Rabbit.URL == "" {
		log.Warn().Msg("RABBITMQ_URL is not set. Event publishing disabled.")
		return noopPublisher{}
	}
	conn, err := amqp.Dial(cfg.Rabbit.URL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to RabbitMQ. Event publishing disabled.")
		return noopPublisher{}
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open RabbitMQ channel. Event publishing disabled.")
		conn.Close()
		return noopPublisher{}
	}
	if err := ch.ExchangeDeclare(cfg.Rabbit.Exchange, "topic", true, false, false, false, nil); err != nil {
		log.Error().Err(err).Str("exchange", cfg.Rabbit.Exchange).Msg("Failed to declare exchange. Event publishing disabled.")
		ch.Close()
		conn.Close()
		return noopPublisher{}
	}
	log.Info().Str("exchange", cfg.Rabbit.Exchange).Msg("Event publisher connected")
	return &rabbitPublisher{conn: conn, channel: ch, exchange: cfg.Rabbit.Exchange}
}

func (p *rabbitPublisher) Publish(eventType string, payload any) error {
	event := map[string]any{
		"type":    eventType,
		"payload": payload,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	log.Debug().Str("type", eventType).Msg("Publishing event")
	return p.channel.Publish(
		p.exchange,
		eventType, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *rabbitPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, any) error { return nil }
func (noopPublisher) Close()                    {}
