package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"ghostmap-route-service/internal/domain"
	"ghostmap-route-service/internal/ports"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var _ ports.PlanPublisher = (*RabbitMQPlanPublisher)(nil)

const (
	exchangeName = "ghostmap.events"
	queueName    = "route_plans"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQPlanPublisher emits a summary of each completed planning run on a
// fanout exchange. Route geometry is not included.
type RabbitMQPlanPublisher struct {
	ch  amqpChannel
	now func() time.Time
}

func NewRabbitMQPlanPublisher(conn *amqp.Connection) (*RabbitMQPlanPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &RabbitMQPlanPublisher{ch: ch, now: time.Now}, nil
}

type planMessage struct {
	PlanID              string            `json:"plan_id"`
	Stage               string            `json:"stage"`
	HazardDataAvailable bool              `json:"hazard_data_available"`
	Standard            candidateSummary  `json:"standard"`
	Safe                *candidateSummary `json:"safe,omitempty"`
	Timestamp           int64             `json:"timestamp"`
}

type candidateSummary struct {
	Pass            string  `json:"pass"`
	HazardCount     *int    `json:"hazard_count"`
	DurationMinutes int     `json:"duration_minutes"`
	DistanceKm      float64 `json:"distance_km"`
}

func summarize(c domain.Candidate) candidateSummary {
	s := candidateSummary{
		Pass:            c.Pass.String(),
		DurationMinutes: c.DurationMinutes(),
		DistanceKm:      c.DistanceKm(),
	}
	if c.Hazards.Known() {
		n := int(c.Hazards)
		s.HazardCount = &n
	}
	return s
}

func (p *RabbitMQPlanPublisher) PublishPlan(ctx context.Context, planID string, result *domain.SelectionResult) error {
	msg := planMessage{
		PlanID:              planID,
		Stage:               string(result.Stage),
		HazardDataAvailable: result.HazardDataAvailable,
		Standard:            summarize(result.Standard),
		Timestamp:           p.now().Unix(),
	}
	if result.Safe != nil {
		s := summarize(*result.Safe)
		msg.Safe = &s
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}

	return p.ch.PublishWithContext(ctx, exchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   planID,
		Body:        body,
	})
}
