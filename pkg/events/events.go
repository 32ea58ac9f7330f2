// Package events announces stored checks to other services.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"checkparser/models"

	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
	"github.com/streadway/amqp"
)

// CheckCreated is published once per stored check.
type CheckCreated struct {
	ID                uint      `json:"id"`
	CheckNumber       string    `json:"check_number"`
	AmountNumeric     float64   `json:"amount_numeric"`
	FraudDetected     bool      `json:"fraud_detected"`
	SignatureVerified bool      `json:"signature_verified"`
	Valid             bool      `json:"valid"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewCheckCreated builds the event for a stored record.
func NewCheckCreated(c *models.Check, valid bool) CheckCreated {
	return CheckCreated{
		ID:                c.ID,
		CheckNumber:       c.CheckNumber,
		AmountNumeric:     c.AmountNumeric,
		FraudDetected:     c.FraudDetected,
		SignatureVerified: c.SignatureVerified,
		Valid:             valid,
		CreatedAt:         c.CreatedAt,
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev CheckCreated) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, CheckCreated) error { return nil }
func (Nop) Close() error                                { return nil }

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQP publishes JSON events to a durable topic exchange.
type AMQP struct {
	mu         deadlock.Mutex
	conn       *amqp.Connection
	ch         channel
	exchange   string
	routingKey string
}

// DialAMQP connects to uri and declares the exchange.
func DialAMQP(uri, exchange, routingKey string) (*AMQP, error) {
	log.Info().Str("component", "EVENTS").Str("exchange", exchange).Msg("dialing amqp broker")
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // noWait
		nil,      // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("amqp exchange declare: %w", err)
	}
	p := newAMQP(ch, exchange, routingKey)
	p.conn = conn
	return p, nil
}

func newAMQP(ch channel, exchange, routingKey string) *AMQP {
	return &AMQP{ch: ch, exchange: exchange, routingKey: routingKey}
}

func (p *AMQP) Publish(ctx context.Context, ev CheckCreated) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Publish(
		p.exchange,
		p.routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    ev.CreatedAt,
			MessageId:    ev.CheckNumber,
		},
	); err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}

func (p *AMQP) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
