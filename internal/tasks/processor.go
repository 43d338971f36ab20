// Package tasks handles the messages the worker reads from the outbox stream.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"workshops/internal/notify"
	"workshops/internal/queue"
)

const TypeMail = "mail"

type Sender interface {
	Send(ctx context.Context, msg notify.Message) error
}

type Processor struct {
	sender Sender
	logger zerolog.Logger
}

type payload struct {
	Type    string `mapstructure:"type"`
	Kind    string `mapstructure:"kind"`
	To      string `mapstructure:"to"`
	Subject string `mapstructure:"subject"`
	Body    string `mapstructure:"body"`
}

func NewProcessor(sender Sender, logger zerolog.Logger) *Processor {
	return &Processor{sender: sender, logger: logger}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var task payload
	if err := mapstructure.WeakDecode(msg.Values, &task); err != nil {
		return queue.Permanent(fmt.Errorf("decode message %s: %w", msg.ID, err))
	}

	switch task.Type {
	case TypeMail:
		return p.sendMail(ctx, msg.ID, task)
	default:
		p.logger.Warn().Str("type", task.Type).Str("message_id", msg.ID).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) sendMail(ctx context.Context, id string, task payload) error {
	mail := notify.Message{
		Kind:    notify.Kind(task.Kind),
		To:      task.To,
		Subject: task.Subject,
		Body:    task.Body,
	}
	err := p.sender.Send(ctx, mail)
	if errors.Is(err, notify.ErrNoRecipient) {
		return queue.Permanent(err)
	}
	if err != nil {
		return err
	}
	p.logger.Info().Str("message_id", id).Str("kind", task.Kind).Str("to", task.To).Msg("mail sent")
	return nil
}
