package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshops/internal/notify"
	"workshops/internal/queue"
)

type recordingSender struct {
	sent []notify.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg notify.Message) error {
	if msg.To == "" {
		return notify.ErrNoRecipient
	}
	r.sent = append(r.sent, msg)
	return r.err
}

func TestHandleMail(t *testing.T) {
	sender := &recordingSender{}
	p := NewProcessor(sender, zerolog.Nop())

	err := p.Handle(context.Background(), redis.XMessage{ID: "1-0", Values: map[string]interface{}{
		"type":    "mail",
		"kind":    "account_approved",
		"to":      "a@b.com",
		"subject": "Je account is goedgekeurd",
		"body":    "Welkom",
	}})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, notify.KindAccountApproved, sender.sent[0].Kind)
	assert.Equal(t, "a@b.com", sender.sent[0].To)
	assert.Equal(t, "Welkom", sender.sent[0].Body)
}

func TestHandleMailWithoutRecipientIsPermanent(t *testing.T) {
	p := NewProcessor(&recordingSender{}, zerolog.Nop())

	err := p.Handle(context.Background(), redis.XMessage{ID: "1-0", Values: map[string]interface{}{
		"type": "mail",
		"kind": "account_denied",
	}})
	assert.ErrorIs(t, err, queue.ErrPermanent)
}

func TestHandleMailTransportErrorIsRetried(t *testing.T) {
	p := NewProcessor(&recordingSender{err: errors.New("connection refused")}, zerolog.Nop())

	err := p.Handle(context.Background(), redis.XMessage{ID: "1-0", Values: map[string]interface{}{
		"type": "mail",
		"to":   "a@b.com",
	}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, queue.ErrPermanent)
}

func TestHandleUnknownTypeIsIgnored(t *testing.T) {
	sender := &recordingSender{}
	p := NewProcessor(sender, zerolog.Nop())

	require.NoError(t, p.Handle(context.Background(), redis.XMessage{ID: "1-0", Values: map[string]interface{}{"type": "thumbnail"}}))
	assert.Empty(t, sender.sent)
}
