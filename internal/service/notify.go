package service

import (
	"context"

	"github.com/rs/zerolog"

	"workshops/internal/notify"
)

// deliver hands msg to the notifier. Delivery is best effort: failures are logged and
// never reach the caller.
func deliver(ctx context.Context, n notify.Notifier, log zerolog.Logger, msg notify.Message) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, msg); err != nil {
		log.Warn().
			Err(err).
			Str("kind", string(msg.Kind)).
			Str("to", msg.To).
			Msg("notification not delivered")
	}
}
