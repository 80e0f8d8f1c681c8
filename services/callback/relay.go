// services/callback/relay.go
package callback

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/segmentio/kafka-go"

	perrors "github.com/example/payment-portal/pkg/errors"
	m "github.com/example/payment-portal/pkg/metrics"
	"github.com/example/payment-portal/services/portal/queue"
)

// Reader is the part of *kafka.Reader the relay consumes through.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Notifier interface {
	Notify(ctx context.Context, evt queue.PaymentCompleted) error
}

// Webhook posts completion events to the workflow URL carried in the event.
type Webhook struct {
	http *resty.Client
}

func NewWebhook(timeout time.Duration) *Webhook {
	hc := resty.New()
	hc.SetTimeout(timeout)
	hc.SetHeader("Content-Type", "application/json")
	return &Webhook{http: hc}
}

func (w *Webhook) Notify(ctx context.Context, evt queue.PaymentCompleted) error {
	resp, err := w.http.R().
		SetContext(ctx).
		SetBody(evt).
		Post(evt.CallbackURL)
	if err != nil {
		return perrors.Wrap(perrors.CodeCallbackFailed, "post "+evt.CallbackURL, err)
	}
	if resp.IsError() {
		return perrors.Wrap(perrors.CodeCallbackFailed, fmt.Sprintf("post %s: status %d", evt.CallbackURL, resp.StatusCode()), nil)
	}
	return nil
}

// Relay reads completion events and forwards each one to its callback URL.
// A message is committed once it has been delivered or given up on.
type Relay struct {
	r        Reader
	n        Notifier
	log      *slog.Logger
	attempts int
	backoff  time.Duration
}

func NewRelay(log *slog.Logger, r Reader, n Notifier, attempts int) *Relay {
	if attempts < 1 {
		attempts = 1
	}
	return &Relay{r: r, n: n, log: log, attempts: attempts, backoff: time.Second}
}

// Run blocks until ctx is done or the reader fails.
func (rl *Relay) Run(ctx context.Context) error {
	rl.log.Info("callback relay started")
	for {
		msg, err := rl.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		rl.handle(queue.ExtractHeaders(ctx, msg.Headers), msg)
		if err := rl.r.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (rl *Relay) handle(ctx context.Context, msg kafka.Message) {
	var evt queue.PaymentCompleted
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		m.IncCallback("bad_message")
		rl.log.Warn("bad completion event", "offset", msg.Offset, "err", err)
		return
	}
	if evt.CallbackURL == "" {
		m.IncCallback("skipped")
		rl.log.Info("no callback url", "session_id", evt.SessionID)
		return
	}

	var err error
	for i := 0; i < rl.attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(rl.backoff * time.Duration(i)):
			}
		}
		if err = rl.n.Notify(ctx, evt); err == nil {
			m.IncCallback("delivered")
			rl.log.Info("callback delivered",
				"session_id", evt.SessionID, "callback_id", evt.CallbackID, "status", evt.Status)
			return
		}
		rl.log.Warn("callback attempt failed", "session_id", evt.SessionID, "attempt", i+1, "err", err)
	}
	m.IncCallback("failed")
	rl.log.Error("callback dropped", "session_id", evt.SessionID, "callback_id", evt.CallbackID, "err", err)
}
