package notify

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/quickdesk/helpdesk/internal/api/metrics"
	"github.com/quickdesk/helpdesk/internal/core/ports"
)

const sendTimeout = 15 * time.Second

// Deduper suppresses repeat deliveries of the same notification. The digest
// fingerprints the notification content so two distinct changes to the same
// ticket are never collapsed into one.
type Deduper interface {
	Seen(ctx context.Context, ticketID, kind, digest, email string) (bool, error)
	Mark(ctx context.Context, ticketID, kind, digest, email string) error
}

// Dispatcher implements ports.Notifier. Delivery is fire-and-forget: the
// calling mutation has already been committed, so failures are logged and
// counted but never surfaced. There is no retry and no persistent queue.
type Dispatcher struct {
	mailer Mailer
	dedup  Deduper
	log    zerolog.Logger
}

func NewDispatcher(mailer Mailer, dedup Deduper, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{mailer: mailer, dedup: dedup, log: log}
}

// Notify delivers the notification to each recipient in the background. The
// send uses its own timeout context because the originating request may
// complete (and cancel its context) before the mail is out.
func (d *Dispatcher) Notify(n ports.Notification) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		d.deliver(ctx, n)
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, n ports.Notification) {
	subject, htmlBody, plainBody := renderBodies(n)
	digest := contentDigest(n)

	for _, rcpt := range n.Recipients {
		seen, err := d.dedup.Seen(ctx, n.TicketID, string(n.Kind), digest, rcpt.Email)
		if err != nil {
			d.log.Warn().Err(err).Str("ticket_id", n.TicketID).Msg("dedup check failed, sending anyway")
		} else if seen {
			metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "deduped").Inc()
			continue
		}

		if err := d.mailer.Send(rcpt, subject, htmlBody, plainBody); err != nil {
			metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "failed").Inc()
			d.log.Warn().Err(err).
				Str("ticket_id", n.TicketID).
				Str("kind", string(n.Kind)).
				Str("recipient", rcpt.Email).
				Msg("notification delivery failed")
			continue
		}

		metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "sent").Inc()
		if err := d.dedup.Mark(ctx, n.TicketID, string(n.Kind), digest, rcpt.Email); err != nil {
			d.log.Warn().Err(err).Str("ticket_id", n.TicketID).Msg("failed to set dedup key")
		}
	}
}

// contentDigest fingerprints what the notification says. Retries of the same
// mutation hash identically; a different change to the same ticket does not.
func contentDigest(n ports.Notification) string {
	h := fnv.New32a()
	h.Write([]byte(n.Status))
	h.Write([]byte{0})
	h.Write([]byte(n.Summary))
	return fmt.Sprintf("%08x", h.Sum32())
}
