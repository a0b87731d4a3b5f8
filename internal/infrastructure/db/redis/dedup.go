package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 2 * time.Minute

// NotificationDedup suppresses duplicate notification emails caused by client
// retries of the same mutation. The digest covers the notification content, so
// a different change to the same ticket inside the TTL is still delivered.
// Key format: notify:<ticket_id>:<kind>:<digest>:<email>
type NotificationDedup struct {
	client *redis.Client
}

// NewNotificationDedup creates a NotificationDedup wrapping the given client.
func NewNotificationDedup(client *redis.Client) *NotificationDedup {
	return &NotificationDedup{client: client}
}

// Seen reports whether an identical notification was sent inside the TTL.
func (d *NotificationDedup) Seen(ctx context.Context, ticketID, kind, digest, email string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(ticketID, kind, digest, email)).Result()
	if err != nil {
		return false, fmt.Errorf("notification dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this notification has been sent (expires after dedupTTL).
func (d *NotificationDedup) Mark(ctx context.Context, ticketID, kind, digest, email string) error {
	return d.client.Set(ctx, d.key(ticketID, kind, digest, email), "1", dedupTTL).Err()
}

func (d *NotificationDedup) key(ticketID, kind, digest, email string) string {
	return fmt.Sprintf("notify:%s:%s:%s:%s", ticketID, kind, digest, email)
}
