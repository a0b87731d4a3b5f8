package ports

// NotificationKind identifies which lifecycle event triggered a notification.
type NotificationKind string

const (
	NotifyTicketCreated NotificationKind = "ticket_created"
	NotifyTicketUpdated NotificationKind = "ticket_updated"
	NotifyCommentAdded  NotificationKind = "comment_added"
)

// Recipient is a notification target.
type Recipient struct {
	Name  string
	Email string
}

// Notification summarises a ticket change for email delivery.
type Notification struct {
	Kind       NotificationKind
	TicketID   string
	Subject    string
	Status     string
	Summary    string // human-readable description of what changed
	Recipients []Recipient
}

// Notifier delivers notifications best-effort: implementations log failures
// and never propagate them, so ticket mutations succeed independently of mail
// delivery.
type Notifier interface {
	Notify(n Notification)
}
