package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/quickdesk/helpdesk/internal/core/ports"
)

type stubMailer struct {
	sent    []ports.Recipient
	sendErr error
}

func (m *stubMailer) Send(to ports.Recipient, _, _, _ string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, to)
	return nil
}

type stubDeduper struct {
	seen    map[string]bool
	marked  []string
	seenErr error
}

func newStubDeduper() *stubDeduper {
	return &stubDeduper{seen: make(map[string]bool)}
}

func (d *stubDeduper) key(ticketID, kind, digest, email string) string {
	return ticketID + "|" + kind + "|" + digest + "|" + email
}

func (d *stubDeduper) Seen(_ context.Context, ticketID, kind, digest, email string) (bool, error) {
	if d.seenErr != nil {
		return false, d.seenErr
	}
	return d.seen[d.key(ticketID, kind, digest, email)], nil
}

func (d *stubDeduper) Mark(_ context.Context, ticketID, kind, digest, email string) error {
	key := d.key(ticketID, kind, digest, email)
	d.seen[key] = true
	d.marked = append(d.marked, key)
	return nil
}

func sampleNotification(emails ...string) ports.Notification {
	n := ports.Notification{
		Kind:     ports.NotifyTicketUpdated,
		TicketID: "ticket_1",
		Subject:  "Printer on fire",
		Status:   "In Progress",
		Summary:  "status changed from Open to In Progress",
	}
	for _, e := range emails {
		n.Recipients = append(n.Recipients, ports.Recipient{Name: "u", Email: e})
	}
	return n
}

func TestDispatcher_DeliversAndMarks(t *testing.T) {
	mailer := &stubMailer{}
	dedup := newStubDeduper()
	d := NewDispatcher(mailer, dedup, zerolog.Nop())

	d.deliver(context.Background(), sampleNotification("a@example.com", "b@example.com"))

	if len(mailer.sent) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(mailer.sent))
	}
	if len(dedup.marked) != 2 {
		t.Errorf("every successful delivery must be marked, got %d", len(dedup.marked))
	}
}

func TestDispatcher_SuppressesRepeatDelivery(t *testing.T) {
	mailer := &stubMailer{}
	dedup := newStubDeduper()
	d := NewDispatcher(mailer, dedup, zerolog.Nop())

	n := sampleNotification("a@example.com")
	d.deliver(context.Background(), n)
	d.deliver(context.Background(), n)

	if len(mailer.sent) != 1 {
		t.Fatalf("repeat delivery must be suppressed, got %d sends", len(mailer.sent))
	}
}

func TestDispatcher_DistinctChangesBothDeliver(t *testing.T) {
	mailer := &stubMailer{}
	dedup := newStubDeduper()
	d := NewDispatcher(mailer, dedup, zerolog.Nop())

	first := sampleNotification("a@example.com")
	second := sampleNotification("a@example.com")
	second.Status = "Resolved"
	second.Summary = "status changed from In Progress to Resolved"

	d.deliver(context.Background(), first)
	d.deliver(context.Background(), second)

	if len(mailer.sent) != 2 {
		t.Fatalf("a different change to the same ticket must still be delivered, got %d sends", len(mailer.sent))
	}
}

func TestDispatcher_SendFailureDoesNotMark(t *testing.T) {
	mailer := &stubMailer{sendErr: errors.New("smtp down")}
	dedup := newStubDeduper()
	d := NewDispatcher(mailer, dedup, zerolog.Nop())

	d.deliver(context.Background(), sampleNotification("a@example.com"))

	if len(dedup.marked) != 0 {
		t.Error("failed delivery must not set the dedup key")
	}
}

func TestDispatcher_DedupErrorSendsAnyway(t *testing.T) {
	mailer := &stubMailer{}
	dedup := newStubDeduper()
	dedup.seenErr = errors.New("redis down")
	d := NewDispatcher(mailer, dedup, zerolog.Nop())

	d.deliver(context.Background(), sampleNotification("a@example.com"))

	if len(mailer.sent) != 1 {
		t.Error("a dedup check failure must not block delivery")
	}
}

func TestRenderBodies_PerKind(t *testing.T) {
	cases := []struct {
		kind     ports.NotificationKind
		headline string
	}{
		{ports.NotifyTicketCreated, "created"},
		{ports.NotifyTicketUpdated, "updated"},
		{ports.NotifyCommentAdded, "comment"},
	}
	for _, tc := range cases {
		n := sampleNotification("a@example.com")
		n.Kind = tc.kind
		subject, htmlBody, plainBody := renderBodies(n)

		if !strings.HasPrefix(subject, "[QuickDesk]") {
			t.Errorf("%s: subject missing prefix: %q", tc.kind, subject)
		}
		if !strings.Contains(strings.ToLower(subject), tc.headline) {
			t.Errorf("%s: subject should mention %q: %q", tc.kind, tc.headline, subject)
		}
		if !strings.Contains(htmlBody, n.Subject) || !strings.Contains(plainBody, n.Subject) {
			t.Errorf("%s: both bodies must include the ticket subject", tc.kind)
		}
		if !strings.Contains(plainBody, n.Summary) {
			t.Errorf("%s: plain body must include the summary", tc.kind)
		}
	}
}

func TestRenderBodies_EscapesMarkupInHTML(t *testing.T) {
	n := sampleNotification("a@example.com")
	n.Subject = `<script>alert("x")</script>`
	n.Summary = `please look at <b>this</b>`

	_, htmlBody, plainBody := renderBodies(n)

	if strings.Contains(htmlBody, "<script>") {
		t.Error("user-written subject must not reach the HTML body unescaped")
	}
	if !strings.Contains(htmlBody, "&lt;script&gt;") {
		t.Error("escaped subject missing from HTML body")
	}
	if !strings.Contains(htmlBody, "&lt;b&gt;this&lt;/b&gt;") {
		t.Error("escaped summary missing from HTML body")
	}
	if !strings.Contains(plainBody, n.Subject) {
		t.Error("plain body carries the subject verbatim")
	}
}
