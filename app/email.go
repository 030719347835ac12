package app

import (
	"fmt"

	"github.com/sarchlab/arena/sim"
)

// An Email is one message in an email client's folders.
type Email struct {
	ID      string         `json:"id"`
	From    string         `json:"from"`
	To      string         `json:"to"`
	Subject string         `json:"subject"`
	Body    string         `json:"body"`
	SentAt  sim.VTimeInSec `json:"sent_at"`
	Read    bool           `json:"read"`
}

// An EmailClient is an in-memory email app with an inbox and an outbox.
type EmailClient struct {
	Base

	address string
	inbox   []*Email
	outbox  []*Email
	nextID  int
}

// NewEmailClient creates an email app registered under the given name,
// owning the given address.
func NewEmailClient(name, address string) *EmailClient {
	e := &EmailClient{address: address}

	t := NewTable(name)
	t.Register(sim.OpSpec{
		Name:   "send_email",
		Effect: sim.EffectWrite,
		Args: []sim.ArgSpec{
			{Name: "to", Type: "string", Required: true},
			{Name: "subject", Type: "string", Required: true},
			{Name: "body", Type: "string"},
		},
	}, e.sendEmail)
	t.Register(sim.OpSpec{
		Name:   "receive_email",
		Effect: sim.EffectWrite,
		Args: []sim.ArgSpec{
			{Name: "from", Type: "string", Required: true},
			{Name: "subject", Type: "string", Required: true},
			{Name: "body", Type: "string"},
		},
	}, e.receiveEmail)
	t.Register(sim.OpSpec{
		Name:   "list_inbox",
		Effect: sim.EffectRead,
	}, e.listInbox)
	t.Register(sim.OpSpec{
		Name:   "read_email",
		Effect: sim.EffectRead,
		Args: []sim.ArgSpec{
			{Name: "id", Type: "string", Required: true},
		},
	}, e.readEmail)
	t.Register(sim.OpSpec{
		Name:   "delete_email",
		Effect: sim.EffectDelete,
		Args: []sim.ArgSpec{
			{Name: "id", Type: "string", Required: true},
		},
	}, e.deleteEmail)

	e.Init(t)

	return e
}

func (e *EmailClient) newID() string {
	e.nextID++
	return fmt.Sprintf("email-%d", e.nextID)
}

func (e *EmailClient) sendEmail(c *Ctx) (any, error) {
	msg := &Email{
		ID:      e.newID(),
		From:    e.address,
		To:      c.String("to"),
		Subject: c.String("subject"),
		Body:    c.String("body"),
		SentAt:  c.Now,
	}
	e.outbox = append(e.outbox, msg)

	return msg.ID, nil
}

// receiveEmail delivers a message into the inbox. Scenarios script it as an
// environment event to simulate incoming mail.
func (e *EmailClient) receiveEmail(c *Ctx) (any, error) {
	msg := &Email{
		ID:      e.newID(),
		From:    c.String("from"),
		To:      e.address,
		Subject: c.String("subject"),
		Body:    c.String("body"),
		SentAt:  c.Now,
	}
	e.inbox = append(e.inbox, msg)

	return msg.ID, nil
}

func (e *EmailClient) listInbox(_ *Ctx) (any, error) {
	msgs := make([]Email, 0, len(e.inbox))
	for _, m := range e.inbox {
		msgs = append(msgs, *m)
	}
	return msgs, nil
}

func (e *EmailClient) readEmail(c *Ctx) (any, error) {
	id := c.String("id")
	for _, m := range e.inbox {
		if m.ID == id {
			m.Read = true
			return *m, nil
		}
	}
	return nil, fmt.Errorf("email %s not found", id)
}

func (e *EmailClient) deleteEmail(c *Ctx) (any, error) {
	id := c.String("id")
	for i, m := range e.inbox {
		if m.ID == id {
			e.inbox = append(e.inbox[:i], e.inbox[i+1:]...)
			return id, nil
		}
	}
	return nil, fmt.Errorf("email %s not found", id)
}

// InboxCount returns the number of messages in the inbox. It is meant for
// condition predicates and validation.
func (e *EmailClient) InboxCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inbox)
}

// SentCount returns the number of messages in the outbox.
func (e *EmailClient) SentCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.outbox)
}

// Sent returns a copy of the outbox.
func (e *EmailClient) Sent() []Email {
	e.mu.Lock()
	defer e.mu.Unlock()

	msgs := make([]Email, 0, len(e.outbox))
	for _, m := range e.outbox {
		msgs = append(msgs, *m)
	}
	return msgs
}
