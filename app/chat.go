package app

import (
	"fmt"

	"github.com/sarchlab/arena/sim"
)

// A ChatMessage is one message in a conversation.
type ChatMessage struct {
	Sender string         `json:"sender"`
	Text   string         `json:"text"`
	SentAt sim.VTimeInSec `json:"sent_at"`
}

// A Chat is an in-memory messaging app holding named conversations. The
// conversation named "agent" doubles as the channel through which the user
// hands tasks to the agent.
type Chat struct {
	Base

	conversations map[string][]ChatMessage
}

// NewChat creates a chat app registered under the given name.
func NewChat(name string) *Chat {
	ch := &Chat{conversations: make(map[string][]ChatMessage)}

	t := NewTable(name)
	t.Register(sim.OpSpec{
		Name:   "send_message",
		Effect: sim.EffectWrite,
		Args: []sim.ArgSpec{
			{Name: "conversation", Type: "string", Required: true},
			{Name: "sender", Type: "string", Required: true},
			{Name: "text", Type: "string", Required: true},
		},
	}, ch.sendMessage)
	t.Register(sim.OpSpec{
		Name:   "get_messages",
		Effect: sim.EffectRead,
		Args: []sim.ArgSpec{
			{Name: "conversation", Type: "string", Required: true},
		},
	}, ch.getMessages)
	t.Register(sim.OpSpec{
		Name:   "delete_conversation",
		Effect: sim.EffectDelete,
		Args: []sim.ArgSpec{
			{Name: "conversation", Type: "string", Required: true},
		},
	}, ch.deleteConversation)

	ch.Init(t)

	return ch
}

func (ch *Chat) sendMessage(c *Ctx) (any, error) {
	conv := c.String("conversation")
	msg := ChatMessage{
		Sender: c.String("sender"),
		Text:   c.String("text"),
		SentAt: c.Now,
	}
	ch.conversations[conv] = append(ch.conversations[conv], msg)

	return len(ch.conversations[conv]), nil
}

func (ch *Chat) getMessages(c *Ctx) (any, error) {
	conv := c.String("conversation")
	msgs, ok := ch.conversations[conv]
	if !ok {
		return nil, fmt.Errorf("conversation %s not found", conv)
	}

	return append([]ChatMessage(nil), msgs...), nil
}

func (ch *Chat) deleteConversation(c *Ctx) (any, error) {
	conv := c.String("conversation")
	if _, ok := ch.conversations[conv]; !ok {
		return nil, fmt.Errorf("conversation %s not found", conv)
	}

	delete(ch.conversations, conv)

	return conv, nil
}

// MessageCount returns the number of messages in a conversation. It is
// meant for condition predicates and validation.
func (ch *Chat) MessageCount(conversation string) int {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return len(ch.conversations[conversation])
}
