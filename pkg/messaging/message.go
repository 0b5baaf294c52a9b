package messaging

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
)

// Performative is the communicative act of a message.
type Performative string

const (
	Request Performative = "REQUEST"
	Inform  Performative = "INFORM"
	// ProposeAction is a call for proposal: "perform this action".
	ProposeAction Performative = "CFP"
	// Proposal carries the decision-maker's suggested action.
	Proposal Performative = "PROPOSE"
	Accept   Performative = "ACCEPT_PROPOSAL"
	// Cancel tells a peer its session is over.
	Cancel Performative = "CANCEL"
)

// Message is the envelope exchanged between agents.
type Message struct {
	ID           string       `json:"id" jsonschema:"description=Unique message id"`
	Performative Performative `json:"performative" jsonschema:"enum=REQUEST,enum=INFORM,enum=CFP,enum=PROPOSE,enum=ACCEPT_PROPOSAL,enum=CANCEL"`
	Sender       string       `json:"sender"`
	Receivers    []string     `json:"receivers"`
	// ReplyTo is the id of the message this one answers.
	ReplyTo        string `json:"replyTo,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	Content        string `json:"content"`
	Language       string `json:"language,omitempty"`
	Ontology       string `json:"ontology,omitempty"`
}

// NewConversationID returns a short random conversation id.
func NewConversationID() string {
	return shortuuid.New()
}

// NewMessage starts a new conversation with the given receivers.
func NewMessage(p Performative, sender string, content string, receivers ...string) *Message {
	return &Message{
		ID:             uuid.NewString(),
		Performative:   p,
		Sender:         sender,
		Receivers:      receivers,
		ConversationID: NewConversationID(),
		Content:        content,
	}
}

// Reply builds an answer to m sent back to its sender, keeping the
// conversation and pointing ReplyTo at m.
func (m *Message) Reply(p Performative, sender string, content string) *Message {
	return &Message{
		ID:             uuid.NewString(),
		Performative:   p,
		Sender:         sender,
		Receivers:      []string{m.Sender},
		ReplyTo:        m.ID,
		ConversationID: m.ConversationID,
		Content:        content,
		Language:       m.Language,
		Ontology:       m.Ontology,
	}
}

func (m *Message) String() string {
	return fmt.Sprintf("%s %s->%v conv=%s reply-to=%s %q",
		m.Performative, m.Sender, m.Receivers, m.ConversationID, m.ReplyTo, m.Content)
}
