package messaging

// Mailbox keeps received messages in arrival order. Receive takes the first
// message matching a template and leaves everything else in place, so a
// message nobody asked for yet stays for a later phase.
//
// A Mailbox belongs to a single agent loop and is not safe for concurrent use.
type Mailbox struct {
	messages []*Message
}

func NewMailbox() *Mailbox {
	return &Mailbox{}
}

func (b *Mailbox) Put(m *Message) {
	b.messages = append(b.messages, m)
}

// Receive removes and returns the oldest message matching t.
func (b *Mailbox) Receive(t Template) (*Message, bool) {
	for i, m := range b.messages {
		if t(m) {
			b.messages = append(b.messages[:i], b.messages[i+1:]...)
			return m, true
		}
	}
	return nil, false
}

func (b *Mailbox) Len() int {
	return len(b.messages)
}

// Pending returns a copy of the queued messages.
func (b *Mailbox) Pending() []*Message {
	ret := make([]*Message, len(b.messages))
	copy(ret, b.messages)
	return ret
}
