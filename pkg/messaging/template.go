package messaging

// Template selects messages from a mailbox.
type Template func(m *Message) bool

func MatchAll() Template {
	return func(*Message) bool { return true }
}

func MatchPerformative(p Performative) Template {
	return func(m *Message) bool { return m.Performative == p }
}

// MatchReplyTo matches answers to the message with the given id.
func MatchReplyTo(id string) Template {
	return func(m *Message) bool { return m.ReplyTo == id }
}

func MatchSender(id string) Template {
	return func(m *Message) bool { return m.Sender == id }
}

func MatchConversationID(id string) Template {
	return func(m *Message) bool { return m.ConversationID == id }
}

func And(ts ...Template) Template {
	return func(m *Message) bool {
		for _, t := range ts {
			if !t(m) {
				return false
			}
		}
		return true
	}
}

func Or(ts ...Template) Template {
	return func(m *Message) bool {
		for _, t := range ts {
			if t(m) {
				return true
			}
		}
		return false
	}
}
