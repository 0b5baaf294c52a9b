package agent

import (
	"context"
	"time"

	"github.com/go-go-golems/spelunker/pkg/directory"
	"github.com/go-go-golems/spelunker/pkg/messaging"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Role is what an agent does. Setup adds the role's behaviours.
type Role interface {
	Name() string
	Setup(ctx context.Context, a *Agent) error
}

// TakeDowner is implemented by roles that need to clean up once their agent
// stops.
type TakeDowner interface {
	TakeDown(a *Agent)
}

// Transport moves messages between agent identities.
type Transport interface {
	Publish(ctx context.Context, m *messaging.Message) error
	Subscribe(ctx context.Context, identity string) (<-chan *messaging.Message, error)
}

// Agent runs the behaviours of one role. Behaviours are stepped round-robin
// from the goroutine calling Run; nothing on an Agent is safe to call from
// other goroutines except through messages.
type Agent struct {
	id        string
	role      string
	logger    zerolog.Logger
	transport Transport
	directory directory.Directory

	inbox   <-chan *messaging.Message
	mailbox *messaging.Mailbox

	behaviours []Behaviour
	stopped    bool
}

func newAgent(id string, role string, logger zerolog.Logger, transport Transport, dir directory.Directory, inbox <-chan *messaging.Message) *Agent {
	return &Agent{
		id:        id,
		role:      role,
		logger:    logger.With().Str("agent", id).Str("role", role).Logger(),
		transport: transport,
		directory: dir,
		inbox:     inbox,
		mailbox:   messaging.NewMailbox(),
	}
}

func (a *Agent) ID() string {
	return a.id
}

func (a *Agent) Role() string {
	return a.role
}

func (a *Agent) Logger() *zerolog.Logger {
	return &a.logger
}

func (a *Agent) AddBehaviour(b Behaviour) {
	a.behaviours = append(a.behaviours, b)
}

// Send publishes m with this agent as sender.
func (a *Agent) Send(ctx context.Context, m *messaging.Message) error {
	m.Sender = a.id
	a.logger.Debug().
		Str("performative", string(m.Performative)).
		Strs("receivers", m.Receivers).
		Str("conversation_id", m.ConversationID).
		Str("reply_to", m.ReplyTo).
		Str("content", m.Content).
		Msg("send")
	return a.transport.Publish(ctx, m)
}

// Receive takes the oldest mailbox message matching t, leaving the rest.
func (a *Agent) Receive(t messaging.Template) (*messaging.Message, bool) {
	return a.mailbox.Receive(t)
}

// Pending lists the messages nobody has taken yet.
func (a *Agent) Pending() []*messaging.Message {
	return a.mailbox.Pending()
}

func (a *Agent) Search(ctx context.Context, role string) ([]string, error) {
	return a.directory.Search(ctx, role)
}

// Stop ends the agent once the current behaviour step returns.
func (a *Agent) Stop() {
	a.stopped = true
}

func (a *Agent) Stopped() bool {
	return a.stopped
}

// Run steps the behaviours until the agent stops, ctx is done or the inbox
// closes. Only fatal errors are returned; others are logged.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Debug().Msg("agent started")
	defer a.logger.Debug().Msg("agent stopped")

	for {
		if !a.drain() {
			return nil
		}

		running := false
		n := len(a.behaviours)
		kept := a.behaviours[:0]
		for _, b := range a.behaviours[:n] {
			status, err := b.Step(ctx, a)
			if err != nil {
				if IsFatal(err) {
					a.logger.Error().Err(err).Msg("behaviour failed")
					return errors.Wrapf(err, "agent %s", a.id)
				}
				a.logger.Warn().Err(err).Msg("behaviour error")
			}
			switch status {
			case Running:
				running = true
				kept = append(kept, b)
			case Blocked:
				kept = append(kept, b)
			case Done:
			}
			if a.stopped {
				return nil
			}
		}
		// behaviours added during the pass were appended after the first n
		// and have not been stepped yet
		if len(a.behaviours) > n {
			running = true
		}
		a.behaviours = append(kept, a.behaviours[n:]...)

		if ctx.Err() != nil {
			return nil
		}
		if running {
			continue
		}
		if !a.wait(ctx) {
			return nil
		}
	}
}

// drain moves everything already in the inbox to the mailbox.
func (a *Agent) drain() bool {
	for {
		select {
		case m, ok := <-a.inbox:
			if !ok {
				return false
			}
			a.receive(m)
		default:
			return true
		}
	}
}

func (a *Agent) receive(m *messaging.Message) {
	a.logger.Debug().
		Str("performative", string(m.Performative)).
		Str("sender", m.Sender).
		Str("conversation_id", m.ConversationID).
		Str("reply_to", m.ReplyTo).
		Str("content", m.Content).
		Msg("receive")
	a.mailbox.Put(m)
}

// wait blocks until a message arrives or the earliest behaviour deadline
// passes. It returns false when the agent should end.
func (a *Agent) wait(ctx context.Context) bool {
	var timeout <-chan time.Time
	if deadline, ok := a.nextDeadline(); ok {
		timer := time.NewTimer(time.Until(deadline))
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
		return false
	case m, ok := <-a.inbox:
		if !ok {
			return false
		}
		a.receive(m)
		return true
	case <-timeout:
		return true
	}
}

func (a *Agent) nextDeadline() (time.Time, bool) {
	var earliest time.Time
	for _, b := range a.behaviours {
		w, ok := b.(Waker)
		if !ok {
			continue
		}
		t := w.WakeAt()
		if t.IsZero() {
			continue
		}
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
	}
	return earliest, !earliest.IsZero()
}
