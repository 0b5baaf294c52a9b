package roles

import (
	"context"
	"time"

	"github.com/go-go-golems/spelunker/pkg/agent"
	"github.com/go-go-golems/spelunker/pkg/messaging"
	"github.com/go-go-golems/spelunker/pkg/speech"
	"github.com/go-go-golems/spelunker/pkg/world"
	"github.com/pkg/errors"
)

// AcceptContent is the body of every ACCEPT_PROPOSAL.
const AcceptContent = "OK"

type SimulatorState int

const (
	AwaitPeerDiscovery SimulatorState = iota
	Ready
)

func (s SimulatorState) String() string {
	if s == Ready {
		return "ready"
	}
	return "await-peer-discovery"
}

// Simulator owns the world. It answers state requests with a percept block
// and executes the actions it is asked to perform. Each relay talking to it
// gets its own explorer in the cave, keyed by the relay's identity.
type Simulator struct {
	env          *world.Environment
	awaitRole    string
	pollInterval time.Duration

	state SimulatorState
	peer  string
}

var _ agent.Role = &Simulator{}

type SimulatorOption func(*Simulator)

// WithAwaitRole sets the role the simulator waits for before answering.
func WithAwaitRole(role string) SimulatorOption {
	return func(s *Simulator) {
		s.awaitRole = role
	}
}

func WithSimulatorPollInterval(interval time.Duration) SimulatorOption {
	return func(s *Simulator) {
		s.pollInterval = interval
	}
}

func NewSimulator(env *world.Environment, options ...SimulatorOption) *Simulator {
	s := &Simulator{
		env:          env,
		awaitRole:    DecisionMakerRole,
		pollInterval: DefaultPollInterval,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

func (s *Simulator) Name() string {
	return SimulatorRole
}

func (s *Simulator) State() SimulatorState {
	return s.state
}

func (s *Simulator) Setup(_ context.Context, a *agent.Agent) error {
	if s.env == nil {
		return errors.New("simulator needs a world")
	}
	a.AddBehaviour(Discover(s.awaitRole, s.pollInterval, func(ctx context.Context, a *agent.Agent, identity string) error {
		s.peer = identity
		s.state = Ready
		a.Logger().Info().Str("peer", identity).Msg("simulator ready")
		a.AddBehaviour(agent.Listener(s.listen))
		return nil
	}))
	return nil
}

// cancelTemplate only takes CANCEL from the bound peer when that peer is the
// relay; otherwise any sender may end the session.
func (s *Simulator) cancelTemplate() messaging.Template {
	if s.awaitRole == RelayRole {
		return messaging.And(messaging.MatchPerformative(messaging.Cancel), messaging.MatchSender(s.peer))
	}
	return messaging.MatchPerformative(messaging.Cancel)
}

func (s *Simulator) listen(ctx context.Context, a *agent.Agent) (bool, error) {
	if m, ok := a.Receive(s.cancelTemplate()); ok {
		s.logSummary(a, m.Sender)
		a.Stop()
		return true, nil
	}

	m, ok := a.Receive(messaging.Or(
		messaging.MatchPerformative(messaging.Request),
		messaging.MatchPerformative(messaging.ProposeAction),
	))
	if !ok {
		return false, nil
	}

	switch m.Performative {
	case messaging.Request:
		return true, s.report(ctx, a, m)
	case messaging.ProposeAction:
		return true, s.perform(ctx, a, m)
	default:
		return true, nil
	}
}

func (s *Simulator) body(handle string) {
	if _, err := s.env.Position(handle); err != nil {
		s.env.AddAgent(handle)
	}
}

func (s *Simulator) report(ctx context.Context, a *agent.Agent, m *messaging.Message) error {
	s.body(m.Sender)
	percept, err := s.env.Observe(m.Sender)
	if err != nil {
		return agent.Fatal(err)
	}
	pos, err := s.env.Position(m.Sender)
	if err != nil {
		return agent.Fatal(err)
	}
	block, err := speech.EncodePerceptBlock(percept, &pos)
	if err != nil {
		return agent.Fatal(err)
	}

	a.Logger().Info().
		Str("relay", m.Sender).
		Stringer("percept", percept).
		Stringer("position", pos).
		Msg("percept sent")
	return s.send(ctx, a, m.Reply(messaging.Inform, a.ID(), block))
}

func (s *Simulator) perform(ctx context.Context, a *agent.Agent, m *messaging.Message) error {
	action, err := world.ParseAction(m.Content)
	if err != nil {
		return agent.Fatal(err)
	}
	s.body(m.Sender)
	if err := s.env.Execute(m.Sender, action); err != nil {
		return agent.Fatal(err)
	}

	a.Logger().Info().Str("relay", m.Sender).Stringer("action", action).Msg("step performed")
	return s.send(ctx, a, m.Reply(messaging.Accept, a.ID(), AcceptContent))
}

func (s *Simulator) send(ctx context.Context, a *agent.Agent, m *messaging.Message) error {
	if err := a.Send(ctx, m); err != nil {
		return agent.Fatal(err)
	}
	return nil
}

func (s *Simulator) logSummary(a *agent.Agent, relay string) {
	status, err := s.env.Status(relay)
	if err != nil {
		a.Logger().Info().Str("from", relay).Msg("session cancelled")
		return
	}
	a.Logger().Info().
		Str("from", relay).
		Bool("alive", status.Alive).
		Bool("climbed", status.Climbed).
		Bool("has_gold", status.HasGold).
		Int("moves", status.Moves).
		Msg("session cancelled")
}
