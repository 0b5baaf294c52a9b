package roles

import (
	"context"
	"time"

	"github.com/go-go-golems/spelunker/pkg/agent"
	"github.com/go-go-golems/spelunker/pkg/messaging"
	"github.com/go-go-golems/spelunker/pkg/speech"
	"github.com/go-go-golems/spelunker/pkg/world"
)

const (
	// ActionConversationID tags every CFP sent to the simulator.
	ActionConversationID = "environment"

	StateRequestContent = "current state"
	CancelContent       = "session over"

	Language = "English"
	Ontology = "hazard-grid"
)

// Phase is a step of the relay's turn loop.
type Phase int

const (
	PhaseRequestState Phase = iota
	PhaseAwaitState
	PhaseConsult
	PhaseAwaitProposal
	PhaseSubmitAction
	PhaseAwaitAccept
	PhaseTerminate
	PhaseDone
)

var phaseNames = map[Phase]string{
	PhaseRequestState:  "request-state",
	PhaseAwaitState:    "await-state",
	PhaseConsult:       "consult",
	PhaseAwaitProposal: "await-proposal",
	PhaseSubmitAction:  "submit-action",
	PhaseAwaitAccept:   "await-accept",
	PhaseTerminate:     "terminate",
	PhaseDone:          "done",
}

func (p Phase) String() string {
	if n, ok := phaseNames[p]; ok {
		return n
	}
	return "unknown"
}

// Relay carries percepts from the simulator to the decision-maker and
// actions back, one request in flight at a time, until the decision-maker
// proposes to climb out.
type Relay struct {
	codec        *speech.Codec
	pollInterval time.Duration
	observer     func(Phase)

	simulator     string
	decisionMaker string
	started       bool

	phase    Phase
	pending  string
	percept  world.Percept
	action   world.Action
	position string
	turns    int
}

var _ agent.Role = &Relay{}
var _ agent.Behaviour = &Relay{}

type RelayOption func(*Relay)

// WithPhaseObserver is called with every phase the relay enters, from the
// relay's own goroutine.
func WithPhaseObserver(observer func(Phase)) RelayOption {
	return func(r *Relay) {
		r.observer = observer
	}
}

func WithRelayPollInterval(interval time.Duration) RelayOption {
	return func(r *Relay) {
		r.pollInterval = interval
	}
}

func NewRelay(codec *speech.Codec, options ...RelayOption) *Relay {
	r := &Relay{
		codec:        codec,
		pollInterval: DefaultPollInterval,
	}
	for _, o := range options {
		o(r)
	}
	if r.codec == nil {
		r.codec = speech.NewCodec()
	}
	return r
}

func (r *Relay) Name() string {
	return RelayRole
}

func (r *Relay) Phase() Phase {
	return r.phase
}

// Turns counts the actions the simulator accepted.
func (r *Relay) Turns() int {
	return r.turns
}

// Position is the last position the simulator reported.
func (r *Relay) Position() string {
	return r.position
}

func (r *Relay) Peers() (simulator string, decisionMaker string) {
	return r.simulator, r.decisionMaker
}

func (r *Relay) Setup(_ context.Context, a *agent.Agent) error {
	a.AddBehaviour(Discover(SimulatorRole, r.pollInterval, func(ctx context.Context, a *agent.Agent, identity string) error {
		r.simulator = identity
		r.maybeStart(a)
		return nil
	}))
	a.AddBehaviour(Discover(DecisionMakerRole, r.pollInterval, func(ctx context.Context, a *agent.Agent, identity string) error {
		r.decisionMaker = identity
		r.maybeStart(a)
		return nil
	}))
	return nil
}

// maybeStart begins the turn loop once both peers are bound, whichever was
// found first.
func (r *Relay) maybeStart(a *agent.Agent) {
	if r.started || r.simulator == "" || r.decisionMaker == "" {
		return
	}
	r.started = true
	a.Logger().Info().
		Str("simulator", r.simulator).
		Str("decision_maker", r.decisionMaker).
		Msg("relay ready")
	r.enter(PhaseRequestState)
	a.AddBehaviour(r)
}

func (r *Relay) enter(p Phase) {
	r.phase = p
	if r.observer != nil {
		r.observer(p)
	}
}

func (r *Relay) awaiting(p messaging.Performative) messaging.Template {
	return messaging.And(messaging.MatchPerformative(p), messaging.MatchReplyTo(r.pending))
}

func (r *Relay) send(ctx context.Context, a *agent.Agent, m *messaging.Message, next Phase) (agent.Status, error) {
	if err := a.Send(ctx, m); err != nil {
		return agent.Done, agent.Fatal(err)
	}
	r.pending = m.ID
	r.enter(next)
	return agent.Running, nil
}

// Step advances the turn loop by one phase. Awaiting phases block until the
// matching reply is in the mailbox, leaving every other message alone.
func (r *Relay) Step(ctx context.Context, a *agent.Agent) (agent.Status, error) {
	switch r.phase {
	case PhaseRequestState:
		req := messaging.NewMessage(messaging.Request, a.ID(), StateRequestContent, r.simulator)
		return r.send(ctx, a, req, PhaseAwaitState)

	case PhaseAwaitState:
		m, ok := a.Receive(r.awaiting(messaging.Inform))
		if !ok {
			return agent.Blocked, nil
		}
		report, err := speech.DecodePerceptBlock(m.Content)
		if err != nil {
			return agent.Done, agent.Fatal(err)
		}
		r.percept = report.Percept
		r.position = report.Position
		a.Logger().Debug().Stringer("percept", r.percept).Str("position", r.position).Msg("state received")
		r.enter(PhaseConsult)
		return agent.Running, nil

	case PhaseConsult:
		msg := messaging.NewMessage(messaging.Inform, a.ID(), r.codec.EncodePercept(r.percept), r.decisionMaker)
		msg.Language = Language
		msg.Ontology = Ontology
		return r.send(ctx, a, msg, PhaseAwaitProposal)

	case PhaseAwaitProposal:
		m, ok := a.Receive(r.awaiting(messaging.Proposal))
		if !ok {
			return agent.Blocked, nil
		}
		action, err := r.codec.DecodeAction(m.Content)
		if err != nil {
			return agent.Done, agent.Fatal(err)
		}
		r.action = action
		a.Logger().Info().Str("utterance", m.Content).Stringer("action", action).Msg("action received")
		r.enter(PhaseSubmitAction)
		return agent.Running, nil

	case PhaseSubmitAction:
		msg := messaging.NewMessage(messaging.ProposeAction, a.ID(), r.action.Symbol(), r.simulator)
		msg.ConversationID = ActionConversationID
		return r.send(ctx, a, msg, PhaseAwaitAccept)

	case PhaseAwaitAccept:
		if _, ok := a.Receive(r.awaiting(messaging.Accept)); !ok {
			return agent.Blocked, nil
		}
		r.turns++
		r.pending = ""
		if r.action.IsTerminal() {
			a.Logger().Info().Int("turns", r.turns).Msg("climbed out of the cave")
			r.enter(PhaseTerminate)
		} else {
			r.enter(PhaseRequestState)
		}
		return agent.Running, nil

	case PhaseTerminate:
		for _, peer := range []string{r.simulator, r.decisionMaker} {
			if err := a.Send(ctx, messaging.NewMessage(messaging.Cancel, a.ID(), CancelContent, peer)); err != nil {
				return agent.Done, agent.Fatal(err)
			}
		}
		r.enter(PhaseDone)
		a.Stop()
		return agent.Done, nil

	default:
		return agent.Done, nil
	}
}
