package roles

import (
	"context"
	"time"

	"github.com/go-go-golems/spelunker/pkg/agent"
	"github.com/go-go-golems/spelunker/pkg/messaging"
	"github.com/go-go-golems/spelunker/pkg/planner"
	"github.com/go-go-golems/spelunker/pkg/speech"
	"github.com/pkg/errors"
)

// ErrNoAction is returned when the planner has nothing to propose.
var ErrNoAction = errors.New("planner proposed no action")

// DecisionMaker turns percept utterances into proposed actions.
type DecisionMaker struct {
	planner      planner.Planner
	codec        *speech.Codec
	pollInterval time.Duration

	relay string
}

var _ agent.Role = &DecisionMaker{}

type DecisionMakerOption func(*DecisionMaker)

func WithDecisionMakerPollInterval(interval time.Duration) DecisionMakerOption {
	return func(d *DecisionMaker) {
		d.pollInterval = interval
	}
}

func NewDecisionMaker(p planner.Planner, codec *speech.Codec, options ...DecisionMakerOption) *DecisionMaker {
	d := &DecisionMaker{
		planner:      p,
		codec:        codec,
		pollInterval: DefaultPollInterval,
	}
	for _, o := range options {
		o(d)
	}
	return d
}

func (d *DecisionMaker) Name() string {
	return DecisionMakerRole
}

// Relay is the relay identity found in the directory, if any. Answers go to
// whoever sent the percept regardless.
func (d *DecisionMaker) Relay() string {
	return d.relay
}

func (d *DecisionMaker) Setup(_ context.Context, a *agent.Agent) error {
	if d.planner == nil {
		return errors.New("decision-maker needs a planner")
	}
	if d.codec == nil {
		d.codec = speech.NewCodec()
	}

	a.AddBehaviour(agent.Listener(d.listen))
	a.AddBehaviour(Discover(RelayRole, d.pollInterval, func(ctx context.Context, a *agent.Agent, identity string) error {
		d.relay = identity
		return nil
	}))
	return nil
}

func (d *DecisionMaker) listen(ctx context.Context, a *agent.Agent) (bool, error) {
	if m, ok := a.Receive(messaging.MatchPerformative(messaging.Cancel)); ok {
		a.Logger().Info().Str("from", m.Sender).Msg("session cancelled")
		a.Stop()
		return true, nil
	}

	m, ok := a.Receive(messaging.MatchPerformative(messaging.Inform))
	if !ok {
		return false, nil
	}

	percept := d.codec.DecodePercept(m.Content)
	a.Logger().Info().Str("utterance", m.Content).Stringer("percept", percept).Msg("percept received")

	action, ok := d.planner.Decide(ctx, percept)
	if !ok {
		return true, agent.Fatal(errors.Wrapf(ErrNoAction, "percept %s", percept))
	}
	utterance, err := d.codec.EncodeAction(action)
	if err != nil {
		return true, agent.Fatal(err)
	}

	a.Logger().Info().Stringer("action", action).Str("utterance", utterance).Msg("action proposed")
	if err := a.Send(ctx, m.Reply(messaging.Proposal, a.ID(), utterance)); err != nil {
		return true, agent.Fatal(err)
	}
	return true, nil
}
