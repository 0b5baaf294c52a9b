package roles

import (
	"sort"
	"time"

	"github.com/go-go-golems/spelunker/pkg/agent"
	"github.com/go-go-golems/spelunker/pkg/planner"
	"github.com/go-go-golems/spelunker/pkg/speech"
	"github.com/go-go-golems/spelunker/pkg/world"
	"github.com/pkg/errors"
)

// Role names as registered in the directory.
const (
	SimulatorRole     = "environment"
	DecisionMakerRole = "navigator"
	RelayRole         = "speleologist"
)

const DefaultPollInterval = time.Second

var ErrUnknownRole = errors.New("unknown role")

// Deps are the collaborators a role may need. Roles ignore what they don't use.
type Deps struct {
	World        *world.Environment
	Planner      planner.Planner
	Codec        *speech.Codec
	PollInterval time.Duration
	// AwaitRole is the peer role the simulator waits for.
	AwaitRole string
	// Observer receives the relay's phase changes.
	Observer func(Phase)
}

func (d Deps) pollInterval() time.Duration {
	if d.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return d.PollInterval
}

type Factory func(deps Deps) (agent.Role, error)

// Registry maps role names to the factories building them.
type Registry map[string]Factory

func DefaultRegistry() Registry {
	return Registry{
		SimulatorRole: func(deps Deps) (agent.Role, error) {
			if deps.World == nil {
				return nil, errors.Errorf("%s needs a world", SimulatorRole)
			}
			options := []SimulatorOption{WithSimulatorPollInterval(deps.pollInterval())}
			if deps.AwaitRole != "" {
				options = append(options, WithAwaitRole(deps.AwaitRole))
			}
			return NewSimulator(deps.World, options...), nil
		},
		DecisionMakerRole: func(deps Deps) (agent.Role, error) {
			if deps.Planner == nil {
				return nil, errors.Errorf("%s needs a planner", DecisionMakerRole)
			}
			return NewDecisionMaker(deps.Planner, deps.Codec, WithDecisionMakerPollInterval(deps.pollInterval())), nil
		},
		RelayRole: func(deps Deps) (agent.Role, error) {
			options := []RelayOption{WithRelayPollInterval(deps.pollInterval())}
			if deps.Observer != nil {
				options = append(options, WithPhaseObserver(deps.Observer))
			}
			return NewRelay(deps.Codec, options...), nil
		},
	}
}

func (r Registry) New(name string, deps Deps) (agent.Role, error) {
	f, ok := r[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownRole, "%q", name)
	}
	return f(deps)
}

// Names lists the registered roles in a stable order.
func (r Registry) Names() []string {
	ret := make([]string, 0, len(r))
	for name := range r {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}
